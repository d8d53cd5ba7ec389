// Copyright 2026 The CoLTE Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for the log
// exporter.
//
// Configuration comes from at most one file, named by the --config flag
// (via [LoadFile]) or the COLTE_EXPORT_CONFIG environment variable (via
// [Load]). With neither, [Default] applies unchanged. The file is layered
// over the defaults, so it only needs the keys it changes. Unknown keys
// are an error.
//
// Variable expansion is performed on path fields after loading:
// ${VAR} and ${VAR:-default} are expanded from the environment. No
// other environment variables override config values; command-line
// flags are applied by the caller on the returned [Config].
//
// Key exports:
//
//   - [Config] -- Store, Archive, Pseudonym, Metrics sections
//   - [Default] -- the built-in configuration
//   - [Load] and [LoadFile] -- the two entry points for loading
//   - [Config.Validate] -- reports every problem at once
package config
