// Copyright 2026 The CoLTE Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports which build of the CoLTE log tools is
// running. colte-log-export, colte-archive-cat and colte-imsi-translate
// all print [Line] for --version.
//
// Four package-level variables are injected at build time via
// -ldflags -X:
//
//   - [GitCommit] -- short git SHA of the build
//   - [GitDirty] -- "true" if there were uncommitted changes
//   - [BuildTime] -- UTC timestamp of the build
//   - [Version] -- semantic version string (set manually for releases)
//
// These default to "unknown" / "0.1.0-dev" when not injected, which
// occurs during development builds and test runs.
//
// [Info] formats the build fields, [Line] prefixes the binary name and
// [Full] adds the Go toolchain and platform.
package version
