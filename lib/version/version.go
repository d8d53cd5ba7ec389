// Copyright 2026 The CoLTE Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"
	"runtime"
)

// Build metadata for colte-log-export, colte-archive-cat and
// colte-imsi-translate, stamped by the release build:
//
//	go build -ldflags "-X github.com/uw-ictd/colte-log-uploader/lib/version.GitCommit=$(git rev-parse --short HEAD)"
var (
	// GitCommit is the short git SHA the binaries were built from.
	GitCommit = "unknown"

	// GitDirty is "true" when the tree had uncommitted changes.
	GitDirty = "false"

	// BuildTime is the UTC build timestamp.
	BuildTime = "unknown"

	// Version is the release version of the exporter tools.
	Version = "0.1.0-dev"
)

// Info returns "version (commit[-dirty], build time)".
func Info() string {
	commit := GitCommit
	if GitDirty == "true" {
		commit += "-dirty"
	}
	return fmt.Sprintf("%s (%s, %s)", Version, commit, BuildTime)
}

// Line returns the --version output of the named binary.
func Line(binary string) string {
	return binary + " " + Info()
}

// Full returns Line plus the Go toolchain and platform, for --version
// combined with --verbose.
func Full(binary string) string {
	return fmt.Sprintf("%s\n  Go: %s\n  Platform: %s/%s",
		Line(binary), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
