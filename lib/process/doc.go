// Copyright 2026 The CoLTE Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides binary entrypoint helpers. These functions
// centralize the raw stderr output that happens before the structured
// logger exists or after main() has given up:
//
//   - [Fatal] reports an error from run() and exits 1, or 2 when the
//     error is a [UsageError].
//   - [ExitCode] and [Report] expose the same mapping to tests without
//     exiting.
package process
