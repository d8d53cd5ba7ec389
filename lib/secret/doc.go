// Copyright 2026 The CoLTE Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret holds the pseudonymization key outside the Go heap.
//
// [Buffer] allocates memory via mmap(MAP_ANONYMOUS), excludes it from
// core dumps (MADV_DONTDUMP), and tries to lock it into RAM (mlock). On
// Close, the memory is zeroed and unmapped. A key that leaks into swap
// or a core file would let anyone holding an archive re-identify
// subscribers, so the key never lives in garbage-collected memory
// longer than it takes to copy it in.
//
// mlock commonly fails in containers with a small RLIMIT_MEMLOCK. That
// failure is not fatal: the buffer is still excluded from core dumps
// and [Buffer.Locked] reports false so the caller can warn.
//
// Constructors:
//
//   - [FromBytes] copies into protected memory and zeros the source
//   - [ReadKeyFile] reads a key file verbatim
//   - [ReadKeyLine] reads one line (stdin, pipes)
package secret
