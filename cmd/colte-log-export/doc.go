// Copyright 2026 The CoLTE Authors
// SPDX-License-Identifier: Apache-2.0

// colte-log-export moves one batch of flow and DNS logs out of the
// network monitor's SQLite store into the append-only archives, then
// deletes exactly the exported rows from the store.
//
// Every locally assigned subscriber address is replaced on the way out
// by a keyed one-way digest of the subscriber identity. The key is given
// with --key, or read from --key-file (the whole file, verbatim), or
// from standard input with --key-file - (one line; prompted with echo
// disabled when stdin is a terminal). Keep the key stable: a different
// key produces unrelated pseudonyms for the same subscriber.
//
// A run is stage, archive, purge for flows and then for DNS responses.
// Any failure stops the run before the purge of the kind that failed,
// so logs are never removed unless they reached the archive. A failed
// run may leave a partial trailing record in an archive and staged rows
// in the store; the next run restages and re-exports them.
//
// Concurrent runs are excluded by an advisory lock next to the store.
//
// Exit status is 0 on success, 1 when the run failed and 2 for usage or
// configuration errors.
package main
