// Copyright 2026 The CoLTE Authors
// SPDX-License-Identifier: Apache-2.0

// Package sqlitepool opens the SQLite database shared with the traffic
// monitor and hands out connections configured for the exporter.
//
// It wraps zombiezen.com/go/sqlite with the pragmas the staging/purge
// protocol relies on:
//
//   - journal_mode=WAL: the monitor keeps appending while the exporter
//     reads a snapshot. Readers never block the writer.
//   - synchronous=FULL: a committed purge survives power loss. The
//     archive on disk is the only copy of a purged row, so the delete
//     must not be undone by an OS crash after the archive was flushed.
//   - busy_timeout: wait for the monitor's write lock instead of failing
//     with SQLITE_BUSY. Configurable, 5 seconds by default.
//   - foreign_keys=OFF: the monitor owns referential integrity between
//     dnsResponses and answers; the exporter deletes both sides itself.
//   - temp_store=MEMORY.
//
// The exporter is single-threaded and uses one connection for the whole
// run, so the default pool size is 1. Larger pools exist for tests and
// tools that read concurrently.
//
//	pool, err := sqlitepool.Open(sqlitepool.Config{
//	    Path:   "/var/lib/colte/logs.db",
//	    Logger: logger,
//	})
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
//	conn, err := pool.Take(ctx)
//	if err != nil {
//	    return err
//	}
//	defer pool.Put(conn)
package sqlitepool
