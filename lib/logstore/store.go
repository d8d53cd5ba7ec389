// Copyright 2026 The CoLTE Authors
// SPDX-License-Identifier: Apache-2.0

package logstore

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"zombiezen.com/go/sqlite"

	"github.com/uw-ictd/colte-log-uploader/lib/clock"
	"github.com/uw-ictd/colte-log-uploader/lib/sqlitepool"
)

// Config holds the parameters for opening a Store.
type Config struct {
	// Path is the SQLite database shared with the monitor. Required.
	Path string

	// BusyTimeout bounds how long a statement waits for the monitor's
	// write lock. Zero uses the sqlitepool default.
	BusyTimeout time.Duration

	// CreateSchema creates the live tables when they are missing.
	CreateSchema bool

	// RunID tags staging epochs written by this Store. Empty generates
	// a random UUID.
	RunID string

	// Clock stamps staging and purge times. Nil uses the real clock.
	Clock clock.Clock

	// Logger receives staging and purge events. Nil discards them.
	Logger *slog.Logger
}

// Store is the exporter's handle on the log store. It holds a single
// connection from Open until Close.
type Store struct {
	pool   *sqlitepool.Pool
	conn   *sqlite.Conn
	clock  clock.Clock
	logger *slog.Logger
	runID  string
}

// Open opens the database, takes the run's connection, and creates the
// staging bookkeeping table.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	runClock := cfg.Clock
	if runClock == nil {
		runClock = clock.Real()
	}
	runID := cfg.RunID
	if runID == "" {
		runID = uuid.New().String()
	}

	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path:        cfg.Path,
		PoolSize:    1,
		BusyTimeout: cfg.BusyTimeout,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("logstore: %w", err)
	}

	conn, err := pool.Take(ctx)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("logstore: %w", err)
	}

	if cfg.CreateSchema {
		if err := EnsureSchema(conn); err != nil {
			pool.Put(conn)
			pool.Close()
			return nil, err
		}
	}
	if err := ensureBookkeeping(conn); err != nil {
		pool.Put(conn)
		pool.Close()
		return nil, err
	}

	return &Store{
		pool:   pool,
		conn:   conn,
		clock:  runClock,
		logger: logger,
		runID:  runID,
	}, nil
}

// RunID returns the identifier recorded with this Store's stagings.
func (s *Store) RunID() string {
	return s.runID
}

// Close releases the connection and closes the database.
func (s *Store) Close() error {
	s.pool.Put(s.conn)
	s.conn = nil
	return s.pool.Close()
}

// Assignments streams the static_ips table. The table is read live, not
// staged: it is small and the exporter never modifies it.
func (s *Store) Assignments(ctx context.Context) iter.Seq2[Assignment, error] {
	return run(ctx, s.conn, Query[Assignment]{
		Name:    "static_ips",
		SQL:     "SELECT " + strings.Join(assignmentColumns, ", ") + " FROM static_ips",
		Columns: assignmentColumns,
		Scan:    scanAssignment,
	})
}
