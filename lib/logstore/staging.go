// Copyright 2026 The CoLTE Authors
// SPDX-License-Identifier: Apache-2.0

package logstore

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// Staged is implemented by every Snapshot regardless of row type, so
// Purge can accept either kind.
type Staged interface {
	Kind() Kind
	Epoch() int64
	staging() *stageState
}

// stageState is the lifecycle of one staging: created by stage, read
// once through Rows, consumed by Purge.
type stageState struct {
	store    *Store
	spec     kindSpec
	epoch    int64
	rowCount int64

	opened    bool
	consumed  int64
	exhausted bool
	purged    bool
}

// Snapshot is a point-in-time copy of one live relation. Its rows can be
// read exactly once; after a complete, error-free read it may be passed
// to Store.Purge.
type Snapshot[T any] struct {
	state *stageState
	query Query[T]
}

// Kind reports which relation was staged.
func (s *Snapshot[T]) Kind() Kind { return s.state.spec.kind }

// Epoch is the staging's sequence number for its kind. It increases by
// one with every staging of that kind in the database.
func (s *Snapshot[T]) Epoch() int64 { return s.state.epoch }

// RowCount is the number of rows copied into the staging table.
func (s *Snapshot[T]) RowCount() int64 { return s.state.rowCount }

// Exhausted reports whether every staged row has been read without error.
func (s *Snapshot[T]) Exhausted() bool { return s.state.exhausted }

func (s *Snapshot[T]) staging() *stageState { return s.state }

// Rows returns the staged rows in storage order. The sequence is lazy
// and single-pass: ranging over it a second time yields only
// ErrSnapshotConsumed. The underlying statement is closed when the loop
// ends for any reason. Breaking out early leaves the snapshot
// unexhausted, and Purge will refuse it.
func (s *Snapshot[T]) Rows(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		state := s.state
		if state.opened {
			yield(zero, fmt.Errorf("%w: %s epoch %d", ErrSnapshotConsumed, state.spec.kind, state.epoch))
			return
		}
		state.opened = true

		for row, err := range run(ctx, state.store.conn, s.query) {
			if err != nil {
				yield(zero, err)
				return
			}
			state.consumed++
			if !yield(row, nil) {
				return
			}
		}

		if state.consumed != state.rowCount {
			yield(zero, fmt.Errorf("%w: %s read %d rows, staged %d",
				ErrSnapshotMutated, state.spec.kind, state.consumed, state.rowCount))
			return
		}
		state.exhausted = true
	}
}

// StageFlows replaces flow_staging with a copy of flowlogs.
func (s *Store) StageFlows(ctx context.Context) (*Snapshot[FlowRow], error) {
	state, err := s.stage(ctx, flowSpec)
	if err != nil {
		return nil, err
	}
	return &Snapshot[FlowRow]{
		state: state,
		query: Query[FlowRow]{
			Name:    flowSpec.stagingTable,
			SQL:     "SELECT " + strings.Join(flowColumns, ", ") + " FROM " + flowSpec.stagingTable + " ORDER BY rowid",
			Columns: flowColumns,
			Scan:    scanFlow,
		},
	}, nil
}

// StageDNS replaces dns_staging with the flattened dnsResponses ⨝
// answers join.
func (s *Store) StageDNS(ctx context.Context) (*Snapshot[DNSRow], error) {
	state, err := s.stage(ctx, dnsSpec)
	if err != nil {
		return nil, err
	}
	return &Snapshot[DNSRow]{
		state: state,
		query: Query[DNSRow]{
			Name:    dnsSpec.stagingTable,
			SQL:     "SELECT " + strings.Join(dnsColumns, ", ") + " FROM " + dnsSpec.stagingTable + " ORDER BY rowid",
			Columns: dnsColumns,
			Scan:    scanDNS,
		},
	}, nil
}

func (s *Store) stage(ctx context.Context, spec kindSpec) (state *stageState, err error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("logstore: staging %s: %w", spec.kind, err)
	}

	endTransaction, err := sqlitex.ImmediateTransaction(s.conn)
	if err != nil {
		return nil, storeError("begin staging "+string(spec.kind), err)
	}
	defer endTransaction(&err)

	script := fmt.Sprintf("DROP TABLE IF EXISTS %[1]s; CREATE TABLE %[1]s AS %[2]s;",
		spec.stagingTable, spec.liveSelect)
	if err = sqlitex.ExecuteScript(s.conn, script, nil); err != nil {
		return nil, storeError("creating "+spec.stagingTable, err)
	}

	rowCount, err := queryInt64(s.conn, "SELECT count(*) FROM "+spec.stagingTable)
	if err != nil {
		return nil, storeError("counting "+spec.stagingTable, err)
	}

	err = sqlitex.Execute(s.conn, `
		INSERT INTO staging_epochs (kind, epoch, run_id, staged_at, row_count, purged_at)
		VALUES (?, 1, ?, ?, ?, NULL)
		ON CONFLICT(kind) DO UPDATE SET
			epoch = epoch + 1,
			run_id = excluded.run_id,
			staged_at = excluded.staged_at,
			row_count = excluded.row_count,
			purged_at = NULL`,
		&sqlitex.ExecOptions{
			Args: []any{string(spec.kind), s.runID, s.clock.Now().UnixNano(), rowCount},
		})
	if err != nil {
		return nil, storeError("recording staging epoch", err)
	}

	epoch, err := queryInt64(s.conn, "SELECT epoch FROM staging_epochs WHERE kind = ?", string(spec.kind))
	if err != nil {
		return nil, storeError("reading staging epoch", err)
	}

	s.logger.Info("logs staged",
		"kind", spec.kind,
		"table", spec.stagingTable,
		"epoch", epoch,
		"rows", rowCount,
		"run_id", s.runID,
	)

	return &stageState{
		store:    s,
		spec:     spec,
		epoch:    epoch,
		rowCount: rowCount,
	}, nil
}

// Purge deletes from the live relation every row whose full column tuple
// matches a row of the snapshot, drops the staging table, and marks the
// epoch purged, all in one IMMEDIATE transaction. It returns the number
// of live rows deleted (for DNS, response rows).
//
// Purge is rejected before any SQL runs unless snapshot came from this
// Store, was read to exhaustion without error, and has not been purged.
// Inside the transaction it is rejected with ErrStaleSnapshot unless the
// snapshot is still the current, unpurged staging of its kind.
func (s *Store) Purge(ctx context.Context, snapshot Staged) (purged int64, err error) {
	state := snapshot.staging()
	switch {
	case state.store != s:
		return 0, ErrForeignSnapshot
	case state.purged:
		return 0, fmt.Errorf("%w: %s epoch %d", ErrAlreadyPurged, state.spec.kind, state.epoch)
	case !state.exhausted:
		return 0, fmt.Errorf("%w: %s epoch %d read %d of %d rows",
			ErrExportIncomplete, state.spec.kind, state.epoch, state.consumed, state.rowCount)
	}
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("logstore: purging %s: %w", state.spec.kind, err)
	}

	endTransaction, err := sqlitex.ImmediateTransaction(s.conn)
	if err != nil {
		return 0, storeError("begin purge "+string(state.spec.kind), err)
	}
	defer endTransaction(&err)

	if err = s.checkCurrent(state); err != nil {
		return 0, err
	}

	for index, statement := range state.spec.purge {
		if err = sqlitex.Execute(s.conn, statement, nil); err != nil {
			return 0, storeError("purging "+string(state.spec.kind), err)
		}
		if index == 0 {
			purged = int64(s.conn.Changes())
		}
	}

	if err = sqlitex.ExecuteTransient(s.conn, "DROP TABLE "+state.spec.stagingTable, nil); err != nil {
		return 0, storeError("dropping "+state.spec.stagingTable, err)
	}
	err = sqlitex.Execute(s.conn, "UPDATE staging_epochs SET purged_at = ? WHERE kind = ?",
		&sqlitex.ExecOptions{Args: []any{s.clock.Now().UnixNano(), string(state.spec.kind)}})
	if err != nil {
		return 0, storeError("marking epoch purged", err)
	}

	state.purged = true
	s.logger.Info("staged logs purged",
		"kind", state.spec.kind,
		"epoch", state.epoch,
		"staged_rows", state.rowCount,
		"purged_rows", purged,
		"run_id", s.runID,
	)
	return purged, nil
}

// checkCurrent verifies, inside the purge transaction, that the
// snapshot's epoch is still the live staging of its kind.
func (s *Store) checkCurrent(state *stageState) error {
	var (
		found    bool
		epoch    int64
		runID    string
		isPurged bool
	)
	err := sqlitex.Execute(s.conn,
		"SELECT epoch, run_id, purged_at IS NOT NULL FROM staging_epochs WHERE kind = ?",
		&sqlitex.ExecOptions{
			Args: []any{string(state.spec.kind)},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				found = true
				epoch = stmt.ColumnInt64(0)
				runID = stmt.ColumnText(1)
				isPurged = stmt.ColumnInt64(2) != 0
				return nil
			},
		})
	if err != nil {
		return storeError("reading staging epoch", err)
	}

	switch {
	case !found:
		return fmt.Errorf("%w: no staging recorded for %s", ErrStaleSnapshot, state.spec.kind)
	case epoch != state.epoch || runID != s.runID:
		return fmt.Errorf("%w: %s snapshot epoch %d, current epoch %d (run %s)",
			ErrStaleSnapshot, state.spec.kind, state.epoch, epoch, runID)
	case isPurged:
		return fmt.Errorf("%w: %s epoch %d", ErrAlreadyPurged, state.spec.kind, epoch)
	}
	return nil
}

func queryInt64(conn *sqlite.Conn, query string, args ...any) (int64, error) {
	var value int64
	err := sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
		Args: args,
		ResultFunc: func(stmt *sqlite.Stmt) error {
			value = stmt.ColumnInt64(0)
			return nil
		},
	})
	return value, err
}
