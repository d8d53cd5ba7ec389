// Copyright 2026 The CoLTE Authors
// SPDX-License-Identifier: Apache-2.0

package logstore

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"zombiezen.com/go/sqlite/sqlitex"
)

func openInternalStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), Config{
		Path:         filepath.Join(t.TempDir(), "colte.db"),
		CreateSchema: true,
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSchemaDriftDetected(t *testing.T) {
	store := openInternalStore(t)

	// Same columns, wrong order.
	swapped := append([]string{}, flowColumns...)
	swapped[2], swapped[3] = swapped[3], swapped[2]
	query := Query[FlowRow]{
		Name:    "flowlogs",
		SQL:     "SELECT " + strings.Join(swapped, ", ") + " FROM flowlogs",
		Columns: flowColumns,
		Scan:    scanFlow,
	}

	var gotErr error
	for _, err := range run(context.Background(), store.conn, query) {
		gotErr = err
	}
	if !errors.Is(gotErr, ErrSchemaDrift) {
		t.Fatalf("run with swapped columns: %v, want ErrSchemaDrift", gotErr)
	}
}

func TestStagingTableMutationDetected(t *testing.T) {
	ctx := context.Background()
	store := openInternalStore(t)
	for _, start := range []int64{1, 2} {
		err := InsertFlow(store.conn, FlowRow{
			IntervalStart: start,
			IntervalStop:  start + 1,
			AddressA:      []byte{10, 0, 0, 5},
			AddressB:      []byte{1, 1, 1, 1},
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	snapshot, err := store.StageFlows(ctx)
	if err != nil {
		t.Fatalf("StageFlows: %v", err)
	}
	if err := sqlitex.ExecuteTransient(store.conn, "DELETE FROM flow_staging WHERE intervalStart = 2", nil); err != nil {
		t.Fatal(err)
	}

	var gotErr error
	for _, err := range snapshot.Rows(ctx) {
		gotErr = err
	}
	if !errors.Is(gotErr, ErrSnapshotMutated) {
		t.Fatalf("read of mutated staging table: %v, want ErrSnapshotMutated", gotErr)
	}
	if _, err := store.Purge(ctx, snapshot); !errors.Is(err, ErrExportIncomplete) {
		t.Fatalf("Purge of mutated snapshot: %v, want ErrExportIncomplete", err)
	}
}

func TestMatchClauseIsNullSafe(t *testing.T) {
	got := matchClause("live", "s", []string{"a", "answer"}, []string{"a", "idx"})
	want := "live.a IS s.a AND live.answer IS s.idx"
	if got != want {
		t.Errorf("matchClause = %q, want %q", got, want)
	}
}
