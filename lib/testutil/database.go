// Copyright 2026 The CoLTE Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"context"
	"net/netip"
	"path/filepath"
	"testing"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/uw-ictd/colte-log-uploader/lib/logstore"
	"github.com/uw-ictd/colte-log-uploader/lib/sqlitepool"
)

// TB is the subset of testing.TB the fixture builders need.
type TB interface {
	Helper()
	Fatalf(format string, args ...any)
}

// LogDatabase creates a log store under t.TempDir() with the live
// schema in place. It returns the database path and a connection that
// plays the monitor: it writes through the logstore Insert functions
// and is independent of any Store the test opens. Everything is closed
// when the test ends.
func LogDatabase(t *testing.T) (string, *sqlite.Conn) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "colte.db")
	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path:      path,
		OnConnect: logstore.EnsureSchema,
	})
	if err != nil {
		t.Fatalf("opening monitor pool: %v", err)
	}
	conn, err := pool.Take(context.Background())
	if err != nil {
		pool.Close()
		t.Fatalf("taking monitor connection: %v", err)
	}
	t.Cleanup(func() {
		pool.Put(conn)
		if err := pool.Close(); err != nil {
			t.Errorf("closing monitor pool: %v", err)
		}
	})
	return path, conn
}

// Addr returns the network-order bytes of s, the form the monitor
// stores addresses in.
func Addr(t TB, s string) []byte {
	t.Helper()
	addr, err := netip.ParseAddr(s)
	if err != nil {
		t.Fatalf("parsing fixture address %q: %v", s, err)
	}
	return addr.AsSlice()
}

// Flow builds a flowlogs row between a and b starting at start, with
// distinct nonzero values in every other column.
func Flow(t TB, start time.Time, a, b string) logstore.FlowRow {
	t.Helper()
	return logstore.FlowRow{
		IntervalStart:     start.UnixNano(),
		IntervalStop:      start.Add(time.Minute).UnixNano(),
		AddressA:          Addr(t, a),
		AddressB:          Addr(t, b),
		TransportProtocol: 6,
		PortA:             40000,
		PortB:             443,
		BytesAToB:         1200,
		BytesBToA:         84000,
	}
}

// DNSResponse builds a dnsResponses row from src to dst referencing
// answer.
func DNSResponse(t TB, at time.Time, src, dst string, answer int64) logstore.DNSRow {
	t.Helper()
	return logstore.DNSRow{
		Time:              at.UnixNano(),
		SrcIP:             Addr(t, src),
		DstIP:             Addr(t, dst),
		TransportProtocol: 17,
		SrcPort:           53,
		DstPort:           51000,
		Opcode:            0,
		ResultCode:        0,
		AnswerIndex:       answer,
	}
}

// Count returns the number of rows in table as seen by conn.
func Count(t TB, conn *sqlite.Conn, table string) int64 {
	t.Helper()
	var count int64
	err := sqlitex.ExecuteTransient(conn, "SELECT count(*) FROM "+table, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			count = stmt.ColumnInt64(0)
			return nil
		},
	})
	if err != nil {
		t.Fatalf("counting %s: %v", table, err)
	}
	return count
}

// Must fails the test if err is non-nil.
func Must(t TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("%v", err)
	}
}
