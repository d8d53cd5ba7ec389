// Copyright 2026 The CoLTE Authors
// SPDX-License-Identifier: Apache-2.0

package logstore

import (
	"context"
	"fmt"
	"iter"
	"slices"

	"zombiezen.com/go/sqlite"
)

// Query describes one row source: the SQL, the columns it must return
// (by name, in order), and how to turn the current row into a T.
type Query[T any] struct {
	// Name identifies the query in errors and logs.
	Name string

	// SQL is a single SELECT statement.
	SQL string

	// Columns is the declared result schema. The statement's result
	// columns are compared against it once, before the first row.
	Columns []string

	// Scan converts the current row. It must read columns by name
	// through the Row accessors.
	Scan func(row *Row) (T, error)
}

// Row gives by-name access to the current result row of a Query.
// A Row is only valid inside Scan.
type Row struct {
	query string
	stmt  *sqlite.Stmt
	index map[string]int
}

func newRow(stmt *sqlite.Stmt, name string, columns []string) (*Row, error) {
	actual := make([]string, stmt.ColumnCount())
	for index := range actual {
		actual[index] = stmt.ColumnName(index)
	}
	if !slices.Equal(actual, columns) {
		return nil, fmt.Errorf("%w: %s returns %v, decoder expects %v",
			ErrSchemaDrift, name, actual, columns)
	}

	index := make(map[string]int, len(columns))
	for position, column := range columns {
		index[column] = position
	}
	return &Row{query: name, stmt: stmt, index: index}, nil
}

func (r *Row) position(column string) int {
	position, ok := r.index[column]
	if !ok {
		panic(fmt.Sprintf("logstore: %s has no column %q", r.query, column))
	}
	return position
}

// Int64 returns the column as an integer. NULL reads as 0.
func (r *Row) Int64(column string) int64 {
	return r.stmt.ColumnInt64(r.position(column))
}

// Text returns the column as text. NULL reads as "".
func (r *Row) Text(column string) string {
	return r.stmt.ColumnText(r.position(column))
}

// Blob returns a copy of the column's bytes. NULL reads as an empty
// slice.
func (r *Row) Blob(column string) []byte {
	position := r.position(column)
	data := make([]byte, r.stmt.ColumnLen(position))
	r.stmt.ColumnBytes(position, data)
	return data
}

// run returns a lazy, single-pass sequence over q's results on conn.
// The statement is prepared when iteration starts and finalized when it
// ends, whether by exhaustion, error, or the consumer breaking out of
// the loop. A non-nil error is always the last element.
func run[T any](ctx context.Context, conn *sqlite.Conn, q Query[T]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T

		stmt, _, err := conn.PrepareTransient(q.SQL)
		if err != nil {
			yield(zero, storeError("preparing "+q.Name, err))
			return
		}
		defer stmt.Finalize()

		row, err := newRow(stmt, q.Name, q.Columns)
		if err != nil {
			yield(zero, err)
			return
		}

		for {
			if err := ctx.Err(); err != nil {
				yield(zero, fmt.Errorf("logstore: reading %s: %w", q.Name, err))
				return
			}
			hasRow, err := stmt.Step()
			if err != nil {
				yield(zero, storeError("reading "+q.Name, err))
				return
			}
			if !hasRow {
				return
			}
			value, err := q.Scan(row)
			if err != nil {
				yield(zero, fmt.Errorf("logstore: scanning %s: %w", q.Name, err))
				return
			}
			if !yield(value, nil) {
				return
			}
		}
	}
}
