// Copyright 2026 The CoLTE Authors
// SPDX-License-Identifier: Apache-2.0

package logstore

import (
	"errors"
	"fmt"
)

var (
	// ErrStoreTransaction wraps every SQL failure during staging,
	// reading, or purging. The enclosing transaction has been rolled
	// back when it is returned.
	ErrStoreTransaction = errors.New("logstore: store transaction failed")

	// ErrSchemaDrift means a query returned columns that differ in
	// name or order from the columns its decoder expects.
	ErrSchemaDrift = errors.New("logstore: column schema drift")

	// ErrSnapshotConsumed is returned when a snapshot's rows are
	// requested a second time. Snapshot sequences are not restartable.
	ErrSnapshotConsumed = errors.New("logstore: snapshot rows already read")

	// ErrSnapshotMutated means the staging table no longer holds the
	// number of rows recorded when it was created.
	ErrSnapshotMutated = errors.New("logstore: staging table changed after staging")

	// ErrExportIncomplete rejects a purge whose snapshot was not read
	// to exhaustion without error.
	ErrExportIncomplete = errors.New("logstore: snapshot not fully exported")

	// ErrAlreadyPurged rejects a second purge of the same snapshot.
	ErrAlreadyPurged = errors.New("logstore: snapshot already purged")

	// ErrStaleSnapshot rejects a purge whose snapshot is no longer the
	// current staging of its kind.
	ErrStaleSnapshot = errors.New("logstore: snapshot is not the current staging")

	// ErrForeignSnapshot rejects a snapshot created by another Store.
	ErrForeignSnapshot = errors.New("logstore: snapshot belongs to a different store")
)

func storeError(operation string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStoreTransaction, operation, err)
}
