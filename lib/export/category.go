// Copyright 2026 The CoLTE Authors
// SPDX-License-Identifier: Apache-2.0

package export

import (
	"context"
	"errors"

	"github.com/uw-ictd/colte-log-uploader/lib/archive"
	"github.com/uw-ictd/colte-log-uploader/lib/logstore"
	"github.com/uw-ictd/colte-log-uploader/lib/pseudonym"
	"github.com/uw-ictd/colte-log-uploader/lib/record"
)

// Category classifies a run failure so operators and metrics can tell
// bad input from a store or disk problem without parsing messages.
type Category string

const (
	// CategoryNone means the run succeeded.
	CategoryNone Category = ""

	// CategoryValidation means the store holds data the exporter
	// refuses to archive: bad address lengths, unpaired answer lists,
	// malformed assignments, or an unusable key.
	CategoryValidation Category = "validation"

	// CategoryStore means a staging, read, or purge transaction failed
	// or a purge was refused. The transaction was rolled back.
	CategoryStore Category = "store"

	// CategoryIO means an archive could not be written. The archive
	// may end in a truncated record.
	CategoryIO Category = "io"

	// CategoryCanceled means the run's context ended.
	CategoryCanceled Category = "canceled"

	// CategoryInternal is everything else.
	CategoryInternal Category = "internal"
)

// Classify returns the category of err.
func Classify(err error) Category {
	switch {
	case err == nil:
		return CategoryNone
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return CategoryCanceled
	case errors.Is(err, record.ErrInvalidAddressLength),
		errors.Is(err, record.ErrMismatchedAnswerLists),
		errors.Is(err, record.ErrInvalidAnswer),
		errors.Is(err, pseudonym.ErrMalformedAssignment),
		errors.Is(err, pseudonym.ErrEmptySeed):
		return CategoryValidation
	case errors.Is(err, archive.ErrArchiveWrite):
		return CategoryIO
	case errors.Is(err, logstore.ErrStoreTransaction),
		errors.Is(err, logstore.ErrSchemaDrift),
		errors.Is(err, logstore.ErrSnapshotMutated),
		errors.Is(err, logstore.ErrSnapshotConsumed),
		errors.Is(err, logstore.ErrExportIncomplete),
		errors.Is(err, logstore.ErrAlreadyPurged),
		errors.Is(err, logstore.ErrStaleSnapshot),
		errors.Is(err, logstore.ErrForeignSnapshot):
		return CategoryStore
	default:
		return CategoryInternal
	}
}
