// Copyright 2026 The CoLTE Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"os"

	"github.com/uw-ictd/colte-log-uploader/lib/codec"
)

// ErrArchiveWrite wraps every failure to write, flush, or close an
// archive file. The file may hold a truncated final record.
var ErrArchiveWrite = errors.New("archive: write failed")

// DefaultProgressEvery is the record cadence of progress log lines.
const DefaultProgressEvery = 10000

// FileMode is the permission of newly created archives.
const FileMode = 0o640

// Options configures a Writer.
type Options struct {
	// Compression wraps the appended records in a stream compressor.
	Compression Compression

	// ProgressEvery logs a progress line every this many records. Zero
	// uses DefaultProgressEvery; negative disables progress lines.
	ProgressEvery int

	// Logger receives progress lines. Nil discards them.
	Logger *slog.Logger
}

// Writer appends CBOR records to an archive file. It is not safe for
// concurrent use.
type Writer struct {
	path          string
	file          *os.File
	compressor    io.WriteCloser
	encoder       *codec.Encoder
	logger        *slog.Logger
	progressEvery int64

	count  int64
	err    error
	closed bool
}

// Create opens path for appending, creating it if needed.
func Create(path string, options Options) (*Writer, error) {
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	progressEvery := int64(options.ProgressEvery)
	if progressEvery == 0 {
		progressEvery = DefaultProgressEvery
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, FileMode)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %w", ErrArchiveWrite, path, err)
	}
	compressor, err := newCompressor(file, options.Compression)
	if err != nil {
		file.Close()
		return nil, err
	}

	logger.Debug("archive opened",
		"path", path,
		"compression", options.Compression.String(),
	)
	return &Writer{
		path:          path,
		file:          file,
		compressor:    compressor,
		encoder:       codec.NewEncoder(compressor),
		logger:        logger,
		progressEvery: progressEvery,
	}, nil
}

// Path returns the archive's file path.
func (w *Writer) Path() string { return w.path }

// Count returns the number of records appended so far.
func (w *Writer) Count() int64 { return w.count }

// Append encodes v as one CBOR data item and writes it. After a failed
// Append every further call returns the same error.
func (w *Writer) Append(v any) error {
	if w.closed {
		return fmt.Errorf("%w: %s is closed", ErrArchiveWrite, w.path)
	}
	if w.err != nil {
		return w.err
	}
	if err := w.encoder.Encode(v); err != nil {
		w.err = fmt.Errorf("%w: %s record %d: %w", ErrArchiveWrite, w.path, w.count, err)
		return w.err
	}
	w.count++
	if w.progressEvery > 0 && w.count%w.progressEvery == 0 {
		w.logger.Info("archive progress", "path", w.path, "records", w.count)
	}
	return nil
}

// Close flushes the compressor, syncs, and closes the file. The
// compressor is flushed exactly once; later calls return nil.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	flushErr := w.compressor.Close()
	var syncErr error
	if flushErr == nil {
		syncErr = w.file.Sync()
	}
	closeErr := w.file.Close()

	if err := errors.Join(flushErr, syncErr, closeErr); err != nil {
		return fmt.Errorf("%w: closing %s: %w", ErrArchiveWrite, w.path, err)
	}
	w.logger.Debug("archive closed", "path", w.path, "records", w.count)
	return w.err
}

// StreamToFile appends every element of records to the archive at path
// and closes it. It stops at the first error from records or from the
// write, closing the file in either case; the returned count is the
// number of records written.
func StreamToFile[T any](path string, records iter.Seq2[T, error], options Options) (count int64, err error) {
	writer, err := Create(path, options)
	if err != nil {
		return 0, err
	}
	defer func() {
		if closeErr := writer.Close(); err == nil {
			err = closeErr
		}
		count = writer.Count()
	}()

	for value, err := range records {
		if err != nil {
			return 0, err
		}
		if err := writer.Append(value); err != nil {
			return 0, err
		}
	}
	return 0, nil
}
