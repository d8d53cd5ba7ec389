// Copyright 2026 The CoLTE Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"os"

	"github.com/uw-ictd/colte-log-uploader/lib/codec"
)

// ErrTruncated means the archive ends partway through a record or a
// compressed frame.
var ErrTruncated = errors.New("archive: truncated")

// Reader decodes the records of an archive in order.
type Reader struct {
	path    string
	file    *os.File
	release func()
	decoder *codec.Decoder
	count   int64
}

// Open opens the archive at path. The compression must be the one it
// was written with; it is not recorded in the file.
func Open(path string, compression Compression) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("archive: %w", err)
	}
	stream, release, err := newDecompressor(file, compression)
	if err != nil {
		file.Close()
		return nil, err
	}
	return &Reader{
		path:    path,
		file:    file,
		release: release,
		decoder: codec.NewDecoder(stream),
	}, nil
}

// Next decodes the next record into v. It returns io.EOF after the last
// record.
func (r *Reader) Next(v any) error {
	err := r.decoder.Decode(v)
	switch {
	case err == nil:
		r.count++
		return nil
	case err == io.EOF:
		return io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF):
		return fmt.Errorf("%w: %s after %d records: %w", ErrTruncated, r.path, r.count, err)
	default:
		return fmt.Errorf("archive: %s record %d: %w", r.path, r.count, err)
	}
}

// Close releases the decompressor and closes the file.
func (r *Reader) Close() error {
	r.release()
	return r.file.Close()
}

// All reads the archive at path to the end, decoding each record as a T.
// The file is closed when iteration stops.
func All[T any](path string, compression Compression) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		reader, err := Open(path, compression)
		if err != nil {
			yield(zero, err)
			return
		}
		defer reader.Close()

		for {
			var value T
			err := reader.Next(&value)
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(zero, err)
				return
			}
			if !yield(value, nil) {
				return
			}
		}
	}
}
