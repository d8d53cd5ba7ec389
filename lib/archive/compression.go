// Copyright 2026 The CoLTE Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"bufio"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects the stream compressor wrapped around an archive.
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionZstd Compression = "zstd"
	CompressionLZ4  Compression = "lz4"
)

// ParseCompression parses a compression name. The empty string is
// CompressionNone.
func ParseCompression(name string) (Compression, error) {
	switch Compression(name) {
	case "", CompressionNone:
		return CompressionNone, nil
	case CompressionZstd, CompressionLZ4:
		return Compression(name), nil
	default:
		return "", fmt.Errorf("archive: unknown compression %q (want none, zstd or lz4)", name)
	}
}

func (c Compression) String() string {
	if c == "" {
		return string(CompressionNone)
	}
	return string(c)
}

// nopWriteCloser passes writes through; Close does nothing.
type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// newCompressor wraps w. Closing the result flushes the final frame but
// does not close w.
func newCompressor(w io.Writer, compression Compression) (io.WriteCloser, error) {
	switch compression {
	case "", CompressionNone:
		return nopWriteCloser{w}, nil
	case CompressionZstd:
		encoder, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, fmt.Errorf("archive: zstd encoder: %w", err)
		}
		return encoder, nil
	case CompressionLZ4:
		return lz4.NewWriter(w), nil
	default:
		return nil, fmt.Errorf("archive: unsupported compression %q", string(compression))
	}
}

// newDecompressor wraps r. A zero-length stream reads as empty for every
// compression. The returned close function releases decoder resources
// but not r.
func newDecompressor(r io.Reader, compression Compression) (io.Reader, func(), error) {
	buffered := bufio.NewReader(r)
	if _, err := buffered.Peek(1); err == io.EOF {
		return buffered, func() {}, nil
	}

	switch compression {
	case "", CompressionNone:
		return buffered, func() {}, nil
	case CompressionZstd:
		decoder, err := zstd.NewReader(buffered)
		if err != nil {
			return nil, nil, fmt.Errorf("archive: zstd decoder: %w", err)
		}
		return decoder, decoder.Close, nil
	case CompressionLZ4:
		return &lz4Frames{source: buffered, reader: lz4.NewReader(buffered)}, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("archive: unsupported compression %q", string(compression))
	}
}

// lz4Frames reads a sequence of concatenated LZ4 frames as one stream.
type lz4Frames struct {
	source *bufio.Reader
	reader *lz4.Reader
}

func (f *lz4Frames) Read(p []byte) (int, error) {
	for {
		n, err := f.reader.Read(p)
		if err != io.EOF || n > 0 {
			return n, err
		}
		if _, err := f.source.Peek(1); err != nil {
			if err == io.EOF {
				return 0, io.EOF
			}
			return 0, err
		}
		f.reader.Reset(f.source)
	}
}
