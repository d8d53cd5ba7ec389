// Copyright 2026 The CoLTE Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
)

// MaxKeySize bounds key files and key lines.
const MaxKeySize = 64 << 10

// ReadKeyFile reads the whole file at path as the key, byte for byte.
// Nothing is trimmed: a trailing newline is part of the key, matching
// how earlier archives were keyed from the same file.
func ReadKeyFile(path string) (*Buffer, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("secret: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxKeySize+1))
	if err != nil {
		clear(data)
		return nil, fmt.Errorf("secret: reading %s: %w", path, err)
	}
	if len(data) > MaxKeySize {
		clear(data)
		return nil, fmt.Errorf("secret: %s is larger than %d bytes", path, MaxKeySize)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmpty, path)
	}
	return FromBytes(data)
}

// ReadKeyLine reads the first line of r as the key. The line terminator
// (LF or CRLF) is not part of the key; other whitespace is.
func ReadKeyLine(r io.Reader) (*Buffer, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), MaxKeySize)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("secret: reading key: %w", err)
		}
		return nil, fmt.Errorf("%w: no key line", ErrEmpty)
	}
	line := bytes.Clone(scanner.Bytes())
	clear(scanner.Bytes())
	return FromBytes(line)
}
