// Copyright 2026 The CoLTE Authors
// SPDX-License-Identifier: Apache-2.0

package record

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAddressLength matches every *InvalidAddressLengthError.
	ErrInvalidAddressLength = errors.New("record: invalid address length")

	// ErrMismatchedAnswerLists means a DNS answer's address and TTL
	// lists have different lengths after empty fragments are dropped.
	ErrMismatchedAnswerLists = errors.New("record: mismatched answer address and TTL lists")

	// ErrInvalidAnswer means an answer address or TTL does not parse.
	ErrInvalidAnswer = errors.New("record: invalid answer")

	// ErrEndpointConflict means an archive entry endpoint carries both
	// an address and a pseudonym, or neither.
	ErrEndpointConflict = errors.New("record: endpoint must carry exactly one of address or pseudonym")
)

// InvalidAddressLengthError reports an address column whose blob is
// neither 4 nor 16 bytes.
type InvalidAddressLengthError struct {
	// Column is the store column the blob came from.
	Column string

	// Length is the blob's length in bytes.
	Length int
}

func (e *InvalidAddressLengthError) Error() string {
	return fmt.Sprintf("record: %s is %d bytes, want 4 or 16", e.Column, e.Length)
}

// Unwrap lets errors.Is match ErrInvalidAddressLength.
func (e *InvalidAddressLengthError) Unwrap() error { return ErrInvalidAddressLength }
