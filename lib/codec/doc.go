// Copyright 2026 The CoLTE Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec holds the CBOR configuration used for archive frames.
//
// Each exported log record becomes one self-contained CBOR data item.
// An archive is a CBOR sequence (RFC 8742): items written back to back,
// no header, no length prefix. Any CBOR decoder can read it, which keeps
// the archive portable beyond this repository.
//
// Encoding uses Core Deterministic Encoding (RFC 8949 §4.2) so the same
// record always produces the same bytes, and timestamps are written as
// tag 0 RFC 3339 strings with nanosecond precision so the archive is
// self-describing and lossless for the store's nanosecond timestamps.
//
//	encoder := codec.NewEncoder(file)
//	decoder := codec.NewDecoder(file)
//
// [RawMessage] and [Diagnose] let inspection tools print records in
// CBOR diagnostic notation without knowing their type.
//
// Archive types carry `cbor` struct tags only. Optional fields use
// omitempty; absence is meaningful (an endpoint carries either its
// address or its pseudonym, never both).
package codec
