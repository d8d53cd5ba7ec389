// Copyright 2026 The CoLTE Authors
// SPDX-License-Identifier: Apache-2.0

// Package archive writes and reads exported log archives.
//
// An archive is a headerless sequence of CBOR data items (RFC 8742), one
// per exported row, optionally wrapped end to end in a zstd or LZ4 frame
// stream. Files are only ever appended to: each run that targets an
// existing archive adds its records at the end, and with compression
// each run contributes one complete compressed frame. Both decoders read
// concatenated frames as a single stream, so an archive appended to by
// many runs reads back as one sequence.
//
// Writes go straight to the file (through the compressor, if any) with
// no extra buffering. A crash mid-run can leave a truncated final item
// or frame; [Reader.Next] reports that as [ErrTruncated] rather than
// attempting repair.
package archive
