// Copyright 2026 The CoLTE Authors
// SPDX-License-Identifier: Apache-2.0

// colte-archive-cat decodes flow or DNS archives written by
// colte-log-export and prints one JSON object per record on stdout.
//
// The archive kind and compression are not recorded in the file, so
// they are given with --kind and --compression. Records from several
// files are printed in argument order. A truncated trailing record, left
// by an interrupted export, is reported after every complete record has
// been printed.
//
// With --diag each record is printed in CBOR diagnostic notation
// (RFC 8949 §8) instead, which needs no --kind and shows the tags and
// field names exactly as stored.
package main
