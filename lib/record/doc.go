// Copyright 2026 The CoLTE Authors
// SPDX-License-Identifier: Apache-2.0

// Package record defines the typed flow and DNS records and the decoder
// that produces them from raw log store rows.
//
// [DecodeFlow] and [DecodeDNS] validate what the monitor wrote: address
// blobs must be 4 bytes (IPv4) or 16 bytes (IPv6), and a DNS answer's
// comma-separated address and TTL lists must pair up one to one. Any
// violation is an input validation error that aborts the export; no
// record is produced for the offending row.
//
// [FlowEntry] and [DNSEntry] are the archived forms, produced from
// records by the pseudonymizer. Each endpoint carries either its address
// or its pseudonym, never both.
package record
