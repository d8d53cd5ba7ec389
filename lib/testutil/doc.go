// Copyright 2026 The CoLTE Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for the exporter's
// packages.
//
// [LogDatabase] creates a temporary log store with the monitor's live
// schema and returns a monitor-side connection for seeding rows and for
// inserting concurrently with an exporter run. [Flow], [DNSResponse]
// and [Addr] build fixture rows.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
package testutil
