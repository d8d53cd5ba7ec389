// Copyright 2026 The CoLTE Authors
// SPDX-License-Identifier: Apache-2.0

// Package logstore reads the traffic monitor's SQLite log store and
// implements the staging/purge protocol that lets the exporter remove
// exactly the rows it archived.
//
// # Relations
//
// The monitor appends to flowlogs, dnsResponses and answers, and
// maintains static_ips (subscriber identity to address). The exporter
// never writes those tables except to purge.
//
// # Staging
//
// [Store.StageFlows] and [Store.StageDNS] copy the live relation into a
// fixed staging table (flow_staging, dns_staging) inside one IMMEDIATE
// transaction and bump a per-kind epoch in staging_epochs. The returned
// [Snapshot] is the only way to read the staged rows and the only
// argument [Store.Purge] accepts.
//
// Purge deletes live rows whose full column tuple equals a staged row.
// A row the monitor inserted after staging has no staged twin and
// survives. Purge refuses a snapshot that was not read to the end, was
// already purged, or has been superseded by a newer staging of the same
// kind, so a purge can never run against a stale or partially exported
// snapshot.
//
// # Concurrency
//
// A Store owns one connection for its lifetime and is not safe for
// concurrent use. At most one snapshot cursor is open at a time.
// Concurrent exporter runs against one database must be serialized by
// the caller (see lib/runlock).
package logstore
