// Copyright 2026 The CoLTE Authors
// SPDX-License-Identifier: Apache-2.0

package logstore

import (
	"fmt"
	"strings"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// liveSchema is the monitor's side of the store. Timestamps are Unix
// nanoseconds; addresses are 4- or 16-byte network-order blobs except in
// static_ips and answers, which hold text.
const liveSchema = `
	CREATE TABLE IF NOT EXISTS flowlogs (
		intervalStart     INTEGER NOT NULL,
		intervalStop      INTEGER NOT NULL,
		addressA          BLOB NOT NULL,
		addressB          BLOB NOT NULL,
		transportProtocol INTEGER NOT NULL,
		portA             INTEGER NOT NULL,
		portB             INTEGER NOT NULL,
		bytesAtoB         INTEGER NOT NULL,
		bytesBtoA         INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS answers (
		idx          INTEGER PRIMARY KEY,
		host         TEXT NOT NULL,
		ip_addresses TEXT NOT NULL DEFAULT '',
		ttls         TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS dnsResponses (
		time              INTEGER NOT NULL,
		srcIp             BLOB NOT NULL,
		dstIp             BLOB NOT NULL,
		transportProtocol INTEGER NOT NULL,
		srcPort           INTEGER NOT NULL,
		dstPort           INTEGER NOT NULL,
		opcode            INTEGER NOT NULL,
		resultcode        INTEGER NOT NULL,
		answer            INTEGER NOT NULL REFERENCES answers(idx)
	);
	CREATE INDEX IF NOT EXISTS idx_dnsResponses_answer ON dnsResponses(answer);

	CREATE TABLE IF NOT EXISTS static_ips (
		imsi TEXT NOT NULL,
		ip   TEXT NOT NULL
	);
`

// bookkeepingSchema is owned by the exporter.
const bookkeepingSchema = `
	CREATE TABLE IF NOT EXISTS staging_epochs (
		kind      TEXT PRIMARY KEY,
		epoch     INTEGER NOT NULL,
		run_id    TEXT NOT NULL,
		staged_at INTEGER NOT NULL,
		row_count INTEGER NOT NULL,
		purged_at INTEGER
	);
`

// EnsureSchema creates the monitor's live tables if they do not exist.
// The exporter calls it only when asked to (fresh databases, tests);
// in production the monitor owns the schema.
func EnsureSchema(conn *sqlite.Conn) error {
	if err := sqlitex.ExecuteScript(conn, liveSchema, nil); err != nil {
		return fmt.Errorf("logstore: creating live schema: %w", err)
	}
	return nil
}

func ensureBookkeeping(conn *sqlite.Conn) error {
	if err := sqlitex.ExecuteScript(conn, bookkeepingSchema, nil); err != nil {
		return fmt.Errorf("logstore: creating staging_epochs: %w", err)
	}
	return nil
}

// Column orders. These are the contract between the staging queries and
// the row scanners; Query validates them against what SQLite returns.
var (
	flowColumns = []string{
		"intervalStart", "intervalStop", "addressA", "addressB",
		"transportProtocol", "portA", "portB", "bytesAtoB", "bytesBtoA",
	}

	dnsColumns = []string{
		"time", "srcIp", "dstIp", "transportProtocol", "srcPort", "dstPort",
		"opcode", "resultcode", "host", "ip_addresses", "ttls", "idx",
	}

	// dnsResponseColumns are the dnsResponses columns staged verbatim.
	// The staged idx column is matched against dnsResponses.answer.
	dnsResponseColumns = []string{
		"time", "srcIp", "dstIp", "transportProtocol", "srcPort", "dstPort",
		"opcode", "resultcode",
	}

	assignmentColumns = []string{"imsi", "ip"}
)

// Kind names one exportable log relation.
type Kind string

const (
	KindFlow Kind = "flow"
	KindDNS  Kind = "dns"
)

// kindSpec is the fixed naming and SQL of one log kind.
type kindSpec struct {
	kind         Kind
	stagingTable string
	// liveSelect produces the staging table's contents.
	liveSelect string
	// purge deletes live rows matching the staging table. Statements
	// run in order inside the purge transaction; the change count of
	// the first is reported as rows purged.
	purge []string
}

var flowSpec = kindSpec{
	kind:         KindFlow,
	stagingTable: "flow_staging",
	liveSelect:   "SELECT " + strings.Join(flowColumns, ", ") + " FROM flowlogs ORDER BY rowid",
	purge: []string{
		"DELETE FROM flowlogs WHERE EXISTS (SELECT 1 FROM flow_staging AS staged WHERE " +
			matchClause("flowlogs", "staged", flowColumns, flowColumns) + ")",
	},
}

var dnsSpec = kindSpec{
	kind:         KindDNS,
	stagingTable: "dns_staging",
	liveSelect: `SELECT
			response.time AS time,
			response.srcIp AS srcIp,
			response.dstIp AS dstIp,
			response.transportProtocol AS transportProtocol,
			response.srcPort AS srcPort,
			response.dstPort AS dstPort,
			response.opcode AS opcode,
			response.resultcode AS resultcode,
			answer.host AS host,
			answer.ip_addresses AS ip_addresses,
			answer.ttls AS ttls,
			answer.idx AS idx
		FROM dnsResponses AS response
		JOIN answers AS answer ON response.answer = answer.idx
		ORDER BY response.rowid`,
	purge: []string{
		"DELETE FROM dnsResponses WHERE EXISTS (SELECT 1 FROM dns_staging AS staged WHERE " +
			matchClause("dnsResponses", "staged",
				append(append([]string{}, dnsResponseColumns...), "answer"),
				append(append([]string{}, dnsResponseColumns...), "idx")) + ")",
		// Answers are shared by reference; drop only staged answers that
		// no remaining response points at.
		"DELETE FROM answers WHERE EXISTS (SELECT 1 FROM dns_staging AS staged WHERE " +
			matchClause("answers", "staged",
				[]string{"idx", "host", "ip_addresses", "ttls"},
				[]string{"idx", "host", "ip_addresses", "ttls"}) +
			") AND NOT EXISTS (SELECT 1 FROM dnsResponses AS remaining WHERE remaining.answer = answers.idx)",
	},
}

// matchClause builds a NULL-safe full-tuple equality between two column
// lists of equal length.
func matchClause(liveTable, stagedAlias string, liveColumns, stagedColumns []string) string {
	if len(liveColumns) != len(stagedColumns) {
		panic("logstore: matchClause column lists differ in length")
	}
	terms := make([]string, len(liveColumns))
	for index := range liveColumns {
		terms[index] = fmt.Sprintf("%s.%s IS %s.%s",
			liveTable, liveColumns[index], stagedAlias, stagedColumns[index])
	}
	return strings.Join(terms, " AND ")
}
