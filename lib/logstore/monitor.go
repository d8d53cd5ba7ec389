// Copyright 2026 The CoLTE Authors
// SPDX-License-Identifier: Apache-2.0

package logstore

import (
	"fmt"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// The writers below are the monitor's side of the store. The exporter
// never calls them; they exist for the monitor process, for seeding
// databases by hand, and for tests that need concurrent inserts.

// InsertFlow appends one row to flowlogs.
func InsertFlow(conn *sqlite.Conn, row FlowRow) error {
	err := sqlitex.Execute(conn, `
		INSERT INTO flowlogs (intervalStart, intervalStop, addressA, addressB,
			transportProtocol, portA, portB, bytesAtoB, bytesBtoA)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		&sqlitex.ExecOptions{Args: []any{
			row.IntervalStart, row.IntervalStop, row.AddressA, row.AddressB,
			row.TransportProtocol, row.PortA, row.PortB, row.BytesAToB, row.BytesBToA,
		}})
	if err != nil {
		return fmt.Errorf("logstore: inserting flow: %w", err)
	}
	return nil
}

// Answer is one answers row as the monitor writes it.
type Answer struct {
	Index       int64
	Host        string
	IPAddresses string
	TTLs        string
}

// InsertAnswer adds one answer. Index must be unused.
func InsertAnswer(conn *sqlite.Conn, answer Answer) error {
	err := sqlitex.Execute(conn,
		"INSERT INTO answers (idx, host, ip_addresses, ttls) VALUES (?, ?, ?, ?)",
		&sqlitex.ExecOptions{Args: []any{answer.Index, answer.Host, answer.IPAddresses, answer.TTLs}})
	if err != nil {
		return fmt.Errorf("logstore: inserting answer %d: %w", answer.Index, err)
	}
	return nil
}

// InsertDNSResponse appends one dnsResponses row referencing
// row.AnswerIndex. The answer fields of row are ignored.
func InsertDNSResponse(conn *sqlite.Conn, row DNSRow) error {
	err := sqlitex.Execute(conn, `
		INSERT INTO dnsResponses (time, srcIp, dstIp, transportProtocol,
			srcPort, dstPort, opcode, resultcode, answer)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		&sqlitex.ExecOptions{Args: []any{
			row.Time, row.SrcIP, row.DstIP, row.TransportProtocol,
			row.SrcPort, row.DstPort, row.Opcode, row.ResultCode, row.AnswerIndex,
		}})
	if err != nil {
		return fmt.Errorf("logstore: inserting dns response: %w", err)
	}
	return nil
}

// InsertAssignment adds one static_ips entry.
func InsertAssignment(conn *sqlite.Conn, assignment Assignment) error {
	err := sqlitex.Execute(conn, "INSERT INTO static_ips (imsi, ip) VALUES (?, ?)",
		&sqlitex.ExecOptions{Args: []any{assignment.Identity, assignment.Address}})
	if err != nil {
		return fmt.Errorf("logstore: inserting assignment for %s: %w", assignment.Identity, err)
	}
	return nil
}
