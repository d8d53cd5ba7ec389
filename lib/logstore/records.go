// Copyright 2026 The CoLTE Authors
// SPDX-License-Identifier: Apache-2.0

package logstore

// FlowRow is one flowlogs tuple exactly as stored. Addresses are the raw
// blobs; validating and interpreting them is the decoder's job.
type FlowRow struct {
	IntervalStart     int64 // Unix nanoseconds
	IntervalStop      int64 // Unix nanoseconds
	AddressA          []byte
	AddressB          []byte
	TransportProtocol int64
	PortA             int64
	PortB             int64
	BytesAToB         int64
	BytesBToA         int64
}

// DNSRow is one dnsResponses ⨝ answers tuple. IPAddresses and TTLs are
// the comma-separated lists the monitor writes into answers.
type DNSRow struct {
	Time              int64 // Unix nanoseconds
	SrcIP             []byte
	DstIP             []byte
	TransportProtocol int64
	SrcPort           int64
	DstPort           int64
	Opcode            int64
	ResultCode        int64
	Host              string
	IPAddresses       string
	TTLs              string
	AnswerIndex       int64
}

// Assignment is one static_ips entry: a subscriber identity (IMSI) and
// the address text assigned to it.
type Assignment struct {
	Identity string
	Address  string
}

func scanFlow(row *Row) (FlowRow, error) {
	return FlowRow{
		IntervalStart:     row.Int64("intervalStart"),
		IntervalStop:      row.Int64("intervalStop"),
		AddressA:          row.Blob("addressA"),
		AddressB:          row.Blob("addressB"),
		TransportProtocol: row.Int64("transportProtocol"),
		PortA:             row.Int64("portA"),
		PortB:             row.Int64("portB"),
		BytesAToB:         row.Int64("bytesAtoB"),
		BytesBToA:         row.Int64("bytesBtoA"),
	}, nil
}

func scanDNS(row *Row) (DNSRow, error) {
	return DNSRow{
		Time:              row.Int64("time"),
		SrcIP:             row.Blob("srcIp"),
		DstIP:             row.Blob("dstIp"),
		TransportProtocol: row.Int64("transportProtocol"),
		SrcPort:           row.Int64("srcPort"),
		DstPort:           row.Int64("dstPort"),
		Opcode:            row.Int64("opcode"),
		ResultCode:        row.Int64("resultcode"),
		Host:              row.Text("host"),
		IPAddresses:       row.Text("ip_addresses"),
		TTLs:              row.Text("ttls"),
		AnswerIndex:       row.Int64("idx"),
	}, nil
}

func scanAssignment(row *Row) (Assignment, error) {
	return Assignment{
		Identity: row.Text("imsi"),
		Address:  row.Text("ip"),
	}, nil
}
