// Copyright 2026 The CoLTE Authors
// SPDX-License-Identifier: Apache-2.0

package record

import (
	"net/netip"
	"time"
)

// FlowLog is one decoded flow summary: the bytes exchanged between two
// endpoints over an interval.
type FlowLog struct {
	IntervalStart     time.Time
	IntervalStop      time.Time
	AddressA          netip.Addr
	AddressB          netip.Addr
	TransportProtocol int
	PortA             int
	PortB             int
	BytesAToB         int64
	BytesBToA         int64
}

// DNSLog is one decoded DNS response joined with its answer.
// ResponseAddresses and ResponseTTLs are paired by position and always
// have the same length.
type DNSLog struct {
	Time              time.Time
	SrcIP             netip.Addr
	DstIP             netip.Addr
	TransportProtocol int
	SrcPort           int
	DstPort           int
	Opcode            int
	ResultCode        int
	Host              string
	ResponseAddresses []netip.Addr
	ResponseTTLs      []uint32
	AnswerIndex       int64
}
