// Copyright 2026 The CoLTE Authors
// SPDX-License-Identifier: Apache-2.0

package record

import (
	"fmt"
	"time"
)

// FlowEntry is the archived form of a FlowLog. For each endpoint exactly
// one of the address (text form) and the obfuscated pseudonym is set;
// the other is omitted from the encoding.
type FlowEntry struct {
	StartTime         time.Time `cbor:"start_time" json:"start_time"`
	EndTime           time.Time `cbor:"end_time" json:"end_time"`
	AddressA          string    `cbor:"address_a,omitempty" json:"address_a,omitempty"`
	ObfuscatedA       string    `cbor:"obfuscated_a,omitempty" json:"obfuscated_a,omitempty"`
	AddressB          string    `cbor:"address_b,omitempty" json:"address_b,omitempty"`
	ObfuscatedB       string    `cbor:"obfuscated_b,omitempty" json:"obfuscated_b,omitempty"`
	TransportProtocol int       `cbor:"transport_protocol" json:"transport_protocol"`
	PortA             int       `cbor:"port_a" json:"port_a"`
	PortB             int       `cbor:"port_b" json:"port_b"`
	BytesAToB         int64     `cbor:"bytes_a_to_b" json:"bytes_a_to_b"`
	BytesBToA         int64     `cbor:"bytes_b_to_a" json:"bytes_b_to_a"`
}

// Validate checks the one-of rule for both endpoints.
func (e *FlowEntry) Validate() error {
	if err := checkEndpoint("a", e.AddressA, e.ObfuscatedA); err != nil {
		return err
	}
	return checkEndpoint("b", e.AddressB, e.ObfuscatedB)
}

// DNSEntry is the archived form of a DNSLog. The source and destination
// follow the same one-of rule as FlowEntry endpoints. Response addresses
// are never pseudonymized.
type DNSEntry struct {
	Timestamp         time.Time `cbor:"timestamp" json:"timestamp"`
	SrcIP             string    `cbor:"src_ip,omitempty" json:"src_ip,omitempty"`
	ObfuscatedSrc     string    `cbor:"obfuscated_src,omitempty" json:"obfuscated_src,omitempty"`
	DstIP             string    `cbor:"dst_ip,omitempty" json:"dst_ip,omitempty"`
	ObfuscatedDst     string    `cbor:"obfuscated_dst,omitempty" json:"obfuscated_dst,omitempty"`
	Protocol          int       `cbor:"protocol" json:"protocol"`
	SrcPort           int       `cbor:"src_port" json:"src_port"`
	DstPort           int       `cbor:"dst_port" json:"dst_port"`
	Opcode            int       `cbor:"opcode" json:"opcode"`
	ResultCode        int       `cbor:"resultcode" json:"resultcode"`
	Host              string    `cbor:"host" json:"host"`
	ResponseAddresses []string  `cbor:"response_addresses" json:"response_addresses"`
	ResponseTTLs      []uint32  `cbor:"response_ttls" json:"response_ttls"`
	AnswerIndex       int64     `cbor:"answer_index" json:"answer_index"`
}

// Validate checks the one-of rule for source and destination and the
// pairing of the response lists.
func (e *DNSEntry) Validate() error {
	if err := checkEndpoint("src", e.SrcIP, e.ObfuscatedSrc); err != nil {
		return err
	}
	if err := checkEndpoint("dst", e.DstIP, e.ObfuscatedDst); err != nil {
		return err
	}
	if len(e.ResponseAddresses) != len(e.ResponseTTLs) {
		return fmt.Errorf("%w: %d addresses, %d TTLs",
			ErrMismatchedAnswerLists, len(e.ResponseAddresses), len(e.ResponseTTLs))
	}
	return nil
}

func checkEndpoint(name, address, pseudonym string) error {
	if (address == "") == (pseudonym == "") {
		return fmt.Errorf("%w: endpoint %s", ErrEndpointConflict, name)
	}
	return nil
}
