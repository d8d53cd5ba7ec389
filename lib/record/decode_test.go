// Copyright 2026 The CoLTE Authors
// SPDX-License-Identifier: Apache-2.0

package record_test

import (
	"errors"
	"net/netip"
	"slices"
	"testing"
	"time"

	"github.com/uw-ictd/colte-log-uploader/lib/logstore"
	"github.com/uw-ictd/colte-log-uploader/lib/record"
)

var start = time.Date(2026, 3, 1, 12, 0, 0, 5, time.UTC)

func flowRow(a, b []byte) logstore.FlowRow {
	return logstore.FlowRow{
		IntervalStart:     start.UnixNano(),
		IntervalStop:      start.Add(time.Minute).UnixNano(),
		AddressA:          a,
		AddressB:          b,
		TransportProtocol: 6,
		PortA:             40000,
		PortB:             443,
		BytesAToB:         1 << 40,
		BytesBToA:         84000,
	}
}

func TestDecodeFlow(t *testing.T) {
	v6 := netip.MustParseAddr("2001:db8::1")
	row := flowRow([]byte{10, 0, 0, 5}, v6.AsSlice())

	got, err := record.DecodeFlow(row)
	if err != nil {
		t.Fatalf("DecodeFlow: %v", err)
	}
	want := record.FlowLog{
		IntervalStart:     start,
		IntervalStop:      start.Add(time.Minute),
		AddressA:          netip.MustParseAddr("10.0.0.5"),
		AddressB:          v6,
		TransportProtocol: 6,
		PortA:             40000,
		PortB:             443,
		BytesAToB:         1 << 40,
		BytesBToA:         84000,
	}
	if got != want {
		t.Errorf("DecodeFlow = %+v, want %+v", got, want)
	}
	if got.IntervalStart.Location() != time.UTC {
		t.Errorf("IntervalStart location = %v, want UTC", got.IntervalStart.Location())
	}
}

func TestDecodeFlowAddressLength(t *testing.T) {
	tests := []struct {
		name   string
		a, b   []byte
		column string
		length int
	}{
		{name: "six bytes", a: []byte{1, 2, 3, 4, 5, 6}, b: []byte{1, 1, 1, 1}, column: "addressA", length: 6},
		{name: "empty", a: []byte{1, 1, 1, 1}, b: nil, column: "addressB", length: 0},
		{name: "five bytes b", a: []byte{1, 1, 1, 1}, b: []byte{1, 2, 3, 4, 5}, column: "addressB", length: 5},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := record.DecodeFlow(flowRow(test.a, test.b))
			if !errors.Is(err, record.ErrInvalidAddressLength) {
				t.Fatalf("DecodeFlow: %v, want ErrInvalidAddressLength", err)
			}
			var lengthErr *record.InvalidAddressLengthError
			if !errors.As(err, &lengthErr) {
				t.Fatalf("error %T is not *InvalidAddressLengthError", err)
			}
			if lengthErr.Column != test.column || lengthErr.Length != test.length {
				t.Errorf("error = {%s %d}, want {%s %d}", lengthErr.Column, lengthErr.Length, test.column, test.length)
			}
		})
	}
}

func TestDecodeFlowMixedFamilies(t *testing.T) {
	// Each endpoint is sized independently.
	got, err := record.DecodeFlow(flowRow([]byte{10, 0, 0, 5}, netip.MustParseAddr("::1").AsSlice()))
	if err != nil {
		t.Fatalf("DecodeFlow: %v", err)
	}
	if !got.AddressA.Is4() || !got.AddressB.Is6() {
		t.Errorf("families = %v/%v, want IPv4/IPv6", got.AddressA, got.AddressB)
	}
}

func dnsRow(addresses, ttls string) logstore.DNSRow {
	return logstore.DNSRow{
		Time:              start.UnixNano(),
		SrcIP:             []byte{8, 8, 8, 8},
		DstIP:             []byte{10, 0, 0, 5},
		TransportProtocol: 17,
		SrcPort:           53,
		DstPort:           51000,
		Opcode:            0,
		ResultCode:        3,
		Host:              "example.com",
		IPAddresses:       addresses,
		TTLs:              ttls,
		AnswerIndex:       42,
	}
}

func TestDecodeDNS(t *testing.T) {
	got, err := record.DecodeDNS(dnsRow("93.184.216.34,2606:2800:220:1::", "300,60"))
	if err != nil {
		t.Fatalf("DecodeDNS: %v", err)
	}
	if got.Host != "example.com" || got.AnswerIndex != 42 || got.ResultCode != 3 || got.SrcPort != 53 {
		t.Errorf("scalar fields = %+v", got)
	}
	if got.SrcIP != netip.MustParseAddr("8.8.8.8") || got.DstIP != netip.MustParseAddr("10.0.0.5") {
		t.Errorf("endpoints = %v -> %v", got.SrcIP, got.DstIP)
	}
	wantAddresses := []netip.Addr{netip.MustParseAddr("93.184.216.34"), netip.MustParseAddr("2606:2800:220:1::")}
	if !slices.Equal(got.ResponseAddresses, wantAddresses) {
		t.Errorf("ResponseAddresses = %v, want %v", got.ResponseAddresses, wantAddresses)
	}
	if !slices.Equal(got.ResponseTTLs, []uint32{300, 60}) {
		t.Errorf("ResponseTTLs = %v, want [300 60]", got.ResponseTTLs)
	}
	if !got.Time.Equal(start) {
		t.Errorf("Time = %v, want %v", got.Time, start)
	}
}

func TestDecodeDNSEmptyFragments(t *testing.T) {
	tests := []struct {
		name      string
		addresses string
		ttls      string
		want      []string
		wantTTLs  []uint32
	}{
		{name: "no answers", addresses: "", ttls: "", want: []string{}, wantTTLs: []uint32{}},
		{name: "trailing separator", addresses: "1.1.1.1,", ttls: "30,", want: []string{"1.1.1.1"}, wantTTLs: []uint32{30}},
		{name: "trailing separator on one list", addresses: "1.1.1.1,", ttls: "30", want: []string{"1.1.1.1"}, wantTTLs: []uint32{30}},
		{name: "empty slot keeps pairing", addresses: "1.1.1.1,,1.0.0.1", ttls: "30,,60", want: []string{"1.1.1.1", "1.0.0.1"}, wantTTLs: []uint32{30, 60}},
		{name: "empty address with ttl", addresses: ",8.8.8.8", ttls: "7,8", want: []string{"8.8.8.8"}, wantTTLs: []uint32{8}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := record.DecodeDNS(dnsRow(test.addresses, test.ttls))
			if err != nil {
				t.Fatalf("DecodeDNS: %v", err)
			}
			addresses := make([]string, len(got.ResponseAddresses))
			for index, address := range got.ResponseAddresses {
				addresses[index] = address.String()
			}
			if !slices.Equal(addresses, test.want) {
				t.Errorf("ResponseAddresses = %v, want %v", addresses, test.want)
			}
			if !slices.Equal(got.ResponseTTLs, test.wantTTLs) {
				t.Errorf("ResponseTTLs = %v, want %v", got.ResponseTTLs, test.wantTTLs)
			}
		})
	}
}

func TestDecodeDNSErrors(t *testing.T) {
	tests := []struct {
		name      string
		row       logstore.DNSRow
		wantError error
	}{
		{name: "more addresses", row: dnsRow("1.1.1.1,1.0.0.1", "30"), wantError: record.ErrMismatchedAnswerLists},
		{name: "more ttls", row: dnsRow("1.1.1.1", "30,30,30"), wantError: record.ErrMismatchedAnswerLists},
		{name: "ttls without addresses", row: dnsRow("", "30"), wantError: record.ErrMismatchedAnswerLists},
		{name: "empty slot in addresses only", row: dnsRow("1.1.1.1,,1.0.0.1", "30,30"), wantError: record.ErrMismatchedAnswerLists},
		{name: "leading empty ttl slot", row: dnsRow("1.1.1.1,8.8.8.8", ",7,8"), wantError: record.ErrMismatchedAnswerLists},
		{name: "inner empty ttl slot", row: dnsRow("1.1.1.1,8.8.8.8", "7,,8"), wantError: record.ErrMismatchedAnswerLists},
		{name: "address without ttl", row: dnsRow("1.1.1.1,8.8.8.8", ",7"), wantError: record.ErrMismatchedAnswerLists},
		{name: "bad address", row: dnsRow("not-an-ip", "30"), wantError: record.ErrInvalidAnswer},
		{name: "bad ttl", row: dnsRow("1.1.1.1", "soon"), wantError: record.ErrInvalidAnswer},
		{name: "ttl overflow", row: dnsRow("1.1.1.1", "4294967296"), wantError: record.ErrInvalidAnswer},
		{name: "source length", row: func() logstore.DNSRow {
			row := dnsRow("", "")
			row.SrcIP = []byte{1, 2, 3}
			return row
		}(), wantError: record.ErrInvalidAddressLength},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := record.DecodeDNS(test.row); !errors.Is(err, test.wantError) {
				t.Fatalf("DecodeDNS: %v, want %v", err, test.wantError)
			}
		})
	}
}

func TestEntryValidate(t *testing.T) {
	tests := []struct {
		name  string
		entry record.FlowEntry
		valid bool
	}{
		{name: "addresses", entry: record.FlowEntry{AddressA: "10.0.0.5", AddressB: "1.1.1.1"}, valid: true},
		{name: "pseudonym a", entry: record.FlowEntry{ObfuscatedA: "ab", AddressB: "1.1.1.1"}, valid: true},
		{name: "both on a", entry: record.FlowEntry{AddressA: "10.0.0.5", ObfuscatedA: "ab", AddressB: "1.1.1.1"}},
		{name: "neither on b", entry: record.FlowEntry{AddressA: "10.0.0.5"}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.entry.Validate()
			if test.valid && err != nil {
				t.Errorf("Validate: %v", err)
			}
			if !test.valid && !errors.Is(err, record.ErrEndpointConflict) {
				t.Errorf("Validate: %v, want ErrEndpointConflict", err)
			}
		})
	}

	dns := record.DNSEntry{SrcIP: "8.8.8.8", ObfuscatedDst: "ab", ResponseAddresses: []string{"1.1.1.1"}}
	if err := dns.Validate(); !errors.Is(err, record.ErrMismatchedAnswerLists) {
		t.Errorf("DNSEntry.Validate with unpaired TTLs: %v, want ErrMismatchedAnswerLists", err)
	}
}
