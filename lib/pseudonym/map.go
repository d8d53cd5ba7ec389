// Copyright 2026 The CoLTE Authors
// SPDX-License-Identifier: Apache-2.0

package pseudonym

import (
	"errors"
	"fmt"
	"iter"
	"net/netip"
	"unicode/utf8"

	"github.com/uw-ictd/colte-log-uploader/lib/logstore"
	"github.com/uw-ictd/colte-log-uploader/lib/record"
)

// ErrMalformedAssignment means a static_ips row cannot be used: empty
// or non-UTF-8 identity, unparseable address, or an address assigned to
// two different identities.
var ErrMalformedAssignment = errors.New("pseudonym: malformed assignment")

// Map is the run's address-to-pseudonym table. It is read-only after
// Build and safe for concurrent lookups.
type Map struct {
	digests map[netip.Addr]string
}

// Build consumes assignments to completion and digests every identity
// under seed. Any malformed assignment, and any error from the
// sequence, aborts the build.
func Build(assignments iter.Seq2[logstore.Assignment, error], digest Digest, seed []byte) (*Map, error) {
	keyed, err := digest.Keyed(seed)
	if err != nil {
		return nil, err
	}

	digests := make(map[netip.Addr]string)
	owners := make(map[netip.Addr]string)
	for assignment, err := range assignments {
		if err != nil {
			return nil, fmt.Errorf("pseudonym: reading assignments: %w", err)
		}
		if assignment.Identity == "" {
			return nil, fmt.Errorf("%w: empty identity for address %q", ErrMalformedAssignment, assignment.Address)
		}
		if !utf8.ValidString(assignment.Identity) {
			return nil, fmt.Errorf("%w: identity for address %q is not valid UTF-8", ErrMalformedAssignment, assignment.Address)
		}
		address, err := netip.ParseAddr(assignment.Address)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedAssignment, err)
		}
		if owner, ok := owners[address]; ok {
			if owner != assignment.Identity {
				return nil, fmt.Errorf("%w: address %s assigned to two identities", ErrMalformedAssignment, address)
			}
			continue
		}
		owners[address] = assignment.Identity
		digests[address] = keyed(assignment.Identity)
	}
	clear(owners)

	return &Map{digests: digests}, nil
}

// Lookup returns the pseudonym for address, if it is assigned.
func (m *Map) Lookup(address netip.Addr) (string, bool) {
	digest, ok := m.digests[address]
	return digest, ok
}

// Len is the number of assigned addresses.
func (m *Map) Len() int {
	return len(m.digests)
}

// endpoint returns (address text, "") on a miss and ("", digest) on a
// hit.
func (m *Map) endpoint(address netip.Addr) (string, string) {
	if digest, ok := m.digests[address]; ok {
		return "", digest
	}
	return address.String(), ""
}

// Flow builds the archive entry for a flow record, pseudonymizing each
// endpoint independently.
func (m *Map) Flow(flow record.FlowLog) record.FlowEntry {
	addressA, obfuscatedA := m.endpoint(flow.AddressA)
	addressB, obfuscatedB := m.endpoint(flow.AddressB)
	return record.FlowEntry{
		StartTime:         flow.IntervalStart,
		EndTime:           flow.IntervalStop,
		AddressA:          addressA,
		ObfuscatedA:       obfuscatedA,
		AddressB:          addressB,
		ObfuscatedB:       obfuscatedB,
		TransportProtocol: flow.TransportProtocol,
		PortA:             flow.PortA,
		PortB:             flow.PortB,
		BytesAToB:         flow.BytesAToB,
		BytesBToA:         flow.BytesBToA,
	}
}

// DNS builds the archive entry for a DNS record. Source and destination
// are pseudonymized; response addresses are copied as text.
func (m *Map) DNS(dns record.DNSLog) record.DNSEntry {
	srcIP, obfuscatedSrc := m.endpoint(dns.SrcIP)
	dstIP, obfuscatedDst := m.endpoint(dns.DstIP)

	addresses := make([]string, len(dns.ResponseAddresses))
	for index, address := range dns.ResponseAddresses {
		addresses[index] = address.String()
	}
	ttls := make([]uint32, len(dns.ResponseTTLs))
	copy(ttls, dns.ResponseTTLs)

	return record.DNSEntry{
		Timestamp:         dns.Time,
		SrcIP:             srcIP,
		ObfuscatedSrc:     obfuscatedSrc,
		DstIP:             dstIP,
		ObfuscatedDst:     obfuscatedDst,
		Protocol:          dns.TransportProtocol,
		SrcPort:           dns.SrcPort,
		DstPort:           dns.DstPort,
		Opcode:            dns.Opcode,
		ResultCode:        dns.ResultCode,
		Host:              dns.Host,
		ResponseAddresses: addresses,
		ResponseTTLs:      ttls,
		AnswerIndex:       dns.AnswerIndex,
	}
}
