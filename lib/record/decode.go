// Copyright 2026 The CoLTE Authors
// SPDX-License-Identifier: Apache-2.0

package record

import (
	"fmt"
	"net/netip"
	"strconv"
	"strings"
	"time"

	"github.com/uw-ictd/colte-log-uploader/lib/logstore"
)

// DecodeFlow converts a staged flowlogs row into a FlowLog.
func DecodeFlow(row logstore.FlowRow) (FlowLog, error) {
	addressA, err := decodeAddress("addressA", row.AddressA)
	if err != nil {
		return FlowLog{}, err
	}
	addressB, err := decodeAddress("addressB", row.AddressB)
	if err != nil {
		return FlowLog{}, err
	}
	return FlowLog{
		IntervalStart:     fromUnixNano(row.IntervalStart),
		IntervalStop:      fromUnixNano(row.IntervalStop),
		AddressA:          addressA,
		AddressB:          addressB,
		TransportProtocol: int(row.TransportProtocol),
		PortA:             int(row.PortA),
		PortB:             int(row.PortB),
		BytesAToB:         row.BytesAToB,
		BytesBToA:         row.BytesBToA,
	}, nil
}

// DecodeDNS converts a staged dnsResponses ⨝ answers row into a DNSLog.
// The answer lists are paired by position. A slot with an empty address
// is no answer and is skipped; a present address needs a TTL in the same
// slot. Both lists must have the same number of slots, not counting one
// trailing separator.
func DecodeDNS(row logstore.DNSRow) (DNSLog, error) {
	srcIP, err := decodeAddress("srcIp", row.SrcIP)
	if err != nil {
		return DNSLog{}, err
	}
	dstIP, err := decodeAddress("dstIp", row.DstIP)
	if err != nil {
		return DNSLog{}, err
	}

	addressFragments := splitList(row.IPAddresses)
	ttlFragments := splitList(row.TTLs)
	if len(addressFragments) != len(ttlFragments) {
		return DNSLog{}, fmt.Errorf("%w: answer %d has %d address slots and %d TTL slots",
			ErrMismatchedAnswerLists, row.AnswerIndex, len(addressFragments), len(ttlFragments))
	}

	addresses := make([]netip.Addr, 0, len(addressFragments))
	ttls := make([]uint32, 0, len(ttlFragments))
	for index, fragment := range addressFragments {
		if fragment == "" {
			continue
		}
		if ttlFragments[index] == "" {
			return DNSLog{}, fmt.Errorf("%w: answer %d address %q has no TTL",
				ErrMismatchedAnswerLists, row.AnswerIndex, fragment)
		}
		address, err := netip.ParseAddr(fragment)
		if err != nil {
			return DNSLog{}, fmt.Errorf("%w: answer %d address %q: %w", ErrInvalidAnswer, row.AnswerIndex, fragment, err)
		}
		ttl, err := strconv.ParseUint(ttlFragments[index], 10, 32)
		if err != nil {
			return DNSLog{}, fmt.Errorf("%w: answer %d TTL %q: %w", ErrInvalidAnswer, row.AnswerIndex, ttlFragments[index], err)
		}
		addresses = append(addresses, address)
		ttls = append(ttls, uint32(ttl))
	}

	return DNSLog{
		Time:              fromUnixNano(row.Time),
		SrcIP:             srcIP,
		DstIP:             dstIP,
		TransportProtocol: int(row.TransportProtocol),
		SrcPort:           int(row.SrcPort),
		DstPort:           int(row.DstPort),
		Opcode:            int(row.Opcode),
		ResultCode:        int(row.ResultCode),
		Host:              row.Host,
		ResponseAddresses: addresses,
		ResponseTTLs:      ttls,
		AnswerIndex:       row.AnswerIndex,
	}, nil
}

func decodeAddress(column string, blob []byte) (netip.Addr, error) {
	switch len(blob) {
	case 4:
		return netip.AddrFrom4([4]byte(blob)), nil
	case 16:
		return netip.AddrFrom16([16]byte(blob)), nil
	default:
		return netip.Addr{}, &InvalidAddressLengthError{Column: column, Length: len(blob)}
	}
}

// splitList splits a comma-separated answer list into positional slots.
// One trailing separator is not a slot, so "" has none and "a," has one.
func splitList(list string) []string {
	fragments := strings.Split(list, ",")
	if fragments[len(fragments)-1] == "" {
		fragments = fragments[:len(fragments)-1]
	}
	return fragments
}

func fromUnixNano(nanoseconds int64) time.Time {
	return time.Unix(0, nanoseconds).UTC()
}
