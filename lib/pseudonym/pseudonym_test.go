// Copyright 2026 The CoLTE Authors
// SPDX-License-Identifier: Apache-2.0

package pseudonym_test

import (
	"errors"
	"iter"
	"net/netip"
	"testing"
	"time"

	"github.com/uw-ictd/colte-log-uploader/lib/logstore"
	"github.com/uw-ictd/colte-log-uploader/lib/pseudonym"
	"github.com/uw-ictd/colte-log-uploader/lib/record"
)

// sha256("subscriber-1" + "k1")
const subscriberOneK1 = "246815764b07173849b7b4947e41794b911497da17376db1da987007ee69311a"

func assignments(pairs ...string) iter.Seq2[logstore.Assignment, error] {
	return func(yield func(logstore.Assignment, error) bool) {
		for index := 0; index+1 < len(pairs); index += 2 {
			if !yield(logstore.Assignment{Identity: pairs[index], Address: pairs[index+1]}, nil) {
				return
			}
		}
	}
}

func TestSHA256MatchesArchiveFormat(t *testing.T) {
	got, err := pseudonym.Hash(pseudonym.SHA256, "subscriber-1", []byte("k1"))
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if got != subscriberOneK1 {
		t.Errorf("Hash = %s, want %s", got, subscriberOneK1)
	}
}

func TestDigestProperties(t *testing.T) {
	for _, digest := range []pseudonym.Digest{pseudonym.SHA256, pseudonym.BLAKE3} {
		t.Run(string(digest), func(t *testing.T) {
			keyed, err := digest.Keyed([]byte("k1"))
			if err != nil {
				t.Fatalf("Keyed: %v", err)
			}
			first := keyed("001010000000001")
			if again := keyed("001010000000001"); again != first {
				t.Errorf("repeated digest %s != %s", again, first)
			}
			if len(first) != 64 {
				t.Errorf("digest length = %d, want 64 hex characters", len(first))
			}
			if other := keyed("001010000000002"); other == first {
				t.Error("different identities produced the same digest")
			}

			otherSeed, err := pseudonym.Hash(digest, "001010000000001", []byte("k2"))
			if err != nil {
				t.Fatalf("Hash: %v", err)
			}
			if otherSeed == first {
				t.Error("different seeds produced the same digest")
			}
		})
	}

	sha, _ := pseudonym.Hash(pseudonym.SHA256, "subscriber-1", []byte("k1"))
	blake, _ := pseudonym.Hash(pseudonym.BLAKE3, "subscriber-1", []byte("k1"))
	if sha == blake {
		t.Error("SHA256 and BLAKE3 digests coincide")
	}
}

func TestKeyedCopiesSeed(t *testing.T) {
	seed := []byte("k1")
	keyed, err := pseudonym.SHA256.Keyed(seed)
	if err != nil {
		t.Fatal(err)
	}
	clear(seed)
	if got := keyed("subscriber-1"); got != subscriberOneK1 {
		t.Errorf("digest after wiping seed = %s, want %s", got, subscriberOneK1)
	}
}

func TestEmptySeedRejected(t *testing.T) {
	if _, err := pseudonym.Build(assignments(), pseudonym.SHA256, nil); !errors.Is(err, pseudonym.ErrEmptySeed) {
		t.Fatalf("Build with empty seed: %v, want ErrEmptySeed", err)
	}
}

func TestParseDigest(t *testing.T) {
	if digest, err := pseudonym.ParseDigest("blake3"); err != nil || digest != pseudonym.BLAKE3 {
		t.Errorf("ParseDigest(blake3) = %q, %v", digest, err)
	}
	if _, err := pseudonym.ParseDigest("md5"); err == nil {
		t.Error("ParseDigest(md5) succeeded")
	}
}

func TestBuildRejectsMalformedAssignments(t *testing.T) {
	tests := []struct {
		name  string
		pairs []string
	}{
		{name: "empty identity", pairs: []string{"", "10.0.0.5"}},
		{name: "invalid utf-8", pairs: []string{"\xff\xfe", "10.0.0.5"}},
		{name: "bad address", pairs: []string{"subscriber-1", "10.0.0.500"}},
		{name: "address reassigned", pairs: []string{"subscriber-1", "10.0.0.5", "subscriber-2", "10.0.0.5"}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := pseudonym.Build(assignments(test.pairs...), pseudonym.SHA256, []byte("k1"))
			if !errors.Is(err, pseudonym.ErrMalformedAssignment) {
				t.Fatalf("Build: %v, want ErrMalformedAssignment", err)
			}
		})
	}
}

func TestBuildPropagatesSourceError(t *testing.T) {
	failure := errors.New("disk on fire")
	source := func(yield func(logstore.Assignment, error) bool) {
		yield(logstore.Assignment{}, failure)
	}
	if _, err := pseudonym.Build(source, pseudonym.SHA256, []byte("k1")); !errors.Is(err, failure) {
		t.Fatalf("Build: %v, want wrapped source error", err)
	}
}

func TestBuildAllowsRepeatedIdenticalAssignment(t *testing.T) {
	m, err := pseudonym.Build(assignments("subscriber-1", "10.0.0.5", "subscriber-1", "10.0.0.5"), pseudonym.SHA256, []byte("k1"))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if m.Len() != 1 {
		t.Errorf("Len = %d, want 1", m.Len())
	}
}

func TestFlowEndToEnd(t *testing.T) {
	m, err := pseudonym.Build(assignments("subscriber-1", "10.0.0.5"), pseudonym.SHA256, []byte("k1"))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	flow, err := record.DecodeFlow(logstore.FlowRow{
		IntervalStart:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC).UnixNano(),
		IntervalStop:      time.Date(2026, 3, 1, 12, 1, 0, 0, time.UTC).UnixNano(),
		AddressA:          []byte{10, 0, 0, 5},
		AddressB:          []byte{93, 184, 216, 34},
		TransportProtocol: 6,
		PortA:             40000,
		PortB:             443,
	})
	if err != nil {
		t.Fatalf("DecodeFlow: %v", err)
	}

	entry := m.Flow(flow)
	if entry.ObfuscatedA != subscriberOneK1 {
		t.Errorf("ObfuscatedA = %q, want %q", entry.ObfuscatedA, subscriberOneK1)
	}
	if entry.AddressA != "" {
		t.Errorf("AddressA = %q, want omitted", entry.AddressA)
	}
	if entry.AddressB != "93.184.216.34" {
		t.Errorf("AddressB = %q, want 93.184.216.34", entry.AddressB)
	}
	if entry.ObfuscatedB != "" {
		t.Errorf("ObfuscatedB = %q, want omitted", entry.ObfuscatedB)
	}
	if err := entry.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestDNSPseudonymizesEndpointsOnly(t *testing.T) {
	m, err := pseudonym.Build(assignments("subscriber-1", "10.0.0.5"), pseudonym.SHA256, []byte("k1"))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	entry := m.DNS(record.DNSLog{
		SrcIP:             netip.MustParseAddr("8.8.8.8"),
		DstIP:             netip.MustParseAddr("10.0.0.5"),
		Host:              "example.com",
		ResponseAddresses: []netip.Addr{netip.MustParseAddr("10.0.0.5")},
		ResponseTTLs:      []uint32{300},
		AnswerIndex:       7,
	})

	if entry.SrcIP != "8.8.8.8" || entry.ObfuscatedSrc != "" {
		t.Errorf("source = (%q, %q), want raw address", entry.SrcIP, entry.ObfuscatedSrc)
	}
	if entry.DstIP != "" || entry.ObfuscatedDst != subscriberOneK1 {
		t.Errorf("destination = (%q, %q), want pseudonym only", entry.DstIP, entry.ObfuscatedDst)
	}
	if len(entry.ResponseAddresses) != 1 || entry.ResponseAddresses[0] != "10.0.0.5" {
		t.Errorf("ResponseAddresses = %v, want the answer copied verbatim", entry.ResponseAddresses)
	}
	if err := entry.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestDNSEmptyAnswerListsAreNotNil(t *testing.T) {
	m, err := pseudonym.Build(assignments(), pseudonym.SHA256, []byte("k1"))
	if err != nil {
		t.Fatal(err)
	}
	entry := m.DNS(record.DNSLog{SrcIP: netip.MustParseAddr("8.8.8.8"), DstIP: netip.MustParseAddr("10.0.0.5")})
	if entry.ResponseAddresses == nil || entry.ResponseTTLs == nil {
		t.Errorf("empty answer lists were nil: %#v, %#v", entry.ResponseAddresses, entry.ResponseTTLs)
	}
}

func TestMappedAddressesAreDistinct(t *testing.T) {
	m, err := pseudonym.Build(assignments("subscriber-1", "10.0.0.5"), pseudonym.SHA256, []byte("k1"))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := m.Lookup(netip.MustParseAddr("::ffff:10.0.0.5")); ok {
		t.Error("IPv4-mapped IPv6 address matched an IPv4 assignment")
	}
	if _, ok := m.Lookup(netip.MustParseAddr("10.0.0.5")); !ok {
		t.Error("assigned address not found")
	}
}

func TestTranslator(t *testing.T) {
	translator, err := pseudonym.NewTranslator(pseudonym.SHA256, []byte("secret"), "00101")
	if err != nil {
		t.Fatal(err)
	}
	got := translator.Line("attach  imsi 001010000000001 from 901540000000001 via 0010100000000012")
	want := "attach imsi 1f0cfcac10767c511517f3a28846723552f3bc49f59cdc07c61b984b09abfa7b from 901540000000001 via 0010100000000012"
	if got != want {
		t.Errorf("Line =\n  %q\nwant\n  %q", got, want)
	}
}
