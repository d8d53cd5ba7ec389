// Copyright 2026 The CoLTE Authors
// SPDX-License-Identifier: Apache-2.0

package pseudonym

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"

	"github.com/zeebo/blake3"
)

// ErrEmptySeed rejects a zero-length pseudonymization key.
var ErrEmptySeed = errors.New("pseudonym: seed is empty")

// Digest names a keyed one-way transform of identities.
type Digest string

const (
	SHA256 Digest = "sha256"
	BLAKE3 Digest = "blake3"
)

// blake3Context is the BLAKE3 key derivation context. Changing it
// changes every BLAKE3 pseudonym.
const blake3Context = "colte-log-export 2026-03-01 subscriber pseudonym v1"

// ParseDigest returns the Digest named by name.
func ParseDigest(name string) (Digest, error) {
	switch Digest(name) {
	case SHA256, BLAKE3:
		return Digest(name), nil
	default:
		return "", fmt.Errorf("pseudonym: unknown digest %q (want %q or %q)", name, SHA256, BLAKE3)
	}
}

// Func maps an identity to its lowercase hex digest under one seed.
// A Func is not safe for concurrent use.
type Func func(identity string) string

// Keyed binds the digest to seed. The returned Func copies what it needs
// from seed; the caller may wipe seed afterwards.
func (d Digest) Keyed(seed []byte) (Func, error) {
	if len(seed) == 0 {
		return nil, ErrEmptySeed
	}
	switch d {
	case SHA256:
		suffix := append([]byte(nil), seed...)
		hasher := sha256.New()
		return func(identity string) string {
			return sum(hasher, []byte(identity), suffix)
		}, nil
	case BLAKE3:
		key := make([]byte, 32)
		blake3.DeriveKey(blake3Context, seed, key)
		hasher, err := blake3.NewKeyed(key)
		clear(key)
		if err != nil {
			return nil, fmt.Errorf("pseudonym: initializing BLAKE3: %w", err)
		}
		return func(identity string) string {
			return sum(hasher, []byte(identity))
		}, nil
	default:
		return nil, fmt.Errorf("pseudonym: unknown digest %q", string(d))
	}
}

// Hash is Keyed followed by a single call, for one-off digests.
func Hash(d Digest, identity string, seed []byte) (string, error) {
	keyed, err := d.Keyed(seed)
	if err != nil {
		return "", err
	}
	return keyed(identity), nil
}

func sum(hasher hash.Hash, parts ...[]byte) string {
	hasher.Reset()
	for _, part := range parts {
		hasher.Write(part)
	}
	return hex.EncodeToString(hasher.Sum(nil))
}
