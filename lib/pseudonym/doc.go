// Copyright 2026 The CoLTE Authors
// SPDX-License-Identifier: Apache-2.0

// Package pseudonym replaces locally assigned subscriber addresses with
// keyed one-way digests of the subscriber identity.
//
// [Build] scans the static assignment table once and produces a [Map]
// from address to digest. The map is immutable afterwards and holds
// neither identities nor the seed. [Map.Flow] and [Map.DNS] turn decoded
// records into archive entries, emitting for each endpoint either the
// raw address (no assignment) or the digest (assigned), never both.
//
// Two digests are available. [SHA256] is hex(sha256(identity ‖ seed)),
// the transform used by archives written before this package existed;
// a given identity and seed produce the same pseudonym across the two.
// [BLAKE3] is a BLAKE3 keyed hash with a key derived from the seed, for
// deployments that do not need that continuity.
package pseudonym
