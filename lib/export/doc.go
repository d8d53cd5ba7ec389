// Copyright 2026 The CoLTE Authors
// SPDX-License-Identifier: Apache-2.0

// Package export runs one archive-and-purge pass over the log store.
//
// [Exporter.Run] builds the pseudonym map, then for flows and then DNS:
// stages the live relation, streams every staged row through the decoder
// and the pseudonymizer into the kind's archive, closes (flushes) the
// archive, and only then purges the staged rows. A failure at any step
// aborts the run before that kind's purge, so the live store never loses
// rows that did not reach a closed archive. A later run re-stages
// everything still live, including the rows of an aborted export, which
// may therefore appear in an archive twice; they never disappear.
package export
