// Copyright 2026 The CoLTE Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source.
//
// The exporter only reads the time: staging timestamps, run durations
// and the last-success metric. Production code takes a Clock and is
// given Real(); tests pass Fake() and move time with Advance so that
// recorded timestamps and durations are exact.
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	store, err := logstore.Open(ctx, logstore.Config{Path: path, Clock: c})
//	c.Advance(3 * time.Second)
//
// [Func] turns any func() time.Time into a Clock.
package clock
