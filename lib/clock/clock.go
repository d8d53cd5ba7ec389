// Copyright 2026 The CoLTE Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import "time"

// Clock abstracts time.Now and time.Since for testability.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// Since returns the time elapsed on c since start.
func Since(c Clock, start time.Time) time.Duration {
	return c.Now().Sub(start)
}
