// Copyright 2026 The CoLTE Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import "time"

// Func adapts a plain time source to a Clock.
type Func func() time.Time

// Now calls f.
func (f Func) Now() time.Time { return f() }

// Real returns the wall clock. Its readings keep the monotonic
// component, so Since is unaffected by clock steps during a run.
func Real() Clock { return Func(time.Now) }
