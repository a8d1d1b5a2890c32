// SPDX-License-Identifier: GPL-3.0

package engine

import "github.com/wnsim/dcfsim/internal/simclock"

// Clock is an alias of simclock.Clock so engine's public API reads
// naturally without forcing every caller to import simclock directly.
type Clock = simclock.Clock

// ClockInfinity and ClockZero re-export the simclock sentinels for the same
// reason.
const (
	ClockInfinity = simclock.ClockInfinity
	ClockZero     = simclock.ClockZero
)
