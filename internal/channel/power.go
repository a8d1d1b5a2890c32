// SPDX-License-Identifier: GPL-3.0

package channel

import (
	"github.com/wnsim/dcfsim/internal/ids"
	"github.com/wnsim/dcfsim/internal/simclock"
)

type contribKey struct {
	source   ids.NodeID
	packetID ids.PacketID
}

type contribution struct {
	left, right int
	power       simclock.Power
	adjLeft     simclock.Power
	adjRight    simclock.Power
}

// PowerVector is one node's per-channel accumulated linear power (spec
// 3.6): a fixed-length slice in pW plus the bookkeeping needed to subtract
// exactly what was added (identity by source id and packet id prevents a
// double-subtract, spec 4.3) and to track each channel's free-since
// timestamp for DIFS admissibility.
type PowerVector struct {
	power  []simclock.Power
	tFree  []simclock.Clock
	active map[contribKey]contribution

	// AdjacentChannelInterference, when non-zero, is the attenuation (in
	// linear ratio, 0..1) applied to a transmission's power when it is
	// added to the single channel immediately outside [L..R] on each
	// side (spec 4.3, optional; supplemental feature 6 in SPEC_FULL.md).
	AdjacentChannelInterference float64

	busyAccum  []simclock.Clock // cumulative time sensed busy, per channel
	lastSample []simclock.Clock
	origin     simclock.Clock
}

// NewPowerVector allocates a PowerVector for the given number of basic
// channels, with every channel initially free as of t0.
func NewPowerVector(numChannels int, t0 simclock.Clock) *PowerVector {
	pv := &PowerVector{
		power:      make([]simclock.Power, numChannels),
		tFree:      make([]simclock.Clock, numChannels),
		active:     make(map[contribKey]contribution),
		busyAccum:  make([]simclock.Clock, numChannels),
		lastSample: make([]simclock.Clock, numChannels),
		origin:     t0,
	}
	for c := range pv.tFree {
		pv.tFree[c] = t0
		pv.lastSample[c] = t0
	}
	return pv
}

// NumChannels returns the vector's length.
func (pv *PowerVector) NumChannels() int { return len(pv.power) }

// Sensed returns the current accumulated power on channel c.
func (pv *PowerVector) Sensed(c int) simclock.Power {
	if c < 0 || c >= len(pv.power) {
		return 0
	}
	return pv.power[c]
}

// FreeSince returns the last time at which channel c's power dropped to or
// below the caller-supplied PD at the time of the call (spec 4.3's
// t_free[c]); callers update it via MarkFreeIfBelow after every power
// change.
func (pv *PowerVector) FreeSince(c int) simclock.Clock {
	if c < 0 || c >= len(pv.tFree) {
		return 0
	}
	return pv.tFree[c]
}

// MarkFreeIfBelow records now as channel c's free-since time if its sensed
// power is at or below pd and it isn't already marked free at an earlier
// time; if the power is above pd it marks the channel busy (FreeSince
// becomes ClockInfinity). It also accumulates the busy time used by
// OccupancyFraction. Callers invoke this after every Add or Subtract.
func (pv *PowerVector) MarkFreeIfBelow(c int, now simclock.Clock, pd simclock.Power) {
	if c < 0 || c >= len(pv.power) {
		return
	}
	if pv.tFree[c] == simclock.ClockInfinity {
		pv.busyAccum[c] += now - pv.lastSample[c]
	}
	pv.lastSample[c] = now

	if pv.power[c] > pd {
		pv.tFree[c] = simclock.ClockInfinity // busy: not "free" until it drops again
		return
	}
	if pv.tFree[c] == simclock.ClockInfinity {
		pv.tFree[c] = now
	}
}

// OccupancyFraction returns the fraction of time since the vector's origin
// that channel c has been sensed busy, as of now (spec 4.4's
// channel-occupancy reward type).
func (pv *PowerVector) OccupancyFraction(c int, now simclock.Clock) float64 {
	if c < 0 || c >= len(pv.power) {
		return 0
	}
	elapsed := now - pv.origin
	if elapsed <= 0 {
		return 0
	}
	busy := pv.busyAccum[c]
	if pv.tFree[c] == simclock.ClockInfinity {
		busy += now - pv.lastSample[c]
	}
	return float64(busy) / float64(elapsed)
}

// IsIdleFor reports whether channel c has been continuously at or below pd
// for at least dur, as of now.
func (pv *PowerVector) IsIdleFor(c int, now simclock.Clock, dur simclock.Clock, pd simclock.Power) bool {
	if pv.Sensed(c) > pd {
		return false
	}
	free := pv.FreeSince(c)
	if free == simclock.ClockInfinity {
		return false
	}
	return now-free >= dur
}

// Add accumulates a transmission's contribution onto channels [l..r]
// (inclusive), keyed by (source, packetID) so the matching Subtract call
// removes exactly this contribution. If AdjacentChannelInterference is
// configured, a reduced contribution is also added to the channel
// immediately outside each boundary.
func (pv *PowerVector) Add(key contribKey, l, r int, p simclock.Power) {
	c := contribution{left: l, right: r, power: p}
	for ch := l; ch <= r; ch++ {
		pv.bump(ch, p)
	}
	if pv.AdjacentChannelInterference > 0 {
		adj := simclock.Power(float64(p) * pv.AdjacentChannelInterference)
		if l-1 >= 0 {
			pv.bump(l-1, adj)
			c.adjLeft = adj
		}
		if r+1 < len(pv.power) {
			pv.bump(r+1, adj)
			c.adjRight = adj
		}
	}
	pv.active[key] = c
}

// Subtract removes the contribution previously added under key, if any. It
// is a no-op if key is unknown (prevents double-subtract).
func (pv *PowerVector) Subtract(key contribKey) {
	c, ok := pv.active[key]
	if !ok {
		return
	}
	for ch := c.left; ch <= c.right; ch++ {
		pv.bump(ch, -c.power)
	}
	if c.adjLeft != 0 && c.left-1 >= 0 {
		pv.bump(c.left-1, -c.adjLeft)
	}
	if c.adjRight != 0 && c.right+1 < len(pv.power) {
		pv.bump(c.right+1, -c.adjRight)
	}
	delete(pv.active, key)
}

func (pv *PowerVector) bump(ch int, delta simclock.Power) {
	if ch < 0 || ch >= len(pv.power) {
		return
	}
	pv.power[ch] += delta
	if pv.power[ch] < 0 {
		// floating-point drift floor, within the 1e-18 pW tolerance spec
		// 4.3 and 8 allow.
		pv.power[ch] = 0
	}
}

// NewContribKey builds a contribKey for use with Add/Subtract.
func NewContribKey(source ids.NodeID, packetID ids.PacketID) contribKey {
	return contribKey{source: source, packetID: packetID}
}
