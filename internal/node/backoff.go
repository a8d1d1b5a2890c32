// SPDX-License-Identifier: GPL-3.0

package node

import (
	"math"
	"math/rand"

	"github.com/wnsim/dcfsim/internal/simclock"
)

// BackoffDistribution selects how the random slot count is drawn (spec
// 4.2.1).
type BackoffDistribution int

const (
	// Uniform draws an integer uniformly in [0, CW-1].
	Uniform BackoffDistribution = iota
	// Exponential draws from an exponential distribution with mean
	// (CW-1)/2 slots (the "PDF" selector).
	Exponential
)

// Backoff tracks one node's contention-window state: the current stage,
// whether it is slotted or continuous, and the remaining backoff duration
// while paused, grounded on original_source's
// Code/methods/backoff_methods.h (ComputeBackoff, ComputeRemainingBackoff,
// HandleBackoff, HandleContentionWindow).
type Backoff struct {
	CWMin      int
	StageMax   int
	Stage      int
	Adapt      bool // if false, stage is frozen at 0 (CW-adaptation disabled)
	Slotted    bool
	Distribution BackoffDistribution

	remaining simclock.Clock
	paused    bool
	rng       *rand.Rand
}

// NewBackoff constructs a Backoff with the given CWMin/stage cap.
func NewBackoff(cwMin, stageMax int, slotted bool, dist BackoffDistribution, adapt bool, rng *rand.Rand) *Backoff {
	return &Backoff{
		CWMin:        cwMin,
		StageMax:     stageMax,
		Adapt:        adapt,
		Slotted:      slotted,
		Distribution: dist,
		rng:          rng,
	}
}

// CW returns the current contention window: CWmin * 2^stage (spec 4.2.1,
// spec 8 invariant 6).
func (b *Backoff) CW() int {
	return b.CWMin << uint(b.Stage)
}

// Draw computes a fresh backoff value in slot units per the configured
// distribution (original_source's ComputeBackoff), and stores it as the
// pending remaining duration.
func (b *Backoff) Draw() simclock.Clock {
	cw := b.CW()
	var slots float64
	switch b.Distribution {
	case Exponential:
		mean := float64(cw-1) / 2
		if mean <= 0 {
			mean = 1
		}
		u := b.rand()
		slots = math.Floor(-mean * math.Log(1-u))
		if slots >= float64(cw) {
			slots = float64(cw - 1)
		}
	default:
		slots = float64(b.randIntn(cw))
	}
	if slots < 0 {
		slots = 0
	}
	b.remaining = simclock.Clock(slots) * SlotTime
	b.paused = false
	return b.remaining
}

func (b *Backoff) rand() float64 {
	if b.rng == nil {
		return 0.5
	}
	return b.rng.Float64()
}

func (b *Backoff) randIntn(n int) int {
	if n <= 1 {
		return 0
	}
	if b.rng == nil {
		return n / 2
	}
	return b.rng.Intn(n)
}

// Remaining reports the frozen or ticking backoff duration.
func (b *Backoff) Remaining() simclock.Clock { return b.remaining }

// Paused reports whether the backoff timer is currently frozen.
func (b *Backoff) Paused() bool { return b.paused }

// Pause freezes the remaining backoff when energy on the primary channel
// exceeds PD (spec 4.2.1 pause rule). Pausing while already paused is a
// no-op, but callers should still count it as an interruption.
func (b *Backoff) Pause(elapsedSinceArm simclock.Clock) {
	if b.paused {
		return
	}
	b.remaining -= elapsedSinceArm
	if b.remaining < 0 {
		b.remaining = 0
	}
	if b.Slotted {
		// discretize the remaining time up to the next slot boundary
		slots := simclock.Clock(math.Ceil(float64(b.remaining) / float64(SlotTime)))
		b.remaining = slots * SlotTime
	}
	b.paused = true
}

// Resume rearms the timer with the frozen remainder once the primary
// channel has been idle for DIFS and the buffer is non-empty (spec 4.2.1
// resume rule). Resume is a no-op if the backoff wasn't paused.
func (b *Backoff) Resume() simclock.Clock {
	if !b.paused {
		return b.remaining
	}
	b.paused = false
	if b.Slotted {
		slots := simclock.Clock(math.Ceil(float64(b.remaining) / float64(SlotTime)))
		b.remaining = slots * SlotTime
	}
	return b.remaining
}

// OnFailure increments the stage (capped at StageMax) unless adaptation is
// disabled, per HandleContentionWindow.
func (b *Backoff) OnFailure() {
	if !b.Adapt {
		b.Stage = 0
		return
	}
	if b.Stage < b.StageMax {
		b.Stage++
	}
}

// OnSuccess steps the stage back by one, stopping at zero.
func (b *Backoff) OnSuccess() {
	if b.Stage > 0 {
		b.Stage--
	}
}
