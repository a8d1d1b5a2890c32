package node_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wnsim/dcfsim/internal/node"
	"github.com/wnsim/dcfsim/internal/simclock"
)

func TestBackoffCWDoublesPerStageUpToCap(t *testing.T) {
	b := node.NewBackoff(16, 6, true, node.Uniform, true, rand.New(rand.NewSource(1)))
	want := 16
	for stage := 0; stage <= 6; stage++ {
		assert.Equal(t, want, b.CW(), "stage %d", stage)
		b.OnFailure()
		if stage < 6 {
			want *= 2
		}
	}
	// CW is capped at CWMin*2^StageMax; further failures must not grow it.
	assert.Equal(t, want, b.CW())
}

func TestBackoffOnSuccessDecrementsStage(t *testing.T) {
	b := node.NewBackoff(16, 6, true, node.Uniform, true, rand.New(rand.NewSource(1)))
	b.OnFailure()
	b.OnFailure()
	assert.Equal(t, 64, b.CW())
	b.OnSuccess()
	assert.Equal(t, 32, b.CW())
}

func TestBackoffAdaptDisabledFreezesStage(t *testing.T) {
	b := node.NewBackoff(16, 6, true, node.Uniform, false, rand.New(rand.NewSource(1)))
	b.OnFailure()
	b.OnFailure()
	assert.Equal(t, 16, b.CW(), "CW-adaptation disabled must keep stage at 0")
}

func TestBackoffDrawWithinWindow(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	b := node.NewBackoff(16, 6, true, node.Uniform, true, rng)
	for i := 0; i < 1000; i++ {
		d := b.Draw()
		assert.GreaterOrEqual(t, d, simclock.Clock(0))
		assert.Less(t, d, simclock.Clock(b.CW())*node.SlotTime)
		// Slotted backoff must land on a slot boundary.
		assert.Equal(t, simclock.Clock(0), d%node.SlotTime)
	}
}

func TestBackoffPauseResumePreservesRemainder(t *testing.T) {
	b := node.NewBackoff(16, 6, true, node.Uniform, true, rand.New(rand.NewSource(7)))
	d := b.Draw()
	if d == 0 {
		t.Skip("drew zero backoff, nothing to pause mid-way through")
	}
	b.Pause(node.SlotTime)
	assert.True(t, b.Paused())
	remAfterPause := b.Remaining()
	assert.LessOrEqual(t, remAfterPause, d)

	got := b.Resume()
	assert.False(t, b.Paused())
	assert.Equal(t, remAfterPause, got)
}

func TestBackoffResumeNoOpWhenNotPaused(t *testing.T) {
	b := node.NewBackoff(16, 6, true, node.Uniform, true, rand.New(rand.NewSource(1)))
	b.Draw()
	before := b.Remaining()
	got := b.Resume()
	assert.Equal(t, before, got)
}
