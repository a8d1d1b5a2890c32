package channel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wnsim/dcfsim/internal/channel"
	"github.com/wnsim/dcfsim/internal/simclock"
)

func TestPowerVectorAddSubtractRoundTrip(t *testing.T) {
	pv := channel.NewPowerVector(4, 0)
	key := channel.NewContribKey(1, 100)

	pv.Add(key, 0, 1, 1000)
	assert.Equal(t, simclock.Power(1000), pv.Sensed(0))
	assert.Equal(t, simclock.Power(1000), pv.Sensed(1))
	assert.Equal(t, simclock.Power(0), pv.Sensed(2))

	pv.Subtract(key)
	assert.Equal(t, simclock.Power(0), pv.Sensed(0))
	assert.Equal(t, simclock.Power(0), pv.Sensed(1))
}

func TestPowerVectorSubtractUnknownKeyIsNoOp(t *testing.T) {
	pv := channel.NewPowerVector(2, 0)
	assert.NotPanics(t, func() {
		pv.Subtract(channel.NewContribKey(1, 999))
	})
}

func TestPowerVectorDoubleSubtractIsSafe(t *testing.T) {
	pv := channel.NewPowerVector(2, 0)
	key := channel.NewContribKey(1, 1)
	pv.Add(key, 0, 0, 500)
	pv.Subtract(key)
	pv.Subtract(key)
	assert.Equal(t, simclock.Power(0), pv.Sensed(0))
}

func TestPowerVectorMarkFreeIfBelowAndIsIdleFor(t *testing.T) {
	pv := channel.NewPowerVector(1, 0)
	pd := simclock.Power(100)

	key := channel.NewContribKey(1, 1)
	pv.Add(key, 0, 0, 500)
	pv.MarkFreeIfBelow(0, 10, pd)
	assert.False(t, pv.IsIdleFor(0, 10, 5, pd), "channel above pd must not be idle")

	pv.Subtract(key)
	pv.MarkFreeIfBelow(0, 20, pd)
	assert.Equal(t, simclock.Clock(20), pv.FreeSince(0))
	assert.True(t, pv.IsIdleFor(0, 25, 5, pd))
	assert.False(t, pv.IsIdleFor(0, 24, 5, pd))
}

func TestPowerVectorOccupancyFraction(t *testing.T) {
	pv := channel.NewPowerVector(1, 0)
	pd := simclock.Power(100)
	key := channel.NewContribKey(1, 1)

	pv.MarkFreeIfBelow(0, 0, pd)
	pv.Add(key, 0, 0, 500)
	pv.MarkFreeIfBelow(0, 10, pd) // busy from t=10

	occ := pv.OccupancyFraction(0, 20)
	assert.InDelta(t, 0.5, occ, 1e-9, "10 of 20 units busy so far")
}

func TestPowerVectorAdjacentChannelInterference(t *testing.T) {
	pv := channel.NewPowerVector(4, 0)
	pv.AdjacentChannelInterference = 0.1
	key := channel.NewContribKey(1, 1)

	pv.Add(key, 1, 2, 1000)
	assert.Equal(t, simclock.Power(100), pv.Sensed(0))
	assert.Equal(t, simclock.Power(100), pv.Sensed(3))

	pv.Subtract(key)
	assert.Equal(t, simclock.Power(0), pv.Sensed(0))
	assert.Equal(t, simclock.Power(0), pv.Sensed(3))
}

func TestPowerVectorOutOfRangeIndicesAreSafe(t *testing.T) {
	pv := channel.NewPowerVector(2, 0)
	assert.Equal(t, simclock.Power(0), pv.Sensed(-1))
	assert.Equal(t, simclock.Power(0), pv.Sensed(5))
	assert.Equal(t, simclock.Clock(0), pv.FreeSince(5))
	assert.NotPanics(t, func() { pv.MarkFreeIfBelow(5, 0, 0) })
}

func TestPowerVectorNumChannels(t *testing.T) {
	pv := channel.NewPowerVector(8, 0)
	assert.Equal(t, 8, pv.NumChannels())
}
