package channel_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wnsim/dcfsim/internal/channel"
)

func allFree(ch int) bool { return true }

func TestSelectTransmissionSinglePrimaryAlwaysWidth1(t *testing.T) {
	span, ok := channel.SelectTransmission(channel.SinglePrimary, 3, 1, 8, allFree, nil)
	assert.True(t, ok)
	assert.Equal(t, 1, span.Width())
	assert.Equal(t, 3, span.Left)
	assert.Equal(t, 3, span.Right)
}

func TestSelectTransmissionSCBPicksWidestAdmissible(t *testing.T) {
	span, ok := channel.SelectTransmission(channel.SCB, 4, 1, 8, allFree, nil)
	assert.True(t, ok)
	assert.Equal(t, 8, span.Width())
	assert.Equal(t, 1, span.Left)
	assert.Equal(t, 8, span.Right)
}

func TestSelectTransmissionNoneAdmissibleReturnsFalse(t *testing.T) {
	_, ok := channel.SelectTransmission(channel.SCB, 4, 1, 8, func(ch int) bool { return false }, nil)
	assert.False(t, ok)
}

func TestSelectTransmissionSCBDoesNotNarrowOnBlockedChannel(t *testing.T) {
	// Channel 1 is busy: the rest of the configured 8-channel width is
	// free, but SCB must not opportunistically narrow to a 4/2/1-wide
	// span around the primary — it is all-or-nothing against its fixed
	// configured target width.
	busy := func(ch int) bool { return ch != 1 }
	_, ok := channel.SelectTransmission(channel.SCB, 4, 1, 8, busy, nil)
	assert.False(t, ok)
}

func TestSelectTransmissionLog2SCBDoesNotNarrowOnBlockedChannel(t *testing.T) {
	busy := func(ch int) bool { return ch != 5 }
	_, ok := channel.SelectTransmission(channel.Log2SCB, 4, 1, 8, busy, nil)
	assert.False(t, ok)
}

func TestSelectTransmissionAlwaysMaxDCBNarrowsOnBlockedChannel(t *testing.T) {
	// Contrast with SCB: AlwaysMaxDCB is allowed to fall back to a
	// narrower admissible span. Only the primary itself is free, so every
	// width wider than 1 is blocked.
	onlyPrimaryFree := func(ch int) bool { return ch == 4 }
	span, ok := channel.SelectTransmission(channel.AlwaysMaxDCB, 4, 1, 8, onlyPrimaryFree, nil)
	assert.True(t, ok)
	assert.Equal(t, 1, span.Width())
}

func TestSelectTransmissionSpanAlwaysContainsPrimary(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for primary := 1; primary <= 8; primary++ {
		for _, pol := range []channel.BondingPolicy{
			channel.SinglePrimary, channel.SCB, channel.Log2SCB,
			channel.AlwaysMaxDCB, channel.Log2DCB, channel.Log2DCBMCSOpt,
			channel.UniformLog2DCB,
		} {
			span, ok := channel.SelectTransmission(pol, primary, 1, 8, allFree, rng)
			if !ok {
				continue
			}
			assert.GreaterOrEqual(t, primary, span.Left, "policy %v primary %d", pol, primary)
			assert.LessOrEqual(t, primary, span.Right, "policy %v primary %d", pol, primary)
			assert.Contains(t, []int{1, 2, 4, 8}, span.Width())
		}
	}
}

func TestWidthIndex(t *testing.T) {
	assert.Equal(t, 0, channel.WidthIndex(1))
	assert.Equal(t, 1, channel.WidthIndex(2))
	assert.Equal(t, 2, channel.WidthIndex(4))
	assert.Equal(t, 3, channel.WidthIndex(8))
	assert.Equal(t, 0, channel.WidthIndex(3)) // unsupported width falls back to index 0
}
