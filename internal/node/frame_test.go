package node_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wnsim/dcfsim/internal/node"
	"github.com/wnsim/dcfsim/internal/simclock"
)

func TestFrameDurationDataIncludesHEPreamble(t *testing.T) {
	rate := simclock.Bitrate(simclock.Mbps) * 50
	dataDur := node.FrameDuration(node.FrameData, 12000, rate)
	ackDur := node.FrameDuration(node.FrameACK, 0, rate)

	assert.Greater(t, dataDur, ackDur)
	assert.GreaterOrEqual(t, dataDur, node.LegacyPreamble+node.HEPreamble)
}

func TestFrameDurationZeroRateFallsBackToDefault(t *testing.T) {
	assert.NotPanics(t, func() {
		node.FrameDuration(node.FrameRTS, 160, 0)
	})
}

func TestFrameDurationIncreasesWithPayload(t *testing.T) {
	rate := simclock.Bitrate(simclock.Mbps) * 50
	small := node.FrameDuration(node.FrameData, 1000, rate)
	large := node.FrameDuration(node.FrameData, 100000, rate)
	assert.Greater(t, large, small)
}

func TestAMPDUPayloadBitsScalesWithMPDUCount(t *testing.T) {
	one := node.AMPDUPayloadBits(1, 1000)
	two := node.AMPDUPayloadBits(2, 1000)
	assert.Equal(t, one*2, two)
}

func TestACKTimeoutExceedsSIFS(t *testing.T) {
	assert.Greater(t, node.ACKTimeout(), node.SIFS)
}

func TestDIFSAndPIFSDerivation(t *testing.T) {
	assert.Equal(t, node.SIFS+2*node.SlotTime, node.DIFS)
	assert.Equal(t, node.SIFS+node.SlotTime, node.PIFS)
}
