package agent_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wnsim/dcfsim/internal/agent"
	"github.com/wnsim/dcfsim/internal/ids"
	"github.com/wnsim/dcfsim/internal/report"
	"github.com/wnsim/dcfsim/internal/simclock"
)

func testActionSpace() agent.ActionSpace {
	return agent.ActionSpace{
		Channels:     []int{1, 2, 3, 4},
		PD:           []simclock.Power{simclock.DBmToPW(-82), simclock.DBmToPW(-72)},
		TXPower:      []simclock.Power{simclock.DBmToPW(15), simclock.DBmToPW(20), simclock.DBmToPW(23)},
		MaxBandwidth: []int{1, 2, 4, 8},
	}
}

func TestActionSpaceNumArms(t *testing.T) {
	as := testActionSpace()
	assert.Equal(t, 4*2*3*4, as.NumArms())
}

func TestActionSpaceEncodeDecodeRoundTrip(t *testing.T) {
	as := testActionSpace()
	base := report.Configuration{BSSColor: 3, SRG: 1}
	for arm := 0; arm < as.NumArms(); arm++ {
		cfg := as.Decode(arm, base)
		// fields outside the action space must pass through untouched
		assert.Equal(t, 3, cfg.BSSColor)
		assert.Equal(t, 1, cfg.SRG)

		got := as.Encode(cfg)
		assert.Equal(t, arm, got, "arm %d did not round-trip", arm)
	}
}

func TestPreProcessorRewardPacketSuccessRatio(t *testing.T) {
	pp := agent.NewPreProcessor(testActionSpace(), agent.RewardPacketSuccessRatio)
	r := pp.GenerateReward(report.Performance{DataSent: 100, DataLost: 25})
	assert.InDelta(t, 0.75, r, 1e-9)
}

func TestPreProcessorRewardPacketSuccessRatioZeroSent(t *testing.T) {
	pp := agent.NewPreProcessor(testActionSpace(), agent.RewardPacketSuccessRatio)
	assert.Equal(t, 0.0, pp.GenerateReward(report.Performance{}))
}

func TestPreProcessorRewardNormalizedThroughput(t *testing.T) {
	pp := agent.NewPreProcessor(testActionSpace(), agent.RewardNormalizedThroughput)
	r := pp.GenerateReward(report.Performance{Throughput: 50, MaxBoundThroughput: 200})
	assert.InDelta(t, 0.25, r, 1e-9)
}

func TestPreProcessorRewardMinRSSI(t *testing.T) {
	pp := agent.NewPreProcessor(testActionSpace(), agent.RewardMinRSSI)
	r := pp.GenerateReward(report.Performance{RSSIToBSS: map[ids.WLANID]float64{
		1: -60,
		2: -75,
		3: -50,
	}})
	assert.InDelta(t, -75, r, 1e-9)
}

func TestPreProcessorRewardReciprocalAverageDelayZeroSamples(t *testing.T) {
	pp := agent.NewPreProcessor(testActionSpace(), agent.RewardReciprocalAverageDelay)
	assert.Equal(t, 0.0, pp.GenerateReward(report.Performance{}))
}

func TestPreProcessorRewardChannelOccupancy(t *testing.T) {
	pp := agent.NewPreProcessor(testActionSpace(), agent.RewardChannelOccupancy)
	assert.InDelta(t, 0.42, pp.GenerateReward(report.Performance{ChannelOccupancy: 0.42}), 1e-9)
}
