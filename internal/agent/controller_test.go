package agent_test

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wnsim/dcfsim/internal/agent"
	"github.com/wnsim/dcfsim/internal/engine"
	"github.com/wnsim/dcfsim/internal/ids"
	"github.com/wnsim/dcfsim/internal/report"
	"github.com/wnsim/dcfsim/internal/simclock"
)

func newTestAgent(sched *engine.Scheduler, wlan ids.WLANID, ap *fakeAP) *agent.Agent {
	pp := agent.NewPreProcessor(testActions(), agent.RewardPacketSuccessRatio)
	learner := agent.NewEpsilonGreedy(0, rand.New(rand.NewSource(1)))
	return agent.NewAgent(wlan, sched, ap, pp, learner, 0, nil)
}

func TestControllerGraphColoringAssignsDistinctChannelsToColliders(t *testing.T) {
	sched := engine.New(engine.BackendCalendar, nil)
	ctrl := agent.NewController(sched, agent.ModeActive, agent.StrategyGraphColoring, 2, -65, 0, nil)

	ap1 := &fakeAP{cfg: report.Configuration{PrimaryChannel: 1, MaxBandwidth: 1}, perf: report.Performance{
		RSSIToBSS: map[ids.WLANID]float64{2: -50},
	}}
	ap2 := &fakeAP{cfg: report.Configuration{PrimaryChannel: 1, MaxBandwidth: 1}, perf: report.Performance{
		RSSIToBSS: map[ids.WLANID]float64{1: -50},
	}}
	a1 := newTestAgent(sched, 1, ap1)
	a2 := newTestAgent(sched, 2, ap2)
	ctrl.Register(a1)
	ctrl.Register(a2)

	require.NoError(t, ctrl.RequestInformationToAgents(context.Background()))
	ctrl.GenerateAndSendNewConfiguration()

	require.NotEmpty(t, ap1.applied)
	require.NotEmpty(t, ap2.applied)
	assert.NotEqual(t, ap1.applied[len(ap1.applied)-1].PrimaryChannel, ap2.applied[len(ap2.applied)-1].PrimaryChannel)
}

func TestControllerActionBanningBansNeighborChannel(t *testing.T) {
	sched := engine.New(engine.BackendCalendar, nil)
	ctrl := agent.NewController(sched, agent.ModePassive, agent.StrategyActionBanning, 4, -65, 0, nil)

	ap1 := &fakeAP{cfg: report.Configuration{PrimaryChannel: 2, MaxBandwidth: 1}, perf: report.Performance{
		RSSIToBSS: map[ids.WLANID]float64{2: -50},
		DataSent:  10, DataLost: 8, // low reward: wlan 1 is the starved victim
	}}
	ap2 := &fakeAP{cfg: report.Configuration{PrimaryChannel: 2, MaxBandwidth: 1}, perf: report.Performance{
		RSSIToBSS: map[ids.WLANID]float64{1: -50},
		DataSent:  10, DataLost: 0, // high reward: wlan 2 is the persistent occupier
	}}
	a1 := newTestAgent(sched, 1, ap1)
	a2 := newTestAgent(sched, 2, ap2)
	ctrl.Register(a1)
	ctrl.Register(a2)

	require.NoError(t, ctrl.RequestInformationToAgents(context.Background()))
	ctrl.GenerateAndSendNewConfiguration()

	assert.True(t, ctrl.Banned(1)[2], "wlan 1 should ban wlan 2's channel: wlan 2 plays it >33% of the time while wlan 1's reward is below the cluster mean")
}

func TestControllerForwardSubRewardsRelaysNeighborReward(t *testing.T) {
	sched := engine.New(engine.BackendCalendar, nil)
	ctrl := agent.NewController(sched, agent.ModePassive, agent.StrategyForwardSubRewards, 4, -65, 0, nil)

	ap1 := &fakeAP{cfg: report.Configuration{PrimaryChannel: 2, MaxBandwidth: 1}, perf: report.Performance{
		RSSIToBSS: map[ids.WLANID]float64{2: -50},
	}}
	ap2 := &fakeAP{cfg: report.Configuration{PrimaryChannel: 2, MaxBandwidth: 1}, perf: report.Performance{
		RSSIToBSS: map[ids.WLANID]float64{1: -50},
		DataSent:  10, DataLost: 0,
	}}
	a1 := newTestAgent(sched, 1, ap1)
	a2 := newTestAgent(sched, 2, ap2)
	ctrl.Register(a1)
	ctrl.Register(a2)

	require.NoError(t, ctrl.RequestInformationToAgents(context.Background()))
	ctrl.GenerateAndSendNewConfiguration()

	assert.InDelta(t, 1.0, a1.SubReward, 1e-9, "wlan 1 should receive wlan 2's reward as its sub-reward")
	assert.Len(t, ap1.applied, 1, "only the agent's own RunCycle applies a Configuration; forwarding sub-rewards must not push one")
}

func TestControllerRTOTAdjustsOBSSPDToStrongestNeighbor(t *testing.T) {
	sched := engine.New(engine.BackendCalendar, nil)
	ctrl := agent.NewController(sched, agent.ModeActive, agent.StrategyRTOT, 4, -65, 0, nil)

	ap1 := &fakeAP{cfg: report.Configuration{PrimaryChannel: 1, MaxBandwidth: 1}, perf: report.Performance{
		RSSIToBSS: map[ids.WLANID]float64{2: -70, 3: -55},
	}}
	a1 := newTestAgent(sched, 1, ap1)
	ctrl.Register(a1)

	require.NoError(t, ctrl.RequestInformationToAgents(context.Background()))
	ctrl.GenerateAndSendNewConfiguration()

	require.NotEmpty(t, ap1.applied)
	last := ap1.applied[len(ap1.applied)-1]
	assert.InDelta(t, -55, simclock.PWToDBm(last.NonSRGOBSSPD), 1e-6)
}

func TestControllerPeriodicScheduleRunsRounds(t *testing.T) {
	sched := engine.New(engine.BackendCalendar, nil)
	ctrl := agent.NewController(sched, agent.ModePassive, agent.StrategyActionBanning, 4, -65, 100, nil)

	ap1 := &fakeAP{cfg: report.Configuration{PrimaryChannel: 1, MaxBandwidth: 1}}
	a1 := newTestAgent(sched, 1, ap1)
	ctrl.Register(a1)
	ctrl.Start()

	_, err := sched.Run(250, nil)
	require.NoError(t, err)
	// Each agent's own RunCycle applies its learner's pick regardless of
	// controller mode; two rounds (t=100,200) means two applied configs.
	assert.Len(t, ap1.applied, 2)
}
