// SPDX-License-Identifier: GPL-3.0

package agent

import (
	"github.com/wnsim/dcfsim/internal/engine"
	"github.com/wnsim/dcfsim/internal/ids"
	"github.com/wnsim/dcfsim/internal/report"
	"github.com/wnsim/dcfsim/internal/simclock"
	"github.com/wnsim/dcfsim/internal/simlog"
)

// AP is the subset of a Node's surface an Agent acts on: it can be asked
// for its current Configuration/Performance and handed a new Configuration
// to apply (spec 4.4's agent<->AP report/reconfigure exchange).
type AP interface {
	CurrentConfiguration() report.Configuration
	CurrentPerformance() report.Performance
	ApplyConfiguration(report.Configuration)
}

// Agent runs the per-BSS decision loop on a T_req period (spec 4.4),
// grounded on original_source/.../main/agent.h: request the AP's
// Configuration/Performance, convert Performance into a reward via its
// PreProcessor, let its Learner pick the next arm, and push the decoded
// Configuration back to the AP.
type Agent struct {
	WLAN ids.WLANID

	sched *engine.Scheduler
	self  engine.ComponentID
	log   *simlog.Logger

	ap     AP
	pp     *PreProcessor
	learn  Learner
	period simclock.Clock

	lastArm int

	// BannedChannels, when set, is consulted each cycle to exclude arms
	// whose channel a central controller's action-banning strategy has
	// ruled out for this BSS (spec 4.5).
	BannedChannels func() map[int]bool

	// Reported is the most recent Performance snapshot pulled from the AP,
	// available for a central controller to poll (spec 4.5).
	Reported   report.Performance
	Current    report.Configuration
	LastReward float64

	// SubReward is the cluster reward signal a central controller running
	// StrategyForwardSubRewards last relayed to this agent (spec 4.5(c)).
	SubReward float64
}

// NewAgent constructs an Agent polling ap every period.
func NewAgent(wlan ids.WLANID, sched *engine.Scheduler, ap AP, pp *PreProcessor, learner Learner, period simclock.Clock, log *simlog.Logger) *Agent {
	if log == nil {
		log = simlog.Discard()
	}
	a := &Agent{
		WLAN:   wlan,
		sched:  sched,
		ap:     ap,
		pp:     pp,
		learn:  learner,
		period: period,
		log:    log.With("agent", int(wlan)),
	}
	a.self = sched.Register(a)
	return a
}

// Start books the first periodic request.
func (a *Agent) Start() {
	a.scheduleNext()
}

func (a *Agent) scheduleNext() {
	if a.period <= 0 {
		return
	}
	_, err := a.sched.Schedule(a.self, engine.KindAgentRequest, nil, a.period)
	if err != nil {
		a.log.Warnf("failed to schedule next request: %v", err)
	}
}

// Activate implements engine.Activator: each KindAgentRequest tick runs one
// full request/reward/select/reconfigure cycle.
func (a *Agent) Activate(ev *engine.Event) error {
	if ev.Kind != engine.KindAgentRequest {
		return nil
	}
	a.RunCycle()
	a.scheduleNext()
	return nil
}

// RunCycle performs one synchronous request/learn/reconfigure step, usable
// both from the periodic Activate tick and from a central controller
// driving an agent out of band (spec 4.5, MODE_ACTIVE).
func (a *Agent) RunCycle() {
	cfg := a.ap.CurrentConfiguration()
	perf := a.ap.CurrentPerformance()
	a.Reported = perf
	a.Current = cfg

	reward := a.pp.GenerateReward(perf)
	a.LastReward = reward
	a.learn.Update(a.pp.Actions.Encode(cfg), reward)

	var banned map[int]bool
	if a.BannedChannels != nil {
		banned = a.BannedChannels()
	}
	numArms := a.pp.Actions.NumArms()
	arms := make([]int, 0, numArms)
	for i := 0; i < numArms; i++ {
		if banned != nil && banned[a.pp.Actions.Decode(i, cfg).PrimaryChannel] {
			continue
		}
		arms = append(arms, i)
	}
	if len(arms) == 0 {
		for i := 0; i < numArms; i++ {
			arms = append(arms, i)
		}
	}
	arm := a.learn.Select(arms, a.lastArm)
	a.lastArm = arm

	newCfg := a.pp.Actions.Decode(arm, cfg)
	a.ap.ApplyConfiguration(newCfg)
}
