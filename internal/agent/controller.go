// SPDX-License-Identifier: GPL-3.0

package agent

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/wnsim/dcfsim/internal/engine"
	"github.com/wnsim/dcfsim/internal/ids"
	"github.com/wnsim/dcfsim/internal/simclock"
	"github.com/wnsim/dcfsim/internal/simlog"
)

// ControllerMode selects whether the central controller only observes
// (MODE_PASSIVE) or actively overrides per-BSS configuration
// (MODE_ACTIVE), mirroring central_controller.h's controller_mode.
type ControllerMode int

const (
	ModePassive ControllerMode = iota
	ModeActive
)

// Strategy is the central controller's cross-BSS decision method (spec
// 4.5's three mandated actions: graph-coloring, action-banning, and
// forwarding per-agent sub-rewards; StrategyRTOT is a supplemental OBSS-PD
// controller added on top of those three).
type Strategy int

const (
	StrategyGraphColoring Strategy = iota
	StrategyActionBanning
	StrategyForwardSubRewards
	StrategyRTOT
)

// Controller coordinates per-BSS Agents: it polls all of them concurrently
// (a barrier at each round, since a coloring/banning decision needs every
// BSS's current state at once) and, in MODE_ACTIVE, pushes back a revised
// Configuration (spec 4.5), grounded on
// original_source/.../main/central_controller.h.
type Controller struct {
	Mode        ControllerMode
	Strategy    Strategy
	NumChannels int
	ThresholdDB float64

	agents map[ids.WLANID]*Agent
	graph  *RSSIGraph
	banned map[ids.WLANID]map[int]bool

	sched  *engine.Scheduler
	self   engine.ComponentID
	period simclock.Clock

	log *simlog.Logger
}

// NewController constructs a Controller with no agents (add them with
// Register), polling them every period on the scheduler's own clock (spec 4.5's central-controller
// round). A zero period leaves the controller purely manually driven via
// RequestInformationToAgents/GenerateAndSendNewConfiguration.
func NewController(sched *engine.Scheduler, mode ControllerMode, strategy Strategy, numChannels int, thresholdDB float64, period simclock.Clock, log *simlog.Logger) *Controller {
	if log == nil {
		log = simlog.Discard()
	}
	c := &Controller{
		Mode:        mode,
		Strategy:    strategy,
		NumChannels: numChannels,
		ThresholdDB: thresholdDB,
		agents:      make(map[ids.WLANID]*Agent),
		graph:       NewRSSIGraph(),
		banned:      make(map[ids.WLANID]map[int]bool),
		sched:       sched,
		period:      period,
		log:         log.With("component", "controller"),
	}
	if sched != nil {
		c.self = sched.Register(c)
	}
	return c
}

// Start books the controller's first periodic round.
func (c *Controller) Start() {
	c.scheduleNext()
}

func (c *Controller) scheduleNext() {
	if c.sched == nil || c.period <= 0 {
		return
	}
	c.sched.Schedule(c.self, engine.KindAgentRequest, nil, c.period)
}

// Activate implements engine.Activator: each tick polls every agent, then
// runs the selected cross-BSS strategy over the freshly reported state.
func (c *Controller) Activate(ev *engine.Event) error {
	if ev.Kind != engine.KindAgentRequest {
		return nil
	}
	if err := c.RequestInformationToAgents(context.Background()); err != nil {
		return err
	}
	c.GenerateAndSendNewConfiguration()
	c.scheduleNext()
	return nil
}

// Register adds an agent the controller will poll and, when the controller
// runs the action-banning strategy, wires the agent's arm selection to
// consult the controller's live banned-channel set.
func (c *Controller) Register(a *Agent) {
	c.agents[a.WLAN] = a
	wlan := a.WLAN
	a.BannedChannels = func() map[int]bool { return c.Banned(wlan) }
}

// RequestInformationToAgents fans out a RunCycle to every registered agent
// concurrently and blocks until all have reported, mirroring
// central_controller.h's RequestInformationToAgents round (every agent
// must answer before GenerateAndSendNewConfiguration can act on the full
// picture).
func (c *Controller) RequestInformationToAgents(ctx context.Context) error {
	g, _ := errgroup.WithContext(ctx)
	for _, a := range c.agents {
		a := a
		g.Go(func() error {
			a.RunCycle()
			return nil
		})
	}
	return g.Wait()
}

// GenerateAndSendNewConfiguration runs the selected cross-BSS strategy over
// the most recently reported Configuration/Performance of every agent and,
// in MODE_ACTIVE, pushes the result back to each AP.
func (c *Controller) GenerateAndSendNewConfiguration() {
	switch c.Strategy {
	case StrategyGraphColoring:
		c.runGraphColoring()
	case StrategyActionBanning:
		c.runActionBanning()
	case StrategyForwardSubRewards:
		c.runForwardSubRewards()
	case StrategyRTOT:
		c.runRTOT()
	}
}

func (c *Controller) wlans() []ids.WLANID {
	out := make([]ids.WLANID, 0, len(c.agents))
	for w := range c.agents {
		out = append(out, w)
	}
	return out
}

// runGraphColoring rebuilds the mutual-RSSI graph from each agent's last
// reported RSSIToBSS and reassigns primary channels so no two BSSs whose
// mutual RSSI exceeds ThresholdDB collide (spec 4.5), generalizing
// graph_coloring.h's round-robin "new_primary = i % num_channels" fallback
// into a real greedy coloring.
func (c *Controller) runGraphColoring() {
	for wlan, a := range c.agents {
		for peer, rssi := range a.Reported.RSSIToBSS {
			c.graph.SetRSSI(wlan, peer, rssi)
		}
	}
	assignment := c.graph.ColorChannels(c.wlans(), c.NumChannels, c.ThresholdDB)
	if c.Mode != ModeActive {
		return
	}
	for wlan, ch := range assignment {
		a, ok := c.agents[wlan]
		if !ok {
			continue
		}
		cfg := a.Current
		cfg.PrimaryChannel = ch
		a.ap.ApplyConfiguration(cfg)
	}
}

// playFrequencyThreshold is spec 4.5(b)'s ">33% of the time" play-frequency
// trigger for banning an action.
const playFrequencyThreshold = 1.0 / 3.0

// runActionBanning implements spec 4.5(b): for every victim BSS whose
// reward sits below the cluster's adaptive (mean) reward, ban the channel
// of any RSSI-neighbor whose most-popular play exceeds playFrequencyThreshold
// of its own total plays, so that neighbor's channel stops being offered to
// the victim's Learner. Unlike (a)/(b)'s own internals (spec 1), the
// banning trigger itself is mandated, not left to the Learner's discretion.
func (c *Controller) runActionBanning() {
	for wlan, a := range c.agents {
		for peer, rssi := range a.Reported.RSSIToBSS {
			c.graph.SetRSSI(wlan, peer, rssi)
		}
	}
	adaptiveThreshold := c.meanReward()
	for wlan, victim := range c.agents {
		banned := make(map[int]bool)
		if victim.LastReward < adaptiveThreshold {
			for _, peer := range c.graph.Neighbors(wlan, c.ThresholdDB) {
				peerAgent, ok := c.agents[peer]
				if !ok {
					continue
				}
				arm, frequency := peerAgent.learn.MostPlayed()
				if frequency > playFrequencyThreshold {
					cfg := peerAgent.pp.Actions.Decode(arm, peerAgent.Current)
					banned[cfg.PrimaryChannel] = true
				}
			}
		}
		c.banned[wlan] = banned
	}
}

// meanReward returns the mean of every registered agent's last reported
// reward, used as runActionBanning's adaptive victim-reward threshold.
func (c *Controller) meanReward() float64 {
	if len(c.agents) == 0 {
		return 0
	}
	sum := 0.0
	for _, a := range c.agents {
		sum += a.LastReward
	}
	return sum / float64(len(c.agents))
}

// Banned reports the set of channels currently banned for wlan by the
// action-banning strategy.
func (c *Controller) Banned(wlan ids.WLANID) map[int]bool {
	return c.banned[wlan]
}

// runForwardSubRewards implements spec 4.5(c): rather than overriding any
// agent's Configuration, the controller relays each BSS's own last reward
// to every RSSI-cluster neighbor as that neighbor's sub-reward, letting a
// Learner fold nearby BSS conditions into its own decisions without the
// controller dictating one.
func (c *Controller) runForwardSubRewards() {
	for wlan, a := range c.agents {
		for peer, rssi := range a.Reported.RSSIToBSS {
			c.graph.SetRSSI(wlan, peer, rssi)
		}
	}
	for wlan, a := range c.agents {
		neighbors := c.graph.Neighbors(wlan, c.ThresholdDB)
		if len(neighbors) == 0 {
			a.SubReward = 0
			continue
		}
		sum := 0.0
		for _, peer := range neighbors {
			if peerAgent, ok := c.agents[peer]; ok {
				sum += peerAgent.LastReward
			}
		}
		a.SubReward = sum / float64(len(neighbors))
	}
}

// runRTOT adjusts each agent's non-SRG OBSS-PD threshold toward the
// strongest observed neighbor RSSI, mirroring
// GenerateNewConfigurationRtotAlg's "non_srg_obss_pd = ml_output" update
// rule (the RTOT algorithm rewrites only the OBSS-PD threshold).
func (c *Controller) runRTOT() {
	if c.Mode != ModeActive {
		return
	}
	for _, a := range c.agents {
		maxRSSI := -200.0
		for _, rssi := range a.Reported.RSSIToBSS {
			if rssi > maxRSSI {
				maxRSSI = rssi
			}
		}
		if maxRSSI <= -200.0 {
			continue
		}
		cfg := a.Current
		cfg.NonSRGOBSSPD = simclock.DBmToPW(maxRSSI)
		a.ap.ApplyConfiguration(cfg)
	}
}
