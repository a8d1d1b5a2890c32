// SPDX-License-Identifier: GPL-3.0

package node

import (
	"math"
	"math/rand"

	"github.com/wnsim/dcfsim/internal/engine"
	"github.com/wnsim/dcfsim/internal/simclock"
)

// TrafficModel selects how a node's buffer occupancy evolves over time
// (spec 3.2's per-node "traffic model and load" attribute).
type TrafficModel int

const (
	// TrafficFullBuffer keeps the node permanently backlogged, the default
	// assumption for saturation throughput scenarios.
	TrafficFullBuffer TrafficModel = iota
	// TrafficPoisson draws packet interarrival times from an exponential
	// distribution at the configured load, alternating the buffer between
	// empty and non-empty as arrivals and an estimated service time compete.
	TrafficPoisson
)

// Generator drives a Node's SetBufferNonEmpty calls from its configured
// traffic model, grounded on the teacher's periodic-event scheduling idiom
// (jitter.go/ramp.go) adapted from wall-clock ticks to the engine's virtual
// time.
type Generator struct {
	node  *Node
	sched *engine.Scheduler
	self  engine.ComponentID
	rng   *rand.Rand

	model        TrafficModel
	meanInterval simclock.Clock
	serviceTime  simclock.Clock
}

// NewGenerator constructs a Generator for n. loadBitsPerSec is the offered
// load in bits/second, used with n.Cfg.PacketLengthBits to derive a mean
// packet interarrival time for TrafficPoisson; it is ignored for
// TrafficFullBuffer.
func NewGenerator(n *Node, sched *engine.Scheduler, model TrafficModel, loadBitsPerSec float64, rng *rand.Rand) *Generator {
	g := &Generator{node: n, sched: sched, model: model, rng: rng}
	if model == TrafficPoisson && loadBitsPerSec > 0 && n.Cfg.PacketLengthBits > 0 {
		packetsPerSec := loadBitsPerSec / float64(n.Cfg.PacketLengthBits)
		if packetsPerSec > 0 {
			g.meanInterval = simclock.Clock(float64(simclock.Clock(1e9)) / packetsPerSec)
			g.serviceTime = simclock.Clock(float64(n.Cfg.PacketLengthBits) / loadBitsPerSec * 1e9)
		}
	}
	g.self = sched.Register(g)
	return g
}

// Start books the node's first arrival (full-buffer nodes go non-empty
// immediately and stay that way for the run).
func (g *Generator) Start() {
	switch g.model {
	case TrafficFullBuffer:
		g.node.SetBufferNonEmpty(true)
	case TrafficPoisson:
		g.scheduleArrival()
	}
}

func (g *Generator) scheduleArrival() {
	if g.meanInterval <= 0 {
		return
	}
	dt := g.nextInterval()
	g.sched.Schedule(g.self, engine.KindTrafficArrival, nil, dt)
}

// nextInterval draws an exponential interarrival time with the configured
// mean, using the inverse-CDF method.
func (g *Generator) nextInterval() simclock.Clock {
	u := g.rng.Float64()
	if u <= 0 {
		u = 1e-9
	}
	return simclock.Clock(-math.Log(u) * float64(g.meanInterval))
}

// Activate implements engine.Activator: each arrival marks the buffer
// non-empty, then books a departure at the estimated single-packet service
// time so the buffer drains back to empty between sparse arrivals, and
// books the next arrival.
func (g *Generator) Activate(ev *engine.Event) error {
	if ev.Kind != engine.KindTrafficArrival {
		return nil
	}
	if _, isDeparture := ev.Data.(departureMarker); isDeparture {
		g.node.SetBufferNonEmpty(false)
		return nil
	}
	g.node.SetBufferNonEmpty(true)
	if g.serviceTime > 0 {
		g.sched.Schedule(g.self, engine.KindTrafficArrival, departureMarker{}, g.serviceTime)
	}
	g.scheduleArrival()
	return nil
}

// departureMarker distinguishes a self-scheduled "go idle" event from a
// fresh arrival within the same Kind, letting the single Activate switch
// stay a direct Kind dispatch without a second registered component.
type departureMarker struct{}
