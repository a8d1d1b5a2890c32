// SPDX-License-Identifier: GPL-3.0

package node

import (
	"math/rand"

	"github.com/wnsim/dcfsim/internal/bus"
	"github.com/wnsim/dcfsim/internal/channel"
	"github.com/wnsim/dcfsim/internal/engine"
	"github.com/wnsim/dcfsim/internal/ids"
	"github.com/wnsim/dcfsim/internal/report"
	"github.com/wnsim/dcfsim/internal/simclock"
	"github.com/wnsim/dcfsim/internal/simlog"
)

// txEventData is the Event payload carried by engine.KindFrameTXEnd events
// a Node schedules for its own in-flight transmission.
type txEventData struct {
	notif bus.Notification
}

// pendingRX records the frame a Node is currently decoding, from the
// matching TX-start to the matching TX-end (spec 4.2.4).
type pendingRX struct {
	notif  bus.Notification
	valid  bool
}

// Node drives one station's or AP's MAC/PHY state machine (spec 4.2). It is
// both an engine.Activator (timers fire Activate) and a bus.Receiver
// (cross-node notifications arrive via OnTXStart/OnTXEnd/OnNACK).
type Node struct {
	Cfg Config

	sched *engine.Scheduler
	self  engine.ComponentID
	bus   *bus.Bus
	topo  *Topology
	log   *simlog.Logger
	rng   *rand.Rand

	state State

	power *channel.PowerVector
	mcs   map[ids.NodeID]*channel.MCSTable

	Peers []ids.NodeID // candidate destinations this node transmits to

	backoff        *Backoff
	bufferNonEmpty bool
	nextPeerIdx    int

	currentSpan channel.Span
	packetSeq   uint64
	retries     int

	backoffEvent  *engine.Event
	txEndEvent    *engine.Event
	timeoutEvent  *engine.Event
	sifsEvent     *engine.Event
	navEvent      *engine.Event
	navUntil      simclock.Clock

	rx pendingRX

	lastPacketID ids.PacketID

	Perf                 report.Performance
	HiddenNodes          map[ids.NodeID]int
	PotentialHiddenNodes uint64
}

// New constructs a Node. numChannels sizes its channel-power vector.
func New(cfg Config, sched *engine.Scheduler, b *bus.Bus, topo *Topology, log *simlog.Logger, rng *rand.Rand, numChannels int) *Node {
	if log == nil {
		log = simlog.Discard()
	}
	n := &Node{
		Cfg:   cfg,
		sched: sched,
		bus:   b,
		topo:  topo,
		log:   log.With("node", int(cfg.ID)),
		rng:   rng,
		state: Sensing,
		power: channel.NewPowerVector(numChannels, 0),
		mcs:   make(map[ids.NodeID]*channel.MCSTable),
		backoff: NewBackoff(cfg.CWMin, cfg.StageMax, cfg.Slotted, Uniform, cfg.CWAdapt, rng),
		HiddenNodes: make(map[ids.NodeID]int),
	}
	n.self = sched.Register(n)
	topo.Set(cfg.ID, cfg.X, cfg.Y, cfg.Z)
	topo.SetRadio(cfg.ID, cfg.TXPowerDefault, cfg.AntennaGainTXDBi, cfg.AntennaGainRXDBi, cfg.FreqHz, cfg.PathLoss)
	return n
}

// ID implements bus.Receiver.
func (n *Node) ID() ids.NodeID { return n.Cfg.ID }

// ComponentID returns this node's scheduler component handle.
func (n *Node) ComponentID() engine.ComponentID { return n.self }

// State returns the node's current MAC state.
func (n *Node) State() State { return n.state }

// SetBufferNonEmpty marks that the node has traffic to send and, if idle in
// SENSING with no backoff in flight, starts one (spec 4.2.1: "on a packet
// arrival when the buffer was empty").
func (n *Node) SetBufferNonEmpty(nonEmpty bool) {
	wasEmpty := !n.bufferNonEmpty
	n.bufferNonEmpty = nonEmpty
	if nonEmpty && wasEmpty && n.state == Sensing && n.backoffEvent == nil {
		n.armBackoff()
	}
}

func (n *Node) primaryFree(now simclock.Clock) bool {
	return n.power.Sensed(n.Cfg.PrimaryChannel) <= n.Cfg.PDDefault
}

func (n *Node) difsElapsed(now simclock.Clock) bool {
	return n.power.IsIdleFor(n.Cfg.PrimaryChannel, now, DIFS, n.Cfg.PDDefault)
}

// armBackoff draws a new backoff value and, if the channel already
// qualifies, schedules its expiry; otherwise it stays paused until a
// DIFS-elapsed re-evaluation (booked by tryResumeBackoff) resumes it.
func (n *Node) armBackoff() {
	n.backoff.Draw()
	now := n.sched.Now()
	if n.difsElapsed(now) {
		n.scheduleBackoffExpiry()
	} else {
		n.backoff.Pause(0)
		n.tryResumeBackoff(now)
	}
}

func (n *Node) scheduleBackoffExpiry() {
	dur := n.backoff.Remaining()
	e, err := n.sched.Schedule(n.self, engine.KindBackoffExpiry, nil, dur)
	if err != nil {
		return
	}
	n.backoffEvent = e
}

// tryResumeBackoff re-evaluates the pause/resume rule (spec 4.2.1) after a
// channel-power change: pause if busy, resume (rearming the expiry timer)
// once idle for DIFS and the buffer is non-empty.
func (n *Node) tryResumeBackoff(now simclock.Clock) {
	if n.backoff == nil || n.state != Sensing {
		return
	}
	busy := !n.primaryFree(now)
	if busy {
		if !n.backoff.Paused() {
			n.backoff.Pause(0)
			if n.backoffEvent != nil {
				n.sched.Cancel(n.backoffEvent)
				n.backoffEvent = nil
			}
		}
		return
	}
	if !n.backoff.Paused() || !n.bufferNonEmpty {
		return
	}
	if n.difsElapsed(now) {
		n.backoff.Resume()
		n.scheduleBackoffExpiry()
		return
	}
	// Idle, but not yet for DIFS: re-evaluate once DIFS has passed since the
	// primary channel went free.
	if free := n.power.FreeSince(n.Cfg.PrimaryChannel); free != simclock.ClockInfinity {
		n.sched.ScheduleAt(n.self, engine.KindDIFSElapsed, nil, free+DIFS)
	}
}

// Activate implements engine.Activator, dispatching a fired Event to the
// right state-machine handler.
func (n *Node) Activate(ev *engine.Event) error {
	switch ev.Kind {
	case engine.KindBackoffExpiry:
		n.backoffEvent = nil
		n.onBackoffExpiry()
	case engine.KindFrameTXEnd:
		n.txEndEvent = nil
		if d, ok := ev.Data.(txEventData); ok {
			n.onOwnTXEnd(d.notif)
		}
	case engine.KindSIFSTimeout:
		n.sifsEvent = nil
		if fn, ok := ev.Data.(func()); ok {
			fn()
		}
	case engine.KindACKTimeout:
		n.timeoutEvent = nil
		n.onResponseTimeout()
	case engine.KindDIFSElapsed:
		now := n.sched.Now()
		if n.state == NAV && n.navEvent == ev {
			n.navEvent = nil
			n.state = Sensing
		}
		n.tryResumeBackoff(now)
	}
	return nil
}

// ClearStats implements engine.ClearStatter (spec 4.1 clear_stats hook).
func (n *Node) ClearStats(now simclock.Clock) {
	n.Perf = report.Performance{WLAN: n.Cfg.WLAN}
	n.HiddenNodes = make(map[ids.NodeID]int)
	n.PotentialHiddenNodes = 0
}

func (n *Node) nextPacketID() ids.PacketID {
	n.packetSeq++
	return ids.PacketID(uint64(n.Cfg.ID)<<32 | n.packetSeq)
}

func (n *Node) nextDestination() ids.NodeID {
	if len(n.Peers) == 0 {
		return ids.NoNode
	}
	d := n.Peers[n.nextPeerIdx%len(n.Peers)]
	n.nextPeerIdx++
	return d
}

func (n *Node) mcsTableFor(dest ids.NodeID) *channel.MCSTable {
	t, ok := n.mcs[dest]
	if !ok {
		t = channel.NewMCSTable()
		n.mcs[dest] = t
	}
	return t
}
