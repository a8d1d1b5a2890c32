package node_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wnsim/dcfsim/internal/bus"
	"github.com/wnsim/dcfsim/internal/channel"
	"github.com/wnsim/dcfsim/internal/engine"
	"github.com/wnsim/dcfsim/internal/ids"
	"github.com/wnsim/dcfsim/internal/node"
	"github.com/wnsim/dcfsim/internal/simclock"
)

// nackRecorder is a minimal bus.Receiver standing in for the two senders in
// a second-reception collision scenario, capturing whatever NACK it's
// routed.
type nackRecorder struct {
	id    ids.NodeID
	nacks []bus.NACK
}

func (r *nackRecorder) ID() ids.NodeID             { return r.id }
func (r *nackRecorder) OnTXStart(bus.Notification) {}
func (r *nackRecorder) OnTXEnd(bus.Notification)   {}
func (r *nackRecorder) OnNACK(nack bus.NACK)       { r.nacks = append(r.nacks, nack) }
func (r *nackRecorder) OnConfigChanged(ids.NodeID) {}

const rxTestFreqHz = 5.18e9

// rxDBmToTXPower returns the notif.TXPower that, from a node 1 meter away
// from the victim with no antenna gain, arrives at the configured free-space
// received power desiredRxDBm.
func rxDBmToTXPower(desiredRxDBm float64) simclock.Power {
	baseline := channel.FreeSpace{}.ReceivedPowerDBm(0, 1, rxTestFreqHz, 0, 0)
	return simclock.DBmToPW(desiredRxDBm - baseline)
}

func newRXVictim(sched *engine.Scheduler, b *bus.Bus, topo *node.Topology) *node.Node {
	cfg := node.Config{
		ID: 1, Type: node.AP, WLAN: 1,
		PrimaryChannel: 1, MinCh: 1, MaxCh: 8, FreqHz: rxTestFreqHz,
		TXPowerDefault: simclock.DBmToPW(20),
		PDDefault:      simclock.DBmToPW(-82),
		CWMin:          15, StageMax: 6, Slotted: true,
		CaptureEffectThresholdDB: 10,
	}
	n := node.New(cfg, sched, b, topo, nil, rand.New(rand.NewSource(1)), 8)
	b.Register(n)
	return n
}

func TestOnTXStartSecondAddressedReceptionIsPureCollision(t *testing.T) {
	sched := engine.New(engine.BackendCalendar, nil)
	b := bus.New()
	topo := node.NewTopology()
	topo.Set(2, 1, 0, 0)
	topo.Set(3, 0, 1, 0)
	srcA, srcB := &nackRecorder{id: 2}, &nackRecorder{id: 3}
	b.Register(srcA)
	b.Register(srcB)
	victim := newRXVictim(sched, b, topo)

	notifA := bus.Notification{Source: 2, Destination: 1, Kind: bus.PacketData, Left: 1, Right: 1, TXPower: rxDBmToTXPower(-70)}
	notifB := bus.Notification{Source: 3, Destination: 1, Kind: bus.PacketData, Left: 1, Right: 1, TXPower: rxDBmToTXPower(-70)}

	victim.OnTXStart(notifA)
	require.Equal(t, node.RXData, victim.State())

	victim.OnTXStart(notifB)

	require.Len(t, srcA.nacks, 1)
	require.Len(t, srcB.nacks, 1)
	assert.Equal(t, bus.LossPureCollision, srcA.nacks[0].Reason)
	assert.Equal(t, bus.LossPureCollision, srcB.nacks[0].Reason)
	assert.Equal(t, node.Sensing, victim.State(), "a collision between two equal-strength addressed frames loses both")
}

func TestOnTXStartSecondAddressedReceptionIsLowSignalWhileRX(t *testing.T) {
	sched := engine.New(engine.BackendCalendar, nil)
	b := bus.New()
	topo := node.NewTopology()
	topo.Set(2, 1, 0, 0)
	topo.Set(3, 0, 1, 0)
	srcA, srcB := &nackRecorder{id: 2}, &nackRecorder{id: 3}
	b.Register(srcA)
	b.Register(srcB)
	victim := newRXVictim(sched, b, topo)

	notifA := bus.Notification{Source: 2, Destination: 1, Kind: bus.PacketRTS, Left: 1, Right: 1, TXPower: rxDBmToTXPower(-40)}
	notifB := bus.Notification{Source: 3, Destination: 1, Kind: bus.PacketData, Left: 1, Right: 1, TXPower: rxDBmToTXPower(-90)}

	victim.OnTXStart(notifA)
	require.Equal(t, node.RXRts, victim.State())

	victim.OnTXStart(notifB)

	assert.Empty(t, srcA.nacks, "the ongoing, much stronger reception must survive")
	require.Len(t, srcB.nacks, 1)
	assert.Equal(t, bus.LossLowSignalAndRX, srcB.nacks[0].Reason)
	assert.Equal(t, node.RXRts, victim.State(), "still decoding the original frame")
}

func TestOnTXStartSecondAddressedReceptionCapturesOverWeakerOngoing(t *testing.T) {
	sched := engine.New(engine.BackendCalendar, nil)
	b := bus.New()
	topo := node.NewTopology()
	topo.Set(2, 1, 0, 0)
	topo.Set(3, 0, 1, 0)
	srcA, srcB := &nackRecorder{id: 2}, &nackRecorder{id: 3}
	b.Register(srcA)
	b.Register(srcB)
	victim := newRXVictim(sched, b, topo)

	notifA := bus.Notification{Source: 2, Destination: 1, Kind: bus.PacketRTS, Left: 1, Right: 1, TXPower: rxDBmToTXPower(-75)}
	notifB := bus.Notification{Source: 3, Destination: 1, Kind: bus.PacketData, Left: 1, Right: 1, TXPower: rxDBmToTXPower(-40)}

	victim.OnTXStart(notifA)
	require.Equal(t, node.RXRts, victim.State())

	victim.OnTXStart(notifB)

	require.Len(t, srcA.nacks, 1)
	assert.Equal(t, bus.LossCaptureEffect, srcA.nacks[0].Reason)
	assert.Empty(t, srcB.nacks)
	assert.Equal(t, node.RXData, victim.State(), "the much stronger new frame captures the channel")
}

func TestOnConfigChangedUnknownSourceIsNoOp(t *testing.T) {
	sched := engine.New(engine.BackendCalendar, nil)
	b := bus.New()
	topo := node.NewTopology()
	cfg := node.Config{
		ID: 1, Type: node.AP, WLAN: 1,
		PrimaryChannel: 1, MinCh: 1, MaxCh: 8, FreqHz: rxTestFreqHz,
		PDDefault: simclock.DBmToPW(-82),
		CWMin:     15, StageMax: 6, Slotted: true,
	}
	n := node.New(cfg, sched, b, topo, nil, rand.New(rand.NewSource(1)), 8)
	b.Register(n)

	assert.NotPanics(t, func() { n.OnConfigChanged(99) }, "no cached table for an unknown source is a no-op")
}
