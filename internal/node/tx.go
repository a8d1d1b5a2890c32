// SPDX-License-Identifier: GPL-3.0

package node

import (
	"math"

	"github.com/wnsim/dcfsim/internal/bus"
	"github.com/wnsim/dcfsim/internal/channel"
	"github.com/wnsim/dcfsim/internal/engine"
	"github.com/wnsim/dcfsim/internal/ids"
	"github.com/wnsim/dcfsim/internal/simclock"
)

// txPowerForWidth applies the constant-PSD rule: per-subcarrier power is
// reduced by 3*log2(width) dB relative to the configured total power when
// bonding spans more than one basic channel (spec 4.2.2 step 5).
func txPowerForWidth(total simclock.Power, width int) simclock.Power {
	if width <= 1 {
		return total
	}
	reductionDB := 3 * math.Log2(float64(width))
	return simclock.DBmToPW(simclock.PWToDBm(total) - reductionDB)
}

// onBackoffExpiry implements spec 4.2.2: compute free channels, select a
// contiguous bonding span, query/refresh the MCS cache, and begin the
// RTS/CTS/DATA cycle (or go straight to DATA when RTS/CTS is disabled).
func (n *Node) onBackoffExpiry() {
	if !n.bufferNonEmpty {
		return
	}
	isFree := func(ch int) bool {
		return n.power.IsIdleFor(ch, n.sched.Now(), DIFS, n.Cfg.PDDefault)
	}
	maxCh := n.Cfg.MaxCh
	if w := n.Cfg.MaxBandwidth; w > 0 && n.Cfg.PrimaryChannel+w-1 < maxCh {
		maxCh = n.Cfg.PrimaryChannel + w - 1
	}
	span, ok := channel.SelectTransmission(n.Cfg.Bonding, n.Cfg.PrimaryChannel, n.Cfg.MinCh, maxCh, isFree, n.rng)
	if !ok {
		n.armBackoff()
		return
	}
	dest := n.nextDestination()
	if dest < 0 {
		return
	}
	n.currentSpan = span
	tbl := n.mcsTableFor(dest)
	if tbl.Dirty() {
		rssi := n.topo.EstimateRSSI(dest, n.Cfg.ID)
		tbl.Populate(rssi)
	}
	if n.Cfg.UseRTSCTS {
		n.transmit(bus.PacketRTS, dest, span, TXRts)
	} else {
		n.transmit(bus.PacketData, dest, span, TXData)
	}
}

// transmit builds and fans out a Notification for the given frame kind,
// enters the matching TX_* state, and schedules this node's own TX-end
// event.
func (n *Node) transmit(kind bus.PacketKind, dest ids.NodeID, span channel.Span, state State) {
	n.state = state
	width := span.Width()
	txPower := txPowerForWidth(n.Cfg.TXPowerDefault, width)

	rate := simclock.Bitrate(simclock.Mbps * 6) // control-frame rate floor
	var payloadBits uint64
	var fk FrameKind
	var navDur simclock.Clock

	switch kind {
	case bus.PacketRTS:
		fk = FrameRTS
		payloadBits = 160
		navDur = 3*SIFS + n.estimatedCTSDuration(dest, width) + n.estimatedDataDuration(dest, width) + n.estimatedACKDuration(dest, width)
	case bus.PacketCTS:
		fk = FrameCTS
		payloadBits = 112
		navDur = 2*SIFS + n.estimatedDataDuration(dest, width) + n.estimatedACKDuration(dest, width)
	case bus.PacketData:
		fk = FrameData
		payloadBits = AMPDUPayloadBits(n.Cfg.MaxAMPDU, n.Cfg.PacketLengthBits)
		tbl := n.mcsTableFor(dest)
		mcs := tbl.Get(width)
		if !mcs.Forbidden && mcs.DataRate > 0 {
			rate = mcs.DataRate
		}
	case bus.PacketACK:
		fk = FrameACK
		payloadBits = 112
	}
	dur := FrameDuration(fk, payloadBits, rate)

	notif := bus.Notification{
		Source:      n.Cfg.ID,
		Destination: dest,
		Kind:        kind,
		Left:        span.Left,
		Right:       span.Right,
		LengthBits:  payloadBits,
		Duration:    dur,
		TXPower:     txPower,
		X:           n.Cfg.X,
		Y:           n.Cfg.Y,
		Z:           n.Cfg.Z,
		PacketID:    n.currentPacketIDOrNew(kind),
		DataRate:    rate,
		NAVDuration: navDur,
		BSSColor:    n.Cfg.BSSColor,
		SRG:         n.Cfg.SRG,
	}

	n.bus.TXStart(notif)
	e, err := n.sched.Schedule(n.self, engine.KindFrameTXEnd, txEventData{notif: notif}, dur)
	if err == nil {
		n.txEndEvent = e
	}
}

// currentPacketIDOrNew assigns a fresh packet id when a frame starts a new
// logical exchange (an RTS, or a DATA frame sent without RTS/CTS), and
// otherwise reuses the id of the last exchange this node started: the DATA
// that follows its own RTS carries that RTS's id, while a CTS or ACK sent as
// a responder carries the responder's own last id, not the initiator's.
func (n *Node) currentPacketIDOrNew(kind bus.PacketKind) ids.PacketID {
	startsExchange := kind == bus.PacketRTS || (kind == bus.PacketData && !n.Cfg.UseRTSCTS)
	if startsExchange {
		id := n.nextPacketID()
		n.lastPacketID = id
		return id
	}
	return n.lastPacketID
}

func (n *Node) estimatedCTSDuration(dest ids.NodeID, width int) simclock.Clock {
	return FrameDuration(FrameCTS, 112, simclock.Bitrate(simclock.Mbps*6))
}

func (n *Node) estimatedACKDuration(dest ids.NodeID, width int) simclock.Clock {
	return FrameDuration(FrameACK, 112, simclock.Bitrate(simclock.Mbps*6))
}

func (n *Node) estimatedDataDuration(dest ids.NodeID, width int) simclock.Clock {
	tbl := n.mcsTableFor(dest)
	mcs := tbl.Get(width)
	rate := simclock.Bitrate(simclock.Mbps * 6)
	if !mcs.Forbidden && mcs.DataRate > 0 {
		rate = mcs.DataRate
	}
	return FrameDuration(FrameData, AMPDUPayloadBits(n.Cfg.MaxAMPDU, n.Cfg.PacketLengthBits), rate)
}

// onOwnTXEnd handles the completion of a transmission this node initiated:
// it fans the TX-end out to every other node, then advances its own state
// per the RTS/CTS/DATA/ACK cycle (spec 4.2.3).
func (n *Node) onOwnTXEnd(notif bus.Notification) {
	n.bus.TXEnd(notif)
	switch notif.Kind {
	case bus.PacketRTS:
		n.state = WaitCts
		n.armResponseTimeout()
	case bus.PacketCTS:
		// responding to someone else's RTS; now wait to receive their DATA.
		n.state = RXData
	case bus.PacketData:
		n.state = WaitAck
		n.armResponseTimeout()
	case bus.PacketACK:
		n.onAckSent()
	}
}

func (n *Node) armResponseTimeout() {
	e, err := n.sched.Schedule(n.self, engine.KindACKTimeout, nil, ACKTimeout())
	if err == nil {
		n.timeoutEvent = e
	}
}

func (n *Node) cancelResponseTimeout() {
	if n.timeoutEvent != nil {
		n.sched.Cancel(n.timeoutEvent)
		n.timeoutEvent = nil
	}
}

// onResponseTimeout fires when an expected CTS or ACK failed to arrive in
// time (spec 4.2.3): treat as a lost transmission, bump CW, and retry
// unless max retries are exceeded.
func (n *Node) onResponseTimeout() {
	n.onTransmissionFailed()
}

func (n *Node) onTransmissionFailed() {
	n.backoff.OnFailure()
	n.retries++
	n.state = Sensing
	if n.retries > n.Cfg.MaxRetries {
		n.retries = 0
		n.Perf.Dropped++
	}
	if n.bufferNonEmpty {
		n.armBackoff()
	}
}

// onAckSent is called once this node (acting as the receiver of a DATA
// frame) finishes transmitting the Block-ACK: the exchange it completed
// succeeded, so its own backoff stage steps back by one and it returns to
// sensing.
func (n *Node) onAckSent() {
	n.state = Sensing
	n.backoff.OnSuccess()
	if n.bufferNonEmpty {
		n.armBackoff()
	}
}

// onSuccessfulExchange is called on the original sender once its final
// ACK has been fully received (spec 4.2.4 TX-END handling: "ACK -> success
// -> decrement CW-stage -> sense").
func (n *Node) onSuccessfulExchange() {
	n.cancelResponseTimeout()
	n.backoff.OnSuccess()
	n.retries = 0
	n.Perf.DataAcked++
	n.state = Sensing
	if n.bufferNonEmpty {
		n.armBackoff()
	}
}
