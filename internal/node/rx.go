// SPDX-License-Identifier: GPL-3.0

package node

import (
	"github.com/wnsim/dcfsim/internal/bus"
	"github.com/wnsim/dcfsim/internal/channel"
	"github.com/wnsim/dcfsim/internal/engine"
	"github.com/wnsim/dcfsim/internal/simclock"
)

// OnTXStart implements bus.Receiver: a peer began transmitting. Every node
// updates its channel-power accounting; if the frame addresses this node,
// the decode-admission chain runs (spec 4.2.4).
func (n *Node) OnTXStart(notif bus.Notification) {
	now := n.sched.Now()
	rxDBm := n.receivedPowerDBm(notif)
	n.power.Add(channel.NewContribKey(notif.Source, notif.PacketID), notif.Left, notif.Right, simclock.DBmToPW(rxDBm))
	for c := notif.Left; c <= notif.Right; c++ {
		n.power.MarkFreeIfBelow(c, now, n.Cfg.PDDefault)
	}
	n.tryResumeBackoff(now)

	addressedToMe := notif.Destination == n.Cfg.ID
	if !addressedToMe {
		n.maybeEnterNAV(notif, now)
		if n.state.IsReceiving() && n.rx.valid {
			n.recheckCapture(now)
		}
		return
	}

	if n.rx.valid {
		n.handleSecondAddressedReception(notif, rxDBm)
		return
	}

	reason, pass := n.admissionTest(notif, rxDBm, now)
	if !pass {
		n.emitNACK(notif, reason)
		return
	}
	n.rx = pendingRX{notif: notif, valid: true}
	n.state = rxStateFor(notif.Kind)
}

// handleSecondAddressedReception runs when a frame addressed to this node
// arrives while another addressed frame is already being decoded, mirroring
// node.h's STATE_RX_DATA/STATE_RX_ACK destination-is-me branch: both the
// ongoing and the new frame are re-evaluated for SINR against each other's
// interference. Neither survives -> a pure collision NACKs both senders;
// only the ongoing one survives -> the new frame is dropped as low-signal
// while already receiving; only the new one survives -> it captures the
// channel and the ongoing frame is NACKed as broken by capture (spec 4.2.4).
func (n *Node) handleSecondAddressedReception(notif bus.Notification, rxDBm float64) {
	cur := n.rx.notif
	curSINR := n.sinrDB(cur, simclock.DBmToPW(n.receivedPowerDBm(cur)))
	newSINR := n.sinrDB(notif, simclock.DBmToPW(rxDBm))

	threshold := n.Cfg.CaptureEffectThresholdDB
	switch {
	case curSINR < threshold && newSINR < threshold:
		n.emitNACK(cur, bus.LossPureCollision)
		n.emitNACK(notif, bus.LossPureCollision)
		n.rx = pendingRX{}
		n.state = Sensing
	case curSINR >= threshold:
		n.emitNACK(notif, bus.LossLowSignalAndRX)
	default:
		n.emitNACK(cur, bus.LossCaptureEffect)
		n.rx = pendingRX{notif: notif, valid: true}
		n.state = rxStateFor(notif.Kind)
	}
}

func rxStateFor(kind bus.PacketKind) State {
	switch kind {
	case bus.PacketRTS:
		return RXRts
	case bus.PacketCTS:
		return RXCts
	case bus.PacketData:
		return RXData
	case bus.PacketACK:
		return RXAck
	default:
		return RXData
	}
}

func (n *Node) receivedPowerDBm(notif bus.Notification) float64 {
	d := n.topo.Distance3D(notif.Source, n.Cfg.ID)
	txDBm := simclock.PWToDBm(notif.TXPower)
	pl := n.Cfg.PathLoss
	if pl == nil {
		pl = channel.FreeSpace{}
	}
	return pl.ReceivedPowerDBm(txDBm, d, n.Cfg.FreqHz, n.Cfg.AntennaGainTXDBi, n.Cfg.AntennaGainRXDBi)
}

// pdOrOBSSPD returns the threshold to apply against an incoming frame,
// substituting the OBSS-PD threshold when spatial reuse is enabled and the
// frame originates from a different BSS color/SRG (spec 4.2.5).
func (n *Node) pdOrOBSSPD(notif bus.Notification) (simclock.Power, bool) {
	if !n.Cfg.SpatialReuse {
		return n.Cfg.PDDefault, false
	}
	if notif.BSSColor == n.Cfg.BSSColor {
		return n.Cfg.PDDefault, false
	}
	sameSRG := notif.SRG == n.Cfg.SRG
	obsspd := n.Cfg.NonSRGOBSSPD
	if sameSRG {
		obsspd = n.Cfg.SRGOBSSPD
	}
	const obssMin, obssMax = -82.0, -62.0
	clamped := simclock.PWToDBm(obsspd)
	if clamped < obssMin {
		clamped = obssMin
	}
	if clamped > obssMax {
		clamped = obssMax
	}
	return simclock.DBmToPW(clamped), true
}

// sinrDB computes the instantaneous SINR, in dB, for a frame received at
// rxPW given the channel's currently sensed power at its lowest channel.
func (n *Node) sinrDB(notif bus.Notification, rxPW simclock.Power) float64 {
	noiseFloorPW := simclock.DBmToPW(-95)
	interferencePW := n.power.Sensed(notif.Left) - rxPW
	if interferencePW < 0 {
		interferencePW = 0
	}
	return simclock.LinearToDB(float64(rxPW) / float64(noiseFloorPW+interferencePW))
}

// admissionTest runs the ordered decode-admission chain from spec 4.2.4
// step 3, returning the first failing reason, or bus.LossNone on pass.
func (n *Node) admissionTest(notif bus.Notification, rxDBm float64, now simclock.Clock) (bus.LossReason, bool) {
	if n.state.IsTransmitting() {
		return bus.LossDestinationWasTX, false
	}

	pd, isOBSSPD := n.pdOrOBSSPD(notif)
	rxPW := simclock.DBmToPW(rxDBm)
	if rxPW < pd {
		if isOBSSPD {
			return bus.LossIgnoredSpatialReuse, false
		}
		return bus.LossLowSignal, false
	}

	if n.sinrDB(notif, rxPW) < n.Cfg.CaptureEffectThresholdDB {
		return bus.LossInterference, false
	}

	if notif.Right < n.Cfg.PrimaryChannel || notif.Left > n.Cfg.PrimaryChannel {
		return bus.LossOutsideChannelRange, false
	}

	if n.state.InNAV() {
		return bus.LossRXInNAV, false
	}

	if n.rng != nil && n.Cfg.ConstantPER > 0 && n.rng.Float64() < n.Cfg.ConstantPER {
		return bus.LossSINRProbability, false
	}
	return bus.LossNone, true
}

// recheckCapture re-evaluates SINR for the frame currently being decoded
// when a new, competing transmission starts; if capture is now broken, a
// capture-effect NACK is sent back to the original source and the node
// returns to SENSING (spec 4.2.4).
func (n *Node) recheckCapture(now simclock.Clock) {
	cur := n.rx.notif
	rxPW := simclock.DBmToPW(n.receivedPowerDBm(cur))
	if n.sinrDB(cur, rxPW) < n.Cfg.CaptureEffectThresholdDB {
		n.emitNACK(cur, bus.LossCaptureEffect)
		n.rx = pendingRX{}
		n.state = Sensing
	}
}

// maybeEnterNAV sets NAV for an overhearing node on RTS/CTS per spec
// 4.2.3: RTS -> 3*SIFS+D_RTS+D_CTS+D_DATA+D_ACK; CTS -> 2*SIFS+D_CTS+D_DATA+D_ACK.
func (n *Node) maybeEnterNAV(notif bus.Notification, now simclock.Clock) {
	if notif.Kind != bus.PacketRTS && notif.Kind != bus.PacketCTS {
		return
	}
	if notif.NAVDuration <= 0 {
		return
	}
	until := now + notif.NAVDuration
	if until <= n.navUntil {
		return
	}
	n.navUntil = until
	n.state = NAV
	if n.navEvent != nil {
		n.sched.Cancel(n.navEvent)
	}
	e, err := n.sched.Schedule(n.self, engine.KindDIFSElapsed, nil, notif.NAVDuration)
	if err == nil {
		n.navEvent = e
	}
}

// OnTXEnd implements bus.Receiver: a peer's transmission ended. Channel
// power contributions are subtracted; if this was the frame currently
// being decoded, the node completes reception and, for RTS, CTS and DATA,
// schedules its SIFS-delayed reply (CTS, DATA and ACK respectively).
func (n *Node) OnTXEnd(notif bus.Notification) {
	now := n.sched.Now()
	n.power.Subtract(channel.NewContribKey(notif.Source, notif.PacketID))
	for c := notif.Left; c <= notif.Right; c++ {
		n.power.MarkFreeIfBelow(c, now, n.Cfg.PDDefault)
	}
	n.tryResumeBackoff(now)

	if n.navEvent != nil && now >= n.navUntil {
		n.state = Sensing
		n.navEvent = nil
	}

	if !n.rx.valid || n.rx.notif.Source != notif.Source || n.rx.notif.PacketID != notif.PacketID {
		return
	}
	n.rx = pendingRX{}

	switch notif.Kind {
	case bus.PacketRTS:
		n.Perf.RTSSent++
		n.scheduleReply(func() { n.transmit(bus.PacketCTS, notif.Source, channel.Span{Left: notif.Left, Right: notif.Right}, TXCts) })
	case bus.PacketCTS:
		n.cancelResponseTimeout()
		span := channel.Span{Left: notif.Left, Right: notif.Right}
		n.scheduleReply(func() { n.transmit(bus.PacketData, notif.Source, span, TXData) })
	case bus.PacketData:
		n.Perf.DataSent++
		span := channel.Span{Left: notif.Left, Right: notif.Right}
		n.scheduleReply(func() { n.transmit(bus.PacketACK, notif.Source, span, TXAck) })
	case bus.PacketACK:
		n.onSuccessfulExchange()
	}
}

func (n *Node) scheduleReply(fn func()) {
	e, err := n.sched.Schedule(n.self, engine.KindSIFSTimeout, any(fn), SIFS)
	if err == nil {
		n.sifsEvent = e
	}
}

// emitNACK routes a logical NACK back to the original transmitter (spec
// 3.5), and performs the supplemental hidden-node accounting recovered
// from original_source's ProcessNack (SPEC_FULL.md supplemental features
// 1-2).
func (n *Node) emitNACK(notif bus.Notification, reason bus.LossReason) {
	nack := bus.NACK{Source: n.Cfg.ID, PacketID: notif.PacketID, Reason: reason}
	n.recordHiddenNode(notif, reason, &nack)
	n.bus.NACK(notif.Source, nack)
}

func (n *Node) recordHiddenNode(notif bus.Notification, reason bus.LossReason, nack *bus.NACK) {
	switch reason {
	case bus.LossDestinationWasTX, bus.LossPureCollision, bus.LossLowSignalAndRX:
		n.HiddenNodes[notif.Source]++
		nack.Implicated[0] = notif.Source
	case bus.LossInterference:
		n.PotentialHiddenNodes++
	}
}

// OnNACK implements bus.Receiver: this node's own transmission was not
// decoded by its destination. The sender updates retry state and CW (spec
// 7), unless a later, successful ACK already arrived first.
func (n *Node) OnNACK(nack bus.NACK) {
	if !n.state.IsTransmitting() && n.state != WaitCts && n.state != WaitAck {
		return
	}
	n.cancelResponseTimeout()
	switch nack.Reason {
	case bus.LossPureCollision, bus.LossBOCollision:
		n.Perf.DataLost++
	case bus.LossDestinationWasTX, bus.LossLowSignal, bus.LossOutsideChannelRange, bus.LossRXInNAV:
		n.Perf.RTSLost++
	}
	n.onTransmissionFailed()
}
