// SPDX-License-Identifier: GPL-3.0

// Package bus implements the cross-node notification fanout (spec 3.4,
// 3.5, 5): TX-start/TX-end broadcasts and logical NACKs routed between
// nodes with no shared mutable state, grounded on the teacher's
// channel-based Sim.input/output dispatch in heistp-scim/sim.go,
// generalized from a goroutine-per-node model to direct, same-goroutine
// fanout calls a single-threaded Scheduler can drive.
package bus

import (
	"github.com/wnsim/dcfsim/internal/ids"
	"github.com/wnsim/dcfsim/internal/simclock"
)

// PacketKind distinguishes the frame types a Notification can carry.
type PacketKind int

const (
	PacketData PacketKind = iota
	PacketACK
	PacketRTS
	PacketCTS
	PacketMCSRequest
	PacketMCSResponse
)

func (k PacketKind) String() string {
	switch k {
	case PacketData:
		return "DATA"
	case PacketACK:
		return "ACK"
	case PacketRTS:
		return "RTS"
	case PacketCTS:
		return "CTS"
	case PacketMCSRequest:
		return "MCS-REQUEST"
	case PacketMCSResponse:
		return "MCS-RESPONSE"
	default:
		return "UNKNOWN"
	}
}

// Notification is carried between nodes on TX-start and TX-end (spec 3.4).
// For a paired (start, end), Source, PacketID and the channel range are
// identical.
type Notification struct {
	Source      ids.NodeID
	Destination ids.NodeID // ids.NoNode for broadcast-style frames (RTS/DATA to BSS)
	Kind        PacketKind

	Left, Right int // inclusive basic-channel boundaries of the transmission

	LengthBits uint64
	Duration   simclock.Clock
	TXPower    simclock.Power // linear pW, constant-PSD-adjusted per width

	X, Y, Z float64

	PacketID ids.PacketID
	DataRate simclock.Bitrate

	// BSSColor and SRG identify the originating BSS for OBSS-PD spatial
	// reuse decisions (spec 4.2.5).
	BSSColor int
	SRG      int

	// MCSTable holds, per width index (0:w1,1:w2,2:w4,3:w8), the
	// negotiated MCS index, populated only on an MCS-RESPONSE.
	MCSTable [4]int

	NAVDuration simclock.Clock
}

// Width returns the number of basic channels the transmission spans.
func (n Notification) Width() int { return n.Right - n.Left + 1 }

// LossReason enumerates why a would-be receiver could not decode a frame
// (spec 3.5), matching Komondor's PACKET_LOST_* taxonomy
// (original_source/Code/list_of_macros.h).
type LossReason int

const (
	LossNone LossReason = iota
	LossDestinationWasTX
	LossLowSignal
	LossInterference
	LossPureCollision
	LossLowSignalAndRX
	LossSINRProbability
	LossACKLost
	LossRXInNAV
	LossBOCollision
	LossOutsideChannelRange
	LossCaptureEffect
	LossIgnoredSpatialReuse
)

func (r LossReason) String() string {
	switch r {
	case LossNone:
		return "none"
	case LossDestinationWasTX:
		return "destination-was-TX"
	case LossLowSignal:
		return "low-signal"
	case LossInterference:
		return "interference"
	case LossPureCollision:
		return "pure-collision"
	case LossLowSignalAndRX:
		return "low-signal-while-RX"
	case LossSINRProbability:
		return "SINR-probability"
	case LossACKLost:
		return "ack-lost"
	case LossRXInNAV:
		return "lost-in-NAV"
	case LossBOCollision:
		return "slotted-BO-collision"
	case LossOutsideChannelRange:
		return "outside-channel-range"
	case LossCaptureEffect:
		return "capture-effect-broken"
	case LossIgnoredSpatialReuse:
		return "ignored-by-spatial-reuse"
	default:
		return "unknown"
	}
}

// NACK is a non-physical signal from a would-be receiver informing the
// sender why its frame could not be decoded (spec 3.5). Implicated holds
// up to two additional node ids used for hidden-node accounting.
type NACK struct {
	Source     ids.NodeID // the node emitting the NACK
	PacketID   ids.PacketID
	Reason     LossReason
	Implicated [2]ids.NodeID
}
