// SPDX-License-Identifier: GPL-3.0

package node

import (
	"github.com/wnsim/dcfsim/internal/channel"
	"github.com/wnsim/dcfsim/internal/ids"
	"github.com/wnsim/dcfsim/internal/simclock"
)

// Type distinguishes the two node roles (spec 3.2).
type Type int

const (
	AP Type = iota
	STA
)

// Config is a node's essential, immutable-for-the-run attributes (spec
// 3.2).
type Config struct {
	ID   ids.NodeID
	Type Type
	WLAN ids.WLANID

	X, Y, Z float64

	PrimaryChannel int
	MinCh, MaxCh   int
	FreqHz         float64

	TXPowerMin, TXPowerDefault, TXPowerMax simclock.Power
	PDMin, PDDefault, PDMax                simclock.Power
	AntennaGainTXDBi, AntennaGainRXDBi      float64

	Bonding      channel.BondingPolicy
	MaxBandwidth int // agent-imposed width cap in basic channels (0 = uncapped)

	PacketLengthBits uint64
	MaxAMPDU         int

	CaptureEffectThresholdDB float64
	ConstantPER              float64

	BSSColor     int
	SRG          int
	NonSRGOBSSPD simclock.Power
	SRGOBSSPD    simclock.Power
	SpatialReuse bool

	UseRTSCTS  bool
	CWMin      int
	StageMax   int
	Slotted    bool
	CWAdapt    bool
	MaxRetries int

	PathLoss channel.PathLossModel
}
