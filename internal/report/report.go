// SPDX-License-Identifier: GPL-3.0

// Package report defines the Configuration and Performance value types
// exchanged between a node's AP, its per-BSS agent, and the optional
// central controller (spec 3.7).
package report

import (
	"github.com/wnsim/dcfsim/internal/ids"
	"github.com/wnsim/dcfsim/internal/simclock"
)

// Configuration is the set of knobs an agent can rewrite on an AP.
type Configuration struct {
	PrimaryChannel    int
	PD                simclock.Power
	TXPower           simclock.Power
	MaxBandwidth      int // width in basic channels: 1, 2, 4 or 8
	SpatialReuse      bool
	BSSColor          int
	SRG               int
	NonSRGOBSSPD      simclock.Power
	SRGOBSSPD         simclock.Power
	CapabilitySnap    uint64
	Timestamp         simclock.Clock
}

// Performance is the statistics report an AP hands back to its agent, and
// an agent hands up to a central controller.
type Performance struct {
	WLAN ids.WLANID

	Throughput       simclock.Bitrate
	ThroughputLoss   simclock.Bitrate
	MaxBoundThroughput simclock.Bitrate

	DataSent    uint64
	DataAcked   uint64
	DataLost    uint64
	RTSSent     uint64
	RTSLost     uint64
	Generated   uint64
	Dropped     uint64

	TxTimeOkByChannelWidth   map[int]simclock.Clock
	TxTimeLostByChannelWidth map[int]simclock.Clock

	PerSTA map[ids.NodeID]Performance

	DelaySum   simclock.Clock
	DelayMin   simclock.Clock
	DelayMax   simclock.Clock
	DelayCount uint64

	RSSIToBSS map[ids.WLANID]float64 // dBm, mutual RSSI against peer BSSs

	ChannelOccupancy float64 // fraction of time sensed busy

	HiddenNodes          map[ids.NodeID]int
	PotentialHiddenNodes uint64
}

// AverageDelay returns DelaySum/DelayCount, or zero if no samples exist.
func (p *Performance) AverageDelay() simclock.Clock {
	if p.DelayCount == 0 {
		return 0
	}
	return simclock.Clock(int64(p.DelaySum) / int64(p.DelayCount))
}

// Merge folds another Performance's counters into p, used to roll per-STA
// reports up into a BSS-wide summary.
func (p *Performance) Merge(o Performance) {
	p.DataSent += o.DataSent
	p.DataAcked += o.DataAcked
	p.DataLost += o.DataLost
	p.RTSSent += o.RTSSent
	p.RTSLost += o.RTSLost
	p.Generated += o.Generated
	p.Dropped += o.Dropped
	p.DelaySum += o.DelaySum
	p.DelayCount += o.DelayCount
	if o.DelayMax > p.DelayMax {
		p.DelayMax = o.DelayMax
	}
	if p.DelayMin == 0 || (o.DelayMin > 0 && o.DelayMin < p.DelayMin) {
		p.DelayMin = o.DelayMin
	}
	p.PotentialHiddenNodes += o.PotentialHiddenNodes
	if p.HiddenNodes == nil {
		p.HiddenNodes = map[ids.NodeID]int{}
	}
	for id, n := range o.HiddenNodes {
		p.HiddenNodes[id] += n
	}
}
