// SPDX-License-Identifier: GPL-3.0

package node

import (
	"github.com/wnsim/dcfsim/internal/ids"
	"github.com/wnsim/dcfsim/internal/report"
)

// CurrentConfiguration implements agent.AP, exposing this node's mutable
// attributes as a report.Configuration (spec 4.4's AP->agent Configuration
// report).
func (n *Node) CurrentConfiguration() report.Configuration {
	return report.Configuration{
		PrimaryChannel: n.Cfg.PrimaryChannel,
		PD:             n.Cfg.PDDefault,
		TXPower:        n.Cfg.TXPowerDefault,
		MaxBandwidth:   n.Cfg.MaxBandwidth,
		SpatialReuse:   n.Cfg.SpatialReuse,
		BSSColor:       n.Cfg.BSSColor,
		SRG:            n.Cfg.SRG,
		NonSRGOBSSPD:   n.Cfg.NonSRGOBSSPD,
		SRGOBSSPD:      n.Cfg.SRGOBSSPD,
	}
}

// CurrentPerformance implements agent.AP, handing back this node's
// accumulated Performance counters (spec 4.4's AP->agent Performance
// report) since the last ClearStats; handing them back does not reset them.
func (n *Node) CurrentPerformance() report.Performance {
	perf := n.Perf
	perf.HiddenNodes = n.HiddenNodes
	perf.PotentialHiddenNodes = n.PotentialHiddenNodes
	perf.ChannelOccupancy = n.power.OccupancyFraction(n.Cfg.PrimaryChannel, n.sched.Now())
	return perf
}

// ApplyConfiguration implements agent.AP: an agent or central controller's
// reconfiguration decision is written back onto the node's live attributes
// (spec 4.4's agent->AP reconfigure push).
func (n *Node) ApplyConfiguration(cfg report.Configuration) {
	n.Cfg.PrimaryChannel = cfg.PrimaryChannel
	n.Cfg.PDDefault = cfg.PD
	n.Cfg.TXPowerDefault = cfg.TXPower
	n.Cfg.SpatialReuse = cfg.SpatialReuse
	n.Cfg.BSSColor = cfg.BSSColor
	n.Cfg.SRG = cfg.SRG
	n.Cfg.NonSRGOBSSPD = cfg.NonSRGOBSSPD
	n.Cfg.SRGOBSSPD = cfg.SRGOBSSPD
	n.Cfg.MaxBandwidth = cfg.MaxBandwidth
	n.bus.ConfigChanged(n.Cfg.ID)
}

// OnConfigChanged implements bus.Receiver: another node's reconfiguration
// invalidates the MCS table this node cached for it as a destination, if
// any, forcing a fresh MCS-REQUEST before the next transmission to it.
func (n *Node) OnConfigChanged(source ids.NodeID) {
	if t, ok := n.mcs[source]; ok {
		t.Invalidate()
	}
}
