// SPDX-License-Identifier: GPL-3.0

package node

import (
	"math"

	"github.com/wnsim/dcfsim/internal/channel"
	"github.com/wnsim/dcfsim/internal/ids"
	"github.com/wnsim/dcfsim/internal/simclock"
)

// radio is the subset of a peer's configuration another node needs in
// order to ask "what would I receive from you" without holding a full
// Config (used for MCS negotiation RSSI estimation).
type radio struct {
	txPowerDefault simclock.Power
	gainTXDBi      float64
	gainRXDBi      float64
	freqHz         float64
	pathLoss       channel.PathLossModel
}

// Topology is the shared, read-only lookup of node positions and radio
// parameters every node needs to compute path loss to a transmitting
// peer. It is populated once at scenario load and never mutated
// afterwards (spec 3.2: nodes are never relocated).
type Topology struct {
	positions map[ids.NodeID][3]float64
	radios    map[ids.NodeID]radio
}

// NewTopology creates an empty Topology.
func NewTopology() *Topology {
	return &Topology{
		positions: make(map[ids.NodeID][3]float64),
		radios:    make(map[ids.NodeID]radio),
	}
}

// SetRadio records a node's radio parameters for peers' MCS/RSSI queries.
func (t *Topology) SetRadio(id ids.NodeID, txPowerDefault simclock.Power, gainTXDBi, gainRXDBi, freqHz float64, pl channel.PathLossModel) {
	t.radios[id] = radio{txPowerDefault: txPowerDefault, gainTXDBi: gainTXDBi, gainRXDBi: gainRXDBi, freqHz: freqHz, pathLoss: pl}
}

// EstimateRSSI estimates the RSSI (dBm) that listener would receive from
// source transmitting at its default power, using source's registered
// radio parameters and path-loss model.
func (t *Topology) EstimateRSSI(source, listener ids.NodeID) float64 {
	r, ok := t.radios[source]
	if !ok || r.pathLoss == nil {
		return -100
	}
	d := t.Distance3D(source, listener)
	txDBm := simclock.PWToDBm(r.txPowerDefault)
	return r.pathLoss.ReceivedPowerDBm(txDBm, d, r.freqHz, r.gainTXDBi, r.gainRXDBi)
}

// Set records a node's fixed position.
func (t *Topology) Set(id ids.NodeID, x, y, z float64) {
	t.positions[id] = [3]float64{x, y, z}
}

// Distance3D returns the 3-D Euclidean distance between two registered
// nodes.
func (t *Topology) Distance3D(a, b ids.NodeID) float64 {
	pa, pb := t.positions[a], t.positions[b]
	dx, dy, dz := pa[0]-pb[0], pa[1]-pb[1], pa[2]-pb[2]
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Position returns the x, y, z coordinates of id.
func (t *Topology) Position(id ids.NodeID) (float64, float64, float64) {
	p := t.positions[id]
	return p[0], p[1], p[2]
}
