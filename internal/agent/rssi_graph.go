// SPDX-License-Identifier: GPL-3.0

package agent

import (
	"sort"

	"github.com/wnsim/dcfsim/internal/ids"
)

// RSSIGraph is the mutual-RSSI interference graph a central controller
// builds across BSSs (spec 4.5), grounded on
// original_source/.../main/central_controller.h's per-agent RSSI table and
// consumed by a graph-coloring channel assignment.
type RSSIGraph struct {
	edges map[ids.WLANID]map[ids.WLANID]float64
}

// NewRSSIGraph constructs an empty graph.
func NewRSSIGraph() *RSSIGraph {
	return &RSSIGraph{edges: make(map[ids.WLANID]map[ids.WLANID]float64)}
}

// SetRSSI records the RSSI (dBm) BSS "from" observes from BSS "to".
func (g *RSSIGraph) SetRSSI(from, to ids.WLANID, dBm float64) {
	if _, ok := g.edges[from]; !ok {
		g.edges[from] = make(map[ids.WLANID]float64)
	}
	g.edges[from][to] = dBm
}

// Neighbors returns the BSSs whose mutual RSSI with wlan exceeds thresholdDBm
// in either direction, sorted for determinism.
func (g *RSSIGraph) Neighbors(wlan ids.WLANID, thresholdDBm float64) []ids.WLANID {
	seen := make(map[ids.WLANID]bool)
	if row, ok := g.edges[wlan]; ok {
		for peer, rssi := range row {
			if rssi >= thresholdDBm {
				seen[peer] = true
			}
		}
	}
	for peer, row := range g.edges {
		if rssi, ok := row[wlan]; ok && rssi >= thresholdDBm {
			seen[peer] = true
		}
	}
	delete(seen, wlan)
	out := make([]ids.WLANID, 0, len(seen))
	for w := range seen {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ColorChannels assigns one of numChannels colors to each BSS in wlans such
// that no two BSSs whose mutual RSSI exceeds thresholdDBm share a channel,
// using greedy Welsh-Powell-style coloring (largest-degree-first). Falls
// back to the original's round-robin assignment (new_primary = i %
// num_channels) when numChannels is insufficient to avoid every conflict.
func (g *RSSIGraph) ColorChannels(wlans []ids.WLANID, numChannels int, thresholdDBm float64) map[ids.WLANID]int {
	assignment := make(map[ids.WLANID]int, len(wlans))
	if numChannels <= 0 || len(wlans) == 0 {
		return assignment
	}

	order := make([]ids.WLANID, len(wlans))
	copy(order, wlans)
	degree := make(map[ids.WLANID]int, len(wlans))
	for _, w := range order {
		degree[w] = len(g.Neighbors(w, thresholdDBm))
	}
	sort.SliceStable(order, func(i, j int) bool { return degree[order[i]] > degree[order[j]] })

	for i, w := range order {
		used := make(map[int]bool)
		for _, peer := range g.Neighbors(w, thresholdDBm) {
			if c, ok := assignment[peer]; ok {
				used[c] = true
			}
		}
		chosen := -1
		for c := 0; c < numChannels; c++ {
			if !used[c] {
				chosen = c
				break
			}
		}
		if chosen < 0 {
			chosen = i % numChannels
		}
		assignment[w] = chosen
	}
	return assignment
}
