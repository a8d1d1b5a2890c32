// SPDX-License-Identifier: GPL-3.0

package channel

import "github.com/wnsim/dcfsim/internal/simclock"

// MCS identifies one modulation-and-coding scheme entry. Forbidden is true
// when the link's RSSI does not support any coding scheme.
type MCS struct {
	Forbidden bool
	Index     int     // 0..11, the 802.11ax MCS index (BPSK 1/2 .. 1024-QAM 5/6)
	DataRate  simclock.Bitrate
}

// mcsLadder is the RSSI-stepped MCS table (spec 4.2.2/4.2.5, supplemental
// feature 7): entries step every 3 dB from -82 dBm upward, BPSK 1/2 through
// 1024-QAM 5/6, grounded on original_source's node_mcs_manager RSSI
// breakpoints. Rates are the 20MHz, 1-spatial-stream 802.11ax values;
// SelectMCS scales them by the transmission width.
var mcsLadder = []struct {
	minRSSI  float64
	mcs      MCS
}{
	{-82, MCS{Index: 0, DataRate: 8.6 * simclock.Mbps}},   // BPSK 1/2
	{-79, MCS{Index: 1, DataRate: 17.2 * simclock.Mbps}},  // QPSK 1/2
	{-76, MCS{Index: 2, DataRate: 25.8 * simclock.Mbps}},  // QPSK 3/4
	{-73, MCS{Index: 3, DataRate: 34.4 * simclock.Mbps}},  // 16-QAM 1/2
	{-70, MCS{Index: 4, DataRate: 51.6 * simclock.Mbps}},  // 16-QAM 3/4
	{-67, MCS{Index: 5, DataRate: 68.8 * simclock.Mbps}},  // 64-QAM 2/3
	{-64, MCS{Index: 6, DataRate: 77.4 * simclock.Mbps}},  // 64-QAM 3/4
	{-61, MCS{Index: 7, DataRate: 86.0 * simclock.Mbps}},  // 64-QAM 5/6
	{-58, MCS{Index: 8, DataRate: 103.2 * simclock.Mbps}}, // 256-QAM 3/4
	{-55, MCS{Index: 9, DataRate: 114.7 * simclock.Mbps}}, // 256-QAM 5/6
	{-52, MCS{Index: 10, DataRate: 129.0 * simclock.Mbps}}, // 1024-QAM 3/4
	{-49, MCS{Index: 11, DataRate: 143.4 * simclock.Mbps}}, // 1024-QAM 5/6
}

// SelectMCS returns the highest MCS whose RSSI breakpoint the given RSSI
// (dBm) clears, scaled to the given transmission width (1, 2, 4 or 8 basic
// channels); if rssi is below the lowest breakpoint, Forbidden is true.
func SelectMCS(rssiDBm float64, width int) MCS {
	if rssiDBm < mcsLadder[0].minRSSI {
		return MCS{Forbidden: true}
	}
	best := mcsLadder[0].mcs
	for _, step := range mcsLadder {
		if rssiDBm >= step.minRSSI {
			best = step.mcs
		}
	}
	best.DataRate = simclock.Bitrate(float64(best.DataRate) * float64(width))
	return best
}

// MCSTable is the per-(destination, width) cache spec 4.2.2/design-notes
// describe: four slots, one per permitted width, with a dirty bit
// invalidated on the destination's configuration-change notification.
type MCSTable struct {
	entries [4]MCS
	dirty   bool
}

// NewMCSTable returns a table that starts dirty, forcing an initial
// MCS-REQUEST before first use.
func NewMCSTable() *MCSTable {
	return &MCSTable{dirty: true}
}

// Dirty reports whether the table needs refreshing via an MCS-REQUEST.
func (t *MCSTable) Dirty() bool { return t.dirty }

// Invalidate marks the table dirty, called when the destination's
// configuration changes.
func (t *MCSTable) Invalidate() { t.dirty = true }

// Populate fills all four width slots from a single RSSI sample (the
// MCS-RESPONSE payload), per spec 4.2.2 step 4, and clears the dirty bit.
func (t *MCSTable) Populate(rssiDBm float64) {
	for i, w := range permittedWidths {
		t.entries[i] = SelectMCS(rssiDBm, w)
	}
	t.dirty = false
}

// Get returns the cached MCS for the given width.
func (t *MCSTable) Get(width int) MCS {
	return t.entries[WidthIndex(width)]
}
