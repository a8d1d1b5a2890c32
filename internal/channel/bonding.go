// SPDX-License-Identifier: GPL-3.0

package channel

import "math/rand"

// BondingPolicy selects which contiguous subset of free channels a node
// transmits on (spec 4.2.2).
type BondingPolicy int

const (
	SinglePrimary BondingPolicy = iota
	SCB
	Log2SCB
	AlwaysMaxDCB
	Log2DCB
	Log2DCBMCSOpt
	UniformLog2DCB
)

// permittedWidths are the only transmission widths spec 4.2.2 allows.
var permittedWidths = [...]int{1, 2, 4, 8}

// Span is a contiguous, inclusive channel range.
type Span struct {
	Left, Right int
}

func (s Span) Width() int { return s.Right - s.Left + 1 }

// candidateSpans enumerates every contiguous span of the given width that
// contains the primary channel and fits within [minCh, maxCh], honoring the
// log2-restricted policies' "left boundary is a multiple of width" rule
// when restricted is true.
func candidateSpans(primary, minCh, maxCh, width int, restricted bool) []Span {
	var out []Span
	for l := primary - width + 1; l <= primary; l++ {
		r := l + width - 1
		if l < minCh || r > maxCh {
			continue
		}
		if r < primary || l > primary {
			continue
		}
		if restricted && l%width != 0 {
			continue
		}
		out = append(out, Span{Left: l, Right: r})
	}
	return out
}

// SelectTransmission implements spec 4.2.2 steps 1-3: given which channels
// are currently admissible (isFree reports, for a channel index, whether it
// is both below PD and idle for DIFS), pick a contiguous transmission
// subset per policy. ok is false if no subset is admissible.
func SelectTransmission(policy BondingPolicy, primary, minCh, maxCh int, isFree func(ch int) bool, rng *rand.Rand) (Span, bool) {
	restricted := policy == Log2SCB || policy == Log2DCB || policy == Log2DCBMCSOpt || policy == UniformLog2DCB

	allAdmissible := func(s Span) bool {
		for ch := s.Left; ch <= s.Right; ch++ {
			if !isFree(ch) {
				return false
			}
		}
		return true
	}

	switch policy {
	case SinglePrimary:
		s := Span{Left: primary, Right: primary}
		if allAdmissible(s) {
			return s, true
		}
		return Span{}, false

	case SCB, Log2SCB:
		// All-or-nothing against the node's configured bonding width
		// (list_of_macros.h: "if all channels [accepted] are FREE,
		// transmit. If not, generate a new backoff"): unlike the DCB
		// policies, a blocked span never narrows to a smaller one.
		width := configuredWidth(primary, minCh, maxCh, restricted)
		for _, s := range candidateSpans(primary, minCh, maxCh, width, restricted) {
			if allAdmissible(s) {
				return s, true
			}
		}
		return Span{}, false

	case UniformLog2DCB:
		var candidates []Span
		for _, w := range permittedWidths {
			for _, s := range candidateSpans(primary, minCh, maxCh, w, restricted) {
				if allAdmissible(s) {
					candidates = append(candidates, s)
				}
			}
		}
		if len(candidates) == 0 {
			return Span{}, false
		}
		if rng == nil {
			return candidates[0], true
		}
		return candidates[rng.Intn(len(candidates))], true

	default: // AlwaysMaxDCB, Log2DCB, Log2DCBMCSOpt: opportunistically narrow.
		for _, w := range []int{8, 4, 2, 1} {
			for _, s := range candidateSpans(primary, minCh, maxCh, w, restricted) {
				if allAdmissible(s) {
					return s, true
				}
			}
		}
		return Span{}, false
	}
}

// configuredWidth returns the widest transmission width whose span fits
// within the node's configured channel range [minCh, maxCh] around primary
// — the single fixed target SCB/Log2SCB commit to, with no narrower
// fallback once chosen.
func configuredWidth(primary, minCh, maxCh int, restricted bool) int {
	for _, w := range []int{8, 4, 2, 1} {
		if len(candidateSpans(primary, minCh, maxCh, w, restricted)) > 0 {
			return w
		}
	}
	return 1
}

// WidthIndex maps a transmission width to its MCS-table slot (0:1,1:2,2:4,3:8).
func WidthIndex(width int) int {
	switch width {
	case 1:
		return 0
	case 2:
		return 1
	case 4:
		return 2
	case 8:
		return 3
	default:
		return 0
	}
}
