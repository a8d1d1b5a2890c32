// SPDX-License-Identifier: GPL-3.0

package node

import (
	"math"

	"github.com/wnsim/dcfsim/internal/simclock"
)

// Fixed per-frame service/tail overhead bits and A-MPDU framing overhead,
// matching the IEEE 802.11 symbol-accounting convention spec 4.2.3
// describes.
const (
	serviceBits    = 16
	tailBits       = 6
	mpduDelimiterBits = 32
	macHeaderBits  = 272
)

// FrameKind distinguishes which of the RTS/CTS/DATA/ACK frame-duration
// formulas to apply.
type FrameKind int

const (
	FrameRTS FrameKind = iota
	FrameCTS
	FrameData
	FrameACK
)

// AMPDUPayloadBits returns the A-MPDU payload size in bits for nMPDU
// aggregated frames of frameLengthBits each (spec 4.2.3: "A-MPDU payload =
// N_MPDU x (delimiter + MAC-header + frame_length)").
func AMPDUPayloadBits(nMPDU int, frameLengthBits uint64) uint64 {
	return uint64(nMPDU) * (mpduDelimiterBits + macHeaderBits + frameLengthBits)
}

// FrameDuration computes a frame's airtime: a legacy-PHY preamble, plus an
// HE preamble for DATA frames, plus ceil((service+tail+payload)/rate)
// OFDM symbols (spec 4.2.3).
func FrameDuration(kind FrameKind, payloadBits uint64, rate simclock.Bitrate) simclock.Clock {
	if rate <= 0 {
		rate = simclock.Bitrate(simclock.Mbps)
	}
	preamble := LegacyPreamble
	if kind == FrameData {
		preamble += HEPreamble
	}
	totalBits := float64(serviceBits + tailBits + payloadBits)
	// rate is in bits/sec and OFDMSymbolDuration is in ns, so
	// totalBits/rate (seconds) divided by the symbol duration (seconds)
	// gives the number of OFDM symbols needed, rounded up.
	symbolDurationSec := float64(OFDMSymbolDuration) / 1e9
	symbols := math.Ceil(totalBits / (float64(rate) * symbolDurationSec))
	return preamble + simclock.Clock(symbols)*OFDMSymbolDuration
}
