// SPDX-License-Identifier: GPL-3.0

package simclock

import "time"

// Bitrate is a bitrate in bits per second.
type Bitrate float64

// Rate-scale constants.
const (
	Bps  Bitrate = 1
	Kbps         = 1000 * Bps
	Mbps         = 1000 * Kbps
	Gbps         = 1000 * Mbps
)

// CalcBitrate computes the bitrate implied by transferring the given number
// of bytes over the given wall-clock duration.
func CalcBitrate(bytes Bytes, dur time.Duration) Bitrate {
	return Bitrate(8 * float64(bytes) / dur.Seconds())
}

// TransferTime returns the time needed to transfer the given number of bytes
// at the given bitrate.
func TransferTime(rate Bitrate, bytes Bytes) time.Duration {
	return time.Duration(8e9 * float64(bytes) / float64(rate))
}

// Bps returns the value in bits per second.
func (b Bitrate) Bps() float64 { return float64(b) }

// Mbps returns the value in megabits per second.
func (b Bitrate) Mbps() float64 { return float64(b) / float64(Mbps) }
