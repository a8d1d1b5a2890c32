// SPDX-License-Identifier: GPL-3.0

package agent

import (
	"github.com/wnsim/dcfsim/internal/report"
	"github.com/wnsim/dcfsim/internal/simclock"
)

// RewardType selects which Performance field a PreProcessor turns into a
// scalar reward (spec 4.4), grounded on pre_processor.h's GenerateReward
// switch over REWARD_TYPE_*.
type RewardType int

const (
	RewardPacketSuccessRatio RewardType = iota
	RewardNormalizedThroughput
	RewardMinRSSI
	RewardReciprocalMaxDelay
	RewardReciprocalAverageDelay
	RewardChannelOccupancy
)

// ActionSpace is the Cartesian product of modifiable parameters an agent
// may choose among (pre_processor.h's list_of_channels / list_of_pd_values /
// list_of_tx_power_values / list_of_max_bandwidth), flattened into a single
// arm index via index2values/values2index.
type ActionSpace struct {
	Channels     []int
	PD           []simclock.Power
	TXPower      []simclock.Power
	MaxBandwidth []int
}

// NumArms returns the size of the flattened joint action space.
func (a ActionSpace) NumArms() int {
	return len(a.Channels) * len(a.PD) * len(a.TXPower) * len(a.MaxBandwidth)
}

// indexToValues decomposes a flattened arm index into one sub-index per
// parameter, mirroring index2values.
func (a ActionSpace) indexToValues(arm int) (ch, pd, tx, bw int) {
	sizePD, sizeTX, sizeBW := len(a.PD), len(a.TXPower), len(a.MaxBandwidth)
	ch = arm / (sizePD * sizeTX * sizeBW)
	rem := arm - ch*(sizePD*sizeTX*sizeBW)
	pd = rem / (sizeTX * sizeBW)
	rem -= pd * (sizeTX * sizeBW)
	tx = rem / sizeBW
	bw = rem % sizeBW
	return
}

// valuesToIndex flattens per-parameter sub-indices into a single arm index,
// mirroring values2index.
func (a ActionSpace) valuesToIndex(ch, pd, tx, bw int) int {
	sizePD, sizeTX, sizeBW := len(a.PD), len(a.TXPower), len(a.MaxBandwidth)
	return ch*(sizePD*sizeTX*sizeBW) + pd*(sizeTX*sizeBW) + tx*sizeBW + bw
}

// Decode maps an arm index to a Configuration, carrying over fields the
// action space does not control (BSSColor, SRG, OBSS-PD thresholds) from
// the supplied base.
func (a ActionSpace) Decode(arm int, base report.Configuration) report.Configuration {
	ch, pd, tx, bw := a.indexToValues(arm)
	cfg := base
	cfg.PrimaryChannel = a.Channels[ch]
	cfg.PD = a.PD[pd]
	cfg.TXPower = a.TXPower[tx]
	cfg.MaxBandwidth = a.MaxBandwidth[bw]
	return cfg
}

// Encode maps a Configuration back to its nearest arm index, mirroring
// FindActionIndexFromConfigurationBandits. Unmatched values fall back to
// index 0 in that parameter's list.
func (a ActionSpace) Encode(cfg report.Configuration) int {
	chIdx := indexOfInt(a.Channels, cfg.PrimaryChannel)
	pdIdx := indexOfPower(a.PD, cfg.PD)
	txIdx := indexOfPower(a.TXPower, cfg.TXPower)
	bwIdx := indexOfInt(a.MaxBandwidth, cfg.MaxBandwidth)
	return a.valuesToIndex(chIdx, pdIdx, txIdx, bwIdx)
}

func indexOfInt(list []int, v int) int {
	for i, x := range list {
		if x == v {
			return i
		}
	}
	return 0
}

func indexOfPower(list []simclock.Power, v simclock.Power) int {
	for i, x := range list {
		if x == v {
			return i
		}
	}
	return 0
}

// PreProcessor bridges the bandit-level action space and per-BSS
// Performance reports to and from a Learner (spec 4.4), grounded on
// original_source/.../learning_modules/pre_processor.h.
type PreProcessor struct {
	Actions ActionSpace
	Reward  RewardType
}

// NewPreProcessor constructs a PreProcessor over the given action space and
// reward type.
func NewPreProcessor(actions ActionSpace, reward RewardType) *PreProcessor {
	return &PreProcessor{Actions: actions, Reward: reward}
}

// GenerateReward turns a Performance report into a normalized scalar
// reward, mirroring pre_processor.h's GenerateReward.
func (p *PreProcessor) GenerateReward(perf report.Performance) float64 {
	switch p.Reward {
	case RewardPacketSuccessRatio:
		if perf.DataSent == 0 {
			return 0
		}
		return float64(perf.DataSent-perf.DataLost) / float64(perf.DataSent)
	case RewardNormalizedThroughput:
		if perf.MaxBoundThroughput == 0 {
			return 0
		}
		return float64(perf.Throughput) / float64(perf.MaxBoundThroughput)
	case RewardMinRSSI:
		min := 0.0
		first := true
		for _, rssi := range perf.RSSIToBSS {
			if first || rssi < min {
				min, first = rssi, false
			}
		}
		return min
	case RewardReciprocalMaxDelay:
		if perf.DelayMax == 0 {
			return 0
		}
		return 1 / float64(perf.DelayMax)
	case RewardReciprocalAverageDelay:
		avg := perf.AverageDelay()
		if avg == 0 {
			return 0
		}
		return 1 / float64(avg)
	case RewardChannelOccupancy:
		return perf.ChannelOccupancy
	default:
		return 0
	}
}
