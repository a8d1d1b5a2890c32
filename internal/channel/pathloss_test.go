package channel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wnsim/dcfsim/internal/channel"
)

const testFreqHz = 5.180e9 // 5 GHz band, channel 36

func TestPathLossModelsDecreaseWithDistance(t *testing.T) {
	models := map[string]channel.PathLossModel{
		"FreeSpace":       channel.FreeSpace{},
		"Indoor":          channel.Indoor{PathLossExponent: 3.0},
		"TGaxResidential": channel.TGaxResidential,
		"TGaxEnterprise":  channel.TGaxEnterprise,
		"TGaxIndoorBSS":   channel.TGaxIndoorBSS,
		"TGaxOutdoorBSS":  channel.TGaxOutdoorBSS,
	}
	for name, m := range models {
		t.Run(name, func(t *testing.T) {
			prev := m.ReceivedPowerDBm(20, 1, testFreqHz, 0, 0)
			for _, d := range []float64{5, 10, 20, 50, 100} {
				cur := m.ReceivedPowerDBm(20, d, testFreqHz, 0, 0)
				assert.Less(t, cur, prev, "received power should strictly decrease with distance")
				prev = cur
			}
		})
	}
}

func TestPathLossModelsRespectAntennaGains(t *testing.T) {
	m := channel.FreeSpace{}
	base := m.ReceivedPowerDBm(20, 10, testFreqHz, 0, 0)
	withGain := m.ReceivedPowerDBm(20, 10, testFreqHz, 3, 2)
	assert.InDelta(t, base+5, withGain, 1e-9)
}

func TestTGaxWallLossReducesReceivedPower(t *testing.T) {
	// TGaxResidential and TGaxEnterprise carry a wall-loss margin;
	// TGaxIndoorBSS/TGaxOutdoorBSS do not, at the same geometry.
	d, freq := 20.0, testFreqHz
	residential := channel.TGaxResidential.ReceivedPowerDBm(20, d, freq, 0, 0)
	indoorBSS := channel.TGaxIndoorBSS.ReceivedPowerDBm(20, d, freq, 0, 0)
	assert.Less(t, residential, indoorBSS)
}
