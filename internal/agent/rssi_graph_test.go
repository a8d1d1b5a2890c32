package agent_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wnsim/dcfsim/internal/agent"
	"github.com/wnsim/dcfsim/internal/ids"
)

func TestRSSIGraphNeighborsChecksBothDirections(t *testing.T) {
	g := agent.NewRSSIGraph()
	g.SetRSSI(1, 2, -60)
	g.SetRSSI(3, 1, -55)
	g.SetRSSI(1, 4, -90)

	neighbors := g.Neighbors(1, -65)
	assert.Equal(t, []ids.WLANID{2, 3}, neighbors)
}

func TestRSSIGraphNeighborsExcludesSelf(t *testing.T) {
	g := agent.NewRSSIGraph()
	g.SetRSSI(1, 1, 0)
	assert.Empty(t, g.Neighbors(1, -100))
}

func TestRSSIGraphColorChannelsAvoidsConflicts(t *testing.T) {
	g := agent.NewRSSIGraph()
	g.SetRSSI(1, 2, -50)
	g.SetRSSI(2, 1, -50)
	g.SetRSSI(2, 3, -50)
	g.SetRSSI(3, 2, -50)

	assignment := g.ColorChannels([]ids.WLANID{1, 2, 3}, 2, -60)
	assert.NotEqual(t, assignment[1], assignment[2])
	assert.NotEqual(t, assignment[2], assignment[3])
}

func TestRSSIGraphColorChannelsEmptyInputs(t *testing.T) {
	g := agent.NewRSSIGraph()
	assert.Empty(t, g.ColorChannels(nil, 4, -60))
	assert.Empty(t, g.ColorChannels([]ids.WLANID{1, 2}, 0, -60))
}

func TestRSSIGraphColorChannelsFallsBackWhenInsufficientChannels(t *testing.T) {
	g := agent.NewRSSIGraph()
	wlans := []ids.WLANID{1, 2, 3}
	for _, a := range wlans {
		for _, b := range wlans {
			if a != b {
				g.SetRSSI(a, b, -40)
			}
		}
	}
	assignment := g.ColorChannels(wlans, 1, -60)
	assert.Len(t, assignment, 3)
}
