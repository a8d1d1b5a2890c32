package node_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wnsim/dcfsim/internal/channel"
	"github.com/wnsim/dcfsim/internal/node"
	"github.com/wnsim/dcfsim/internal/simclock"
)

func TestTopologyDistance3D(t *testing.T) {
	topo := node.NewTopology()
	topo.Set(1, 0, 0, 0)
	topo.Set(2, 3, 4, 0)

	assert.InDelta(t, 5.0, topo.Distance3D(1, 2), 1e-9)
}

func TestTopologyPositionRoundTrip(t *testing.T) {
	topo := node.NewTopology()
	topo.Set(1, 1.5, 2.5, 3.5)

	x, y, z := topo.Position(1)
	assert.Equal(t, 1.5, x)
	assert.Equal(t, 2.5, y)
	assert.Equal(t, 3.5, z)
}

func TestTopologyEstimateRSSIDecreasesWithDistance(t *testing.T) {
	topo := node.NewTopology()
	topo.Set(1, 0, 0, 0)
	topo.Set(2, 10, 0, 0)
	topo.Set(3, 50, 0, 0)
	topo.SetRadio(1, simclock.DBmToPW(20), 0, 0, 5.18e9, channel.FreeSpace{})

	near := topo.EstimateRSSI(1, 2)
	far := topo.EstimateRSSI(1, 3)
	assert.Greater(t, near, far)
}

func TestTopologyEstimateRSSIUnknownSourceFallsBack(t *testing.T) {
	topo := node.NewTopology()
	assert.Equal(t, -100.0, topo.EstimateRSSI(99, 1))
}
