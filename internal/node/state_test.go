package node_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wnsim/dcfsim/internal/node"
)

func TestStateStringKnownValues(t *testing.T) {
	assert.Equal(t, "SENSING", node.Sensing.String())
	assert.Equal(t, "TX_RTS", node.TXRts.String())
	assert.Equal(t, "WAIT_ACK", node.WaitAck.String())
	assert.Equal(t, "NAV", node.NAV.String())
	assert.Equal(t, "UNKNOWN", node.State(999).String())
}

func TestStateInNAV(t *testing.T) {
	assert.True(t, node.NAV.InNAV())
	assert.False(t, node.Sensing.InNAV())
}

func TestStateIsTransmitting(t *testing.T) {
	for _, s := range []node.State{node.TXRts, node.TXCts, node.TXData, node.TXAck} {
		assert.True(t, s.IsTransmitting(), "%v should be transmitting", s)
	}
	for _, s := range []node.State{node.Sensing, node.RXData, node.NAV, node.Sleep} {
		assert.False(t, s.IsTransmitting(), "%v should not be transmitting", s)
	}
}

func TestStateIsReceiving(t *testing.T) {
	for _, s := range []node.State{node.RXRts, node.RXCts, node.RXData, node.RXAck} {
		assert.True(t, s.IsReceiving(), "%v should be receiving", s)
	}
	for _, s := range []node.State{node.Sensing, node.TXData, node.NAV} {
		assert.False(t, s.IsReceiving(), "%v should not be receiving", s)
	}
}
