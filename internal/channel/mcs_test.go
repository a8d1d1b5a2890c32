package channel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wnsim/dcfsim/internal/channel"
)

func TestSelectMCSBelowLowestBreakpointIsForbidden(t *testing.T) {
	mcs := channel.SelectMCS(-90, 1)
	assert.True(t, mcs.Forbidden)
}

func TestSelectMCSPicksHighestClearedBreakpoint(t *testing.T) {
	mcs := channel.SelectMCS(-61, 1)
	assert.False(t, mcs.Forbidden)
	assert.Equal(t, 7, mcs.Index)
}

func TestSelectMCSScalesRateByWidth(t *testing.T) {
	w1 := channel.SelectMCS(-49, 1)
	w8 := channel.SelectMCS(-49, 8)
	assert.Equal(t, w1.DataRate*8, w8.DataRate)
}

func TestMCSTableStartsDirty(t *testing.T) {
	tbl := channel.NewMCSTable()
	assert.True(t, tbl.Dirty())
}

func TestMCSTablePopulateClearsDirtyAndFillsAllWidths(t *testing.T) {
	tbl := channel.NewMCSTable()
	tbl.Populate(-61)
	assert.False(t, tbl.Dirty())

	w1 := tbl.Get(1)
	w8 := tbl.Get(8)
	assert.False(t, w1.Forbidden)
	assert.Equal(t, w1.DataRate*8, w8.DataRate)
}

func TestMCSTableInvalidateSetsDirty(t *testing.T) {
	tbl := channel.NewMCSTable()
	tbl.Populate(-61)
	tbl.Invalidate()
	assert.True(t, tbl.Dirty())
}
