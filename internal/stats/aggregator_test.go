package stats_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wnsim/dcfsim/internal/engine"
	"github.com/wnsim/dcfsim/internal/ids"
	"github.com/wnsim/dcfsim/internal/report"
	"github.com/wnsim/dcfsim/internal/stats"
)

type fakeSource struct {
	id   ids.NodeID
	perf report.Performance
}

func (f *fakeSource) ID() ids.NodeID                         { return f.id }
func (f *fakeSource) CurrentPerformance() report.Performance { return f.perf }

func TestAggregatorSweepMergesRegisteredSources(t *testing.T) {
	sched := engine.New(engine.BackendCalendar, nil)
	agg := stats.NewAggregator(sched, nil, 0)

	agg.Register(1, &fakeSource{id: 1, perf: report.Performance{DataSent: 10, DataAcked: 8}})
	agg.Register(1, &fakeSource{id: 2, perf: report.Performance{DataSent: 5, DataAcked: 5}})

	agg.Sweep()

	assert.Equal(t, uint64(15), agg.System.DataSent)
	assert.Equal(t, uint64(13), agg.System.DataAcked)
}

func TestAggregatorClearStatsResetsSystem(t *testing.T) {
	sched := engine.New(engine.BackendCalendar, nil)
	agg := stats.NewAggregator(sched, nil, 0)
	agg.Register(1, &fakeSource{id: 1, perf: report.Performance{DataSent: 10}})
	agg.Sweep()
	require.NotZero(t, agg.System.DataSent)

	agg.ClearStats(0)
	assert.Zero(t, agg.System.DataSent)
}

func TestAggregatorPeriodicScheduleSweepsOnTick(t *testing.T) {
	sched := engine.New(engine.BackendCalendar, nil)
	agg := stats.NewAggregator(sched, nil, 50)
	agg.Register(1, &fakeSource{id: 1, perf: report.Performance{DataSent: 1}})
	agg.Start()

	_, err := sched.Run(120, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), agg.System.DataSent)
}

func TestAggregatorSweepObservesIntoCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	coll := stats.NewCollector(reg)
	sched := engine.New(engine.BackendCalendar, nil)
	agg := stats.NewAggregator(sched, coll, 0)
	agg.Register(7, &fakeSource{id: 3, perf: report.Performance{DataSent: 4}})

	assert.NotPanics(t, func() { agg.Sweep() })

	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, mfs)
}
