// SPDX-License-Identifier: GPL-3.0

package stats

import (
	"github.com/wnsim/dcfsim/internal/engine"
	"github.com/wnsim/dcfsim/internal/ids"
	"github.com/wnsim/dcfsim/internal/report"
	"github.com/wnsim/dcfsim/internal/simclock"
)

// Source is anything the Aggregator can pull a Performance snapshot from;
// satisfied by node.Node via CurrentPerformance.
type Source interface {
	ID() ids.NodeID
	CurrentPerformance() report.Performance
}

// Aggregator periodically snapshots every registered Source into a
// Collector and into a rolled-up system-wide report.Performance, wired into
// the scheduler as an engine.Activator on its own KindProgressMarker timer
// so exports happen on simulation time rather than wall-clock time (spec
// 4.1's clear_stats hook keeps per-run and per-interval statistics
// separate).
type Aggregator struct {
	sched  *engine.Scheduler
	self   engine.ComponentID
	coll   *Collector
	wlanOf map[ids.NodeID]ids.WLANID
	srcs   []Source
	period simclock.Clock

	System report.Performance
}

// NewAggregator constructs an Aggregator exporting on the given period.
func NewAggregator(sched *engine.Scheduler, coll *Collector, period simclock.Clock) *Aggregator {
	a := &Aggregator{
		sched:  sched,
		coll:   coll,
		wlanOf: make(map[ids.NodeID]ids.WLANID),
		period: period,
	}
	a.self = sched.Register(a)
	return a
}

// Register adds src, reporting under the given WLAN, to the aggregator's
// periodic sweep.
func (a *Aggregator) Register(wlan ids.WLANID, src Source) {
	a.srcs = append(a.srcs, src)
	a.wlanOf[src.ID()] = wlan
}

// Start books the first export tick.
func (a *Aggregator) Start() {
	a.scheduleNext()
}

func (a *Aggregator) scheduleNext() {
	if a.period <= 0 {
		return
	}
	a.sched.Schedule(a.self, engine.KindProgressMarker, nil, a.period)
}

// Activate implements engine.Activator.
func (a *Aggregator) Activate(ev *engine.Event) error {
	if ev.Kind != engine.KindProgressMarker {
		return nil
	}
	a.Sweep()
	a.scheduleNext()
	return nil
}

// Sweep pulls a fresh Performance snapshot from every registered Source,
// exports it to the Prometheus Collector, and folds it into the
// system-wide rollup.
func (a *Aggregator) Sweep() {
	a.System = report.Performance{}
	for _, src := range a.srcs {
		perf := src.CurrentPerformance()
		wlan := a.wlanOf[src.ID()]
		if a.coll != nil {
			a.coll.Observe(wlan, src.ID(), perf)
		}
		a.System.Merge(perf)
	}
}

// ClearStats implements engine.ClearStatter: an aggregator-level sweep at
// the run's clear_stats boundary discards any warm-up-period rollup.
func (a *Aggregator) ClearStats(now simclock.Clock) {
	a.System = report.Performance{}
}
