// SPDX-License-Identifier: GPL-3.0

// Package stats aggregates per-node report.Performance into per-WLAN and
// system-wide summaries (spec 3.7, 4.1's clear_stats hook) and exposes the
// same counters as Prometheus metrics for live observability.
package stats

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/wnsim/dcfsim/internal/ids"
	"github.com/wnsim/dcfsim/internal/report"
)

const (
	namespace = "dcfsim"
	subsystem = "mac"
)

const (
	labelWLAN = "wlan"
	labelNode = "node"
)

// Collector holds the simulation's Prometheus metrics, grounded on
// dantte-lp-gobfd/internal/metrics/collector.go's GaugeVec/CounterVec
// layout: one vector per counter, labeled by WLAN and node id.
type Collector struct {
	DataSent  *prometheus.CounterVec
	DataAcked *prometheus.CounterVec
	DataLost  *prometheus.CounterVec
	RTSSent   *prometheus.CounterVec
	RTSLost   *prometheus.CounterVec

	Throughput       *prometheus.GaugeVec
	ChannelOccupancy *prometheus.GaugeVec
	AverageDelay     *prometheus.GaugeVec

	HiddenNodes *prometheus.CounterVec
}

// NewCollector creates a Collector with every metric registered against
// reg. A nil reg registers against prometheus.DefaultRegisterer.
func NewCollector(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	c := newMetrics()
	reg.MustRegister(
		c.DataSent, c.DataAcked, c.DataLost, c.RTSSent, c.RTSLost,
		c.Throughput, c.ChannelOccupancy, c.AverageDelay, c.HiddenNodes,
	)
	return c
}

func newMetrics() *Collector {
	nodeLabels := []string{labelWLAN, labelNode}
	return &Collector{
		DataSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem, Name: "data_sent_total",
			Help: "Total DATA frames transmitted.",
		}, nodeLabels),
		DataAcked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem, Name: "data_acked_total",
			Help: "Total DATA frames successfully acknowledged.",
		}, nodeLabels),
		DataLost: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem, Name: "data_lost_total",
			Help: "Total DATA frames lost (NACK'd or timed out).",
		}, nodeLabels),
		RTSSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem, Name: "rts_sent_total",
			Help: "Total RTS frames transmitted.",
		}, nodeLabels),
		RTSLost: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem, Name: "rts_lost_total",
			Help: "Total RTS frames lost.",
		}, nodeLabels),
		Throughput: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: subsystem, Name: "throughput_bps",
			Help: "Most recently reported throughput, in bits/second.",
		}, nodeLabels),
		ChannelOccupancy: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: subsystem, Name: "channel_occupancy_ratio",
			Help: "Fraction of time the primary channel was sensed busy.",
		}, nodeLabels),
		AverageDelay: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: subsystem, Name: "average_delay_seconds",
			Help: "Average queueing+access delay, in seconds.",
		}, nodeLabels),
		HiddenNodes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem, Name: "hidden_node_events_total",
			Help: "Total losses attributed to a hidden-node collision.",
		}, nodeLabels),
	}
}

// Observe records a single node's Performance snapshot. Counters are
// recorded as the delta-free cumulative value exposed by Performance,
// matching Prometheus's counter-only-increases contract: callers should
// call Observe once per node per clear_stats interval, with fresh
// (zeroed-since-last-clear) Performance values.
func (c *Collector) Observe(wlan ids.WLANID, node ids.NodeID, perf report.Performance) {
	labels := prometheus.Labels{labelWLAN: wlanLabel(wlan), labelNode: nodeLabel(node)}

	c.DataSent.With(labels).Add(float64(perf.DataSent))
	c.DataAcked.With(labels).Add(float64(perf.DataAcked))
	c.DataLost.With(labels).Add(float64(perf.DataLost))
	c.RTSSent.With(labels).Add(float64(perf.RTSSent))
	c.RTSLost.With(labels).Add(float64(perf.RTSLost))

	c.Throughput.With(labels).Set(float64(perf.Throughput))
	c.ChannelOccupancy.With(labels).Set(perf.ChannelOccupancy)
	c.AverageDelay.With(labels).Set(perf.AverageDelay().Seconds())

	for _, n := range perf.HiddenNodes {
		c.HiddenNodes.With(labels).Add(float64(n))
	}
}

func wlanLabel(w ids.WLANID) string { return strconv.Itoa(int(w)) }
func nodeLabel(n ids.NodeID) string { return strconv.Itoa(int(n)) }
