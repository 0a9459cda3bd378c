// Copyright (C) 2026, luxfi/dds Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package ddsmetrics adapts the teacher's thin prometheus.Registerer
// wrapper (metrics/metrics.go) to the core's own observables: WHC
// depth and unacked bytes, match counts, sample-rejected counts, and
// listener-dispatch latency. Metrics are an ambient concern carried
// regardless of spec.md's Non-goals, which exclude only the transport
// and discovery layers metrics would otherwise observe.
package ddsmetrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the core's Prometheus collectors, registered against
// a caller-supplied Registerer (production code passes
// prometheus.DefaultRegisterer; tests pass a fresh prometheus.NewRegistry()).
type Metrics struct {
	Registry prometheus.Registerer

	WHCDepth          *prometheus.GaugeVec
	WHCUnackedBytes   *prometheus.GaugeVec
	MatchedCount      *prometheus.GaugeVec
	SamplesRejected   *prometheus.CounterVec
	SamplesLost       *prometheus.CounterVec
	ListenerLatency   prometheus.Histogram
}

// New creates and registers the core's metrics against reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Registry: reg,
		WHCDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "dds",
			Subsystem: "whc",
			Name:      "depth",
			Help:      "Number of samples currently held in a writer's history cache.",
		}, []string{"writer"}),
		WHCUnackedBytes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "dds",
			Subsystem: "whc",
			Name:      "unacked_bytes",
			Help:      "Bytes of unacknowledged payload held in a writer's history cache.",
		}, []string{"writer"}),
		MatchedCount: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "dds",
			Subsystem: "match",
			Name:      "current_count",
			Help:      "Current number of matched peers for an endpoint.",
		}, []string{"endpoint"}),
		SamplesRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dds",
			Subsystem: "reader",
			Name:      "samples_rejected_total",
			Help:      "Total samples rejected by a reader, by rejection reason.",
		}, []string{"reader", "reason"}),
		SamplesLost: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dds",
			Subsystem: "reader",
			Name:      "samples_lost_total",
			Help:      "Total samples a reader will never receive.",
		}, []string{"reader"}),
		ListenerLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "dds",
			Subsystem: "listener",
			Name:      "dispatch_seconds",
			Help:      "Time spent inside a status-listener callback.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	for _, c := range []prometheus.Collector{
		m.WHCDepth, m.WHCUnackedBytes, m.MatchedCount, m.SamplesRejected, m.SamplesLost, m.ListenerLatency,
	} {
		_ = m.Registry.Register(c)
	}
	return m
}
