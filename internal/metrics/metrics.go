// Package metrics exposes the matching engine's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds every counter/gauge the facade updates on each
// write operation. A single Collector is meant to be registered once
// per process and shared across every book the facade manages.
type Collector struct {
	OrdersInsertedTotal  *prometheus.CounterVec
	OrdersCancelledTotal *prometheus.CounterVec
	FillsTotal           *prometheus.CounterVec
	FillQtyTotal         *prometheus.CounterVec
	FillsDropped         prometheus.Gauge
	RejectedTotal        *prometheus.CounterVec
	BookDepth            *prometheus.GaugeVec
	MatchLatency         *prometheus.HistogramVec
}

// New builds an unregistered Collector. Callers register it against a
// *prometheus.Registry of their choosing (NewRegistry, per spec, keeps
// test processes from colliding on the default global registry).
func New() *Collector {
	return &Collector{
		OrdersInsertedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "matchcore",
			Name:      "orders_inserted_total",
			Help:      "Insert requests accepted by the engine, by side and kind.",
		}, []string{"side", "kind"}),
		OrdersCancelledTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "matchcore",
			Name:      "orders_cancelled_total",
			Help:      "Resting orders removed via cancel, by side.",
		}, []string{"side"}),
		FillsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "matchcore",
			Name:      "fills_total",
			Help:      "Insert requests that filled a nonzero quantity, by taker side.",
		}, []string{"side"}),
		FillQtyTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "matchcore",
			Name:      "fill_quantity_total",
			Help:      "Aggregate quantity matched, by taker side.",
		}, []string{"side"}),
		FillsDropped: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "matchcore",
			Name:      "fills_dropped",
			Help:      "Cumulative fills discarded because the dispatch queue was saturated.",
		}),
		RejectedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "matchcore",
			Name:      "orders_rejected_total",
			Help:      "Orders rejected outright (e.g. market order against an empty book).",
		}, []string{"side", "kind"}),
		BookDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "matchcore",
			Name:      "book_depth_levels",
			Help:      "Number of distinct price levels currently resting, by side.",
		}, []string{"side"}),
		MatchLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "matchcore",
			Name:      "match_latency_seconds",
			Help:      "Wall-clock time spent inside a single matching call.",
			Buckets:   prometheus.ExponentialBuckets(1e-7, 4, 12),
		}, []string{"op"}),
	}
}

// MustRegister registers every collector on reg, panicking on
// duplicate registration (a programmer error, not a runtime one).
func (c *Collector) MustRegister(reg *prometheus.Registry) {
	reg.MustRegister(
		c.OrdersInsertedTotal,
		c.OrdersCancelledTotal,
		c.FillsTotal,
		c.FillQtyTotal,
		c.FillsDropped,
		c.RejectedTotal,
		c.BookDepth,
		c.MatchLatency,
	)
}
