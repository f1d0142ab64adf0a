// Package metrics defines and registers the custom Prometheus metrics
// for the escrow dashboard API. It is the single source of truth for
// metric names, labels, and help strings; registration happens at import
// time via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "escrow"

// LoginsTotal counts completed OAuth callbacks.
// Label:
//   - result: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of OAuth callback completions, by result.",
	},
	[]string{"result"},
)

// StatsRequestsTotal counts stats lookups.
// Label:
//   - result: "success" or "failure"
var StatsRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stats_requests_total",
		Help:      "Total number of guild stats lookups, by result.",
	},
	[]string{"result"},
)

// StatsCacheTotal counts stats cache decisions.
// Label:
//   - result: "hit" or "miss"
var StatsCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stats_cache_total",
		Help:      "Total number of stats cache lookups, labelled hit/miss.",
	},
	[]string{"result"},
)
