// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "raidsplit"

// Label values.
const (
	CacheHit  = "hit"
	CacheMiss = "miss"

	OutcomeOK    = "ok"
	OutcomeError = "error"
)

var latencyBuckets = []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}

// Metrics groups the server's collectors.
type Metrics struct {
	RPCRequests      *prometheus.CounterVec
	RPCDuration      *prometheus.HistogramVec
	ReportCache      *prometheus.CounterVec
	ProviderQueries  *prometheus.CounterVec
	ProviderDuration *prometheus.HistogramVec
	Suggestions      *prometheus.CounterVec
}

// New registers the collectors with reg. Pass a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RPCRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "Connect RPCs handled, by procedure and code.",
		}, []string{"procedure", "code"}),
		RPCDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_seconds",
			Help:      "Connect RPC latency.",
			Buckets:   latencyBuckets,
		}, []string{"procedure"}),
		ReportCache: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_cache_total",
			Help:      "Report cache lookups, by result.",
		}, []string{"result"}),
		ProviderQueries: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_queries_total",
			Help:      "GraphQL queries sent to the statistics provider, by query and outcome.",
		}, []string{"query", "outcome"}),
		ProviderDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_query_duration_seconds",
			Help:      "Latency of provider GraphQL queries.",
			Buckets:   latencyBuckets,
		}, []string{"query"}),
		Suggestions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deduction_suggestions_total",
			Help:      "Deduction suggestions produced, by rule.",
		}, []string{"rule"}),
	}
}
