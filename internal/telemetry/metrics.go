// Package telemetry provides Prometheus metrics for entity ranking.
// Metrics are kept in-process; the CLI can dump them to a textfile for the
// node_exporter textfile collector.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metric names as constants for consistency.
const (
	MetricRanksTotal        = "grandpy_ranks_total"
	MetricRankDuration      = "grandpy_rank_duration_seconds"
	MetricEmptyResultsTotal = "grandpy_empty_results_total"
	MetricPassFailuresTotal = "grandpy_pass_failures_total"
	MetricCacheHitsTotal    = "grandpy_cache_hits_total"
	MetricCandidates        = "grandpy_candidates"
)

// LatencyBucket is a coarse latency class, used as a label on rank counts.
type LatencyBucket string

const (
	BucketP1    LatencyBucket = "p1"    // <1ms
	BucketP10   LatencyBucket = "p10"   // 1-10ms
	BucketP100  LatencyBucket = "p100"  // 10-100ms
	BucketP1000 LatencyBucket = "p1000" // >=100ms
)

// LatencyToBucket converts a duration to its bucket.
func LatencyToBucket(d time.Duration) LatencyBucket {
	switch {
	case d < time.Millisecond:
		return BucketP1
	case d < 10*time.Millisecond:
		return BucketP10
	case d < 100*time.Millisecond:
		return BucketP100
	default:
		return BucketP1000
	}
}

// Metrics contains Prometheus metrics for ranking operations.
// All operations are thread-safe. A nil *Metrics records nothing.
type Metrics struct {
	ranks        *prometheus.CounterVec
	rankDuration prometheus.Histogram
	emptyResults prometheus.Counter
	passFailures *prometheus.CounterVec
	cacheHits    prometheus.Counter
	candidates   prometheus.Histogram
}

// NewMetrics creates the collectors. They are not registered; call Register.
func NewMetrics() *Metrics {
	return &Metrics{
		ranks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricRanksTotal,
				Help: "Total number of ranked queries by latency bucket",
			},
			[]string{"latency"},
		),
		rankDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    MetricRankDuration,
				Help:    "Histogram of query ranking duration in seconds",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
			},
		),
		emptyResults: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: MetricEmptyResultsTotal,
				Help: "Total number of queries that ranked no candidate",
			},
		),
		passFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricPassFailuresTotal,
				Help: "Total number of extraction pass failures by pass",
			},
			[]string{"pass"},
		),
		cacheHits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: MetricCacheHitsTotal,
				Help: "Total number of queries answered from the result cache",
			},
		),
		candidates: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    MetricCandidates,
				Help:    "Histogram of scored candidates per query",
				Buckets: prometheus.LinearBuckets(0, 5, 10),
			},
		),
	}
}

// Register registers all metrics with the given registry.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Collectors returns all Prometheus collectors.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.ranks,
		m.rankDuration,
		m.emptyResults,
		m.passFailures,
		m.cacheHits,
		m.candidates,
	}
}

// ObserveRank records one ranking run.
// candidates: size of the score table; ranked: length of the ranked list.
func (m *Metrics) ObserveRank(d time.Duration, candidates, ranked int) {
	if m == nil {
		return
	}
	m.ranks.WithLabelValues(string(LatencyToBucket(d))).Inc()
	m.rankDuration.Observe(d.Seconds())
	m.candidates.Observe(float64(candidates))
	if ranked == 0 {
		m.emptyResults.Inc()
	}
}

// IncPassFailures counts a failed extraction pass.
func (m *Metrics) IncPassFailures(pass string) {
	if m == nil {
		return
	}
	m.passFailures.WithLabelValues(pass).Inc()
}

// IncCacheHits counts a query served from cache.
func (m *Metrics) IncCacheHits() {
	if m == nil {
		return
	}
	m.cacheHits.Inc()
}
