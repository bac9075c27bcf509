// Package metrics provides Prometheus metrics for monitoring the feed
// pipeline.
//
// Key metrics:
//   - Fetch attempt and terminal failure counts (by error kind)
//   - Session warm-up count
//   - Cycle durations, completions and aborts
//   - Quotes published across all snapshots
//   - Feed bytes written
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	FetchAttempts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "stockfeed_fetch_attempts_total",
			Help: "Quote fetch attempts, including retries",
		})
	FetchFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stockfeed_fetch_failures_total",
			Help: "Terminal per-symbol fetch failures by error kind",
		},
		[]string{"kind"},
	)
	SessionWarmups = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "stockfeed_session_warmups_total",
			Help: "Session warm-ups performed, initial and renewals",
		})

	CyclesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "stockfeed_cycles_total",
			Help: "Acquisition cycles that produced a snapshot",
		})
	CycleFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "stockfeed_cycle_failures_total",
			Help: "Acquisition cycles aborted before producing a snapshot",
		})
	CycleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "stockfeed_cycle_duration_seconds",
			Help:    "Wall time of one acquisition cycle",
			Buckets: prometheus.DefBuckets,
		})

	QuotesPublished = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "stockfeed_quotes_published_total",
			Help: "Quotes emitted across all ranked snapshots",
		})
	SymbolsFailed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "stockfeed_symbols_failed_total",
			Help: "Symbols that exhausted retries within a cycle",
		})
	FeedBytes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "stockfeed_feed_bytes_total",
			Help: "Bytes written to the XML feed file",
		})
)

func init() {
	// MustRegister panics if registration fails (e.g. duplicate)
	prometheus.MustRegister(
		FetchAttempts, FetchFailures, SessionWarmups,
		CyclesTotal, CycleFailures, CycleDuration,
		QuotesPublished, SymbolsFailed, FeedBytes,
	)
}
