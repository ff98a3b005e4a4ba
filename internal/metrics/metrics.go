package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OptionsDecodeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "betscope_options_decode_total",
			Help: "Options fields decoded, by detected encoding and whether the fallback was used",
		},
		[]string{"encoding", "fallback"},
	)

	BetsTransformedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "betscope_bets_transformed_total",
		Help: "Raw bet records transformed into canonical bets",
	})

	BetsStoredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "betscope_bets_stored_total",
			Help: "Canonical bets written, by sink",
		},
		[]string{"sink"},
	)

	SubgraphRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "betscope_subgraph_requests_total",
			Help: "Indexer GraphQL requests, by status",
		},
		[]string{"status"},
	)

	SubgraphRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "betscope_subgraph_request_duration_seconds",
		Help:    "Indexer GraphQL request duration in seconds",
		Buckets: prometheus.DefBuckets,
	})

	TxOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "betscope_tx_outcomes_total",
			Help: "Settled submissions, by outcome (success, fallback_success, submission_rejected, receipt_error, torn_down)",
		},
		[]string{"outcome"},
	)

	TxSettleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "betscope_tx_settle_seconds",
		Help:    "Time from submission to settled outcome in seconds",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
	})

	NotifyFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "betscope_notify_failures_total",
			Help: "Lifecycle notifications that a sink failed to deliver",
		},
		[]string{"sink"},
	)
)
