package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DatasetFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "explorer_dataset_fetches_total",
			Help: "Dataset fetch attempts by dataset and outcome",
		},
		[]string{"dataset", "outcome"},
	)

	DatasetFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "explorer_dataset_fetch_duration_seconds",
			Help: "Duration of upstream dataset requests in seconds",
		},
		[]string{"dataset"},
	)

	CompletionRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "explorer_completion_requests_total",
			Help: "Completion API calls by outcome",
		},
		[]string{"outcome"},
	)

	CompletionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "explorer_completion_duration_seconds",
			Help: "Duration of completion API calls in seconds",
		},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "explorer_active_sessions",
			Help: "Number of open interactive sessions",
		},
	)
)

// Fetch outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeCached  = "cached"
	OutcomeUnknown = "unknown"
	OutcomeError   = "error"
)
