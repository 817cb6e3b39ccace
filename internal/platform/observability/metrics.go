package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MessagesFetched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "placementbot_messages_fetched_total",
		Help: "The total number of messages fetched from the mailbox",
	})

	MessagesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "placementbot_messages_processed_total",
		Help: "The total number of messages processed by disposition",
	}, []string{"disposition"})

	EventsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "placementbot_events_created_total",
		Help: "The total number of calendar events created",
	})

	EventsDeduplicated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "placementbot_events_deduplicated_total",
		Help: "The total number of emissions suppressed before creation",
	}, []string{"guard"})

	CollaboratorErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "placementbot_collaborator_errors_total",
		Help: "Total errors from external collaborators",
	}, []string{"collaborator"})

	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "placementbot_runs_total",
		Help: "Total processing runs by outcome",
	}, []string{"status"})

	RunDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "placementbot_run_duration_seconds",
		Help:    "Duration in seconds of one full processing run",
		Buckets: []float64{1, 2, 5, 10, 20, 30, 60, 120, 300},
	})

	DedupKeysPruned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "placementbot_dedup_keys_pruned_total",
		Help: "Total dedup keys removed by retention cleanup",
	})
)
