package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Scheduling engine metrics
	BookingDecisions  *prometheus.CounterVec
	BlocksCreated     prometheus.Counter
	ReschedulePreview prometheus.Counter
	RescheduleCommits *prometheus.CounterVec

	// Visit lifecycle metrics
	Transitions        *prometheus.CounterVec
	QueueNumbersIssued prometheus.Counter

	// Database metrics
	DatabaseOperations *prometheus.CounterVec
	DatabaseLatency    *prometheus.HistogramVec
}

// NewMetrics creates and registers all application metrics
func NewMetrics(namespace, subsystem string) *Metrics {
	return &Metrics{
		BookingDecisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "booking_decisions_total",
			Help:      "Booking proposals by outcome (accepted or rejected)",
		}, []string{"outcome"}),
		BlocksCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "blocked_slots_created_total",
			Help:      "Total number of staff time-blocks created",
		}),
		ReschedulePreview: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "reschedule_previews_total",
			Help:      "Total number of reschedule previews computed",
		}),
		RescheduleCommits: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "reschedule_commits_total",
			Help:      "Reschedule commits by outcome",
		}, []string{"outcome"}),
		Transitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "visit_transitions_total",
			Help:      "Visit status transitions by target status and outcome",
		}, []string{"target", "outcome"}),
		QueueNumbersIssued: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "queue_numbers_issued_total",
			Help:      "Total number of check-in queue numbers issued",
		}),
		DatabaseOperations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "database_operations_total",
			Help:      "Total number of database operations",
		}, []string{"operation", "status"}),
		DatabaseLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "database_operation_duration_seconds",
			Help:      "Duration of database operations",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),
	}
}
