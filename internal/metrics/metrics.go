package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EventsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "finpulse_events_emitted_total",
		Help: "Total number of domain events emitted on the bus, labelled by kind.",
	}, []string{"kind"})

	HandlerErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "finpulse_handler_errors_total",
		Help: "Total number of event handler failures caught at the bus boundary.",
	}, []string{"kind"})

	NotificationsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "finpulse_notifications_created_total",
		Help: "Total number of notifications materialized, labelled by type and priority.",
	}, []string{"type", "priority"})

	EvaluationsSuppressed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "finpulse_evaluations_suppressed_total",
		Help: "Total number of event evaluations that produced no notification, labelled by kind.",
	}, []string{"kind"})

	ListenerErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "finpulse_listener_errors_total",
		Help: "Total number of subscriber callback failures caught during broadcast.",
	})

	PersistFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "finpulse_persist_failures_total",
		Help: "Total number of failed store writes, labelled by operation.",
	}, []string{"op"})

	PersistDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "finpulse_persist_dropped_total",
		Help: "Total number of store writes dropped due to a full writer queue.",
	})

	WriterQueueUtilization = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "finpulse_writer_queue_utilization_ratio",
		Help: "Current persistence writer queue utilization (0–1).",
	})

	EventProcessingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "finpulse_event_processing_duration_ms",
		Help:    "End-to-end event evaluation latency in milliseconds.",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
	})
)
