package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	DispatchSuccesses prometheus.Counter
	DispatchFailures  prometheus.Counter
	DispatchDuration  prometheus.Histogram
	QueueConsumed     prometheus.Counter
	QueueRejected     prometheus.Counter
	QueuePublished    prometheus.Counter
	HistorySize       prometheus.Gauge
	InFlight          prometheus.Gauge
}

// NewMetrics creates new Prometheus metrics
func NewMetrics() *Metrics {
	return &Metrics{
		DispatchSuccesses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "email_dispatch_send_successes",
			Help: "Total number of emails submitted successfully",
		}),
		DispatchFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "email_dispatch_send_failures",
			Help: "Total number of email submissions that failed",
		}),
		DispatchDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "email_dispatch_duration_seconds",
			Help:    "Time spent dispatching a single email",
			Buckets: prometheus.DefBuckets,
		}),
		QueueConsumed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "email_dispatch_queue_messages_consumed",
			Help: "Total number of queue messages handled",
		}),
		QueueRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "email_dispatch_queue_messages_rejected",
			Help: "Total number of queue messages skipped as malformed",
		}),
		QueuePublished: promauto.NewCounter(prometheus.CounterOpts{
			Name: "email_dispatch_queue_messages_published",
			Help: "Total number of requests published to the email topic",
		}),
		HistorySize: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "email_dispatch_history_size",
			Help: "Number of records currently retained in the history store",
		}),
		InFlight: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "email_dispatch_in_flight",
			Help: "Number of dispatches currently in flight",
		}),
	}
}
