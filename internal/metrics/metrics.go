// Package metrics exposes Prometheus instrumentation for uploads.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "csvrelay"

var uploadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "uploads_total",
		Help:      "Uploads by terminal outcome",
	},
	[]string{"outcome"},
)

var uploadDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upload_duration_seconds",
		Help:      "Time from receiving an upload to its terminal state",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	},
)

var recordsForwarded = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "records_forwarded_total",
		Help:      "Records accepted by the downstream sink",
	},
)

var notificationsFailed = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_failed_total",
		Help:      "Outcome notifications that could not be delivered",
	},
)

// ObserveUpload records a finished upload.
func ObserveUpload(outcome string, d time.Duration) {
	uploadsTotal.WithLabelValues(outcome).Inc()
	uploadDuration.Observe(d.Seconds())
}

// RecordForwarded counts one record confirmed by the sink.
func RecordForwarded() {
	recordsForwarded.Inc()
}

// RecordNotificationFailed counts one undelivered notification.
func RecordNotificationFailed() {
	notificationsFailed.Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
