package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coachcal_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "coachcal_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	SessionsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coachcal_sessions_created_total",
			Help: "Total number of sessions created by the scheduler",
		},
		[]string{"interval"},
	)

	SessionsSkippedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "coachcal_sessions_skipped_total",
			Help: "Total number of occurrences skipped due to calendar conflicts",
		},
	)

	BookingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coachcal_bookings_total",
			Help: "Total number of booking transitions",
		},
		[]string{"action"},
	)

	EmailsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coachcal_emails_sent_total",
			Help: "Total number of emails sent",
		},
		[]string{"type", "status"},
	)

	EmailQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "coachcal_email_queue_length",
			Help: "Current length of email queue",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordSessionCreated(interval string) {
	SessionsCreatedTotal.WithLabelValues(interval).Inc()
}

func RecordSessionSkipped() {
	SessionsSkippedTotal.Inc()
}

// RecordBooking counts a booking transition: requested, approved, rejected
// or cancelled.
func RecordBooking(action string) {
	BookingsTotal.WithLabelValues(action).Inc()
}

func RecordEmail(emailType, status string) {
	EmailsSentTotal.WithLabelValues(emailType, status).Inc()
}
