// Package metrics holds the prometheus collectors shared by the scan jobs and the HTTP surface.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups every collector the service exports. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	notificationsCreated *prometheus.CounterVec
	duplicatesSkipped    *prometheus.CounterVec
	scanFailures         *prometheus.CounterVec
	deliveryFailures     *prometheus.CounterVec
	scanDuration         *prometheus.HistogramVec
	HTTPRequests         *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		notificationsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "alerts_notifications_created_total",
			Help: "Notifications created by scan jobs.",
		}, []string{"kind", "bucket"}),
		duplicatesSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "alerts_duplicates_skipped_total",
			Help: "Alerts suppressed because the dedup ledger already held them.",
		}, []string{"kind"}),
		scanFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "alerts_record_failures_total",
			Help: "Records whose processing failed during a scan.",
		}, []string{"kind"}),
		deliveryFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "alerts_delivery_failures_total",
			Help: "Email or Telegram deliveries that failed after the notification was stored.",
		}, []string{"channel"}),
		scanDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "alerts_scan_duration_seconds",
			Help:    "Wall time of a full scan pass.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}, []string{"kind"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed.",
		}, []string{"method", "path", "status"}),
	}

	collectors := []prometheus.Collector{
		m.notificationsCreated, m.duplicatesSkipped, m.scanFailures,
		m.deliveryFailures, m.scanDuration, m.HTTPRequests,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) NotificationCreated(kind, bucket string) {
	if m == nil {
		return
	}
	m.notificationsCreated.WithLabelValues(kind, bucket).Inc()
}

func (m *Metrics) DuplicateSkipped(kind string) {
	if m == nil {
		return
	}
	m.duplicatesSkipped.WithLabelValues(kind).Inc()
}

func (m *Metrics) RecordFailed(kind string) {
	if m == nil {
		return
	}
	m.scanFailures.WithLabelValues(kind).Inc()
}

func (m *Metrics) DeliveryFailed(channel string) {
	if m == nil {
		return
	}
	m.deliveryFailures.WithLabelValues(channel).Inc()
}

func (m *Metrics) ObserveScan(kind string, d time.Duration) {
	if m == nil {
		return
	}
	m.scanDuration.WithLabelValues(kind).Observe(d.Seconds())
}
