// Package metrics registers the application's Prometheus metrics once and
// hands them to components as a constructor dependency.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	SubmissionsTotal prometheus.Counter
	ReviewsTotal     *prometheus.CounterVec
	AppealsFiled     prometheus.Counter
	CascadeFailures  prometheus.Counter
	UploadBytes      prometheus.Histogram
	RequestDuration  *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return newWith(prometheus.DefaultRegisterer)
}

// NewForTest registers metrics against a private registry so parallel tests
// never collide on the default one.
func NewForTest() *Metrics {
	return newWith(prometheus.NewRegistry())
}

func newWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SubmissionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "veriflow_submissions_total",
			Help: "Total number of verification submissions accepted.",
		}),
		ReviewsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "veriflow_reviews_total",
			Help: "Total number of review transitions applied.",
		}, []string{"kind", "outcome"}),
		AppealsFiled: factory.NewCounter(prometheus.CounterOpts{
			Name: "veriflow_appeals_filed_total",
			Help: "Total number of appeals filed by subjects.",
		}),
		CascadeFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "veriflow_appeal_cascade_failures_total",
			Help: "Appeal reviews whose cascade onto the linked verification failed.",
		}),
		UploadBytes: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "veriflow_upload_bytes",
			Help:    "Size distribution of stored evidence files.",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 10),
		}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "veriflow_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}

// ObserveRequest records one HTTP request observation.
func (m *Metrics) ObserveRequest(route, status string, d time.Duration) {
	m.RequestDuration.WithLabelValues(route, status).Observe(d.Seconds())
}

// IncReview records a review transition by kind (verification|appeal) and
// outcome (approved|rejected).
func (m *Metrics) IncReview(kind, outcome string) {
	m.ReviewsTotal.WithLabelValues(kind, outcome).Inc()
}
