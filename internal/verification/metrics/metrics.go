package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the verification module.
// Tracks upload and submission volume plus the submit critical path.
type Metrics struct {
	DocumentsUploaded   prometheus.Counter
	UploadsRejected     prometheus.Counter
	SubmissionsAccepted prometheus.Counter
	SubmissionsRefused  prometheus.Counter
	ReviewsApproved     prometheus.Counter
	ReviewsRejected     prometheus.Counter
	StatusFetchFailures prometheus.Counter
	SubmitDuration      prometheus.Histogram
}

// New creates a Metrics instance with all verification metrics registered.
func New() *Metrics {
	return &Metrics{
		DocumentsUploaded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vouch_documents_uploaded_total",
			Help: "Total number of verification documents uploaded to storage",
		}),
		UploadsRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vouch_uploads_rejected_total",
			Help: "Total number of document uploads rejected before reaching storage",
		}),
		SubmissionsAccepted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vouch_submissions_accepted_total",
			Help: "Total number of verification submissions accepted as pending",
		}),
		SubmissionsRefused: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vouch_submissions_refused_total",
			Help: "Total number of verification submissions refused by precondition checks",
		}),
		ReviewsApproved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vouch_reviews_approved_total",
			Help: "Total number of submissions approved by a reviewer",
		}),
		ReviewsRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vouch_reviews_rejected_total",
			Help: "Total number of submissions rejected by a reviewer",
		}),
		StatusFetchFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vouch_status_fetch_failures_total",
			Help: "Total number of status lookups that degraded to none on store failure",
		}),
		SubmitDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "vouch_submit_duration_seconds",
			Help:    "Duration of Submit operations (verification critical path)",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// ObserveSubmit records the duration of a Submit operation.
// Call with time.Now() captured at the start of the operation.
func (m *Metrics) ObserveSubmit(start time.Time) {
	m.SubmitDuration.Observe(time.Since(start).Seconds())
}
