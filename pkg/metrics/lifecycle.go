package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Transition axes.
const (
	AxisListing  = "listing"
	AxisPayment  = "payment"
	AxisShipping = "shipping"
	AxisQueue    = "queue"
)

// Upload outcomes.
const (
	UploadStored   = "stored"
	UploadRejected = "rejected"
	UploadFailed   = "failed"
)

// LifecycleMetrics counts state transitions and image uploads. A nil value is
// safe to use and records nothing.
type LifecycleMetrics struct {
	transitions *prometheus.CounterVec
	rejected    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	uploads     *prometheus.CounterVec
}

// NewLifecycleMetrics registers the lifecycle metrics on reg.
func NewLifecycleMetrics(reg prometheus.Registerer) *LifecycleMetrics {
	if reg == nil {
		return &LifecycleMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kickstock",
		Name:      "transitions_total",
		Help:      "Committed state transitions by axis and target state.",
	}, []string{"axis", "to"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kickstock",
		Name:      "transitions_rejected_total",
		Help:      "Rejected state transitions by axis and error code.",
	}, []string{"axis", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "kickstock",
		Name:      "transition_duration_seconds",
		Help:      "Time spent applying a transition, including its audit write.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"axis"})
	uploads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kickstock",
		Name:      "image_uploads_total",
		Help:      "Image attachment attempts by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(transitions, rejected, duration, uploads)
	return &LifecycleMetrics{
		transitions: transitions,
		rejected:    rejected,
		duration:    duration,
		uploads:     uploads,
	}
}

// ObserveTransition records a committed transition and how long it took.
func (m *LifecycleMetrics) ObserveTransition(axis, to string, took time.Duration) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(axis), normalizeLabel(to)).Inc()
	m.duration.WithLabelValues(normalizeLabel(axis)).Observe(took.Seconds())
}

// IncRejected records a transition that was refused.
func (m *LifecycleMetrics) IncRejected(axis, code string) {
	if m == nil || m.rejected == nil {
		return
	}
	m.rejected.WithLabelValues(normalizeLabel(axis), normalizeLabel(code)).Inc()
}

// IncUpload records the outcome of one image attachment.
func (m *LifecycleMetrics) IncUpload(outcome string) {
	if m == nil || m.uploads == nil {
		return
	}
	m.uploads.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
