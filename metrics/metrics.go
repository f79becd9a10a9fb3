// Package metrics holds the Prometheus collectors of the request pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Capture outcomes
const (
	CaptureWritten = "written"
	CaptureFailed  = "failed"
	CaptureDropped = "dropped"
	CaptureSkipped = "skipped"
)

// Metrics groups the collectors so each server instance can own a registry
type Metrics struct {
	ThrottleRejected prometheus.Counter
	ThrottleErrors   prometheus.Counter
	CaptureOutcomes  *prometheus.CounterVec
}

// New creates the collectors and registers them on reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ThrottleRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_api",
			Subsystem: "throttle",
			Name:      "rejected_total",
			Help:      "Requests rejected with 429 by the throttle.",
		}),
		ThrottleErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_api",
			Subsystem: "throttle",
			Name:      "store_errors_total",
			Help:      "Throttle store failures; the request was let through.",
		}),
		CaptureOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_api",
			Subsystem: "capture",
			Name:      "records_total",
			Help:      "Request log records by outcome.",
		}, []string{"outcome"}),
	}

	reg.MustRegister(m.ThrottleRejected, m.ThrottleErrors, m.CaptureOutcomes)

	return m
}

// WatchQueue registers a gauge reporting the capture queue length
func WatchQueue(reg prometheus.Registerer, queueLen func() int) {
	reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "weather_api",
		Subsystem: "capture",
		Name:      "queue_length",
		Help:      "Request log records waiting to be written.",
	}, func() float64 { return float64(queueLen()) }))
}

// NewNop returns collectors registered on a throwaway registry, for tests
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}
