package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ConsumerMetrics records metadata for background event consumers.
type ConsumerMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
}

// NewConsumerMetrics registers the consumer metrics on the provided registerer.
func NewConsumerMetrics(reg prometheus.Registerer) *ConsumerMetrics {
	if reg == nil {
		return &ConsumerMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "consumer_handle_duration_seconds",
		Help:    "Duration of consumed event handling in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"consumer"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "consumer_handle_success",
		Help: "Successfully handled events.",
	}, []string{"consumer"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "consumer_handle_failure",
		Help: "Failed event handling attempts.",
	}, []string{"consumer"})
	reg.MustRegister(duration, success, failure)
	return &ConsumerMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
	}
}

// ObserveDuration records the handling duration for the named consumer.
func (c *ConsumerMetrics) ObserveDuration(consumer string, duration time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(normalizeLabel(consumer)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named consumer.
func (c *ConsumerMetrics) IncSuccess(consumer string) {
	if c == nil || c.success == nil {
		return
	}
	c.success.WithLabelValues(normalizeLabel(consumer)).Inc()
}

// IncFailure increments the failure counter for the named consumer.
func (c *ConsumerMetrics) IncFailure(consumer string) {
	if c == nil || c.failure == nil {
		return
	}
	c.failure.WithLabelValues(normalizeLabel(consumer)).Inc()
}

func normalizeLabel(label string) string {
	if label == "" {
		return "unknown"
	}
	return label
}
