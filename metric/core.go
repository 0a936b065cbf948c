package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360/msgbridge/errors"
)

// Component status values recorded by RecordComponentStatus.
const (
	StatusStopped = 0
	StatusRunning = 1
	StatusFailed  = 2
)

// Metrics contains the runner-level metrics. Queue metrics are registered
// per queue by the queue package.
type Metrics struct {
	ComponentStatus  *prometheus.GaugeVec
	MessagesProduced *prometheus.CounterVec
	MessagesConsumed *prometheus.CounterVec
	ScriptDuration   prometheus.Histogram
	ErrorsTotal      *prometheus.CounterVec
	ExtensionKinds   prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all runner metrics
func NewMetrics() *Metrics {
	return &Metrics{
		ComponentStatus: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "msgbridge",
				Subsystem: "component",
				Name:      "status",
				Help:      "Component status (0=stopped, 1=running, 2=failed)",
			},
			[]string{"component"},
		),

		MessagesProduced: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "msgbridge",
				Subsystem: "messages",
				Name:      "produced_total",
				Help:      "Total number of messages pushed, by producing side",
			},
			[]string{"source"},
		),

		MessagesConsumed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "msgbridge",
				Subsystem: "messages",
				Name:      "consumed_total",
				Help:      "Total number of messages popped, by consumer",
			},
			[]string{"consumer"},
		),

		ScriptDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "msgbridge",
				Subsystem: "lua",
				Name:      "script_duration_seconds",
				Help:      "Lua script execution time in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),

		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "msgbridge",
				Subsystem: "errors",
				Name:      "total",
				Help:      "Total number of errors by component and class",
			},
			[]string{"component", "class"},
		),

		ExtensionKinds: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "msgbridge",
				Subsystem: "extensions",
				Name:      "registered",
				Help:      "Number of registered extension kinds",
			},
		),
	}
}

// RecordComponentStatus updates component status metric
func (c *Metrics) RecordComponentStatus(component string, status int) {
	c.ComponentStatus.WithLabelValues(component).Set(float64(status))
}

// RecordProduced increments the produced counter for source
func (c *Metrics) RecordProduced(source string) {
	c.MessagesProduced.WithLabelValues(source).Inc()
}

// RecordConsumed increments the consumed counter for consumer
func (c *Metrics) RecordConsumed(consumer string) {
	c.MessagesConsumed.WithLabelValues(consumer).Inc()
}

// RecordScriptDuration records a script run
func (c *Metrics) RecordScriptDuration(duration time.Duration) {
	c.ScriptDuration.Observe(duration.Seconds())
}

// RecordError increments the error counter using the error's class as label
func (c *Metrics) RecordError(component string, err error) {
	if err == nil {
		return
	}
	c.ErrorsTotal.WithLabelValues(component, errors.Classify(err).String()).Inc()
}

// RecordExtensionKinds sets the number of registered extension kinds
func (c *Metrics) RecordExtensionKinds(n int) {
	c.ExtensionKinds.Set(float64(n))
}
