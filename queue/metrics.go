package queue

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360/msgbridge/metric"
)

// queueMetrics holds Prometheus metrics for queue operations.
type queueMetrics struct {
	pushes       prometheus.Counter
	pops         prometheus.Counter
	emptyPops    prometheus.Counter
	copies       prometheus.Counter
	copyFailures prometheus.Counter
	rejects      prometheus.Counter

	size         prometheus.Gauge
	copyDuration prometheus.Histogram
}

// newQueueMetrics creates and registers queue metrics with the provided registry.
func newQueueMetrics(registry *metric.MetricsRegistry, prefix string) (*queueMetrics, error) {
	labels := prometheus.Labels{"queue": prefix}

	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "msgbridge",
			Subsystem:   "queue",
			Name:        name,
			ConstLabels: labels,
			Help:        help,
		})
	}

	m := &queueMetrics{
		pushes:       counter("pushes_total", "Total number of values stored"),
		pops:         counter("pops_total", "Total number of values detached"),
		emptyPops:    counter("empty_pops_total", "Total number of pops on an empty queue"),
		copies:       counter("copies_total", "Total number of extensions replaced by owned clones"),
		copyFailures: counter("copy_failures_total", "Total number of pushes aborted by a failing clone"),
		rejects:      counter("rejects_total", "Total number of pushes that stored nothing"),
		size: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "msgbridge",
			Subsystem:   "queue",
			Name:        "size",
			ConstLabels: labels,
			Help:        "Current number of values in the queue",
		}),
		copyDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   "msgbridge",
			Subsystem:   "queue",
			Name:        "copy_duration_seconds",
			ConstLabels: labels,
			Help:        "Time spent in the transfer copy per push",
			Buckets:     prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),
	}

	counters := []struct {
		name string
		c    prometheus.Counter
	}{
		{"queue_pushes", m.pushes},
		{"queue_pops", m.pops},
		{"queue_empty_pops", m.emptyPops},
		{"queue_copies", m.copies},
		{"queue_copy_failures", m.copyFailures},
		{"queue_rejects", m.rejects},
	}
	for _, c := range counters {
		if err := registry.RegisterCounter(prefix, c.name, c.c); err != nil {
			return nil, err
		}
	}
	if err := registry.RegisterGauge(prefix, "queue_size", m.size); err != nil {
		return nil, err
	}
	if err := registry.RegisterHistogram(prefix, "queue_copy_duration", m.copyDuration); err != nil {
		return nil, err
	}

	return m, nil
}

// recordPush increments the push counter and updates size.
func (m *queueMetrics) recordPush(size int) {
	m.pushes.Inc()
	m.size.Set(float64(size))
}

// recordPop increments the pop counter and updates size.
func (m *queueMetrics) recordPop(size int) {
	m.pops.Inc()
	m.size.Set(float64(size))
}

// recordEmptyPop increments the empty pop counter.
func (m *queueMetrics) recordEmptyPop() {
	m.emptyPops.Inc()
}

// recordCopy records the copy count and duration of a successful transfer.
func (m *queueMetrics) recordCopy(copied int, elapsed time.Duration) {
	if copied > 0 {
		m.copies.Add(float64(copied))
	}
	m.copyDuration.Observe(elapsed.Seconds())
}

// recordReject increments the reject counter and, for clone failures, the
// copy failure counter.
func (m *queueMetrics) recordReject(copyFailure bool) {
	m.rejects.Inc()
	if copyFailure {
		m.copyFailures.Inc()
	}
}
