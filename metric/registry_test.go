package metric

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/msgbridge/errors"
)

func gatheredNames(t *testing.T, registry *MetricsRegistry) map[string]bool {
	t.Helper()

	metricFamilies, err := registry.PrometheusRegistry().Gather()
	require.NoError(t, err)

	found := make(map[string]bool)
	for _, mf := range metricFamilies {
		found[mf.GetName()] = true
	}
	return found
}

func TestNewMetricsRegistry(t *testing.T) {
	registry := NewMetricsRegistry()

	assert.NotNil(t, registry)
	assert.NotNil(t, registry.PrometheusRegistry())
	assert.NotNil(t, registry.CoreMetrics())
}

func TestMetricsRegistry_RegisterKinds(t *testing.T) {
	registry := NewMetricsRegistry()

	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_counter", Help: "A test counter"})
	gauge := prometheus.NewGauge(prometheus.GaugeOpts{Name: "test_gauge", Help: "A test gauge"})
	histogram := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "test_histogram",
		Help:    "A test histogram",
		Buckets: prometheus.DefBuckets,
	})
	counterVec := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_counter_vec", Help: "v"}, []string{"l"})
	gaugeVec := prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: "test_gauge_vec", Help: "v"}, []string{"l"})
	histogramVec := prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: "test_histogram_vec", Help: "v"},
		[]string{"l"})

	require.NoError(t, registry.RegisterCounter("test", "counter", counter))
	require.NoError(t, registry.RegisterGauge("test", "gauge", gauge))
	require.NoError(t, registry.RegisterHistogram("test", "histogram", histogram))
	require.NoError(t, registry.RegisterCounterVec("test", "counter_vec", counterVec))
	require.NoError(t, registry.RegisterGaugeVec("test", "gauge_vec", gaugeVec))
	require.NoError(t, registry.RegisterHistogramVec("test", "histogram_vec", histogramVec))

	counter.Inc()
	gauge.Set(42)
	histogram.Observe(1.5)
	counterVec.WithLabelValues("a").Inc()
	gaugeVec.WithLabelValues("a").Set(1)
	histogramVec.WithLabelValues("a").Observe(0.1)

	found := gatheredNames(t, registry)
	for _, name := range []string{
		"test_counter", "test_gauge", "test_histogram",
		"test_counter_vec", "test_gauge_vec", "test_histogram_vec",
	} {
		assert.True(t, found[name], "%s should be registered", name)
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(counter))
	assert.Equal(t, 42.0, testutil.ToFloat64(gauge))
}

func TestMetricsRegistry_PreventDuplicateRegistration(t *testing.T) {
	registry := NewMetricsRegistry()

	counter1 := prometheus.NewCounter(prometheus.CounterOpts{Name: "duplicate_counter", Help: "First counter"})
	counter2 := prometheus.NewCounter(prometheus.CounterOpts{Name: "duplicate_counter", Help: "First counter"})

	require.NoError(t, registry.RegisterCounter("component1", "duplicate_counter", counter1))

	// same key
	err := registry.RegisterCounter("component1", "duplicate_counter", counter2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
	assert.True(t, errors.IsInvalid(err))

	// different key, same Prometheus name
	err = registry.RegisterCounter("component2", "duplicate_counter", counter2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prometheus conflict")
	assert.True(t, errors.IsInvalid(err))
}

func TestMetricsRegistry_UnregisterMetric(t *testing.T) {
	registry := NewMetricsRegistry()

	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "unregister_counter", Help: "A counter"})
	require.NoError(t, registry.RegisterCounter("test", "unregister_counter", counter))
	assert.True(t, gatheredNames(t, registry)["unregister_counter"])

	assert.True(t, registry.Unregister("test", "unregister_counter"))
	assert.False(t, gatheredNames(t, registry)["unregister_counter"])

	assert.False(t, registry.Unregister("test", "unregister_counter"))

	// the name is free again
	require.NoError(t, registry.RegisterCounter("test", "unregister_counter", counter))
}

func TestMetricsRegistry_ThreadSafety(t *testing.T) {
	registry := NewMetricsRegistry()

	var wg sync.WaitGroup
	numGoroutines := 10

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()

			counter := prometheus.NewCounter(prometheus.CounterOpts{
				Name: fmt.Sprintf("concurrent_counter_%d", id),
				Help: "A concurrent counter",
			})

			err := registry.RegisterCounter("concurrent", fmt.Sprintf("concurrent_counter_%d", id), counter)
			assert.NoError(t, err)
		}(i)
	}

	wg.Wait()

	counterCount := 0
	for name := range gatheredNames(t, registry) {
		if strings.HasPrefix(name, "concurrent_counter_") {
			counterCount++
		}
	}
	assert.Equal(t, numGoroutines, counterCount)
}

func TestMetricsRegistrar_Interface(t *testing.T) {
	var registrar MetricsRegistrar = NewMetricsRegistry()

	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "interface_counter", Help: "c"})
	require.NoError(t, registrar.RegisterCounter("interface", "interface_counter", counter))
	assert.True(t, registrar.Unregister("interface", "interface_counter"))
}

func TestCoreMetrics_RecordMethods(t *testing.T) {
	registry := NewMetricsRegistry()
	core := registry.CoreMetrics()

	core.RecordComponentStatus("runner", StatusRunning)
	core.RecordProduced("native")
	core.RecordProduced("native")
	core.RecordProduced("lua")
	core.RecordConsumed("consumer-0")
	core.RecordScriptDuration(100 * time.Millisecond)
	core.RecordError("queue", errors.WrapFatal(errors.ErrCopyFailed, "Queue", "Push", "copy"))
	core.RecordError("queue", errors.WrapInvalid(errors.ErrUnknownExtension, "Queue", "Push", "copy"))
	core.RecordError("queue", nil)
	core.RecordExtensionKinds(2)

	assert.Equal(t, 1.0, testutil.ToFloat64(core.ComponentStatus.WithLabelValues("runner")))
	assert.Equal(t, 2.0, testutil.ToFloat64(core.MessagesProduced.WithLabelValues("native")))
	assert.Equal(t, 1.0, testutil.ToFloat64(core.MessagesProduced.WithLabelValues("lua")))
	assert.Equal(t, 1.0, testutil.ToFloat64(core.MessagesConsumed.WithLabelValues("consumer-0")))
	assert.Equal(t, 1.0, testutil.ToFloat64(core.ErrorsTotal.WithLabelValues("queue", "fatal")))
	assert.Equal(t, 1.0, testutil.ToFloat64(core.ErrorsTotal.WithLabelValues("queue", "invalid")))
	assert.Equal(t, 2.0, testutil.ToFloat64(core.ExtensionKinds))

	found := gatheredNames(t, registry)
	for _, name := range []string{
		"msgbridge_component_status",
		"msgbridge_messages_produced_total",
		"msgbridge_messages_consumed_total",
		"msgbridge_lua_script_duration_seconds",
		"msgbridge_errors_total",
		"msgbridge_extensions_registered",
	} {
		assert.True(t, found[name], "core metric %s should be present", name)
	}
}
