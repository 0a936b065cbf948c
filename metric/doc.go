// Package metric provides the Prometheus registry and HTTP endpoint for
// msgbridge.
//
// The package has three layers:
//
//  1. Core Metrics: runner-level metrics registered automatically (Metrics type)
//  2. Component Registry: duplicate-checked registration for per-component
//     metrics such as a queue's counters (MetricsRegistrar interface)
//  3. HTTP Server: /metrics in Prometheus format plus /health (Server type)
//
// # Basic Usage
//
//	registry := metric.NewMetricsRegistry()
//	server := metric.NewServer(":9090", "/metrics", registry, logger)
//	if err := server.Start(); err != nil {
//	    return err
//	}
//	defer server.Stop()
//
//	q, err := queue.New(queue.WithMetrics(registry, "main"))
//
//	core := registry.CoreMetrics()
//	core.RecordProduced("native")
//	core.RecordError("runner", err)
//
// # Core Metrics
//
//   - msgbridge_component_status (0=stopped, 1=running, 2=failed)
//   - msgbridge_messages_produced_total{source}
//   - msgbridge_messages_consumed_total{consumer}
//   - msgbridge_lua_script_duration_seconds
//   - msgbridge_errors_total{component,class}, class from errors.Classify
//   - msgbridge_extensions_registered
//
// Go runtime and process collectors are registered as well.
//
// # Component Metrics
//
// Components register collectors under "component.metric" keys. Registering
// the same key twice, or two collectors with the same Prometheus name, fails
// with an invalid-class error. Unregister frees the key.
package metric
