package queue

import (
	"log/slog"

	"github.com/c360/msgbridge/message"
	"github.com/c360/msgbridge/metric"
)

// Option configures queue behavior using the functional options pattern.
type Option func(*queueOptions)

// queueOptions holds internal configuration for queue instances.
// Stats are ALWAYS collected - they are not optional.
// Metrics are optional and exposed via WithMetrics().
type queueOptions struct {
	name            string
	registry        *message.Registry
	initialCapacity int
	copyPolicy      CopyPolicy
	logger          *slog.Logger

	// metricsReg is optional - if provided, queue stats are also exposed as Prometheus metrics
	metricsReg *metric.MetricsRegistry

	// metricsPrefix is used as the queue label for Prometheus metrics
	metricsPrefix string
}

// WithName sets the queue name used in logs. Defaults to "queue-" followed by
// eight hex digits.
func WithName(name string) Option {
	return func(opts *queueOptions) {
		opts.name = name
	}
}

// WithExtensions sets the extension kinds the queue accepts. The registry is
// sealed when the queue is created.
func WithExtensions(registry *message.Registry) Option {
	return func(opts *queueOptions) {
		opts.registry = registry
	}
}

// WithInitialCapacity pre-sizes the ring. The queue still grows without bound.
// Values below 1 are ignored.
func WithInitialCapacity(n int) Option {
	return func(opts *queueOptions) {
		if n > 0 {
			opts.initialCapacity = n
		}
	}
}

// WithCopyPolicy sets where the transfer copy runs. Defaults to CopyBeforeLock.
func WithCopyPolicy(policy CopyPolicy) Option {
	return func(opts *queueOptions) {
		opts.copyPolicy = policy
	}
}

// WithMetrics enables Prometheus metrics export for queue statistics.
// If registry is nil or prefix is empty, this option is ignored.
func WithMetrics(registry *metric.MetricsRegistry, prefix string) Option {
	return func(opts *queueOptions) {
		if registry != nil && prefix != "" {
			opts.metricsReg = registry
			opts.metricsPrefix = prefix
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(opts *queueOptions) {
		if logger != nil {
			opts.logger = logger
		}
	}
}

// applyOptions applies functional options to create final queue configuration.
func applyOptions(options ...Option) *queueOptions {
	opts := &queueOptions{
		initialCapacity: defaultInitialCapacity,
		copyPolicy:      CopyBeforeLock,
		logger:          slog.Default(),
	}

	for _, opt := range options {
		if opt != nil {
			opt(opts)
		}
	}

	return opts
}
