package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/c360/msgbridge/config"
	"github.com/c360/msgbridge/errors"
	"github.com/c360/msgbridge/luabridge"
	"github.com/c360/msgbridge/message"
	"github.com/c360/msgbridge/metric"
	"github.com/c360/msgbridge/queue"
)

// runner owns one queue shared by native producers, a native consumer and a
// Lua script.
type runner struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *message.Registry
	queue    *queue.Queue
	metrics  *metric.MetricsRegistry
	server   *metric.Server
	runtime  *luabridge.Runtime

	produced atomic.Int64
	consumed atomic.Int64
}

func newRunner(cfg *config.Config, logger *slog.Logger) (*runner, error) {
	registry := message.NewRegistry()
	if err := registry.Register(readingRegistration()); err != nil {
		return nil, errors.Wrap(err, "runner", "newRunner", "register extensions")
	}

	policy, err := queue.ParseCopyPolicy(cfg.Queue.CopyPolicy)
	if err != nil {
		return nil, err
	}

	metricsRegistry := metric.NewMetricsRegistry()
	q, err := queue.New(
		queue.WithName(cfg.Queue.Name),
		queue.WithExtensions(registry),
		queue.WithInitialCapacity(cfg.Queue.InitialCapacity),
		queue.WithCopyPolicy(policy),
		queue.WithMetrics(metricsRegistry, cfg.Queue.Name),
		queue.WithLogger(logger),
	)
	if err != nil {
		return nil, errors.Wrap(err, "runner", "newRunner", "create queue")
	}

	rt := luabridge.NewRuntime(logger)
	if err := rt.Attach(cfg.Lua.Global, q); err != nil {
		rt.Close()
		return nil, errors.Wrap(err, "runner", "newRunner", "attach queue to Lua")
	}

	r := &runner{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		queue:    q,
		metrics:  metricsRegistry,
		runtime:  rt,
	}
	if cfg.Metrics.Enabled {
		r.server = metric.NewServer(cfg.Metrics.Addr, cfg.Metrics.Path, metricsRegistry, logger)
	}

	metricsRegistry.CoreMetrics().RecordExtensionKinds(registry.Len())
	return r, nil
}

// Run starts producers and the consumer, runs the Lua script on the calling
// goroutine and waits for everything to drain.
func (r *runner) Run(ctx context.Context) error {
	core := r.metrics.CoreMetrics()

	if r.server != nil {
		if err := r.server.Start(); err != nil {
			return errors.Wrap(err, "runner", "Run", "start metrics server")
		}
		defer func() {
			if err := r.server.Stop(); err != nil {
				r.logger.Warn("Metrics server stop failed", "error", err)
			}
		}()
	}

	core.RecordComponentStatus("queue", metric.StatusRunning)
	defer core.RecordComponentStatus("queue", metric.StatusStopped)

	producers, pctx := errgroup.WithContext(ctx)
	for i := 0; i < r.cfg.Producers.Count; i++ {
		producers.Go(func() error {
			return r.produce(pctx, i)
		})
	}

	// done closes once nothing else will push.
	done := make(chan struct{})
	consumer := new(errgroup.Group)
	consumer.Go(func() error {
		return r.consume(ctx, done)
	})

	scriptErr := r.runScript(ctx)
	producerErr := producers.Wait()
	close(done)
	consumeErr := consumer.Wait()

	r.logSummary()

	return stderrors.Join(producerErr, scriptErr, consumeErr)
}

// Close releases the Lua state.
func (r *runner) Close() {
	r.runtime.Close()
}

// produce pushes cfg.Producers.Messages values. Each carries a reference to
// the producer's own Reading, which keeps growing after the push.
func (r *runner) produce(ctx context.Context, id int) error {
	core := r.metrics.CoreMetrics()
	source := fmt.Sprintf("producer-%d", id)

	limiter := rate.NewLimiter(rate.Inf, 1)
	if r.cfg.Producers.Rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(r.cfg.Producers.Rate), r.cfg.Producers.Burst)
	}

	reading := &Reading{Sensor: source}
	for seq := 0; seq < r.cfg.Producers.Messages; seq++ {
		if err := limiter.Wait(ctx); err != nil {
			return errors.WrapTransient(err, "runner", "produce", source+" rate limit")
		}

		reading.Values = append(reading.Values, float64(seq))
		v := message.MapOf(message.Map{
			message.StrKey("type"):     message.String("reading"),
			message.StrKey("producer"): message.Number(float64(id)),
			message.StrKey("seq"):      message.Number(float64(seq)),
			message.StrKey("reading"):  message.Reference(reading),
		})

		if err := r.queue.Push(v); err != nil {
			core.RecordError("producer", err)
			return errors.Wrap(err, "runner", "produce", source+" push")
		}
		core.RecordProduced(source)
		r.produced.Add(1)
	}

	r.logger.Debug("Producer finished", "source", source, "messages", r.cfg.Producers.Messages)
	return nil
}

// consume polls the queue until done is closed and IdlePolls
// consecutive polls come back empty.
func (r *runner) consume(ctx context.Context, done <-chan struct{}) error {
	ticker := time.NewTicker(r.cfg.Consumer.PollInterval)
	defer ticker.Stop()

	idle := 0
	for {
		if msg, ok := r.queue.Pop(); ok {
			idle = 0
			r.handle(msg)
			continue
		}

		if done == nil {
			idle++
			if idle >= r.cfg.Consumer.IdlePolls {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return errors.WrapTransient(ctx.Err(), "runner", "consume", "poll")
		case <-done:
			done = nil
		case <-ticker.C:
		}
	}
}

// handle inspects one message. Malformed messages are logged and counted,
// never fatal.
func (r *runner) handle(msg message.Message) {
	core := r.metrics.CoreMetrics()
	r.consumed.Add(1)
	core.RecordConsumed("native")

	kind, err := msg.Field("type").AsString()
	if err != nil {
		core.RecordError("consumer", err)
		r.logger.Warn("Message without type", "message", msg.String(), "error", err)
		return
	}

	switch kind {
	case "reading":
		reading, err := message.As[*Reading](msg.Field("reading"))
		if err != nil {
			core.RecordError("consumer", err)
			r.logger.Warn("Malformed reading", "error", err)
			return
		}
		r.logger.Debug("Reading consumed",
			"sensor", reading.Sensor,
			"samples", len(reading.Values),
			"sum", reading.Sum())
	default:
		r.logger.Debug("Message consumed", "type", kind, "message", msg.String())
	}
}

// runScript runs the configured Lua script, if any, bounded by Lua.Timeout.
func (r *runner) runScript(ctx context.Context) error {
	if r.cfg.Lua.Script == "" {
		return nil
	}

	if r.cfg.Lua.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Lua.Timeout)
		defer cancel()
	}

	core := r.metrics.CoreMetrics()
	core.RecordComponentStatus("lua", metric.StatusRunning)

	start := time.Now()
	err := r.runtime.RunFile(ctx, r.cfg.Lua.Script)
	core.RecordScriptDuration(time.Since(start))

	if err != nil {
		core.RecordError("lua", err)
		core.RecordComponentStatus("lua", metric.StatusFailed)
		r.logger.Error("Lua script failed", "script", r.cfg.Lua.Script, "error", err)
		return err
	}

	core.RecordComponentStatus("lua", metric.StatusStopped)
	r.logger.Info("Lua script finished", "script", r.cfg.Lua.Script, "duration", time.Since(start))
	return nil
}

func (r *runner) logSummary() {
	s := r.queue.Stats().Summary()
	r.logger.Info("Run complete",
		"queue", r.queue.Name(),
		"produced", r.produced.Load(),
		"consumed", r.consumed.Load(),
		"pushes", s.Pushes,
		"pops", s.Pops,
		"empty_pops", s.EmptyPops,
		"copies", s.Copies,
		"copy_failures", s.CopyFailures,
		"rejects", s.Rejects,
		"max_size", s.MaxSize,
		"remaining", r.queue.Size(),
		"uptime", s.Uptime)
}
