package queue

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/c360/msgbridge/errors"
	"github.com/c360/msgbridge/message"
	"github.com/c360/msgbridge/transfer"
)

// CopyPolicy selects where the transfer copy runs relative to the queue lock.
type CopyPolicy int

const (
	// CopyBeforeLock copies the pushed tree before taking the lock. Only the
	// append is serialized.
	CopyBeforeLock CopyPolicy = iota

	// CopyUnderLock copies while holding the lock, so the whole push body is
	// one critical section.
	CopyUnderLock
)

// String returns a human-readable representation of the copy policy.
func (p CopyPolicy) String() string {
	switch p {
	case CopyBeforeLock:
		return "CopyBeforeLock"
	case CopyUnderLock:
		return "CopyUnderLock"
	default:
		return "Unknown"
	}
}

// ParseCopyPolicy maps a configuration name to a CopyPolicy. It accepts
// "before_lock" and "under_lock" as well as the String forms. The empty
// string selects CopyBeforeLock.
func ParseCopyPolicy(s string) (CopyPolicy, error) {
	switch s {
	case "", "before_lock", "CopyBeforeLock":
		return CopyBeforeLock, nil
	case "under_lock", "CopyUnderLock":
		return CopyUnderLock, nil
	default:
		return CopyBeforeLock, errors.WrapInvalid(
			fmt.Errorf("%w: unknown copy policy %q", errors.ErrInvalidConfig, s),
			"Queue", "ParseCopyPolicy", "parse copy policy")
	}
}

const defaultInitialCapacity = 16

// Queue is an unbounded, mutex-guarded FIFO of owned Values.
//
// Any number of goroutines may call Push, Pop and Size concurrently. Values
// come out in the order their pushes acquired the lock. Pop never blocks.
//
// Every pushed value passes through a transfer.Copier, so the stored tree
// shares nothing with the producer: extensions are cloned and Maps rebuilt.
// Push is all-or-nothing; on error the queue is unchanged.
type Queue struct {
	mu    sync.Mutex
	items []message.Value // ring storage, len(items) is the current capacity
	head  int             // next read position
	size  int

	name     string
	registry *message.Registry
	copier   *transfer.Copier
	policy   CopyPolicy
	stats    *Statistics   // ALWAYS initialized for observability
	metrics  *queueMetrics // Optional Prometheus metrics
	logger   *slog.Logger
}

// New creates a queue. The extension registry passed with WithExtensions is
// sealed; without one the queue accepts no extension kinds.
// Returns an error if metrics registration fails when metrics are requested.
func New(options ...Option) (*Queue, error) {
	opts := applyOptions(options...)

	if opts.name == "" {
		opts.name = "queue-" + uuid.NewString()[:8]
	}

	registry := opts.registry
	if registry == nil {
		registry = message.NewRegistry()
	}
	registry.Seal()

	var metrics *queueMetrics
	if opts.metricsReg != nil && opts.metricsPrefix != "" {
		var err error
		metrics, err = newQueueMetrics(opts.metricsReg, opts.metricsPrefix)
		if err != nil {
			return nil, errors.WrapTransient(err, "Queue", "New", "metrics registration")
		}
	}

	q := &Queue{
		items:    make([]message.Value, opts.initialCapacity),
		name:     opts.name,
		registry: registry,
		copier:   transfer.NewCopier(registry),
		policy:   opts.copyPolicy,
		stats:    NewStatistics(),
		metrics:  metrics,
		logger:   opts.logger.With("queue", opts.name),
	}

	q.logger.Debug("Queue created",
		"copy_policy", q.policy.String(),
		"extensions", registry.Kinds(),
		"metrics", metrics != nil)

	return q, nil
}

// Name returns the queue name.
func (q *Queue) Name() string {
	return q.name
}

// Registry returns the sealed extension registry of this queue.
func (q *Queue) Registry() *message.Registry {
	return q.registry
}

// Size returns the current number of stored values.
func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}

// Push copies v into owned storage and appends it.
//
// Push never waits for a consumer. It fails only when v cannot be made owned:
// an invalid or cyclic value, an extension kind outside the queue's registry
// (invalid class), or a failing Clone (errors.ErrCopyFailed, fatal class).
// On failure nothing is stored.
func (q *Queue) Push(v message.Value) error {
	if q.policy == CopyUnderLock {
		q.mu.Lock()
		defer q.mu.Unlock()

		owned, err := q.own(v)
		if err != nil {
			return err
		}
		q.appendLocked(owned)
		return nil
	}

	owned, err := q.own(v)
	if err != nil {
		return err
	}

	q.mu.Lock()
	q.appendLocked(owned)
	q.mu.Unlock()
	return nil
}

// PushMessage pushes the root value of m.
func (q *Queue) PushMessage(m message.Message) error {
	return q.Push(m.Root())
}

// Pop detaches the front value. It returns false immediately when the queue
// is empty.
func (q *Queue) Pop() (message.Message, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.size == 0 {
		q.stats.EmptyPop()
		if q.metrics != nil {
			q.metrics.recordEmptyPop()
		}
		return message.Message{}, false
	}

	v := q.items[q.head]
	q.items[q.head] = message.Value{} // Clear for GC
	q.head = (q.head + 1) % len(q.items)
	q.size--

	// ALWAYS track in stats
	q.stats.Pop()
	q.stats.UpdateSize(int64(q.size))

	// ALSO track in metrics if enabled
	if q.metrics != nil {
		q.metrics.recordPop(q.size)
	}

	return message.New(v), true
}

// Stats returns queue statistics (always available for observability).
func (q *Queue) Stats() *Statistics {
	return q.stats
}

// own runs the transfer copy and records its outcome.
func (q *Queue) own(v message.Value) (message.Value, error) {
	start := time.Now()
	res, err := q.copier.Copy(v)
	elapsed := time.Since(start)

	if err != nil {
		q.stats.Reject()
		if errors.IsFatal(err) {
			q.stats.CopyFailure()
		}
		if q.metrics != nil {
			q.metrics.recordReject(errors.IsFatal(err))
		}
		q.logger.Warn("Push rejected",
			"kind", v.Kind().String(),
			"class", errors.Classify(err).String(),
			"error", err)
		return message.Value{}, errors.Wrap(err, "Queue", "Push", "transfer copy")
	}

	q.stats.Copies(int64(res.Copied))
	if q.metrics != nil {
		q.metrics.recordCopy(res.Copied, elapsed)
	}
	return res.Value, nil
}

// appendLocked stores v at the back, growing the ring when full.
// Caller holds q.mu.
func (q *Queue) appendLocked(v message.Value) {
	if q.size == len(q.items) {
		q.grow()
	}

	q.items[(q.head+q.size)%len(q.items)] = v
	q.size++

	// ALWAYS track in stats
	q.stats.Push()
	q.stats.UpdateSize(int64(q.size))

	// ALSO track in metrics if enabled
	if q.metrics != nil {
		q.metrics.recordPush(q.size)
	}
}

// grow doubles the ring and moves the live items to the front in order.
func (q *Queue) grow() {
	capacity := len(q.items) * 2
	if capacity == 0 {
		capacity = defaultInitialCapacity
	}

	items := make([]message.Value, capacity)
	n := copy(items, q.items[q.head:])
	copy(items[n:], q.items[:q.head])

	q.items = items
	q.head = 0
	q.stats.Grow()
}

// capacity returns the current ring length. Used by tests.
func (q *Queue) capacity() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
