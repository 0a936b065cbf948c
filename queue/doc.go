// Package queue provides the thread-safe FIFO that carries message values
// between native goroutines and an embedded Lua runtime.
//
// The queue offers:
//   - Push, Pop and Size, safe from any number of goroutines
//   - Strict FIFO in lock acquisition order
//   - Pop that never blocks; an empty queue returns (Message{}, false)
//   - No capacity bound; the ring grows as needed
//   - A transfer copy on every push so stored values share nothing with producers
//   - Statistics always enabled, Prometheus metrics via WithMetrics()
//
// There is no Peek. A value is either in the queue or owned by exactly one
// popper.
//
// # Usage
//
//	registry := message.NewRegistry()
//	_ = registry.Register(pointRegistration)
//
//	q, err := queue.New(
//	    queue.WithName("telemetry"),
//	    queue.WithExtensions(registry),
//	    queue.WithMetrics(metricsRegistry, "telemetry"),
//	)
//	if err != nil {
//	    return err
//	}
//
//	// producer
//	err = q.Push(message.MustFrom(map[string]any{"type": "X", "seq": 1}))
//
//	// consumer
//	for {
//	    msg, ok := q.Pop()
//	    if !ok {
//	        break // empty, poll again later
//	    }
//	    kind, err := msg.Field("type").AsString()
//	    ...
//	}
//
// # Copy policy
//
// By default the transfer copy runs before the lock is taken, so contention
// covers only the append. WithCopyPolicy(CopyUnderLock) runs the copy inside
// the critical section. Both policies are all-or-nothing: a failed push
// leaves the queue unchanged.
//
// # Extensions
//
// The registry given to WithExtensions is sealed when the queue is created.
// Values carrying an extension kind outside it are rejected at push with
// errors.ErrUnknownExtension. A queue created without a registry accepts no
// extension kinds.
package queue
