// Package msgbridge is a message queue shared between Go and an embedded Lua
// interpreter.
//
// Messages are dynamically typed trees (package message): booleans, numbers,
// strings, maps keyed by integers or strings, and host-defined extension
// values. A Queue (package queue) stores only owned trees. Push runs a
// transfer copy (package transfer) that replaces every extension with its
// own clone, so a consumer never observes later mutation by the producer.
//
// # Packages
//
//   - message: Value model, keys, extension registry, typed accessors
//   - transfer: borrowed to owned copy of a Value tree
//   - queue: thread-safe FIFO with statistics and Prometheus metrics
//   - luabridge: gopher-lua binding for queues and extension kinds
//   - config: layered JSON/YAML configuration with env overrides
//   - metric: Prometheus registry, runner metrics and HTTP endpoint
//   - errors: classified errors (transient, invalid, fatal)
//   - cmd/msgbridge: runner wiring native producers, a native consumer and
//     a Lua script around one queue
//
// # Quick Start
//
//	q, err := queue.New(queue.WithName("orders"))
//	if err != nil {
//	    return err
//	}
//	if err := q.Push(message.MustFrom(map[string]any{"type": "order", "id": 7.0})); err != nil {
//	    return err
//	}
//	msg, ok := q.Pop()
//	if ok {
//	    id, err := msg.Field("id").AsNumber()
//	    ...
//	}
//
// From Lua, after Runtime.Attach("queue", q):
//
//	queue:push({type = "order", id = 7})
//	local msg = queue:pop()
package msgbridge
