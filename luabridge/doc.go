// Package luabridge exposes message queues to Lua scripts running on
// github.com/yuin/gopher-lua.
//
// A bound state gains a queue type with three methods:
//
//	q:size()       -- number of values waiting
//	q:push(value)  -- boolean, number, string, table or extension userdata
//	q:pop()        -- the oldest value, or nil when empty
//
// Values cross the boundary by conversion, never by sharing. Lua tables
// become message maps (integral number keys are integer keys, so Lua arrays
// keep their 1-based indices), and popped maps become fresh tables. Values
// Lua cannot represent in a message, such as functions, nil or
// fractional keys, raise a Lua error from push.
//
// # Extensions
//
// RegisterExtensions makes each registered kind visible to Lua: userdata of
// that kind expose fields through the registration's Inspect function, and
// kinds with a Construct function get a global constructor:
//
//	local p = Point(1, 2, "origin")
//	print(p.x, p.label)
//	q:push(p)            -- the queue stores its own clone of p
//	q:push(p)            -- a second, distinct clone
//
// Userdata always converts to a message.Reference: the payload stays in the
// Lua state and push stores a clone made by the extension's Clone method, so
// p may be changed afterwards. reference(x), NewReference and MarkReference
// give a userdata the borrowed metatable (__transfer = "copy"), which is also
// how popped references would be shown to Lua.
//
// # Threading
//
// A Lua state is single threaded. Only the queue is shared between
// goroutines; the binding never locks the state. Runtime wraps one state for
// callers that want script execution with context cancellation and print
// routed to slog.
package luabridge
