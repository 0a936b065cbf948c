package luabridge

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/c360/msgbridge/errors"
	"github.com/c360/msgbridge/queue"
)

// Runtime owns one Lua state. Like any *lua.LState it must be driven from a
// single goroutine; share data with other goroutines through a queue.
type Runtime struct {
	L      *lua.LState
	logger *slog.Logger
	closed bool
}

// NewRuntime opens a Lua state with the standard libraries. The global print
// is routed to logger at Info level.
func NewRuntime(logger *slog.Logger) *Runtime {
	if logger == nil {
		logger = slog.Default()
	}

	r := &Runtime{
		L:      lua.NewState(),
		logger: logger.With("component", "lua"),
	}
	r.L.SetGlobal("print", r.L.NewFunction(r.print))
	return r
}

// State returns the underlying Lua state.
func (r *Runtime) State() *lua.LState {
	return r.L
}

// Attach installs the queue's extension kinds and exposes q under name.
func (r *Runtime) Attach(name string, q *queue.Queue) error {
	if name == "" {
		return errors.WrapInvalid(errors.ErrMissingConfig, "Runtime", "Attach", "global name check")
	}
	if r.closed {
		return errors.WrapInvalid(errors.ErrNotStarted, "Runtime", "Attach", "state check")
	}
	if err := RegisterExtensions(r.L, q.Registry()); err != nil {
		return errors.Wrap(err, "Runtime", "Attach", "register extensions")
	}

	bound := Bind(r.L)
	Expose(r.L, name, q)

	r.logger.Debug("Queue exposed to Lua",
		"global", name,
		"queue", q.Name(),
		"bound", bound,
		"extensions", q.Registry().Kinds())
	return nil
}

// Run executes source. Cancelling ctx aborts the script.
func (r *Runtime) Run(ctx context.Context, source string) error {
	return r.exec(ctx, "Run", func() error { return r.L.DoString(source) })
}

// RunFile executes the script at path.
func (r *Runtime) RunFile(ctx context.Context, path string) error {
	return r.exec(ctx, "RunFile", func() error { return r.L.DoFile(path) })
}

func (r *Runtime) exec(ctx context.Context, method string, fn func() error) error {
	if r.closed {
		return errors.WrapInvalid(errors.ErrNotStarted, "Runtime", method, "state check")
	}

	r.L.SetContext(ctx)
	defer r.L.RemoveContext()

	if err := fn(); err != nil {
		if ctx.Err() != nil {
			return errors.WrapTransient(ctx.Err(), "Runtime", method, "execute script")
		}
		return errors.WrapFatal(fmt.Errorf("%w: %w", errors.ErrScriptFailed, err), "Runtime", method, "execute script")
	}
	return nil
}

// Close releases the Lua state. It is safe to call more than once.
func (r *Runtime) Close() {
	if r.closed {
		return
	}
	r.closed = true
	r.L.Close()
}

func (r *Runtime) print(L *lua.LState) int {
	top := L.GetTop()
	parts := make([]string, 0, top)
	for i := 1; i <= top; i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	r.logger.Info(strings.Join(parts, "\t"))
	return 0
}
