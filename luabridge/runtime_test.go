package luabridge

import (
	"bytes"
	"context"
	stderrors "errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/msgbridge/errors"
	"github.com/c360/msgbridge/message"
	"github.com/c360/msgbridge/queue"
	"github.com/c360/msgbridge/testutil"
)

func newTestRuntime(t *testing.T) (*Runtime, *queue.Queue, *bytes.Buffer) {
	t.Helper()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	q, err := queue.New(queue.WithName("rt"), queue.WithExtensions(testutil.NewTestRegistry()))
	require.NoError(t, err)

	rt := NewRuntime(logger)
	t.Cleanup(rt.Close)
	require.NoError(t, rt.Attach("q", q))
	return rt, q, &buf
}

func TestRuntimeRun(t *testing.T) {
	rt, q, buf := newTestRuntime(t)

	require.NoError(t, rt.Run(context.Background(), `
		q:push({ from = "lua", p = Point(1, 2) })
		print("pushed", q:size())
	`))

	assert.Equal(t, 1, q.Size())
	assert.Contains(t, buf.String(), "pushed")
	assert.Contains(t, buf.String(), "Queue exposed to Lua")

	msg, ok := q.Pop()
	require.True(t, ok)
	from, err := msg.Field("from").AsString()
	require.NoError(t, err)
	assert.Equal(t, "lua", from)
	_, err = message.As[*testutil.Point](msg.Field("p"))
	assert.NoError(t, err)
}

func TestRuntimeRunFile(t *testing.T) {
	rt, q, _ := newTestRuntime(t)

	path := filepath.Join(t.TempDir(), "producer.lua")
	require.NoError(t, os.WriteFile(path, []byte(`for i = 1, 3 do q:push(i) end`), 0o644))

	require.NoError(t, rt.RunFile(context.Background(), path))
	assert.Equal(t, 3, q.Size())

	err := rt.RunFile(context.Background(), filepath.Join(t.TempDir(), "missing.lua"))
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrScriptFailed))
}

func TestRuntimeScriptError(t *testing.T) {
	rt, _, _ := newTestRuntime(t)

	err := rt.Run(context.Background(), `q:push(print)`)
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrScriptFailed))
	assert.True(t, errors.IsFatal(err))
	assert.Contains(t, err.Error(), "unsupported type")

	// the state stays usable
	require.NoError(t, rt.Run(context.Background(), `q:push(1)`))
}

func TestRuntimeCancellation(t *testing.T) {
	rt, _, _ := newTestRuntime(t)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := rt.Run(ctx, `while true do end`)
	require.Error(t, err)
	assert.True(t, errors.IsTransient(err))
	assert.True(t, stderrors.Is(err, context.DeadlineExceeded))
}

func TestRuntimeClose(t *testing.T) {
	rt, q, _ := newTestRuntime(t)

	rt.Close()
	rt.Close()

	err := rt.Run(context.Background(), `q:push(1)`)
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))

	err = rt.Attach("again", q)
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrNotStarted))
}

func TestRuntimeAttachValidation(t *testing.T) {
	rt := NewRuntime(nil)
	defer rt.Close()

	q, err := queue.New()
	require.NoError(t, err)

	err = rt.Attach("", q)
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrMissingConfig))

	require.NoError(t, rt.Attach("a", q))
	require.NoError(t, rt.Attach("b", q))
	require.NoError(t, rt.Run(context.Background(), `a:push(1); assert(b:size() == 1)`))
	assert.NotNil(t, rt.State())
}
