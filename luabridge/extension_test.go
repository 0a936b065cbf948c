package luabridge

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"

	"github.com/c360/msgbridge/errors"
	"github.com/c360/msgbridge/message"
	"github.com/c360/msgbridge/queue"
	"github.com/c360/msgbridge/testutil"
)

func TestExtensionConstructorAndFields(t *testing.T) {
	L, q := newBoundState(t)

	require.NoError(t, L.DoString(`
		local p = Point(1, 2, "origin")
		assert(p.x == 1)
		assert(p.y == 2)
		assert(p.label == "origin")
		assert(p.missing == nil)
		assert(string.find(tostring(p), "Point(", 1, true) == 1)

		local m = Mock("payload")
		assert(m.payload == "payload")

		lqueue:push({ where = p, note = "owned" })
	`))

	msg, ok := q.Pop()
	require.True(t, ok)
	p, err := message.As[*testutil.Point](msg.Field("where"))
	require.NoError(t, err)
	assert.Equal(t, 1.0, p.X)
	assert.Equal(t, 2.0, p.Y)
	assert.Equal(t, "origin", p.LabelText())
}

func TestExtensionConstructorErrors(t *testing.T) {
	L, q := newBoundState(t)

	err := L.DoString(`Point("a", 2)`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "type mismatch")

	err = L.DoString(`Point(1)`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "construct")

	err = L.DoString(`Point(function() end, 1)`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported type")

	assert.Equal(t, 0, q.Size())
}

func TestPushedExtensionIsCloned(t *testing.T) {
	L, q := newBoundState(t)

	require.NoError(t, L.DoString(`p = Point(3, 4, "lua"); lqueue:push(p); lqueue:push(p)`))

	original := L.GetGlobal("p").(*lua.LUserData).Value.(*testutil.Point)

	first, ok := q.Pop()
	require.True(t, ok)
	second, ok := q.Pop()
	require.True(t, ok)

	a, err := message.As[*testutil.Point](first)
	require.NoError(t, err)
	b, err := message.As[*testutil.Point](second)
	require.NoError(t, err)
	assert.NotSame(t, original, a)
	assert.NotSame(t, original, b)
	assert.NotSame(t, a, b)
	assert.Equal(t, int64(2), q.Stats().CopiesMade())

	// a consumer editing its message touches neither the other message nor Lua
	a.X = 99
	*a.Label = "consumer"
	assert.Equal(t, 3.0, b.X)
	assert.Equal(t, "lua", b.LabelText())
	require.NoError(t, L.DoString(`assert(p.x == 3); assert(p.label == "lua")`))
}

func TestReferenceFromLuaIsCopied(t *testing.T) {
	L, q := newBoundState(t)

	require.NoError(t, L.DoString(`
		p = Point(3, 4, "lua")
		r = reference(p)
		assert(r.x == 3)
		assert(string.find(tostring(r), "&Point(", 1, true) == 1)
		lqueue:push(r)
	`))

	original := L.GetGlobal("p").(*lua.LUserData).Value.(*testutil.Point)
	original.X = 99
	*original.Label = "changed"

	msg, ok := q.Pop()
	require.True(t, ok)
	got, err := message.As[*testutil.Point](msg)
	require.NoError(t, err)
	assert.NotSame(t, original, got)
	assert.Equal(t, 3.0, got.X)
	assert.Equal(t, "lua", got.LabelText())
	assert.Equal(t, int64(1), q.Stats().CopiesMade())

	// reference() leaves its argument owned
	assert.False(t, isReference(L.GetGlobal("p").(*lua.LUserData)))
	assert.True(t, isReference(L.GetGlobal("r").(*lua.LUserData)))
}

func TestReferenceFromGoIsCopied(t *testing.T) {
	L, q := newBoundState(t)

	p := testutil.NewPoint(1, 2, "borrowed")
	L.SetGlobal("pt", NewReference(L, p))
	require.NoError(t, L.DoString(`lqueue:push({ p = pt, n = 1 })`))

	// the producer keeps mutating its object after the push
	p.X = 100
	*p.Label = "mutated"

	msg, ok := q.Pop()
	require.True(t, ok)
	got, err := message.As[*testutil.Point](msg.Field("p"))
	require.NoError(t, err)
	assert.NotSame(t, p, got)
	assert.Equal(t, 1.0, got.X)
	assert.Equal(t, "borrowed", got.LabelText())
	assert.NotSame(t, p.Label, got.Label)
}

func TestMarkReference(t *testing.T) {
	L, q := newBoundState(t)

	p := testutil.NewPoint(5, 6, "marked")
	ud := NewExtension(L, p)
	assert.False(t, isReference(ud))

	v, err := FromLua(ud)
	require.NoError(t, err)
	assert.Equal(t, message.KindReference, v.Kind(), "userdata always crosses as borrowed")

	require.NoError(t, MarkReference(L, ud))
	assert.True(t, isReference(ud))

	v, err = FromLua(ud)
	require.NoError(t, err)
	assert.Equal(t, message.KindReference, v.Kind())

	L.SetGlobal("marked", ud)
	require.NoError(t, L.DoString(`assert(marked.label == "marked"); lqueue:push(marked)`))
	msg, ok := q.Pop()
	require.True(t, ok)
	got, err := message.As[*testutil.Point](msg)
	require.NoError(t, err)
	assert.NotSame(t, p, got)

	plain := L.NewUserData()
	plain.Value = "not an extension"
	err = MarkReference(L, plain)
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrUnsupportedType))
	assert.True(t, errors.IsInvalid(err))
}

func TestCopyFailureSurfacesInLua(t *testing.T) {
	L, q := newBoundState(t)

	failing := testutil.NewFailingExtension("x")
	L.SetGlobal("bad", NewReference(L, failing))

	err := L.DoString(`lqueue:push({ ok = true, bad = bad })`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "copy failed")
	assert.Equal(t, 0, q.Size())
	assert.Equal(t, 1, failing.Calls())
	assert.Equal(t, int64(1), q.Stats().CopyFailures())
}

func TestUnknownExtensionKindRejected(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	onlyPoint := message.NewRegistry()
	require.NoError(t, onlyPoint.Register(testutil.PointRegistration()))
	q, err := queue.New(queue.WithExtensions(onlyPoint))
	require.NoError(t, err)

	require.NoError(t, RegisterExtensions(L, q.Registry()))
	Expose(L, "lqueue", q)

	assert.Equal(t, lua.LNil, L.GetGlobal("Mock"), "no constructor for unregistered kinds")

	L.SetGlobal("m", NewExtension(L, testutil.NewMockExtension("x")))
	err = L.DoString(`lqueue:push(m)`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown extension kind")
	assert.Equal(t, 0, q.Size())
}

func TestRegisterExtensionsRequiresRegistry(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	err := RegisterExtensions(L, nil)
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrMissingConfig))
}

func TestRegisterExtensionsIsRepeatable(t *testing.T) {
	L, _ := newBoundState(t)

	registry := testutil.NewTestRegistry()
	require.NoError(t, RegisterExtensions(L, registry))
	require.NoError(t, RegisterExtensions(L, registry))

	require.NoError(t, L.DoString(`
		local r = reference(Point(1, 1))
		assert(getmetatable(r).__transfer == "copy")
		assert(getmetatable(Point(1, 1)).__transfer == nil)
	`))
}
