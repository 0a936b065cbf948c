package message

import (
	stderrors "errors"
	"testing"

	"github.com/c360/msgbridge/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blob is a minimal extension for in-package tests.
type blob struct {
	data []byte
}

func (b *blob) ExtensionKind() string { return "blob" }

func (b *blob) Clone() (Extension, error) {
	return &blob{data: append([]byte(nil), b.data...)}, nil
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindInvalid, "invalid"},
		{KindBool, "boolean"},
		{KindNumber, "number"},
		{KindString, "string"},
		{KindMap, "map"},
		{KindExtension, "extension"},
		{KindReference, "reference"},
		{Kind(99), "invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.String())
		})
	}
}

func TestConstructors(t *testing.T) {
	b := &blob{data: []byte("x")}

	tests := []struct {
		name  string
		value Value
		kind  Kind
	}{
		{"bool", Bool(true), KindBool},
		{"number", Number(1.5), KindNumber},
		{"string", String("s"), KindString},
		{"map", MapOf(Map{StrKey("a"): Bool(false)}), KindMap},
		{"nil map", MapOf(nil), KindMap},
		{"extension", Ext(b), KindExtension},
		{"reference", Reference(b), KindReference},
		{"nil extension", Ext(nil), KindInvalid},
		{"nil reference", Reference(nil), KindInvalid},
		{"zero", Value{}, KindInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.value.Kind())
			assert.Equal(t, tt.kind != KindInvalid, tt.value.IsValid())
		})
	}
}

func TestNilMapIsEmpty(t *testing.T) {
	m, err := MapOf(nil).AsMap()
	require.NoError(t, err)
	assert.NotNil(t, m)
	assert.Empty(t, m)
}

func TestTypedExtraction(t *testing.T) {
	b, err := Bool(true).AsBool()
	require.NoError(t, err)
	assert.True(t, b)

	n, err := Number(3.1).AsNumber()
	require.NoError(t, err)
	assert.Equal(t, 3.1, n)

	s, err := String("X").AsString()
	require.NoError(t, err)
	assert.Equal(t, "X", s)

	x := &blob{data: []byte("payload")}
	got, err := Ext(x).AsExtension()
	require.NoError(t, err)
	assert.Same(t, x, got)
}

// Every arm asked for every other arm must fail with TypeMismatch and return
// the zero value.
func TestTypeMismatchLaw(t *testing.T) {
	values := map[Kind]Value{
		KindBool:      Bool(true),
		KindNumber:    Number(1),
		KindString:    String("1"),
		KindMap:       MapOf(Map{IntKey(1): Number(1)}),
		KindExtension: Ext(&blob{}),
	}

	extract := map[Kind]func(Value) (any, error){
		KindBool:      func(v Value) (any, error) { return v.AsBool() },
		KindNumber:    func(v Value) (any, error) { return v.AsNumber() },
		KindString:    func(v Value) (any, error) { return v.AsString() },
		KindMap:       func(v Value) (any, error) { return v.AsMap() },
		KindExtension: func(v Value) (any, error) { return v.AsExtension() },
	}

	zero := map[Kind]any{
		KindBool:      false,
		KindNumber:    float64(0),
		KindString:    "",
		KindMap:       Map(nil),
		KindExtension: Extension(nil),
	}

	for have, v := range values {
		for want, fn := range extract {
			if have == want {
				continue
			}
			t.Run(have.String()+"_as_"+want.String(), func(t *testing.T) {
				got, err := fn(v)
				require.Error(t, err)
				assert.True(t, stderrors.Is(err, errors.ErrTypeMismatch))
				assert.True(t, errors.IsInvalid(err))
				assert.Equal(t, zero[want], got)

				var tm *TypeMismatchError
				require.True(t, stderrors.As(err, &tm))
				assert.Equal(t, have, tm.Have)
				assert.Equal(t, want.String(), tm.Want)
			})
		}
	}
}

func TestNoNumericCoercion(t *testing.T) {
	_, err := Bool(true).AsNumber()
	assert.True(t, stderrors.Is(err, errors.ErrTypeMismatch))

	_, err = Number(1).AsBool()
	assert.True(t, stderrors.Is(err, errors.ErrTypeMismatch))

	_, err = As[int](Number(1))
	assert.True(t, stderrors.Is(err, errors.ErrTypeMismatch))

	_, err = As[string](Number(1))
	assert.True(t, stderrors.Is(err, errors.ErrTypeMismatch))
}

func TestGenericAs(t *testing.T) {
	b, err := As[bool](Bool(true))
	require.NoError(t, err)
	assert.True(t, b)

	n, err := As[float64](Number(2))
	require.NoError(t, err)
	assert.Equal(t, 2.0, n)

	s, err := As[string](String("x"))
	require.NoError(t, err)
	assert.Equal(t, "x", s)

	m, err := As[Map](MapOf(Map{StrKey("k"): Bool(true)}))
	require.NoError(t, err)
	assert.Len(t, m, 1)

	x := &blob{data: []byte("y")}
	got, err := As[*blob](Ext(x))
	require.NoError(t, err)
	assert.Same(t, x, got)

	ext, err := As[Extension](Ext(x))
	require.NoError(t, err)
	assert.Same(t, x, ext.(*blob))
}

func TestAsRejectsReference(t *testing.T) {
	x := &blob{}
	ref := Reference(x)

	_, err := As[*blob](ref)
	assert.True(t, stderrors.Is(err, errors.ErrTypeMismatch))

	_, err = ref.AsExtension()
	assert.True(t, stderrors.Is(err, errors.ErrTypeMismatch))

	target, ok := ref.Referent()
	require.True(t, ok)
	assert.Same(t, x, target.(*blob))

	_, ok = Ext(x).Referent()
	assert.False(t, ok)
}

func TestAsOnInvalid(t *testing.T) {
	_, err := As[bool](Value{})
	assert.True(t, stderrors.Is(err, errors.ErrTypeMismatch))
}

func TestAsPropagatesAccessorError(t *testing.T) {
	_, err := As[string](String("x").Field("a"))
	assert.True(t, stderrors.Is(err, errors.ErrTypeMismatch))

	_, err = As[string](MapOf(nil).Field("a"))
	assert.True(t, stderrors.Is(err, errors.ErrKeyNotFound))
}

func TestValueString(t *testing.T) {
	v := MapOf(Map{
		StrKey("b"): Bool(true),
		IntKey(2):   Number(1.5),
		StrKey("a"): String("x"),
		IntKey(1):   Ext(&blob{}),
		IntKey(-1):  Reference(&blob{}),
	})

	assert.Equal(t, `{-1: <&blob>, 1: <blob>, 2: 1.5, "a": "x", "b": true}`, v.String())
	assert.Equal(t, "<invalid>", Value{}.String())
}

func TestMessage(t *testing.T) {
	var empty Message
	assert.True(t, empty.IsZero())

	msg, err := NewFrom(map[string]any{"type": "X"})
	require.NoError(t, err)
	assert.False(t, msg.IsZero())
	assert.Equal(t, KindMap, msg.Root().Kind())

	s, err := msg.Field("type").AsString()
	require.NoError(t, err)
	assert.Equal(t, "X", s)

	s, err = As[string](msg.Field("type"))
	require.NoError(t, err)
	assert.Equal(t, "X", s)

	m, err := As[Map](msg)
	require.NoError(t, err)
	assert.Len(t, m, 1)

	_, err = NewFrom(nil)
	assert.True(t, stderrors.Is(err, errors.ErrInvalidValue))

	assert.Equal(t, KindNumber, New(Number(1)).Kind())
}
