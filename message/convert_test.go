package message

import (
	stderrors "errors"
	"testing"

	"github.com/c360/msgbridge/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromPrimitives(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  Value
	}{
		{"bool", true, Bool(true)},
		{"string", "s", String("s")},
		{"float64", 1.5, Number(1.5)},
		{"float32", float32(0.5), Number(0.5)},
		{"int", 7, Number(7)},
		{"int8", int8(-1), Number(-1)},
		{"int16", int16(2), Number(2)},
		{"int32", int32(3), Number(3)},
		{"int64", int64(4), Number(4)},
		{"uint", uint(5), Number(5)},
		{"uint8", uint8(6), Number(6)},
		{"uint16", uint16(7), Number(7)},
		{"uint32", uint32(8), Number(8)},
		{"uint64", uint64(9), Number(9)},
		{"value", String("v"), String("v")},
		{"message", New(Bool(false)), Bool(false)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := From(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// Booleans and numbers are distinct arms; integers never become keys or
// booleans on their own.
func TestFromPrecedence(t *testing.T) {
	v := MustFrom(1)
	assert.Equal(t, KindNumber, v.Kind())
	_, err := v.AsBool()
	assert.True(t, stderrors.Is(err, errors.ErrTypeMismatch))

	v = MustFrom(true)
	assert.Equal(t, KindBool, v.Kind())
	_, err = v.AsNumber()
	assert.True(t, stderrors.Is(err, errors.ErrTypeMismatch))

	v = MustFrom(map[string]any{"1": 1})
	_, err = v.Index(1).AsNumber()
	assert.True(t, stderrors.Is(err, errors.ErrKeyNotFound))
}

func TestFromMaps(t *testing.T) {
	v, err := From(map[Key]any{
		StrKey("type"):   "X",
		StrKey("nested"): map[string]any{"flag": true},
		IntKey(7):        3.1,
	})
	require.NoError(t, err)
	assert.Equal(t, nestedSample(), v)

	v, err = From(map[int]any{1: "a", 2: map[int]any{3: false}})
	require.NoError(t, err)
	flag, err := v.Index(2).Index(3).AsBool()
	require.NoError(t, err)
	assert.False(t, flag)

	m := Map{StrKey("k"): Number(1)}
	v, err = From(m)
	require.NoError(t, err)
	assert.Equal(t, MapOf(m), v)
}

func TestFromArray(t *testing.T) {
	v, err := From([]any{"a", "b", []any{true}})
	require.NoError(t, err)

	m, err := v.AsMap()
	require.NoError(t, err)
	assert.Len(t, m, 3)

	s, err := v.Index(ArrayBase).AsString()
	require.NoError(t, err)
	assert.Equal(t, "a", s)

	s, err = v.Index(ArrayBase + 1).AsString()
	require.NoError(t, err)
	assert.Equal(t, "b", s)

	b, err := v.Index(3).Index(1).AsBool()
	require.NoError(t, err)
	assert.True(t, b)

	_, err = v.Index(0).AsString()
	assert.True(t, stderrors.Is(err, errors.ErrKeyNotFound))
}

func TestFromExtension(t *testing.T) {
	x := &blob{data: []byte("z")}
	v, err := From(x)
	require.NoError(t, err)
	assert.Equal(t, KindExtension, v.Kind())

	got, err := As[*blob](v)
	require.NoError(t, err)
	assert.Same(t, x, got)
}

func TestFromErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		sentinel error
	}{
		{"nil", nil, errors.ErrInvalidValue},
		{"zero value", Value{}, errors.ErrInvalidValue},
		{"struct", struct{}{}, errors.ErrUnsupportedType},
		{"func", func() {}, errors.ErrUnsupportedType},
		{"typed slice", []string{"a"}, errors.ErrUnsupportedType},
		{"nested nil", map[string]any{"a": nil}, errors.ErrInvalidValue},
		{"nested unsupported", []any{1, complex(1, 2)}, errors.ErrUnsupportedType},
		{"invalid key", map[Key]any{{}: 1}, errors.ErrInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := From(tt.input)
			require.Error(t, err)
			assert.True(t, stderrors.Is(err, tt.sentinel))
			assert.True(t, errors.IsInvalid(err))
		})
	}
}

func TestMustFromPanics(t *testing.T) {
	assert.Panics(t, func() { MustFrom(nil) })
	assert.NotPanics(t, func() { MustFrom("ok") })
}
