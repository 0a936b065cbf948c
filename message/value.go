package message

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/c360/msgbridge/errors"
)

// Kind identifies which arm of the Value union is populated.
type Kind uint8

const (
	// KindInvalid is the zero Value. It is rejected by the queue.
	KindInvalid Kind = iota
	// KindBool holds a bool.
	KindBool
	// KindNumber holds a float64.
	KindNumber
	// KindString holds a string.
	KindString
	// KindMap holds a Map.
	KindMap
	// KindExtension holds an owned Extension payload.
	KindExtension
	// KindReference holds a borrowed Extension that must be copied before it
	// is stored. It never survives a push.
	KindReference
)

// String returns a human-readable representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindMap:
		return "map"
	case KindExtension:
		return "extension"
	case KindReference:
		return "reference"
	default:
		return "invalid"
	}
}

// Map is the associative arm of Value. Keys are unique; iteration order is
// irrelevant.
type Map map[Key]Value

// SortedKeys returns the map keys with integer keys first, in ascending order.
func (m Map) SortedKeys() []Key {
	keys := make([]Key, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].less(keys[j]) })
	return keys
}

// reference marks a borrowed extension. Kept unexported so that As can never
// hand out the borrowed pointer as if it were owned.
type reference struct {
	target Extension
}

// Value is a recursive tagged union: Boolean, Number, String, Extension, Map,
// or a transient Reference.
//
// Arms are never inferred from one another. A bool is never a Number, and an
// integer only becomes a Key when passed to IntKey. Extraction is structural:
// asking for a different arm than the one populated fails with a
// TypeMismatchError.
type Value struct {
	kind Kind
	data any
}

// Bool returns a Boolean value.
func Bool(b bool) Value {
	return Value{kind: KindBool, data: b}
}

// Number returns a Number value.
func Number(n float64) Value {
	return Value{kind: KindNumber, data: n}
}

// String returns a String value.
func String(s string) Value {
	return Value{kind: KindString, data: s}
}

// MapOf returns a Map value. A nil map is treated as empty.
func MapOf(m Map) Value {
	if m == nil {
		m = Map{}
	}
	return Value{kind: KindMap, data: m}
}

// Ext returns a value holding x. A queue stores a clone of x at push time,
// never x itself. A nil extension yields the invalid Value.
func Ext(x Extension) Value {
	if x == nil {
		return Value{}
	}
	return Value{kind: KindExtension, data: x}
}

// Reference returns a value borrowing x. The queue replaces it with an owned
// clone at push time; the caller may discard or mutate x once push returns.
func Reference(x Extension) Value {
	if x == nil {
		return Value{}
	}
	return Value{kind: KindReference, data: reference{target: x}}
}

// Kind returns the populated arm.
func (v Value) Kind() Kind {
	return v.kind
}

// IsValid reports whether v was built by one of the constructors.
func (v Value) IsValid() bool {
	return v.kind != KindInvalid
}

func (v Value) node() (Value, error) {
	return v, nil
}

func (v Value) mismatch(want string) error {
	return errors.WrapInvalid(&TypeMismatchError{Want: want, Have: v.kind},
		"Value", "As", "extract "+want)
}

// AsBool returns the Boolean payload.
func (v Value) AsBool() (bool, error) {
	b, ok := v.data.(bool)
	if !ok || v.kind != KindBool {
		return false, v.mismatch(KindBool.String())
	}
	return b, nil
}

// AsNumber returns the Number payload.
func (v Value) AsNumber() (float64, error) {
	n, ok := v.data.(float64)
	if !ok || v.kind != KindNumber {
		return 0, v.mismatch(KindNumber.String())
	}
	return n, nil
}

// AsString returns the String payload.
func (v Value) AsString() (string, error) {
	s, ok := v.data.(string)
	if !ok || v.kind != KindString {
		return "", v.mismatch(KindString.String())
	}
	return s, nil
}

// AsMap returns the Map payload. The map is shared with v, callers must not
// modify it.
func (v Value) AsMap() (Map, error) {
	m, ok := v.data.(Map)
	if !ok || v.kind != KindMap {
		return nil, v.mismatch(KindMap.String())
	}
	return m, nil
}

// AsExtension returns the owned Extension payload. A Reference is not owned
// and fails with TypeMismatch; use Referent before transfer.
func (v Value) AsExtension() (Extension, error) {
	x, ok := v.data.(Extension)
	if !ok || v.kind != KindExtension {
		return nil, v.mismatch(KindExtension.String())
	}
	return x, nil
}

// Referent returns the borrowed extension of a Reference value.
func (v Value) Referent() (Extension, bool) {
	r, ok := v.data.(reference)
	if !ok {
		return nil, false
	}
	return r.target, true
}

// Get navigates into a Map value. See Accessor.
func (v Value) Get(key Key) Accessor {
	return Accessor{v: v}.Get(key)
}

// Field is shorthand for Get(StrKey(name)).
func (v Value) Field(name string) Accessor {
	return v.Get(StrKey(name))
}

// Index is shorthand for Get(IntKey(i)).
func (v Value) Index(i int) Accessor {
	return v.Get(IntKey(i))
}

// String renders v for logs and test failures. It is not a serialization
// format.
func (v Value) String() string {
	var b strings.Builder
	v.format(&b)
	return b.String()
}

func (v Value) format(b *strings.Builder) {
	switch v.kind {
	case KindBool:
		b.WriteString(strconv.FormatBool(v.data.(bool)))
	case KindNumber:
		b.WriteString(strconv.FormatFloat(v.data.(float64), 'g', -1, 64))
	case KindString:
		b.WriteString(strconv.Quote(v.data.(string)))
	case KindMap:
		m := v.data.(Map)
		b.WriteByte('{')
		for i, k := range m.SortedKeys() {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(k.String())
			b.WriteString(": ")
			m[k].format(b)
		}
		b.WriteByte('}')
	case KindExtension:
		fmt.Fprintf(b, "<%s>", v.data.(Extension).ExtensionKind())
	case KindReference:
		fmt.Fprintf(b, "<&%s>", v.data.(reference).target.ExtensionKind())
	default:
		b.WriteString("<invalid>")
	}
}

// Node is anything that resolves to a Value: a Value, a Message or an
// Accessor. It is sealed to this package.
type Node interface {
	node() (Value, error)
}

// As extracts the payload of n as T. T must be the exact payload type of the
// populated arm: bool, float64, string, Map, or the concrete extension type
// (or an interface it implements). There is no numeric coercion, so
// As[int] on a Number fails.
func As[T any](n Node) (T, error) {
	var zero T

	v, err := n.node()
	if err != nil {
		return zero, err
	}

	if v.kind == KindInvalid || v.kind == KindReference {
		return zero, v.mismatch(reflect.TypeFor[T]().String())
	}

	t, ok := v.data.(T)
	if !ok {
		return zero, v.mismatch(reflect.TypeFor[T]().String())
	}
	return t, nil
}
