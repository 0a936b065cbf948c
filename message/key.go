package message

import (
	"strconv"
)

// KeyKind identifies which arm of the Key union is populated.
type KeyKind uint8

const (
	// KeyInvalid is the zero Key. It never indexes a Map.
	KeyInvalid KeyKind = iota
	// KeyInt is an integer key.
	KeyInt
	// KeyString is a string key.
	KeyString
)

// String returns a human-readable representation of the key kind.
func (k KeyKind) String() string {
	switch k {
	case KeyInt:
		return "integer"
	case KeyString:
		return "string"
	default:
		return "invalid"
	}
}

// Key is the closed {Integer, String} union used to index a Map.
//
// Key is comparable, so it can be used directly as a Go map key. Two keys are
// equal only when both the arm and the payload match: IntKey(1) and StrKey("1")
// are different keys.
type Key struct {
	kind KeyKind
	i    int
	s    string
}

// IntKey returns an integer key.
func IntKey(i int) Key {
	return Key{kind: KeyInt, i: i}
}

// StrKey returns a string key.
func StrKey(s string) Key {
	return Key{kind: KeyString, s: s}
}

// Kind returns the populated arm.
func (k Key) Kind() KeyKind {
	return k.kind
}

// IsValid reports whether the key was built with IntKey or StrKey.
func (k Key) IsValid() bool {
	return k.kind == KeyInt || k.kind == KeyString
}

// Int returns the integer payload and true if k is an integer key.
func (k Key) Int() (int, bool) {
	return k.i, k.kind == KeyInt
}

// Str returns the string payload and true if k is a string key.
func (k Key) Str() (string, bool) {
	return k.s, k.kind == KeyString
}

// String formats integer keys bare and string keys quoted, e.g. 7 and "type".
func (k Key) String() string {
	switch k.kind {
	case KeyInt:
		return strconv.Itoa(k.i)
	case KeyString:
		return strconv.Quote(k.s)
	default:
		return "<invalid key>"
	}
}

// less orders integer keys before string keys, then by payload.
func (k Key) less(other Key) bool {
	if k.kind != other.kind {
		return k.kind < other.kind
	}
	if k.kind == KeyInt {
		return k.i < other.i
	}
	return k.s < other.s
}
