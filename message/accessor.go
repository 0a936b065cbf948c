package message

import (
	"maps"

	"github.com/c360/msgbridge/errors"
)

// Accessor is a read-only view of a subtree, produced by Get.
//
// An Accessor carries the first error met while navigating, so chains read
// left to right and report the failure at the end:
//
//	flag, err := msg.Field("nested").Field("flag").AsBool()
//
// A navigation error names the whole path walked, e.g. `"nested"."flag"`.
//
// Accessors never mutate the tree and never create missing keys. Calling Get
// twice with the same key returns equal accessors.
type Accessor struct {
	v    Value
	path string
	err  error
}

// Get looks up key in the referenced Map. It fails with KeyNotFound when the
// key is absent and with TypeMismatch when the referenced value is not a Map.
func (a Accessor) Get(key Key) Accessor {
	if a.err != nil {
		return a
	}

	path := key.String()
	if a.path != "" {
		path = a.path + "." + path
	}

	m, ok := a.v.data.(Map)
	if !ok || a.v.kind != KindMap {
		return Accessor{path: path, err: errors.WrapInvalid(
			&TypeMismatchError{Want: KindMap.String(), Have: a.v.kind},
			"Accessor", "Get", "lookup "+path)}
	}

	child, ok := m[key]
	if !ok {
		return Accessor{path: path, err: errors.WrapInvalid(
			&KeyNotFoundError{Key: key},
			"Accessor", "Get", "lookup "+path)}
	}

	return Accessor{v: child, path: path}
}

// Path returns the keys walked so far, dot separated.
func (a Accessor) Path() string {
	return a.path
}

// Field is shorthand for Get(StrKey(name)).
func (a Accessor) Field(name string) Accessor {
	return a.Get(StrKey(name))
}

// Index is shorthand for Get(IntKey(i)).
func (a Accessor) Index(i int) Accessor {
	return a.Get(IntKey(i))
}

// Err returns the first navigation error, if any.
func (a Accessor) Err() error {
	return a.err
}

// Value returns the referenced subtree.
func (a Accessor) Value() (Value, error) {
	return a.v, a.err
}

// Kind returns the kind of the referenced value, or KindInvalid after an error.
func (a Accessor) Kind() Kind {
	if a.err != nil {
		return KindInvalid
	}
	return a.v.kind
}

func (a Accessor) node() (Value, error) {
	return a.v, a.err
}

// AsBool returns the referenced Boolean.
func (a Accessor) AsBool() (bool, error) {
	if a.err != nil {
		return false, a.err
	}
	return a.v.AsBool()
}

// AsNumber returns the referenced Number.
func (a Accessor) AsNumber() (float64, error) {
	if a.err != nil {
		return 0, a.err
	}
	return a.v.AsNumber()
}

// AsString returns the referenced String.
func (a Accessor) AsString() (string, error) {
	if a.err != nil {
		return "", a.err
	}
	return a.v.AsString()
}

// AsMap returns a copy of the referenced Map. Adding or removing entries in
// the copy leaves the tree unchanged.
func (a Accessor) AsMap() (Map, error) {
	if a.err != nil {
		return nil, a.err
	}
	m, err := a.v.AsMap()
	if err != nil {
		return nil, err
	}
	return maps.Clone(m), nil
}

// AsExtension returns the referenced owned Extension.
func (a Accessor) AsExtension() (Extension, error) {
	if a.err != nil {
		return nil, a.err
	}
	return a.v.AsExtension()
}
