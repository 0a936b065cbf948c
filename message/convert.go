package message

import (
	"fmt"

	"github.com/c360/msgbridge/errors"
)

// ArrayBase is the first index assigned to slice elements by From. It matches
// the Lua convention so arrays built on either side index the same way.
const ArrayBase = 1

// From converts a Go literal into a Value, building children before parents.
//
// Accepted inputs:
//   - Value, Message
//   - bool
//   - string
//   - every integer and float type (always Number, never Boolean or Key)
//   - Extension (owned)
//   - Map, map[Key]any, map[string]any, map[int]any
//   - []any, as a Map keyed from ArrayBase
//
// nil and any other type fail with ErrInvalidValue or ErrUnsupportedType.
func From(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Value{}, errors.WrapInvalid(errors.ErrInvalidValue, "message", "From", "convert nil")
	case Value:
		if !t.IsValid() {
			return Value{}, errors.WrapInvalid(errors.ErrInvalidValue, "message", "From", "convert zero Value")
		}
		return t, nil
	case Message:
		return From(t.Value)
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case float64:
		return Number(t), nil
	case float32:
		return Number(float64(t)), nil
	case int:
		return Number(float64(t)), nil
	case int8:
		return Number(float64(t)), nil
	case int16:
		return Number(float64(t)), nil
	case int32:
		return Number(float64(t)), nil
	case int64:
		return Number(float64(t)), nil
	case uint:
		return Number(float64(t)), nil
	case uint8:
		return Number(float64(t)), nil
	case uint16:
		return Number(float64(t)), nil
	case uint32:
		return Number(float64(t)), nil
	case uint64:
		return Number(float64(t)), nil
	case Extension:
		return Ext(t), nil
	case Map:
		return MapOf(t), nil
	case map[Key]any:
		m := make(Map, len(t))
		for k, child := range t {
			if err := setConverted(m, k, child); err != nil {
				return Value{}, err
			}
		}
		return MapOf(m), nil
	case map[string]any:
		m := make(Map, len(t))
		for k, child := range t {
			if err := setConverted(m, StrKey(k), child); err != nil {
				return Value{}, err
			}
		}
		return MapOf(m), nil
	case map[int]any:
		m := make(Map, len(t))
		for k, child := range t {
			if err := setConverted(m, IntKey(k), child); err != nil {
				return Value{}, err
			}
		}
		return MapOf(m), nil
	case []any:
		m := make(Map, len(t))
		for i, child := range t {
			if err := setConverted(m, IntKey(i+ArrayBase), child); err != nil {
				return Value{}, err
			}
		}
		return MapOf(m), nil
	default:
		return Value{}, errors.WrapInvalid(errors.ErrUnsupportedType, "message", "From",
			fmt.Sprintf("convert %T", x))
	}
}

// MustFrom is like From but panics on error. Intended for literals in tests
// and package initialisation.
func MustFrom(x any) Value {
	v, err := From(x)
	if err != nil {
		panic(err)
	}
	return v
}

func setConverted(m Map, k Key, child any) error {
	if !k.IsValid() {
		return errors.WrapInvalid(errors.ErrInvalidValue, "message", "From", "convert invalid key")
	}
	v, err := From(child)
	if err != nil {
		return errors.Wrap(err, "message", "From", "convert entry "+k.String())
	}
	m[k] = v
	return nil
}
