package luabridge

import (
	"fmt"
	"math"

	lua "github.com/yuin/gopher-lua"

	"github.com/c360/msgbridge/errors"
	"github.com/c360/msgbridge/message"
)

// maxExactInt bounds table keys that convert to IntKey. Beyond 2^53 a Lua
// number no longer identifies a single integer.
const maxExactInt = 1 << 53

// ToLua converts v into a Lua value owned by L. Maps become fresh tables,
// extensions become userdata carrying the kind's metatable, and the invalid
// Value becomes nil.
func ToLua(L *lua.LState, v message.Value) lua.LValue {
	switch v.Kind() {
	case message.KindBool:
		b, _ := v.AsBool()
		return lua.LBool(b)
	case message.KindNumber:
		n, _ := v.AsNumber()
		return lua.LNumber(n)
	case message.KindString:
		s, _ := v.AsString()
		return lua.LString(s)
	case message.KindMap:
		m, _ := v.AsMap()
		tbl := L.CreateTable(0, len(m))
		for _, k := range m.SortedKeys() {
			child := ToLua(L, m[k])
			if i, ok := k.Int(); ok {
				tbl.RawSetInt(i, child)
				continue
			}
			s, _ := k.Str()
			tbl.RawSetString(s, child)
		}
		return tbl
	case message.KindExtension:
		x, _ := v.AsExtension()
		return NewExtension(L, x)
	case message.KindReference:
		x, _ := v.Referent()
		return NewReference(L, x)
	default:
		return lua.LNil
	}
}

// FromLua converts a Lua value into a message Value.
//
// Booleans, numbers and strings map to their primitive arms. Tables map to
// Map with integral number keys becoming IntKey and string keys StrKey.
// Userdata holding a message.Extension becomes an owned Extension, or a
// Reference when its metatable is marked for transfer copy. Anything else,
// including nil, functions, non-integral or boolean keys and cyclic tables,
// fails with ErrUnsupportedType.
func FromLua(lv lua.LValue) (message.Value, error) {
	return fromLua(lv, make(map[*lua.LTable]struct{}))
}

func fromLua(lv lua.LValue, path map[*lua.LTable]struct{}) (message.Value, error) {
	switch x := lv.(type) {
	case lua.LBool:
		return message.Bool(bool(x)), nil
	case lua.LNumber:
		return message.Number(float64(x)), nil
	case lua.LString:
		return message.String(string(x)), nil
	case *lua.LTable:
		return fromTable(x, path)
	case *lua.LUserData:
		return fromUserData(x)
	default:
		return message.Value{}, unsupported("lua %s", lv.Type().String())
	}
}

func fromTable(tbl *lua.LTable, path map[*lua.LTable]struct{}) (message.Value, error) {
	if _, ok := path[tbl]; ok {
		return message.Value{}, unsupported("cyclic table")
	}
	path[tbl] = struct{}{}
	defer delete(path, tbl)

	m := message.Map{}
	var firstErr error
	tbl.ForEach(func(lk, lv lua.LValue) {
		if firstErr != nil {
			return
		}
		k, err := toKey(lk)
		if err != nil {
			firstErr = err
			return
		}
		child, err := fromLua(lv, path)
		if err != nil {
			firstErr = fmt.Errorf("field %s: %w", k, err)
			return
		}
		m[k] = child
	})
	if firstErr != nil {
		return message.Value{}, firstErr
	}
	return message.MapOf(m), nil
}

func toKey(lk lua.LValue) (message.Key, error) {
	switch k := lk.(type) {
	case lua.LString:
		return message.StrKey(string(k)), nil
	case lua.LNumber:
		f := float64(k)
		if f != math.Trunc(f) || math.Abs(f) > maxExactInt {
			return message.Key{}, unsupported("non-integral key %v", f)
		}
		return message.IntKey(int(f)), nil
	default:
		return message.Key{}, unsupported("%s key", lk.Type().String())
	}
}

func fromUserData(ud *lua.LUserData) (message.Value, error) {
	x, ok := ud.Value.(message.Extension)
	if !ok || x == nil {
		return message.Value{}, unsupported("userdata %T", ud.Value)
	}
	// The payload stays live in the Lua state, so it always crosses as
	// borrowed and the queue stores a clone.
	return message.Reference(x), nil
}

func unsupported(format string, args ...any) error {
	return errors.WrapInvalid(
		fmt.Errorf("%w: %s", errors.ErrUnsupportedType, fmt.Sprintf(format, args...)),
		"luabridge", "FromLua", "convert value")
}
