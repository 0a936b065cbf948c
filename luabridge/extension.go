package luabridge

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/c360/msgbridge/errors"
	"github.com/c360/msgbridge/message"
)

// transferField marks a reference metatable. The only recognised value is
// transferCopy.
const (
	transferField = "__transfer"
	transferCopy  = "copy"
)

// ReferenceFunc is the global that marks an extension userdata as borrowed.
const ReferenceFunc = "reference"

func extensionTypeName(kind string) string {
	return "msgbridge.ext." + kind
}

func referenceTypeName(kind string) string {
	return "msgbridge.ref." + kind
}

// RegisterExtensions installs every kind in registry into L.
//
// Each kind gets an owned metatable and a reference metatable. Both serve
// fields through the registration's Inspect function. The reference variant
// carries __transfer = "copy", so pushing such userdata stores an owned clone.
// Kinds with a Construct function also get a global constructor named after
// the kind, and the global reference(x) marks a userdata as borrowed.
// Calling it again refreshes the metatables and globals.
func RegisterExtensions(L *lua.LState, registry *message.Registry) error {
	if registry == nil {
		return errors.WrapInvalid(errors.ErrMissingConfig, "luabridge", "RegisterExtensions", "registry check")
	}

	for _, kind := range registry.Kinds() {
		reg, ok := registry.Lookup(kind)
		if !ok {
			continue
		}

		owned := extensionMetatable(L, kind)
		ref := referenceMetatable(L, kind)
		for _, mt := range []*lua.LTable{owned, ref} {
			L.SetField(mt, "__index", L.NewFunction(inspector(reg)))
		}

		if reg.Construct != nil {
			L.SetGlobal(kind, L.NewFunction(constructor(reg)))
		}
	}

	L.SetGlobal(ReferenceFunc, L.NewFunction(luaReference))
	return nil
}

// NewExtension wraps x in userdata with the owned metatable for its kind.
func NewExtension(L *lua.LState, x message.Extension) *lua.LUserData {
	ud := L.NewUserData()
	ud.Value = x
	L.SetMetatable(ud, extensionMetatable(L, x.ExtensionKind()))
	return ud
}

// NewReference wraps x in userdata marked as borrowed. Pushing it stores an
// owned clone; x stays with the caller.
func NewReference(L *lua.LState, x message.Extension) *lua.LUserData {
	ud := L.NewUserData()
	ud.Value = x
	L.SetMetatable(ud, referenceMetatable(L, x.ExtensionKind()))
	return ud
}

// MarkReference switches ud to the reference metatable of its kind.
func MarkReference(L *lua.LState, ud *lua.LUserData) error {
	x, ok := ud.Value.(message.Extension)
	if !ok || x == nil {
		return errors.WrapInvalid(
			fmt.Errorf("%w: userdata %T", errors.ErrUnsupportedType, ud.Value),
			"luabridge", "MarkReference", "extension check")
	}
	L.SetMetatable(ud, referenceMetatable(L, x.ExtensionKind()))
	return nil
}

func isReference(ud *lua.LUserData) bool {
	mt, ok := ud.Metatable.(*lua.LTable)
	if !ok {
		return false
	}
	return mt.RawGetString(transferField) == lua.LString(transferCopy)
}

func extensionMetatable(L *lua.LState, kind string) *lua.LTable {
	mt := L.NewTypeMetatable(extensionTypeName(kind))
	if mt.RawGetString("__tostring") == lua.LNil {
		L.SetField(mt, "__tostring", L.NewFunction(extensionString(kind, false)))
	}
	return mt
}

func referenceMetatable(L *lua.LState, kind string) *lua.LTable {
	mt := L.NewTypeMetatable(referenceTypeName(kind))
	if mt.RawGetString(transferField) == lua.LNil {
		L.SetField(mt, transferField, lua.LString(transferCopy))
		L.SetField(mt, "__tostring", L.NewFunction(extensionString(kind, true)))
	}
	return mt
}

func extensionString(kind string, borrowed bool) lua.LGFunction {
	return func(L *lua.LState) int {
		ud := L.CheckUserData(1)
		if borrowed {
			L.Push(lua.LString(fmt.Sprintf("&%s(%p)", kind, ud.Value)))
		} else {
			L.Push(lua.LString(fmt.Sprintf("%s(%p)", kind, ud.Value)))
		}
		return 1
	}
}

func inspector(reg *message.ExtensionRegistration) lua.LGFunction {
	return func(L *lua.LState) int {
		ud := L.CheckUserData(1)
		field := L.CheckString(2)

		x, ok := ud.Value.(message.Extension)
		if !ok || reg.Inspect == nil {
			L.Push(lua.LNil)
			return 1
		}
		v, ok := reg.Inspect(x, field)
		if !ok {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(ToLua(L, v))
		return 1
	}
}

func constructor(reg *message.ExtensionRegistration) lua.LGFunction {
	return func(L *lua.LState) int {
		top := L.GetTop()
		args := make([]message.Value, 0, top)
		for i := 1; i <= top; i++ {
			v, err := FromLua(L.Get(i))
			if err != nil {
				L.ArgError(i, err.Error())
				return 0
			}
			args = append(args, v)
		}

		x, err := reg.Construct(args)
		if err != nil {
			L.RaiseError("%s", errors.WrapInvalid(err, "luabridge", reg.Kind, "construct").Error())
			return 0
		}
		if x == nil || x.ExtensionKind() != reg.Kind {
			L.RaiseError("%s", errors.WrapInvalid(
				fmt.Errorf("%w: constructor returned wrong kind", errors.ErrInvalidValue),
				"luabridge", reg.Kind, "construct").Error())
			return 0
		}
		L.Push(NewExtension(L, x))
		return 1
	}
}

// luaReference implements reference(x): a new userdata sharing x's payload
// with the reference metatable. x itself is left untouched.
func luaReference(L *lua.LState) int {
	ud := L.CheckUserData(1)
	x, ok := ud.Value.(message.Extension)
	if !ok || x == nil {
		L.ArgError(1, "extension expected")
		return 0
	}
	L.Push(NewReference(L, x))
	return 1
}
