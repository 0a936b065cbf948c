package luabridge

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/c360/msgbridge/queue"
)

// QueueTypeName is the registry name of the queue metatable.
const QueueTypeName = "msgbridge.Queue"

var queueMethods = map[string]lua.LGFunction{
	"size": queueSize,
	"push": queuePush,
	"pop":  queuePop,
	"name": queueName,
}

// Bind installs the queue methods into L. It reports whether it did any
// work: a state that already carries the queue metatable is left alone.
// Bound status lives in the state's own registry, so it ends with the state.
func Bind(L *lua.LState) bool {
	if L.GetTypeMetatable(QueueTypeName) != lua.LNil {
		return false
	}

	mt := L.NewTypeMetatable(QueueTypeName)
	L.SetField(mt, "__index", L.SetFuncs(L.NewTable(), queueMethods))
	L.SetField(mt, "__tostring", L.NewFunction(queueString))
	return true
}

// NewQueue wraps q in userdata usable from Lua, binding L first if needed.
func NewQueue(L *lua.LState, q *queue.Queue) *lua.LUserData {
	Bind(L)

	ud := L.NewUserData()
	ud.Value = q
	L.SetMetatable(ud, L.GetTypeMetatable(QueueTypeName))
	return ud
}

// Expose binds L and writes q into the global name.
func Expose(L *lua.LState, name string, q *queue.Queue) {
	L.SetGlobal(name, NewQueue(L, q))
}

func checkQueue(L *lua.LState) *queue.Queue {
	ud := L.CheckUserData(1)
	if q, ok := ud.Value.(*queue.Queue); ok {
		return q
	}
	L.ArgError(1, "queue expected")
	return nil
}

// q:size()
func queueSize(L *lua.LState) int {
	q := checkQueue(L)
	L.Push(lua.LNumber(q.Size()))
	return 1
}

// q:push(value)
func queuePush(L *lua.LState) int {
	q := checkQueue(L)
	v, err := FromLua(L.CheckAny(2))
	if err != nil {
		L.RaiseError("%s", err.Error())
		return 0
	}
	if err := q.Push(v); err != nil {
		L.RaiseError("%s", err.Error())
	}
	return 0
}

// q:pop() returns nil when the queue is empty.
func queuePop(L *lua.LState) int {
	q := checkQueue(L)
	msg, ok := q.Pop()
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(ToLua(L, msg.Root()))
	return 1
}

// q:name()
func queueName(L *lua.LState) int {
	q := checkQueue(L)
	L.Push(lua.LString(q.Name()))
	return 1
}

func queueString(L *lua.LState) int {
	q := checkQueue(L)
	L.Push(lua.LString("Queue(" + q.Name() + ")"))
	return 1
}
