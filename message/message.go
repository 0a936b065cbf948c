package message

// Message is the root-level handle around a Value. It is what producers hand
// to Queue.Push and what Queue.Pop returns.
//
// Message embeds its root Value, so typed extraction and keyed navigation
// work directly on it:
//
//	msg, ok := q.Pop()
//	if !ok {
//	    return // queue empty
//	}
//	kind, err := msg.Field("type").AsString()
//	flag, err := msg.Field("nested").Field("flag").AsBool()
//	num, err := msg.Index(7).AsNumber()
//
// A popped Message owns its tree exclusively; nothing else references it.
// Value.AsMap on msg itself returns the live root map, so a consumer that
// edits it changes what every Accessor on msg sees. Accessor.AsMap returns
// a copy.
type Message struct {
	Value
}

// New wraps v as a Message.
func New(v Value) Message {
	return Message{Value: v}
}

// NewFrom builds a Message from a Go literal. See From.
func NewFrom(x any) (Message, error) {
	v, err := From(x)
	if err != nil {
		return Message{}, err
	}
	return Message{Value: v}, nil
}

// Root returns the root Value.
func (m Message) Root() Value {
	return m.Value
}

// IsZero reports whether m holds no value, as returned with a failed pop.
func (m Message) IsZero() bool {
	return m.kind == KindInvalid
}
