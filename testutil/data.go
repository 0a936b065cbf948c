package testutil

import (
	"github.com/c360/msgbridge/message"
)

// Generic test data for value-model tests. No domain meaning.

// TestPrimitives contains one value of every primitive arm.
var TestPrimitives = map[string]message.Value{
	"bool_true":   message.Bool(true),
	"bool_false":  message.Bool(false),
	"number_zero": message.Number(0),
	"number_pi":   message.Number(3.14159),
	"number_neg":  message.Number(-42),
	"string":      message.String("hello"),
	"empty":       message.String(""),
	"unicode":     message.String("héllo wörld"),
}

// TestJSONObjects contains generic objects convertible with message.From.
var TestJSONObjects = []map[string]any{
	{
		"id":        1,
		"name":      "Alice",
		"age":       30,
		"active":    true,
		"timestamp": 1234567890,
	},
	{
		"id":        2,
		"name":      "Bob",
		"age":       25,
		"active":    false,
		"timestamp": 1234567891,
	},
	{
		"id":        3,
		"name":      "Charlie",
		"age":       35,
		"active":    true,
		"timestamp": 1234567892,
	},
}

// TestArrays contains slices that become 1-based Maps.
var TestArrays = [][]any{
	{"a", "b", "c"},
	{1, 2, 3, 4, 5},
	{true, "mixed", 2.5},
}

// NestedSample returns {"type": "X", "nested": {"flag": true}, 7: 3.1}.
func NestedSample() message.Value {
	return message.MustFrom(map[message.Key]any{
		message.StrKey("type"): "X",
		message.StrKey("nested"): map[string]any{
			"flag": true,
		},
		message.IntKey(7): 3.1,
	})
}

// DeepSample returns a Map nested depth levels deep, with the leaf
// {"leaf": depth} at the bottom under repeated "child" keys.
func DeepSample(depth int) message.Value {
	v := message.MustFrom(map[string]any{"leaf": depth})
	for i := 0; i < depth; i++ {
		v = message.MapOf(message.Map{
			message.StrKey("child"): v,
			message.IntKey(i):       message.Number(float64(i)),
		})
	}
	return v
}

// SequenceValue returns the Map {"producer": p, "seq": n}, used by
// concurrency tests to identify pushed values.
func SequenceValue(producer, seq int) message.Value {
	return message.MapOf(message.Map{
		message.StrKey("producer"): message.Number(float64(producer)),
		message.StrKey("seq"):      message.Number(float64(seq)),
	})
}
