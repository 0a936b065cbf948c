// Package message defines the value model exchanged through a queue between
// native goroutines and an embedded Lua runtime.
//
// # Values
//
// A Value is a recursive tagged union. Each Value holds exactly one arm:
//
//   - Boolean (bool)
//   - Number (float64)
//   - String (string)
//   - Map (map[Key]Value), a tree of further Values
//   - Extension, an application payload whose kind is registered ahead of time
//   - Reference, a borrowed Extension that is replaced by an owned clone when
//     the value is pushed
//
// Values are built bottom-up, either with the constructors or from Go
// literals with From:
//
//	v := message.MustFrom(map[message.Key]any{
//	    message.StrKey("type"):   "X",
//	    message.StrKey("nested"): map[string]any{"flag": true},
//	    message.IntKey(7):        3.1,
//	})
//
// Arms are never inferred from each other. A bool is never a Number, a Go
// int becomes a Number, and an integer is only a Key when passed to IntKey.
//
// # Keys
//
// Key is the closed {Integer, String} union. It is comparable, so Map is an
// ordinary Go map. IntKey(1) and StrKey("1") are different keys, and a single
// Map may mix both.
//
// # Extraction and navigation
//
// Extraction is structural. AsBool, AsNumber, AsString, AsMap, AsExtension and
// the generic As[T] fail with a TypeMismatchError (errors.ErrTypeMismatch)
// when the value holds a different arm. There is no coercion and no zero-value
// fallback.
//
// Get, Field and Index return an Accessor, a read-only view of a subtree.
// Accessors keep the first error, so a chain reports its failure at the end:
//
//	flag, err := msg.Field("nested").Field("flag").AsBool()
//	if stderrors.Is(err, errors.ErrKeyNotFound) {
//	    ...
//	}
//
// # Extensions
//
// Extension kinds implement the Extension interface and are registered in a
// Registry. A queue seals its registry on construction and rejects values
// carrying kinds outside it. Registrations may also describe how runtime-side
// code constructs and inspects the kind.
package message
