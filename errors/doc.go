// Package errors provides standardized error handling patterns for msgbridge components.
//
// # Overview
//
// The errors package implements a three-class error classification system: Transient
// (temporary, the caller may try again), Invalid (a contract violation at the call site,
// never retried) and Fatal (the operation was aborted and left no partial state).
//
// Nothing in msgbridge retries on its own. Classification exists so that integrating
// applications can decide what to do with a failure without matching on error strings.
//
// # Error Classification
//
//   - Invalid: TypeMismatch from As, KeyNotFound from Get, unsupported Go or Lua values,
//     unknown extension kinds, registrations against a sealed registry
//   - Fatal: a failing extension Clone during push (ErrCopyFailed), bad configuration
//   - Transient: context cancellation and deadlines
//
// # Error Wrapping Pattern
//
// All error wrapping follows the standardized format:
//
//	"component.method: action failed: %w"
//
// Three wrapper functions provide classification-aware wrapping:
//
//	errors.WrapTransient(err, "Component", "Method", "action")
//	errors.WrapInvalid(err, "Component", "Method", "action")
//	errors.WrapFatal(err, "Component", "Method", "action")
//
// The generic Wrap() function preserves the original error's classification:
//
//	errors.Wrap(err, "Component", "Method", "action")
//
// # Integration with errors.As/Is
//
// All error types support standard library error inspection:
//
//	v, err := msg.Get(message.StrKey("nested")).AsBool()
//	if stderrors.Is(err, errors.ErrKeyNotFound) {
//	    // the map had no "nested" entry
//	}
//
//	var ce *errors.ClassifiedError
//	if stderrors.As(err, &ce) {
//	    log.Printf("component: %s, class: %s", ce.Component, ce.Class)
//	}
//
// # Thread Safety
//
// All classification and wrapping operations are thread-safe. Error variables
// are immutable and safe for concurrent access. The ClassifiedError type
// is safe to share across goroutines after creation.
package errors
