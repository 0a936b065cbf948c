package message

import (
	"fmt"
	"sort"
	"sync"

	"github.com/c360/msgbridge/errors"
)

// Extension is an application-supplied payload kind carried by the Value
// union beyond the built-in primitives.
//
// Clone is the copy constructor used at push time when a Reference to the
// extension is stored. It must return an independent copy that shares no
// mutable state with the receiver.
type Extension interface {
	ExtensionKind() string
	Clone() (Extension, error)
}

// ConstructFunc builds an extension from runtime-side arguments.
type ConstructFunc func(args []Value) (Extension, error)

// InspectFunc reads a named field from an extension for runtime-side code.
// It returns false when the field does not exist.
type InspectFunc func(x Extension, field string) (Value, bool)

// ExtensionRegistration holds the metadata for one extension kind.
type ExtensionRegistration struct {
	Kind        string        `json:"kind"`        // Extension kind, a valid identifier (e.g. "point")
	Description string        `json:"description"` // Human-readable description
	Construct   ConstructFunc `json:"-"`           // Optional runtime-side constructor
	Inspect     InspectFunc   `json:"-"`           // Optional runtime-side field lookup
}

// Registry holds the closed set of extension kinds a queue accepts.
//
// Kinds are registered during setup. Once sealed, the set is fixed and any
// further Register call fails with ErrRegistrySealed. A queue seals the
// registry it is built with.
type Registry struct {
	registrations map[string]*ExtensionRegistration
	sealed        bool
	mu            sync.RWMutex
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		registrations: make(map[string]*ExtensionRegistration),
	}
}

// Register adds an extension kind. It fails if the registration is
// incomplete, the kind is already present, or the registry is sealed.
func (r *Registry) Register(registration *ExtensionRegistration) error {
	if registration == nil {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Registry", "Register", "registration validation")
	}

	if !validKind(registration.Kind) {
		return errors.WrapInvalid(
			fmt.Errorf("%w: kind %q is not an identifier", errors.ErrInvalidConfig, registration.Kind),
			"Registry",
			"Register",
			"kind validation",
		)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return errors.WrapInvalid(errors.ErrRegistrySealed, "Registry", "Register", "register "+registration.Kind)
	}

	if _, exists := r.registrations[registration.Kind]; exists {
		return errors.WrapInvalid(
			fmt.Errorf("%w: %s", errors.ErrDuplicateKind, registration.Kind),
			"Registry",
			"Register",
			"duplicate kind check",
		)
	}

	r.registrations[registration.Kind] = registration
	return nil
}

// Lookup returns the registration for kind.
func (r *Registry) Lookup(kind string) (*ExtensionRegistration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	registration, exists := r.registrations[kind]
	return registration, exists
}

// Kinds returns the registered kinds in sorted order.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]string, 0, len(r.registrations))
	for kind := range r.registrations {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

// Len returns the number of registered kinds.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.registrations)
}

// Allows returns nil if x's kind is registered, otherwise an
// ErrUnknownExtension error naming the kind.
func (r *Registry) Allows(x Extension) error {
	if x == nil {
		return errors.WrapInvalid(errors.ErrInvalidValue, "Registry", "Allows", "check nil extension")
	}

	kind := x.ExtensionKind()
	if _, ok := r.Lookup(kind); !ok {
		return errors.WrapInvalid(
			fmt.Errorf("%w: %s", errors.ErrUnknownExtension, kind),
			"Registry",
			"Allows",
			"check kind",
		)
	}
	return nil
}

// Seal fixes the set of kinds. Sealing twice is a no-op.
func (r *Registry) Seal() {
	r.mu.Lock()
	r.sealed = true
	r.mu.Unlock()
}

// Sealed reports whether Seal has been called.
func (r *Registry) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}

// validKind reports whether s is usable as a runtime global name.
func validKind(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
