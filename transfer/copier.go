package transfer

import (
	"fmt"
	"reflect"
	"unsafe"

	"github.com/c360/msgbridge/errors"
	"github.com/c360/msgbridge/message"
)

// Result is the outcome of a Copy.
type Result struct {
	// Value is the owned tree. It shares no Map or extension with the input.
	Value message.Value

	// Copied counts extensions replaced by clones, Ext and Reference alike.
	Copied int

	// Nodes counts visited values, the input root included.
	Nodes int
}

// Copier turns a possibly borrowed Value tree into an owned one.
//
// A Copier is stateless apart from its registry and is safe for concurrent
// use.
type Copier struct {
	registry *message.Registry
}

// NewCopier creates a copier that checks extension kinds against registry.
// A nil registry accepts every kind.
func NewCopier(registry *message.Registry) *Copier {
	return &Copier{registry: registry}
}

// Copy walks v and returns an owned equivalent:
//   - an Ext or Reference is replaced by Ext of its clone
//   - a Map is rebuilt with copied children
//   - primitives pass through
//
// Copy fails without side effects if v is invalid, contains an extension kind
// the registry does not allow, contains a Map that appears in its own
// ancestry, or if a clone fails. Clone failures are classified fatal and wrap
// errors.ErrCopyFailed together with the cause.
func (c *Copier) Copy(v message.Value) (Result, error) {
	w := walker{copier: c, path: make(map[unsafe.Pointer]struct{})}

	out, err := w.visit(v)
	if err != nil {
		return Result{}, err
	}

	return Result{Value: out, Copied: w.copied, Nodes: w.nodes}, nil
}

type walker struct {
	copier *Copier
	path   map[unsafe.Pointer]struct{}
	copied int
	nodes  int
}

func (w *walker) visit(v message.Value) (message.Value, error) {
	w.nodes++

	switch v.Kind() {
	case message.KindBool, message.KindNumber, message.KindString:
		return v, nil

	case message.KindExtension, message.KindReference:
		x, ok := v.Referent()
		if !ok {
			x, _ = v.AsExtension()
		}
		if err := w.allow(x); err != nil {
			return message.Value{}, err
		}
		clone, err := cloneExtension(x)
		if err != nil {
			return message.Value{}, err
		}
		w.copied++
		return message.Ext(clone), nil

	case message.KindMap:
		m, _ := v.AsMap()
		id := mapIdentity(m)
		if _, onPath := w.path[id]; onPath {
			return message.Value{}, errors.WrapInvalid(
				fmt.Errorf("%w: map contains itself", errors.ErrInvalidValue),
				"Copier", "Copy", "cycle check")
		}
		w.path[id] = struct{}{}
		defer delete(w.path, id)

		out := make(message.Map, len(m))
		for k, child := range m {
			copied, err := w.visit(child)
			if err != nil {
				return message.Value{}, errors.Wrap(err, "Copier", "Copy", "copy entry "+k.String())
			}
			out[k] = copied
		}
		return message.MapOf(out), nil

	default:
		return message.Value{}, errors.WrapInvalid(errors.ErrInvalidValue, "Copier", "Copy", "check value")
	}
}

func (w *walker) allow(x message.Extension) error {
	if w.copier.registry == nil {
		return nil
	}
	return w.copier.registry.Allows(x)
}

func cloneExtension(x message.Extension) (message.Extension, error) {
	kind := x.ExtensionKind()

	clone, err := x.Clone()
	if err != nil {
		return nil, errors.WrapFatal(
			fmt.Errorf("%w: clone %s: %w", errors.ErrCopyFailed, kind, err),
			"Copier", "Copy", "clone extension")
	}
	if clone == nil || clone.ExtensionKind() != kind {
		return nil, errors.WrapFatal(
			fmt.Errorf("%w: clone %s returned %v", errors.ErrCopyFailed, kind, clone),
			"Copier", "Copy", "clone extension")
	}
	return clone, nil
}

// mapIdentity returns the address of the map header, equal for two Map
// values sharing storage.
func mapIdentity(m message.Map) unsafe.Pointer {
	return reflect.ValueOf(m).UnsafePointer()
}
