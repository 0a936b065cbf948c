package testutil

import (
	"errors"
	"sync"

	"github.com/c360/msgbridge/message"
)

// Extension kinds registered by NewTestRegistry.
const (
	PointKind = "Point"
	MockKind  = "Mock"
)

// Point is a small extension payload with a pointer field, so tests can tell
// an owned clone from the original.
type Point struct {
	X, Y  float64
	Label *string
}

// NewPoint creates a Point.
func NewPoint(x, y float64, label string) *Point {
	return &Point{X: x, Y: y, Label: &label}
}

// ExtensionKind implements message.Extension.
func (p *Point) ExtensionKind() string {
	return PointKind
}

// Clone implements message.Extension.
func (p *Point) Clone() (message.Extension, error) {
	c := &Point{X: p.X, Y: p.Y}
	if p.Label != nil {
		label := *p.Label
		c.Label = &label
	}
	return c, nil
}

// LabelText returns the label or "".
func (p *Point) LabelText() string {
	if p.Label == nil {
		return ""
	}
	return *p.Label
}

// PointRegistration describes Point for a registry and the Lua binding.
// Point(x, y [, label]) constructs one; x, y and label are readable fields.
func PointRegistration() *message.ExtensionRegistration {
	return &message.ExtensionRegistration{
		Kind:        PointKind,
		Description: "2D point used in tests",
		Construct: func(args []message.Value) (message.Extension, error) {
			if len(args) < 2 {
				return nil, ErrMockInvalid
			}
			x, err := args[0].AsNumber()
			if err != nil {
				return nil, err
			}
			y, err := args[1].AsNumber()
			if err != nil {
				return nil, err
			}
			label := ""
			if len(args) > 2 {
				if label, err = args[2].AsString(); err != nil {
					return nil, err
				}
			}
			return NewPoint(x, y, label), nil
		},
		Inspect: func(x message.Extension, field string) (message.Value, bool) {
			p, ok := x.(*Point)
			if !ok {
				return message.Value{}, false
			}
			switch field {
			case "x":
				return message.Number(p.X), true
			case "y":
				return message.Number(p.Y), true
			case "label":
				return message.String(p.LabelText()), true
			default:
				return message.Value{}, false
			}
		},
	}
}

// MockExtension is an extension with injectable clone behavior and call
// counting. Safe for concurrent use.
type MockExtension struct {
	mu sync.Mutex

	// CloneFunc overrides Clone when set.
	CloneFunc func() (message.Extension, error)

	// Payload is copied into clones.
	Payload string

	// Call counts for verification
	CloneCalls int
}

// NewMockExtension creates a mock extension that clones successfully.
func NewMockExtension(payload string) *MockExtension {
	return &MockExtension{Payload: payload}
}

// NewFailingExtension creates a mock extension whose Clone returns ErrMockFailed.
func NewFailingExtension(payload string) *MockExtension {
	return &MockExtension{
		Payload: payload,
		CloneFunc: func() (message.Extension, error) {
			return nil, ErrMockFailed
		},
	}
}

// ExtensionKind implements message.Extension.
func (m *MockExtension) ExtensionKind() string {
	return MockKind
}

// Clone implements message.Extension.
func (m *MockExtension) Clone() (message.Extension, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CloneCalls++

	if m.CloneFunc != nil {
		return m.CloneFunc()
	}
	return &MockExtension{Payload: m.Payload}, nil
}

// Calls returns the number of Clone calls so far.
func (m *MockExtension) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CloneCalls
}

// MockRegistration describes MockExtension for a registry.
func MockRegistration() *message.ExtensionRegistration {
	return &message.ExtensionRegistration{
		Kind:        MockKind,
		Description: "mock extension with injectable clone",
		Construct: func(args []message.Value) (message.Extension, error) {
			payload := ""
			if len(args) > 0 {
				s, err := args[0].AsString()
				if err != nil {
					return nil, err
				}
				payload = s
			}
			return NewMockExtension(payload), nil
		},
		Inspect: func(x message.Extension, field string) (message.Value, bool) {
			m, ok := x.(*MockExtension)
			if !ok || field != "payload" {
				return message.Value{}, false
			}
			return message.String(m.Payload), true
		},
	}
}

// NewTestRegistry returns an unsealed registry holding Point and Mock.
func NewTestRegistry() *message.Registry {
	r := message.NewRegistry()
	if err := r.Register(PointRegistration()); err != nil {
		panic(err)
	}
	if err := r.Register(MockRegistration()); err != nil {
		panic(err)
	}
	return r
}

// Common test errors
var (
	ErrMockFailed  = errors.New("mock operation failed")
	ErrMockInvalid = errors.New("mock invalid input")
)
