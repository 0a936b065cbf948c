package main

import (
	"fmt"
	"slices"

	"github.com/c360/msgbridge/message"
)

// ReadingKind is the extension kind of Reading.
const ReadingKind = "Reading"

// Reading is a batch of sensor samples. Producers keep appending to one
// Reading and push it by reference, so every stored message gets its own
// snapshot.
type Reading struct {
	Sensor string
	Values []float64
}

// ExtensionKind implements message.Extension.
func (r *Reading) ExtensionKind() string {
	return ReadingKind
}

// Clone implements message.Extension.
func (r *Reading) Clone() (message.Extension, error) {
	return &Reading{Sensor: r.Sensor, Values: slices.Clone(r.Values)}, nil
}

// Sum returns the total of all samples.
func (r *Reading) Sum() float64 {
	var sum float64
	for _, v := range r.Values {
		sum += v
	}
	return sum
}

// readingRegistration exposes Reading to Lua as Reading(sensor, v1, v2, ...)
// with the fields sensor, count, sum and values.
func readingRegistration() *message.ExtensionRegistration {
	return &message.ExtensionRegistration{
		Kind:        ReadingKind,
		Description: "Batch of numeric sensor samples",
		Construct: func(args []message.Value) (message.Extension, error) {
			if len(args) == 0 {
				return nil, fmt.Errorf("reading: sensor required")
			}
			sensor, err := args[0].AsString()
			if err != nil {
				return nil, fmt.Errorf("reading sensor: %w", err)
			}
			r := &Reading{Sensor: sensor, Values: make([]float64, 0, len(args)-1)}
			for i, arg := range args[1:] {
				v, err := arg.AsNumber()
				if err != nil {
					return nil, fmt.Errorf("reading value %d: %w", i+1, err)
				}
				r.Values = append(r.Values, v)
			}
			return r, nil
		},
		Inspect: func(x message.Extension, field string) (message.Value, bool) {
			r, ok := x.(*Reading)
			if !ok {
				return message.Value{}, false
			}
			switch field {
			case "sensor":
				return message.String(r.Sensor), true
			case "count":
				return message.Number(float64(len(r.Values))), true
			case "sum":
				return message.Number(r.Sum()), true
			case "values":
				m := make(message.Map, len(r.Values))
				for i, v := range r.Values {
					m[message.IntKey(i+message.ArrayBase)] = message.Number(v)
				}
				return message.MapOf(m), true
			default:
				return message.Value{}, false
			}
		},
	}
}
