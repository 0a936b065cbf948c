// Package testutil provides shared fixtures for msgbridge tests.
//
// # Overview
//
// Test data:
//   - TestPrimitives: one Value per primitive arm
//   - TestJSONObjects, TestArrays: Go literals for message.From
//   - NestedSample: {"type": "X", "nested": {"flag": true}, 7: 3.1}
//   - DeepSample: a Map nested to a chosen depth
//   - SequenceValue: {"producer": p, "seq": n} for concurrency tests
//
// Extension kinds:
//
// Point - a 2D point with a pointer-valued label:
//   - Clone copies the label, so the clone shares no memory with the original
//   - Registration supplies Construct and Inspect for the Lua binding
//
// MockExtension - injectable clone behavior:
//   - Counts Clone calls
//   - NewFailingExtension returns ErrMockFailed from Clone
//   - Thread-safe counters
//
// NewTestRegistry returns an unsealed registry with both kinds.
//
// # Usage
//
//	reg := testutil.NewTestRegistry()
//	q, err := queue.New(queue.WithExtensions(reg))
//	require.NoError(t, err)
//
//	p := testutil.NewPoint(1, 2, "origin")
//	require.NoError(t, q.Push(message.Reference(p)))
//	*p.Label = "changed"
//
//	msg, ok := q.Pop()
//	require.True(t, ok)
//	got, err := message.As[*testutil.Point](msg)
//	require.NoError(t, err)
//	assert.Equal(t, "origin", got.LabelText())
package testutil
