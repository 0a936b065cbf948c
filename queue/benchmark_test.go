package queue

import (
	"testing"

	"github.com/c360/msgbridge/message"
	"github.com/c360/msgbridge/testutil"
)

// BenchmarkPush benchmarks Push under both copy policies.
func BenchmarkPush(b *testing.B) {
	value := message.MustFrom(map[string]any{
		"type":   "X",
		"nested": map[string]any{"flag": true, "n": 1},
		"point":  message.Reference(testutil.NewPoint(1, 2, "p")),
	})

	for _, policy := range []CopyPolicy{CopyBeforeLock, CopyUnderLock} {
		b.Run(policy.String(), func(b *testing.B) {
			q, err := New(WithExtensions(testutil.NewTestRegistry()), WithCopyPolicy(policy))
			if err != nil {
				b.Fatal(err)
			}

			b.ResetTimer()
			b.RunParallel(func(pb *testing.PB) {
				for pb.Next() {
					if err := q.Push(value); err != nil {
						b.Error(err)
						return
					}
				}
			})
		})
	}
}

// BenchmarkPushPop benchmarks a push followed by a pop.
func BenchmarkPushPop(b *testing.B) {
	q, err := New()
	if err != nil {
		b.Fatal(err)
	}
	v := message.Number(1)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := q.Push(v); err != nil {
			b.Fatal(err)
		}
		if _, ok := q.Pop(); !ok {
			b.Fatal("empty")
		}
	}
}

// BenchmarkEmptyPop benchmarks polling an empty queue.
func BenchmarkEmptyPop(b *testing.B) {
	q, err := New()
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			q.Pop()
		}
	})
}
