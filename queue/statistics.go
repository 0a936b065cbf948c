package queue

import (
	"sync"
	"sync/atomic"
	"time"
)

// Statistics tracks queue activity.
type Statistics struct {
	// Atomic counters for thread-safe updates
	pushes       int64
	pops         int64
	emptyPops    int64
	copies       int64
	copyFailures int64
	rejects      int64
	grows        int64

	// Protected by mutex
	mu          sync.RWMutex
	startTime   time.Time
	currentSize int64
	maxSize     int64
}

// NewStatistics creates a new statistics tracker.
func NewStatistics() *Statistics {
	return &Statistics{
		startTime: time.Now(),
	}
}

// Push records a stored value.
func (s *Statistics) Push() {
	atomic.AddInt64(&s.pushes, 1)
}

// Pop records a detached value.
func (s *Statistics) Pop() {
	atomic.AddInt64(&s.pops, 1)
}

// EmptyPop records a pop on an empty queue.
func (s *Statistics) EmptyPop() {
	atomic.AddInt64(&s.emptyPops, 1)
}

// Copies records n extensions replaced by clones.
func (s *Statistics) Copies(n int64) {
	if n > 0 {
		atomic.AddInt64(&s.copies, n)
	}
}

// CopyFailure records a push aborted by a failing clone.
func (s *Statistics) CopyFailure() {
	atomic.AddInt64(&s.copyFailures, 1)
}

// Reject records a push that stored nothing.
func (s *Statistics) Reject() {
	atomic.AddInt64(&s.rejects, 1)
}

// Grow records a ring resize.
func (s *Statistics) Grow() {
	atomic.AddInt64(&s.grows, 1)
}

// UpdateSize updates the current queue size.
func (s *Statistics) UpdateSize(size int64) {
	s.mu.Lock()
	s.currentSize = size
	if size > s.maxSize {
		s.maxSize = size
	}
	s.mu.Unlock()
}

// Pushes returns the total number of stored values.
func (s *Statistics) Pushes() int64 {
	return atomic.LoadInt64(&s.pushes)
}

// Pops returns the total number of detached values.
func (s *Statistics) Pops() int64 {
	return atomic.LoadInt64(&s.pops)
}

// EmptyPops returns the number of pops that found the queue empty.
func (s *Statistics) EmptyPops() int64 {
	return atomic.LoadInt64(&s.emptyPops)
}

// CopiesMade returns the number of extensions replaced by clones.
func (s *Statistics) CopiesMade() int64 {
	return atomic.LoadInt64(&s.copies)
}

// CopyFailures returns the number of pushes aborted by a failing clone.
func (s *Statistics) CopyFailures() int64 {
	return atomic.LoadInt64(&s.copyFailures)
}

// Rejects returns the number of failed pushes of any cause.
func (s *Statistics) Rejects() int64 {
	return atomic.LoadInt64(&s.rejects)
}

// Grows returns the number of ring resizes.
func (s *Statistics) Grows() int64 {
	return atomic.LoadInt64(&s.grows)
}

// CurrentSize returns the current number of stored values.
func (s *Statistics) CurrentSize() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentSize
}

// MaxSize returns the high-water mark.
func (s *Statistics) MaxSize() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.maxSize
}

// Throughput returns the average number of pushes per second.
func (s *Statistics) Throughput() float64 {
	elapsed := s.Uptime()
	if elapsed == 0 {
		return 0.0
	}
	return float64(s.Pushes()) / elapsed.Seconds()
}

// PopThroughput returns the average number of pops per second.
func (s *Statistics) PopThroughput() float64 {
	elapsed := s.Uptime()
	if elapsed == 0 {
		return 0.0
	}
	return float64(s.Pops()) / elapsed.Seconds()
}

// RejectRate returns the fraction of push attempts that failed (0.0 to 1.0).
func (s *Statistics) RejectRate() float64 {
	rejects := s.Rejects()
	attempts := s.Pushes() + rejects
	if attempts == 0 {
		return 0.0
	}
	return float64(rejects) / float64(attempts)
}

// Uptime returns how long the queue has been running.
func (s *Statistics) Uptime() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Since(s.startTime)
}

// Reset resets all counters. Size and high-water mark restart from zero and
// are refreshed by the next push or pop.
func (s *Statistics) Reset() {
	atomic.StoreInt64(&s.pushes, 0)
	atomic.StoreInt64(&s.pops, 0)
	atomic.StoreInt64(&s.emptyPops, 0)
	atomic.StoreInt64(&s.copies, 0)
	atomic.StoreInt64(&s.copyFailures, 0)
	atomic.StoreInt64(&s.rejects, 0)
	atomic.StoreInt64(&s.grows, 0)

	s.mu.Lock()
	s.startTime = time.Now()
	s.currentSize = 0
	s.maxSize = 0
	s.mu.Unlock()
}

// StatsSummary is a snapshot of all statistics.
type StatsSummary struct {
	Pushes        int64         `json:"pushes"`
	Pops          int64         `json:"pops"`
	EmptyPops     int64         `json:"empty_pops"`
	Copies        int64         `json:"copies"`
	CopyFailures  int64         `json:"copy_failures"`
	Rejects       int64         `json:"rejects"`
	Grows         int64         `json:"grows"`
	CurrentSize   int64         `json:"current_size"`
	MaxSize       int64         `json:"max_size"`
	Throughput    float64       `json:"throughput"`
	PopThroughput float64       `json:"pop_throughput"`
	RejectRate    float64       `json:"reject_rate"`
	Uptime        time.Duration `json:"uptime"`
}

// Summary returns a snapshot of all statistics.
func (s *Statistics) Summary() StatsSummary {
	return StatsSummary{
		Pushes:        s.Pushes(),
		Pops:          s.Pops(),
		EmptyPops:     s.EmptyPops(),
		Copies:        s.CopiesMade(),
		CopyFailures:  s.CopyFailures(),
		Rejects:       s.Rejects(),
		Grows:         s.Grows(),
		CurrentSize:   s.CurrentSize(),
		MaxSize:       s.MaxSize(),
		Throughput:    s.Throughput(),
		PopThroughput: s.PopThroughput(),
		RejectRate:    s.RejectRate(),
		Uptime:        s.Uptime(),
	}
}
