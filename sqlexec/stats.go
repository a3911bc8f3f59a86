package sqlexec

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Stats counts executed statements. It is safe for concurrent use.
type Stats struct {
	queries  atomic.Int64
	execs    atomic.Int64
	duration atomic.Int64 // nanoseconds
	slow     atomic.Int64
	errors   atomic.Int64
	conflict atomic.Int64
}

// Snapshot returns the current counters.
func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Queries:   s.queries.Load(),
		Execs:     s.execs.Load(),
		Duration:  time.Duration(s.duration.Load()),
		Slow:      s.slow.Load(),
		Errors:    s.errors.Load(),
		Conflicts: s.conflict.Load(),
	}
}

// Reset sets every counter to zero.
func (s *Stats) Reset() {
	s.queries.Store(0)
	s.execs.Store(0)
	s.duration.Store(0)
	s.slow.Store(0)
	s.errors.Store(0)
	s.conflict.Store(0)
}

// StatsSnapshot is a point-in-time copy of Stats.
type StatsSnapshot struct {
	Queries   int64
	Execs     int64
	Duration  time.Duration
	Slow      int64
	Errors    int64
	Conflicts int64
}

// Avg returns the mean statement duration.
func (s StatsSnapshot) Avg() time.Duration {
	total := s.Queries + s.Execs
	if total == 0 {
		return 0
	}
	return s.Duration / time.Duration(total)
}

func (s StatsSnapshot) String() string {
	return fmt.Sprintf(
		"queries=%d execs=%d duration=%s avg=%s slow=%d errors=%d conflicts=%d",
		s.Queries, s.Execs, s.Duration, s.Avg(), s.Slow, s.Errors, s.Conflicts,
	)
}
