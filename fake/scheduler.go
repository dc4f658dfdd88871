// File: fake/scheduler.go
// Package fake: an api.Scheduler test double that lets a test pin a
// specific goroutine to a specific logical CPU id, so per-CPU TX
// staging fan-out scenarios (S1, S5) are reproducible without depending
// on the real OS scheduler's actual core assignment.
// Author: momentics <momentics@gmail.com>

package fake

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
)

// Scheduler is an api.Scheduler test double reporting a fixed logical
// CPU count. Goroutines default to CPU 0 until BindCurrentGoroutine pins
// them explicitly.
type Scheduler struct {
	numCPU int
	clock  atomic.Int64

	mu  sync.Mutex
	cpu map[int64]int // goroutine id -> pinned CPU
}

// NewScheduler returns a Scheduler reporting numCPU logical CPUs.
func NewScheduler(numCPU int) *Scheduler {
	if numCPU < 1 {
		numCPU = 1
	}
	return &Scheduler{numCPU: numCPU, cpu: make(map[int64]int)}
}

// BindCurrentGoroutine pins the calling goroutine to cpu for the
// lifetime of the test. Call this once at the top of each worker
// goroutine that should be treated as running on a distinct CPU.
func (s *Scheduler) BindCurrentGoroutine(cpu int) {
	s.mu.Lock()
	s.cpu[goroutineID()] = cpu
	s.mu.Unlock()
}

// CurrentCPU reports the CPU the calling goroutine was bound to via
// BindCurrentGoroutine, or 0 if it was never bound.
func (s *Scheduler) CurrentCPU() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cpu[goroutineID()]
}

// NumCPU returns the configured logical CPU count.
func (s *Scheduler) NumCPU() int { return s.numCPU }

// PreemptDisable/PreemptEnable are no-ops here: this fake's CPU
// assignment is explicit via BindCurrentGoroutine rather than derived
// from OS thread affinity, so there is nothing to bracket.
func (s *Scheduler) PreemptDisable() {}
func (s *Scheduler) PreemptEnable()  {}

// Now returns a strictly increasing synthetic monotonic clock, avoiding
// any dependency on wall-clock resolution in fast test loops.
func (s *Scheduler) Now() int64 { return s.clock.Add(1) }

// goroutineID extracts the current goroutine's runtime id from its
// stack trace header ("goroutine 123 [running]:"). It exists purely to
// give this test double a stable per-goroutine key; production code
// never needs this.
func goroutineID() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := bytes.TrimPrefix(buf[:n], []byte("goroutine "))
	b = b[:bytes.IndexByte(b, ' ')]
	id, _ := strconv.ParseInt(string(b), 10, 64)
	return id
}
