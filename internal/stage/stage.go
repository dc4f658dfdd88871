// File: internal/stage/stage.go
// Package stage implements the per-CPU TX staging ring (§4.C): a bounded
// SPSC ring of (item, timestamp) entries plus a waiter list of blocked
// producers, so a dispatcher that pops an entry crossing the
// full-threshold can wake exactly the producers it unblocked. Grounded
// on internal/ring's SPSC core, with the waiter-list half adapted from
// core/concurrency/eventloop.go's registered-waker bookkeeping.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package stage

import (
	"sync"

	"github.com/momentics/vnic/internal/ring"
)

// Entry is a per-CPU staging entry: a staged item and the monotonic
// timestamp it was staged with (§3 tx_buff_desc). The dispatcher drains
// entries across all per-CPU rings in non-decreasing ts order via
// internal/merge.
type Entry[T any] struct {
	Item T
	TS   int64
}

// Ring is one CPU's staging ring together with its waiter list. Exactly
// one producer (the owning CPU's thread) and one consumer (the
// dispatcher) may operate on it at a time; the waiter list itself is
// guarded by a dedicated mutex per §5's locking discipline ("wait list
// uses a dedicated lock per ring").
type Ring[T any] struct {
	r *ring.Ring[Entry[T]]

	mu      sync.Mutex
	waiters []chan struct{}
}

// StagingCapacity is the fixed per-CPU ring capacity (§3).
const StagingCapacity = 4096

// New creates a per-CPU staging ring.
func New[T any]() *Ring[T] {
	return &Ring[T]{r: ring.New[Entry[T]](StagingCapacity)}
}

// TryPush attempts to enqueue item stamped with ts. It returns false
// without blocking if the ring is full; callers implement the
// retry/wait/wake protocol in §4.D's push_cpu themselves.
func (s *Ring[T]) TryPush(item T, ts int64) bool {
	return s.r.Push(Entry[T]{Item: item, TS: ts})
}

// Next dequeues the oldest staged entry. It satisfies
// internal/merge.Source so a Ring can be merged directly.
func (s *Ring[T]) Next() (Entry[T], bool) {
	return s.r.Pop()
}

// Len reports a snapshot of the number of currently staged entries.
func (s *Ring[T]) Len() int { return s.r.Len() }

// Cap reports the ring's fixed capacity.
func (s *Ring[T]) Cap() int { return s.r.Cap() }

// RegisterWaiter appends a new wait channel for a producer about to
// block on a full ring and returns it. The producer must retry TryPush
// once more before waiting on the returned channel, per §4.D step 3.
func (s *Ring[T]) RegisterWaiter() <-chan struct{} {
	ch := make(chan struct{}, 1)
	s.mu.Lock()
	s.waiters = append(s.waiters, ch)
	s.mu.Unlock()
	return ch
}

// WakeAll wakes every currently registered waiter and clears the list.
// Used by the dispatcher when it finds the merger has nothing left and
// is about to go to sleep, so no producer is left waiting on a ring the
// dispatcher has already fully drained.
func (s *Ring[T]) WakeAll() {
	s.mu.Lock()
	ws := s.waiters
	s.waiters = nil
	s.mu.Unlock()
	for _, ch := range ws {
		nonBlockingSend(ch)
	}
}

// WakeOne wakes the single longest-waiting producer, FIFO, and reports
// whether a waiter was present. Used after popping an entry that
// crossed the ring's full threshold, so a blocked producer can retry.
func (s *Ring[T]) WakeOne() bool {
	s.mu.Lock()
	if len(s.waiters) == 0 {
		s.mu.Unlock()
		return false
	}
	ch := s.waiters[0]
	s.waiters = s.waiters[1:]
	s.mu.Unlock()
	nonBlockingSend(ch)
	return true
}

func nonBlockingSend(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
