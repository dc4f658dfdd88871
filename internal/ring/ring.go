// File: internal/ring/ring.go
// Package ring implements the lock-free bounded single-producer/
// single-consumer descriptor ring (§4.A): two monotonically increasing
// atomic counters, no CAS, no internal retry loop — a full ring and an
// empty ring are distinguished purely by head-tail arithmetic. Grounded
// on core/concurrency/ring.go's counter layout, generalized from its
// CAS-based MPMC design down to the wait-free SPSC contract §4.A
// requires and cache-line-padded the way pool/ring.go pads its counters
// to avoid false sharing between the producer and consumer CPUs.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
// License: Apache-2.0

package ring

import "sync/atomic"

const cacheLinePad = 64

// Ring is a bounded SPSC ring buffer of capacity elements, where capacity
// must be a power of two. Push is safe to call from exactly one producer
// goroutine; Pop is safe to call from exactly one consumer goroutine.
// Calling either from more than one goroutine concurrently is undefined.
type Ring[T any] struct {
	head atomic.Uint32
	_    [cacheLinePad - 4]byte

	tail atomic.Uint32
	_    [cacheLinePad - 4]byte

	mask uint32
	buf  []T
}

// New creates a Ring with room for capacity elements. capacity is rounded
// up to the next power of two if it isn't already one.
func New[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	c := nextPow2(uint32(capacity))
	return &Ring[T]{
		mask: c - 1,
		buf:  make([]T, c),
	}
}

func nextPow2(n uint32) uint32 {
	if n&(n-1) == 0 {
		return n
	}
	p := uint32(1)
	for p < n {
		p <<= 1
	}
	return p
}

// Cap returns the ring's fixed capacity.
func (r *Ring[T]) Cap() int { return int(r.mask) + 1 }

// Len returns a snapshot of the number of queued elements. Racy with
// concurrent Push/Pop by design; intended for diagnostics and
// threshold checks, not synchronization.
func (r *Ring[T]) Len() int {
	h := r.head.Load()
	t := r.tail.Load()
	return int(h - t)
}

// Push enqueues v. It returns false without blocking if the ring is full.
func (r *Ring[T]) Push(v T) bool {
	h := r.head.Load()
	t := r.tail.Load()
	if h-t >= uint32(len(r.buf)) {
		return false
	}
	r.buf[h&r.mask] = v
	r.head.Store(h + 1)
	return true
}

// Pop dequeues the oldest element. It returns ok=false without blocking
// if the ring is empty.
func (r *Ring[T]) Pop() (v T, ok bool) {
	t := r.tail.Load()
	h := r.head.Load()
	if t == h {
		return v, false
	}
	v = r.buf[t&r.mask]
	r.tail.Store(t + 1)
	return v, true
}
