// File: fake/bufferpool.go
// Package fake: a trivial api.BufferPool test double backed by plain
// make([]byte, n) allocations with no reuse, so tests can assert on
// simple allocation counts without the size-bucketing behavior of the
// real internal/objpool.BytePool.
// Author: momentics <momentics@gmail.com>

package fake

import (
	"sync/atomic"

	"github.com/momentics/vnic/api"
)

// BufferPool is an api.BufferPool test double. Exhausted, when set,
// makes Get return a zero-value Buffer to exercise the §7 "allocator
// exhaustion on receive refill" partial-refill path.
type BufferPool struct {
	Exhausted atomic.Bool

	allocs atomic.Int64
	frees  atomic.Int64
}

// NewBufferPool returns a BufferPool that never reports exhaustion
// until Exhausted is set.
func NewBufferPool() *BufferPool { return &BufferPool{} }

// Get returns a fresh size-byte buffer, or a zero-value Buffer if
// Exhausted is set.
func (p *BufferPool) Get(size int) api.Buffer {
	if p.Exhausted.Load() {
		return api.Buffer{}
	}
	p.allocs.Add(1)
	return api.Buffer{Data: make([]byte, size), Pool: p}
}

// Put records the release; the fake does not actually reuse memory.
func (p *BufferPool) Put(b api.Buffer) { p.frees.Add(1) }

// Stats returns a snapshot of allocation/free counts.
func (p *BufferPool) Stats() api.BufferPoolStats {
	return api.BufferPoolStats{
		TotalAlloc: p.allocs.Load(),
		TotalFree:  p.frees.Load(),
		InUse:      p.allocs.Load() - p.frees.Load(),
	}
}
