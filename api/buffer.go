// File: api/buffer.go
// Package api defines Buffer and BufferPool, the contract for the
// allocator external collaborator (page-sized and arbitrary allocations;
// out of scope for this module — only the interface is owned here).
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// Buffer is a zero-copy memory slice borrowed from a pool. It is a plain
// struct (not an interface) to avoid interface boxing on the hot path.
type Buffer struct {
	Data []byte
	Pool Releaser
}

// Releaser decouples Buffer from any particular pool implementation.
type Releaser interface {
	Put(Buffer)
}

// Bytes returns the full byte slice backing this Buffer.
func (b Buffer) Bytes() []byte { return b.Data }

// Slice returns a new Buffer view sharing the same underlying memory.
func (b Buffer) Slice(from, to int) Buffer {
	if from < 0 || to > len(b.Data) || from > to {
		return Buffer{Pool: b.Pool}
	}
	return Buffer{Data: b.Data[from:to], Pool: b.Pool}
}

// Release returns the buffer to its pool.
func (b Buffer) Release() {
	if b.Pool != nil {
		b.Pool.Put(b)
	}
}

// Capacity returns the capacity of the underlying slice.
func (b Buffer) Capacity() int { return cap(b.Data) }

// BufferPool provides buffer allocation for the receive ring's posted
// slots. The allocator itself is an external collaborator (§1); this
// module only depends on the interface.
type BufferPool interface {
	Get(size int) Buffer
	Put(b Buffer)
	Stats() BufferPoolStats
}

// BufferPoolStats summarizes pool usage.
type BufferPoolStats struct {
	TotalAlloc int64
	TotalFree  int64
	InUse      int64
}
