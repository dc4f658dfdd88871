// File: internal/objpool/sync.go
// Package objpool provides pooled storage for the driver's transient,
// manually-lifetimed allocations: tx_req records and offload scratch
// buffers (§9 "Manual object lifetimes", §3 tx_req). Grounded on
// pool/objpool.go's generic sync.Pool wrapper and pool/base_bufferpool.go's
// size-bucketed channel free lists, adapted from NUMA-bucketed buffer
// pooling to a single-node byte pool plus a generic object pool.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package objpool

import "sync"

// Sync wraps sync.Pool for a single concrete type, implementing
// api.ObjectPool[T].
type Sync[T any] struct {
	pool *sync.Pool
}

// NewSync creates a Sync pool whose members are produced by creator
// when the pool is empty.
func NewSync[T any](creator func() T) *Sync[T] {
	return &Sync[T]{pool: &sync.Pool{New: func() any { return creator() }}}
}

// Get returns a pooled or freshly created T.
func (s *Sync[T]) Get() T { return s.pool.Get().(T) }

// Put returns obj to the pool for reuse.
func (s *Sync[T]) Put(obj T) { s.pool.Put(obj) }
