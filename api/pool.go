// File: api/pool.go
// Author: momentics <momentics@gmail.com>
//
// Defines abstract pooling APIs: generic object reuse. Byte-buffer
// reuse is covered by BufferPool (api/buffer.go), which already fits
// this driver's Buffer/Releaser convention; there is no separate raw
// []byte pooling contract here, since nothing in this module needs one
// shaped differently from BufferPool.

package api

// ObjectPool provides generic pooling of Go objects allocated
// transiently, implemented by internal/objpool.Sync[T] for tx_req
// reuse (§9 "Manual object lifetimes").
type ObjectPool[T any] interface {
	// Get returns an available instance from pool
	Get() T

	// Put returns an instance for reuse
	Put(obj T)
}
