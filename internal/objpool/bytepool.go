// File: internal/objpool/bytepool.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package objpool

import (
	"sync"
	"sync/atomic"

	"github.com/momentics/vnic/api"
)

// BytePool is a size-bucketed, channel-backed api.BufferPool used to
// post fresh MCL-sized receive slots (§4.E "Ring refill") and to back
// offload header scratch space on transmit. A request is served from
// the bucket at or above its size (rounded up to the next power of
// two); a release goes back into the bucket at or below its actual
// capacity (rounded down), since a returned buffer is often a Slice of
// a larger one and its capacity is rarely itself a power of two.
// Mirrors pool/base_bufferpool.go's free-list-per-size-class shape
// without its NUMA-node keying, which this driver has no use for.
type BytePool struct {
	mu      sync.Mutex
	buckets map[int]chan []byte

	totalAlloc atomic.Int64
	totalFree  atomic.Int64
	inUse      atomic.Int64
}

// NewBytePool returns an empty BytePool.
func NewBytePool() *BytePool {
	return &BytePool{buckets: make(map[int]chan []byte)}
}

// bucketSize rounds n up to the next power of two, used to pick which
// bucket a requested size should be served from.
func bucketSize(n int) int {
	if n < 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// bucketFloor rounds n down to the largest power of two <= n, used to
// pick which bucket a buffer being returned may safely be re-bucketed
// into: every buffer in a bucket keyed by bs must have cap >= bs, and
// cap(b.Data) is not always itself a power of two (e.g. a buffer
// returned after being Slice'd down for a header strip).
func bucketFloor(n int) int {
	if n < 1 {
		return 0
	}
	p := 1
	for p*2 <= n {
		p <<= 1
	}
	return p
}

func (p *BytePool) channelFor(size int) chan []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	ch, ok := p.buckets[size]
	if !ok {
		ch = make(chan []byte, 256)
		p.buckets[size] = ch
	}
	return ch
}

// Get returns a Buffer of at least size bytes, reused from the matching
// size bucket when available.
func (p *BytePool) Get(size int) api.Buffer {
	bs := bucketSize(size)
	ch := p.channelFor(bs)
	p.inUse.Add(1)
	select {
	case buf := <-ch:
		p.totalFree.Add(-1)
		return api.Buffer{Data: buf[:size], Pool: p}
	default:
		p.totalAlloc.Add(1)
		return api.Buffer{Data: make([]byte, size, bs), Pool: p}
	}
}

// Put returns b to its size bucket for reuse. The bucket is keyed by
// the largest power of two not exceeding b.Data's actual capacity, not
// the smallest power of two at or above it: b may be a Slice of a
// larger pooled buffer (e.g. a posted receive slot with its net header
// stripped off), whose capacity is rarely itself a power of two, and
// rounding up there would produce a three-index slice bound past the
// buffer's real capacity.
func (p *BytePool) Put(b api.Buffer) {
	p.inUse.Add(-1)
	bs := bucketFloor(cap(b.Data))
	if bs == 0 {
		return
	}
	ch := p.channelFor(bs)
	select {
	case ch <- b.Data[:0:bs]:
		p.totalFree.Add(1)
	default:
	}
}

// Stats returns a snapshot of pool usage.
func (p *BytePool) Stats() api.BufferPoolStats {
	return api.BufferPoolStats{
		TotalAlloc: p.totalAlloc.Load(),
		TotalFree:  p.totalFree.Load(),
		InUse:      p.inUse.Load(),
	}
}
