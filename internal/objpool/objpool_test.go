package objpool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct{ n int }

func TestSyncGetPutReuses(t *testing.T) {
	created := 0
	p := NewSync[*widget](func() *widget {
		created++
		return &widget{}
	})

	w1 := p.Get()
	assert.Equal(t, 1, created)
	p.Put(w1)

	w2 := p.Get()
	assert.Same(t, w1, w2)
	assert.Equal(t, 1, created)
}

func TestBytePoolGetPutRoundTrip(t *testing.T) {
	p := NewBytePool()
	b := p.Get(100)
	require.Len(t, b.Bytes(), 100)
	assert.Equal(t, int64(1), p.Stats().TotalAlloc)
	assert.Equal(t, int64(1), p.Stats().InUse)

	b.Release()
	assert.Equal(t, int64(1), p.Stats().TotalFree)
	assert.Equal(t, int64(0), p.Stats().InUse)

	b2 := p.Get(100)
	assert.Equal(t, int64(1), p.Stats().TotalAlloc)
	assert.Len(t, b2.Bytes(), 100)
}

func TestBytePoolRoundsUpBucketSize(t *testing.T) {
	p := NewBytePool()
	b := p.Get(100)
	assert.GreaterOrEqual(t, b.Capacity(), 100)
	assert.Equal(t, 128, b.Capacity())
}

// TestBytePoolPutSlicedBufferDoesNotPanic reproduces the RX reassembly
// path (internal/rxeng/frame.go strips the net header off a posted
// buffer via PacketBuffer.TrimHead before eventually releasing it): the sliced
// buffer's capacity is rarely a power of two, so Put must not round it
// up when choosing a bucket.
func TestBytePoolPutSlicedBufferDoesNotPanic(t *testing.T) {
	p := NewBytePool()
	b := p.Get(2048)
	sliced := b.Slice(10, len(b.Bytes()))
	require.Equal(t, 2038, sliced.Capacity())

	assert.NotPanics(t, sliced.Release)
	assert.Equal(t, int64(1), p.Stats().TotalFree)
}
