package ring

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingPushPopOrder(t *testing.T) {
	r := New[int](4)
	require.True(t, r.Push(1))
	require.True(t, r.Push(2))
	require.True(t, r.Push(3))

	v, ok := r.Pop()
	require.True(t, ok)
	assert.Equal(t, 1, v)

	require.True(t, r.Push(4))
	require.True(t, r.Push(5))

	for _, want := range []int{2, 3, 4, 5} {
		v, ok := r.Pop()
		require.True(t, ok)
		assert.Equal(t, want, v)
	}
	_, ok = r.Pop()
	assert.False(t, ok)
}

func TestRingFullRejectsPush(t *testing.T) {
	r := New[int](4)
	for i := 0; i < 4; i++ {
		require.True(t, r.Push(i))
	}
	assert.False(t, r.Push(99))
	assert.Equal(t, 4, r.Len())
}

func TestRingCapacityRoundsUpToPow2(t *testing.T) {
	r := New[int](5)
	assert.Equal(t, 8, r.Cap())
}

func TestRingConcurrentSPSC(t *testing.T) {
	const n = 100000
	r := New[int](1024)
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			for !r.Push(i) {
			}
		}
	}()

	sum := 0
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			for {
				v, ok := r.Pop()
				if ok {
					sum += v
					break
				}
			}
		}
	}()

	wg.Wait()
	assert.Equal(t, n*(n-1)/2, sum)
}
