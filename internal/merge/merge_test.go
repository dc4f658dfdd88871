package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sliceSource struct {
	items []int64
	pos   int
}

func (s *sliceSource) Next() (int64, bool) {
	if s.pos >= len(s.items) {
		return 0, false
	}
	v := s.items[s.pos]
	s.pos++
	return v, true
}

func key(v int64) int64 { return v }

func TestMergerGlobalOrder(t *testing.T) {
	a := &sliceSource{items: []int64{1, 4, 9}}
	b := &sliceSource{items: []int64{2, 3, 8}}
	c := &sliceSource{items: []int64{5, 6, 7}}

	m := New[int64]([]Source[int64]{a, b, c}, key, func() bool { return true })

	var out []int64
	for {
		v, ok := m.Pop()
		if !ok {
			break
		}
		out = append(out, v)
	}

	assert.Equal(t, []int64{1, 2, 3, 4, 5, 6, 7, 8, 9}, out)
}

func TestMergerDrainedRespectsIdlePredicate(t *testing.T) {
	a := &sliceSource{items: []int64{1}}
	stopping := false
	m := New[int64]([]Source[int64]{a}, key, func() bool { return stopping })

	_, ok := m.Pop()
	require.True(t, ok)

	assert.False(t, m.Drained(), "not stopping yet: empty merge must not be treated as final")

	stopping = true
	assert.True(t, m.Drained())
}

func TestMergerRefillsMidStream(t *testing.T) {
	a := &sliceSource{items: []int64{10}}
	m := New[int64]([]Source[int64]{a}, key, func() bool { return false })

	v, ok := m.Pop()
	require.True(t, ok)
	assert.Equal(t, int64(10), v)

	_, ok = m.Pop()
	assert.False(t, ok)

	a.items = append(a.items, 20)
	a.pos = len(a.items) - 1
	v, ok = m.Pop()
	require.True(t, ok)
	assert.Equal(t, int64(20), v)
}
