// File: internal/merge/merge.go
// Package merge implements the N-way timestamp-ordered merge used to
// drain per-CPU staging rings in global submission order (§4.B): a
// binary min-heap over one lookahead item per source, refilled from
// whichever source just yielded the heap's minimum. Grounded on
// core/concurrency's heap-based timer-wheel ordering, adapted from a
// single deadline-ordered source set to the fan-in-many-producers
// shape this driver's per-CPU staging rings require.
// Author: momentics <momentics@gmail.com>

package merge

import "container/heap"

// Source is a single producer-side feed the Merger drains from. Next
// must be non-blocking: it reports ok=false when the source currently
// has nothing ready rather than waiting.
type Source[T any] interface {
	Next() (T, bool)
}

// IdlePredicate reports whether the owning engine has no more work
// coming and the Merger may treat a currently empty merge as final
// rather than retry later.
type IdlePredicate func() bool

type heapItem[T any] struct {
	ts  int64
	val T
	src int
}

type minHeap[T any] []heapItem[T]

func (h minHeap[T]) Len() int            { return len(h) }
func (h minHeap[T]) Less(i, j int) bool  { return h[i].ts < h[j].ts }
func (h minHeap[T]) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *minHeap[T]) Push(x interface{}) { *h = append(*h, x.(heapItem[T])) }
func (h *minHeap[T]) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Merger drains N Sources in ascending timestamp order. It holds at most
// one lookahead item per source at any time, so memory use is O(N)
// regardless of how deep any one source's backlog runs.
type Merger[T any] struct {
	sources []Source[T]
	keyFn   func(T) int64
	idle    IdlePredicate
	h       minHeap[T]
}

// New builds a Merger over sources, keyed by keyFn, and performs the
// initial fill. idle is consulted by Drained to decide whether an empty
// merge is final or merely a transient lull.
func New[T any](sources []Source[T], keyFn func(T) int64, idle IdlePredicate) *Merger[T] {
	m := &Merger[T]{
		sources: sources,
		keyFn:   keyFn,
		idle:    idle,
		h:       make(minHeap[T], 0, len(sources)),
	}
	heap.Init(&m.h)
	m.fillAll()
	return m
}

func (m *Merger[T]) fillAll() {
	for idx, src := range m.sources {
		if v, ok := src.Next(); ok {
			heap.Push(&m.h, heapItem[T]{ts: m.keyFn(v), val: v, src: idx})
		}
	}
}

// Pop returns the globally oldest ready item across all sources. If the
// heap is currently empty it makes one best-effort refill pass across
// every source before giving up.
func (m *Merger[T]) Pop() (T, bool) {
	v, _, ok := m.PopSrc()
	return v, ok
}

// PopSrc is Pop, additionally reporting the index (into the sources
// slice passed to New) the returned item came from. Callers that must
// notify a specific per-source waiter after draining it (§4.C: "the
// dispatcher wakes waiters whenever it pops an entry that crossed the
// full-threshold") use this instead of Pop.
func (m *Merger[T]) PopSrc() (T, int, bool) {
	if m.h.Len() == 0 {
		m.fillAll()
		if m.h.Len() == 0 {
			var zero T
			return zero, -1, false
		}
	}
	item := heap.Pop(&m.h).(heapItem[T])
	if v, ok := m.sources[item.src].Next(); ok {
		heap.Push(&m.h, heapItem[T]{ts: m.keyFn(v), val: v, src: item.src})
	}
	return item.val, item.src, true
}

// Drained reports whether the merge is exhausted for good: the heap is
// empty, a fresh refill pass still finds nothing, and the idle predicate
// confirms no producer will add more work. A caller should keep polling
// Pop instead of treating a transient empty result as final.
func (m *Merger[T]) Drained() bool {
	if m.h.Len() > 0 {
		return false
	}
	m.fillAll()
	if m.h.Len() > 0 {
		return false
	}
	return m.idle == nil || m.idle()
}

// Len reports how many lookahead items are currently held in the heap.
func (m *Merger[T]) Len() int { return m.h.Len() }
