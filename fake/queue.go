// File: fake/queue.go
// Package fake provides in-memory test doubles for the driver's
// external collaborators (api.Queue, api.BufferPool, api.UpperLayer),
// styled after the teacher's fake/ package: hand-rolled doubles kept
// deliberately simple rather than a generated-mock framework, since the
// driver's external contracts are small and the interesting behavior is
// in the timing/ordering the fakes simulate, not in call verification.
// Author: momentics <momentics@gmail.com>

package fake

import (
	"context"
	"sync"
	"time"

	"github.com/momentics/vnic/api"
)

// Queue is an in-memory split-ring descriptor queue simulating the
// hardware transport §6.1 describes: a fixed capacity, a configurable
// host-side completion delay (to exercise S2-style back-pressure), and
// the avail/used/finalize handshake.
type Queue struct {
	mu       sync.Mutex
	cond     *sync.Cond
	capacity int
	delay    time.Duration

	curSG [][]byte

	inflight map[api.Cookie]uint32
	used     []usedEntry
	popped   int

	indirect         bool
	interruptsOff    bool
	newSinceLastKick bool
	kicks            int
}

type usedEntry struct {
	cookie api.Cookie
	length uint32
}

// NewQueue creates a Queue with the given descriptor capacity. delay, if
// greater than zero, is how long after a TryAddBuf call (which itself
// returns at once) the fake "host" posts the completion to the used
// ring — used to simulate realistic
// completion latency (scenario S2).
func NewQueue(capacity int, delay time.Duration) *Queue {
	q := &Queue{capacity: capacity, delay: delay, inflight: make(map[api.Cookie]uint32)}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *Queue) outstandingLocked() int {
	return len(q.inflight) + len(q.used) + q.popped
}

func (q *Queue) InitSG() { q.curSG = q.curSG[:0] }

func (q *Queue) AddOut(p []byte) { q.curSG = append(q.curSG, p) }

func (q *Queue) AddIn(p []byte) { q.curSG = append(q.curSG, p) }

func (q *Queue) TryAddBuf(cookie api.Cookie) bool {
	q.mu.Lock()
	if q.outstandingLocked() >= q.capacity {
		q.mu.Unlock()
		return false
	}
	length := 0
	for _, f := range q.curSG {
		length += len(f)
	}
	q.inflight[cookie] = uint32(length)
	q.newSinceLastKick = true
	q.mu.Unlock()

	complete := func() {
		q.mu.Lock()
		if l, ok := q.inflight[cookie]; ok {
			delete(q.inflight, cookie)
			q.used = append(q.used, usedEntry{cookie: cookie, length: l})
			q.cond.Broadcast()
		}
		q.mu.Unlock()
	}
	if q.delay <= 0 {
		complete()
	} else {
		time.AfterFunc(q.delay, complete)
	}
	return true
}

// PostCompleted directly enqueues a used-ring completion for cookie
// reporting length bytes, bypassing the normal avail-ring/TryAddBuf
// accounting. Real receive descriptors are posted with a buffer's full
// capacity but completed with however many bytes the host actually
// wrote, which can be far less — this lets RX-engine tests drive that
// distinction directly instead of routing through the TX-shaped
// avail/used dance TryAddBuf models.
func (q *Queue) PostCompleted(cookie api.Cookie, length uint32) {
	q.mu.Lock()
	q.used = append(q.used, usedEntry{cookie: cookie, length: length})
	q.cond.Broadcast()
	q.mu.Unlock()
}

func (q *Queue) GetBufElem() (api.Cookie, uint32, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.used) == 0 {
		return 0, 0, false
	}
	e := q.used[0]
	q.used = q.used[1:]
	q.popped++
	return e.cookie, e.length, true
}

func (q *Queue) GetBufFinalize(n int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if n > q.popped {
		n = q.popped
	}
	q.popped -= n
}

func (q *Queue) UsedRingNotEmpty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.used) > 0
}

func (q *Queue) AvailRingHasRoom(n int) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.capacity-q.outstandingLocked() >= n
}

func (q *Queue) RefillNeeded() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.capacity-q.outstandingLocked() > 0
}

func (q *Queue) Kick() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.kicks++
	needed := q.newSinceLastKick
	q.newSinceLastKick = false
	return needed
}

// Kicks reports how many times Kick has been called, for test
// assertions against the doorbell-bound property.
func (q *Queue) Kicks() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.kicks
}

func (q *Queue) DisableInterrupts() {
	q.mu.Lock()
	q.interruptsOff = true
	q.mu.Unlock()
}

func (q *Queue) WaitForUsed(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		q.mu.Lock()
		for len(q.used) == 0 {
			q.cond.Wait()
		}
		q.mu.Unlock()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		q.cond.Broadcast() // release the helper goroutine's Wait
		return ctx.Err()
	}
}

func (q *Queue) Size() int { return q.capacity }

func (q *Queue) SetIndirect(indirect bool) {
	q.mu.Lock()
	q.indirect = indirect
	q.mu.Unlock()
}
