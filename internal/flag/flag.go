// File: internal/flag/flag.go
// Package flag implements the two small coordination primitives the TX
// fast path and dispatcher share (§4.C, §4.D): an exclusive-ownership
// RUNNING flag implemented as a test-and-set, and a PENDING flag whose
// clear-before-check / set-after-push ordering prevents the classic
// missed-wakeup race between a producer pushing work and a consumer
// deciding there is none. Grounded on core/concurrency/executor.go's
// atomic.Bool "closed" flag, generalized from a one-shot latch to a
// reusable claim/release pair and a separate wake-coordination flag.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
// License: Apache-2.0

package flag

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Exclusive is a test-and-set flag used to give one goroutine at a time
// exclusive rights to drain a resource (the RUNNING bit of §4.D): a
// fast-path caller that wins the claim becomes responsible for dispatch
// work a concurrent caller would otherwise duplicate.
type Exclusive struct {
	v atomic.Bool
}

// TryClaim attempts to transition the flag from false to true. It
// reports whether this call won the claim.
func (e *Exclusive) TryClaim() bool {
	return e.v.CompareAndSwap(false, true)
}

// Acquire blocks until the claim is won. Callers that must not migrate
// OS threads while waiting (the dispatcher acquiring RUNNING) should
// bracket this with their own preemption control; Acquire itself only
// spins the calling goroutine.
func (e *Exclusive) Acquire() {
	for !e.TryClaim() {
		runtime.Gosched()
	}
}

// Release clears the flag, making it claimable again.
func (e *Exclusive) Release() {
	e.v.Store(false)
}

// Held reports whether the flag is currently claimed. Racy by nature;
// intended for diagnostics only.
func (e *Exclusive) Held() bool {
	return e.v.Load()
}

// Pending is a wake-coordination flag between any number of producers
// and a single consumer. A producer calls MarkPending after pushing work so a consumer
// that is about to go idle is guaranteed to notice it; a consumer calls
// ClearPending before checking whether work exists, then checks again
// after finding none, to close the window between "check" and "sleep".
type Pending struct {
	mu   sync.Mutex
	cond *sync.Cond
	set  bool
}

// NewPending returns a ready-to-use Pending flag.
func NewPending() *Pending {
	p := &Pending{}
	p.cond = sync.NewCond(&p.mu)
	return p
}

// MarkPending records that new work is available and wakes any consumer
// blocked in Wait.
func (p *Pending) MarkPending() {
	p.mu.Lock()
	p.set = true
	p.mu.Unlock()
	p.cond.Broadcast()
}

// Peek reports whether the flag is currently set, without clearing it.
// Used by a producer deciding whether to take a fast path or fall back
// to staging (§4.D fast-path step 1); never used by the consumer side,
// which must always go through ClearPending to preserve the
// clear-before-check ordering.
func (p *Pending) Peek() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.set
}

// ClearPending clears the flag and reports whether it was set. A
// consumer calls this immediately before re-checking its queue for
// work, so a MarkPending racing with the check is never lost.
func (p *Pending) ClearPending() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	was := p.set
	p.set = false
	return was
}

// Wait blocks until MarkPending is called at least once after the last
// ClearPending, then clears and returns. Intended for a consumer that
// has just rechecked its queue and found it genuinely empty.
func (p *Pending) Wait() {
	p.mu.Lock()
	for !p.set {
		p.cond.Wait()
	}
	p.set = false
	p.mu.Unlock()
}
