// File: internal/rxeng/poll.go
// The single RX poll loop (§4.E "Poll loop"): waits on the device
// interrupt (modeled as the Queue's used-ring-not-empty wait), drains
// every currently-used descriptor, and refills when the abstraction's
// refill predicate says to.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package rxeng

import "context"

// Start launches the poll loop goroutine. ctx cancellation is the poll
// loop's stop signal alongside the Running predicate (§4.E step 10); a
// caller tearing down the driver should cancel ctx and then wait on
// Done.
func (e *Engine) Start(ctx context.Context) {
	go e.run(ctx)
}

func (e *Engine) run(ctx context.Context) {
	defer close(e.doneCh)
	for {
		if ctx.Err() != nil || !e.running() {
			return
		}
		if !e.q.UsedRingNotEmpty() {
			if err := e.q.WaitForUsed(ctx); err != nil {
				return
			}
		}
		for e.q.UsedRingNotEmpty() {
			e.popFrame()
		}
		if e.q.RefillNeeded() {
			e.Refill()
		}
	}
}
