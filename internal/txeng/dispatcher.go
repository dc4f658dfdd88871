// File: internal/txeng/dispatcher.go
// The single TX dispatcher thread (§4.D "Dispatcher loop") and the
// single-locked send it uses to drain staged packets
// (§4.D "Single-locked send (xmit_one_locked)").
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package txeng

import (
	"context"

	"github.com/momentics/vnic/api"
)

// Start launches the dispatcher goroutine. It must be called exactly
// once; the design assumes a single dispatcher for the driver's
// lifetime (§4.D "Dispatcher crash is unrecoverable").
func (e *Engine) Start() {
	go e.runDispatcher()
}

// runDispatcher implements §4.D's dispatcher pseudocode: acquire
// RUNNING, clear PENDING, drain the merger in timestamp order batching
// doorbells, and sleep on PENDING when the merger is empty.
func (e *Engine) runDispatcher() {
	defer close(e.doneCh)

	e.running.Acquire()
	for {
		e.pending.ClearPending()

		entry, src, ok := e.merger.PopSrc()
		if !ok {
			e.wakeAllWaiters()
			e.running.Release()
			if e.sleepUntilPendingOrStop() {
				return
			}
			e.counters.DispWakeup.Add(1)
			e.running.Acquire()
			continue
		}

		sinceKick := 0
		for {
			e.xmitOneLocked(entry.Item)
			// §4.C: wake whoever is blocked on the ring this entry just
			// came from, now that the pop made room for them.
			e.perCPU[src].WakeOne()
			sinceKick++
			if sinceKick >= e.q.Size() {
				e.doorbell()
				sinceKick = 0
			}
			entry, src, ok = e.merger.PopSrc()
			if !ok {
				break
			}
		}
		if sinceKick > 0 {
			e.doorbell()
		}
	}
}

func (e *Engine) wakeAllWaiters() {
	for _, r := range e.perCPU {
		r.WakeAll()
	}
}

// sleepUntilPendingOrStop blocks until PENDING is set or Stop has been
// requested, reporting which happened.
func (e *Engine) sleepUntilPendingOrStop() (stopped bool) {
	select {
	case <-e.stopCh:
		return true
	default:
	}
	e.pending.Wait()
	select {
	case <-e.stopCh:
		return true
	default:
		return false
	}
}

// xmitOneLocked sends pbuf via the hardware ring while RUNNING is held
// by the dispatcher. Unlike the fast path, a malformed packet here has
// no synchronous caller left to signal: it is dropped and tx_err is
// incremented (§7 "Malformed packet on transmit").
func (e *Engine) xmitOneLocked(pbuf *api.PacketBuffer) {
	req, ok := e.buildReq(pbuf)
	if !ok {
		e.counters.TxErr.Add(1)
		pbuf.Release()
		return
	}

	for !e.tryAddToHW(req) {
		e.doorbell()
		_ = e.q.WaitForUsed(context.Background())
		e.gc()
	}

	e.counters.TxPackets.Add(1)
	e.counters.TxBytes.Add(uint64(pbuf.Len()))
	e.counters.TxViaDisp.Add(1)
}

// Stop requests dispatcher shutdown, waits for it to exit, drains all
// in-flight hardware completions, and discards any packets still
// staged on per-CPU rings (§4.F "On detach").
func (e *Engine) Stop() {
	close(e.stopCh)
	e.pending.MarkPending()
	<-e.doneCh
	e.drainInFlight()
	e.Flush()
	e.disposer.Close()
}

func (e *Engine) drainInFlight() {
	for e.liveReqs.Load() > 0 {
		e.gc()
		if e.liveReqs.Load() > 0 {
			_ = e.q.WaitForUsed(context.Background())
		}
	}
}

// Flush invalidates all packets currently staged on per-CPU rings,
// releasing each back to its pool (§4.D "flush()": used on MTU change
// or teardown).
func (e *Engine) Flush() {
	for _, r := range e.perCPU {
		for {
			entry, ok := r.Next()
			if !ok {
				break
			}
			entry.Item.Release()
		}
		r.WakeAll()
	}
}
