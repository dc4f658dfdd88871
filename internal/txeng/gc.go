// File: internal/txeng/gc.go
// Garbage collection of completed descriptors (§4.D "Garbage collection
// (gc)"): drains every used descriptor the hardware currently reports,
// freeing each one's tx_req and the packet buffer it held, finalizing
// completions in batches so the host can make progress concurrently.
// The actual disposal (releasing the packet buffer and returning the
// tx_req to its pool) is handed to the background internal/dispatch
// executor so it never runs on the fast path's or dispatcher's critical
// section (§9 "Manual object lifetimes").
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package txeng

func (e *Engine) gc() {
	batch := e.q.Size() / 4
	if batch < 1 {
		batch = 1
	}
	n := 0
	for {
		cookie, _, ok := e.q.GetBufElem()
		if !ok {
			break
		}
		if req := e.reqs[cookie]; req != nil {
			e.reqs[cookie] = nil
			e.liveReqs.Add(-1)
			e.disposer.Submit(func() {
				req.pkt.Release()
				e.reqPool.Put(req)
			})
		}
		e.freeCookie(cookie)
		n++
		if n >= batch {
			e.q.GetBufFinalize(n)
			n = 0
		}
	}
	if n > 0 {
		e.q.GetBufFinalize(n)
	}
}
