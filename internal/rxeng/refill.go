// File: internal/rxeng/refill.go
// Ring refill (§4.E "Ring refill"): post fresh MCL-sized buffers to the
// available side of the receive ring until it is full or the allocator
// is exhausted, doorbelling once at the end of the burst.
// Author: momentics <momentics@gmail.com>

package rxeng

import "github.com/momentics/vnic/api"

// Refill posts buffers until the ring is full or no cookie/allocation is
// available, then kicks once if anything was posted. Allocator
// exhaustion is not an error: the loop simply stops, leaving the ring
// partially refilled (§7 "Allocator exhaustion on receive refill").
func (e *Engine) Refill() {
	posted := 0
	for e.q.AvailRingHasRoom(1) {
		cookie, ok := e.allocCookie()
		if !ok {
			break
		}
		buf := e.pool.Get(RxBufSize)
		if buf.Data == nil {
			e.freeCookie(cookie)
			break
		}
		e.posted[cookie] = buf
		e.q.InitSG()
		e.q.AddIn(buf.Data)
		if !e.q.TryAddBuf(cookie) {
			e.posted[cookie] = api.Buffer{}
			e.freeCookie(cookie)
			buf.Release()
			break
		}
		posted++
	}
	if posted > 0 {
		e.q.Kick()
	}
}
