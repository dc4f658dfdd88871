// File: internal/txeng/fastpath.go
// The non-blocking transmit fast path (§4.D "Fast path (xmit)") and
// per-CPU enqueue (§4.D "Per-CPU enqueue (push_cpu)").
// Author: momentics <momentics@gmail.com>

package txeng

import (
	"github.com/momentics/vnic/api"
	"github.com/momentics/vnic/internal/offload"
	"github.com/momentics/vnic/internal/stage"
	"github.com/momentics/vnic/internal/wire"
)

const maxHeaderScratch = 14 + 4 + 20 + 20 // Ethernet(+VLAN) + IPv4 + TCP, no options

// Xmit is the non-blocking transmit entry point. It never drops pbuf
// for space reasons: on back-pressure it stages the packet on a
// per-CPU ring and returns success; it returns ErrInvalidArgument only
// when offload preparation finds the packet malformed.
func (e *Engine) Xmit(pbuf *api.PacketBuffer) error {
	defer e.wakeDispatcherIfPending()

	if e.pending.Peek() || !e.running.TryClaim() {
		e.pushCPU(pbuf)
		return nil
	}

	req, ok := e.buildReq(pbuf)
	if !ok {
		e.running.Release()
		e.counters.TxErr.Add(1)
		pbuf.Release()
		return api.ErrInvalidArgument
	}

	added := e.tryAddToHW(req)
	if !added {
		e.gc()
		added = e.tryAddToHW(req)
	}
	if !added {
		e.running.Release()
		e.discardReq(req)
		e.pushCPU(pbuf)
		return nil
	}

	e.counters.TxPackets.Add(1)
	e.counters.TxBytes.Add(uint64(pbuf.Len()))
	needDoorbell := e.pktsSinceKick.Add(1) == 1
	e.running.Release()
	if needDoorbell {
		e.doorbell()
		e.pktsSinceKick.Store(0)
	}
	return nil
}

// wakeDispatcherIfPending implements §4.D fast-path step 6: regardless
// of which branch Xmit took, wake the dispatcher if PENDING is set.
func (e *Engine) wakeDispatcherIfPending() {
	if e.pending.Peek() {
		e.pending.MarkPending()
	}
}

// buildReq applies offload preparation and, on success, encodes the net
// header into a freshly pooled tx_req. The packet buffer itself is not
// consumed here; callers decide its fate.
func (e *Engine) buildReq(pbuf *api.PacketBuffer) (*txReq, bool) {
	scratch := e.scratchPool.Get(maxHeaderScratch)
	defer scratch.Release()

	hdr, ok := offload.Prepare(pbuf, e.hostECN, scratch.Bytes())
	if !ok {
		return nil, false
	}

	req := e.reqPool.Get()
	req.reset()
	req.pkt = pbuf
	req.header = hdr
	n, err := hdr.Encode(req.headerBuf[:], e.mergedRxBuf)
	if err != nil {
		e.reqPool.Put(req)
		return nil, false
	}
	req.headerLen = n

	if hdr.Flags&wire.NeedsCsum != 0 {
		e.counters.TxCsum.Add(1)
	}
	if hdr.GSOType != wire.GSONone {
		e.counters.TxTSO.Add(1)
	}
	return req, true
}

// tryAddToHW publishes req's header and packet segments as one
// scatter-gather descriptor chain. It returns false without blocking if
// the hardware ring has no room or no cookie slot is free.
func (e *Engine) tryAddToHW(req *txReq) bool {
	cookie, ok := e.allocCookie()
	if !ok {
		return false
	}
	e.q.InitSG()
	e.q.AddOut(req.headerBuf[:req.headerLen])
	for _, seg := range req.pkt.Segments() {
		e.q.AddOut(seg.Bytes())
	}
	if !e.q.TryAddBuf(cookie) {
		e.freeCookie(cookie)
		return false
	}
	req.cookie = cookie
	e.reqs[cookie] = req
	e.liveReqs.Add(1)
	return true
}

// discardReq returns a built-but-unsent tx_req to its pool without
// touching the packet buffer it references, since the caller still owns
// pbuf and will route it through per-CPU staging instead.
func (e *Engine) discardReq(req *txReq) {
	req.pkt = nil
	e.reqPool.Put(req)
}

func (e *Engine) doorbell() {
	if e.q.Kick() {
		e.counters.TxKicked.Add(1)
	}
	e.counters.TxDoorbell.Add(1)
}

// pushCPU implements §4.D's push_cpu: stage pbuf on the current CPU's
// ring, retrying once with a registered waiter before blocking, and
// refreshing the CPU and timestamp on every wake since the calling
// thread may have migrated.
func (e *Engine) pushCPU(pbuf *api.PacketBuffer) {
	for {
		e.sched.PreemptDisable()
		r := e.ringForCurrentCPU()
		ts := e.sched.Now()
		if r.TryPush(pbuf, ts) {
			e.sched.PreemptEnable()
			e.pending.MarkPending()
			return
		}

		waitCh := r.RegisterWaiter()
		ts = e.sched.Now()
		if r.TryPush(pbuf, ts) {
			e.sched.PreemptEnable()
			e.pending.MarkPending()
			return
		}
		e.sched.PreemptEnable()
		<-waitCh
		// Woken: loop back to refresh CPU id and timestamp (§4.D step 4).
	}
}

func (e *Engine) ringForCurrentCPU() *stage.Ring[*api.PacketBuffer] {
	cpu := e.sched.CurrentCPU() % len(e.perCPU)
	if cpu < 0 {
		cpu += len(e.perCPU)
	}
	return e.perCPU[cpu]
}
