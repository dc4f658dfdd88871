// File: internal/txeng/txreq.go
// tx_req (§3): a driver-owned record bound 1:1 with an in-flight
// transmit, holding the fixed-size net header and a reference to the
// borrowed packet buffer. Grounded on §9's "manual object lifetimes"
// design note: ownership transfers to the hardware ring on successful
// add, and back to the driver for disposal when the ring returns the
// descriptor (see gc in gc.go).
// Author: momentics <momentics@gmail.com>

package txeng

import (
	"github.com/momentics/vnic/api"
	"github.com/momentics/vnic/internal/objpool"
	"github.com/momentics/vnic/internal/wire"
)

// txReq is pooled via objpool.Sync and reset between uses.
type txReq struct {
	header    wire.NetHeader
	headerBuf [wire.MrgHeaderSize]byte
	headerLen int
	pkt       *api.PacketBuffer
	cookie    api.Cookie
}

// objpool.Sync[*txReq] implements api.ObjectPool[*txReq]: Get/Put
// already match the contract exactly, this just keeps the interface
// from going unexercised.
var _ api.ObjectPool[*txReq] = (*objpool.Sync[*txReq])(nil)

func newTxReq() *txReq { return &txReq{} }

func (r *txReq) reset() {
	r.header = wire.NetHeader{}
	r.headerLen = 0
	r.pkt = nil
	r.cookie = 0
}
