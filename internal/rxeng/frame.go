// File: internal/rxeng/frame.go
// Per-frame receive handling (§4.E steps 1-8): pop the leading
// descriptor, validate the runt-frame floor, decode the net header,
// reassemble any additional merged-RX-buffer fragments, strip the
// header, validate the checksum hint, and hand the chain to the upper
// layer.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package rxeng

import (
	"github.com/momentics/vnic/api"
	"github.com/momentics/vnic/internal/wire"
)

func (e *Engine) popFrame() {
	cookie, length, ok := e.q.GetBufElem()
	if !ok {
		return
	}
	buf := e.posted[cookie]
	e.posted[cookie] = api.Buffer{}
	e.freeCookie(cookie)
	e.q.GetBufFinalize(1)

	if int(length) < e.headerSize+wire.EthernetHeaderLen {
		e.counters.RxDrops.Add(1)
		buf.Release()
		return
	}

	hdr, ok := wire.DecodeNetHeader(buf.Data[:length], e.mergedRxBuf)
	if !ok {
		e.counters.RxDrops.Add(1)
		buf.Release()
		return
	}

	numBuffers := 1
	if e.mergedRxBuf {
		numBuffers = int(hdr.NumBuffers)
		if numBuffers < 1 {
			numBuffers = 1
		}
	}

	// Strip the leading header bytes from the chain (§4.E step 6).
	pbuf := api.NewPacketBuffer(buf.Slice(0, int(length)))
	pbuf.TrimHead(e.headerSize)

	if !e.collectFragments(pbuf, numBuffers-1) {
		e.counters.RxDrops.Add(1)
		pbuf.Release()
		return
	}

	e.applyChecksum(pbuf, hdr)

	e.counters.RxPackets.Add(1)
	e.counters.RxBytes.Add(uint64(pbuf.Len()))
	e.upper.Input(pbuf)
}

// collectFragments pops n additional descriptors and appends them to
// pbuf. It reports false if any fragment is missing, in which case the
// already-collected chain must still be released by the caller (§4.E
// step 5, §9 design note #2).
func (e *Engine) collectFragments(pbuf *api.PacketBuffer, n int) bool {
	for i := 0; i < n; i++ {
		cookie, length, ok := e.q.GetBufElem()
		if !ok {
			return false
		}
		buf := e.posted[cookie]
		e.posted[cookie] = api.Buffer{}
		e.freeCookie(cookie)
		e.q.GetBufFinalize(1)

		// §9 design note #2: use the fragment's own preposted buffer
		// length as the authoritative size, clamped to whatever the
		// device reported, rather than trusting the reported length
		// alone. This reproduces the source's behavior exactly; it is
		// not "fixed" here.
		fragLen := int(length)
		if len(buf.Data) < fragLen {
			fragLen = len(buf.Data)
		}
		pbuf.Append(buf.Slice(0, fragLen))
	}
	return true
}

func (e *Engine) applyChecksum(pbuf *api.PacketBuffer, hdr wire.NetHeader) {
	pbuf.Checksum.NeedsCsum = hdr.Flags&wire.NeedsCsum != 0
	if !pbuf.Checksum.NeedsCsum || !e.guestCsum {
		return
	}
	scratch := e.scratch.Get(checksumScratchSize)
	defer scratch.Release()
	if wire.BadRxCsum(pbuf, hdr, scratch.Bytes()) {
		e.counters.RxCsumErr.Add(1)
		return
	}
	pbuf.Checksum.DataValid = true
	e.counters.RxCsum.Add(1)
}
