// Package api
// Author: momentics <momentics@gmail.com>
//
// PacketBuffer is the pbuf data model (§3): an externally owned chain of
// linked buffer segments. The driver never allocates or frees the chain
// itself — transmit chains are borrowed from the upper network stack,
// receive chains are borrowed from the allocator (api.BufferPool) via
// api.Buffer/Releaser — it only borrows, reads, trims and eventually
// releases them.

package api

// ChecksumFlags mirrors the upper layer's per-packet checksum request and,
// after RX validation, its result.
type ChecksumFlags struct {
	NeedsCsum bool // requested on TX, or observed set on RX
	DataValid bool // RX only: pseudo-header + data checksum validated
}

// TSOParams carries the upper layer's segmentation-offload request. ECN
// capability is not carried here: offload preparation derives it from
// the TCP header's own CWR bit, which is the authoritative signal (§4.D).
type TSOParams struct {
	Requested bool
	MSS       uint16
}

// PacketBuffer is a chain of api.Buffer segments with a known total
// length. Struct, not interface, to avoid boxing on the hot path (mirrors
// api.Buffer's own rationale).
type PacketBuffer struct {
	segs     []Buffer
	Checksum ChecksumFlags
	TSO      TSOParams
}

// NewPacketBuffer wraps one or more buffers borrowed from elsewhere.
func NewPacketBuffer(segs ...Buffer) *PacketBuffer {
	return &PacketBuffer{segs: append([]Buffer(nil), segs...)}
}

// Len returns the total length of the chain.
func (p *PacketBuffer) Len() int {
	n := 0
	for _, s := range p.segs {
		n += len(s.Data)
	}
	return n
}

// Segments returns the chain's backing buffers; callers must not retain
// the slice across a TrimHead/Append call.
func (p *PacketBuffer) Segments() []Buffer { return p.segs }

// Append adds a trailing segment, used when reassembling merged-RX-buffer
// frames.
func (p *PacketBuffer) Append(b Buffer) {
	p.segs = append(p.segs, b)
}

// Release returns every segment to its pool and empties the chain.
func (p *PacketBuffer) Release() {
	for _, s := range p.segs {
		s.Release()
	}
	p.segs = nil
}

// TrimHead removes the first n bytes from the chain, dropping or
// shrinking leading segments as needed. Reports false if the chain held
// fewer than n bytes (the chain is left fully drained in that case).
func (p *PacketBuffer) TrimHead(n int) bool {
	for n > 0 && len(p.segs) > 0 {
		seg := p.segs[0]
		if len(seg.Data) <= n {
			n -= len(seg.Data)
			p.segs = p.segs[1:]
			continue
		}
		p.segs[0].Data = seg.Data[n:]
		n = 0
	}
	return n == 0
}

// PullUp returns a contiguous view of the first n bytes of the chain. If
// the first segment already covers n bytes it is returned without a copy;
// otherwise scratch is used to coalesce the leading segments (scratch
// must have capacity >= n; callers typically obtain it from a BytePool).
// Reports false if the chain is shorter than n bytes.
func (p *PacketBuffer) PullUp(n int, scratch []byte) ([]byte, bool) {
	if n == 0 {
		return nil, true
	}
	if len(p.segs) > 0 && len(p.segs[0].Data) >= n {
		return p.segs[0].Data[:n], true
	}
	buf := scratch[:0]
	for _, s := range p.segs {
		if len(buf) >= n {
			break
		}
		need := n - len(buf)
		d := s.Data
		if len(d) > need {
			d = d[:need]
		}
		buf = append(buf, d...)
	}
	if len(buf) < n {
		return nil, false
	}
	return buf, true
}
