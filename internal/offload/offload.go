// File: internal/offload/offload.go
// Package offload implements transmit offload preparation (§4.D
// "offload"): parsing Ethernet/VLAN, IPv4, and TCP headers as needed to
// populate the per-packet net header's checksum and segmentation-offload
// fields, pulling up fragments as needed for header contiguity.
// Grounded on internal/wire's bit-exact parsing helpers, which are
// themselves adapted from core/protocol/frame_codec.go's bounds-checked
// parse style.
// Author: momentics <momentics@gmail.com>

package offload

import (
	"github.com/momentics/vnic/api"
	"github.com/momentics/vnic/internal/wire"
)

// maxHeaderPullup is the largest contiguous header region offload ever
// needs: an (optionally VLAN-tagged) Ethernet header, a 20-byte IPv4
// header with no options, and a 20-byte TCP header with no options.
const maxHeaderPullup = wire.EthernetHeaderLen + wire.VLANTagLen + 20 + 20

// Prepare populates a net header for pb according to its already-set
// Checksum and TSO request flags. ok=false means the packet is
// malformed or requests an offload combination the device cannot
// satisfy (e.g. TSO+ECN without host ECN support) and must be dropped
// by the caller; no header is meaningful in that case.
//
// scratch is used to pull up header bytes that straddle more than one
// segment; it must have capacity >= maxHeaderPullup and is typically
// obtained from a BytePool for the duration of one offload call.
func Prepare(pb *api.PacketBuffer, hostECN bool, scratch []byte) (wire.NetHeader, bool) {
	var hdr wire.NetHeader

	if !pb.Checksum.NeedsCsum && !pb.TSO.Requested {
		return hdr, true
	}

	// Pull up incrementally, one header at a time: a packet only needs
	// as much contiguous data as the headers it actually carries (a bare
	// UDP datagram needs far less than maxHeaderPullup, which sizes for
	// the TCP+VLAN worst case). Re-pulling after each parse keeps every
	// PullUp call honest about how much contiguity the next parse step
	// actually requires, instead of truncating to one fixed-size guess
	// and losing bytes that were already available.
	ethFlat, ok := pb.PullUp(wire.EthernetHeaderLen+wire.VLANTagLen, scratch)
	if !ok {
		ethFlat, ok = pb.PullUp(wire.EthernetHeaderLen, scratch)
		if !ok {
			return wire.NetHeader{}, false
		}
	}

	ethType, l3Off, ok := wire.ParseEthernet(ethFlat)
	if !ok {
		return wire.NetHeader{}, false
	}
	if ethType != wire.EtherTypeIPv4 {
		if pb.Checksum.NeedsCsum {
			return wire.NetHeader{}, false
		}
		// Non-IPv4 with no checksum request: nothing left to offload.
		return hdr, true
	}

	ipFlat, ok := pb.PullUp(l3Off+20, scratch)
	if !ok {
		return wire.NetHeader{}, false
	}
	ihl, proto, ok := wire.ParseIPv4(ipFlat, l3Off)
	if !ok {
		return wire.NetHeader{}, false
	}
	l4Off := l3Off + ihl

	if pb.Checksum.NeedsCsum {
		offset, ok := wire.L4ChecksumOffset(proto)
		if !ok {
			return wire.NetHeader{}, false
		}
		hdr.Flags |= wire.NeedsCsum
		hdr.CsumStart = uint16(l4Off)
		hdr.CsumOffset = uint16(offset)
	}

	if pb.TSO.Requested && proto == wire.IPProtoTCP {
		tcpFlat, ok := pb.PullUp(l4Off+20, scratch)
		if !ok {
			return wire.NetHeader{}, false
		}
		hdrLen, cwr, ok := wire.ParseTCPHeader(tcpFlat, l4Off)
		if !ok {
			return wire.NetHeader{}, false
		}
		if cwr && !hostECN {
			return wire.NetHeader{}, false
		}
		hdr.GSOType = wire.GSOTCPv4
		if cwr {
			hdr.GSOType |= wire.GSOECN
		}
		hdr.HdrLen = uint16(l4Off + hdrLen)
		hdr.GSOSize = pb.TSO.MSS
	}

	return hdr, true
}
