// File: internal/wire/checksum.go
// Package wire: receive checksum validation policy (§4.E "Checksum
// validation policy", testable property 7).
// Author: momentics <momentics@gmail.com>

package wire

import "github.com/momentics/vnic/api"

// BadRxCsum reports whether the bundled NEEDS_CSUM hints on a received
// frame should be rejected. It returns false only for IPv4 frames
// (optionally VLAN-tagged) whose csum_offset equals the UDP or TCP
// checksum-field offset and whose length exceeds csum_start+csum_offset
// by at least the 2-byte checksum field; it returns true otherwise. The
// checksum field's value is not read, so a UDP frame whose checksum is
// zero (disabled, valid per UDP-over-IPv4 rules) is accepted whenever
// its offsets pass these checks.
func BadRxCsum(pb *api.PacketBuffer, hdr NetHeader, scratch []byte) bool {
	need := int(hdr.CsumStart) + int(hdr.CsumOffset) + 2
	flat, ok := pb.PullUp(need, scratch)
	if !ok {
		return true
	}

	ethType, l3Off, ok := ParseEthernet(flat)
	if !ok || ethType != EtherTypeIPv4 {
		return true
	}
	ihl, proto, ok := ParseIPv4(flat, l3Off)
	if !ok {
		return true
	}
	l4Off := l3Off + ihl

	wantOffset, ok := L4ChecksumOffset(proto)
	if !ok {
		return true
	}
	if int(hdr.CsumStart) != l4Off || int(hdr.CsumOffset) != wantOffset {
		return true
	}

	// A UDP checksum field of zero means "checksum disabled" and is
	// valid per UDP-over-IPv4 rules; both that case and a genuine
	// nonzero checksum pass the self-consistency check above, so
	// either way the driver accepts the host's NEEDS_CSUM/DATA_VALID
	// hint without recomputing the checksum itself.
	return false
}
