// File: internal/wire/parse.go
// Package wire: bounds-checked Ethernet/VLAN/IPv4/TCP/UDP parsing used by
// offload preparation (§4.D) and receive checksum validation (§4.E),
// in the same pull-up-then-slice style as core/protocol/frame_codec.go.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package wire

import "encoding/binary"

// ParseEthernet reads the Ethernet header at the start of flat, optionally
// unwrapping a single VLAN tag, and returns the L3 ethertype and the byte
// offset where the L3 header begins.
func ParseEthernet(flat []byte) (ethType uint16, l3Off int, ok bool) {
	if len(flat) < EthernetHeaderLen {
		return 0, 0, false
	}
	ethType = binary.BigEndian.Uint16(flat[12:14])
	off := EthernetHeaderLen
	if ethType == EtherTypeVLAN {
		if len(flat) < off+VLANTagLen {
			return 0, 0, false
		}
		ethType = binary.BigEndian.Uint16(flat[off+2 : off+4])
		off += VLANTagLen
	}
	return ethType, off, true
}

// ParseIPv4 reads the IPv4 header starting at l3Off and returns its header
// length (IHL*4) and upper-layer protocol.
func ParseIPv4(flat []byte, l3Off int) (ihl int, proto uint8, ok bool) {
	if len(flat) < l3Off+20 {
		return 0, 0, false
	}
	versionIHL := flat[l3Off]
	if versionIHL>>4 != 4 {
		return 0, 0, false
	}
	ihl = int(versionIHL&0x0F) * 4
	if ihl < 20 || len(flat) < l3Off+ihl {
		return 0, 0, false
	}
	proto = flat[l3Off+9]
	return ihl, proto, true
}

// ParseTCPHeader reads the TCP header starting at l4Off and returns its
// data-offset-derived header length and the CWR flag bit.
func ParseTCPHeader(flat []byte, l4Off int) (hdrLen int, cwr bool, ok bool) {
	if len(flat) < l4Off+20 {
		return 0, false, false
	}
	dataOffset := flat[l4Off+12] >> 4
	hdrLen = int(dataOffset) * 4
	if hdrLen < 20 || len(flat) < l4Off+hdrLen {
		return 0, false, false
	}
	cwr = flat[l4Off+13]&TCPFlagCWR != 0
	return hdrLen, cwr, true
}

// L4ChecksumOffset returns the byte offset of the checksum field within
// an L4 header of the given protocol, or ok=false if proto is neither TCP
// nor UDP.
func L4ChecksumOffset(proto uint8) (offset int, ok bool) {
	switch proto {
	case IPProtoTCP:
		return TCPChecksumOffset, true
	case IPProtoUDP:
		return UDPChecksumOffset, true
	default:
		return 0, false
	}
}
