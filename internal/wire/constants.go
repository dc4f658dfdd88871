// File: internal/wire/constants.go
// Package wire implements the bit-exact on-the-wire layout the driver
// must reproduce (§6.3), grounded on core/protocol/constants.go's
// convention of grouping wire constants in one file per concern.
// Author: momentics <momentics@gmail.com>

package wire

// Feature is the negotiated virtio-net feature bitmask (§6.3).
type Feature uint64

const (
	FeatureCSUM      Feature = 1 << 0
	FeatureGuestCSUM Feature = 1 << 1
	FeatureMAC       Feature = 1 << 5
	FeatureGuestTSO4 Feature = 1 << 7
	FeatureGuestECN  Feature = 1 << 9
	FeatureGuestUFO  Feature = 1 << 10
	FeatureHostTSO4  Feature = 1 << 11
	FeatureHostECN   Feature = 1 << 13
	FeatureMrgRxbuf  Feature = 1 << 15
	FeatureStatus    Feature = 1 << 16
)

// Requested is the full feature set this driver asks for during probe (§4.F).
const Requested = FeatureCSUM | FeatureGuestCSUM | FeatureMAC |
	FeatureGuestTSO4 | FeatureHostTSO4 | FeatureHostECN | FeatureGuestECN |
	FeatureGuestUFO | FeatureMrgRxbuf | FeatureStatus

// Negotiate returns the intersection of what the driver requests and what
// the device offers.
func Negotiate(offered Feature) Feature {
	return Requested & offered
}

// Has reports whether f contains all bits of want.
func (f Feature) Has(want Feature) bool { return f&want == want }

// Net-header flag bits (§6.3).
const (
	NeedsCsum uint8 = 1 << 0
	DataValid uint8 = 1 << 1
)

// GSO type values (§6.3). ECN is or'd in as the high bit.
const (
	GSONone  uint8 = 0
	GSOTCPv4 uint8 = 1
	GSOUDP   uint8 = 3
	GSOTCPv6 uint8 = 4
	GSOECN   uint8 = 0x80
)

// Header sizes (§6.3 field list: flags(1)+gsoType(1)+hdrLen(2)+gsoSize(2)+
// csumStart(2)+csumOffset(2) = 10 bytes, plus a trailing 2-byte
// num-buffers field when merged-RX-buffers is negotiated = 12 bytes.
//
// §4.F's prose states these sizes as 12/16 instead of 10/12; that text
// is inconsistent with its own §6.3 field list (by a constant +2), and no
// original_source/ file survived retrieval to arbitrate. The field list
// is authoritative here since it is the more specific, testable
// contract (S4, S6) — see DESIGN.md "header size" entry.
const (
	BaseHeaderSize = 10
	MrgHeaderSize  = 12
)

// HeaderSize returns the net-header size for the given merged-RX-buffers
// negotiation outcome (§4.F).
func HeaderSize(mergedRxBuf bool) int {
	if mergedRxBuf {
		return MrgHeaderSize
	}
	return BaseHeaderSize
}

// EthernetHeaderLen is the length of an untagged Ethernet II header
// (6-byte dst + 6-byte src + 2-byte ethertype). Note: this is distinct
// from the MAC address length below; the source's own ETH_ALEN=14
// constant block (design note §9.3) is never consumed by the net-header
// wire layout and is intentionally not reproduced here.
const EthernetHeaderLen = 14

// MACLen is the wire length of an Ethernet MAC address: 6 bytes.
const MACLen = 6

// VLANTagLen is the length of an 802.1Q tag inserted after the source MAC.
const VLANTagLen = 4

const (
	EtherTypeIPv4 uint16 = 0x0800
	EtherTypeVLAN uint16 = 0x8100
)

const (
	IPProtoTCP uint8 = 6
	IPProtoUDP uint8 = 17
)

// Checksum field offsets within their respective L4 headers.
const (
	UDPChecksumOffset = 6
	TCPChecksumOffset = 16
)

// TCP flag bits used by offload negotiation (byte 13 of the TCP header).
const (
	TCPFlagCWR uint8 = 1 << 7
)
