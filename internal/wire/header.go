// File: internal/wire/header.go
// Package wire: per-packet net header encode/decode, little-endian
// throughout (§6.3), in the bounds-checked, explicit-error style of
// core/protocol/frame_codec.go.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package wire

import (
	"encoding/binary"
	"errors"
)

// NetHeader is the per-packet virtio-style net header (§6.3).
type NetHeader struct {
	Flags      uint8
	GSOType    uint8
	HdrLen     uint16
	GSOSize    uint16
	CsumStart  uint16
	CsumOffset uint16
	NumBuffers uint16 // only meaningful when merged-RX-buffers is negotiated
}

// ErrShortHeader is returned when a buffer is too small to hold a net
// header of the expected size.
var ErrShortHeader = errors.New("wire: buffer too short for net header")

// Encode writes h into buf using exactly HeaderSize(mergedRxBuf) bytes and
// returns that count. buf must have at least that much capacity.
func (h NetHeader) Encode(buf []byte, mergedRxBuf bool) (int, error) {
	n := HeaderSize(mergedRxBuf)
	if len(buf) < n {
		return 0, ErrShortHeader
	}
	buf[0] = h.Flags
	buf[1] = h.GSOType
	binary.LittleEndian.PutUint16(buf[2:4], h.HdrLen)
	binary.LittleEndian.PutUint16(buf[4:6], h.GSOSize)
	binary.LittleEndian.PutUint16(buf[6:8], h.CsumStart)
	binary.LittleEndian.PutUint16(buf[8:10], h.CsumOffset)
	if mergedRxBuf {
		binary.LittleEndian.PutUint16(buf[10:12], h.NumBuffers)
	}
	return n, nil
}

// DecodeNetHeader parses a net header out of buf. buf must be at least
// HeaderSize(mergedRxBuf) bytes.
func DecodeNetHeader(buf []byte, mergedRxBuf bool) (NetHeader, bool) {
	n := HeaderSize(mergedRxBuf)
	if len(buf) < n {
		return NetHeader{}, false
	}
	h := NetHeader{
		Flags:      buf[0],
		GSOType:    buf[1],
		HdrLen:     binary.LittleEndian.Uint16(buf[2:4]),
		GSOSize:    binary.LittleEndian.Uint16(buf[4:6]),
		CsumStart:  binary.LittleEndian.Uint16(buf[6:8]),
		CsumOffset: binary.LittleEndian.Uint16(buf[8:10]),
	}
	if mergedRxBuf {
		h.NumBuffers = binary.LittleEndian.Uint16(buf[10:12])
	}
	return h, true
}
