// Package api
// Author: momentics <momentics@gmail.com>
//
// Stats is the externally visible counter subset the upper layer expects
// from FillStats (§6.4). The richer per-queue counter set named in §4.G
// lives in internal/stats and is summarized into this struct.

package api

// Stats mirrors the slots the upper layer's generic Ethernet statistics
// handler expects.
type Stats struct {
	InputPackets  uint64
	InputBytes    uint64
	InputDrops    uint64
	InputErrors   uint64
	OutputPackets uint64
	OutputBytes   uint64
	OutputErrors  uint64
}
