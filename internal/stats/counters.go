// File: internal/stats/counters.go
// Package stats implements the per-queue counter set (§4.G): packets,
// bytes, errors, drops, checksum-offloaded, TSO, doorbells issued,
// host-accepted doorbells, dispatcher wake-ups, and dispatcher-path
// packet counts, exposed via a snapshot copy of atomic counters. Grounded on
// control/metrics.go's registry-of-named-counters shape, adapted from a
// dynamically-keyed map[string]any (which would force type assertions
// on every hot-path increment) to a fixed struct of atomic.Uint64
// fields, since §4.G's counter set is closed and known at compile time.
// Author: momentics <momentics@gmail.com>

package stats

import (
	"sync/atomic"

	"github.com/momentics/vnic/api"
)

// Counters holds the driver's full per-queue statistic set. All fields
// are updated by their owning thread (fast path, dispatcher, or RX poll
// loop) and may be read concurrently as a torn snapshot, which §5
// explicitly allows.
type Counters struct {
	TxPackets  atomic.Uint64
	TxBytes    atomic.Uint64
	TxErr      atomic.Uint64
	TxCsum     atomic.Uint64
	TxTSO      atomic.Uint64
	TxDoorbell atomic.Uint64
	TxKicked   atomic.Uint64
	DispWakeup atomic.Uint64
	TxViaDisp  atomic.Uint64

	RxPackets  atomic.Uint64
	RxBytes    atomic.Uint64
	RxDrops    atomic.Uint64
	RxErr      atomic.Uint64
	RxCsum     atomic.Uint64
	RxCsumErr  atomic.Uint64
}

// Snapshot copies out the upper-layer-visible counter subset (§6.4),
// satisfying the fill_stats contract.
func (c *Counters) Snapshot() api.Stats {
	return api.Stats{
		InputPackets:  c.RxPackets.Load(),
		InputBytes:    c.RxBytes.Load(),
		InputDrops:    c.RxDrops.Load(),
		InputErrors:   c.RxErr.Load(),
		OutputPackets: c.TxPackets.Load(),
		OutputBytes:   c.TxBytes.Load(),
		OutputErrors:  c.TxErr.Load(),
	}
}

// FillStats copies the snapshot into out, matching upper.FillStats's
// out-parameter style (§6.2).
func (c *Counters) FillStats(out *api.Stats) {
	*out = c.Snapshot()
}
