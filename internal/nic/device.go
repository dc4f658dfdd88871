// File: internal/nic/device.go
// Package nic implements device binding (§4.F): feature negotiation,
// header-size selection, MAC attachment, interrupt wiring, and the
// bound-driver lifecycle tying the TX and RX engines to one pair of
// hardware rings. Grounded on the teacher's adapter-layer composition
// root style (adapters/*.go wiring concrete transports behind api
// interfaces), generalized from WebSocket transport setup to virtio-net
// probe/bind/detach.
// Author: momentics <momentics@gmail.com>

package nic

import (
	"context"
	"sync/atomic"

	"github.com/momentics/vnic/api"
	"github.com/momentics/vnic/internal/rxeng"
	"github.com/momentics/vnic/internal/stats"
	"github.com/momentics/vnic/internal/txeng"
	"github.com/momentics/vnic/internal/wire"
)

// Device is a bound driver instance: negotiated feature set, header
// size, MAC, the TX and RX engine handles, and the RUNNING/administrative
// state the upper layer's ioctl surface manipulates (§3 "Driver state").
type Device struct {
	tx  *txeng.Engine
	rx  *rxeng.Engine
	cnt *stats.Counters

	features   wire.Feature
	headerSize int
	mac        [6]byte

	up     atomic.Bool
	mtu    atomic.Int32
	cancel context.CancelFunc

	genericEthernet EthernetIoctl
}

// Features reports the negotiated feature bitmask.
func (d *Device) Features() wire.Feature { return d.features }

// HeaderSize reports the selected net-header size (10 or 12 bytes,
// §6.3 field list).
func (d *Device) HeaderSize() int { return d.headerSize }

// MAC reports the attached MAC address.
func (d *Device) MAC() [6]byte { return d.mac }

// Xmit forwards to the TX engine's non-blocking fast path (§4.D), after
// checking the driver's own administrative up/down state: a device
// taken down by ioctl or already detached must refuse new packets
// rather than silently staging them on an engine nothing will drain.
func (d *Device) Xmit(pbuf *api.PacketBuffer) error {
	if !d.up.Load() {
		pbuf.Release()
		return api.ErrNotRunning
	}
	return d.tx.Xmit(pbuf)
}

// Stats returns a snapshot of the driver's upper-layer-visible counters
// (§6.4).
func (d *Device) Stats() api.Stats { return d.cnt.Snapshot() }

// FillStats copies the snapshot into out, matching the §6.2 fill_stats
// contract.
func (d *Device) FillStats(out *api.Stats) { d.cnt.FillStats(out) }

// Running reports the driver's administrative up/down state, combined
// with the upper layer's own Running signal by rxeng's poll loop.
func (d *Device) Running() bool { return d.up.Load() }

// Detach marks the device stopped, waits for the RX poll loop to exit,
// and drains the TX engine: waits for every in-flight tx_req to be
// returned by the hardware, then frees requests, packets, and rings
// (§4.F "On detach").
func (d *Device) Detach() {
	d.up.Store(false)
	d.cancel()
	<-d.rx.Done()
	d.tx.Stop()
}
