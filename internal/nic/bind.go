// File: internal/nic/bind.go
// Device probe/bind (§4.F "On probe"): negotiate features, pick the
// header size, build the TX and RX engines, mask TX interrupts, enable
// indirect descriptors, attach the MAC, refill the RX ring, and start
// both engine threads before the device is considered DRIVER_OK.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package nic

import (
	"context"

	"github.com/momentics/vnic/api"
	"github.com/momentics/vnic/internal/rxeng"
	"github.com/momentics/vnic/internal/stats"
	"github.com/momentics/vnic/internal/txeng"
	"github.com/momentics/vnic/internal/wire"
)

// BindConfig supplies everything a probe needs: the two hardware rings,
// the scheduler and allocator collaborators, the upper layer, the
// device's advertised feature bits and MAC, and an optional fallback
// for ioctls this driver doesn't special-case.
type BindConfig struct {
	RXQueue         api.Queue
	TXQueue         api.Queue
	Scheduler       api.Scheduler
	Pool            api.BufferPool
	Upper           api.UpperLayer
	OfferedFeatures wire.Feature
	MAC             [6]byte
	GenericEthernet EthernetIoctl // optional; unknown ioctls delegate here
}

// Bind probes and binds a Device. A negotiation failure (the device does
// not offer the MAC feature bit this driver requires) is fatal and
// leaves the device unbound (§7 "Feature negotiation failure").
func Bind(cfg BindConfig) (*Device, error) {
	negotiated := wire.Negotiate(cfg.OfferedFeatures)
	if !negotiated.Has(wire.FeatureMAC) {
		return nil, api.NewError(api.ErrCodeFeatureNegotiation,
			"device did not offer the MAC feature bit").
			WithContext("offered", cfg.OfferedFeatures).
			WithContext("requested", wire.Requested)
	}

	mergedRxBuf := negotiated.Has(wire.FeatureMrgRxbuf)
	headerSize := wire.HeaderSize(mergedRxBuf)

	d := &Device{
		cnt:        &stats.Counters{},
		features:   negotiated,
		headerSize: headerSize,
		mac:        cfg.MAC,

		genericEthernet: cfg.GenericEthernet,
	}
	d.up.Store(true)

	d.tx = txeng.New(txeng.Config{
		Queue:       cfg.TXQueue,
		Scheduler:   cfg.Scheduler,
		Counters:    d.cnt,
		MergedRxBuf: mergedRxBuf,
		HostECN:     negotiated.Has(wire.FeatureHostECN),
	})

	d.rx = rxeng.New(rxeng.Config{
		Queue:       cfg.RXQueue,
		Pool:        cfg.Pool,
		Upper:       cfg.Upper,
		Counters:    d.cnt,
		MergedRxBuf: mergedRxBuf,
		GuestCsum:   negotiated.Has(wire.FeatureGuestCSUM),
		Running:     func() bool { return d.up.Load() && cfg.Upper.Running() },
	})

	// TX path is entirely push-driven until an explicit wait inside the
	// dispatcher; mask TX interrupts at start (§4.F).
	cfg.TXQueue.DisableInterrupts()

	cfg.Upper.SetMAC(cfg.MAC)

	// Refill the RX ring before advertising DRIVER_OK (§4.F).
	d.rx.Refill()

	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel

	d.tx.Start()
	d.rx.Start(ctx)

	return d, nil
}
