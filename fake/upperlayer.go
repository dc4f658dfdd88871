// File: fake/upperlayer.go
// Package fake: an api.UpperLayer test double recording every delivered
// frame and exposing a controllable Running flag, so RX engine tests can
// assert exact reassembly and drive poll-loop shutdown deterministically.
// Author: momentics <momentics@gmail.com>

package fake

import (
	"sync"
	"sync/atomic"

	"github.com/momentics/vnic/api"
)

// UpperLayer is an api.UpperLayer test double.
type UpperLayer struct {
	running atomic.Bool

	mu       sync.Mutex
	Received []*api.PacketBuffer
	mac      [6]byte
}

// NewUpperLayer returns an UpperLayer that reports Running() == true
// until SetRunning(false) is called.
func NewUpperLayer() *UpperLayer {
	u := &UpperLayer{}
	u.running.Store(true)
	return u
}

// Input records pbuf, implementing §6.2's "exactly once per frame"
// delivery contract from the caller's side.
func (u *UpperLayer) Input(pbuf *api.PacketBuffer) {
	u.mu.Lock()
	u.Received = append(u.Received, pbuf)
	u.mu.Unlock()
}

// Running reports the test-controlled up/down state.
func (u *UpperLayer) Running() bool { return u.running.Load() }

// SetRunning flips the up/down state the RX poll loop observes.
func (u *UpperLayer) SetRunning(v bool) { u.running.Store(v) }

// FillStats is unused by rxeng/txeng (they use internal/stats directly)
// but is required to satisfy api.UpperLayer.
func (u *UpperLayer) FillStats(out *api.Stats) {}

// SetMAC records the MAC attached at bind time.
func (u *UpperLayer) SetMAC(mac [6]byte) {
	u.mu.Lock()
	u.mac = mac
	u.mu.Unlock()
}

// MAC returns the last MAC set via SetMAC.
func (u *UpperLayer) MAC() [6]byte {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.mac
}

// Snapshot returns a stable copy of the frames received so far.
func (u *UpperLayer) Snapshot() []*api.PacketBuffer {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make([]*api.PacketBuffer, len(u.Received))
	copy(out, u.Received)
	return out
}
