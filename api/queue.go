// Package api
// Author: momentics <momentics@gmail.com>
//
// Queue is the abstract hardware-ring transport (§6.1): a fixed-size
// split-ring descriptor queue with an available/used index pair and a
// doorbell. It is an external collaborator — the shared-memory ring
// protocol itself is out of scope for this module; the driver only
// depends on this contract.

package api

import "context"

// Cookie identifies an in-flight descriptor chain to the driver.
type Cookie uint64

// Queue abstracts one split-ring virtqueue (either the RX or the TX
// ring). Every method that touches ring state is only ever called by the
// single thread currently holding the driver-side exclusive-use token for
// that ring (see the RUNNING flag, internal/flag); Queue implementations
// need not be internally thread-safe beyond that guarantee.
type Queue interface {
	// InitSG begins a new scatter-gather vector for the next TryAddBuf.
	InitSG()
	// AddOut appends a guest->host (device-readable) fragment.
	AddOut(p []byte)
	// AddIn appends a host->guest (device-writable) fragment.
	AddIn(p []byte)
	// TryAddBuf publishes the current SG vector as one descriptor chain
	// tagged with cookie. Never blocks; false means the available ring
	// has no room.
	TryAddBuf(cookie Cookie) bool

	// GetBufElem dequeues one completed descriptor chain: its cookie and
	// the length the host reported. ok is false if the used ring is empty.
	GetBufElem() (cookie Cookie, length uint32, ok bool)
	// GetBufFinalize acknowledges n completions in one batch.
	GetBufFinalize(n int)

	// UsedRingNotEmpty reports whether GetBufElem would currently succeed.
	UsedRingNotEmpty() bool
	// AvailRingHasRoom reports whether n more TryAddBuf calls would succeed.
	AvailRingHasRoom(n int) bool
	// RefillNeeded reports whether the host has consumed enough posted
	// receive buffers that the driver should post more.
	RefillNeeded() bool

	// Kick rings the doorbell. Returns true iff the host actually needed
	// the notification (used only for statistics).
	Kick() bool

	// DisableInterrupts masks the queue's own interrupt source.
	DisableInterrupts()
	// WaitForUsed blocks until UsedRingNotEmpty() would return true, or
	// ctx is done.
	WaitForUsed(ctx context.Context) error

	// Size returns the ring's fixed descriptor capacity.
	Size() int
	// SetIndirect opts into indirect descriptors.
	SetIndirect(indirect bool)
}
