// Package api
// Author: momentics <momentics@gmail.com>
//
// UpperLayer is the §6.2 external collaborator: the network stack above
// the driver. It supplies transmit packet buffers (not modeled here —
// they arrive as arguments to Engine.Xmit) and receives reassembled
// receive-side frames.

package api

// UpperLayer is implemented by the network stack sitting above this
// driver.
type UpperLayer interface {
	// Input delivers one reassembled received frame. Called exactly once
	// per frame (§6.2).
	Input(pbuf *PacketBuffer)

	// Running reports whether the interface is administratively up. The
	// RX poll loop stops once this returns false.
	Running() bool

	// FillStats copies counters into out (§6.4).
	FillStats(out *Stats)

	// SetMAC attaches the negotiated MAC address, called once at bind time.
	SetMAC(mac [6]byte)
}
