// File: internal/nic/ioctl.go
// Device ioctl surface (§6.2): MTU change, flags (up/down), multicast
// add/del (a no-op), with unknown commands delegated to a generic
// Ethernet handler external collaborator.
// Author: momentics <momentics@gmail.com>

package nic

import "github.com/momentics/vnic/api"

// IoctlCmd enumerates the commands this driver special-cases; anything
// else is delegated to GenericEthernet.
type IoctlCmd int

const (
	IoctlSetMTU IoctlCmd = iota
	IoctlSetFlags
	IoctlAddMulticast
	IoctlDelMulticast
)

// EthernetIoctl is the generic Ethernet ioctl handler external
// collaborator (§6.2): commands this driver doesn't special-case are
// delegated here.
type EthernetIoctl interface {
	Handle(cmd int, arg any) error
}

// Ioctl dispatches cmd per §6.2. MTU changes invalidate staged TX
// packets (the per-CPU rings may hold buffers sized for the old MTU);
// flags toggle the driver's own administrative up/down state; multicast
// add/del is currently a no-op; anything else is delegated.
func (d *Device) Ioctl(cmd IoctlCmd, arg any) error {
	switch cmd {
	case IoctlSetMTU:
		mtu, ok := arg.(int)
		if !ok {
			return api.ErrInvalidArgument
		}
		d.tx.Flush()
		d.mtu.Store(int32(mtu))
		return nil

	case IoctlSetFlags:
		up, ok := arg.(bool)
		if !ok {
			return api.ErrInvalidArgument
		}
		d.up.Store(up)
		return nil

	case IoctlAddMulticast, IoctlDelMulticast:
		return nil

	default:
		if d.genericEthernet == nil {
			return api.ErrInvalidArgument
		}
		return d.genericEthernet.Handle(int(cmd), arg)
	}
}

// MTU returns the currently configured MTU, defaulting to 0 until the
// first IoctlSetMTU call.
func (d *Device) MTU() int { return int(d.mtu.Load()) }
