//go:build linux

// File: internal/pin/pin_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pin

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// CurrentCPU returns the logical CPU the calling thread is currently
// running on, via the getcpu(2) syscall. Callers that need the result
// stable across the lookup should bracket it with PreemptDisable.
func (s *Scheduler) CurrentCPU() int {
	var cpu, node uint32
	_, _, errno := unix.Syscall(unix.SYS_GETCPU,
		uintptr(unsafe.Pointer(&cpu)), uintptr(unsafe.Pointer(&node)), 0)
	if errno != 0 {
		return 0
	}
	return int(cpu)
}
