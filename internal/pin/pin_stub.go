//go:build !linux

// File: internal/pin/pin_stub.go
// Author: momentics <momentics@gmail.com>

package pin

// CurrentCPU is a portable fallback for platforms without a getcpu(2)
// equivalent wired up. It always reports CPU 0; callers relying on
// real per-CPU fan-out should run on Linux.
func (s *Scheduler) CurrentCPU() int { return 0 }
