// File: internal/pin/pin.go
// Package pin implements api.Scheduler: the thin scheduler-adjacent shim
// the driver treats as an external collaborator (§4.H, §5) for current-
// CPU lookup, preemption-disable bracketing of short critical sections,
// and a monotonic clock. Grounded on internal/concurrency's
// platform-build-tag split (affinity_linux.go / pin_linux_nocgo.go),
// generalized from its NUMA-pinning concern to plain CPU-id lookup and
// rebuilt on golang.org/x/sys/unix instead of cgo so the driver never
// needs a C toolchain.
// Author: momentics <momentics@gmail.com>

package pin

import (
	"runtime"
	"time"
)

// Scheduler implements api.Scheduler on top of the Go runtime and,
// where available, raw Linux syscalls.
type Scheduler struct{}

// New returns a ready-to-use Scheduler.
func New() *Scheduler { return &Scheduler{} }

// NumCPU returns the number of logical CPUs available to the process.
func (s *Scheduler) NumCPU() int { return runtime.NumCPU() }

// PreemptDisable brackets a short critical section that must not
// migrate the calling goroutine to a different OS thread, emulating the
// scheduler's preempt_disable for the current-CPU-ring lookup in
// push_cpu (§4.D). It must be paired with PreemptEnable.
func (s *Scheduler) PreemptDisable() { runtime.LockOSThread() }

// PreemptEnable ends a PreemptDisable section.
func (s *Scheduler) PreemptEnable() { runtime.UnlockOSThread() }

// Now returns a monotonic timestamp in nanoseconds, used to stamp
// per-CPU staging entries (§3 tx_buff_desc).
func (s *Scheduler) Now() int64 { return time.Now().UnixNano() }
