// Package api
// Author: momentics <momentics@gmail.com>
//
// Scheduler contract for the external scheduler collaborator (§1, §5):
// current-CPU lookup, CPU count, preemption disable, and a monotonic
// clock. Thread creation and CPU binding are not part of this interface.
// The driver goes through it so tests can substitute a fake scheduler.

package api

// Scheduler abstracts the pieces of the host scheduler the NIC driver
// depends on.
type Scheduler interface {
	// CurrentCPU returns the logical CPU the calling thread is running on.
	CurrentCPU() int

	// NumCPU returns the number of logical CPUs the driver should stage
	// per-CPU rings for.
	NumCPU() int

	// PreemptDisable begins a short critical section during which the
	// calling goroutine must not migrate to a different OS thread/CPU.
	PreemptDisable()

	// PreemptEnable ends the critical section started by PreemptDisable.
	PreemptEnable()

	// Now returns a monotonic timestamp in nanoseconds.
	Now() int64
}
