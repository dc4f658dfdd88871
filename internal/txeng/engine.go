// File: internal/txeng/engine.go
// Package txeng implements the TX engine (§4.D): a non-blocking fast
// path that opportunistically pushes straight through the hardware
// ring, falling back to per-CPU staging under contention or
// back-pressure, and a single dispatcher thread that drains the staged
// rings in timestamp order. Grounded on the teacher's executor/eventloop
// shape (internal/concurrency/executor.go, eventloop.go) for the
// single-dispatcher-goroutine-plus-wake-flags structure, generalized
// from generic task dispatch to this driver's fixed TX protocol.
// Author: momentics <momentics@gmail.com>

package txeng

import (
	"sync/atomic"

	"github.com/momentics/vnic/api"
	"github.com/momentics/vnic/internal/dispatch"
	"github.com/momentics/vnic/internal/flag"
	"github.com/momentics/vnic/internal/merge"
	"github.com/momentics/vnic/internal/objpool"
	"github.com/momentics/vnic/internal/stage"
	"github.com/momentics/vnic/internal/stats"
)

type mergeEntry = stage.Entry[*api.PacketBuffer]

// Config supplies an Engine's external collaborators and negotiated
// feature set.
type Config struct {
	Queue       api.Queue
	Scheduler   api.Scheduler
	Counters    *stats.Counters
	MergedRxBuf bool // header size selection (§4.F)
	HostECN     bool // HOST_ECN negotiated (§4.D offload ECN policy)
}

// Engine is the TX data plane: fast path, per-CPU staging, and
// dispatcher, sharing one hardware ring and one counter set.
type Engine struct {
	q           api.Queue
	sched       api.Scheduler
	counters    *stats.Counters
	mergedRxBuf bool
	hostECN     bool

	scratchPool *objpool.BytePool
	reqPool     *objpool.Sync[*txReq]
	disposer    *dispatch.Executor

	reqs        []*txReq
	freeCookies chan api.Cookie
	liveReqs    atomic.Int64

	running flag.Exclusive
	pending *flag.Pending

	perCPU []*stage.Ring[*api.PacketBuffer]
	merger *merge.Merger[mergeEntry]

	pktsSinceKick atomic.Int64

	stopCh chan struct{}
	doneCh chan struct{}
}

// New builds an Engine ready to accept Xmit calls once Start is called.
func New(cfg Config) *Engine {
	n := cfg.Queue.Size()
	e := &Engine{
		q:           cfg.Queue,
		sched:       cfg.Scheduler,
		counters:    cfg.Counters,
		mergedRxBuf: cfg.MergedRxBuf,
		hostECN:     cfg.HostECN,
		scratchPool: objpool.NewBytePool(),
		reqPool:     objpool.NewSync(newTxReq),
		disposer:    dispatch.NewExecutor(2),
		reqs:        make([]*txReq, n),
		freeCookies: make(chan api.Cookie, n),
		pending:     flag.NewPending(),
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
	for i := 0; i < n; i++ {
		e.freeCookies <- api.Cookie(i)
	}

	numCPU := cfg.Scheduler.NumCPU()
	if numCPU < 1 {
		numCPU = 1
	}
	e.perCPU = make([]*stage.Ring[*api.PacketBuffer], numCPU)
	sources := make([]merge.Source[mergeEntry], numCPU)
	for i := range e.perCPU {
		e.perCPU[i] = stage.New[*api.PacketBuffer]()
		sources[i] = e.perCPU[i]
	}
	e.merger = merge.New(sources, func(entry mergeEntry) int64 { return entry.TS },
		func() bool {
			select {
			case <-e.stopCh:
				return true
			default:
				return false
			}
		})

	cfg.Queue.SetIndirect(true)
	return e
}

// Stats returns a snapshot of the engine's counters.
func (e *Engine) Stats() api.Stats { return e.counters.Snapshot() }

func (e *Engine) allocCookie() (api.Cookie, bool) {
	select {
	case c := <-e.freeCookies:
		return c, true
	default:
		return 0, false
	}
}

func (e *Engine) freeCookie(c api.Cookie) {
	select {
	case e.freeCookies <- c:
	default:
	}
}
