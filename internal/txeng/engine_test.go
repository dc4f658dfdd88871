package txeng

import (
	"sync"
	"testing"
	"time"

	"github.com/momentics/vnic/api"
	"github.com/momentics/vnic/fake"
	"github.com/momentics/vnic/internal/stage"
	"github.com/momentics/vnic/internal/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, capacity int, delay time.Duration, numCPU int) (*Engine, *fake.Queue, *fake.Scheduler) {
	t.Helper()
	q := fake.NewQueue(capacity, delay)
	sched := fake.NewScheduler(numCPU)
	e := New(Config{Queue: q, Scheduler: sched, Counters: &stats.Counters{}})
	e.Start()
	t.Cleanup(e.Stop)
	return e, q, sched
}

func pkt(size int) *api.PacketBuffer {
	return api.NewPacketBuffer(api.Buffer{Data: make([]byte, size)})
}

// TestXmitFastPathAccepted covers a single uncontended Xmit call: it is
// accepted and counted once with its full byte length. If the freshly
// started dispatcher happens to hold RUNNING at that moment the packet
// is staged and sent by the dispatcher instead; the assertions hold
// either way.
func TestXmitFastPathAccepted(t *testing.T) {
	e, q, _ := newTestEngine(t, 64, 0, 1)

	require.NoError(t, e.Xmit(pkt(100)))

	require.Eventually(t, func() bool {
		return e.counters.TxPackets.Load() == 1
	}, time.Second, time.Millisecond)
	assert.EqualValues(t, 100, e.counters.TxBytes.Load())
	assert.EqualValues(t, 0, e.counters.TxErr.Load())
	_ = q
}

// TestXmitChecksumOffloadCountsTxCsum covers §4.G: a checksum-offloaded
// packet must be reflected in the TxCsum counter, not just accepted.
func TestXmitChecksumOffloadCountsTxCsum(t *testing.T) {
	e, _, _ := newTestEngine(t, 64, 0, 1)

	frame := make([]byte, 14+20+8)
	frame[12], frame[13] = 0x08, 0x00 // IPv4
	frame[14] = 0x45                  // IHL 5
	frame[23] = 17                    // UDP

	pb := api.NewPacketBuffer(api.Buffer{Data: frame})
	pb.Checksum.NeedsCsum = true

	require.NoError(t, e.Xmit(pb))
	require.Eventually(t, func() bool {
		return e.counters.TxPackets.Load() == 1
	}, time.Second, time.Millisecond)
	assert.EqualValues(t, 1, e.counters.TxCsum.Load())
	assert.EqualValues(t, 0, e.counters.TxTSO.Load())
}

// TestNoPacketLossOnBackpressure is testable property 1: every accepted
// packet is eventually sent through the hardware ring and counted,
// whether it took the fast path or per-CPU staging.
func TestNoPacketLossOnBackpressure(t *testing.T) {
	e, _, sched := newTestEngine(t, 8, time.Millisecond, 2)
	sched.BindCurrentGoroutine(0)

	const n = 500
	for i := 0; i < n; i++ {
		require.NoError(t, e.Xmit(pkt(64)))
	}

	require.Eventually(t, func() bool {
		return e.counters.TxPackets.Load() == n
	}, 5*time.Second, time.Millisecond)
	assert.EqualValues(t, n*64, e.counters.TxBytes.Load())
	assert.EqualValues(t, 0, e.counters.TxErr.Load())
}

// TestXmitInvalidOffloadReturnsEINVAL covers §4.D fast-path step 4: a
// TSO request with CWR set but no negotiated HOST_ECN must be dropped
// and reported, not silently staged. The dispatcher is deliberately not
// started so the fast path is guaranteed to win the RUNNING claim
// (otherwise the malformed packet would route through the dispatcher's
// xmitOneLocked, which has no caller left to report EINVAL to, per §7).
func TestXmitInvalidOffloadReturnsEINVAL(t *testing.T) {
	q := fake.NewQueue(64, 0)
	sched := fake.NewScheduler(1)
	e := New(Config{Queue: q, Scheduler: sched, Counters: &stats.Counters{}, HostECN: false})

	frame := make([]byte, 14+20+20)
	frame[12], frame[13] = 0x08, 0x00 // IPv4
	frame[14] = 0x45                  // IHL 5
	frame[23] = 6                     // TCP
	frame[14+20+12] = 5 << 4          // data offset
	frame[14+20+13] = 1 << 7          // CWR

	pb := api.NewPacketBuffer(api.Buffer{Data: frame})
	pb.TSO.Requested = true
	pb.TSO.MSS = 1400

	err := e.Xmit(pb)
	assert.ErrorIs(t, err, api.ErrInvalidArgument)
	assert.EqualValues(t, 1, e.counters.TxErr.Load())
}

// TestTwoProducersAcrossCPUsNoLoss is a scaled-down version of scenario
// S1: two producers pinned to different CPUs each transmit many
// packets; the dispatcher must account for every one of them.
func TestTwoProducersAcrossCPUsNoLoss(t *testing.T) {
	e, _, sched := newTestEngine(t, 32, 0, 3)

	const perProducer = 2000
	var wg sync.WaitGroup
	var totalBytes int64
	for cpu := 0; cpu < 2; cpu++ {
		cpu := cpu
		wg.Add(1)
		go func() {
			defer wg.Done()
			sched.BindCurrentGoroutine(cpu)
			for i := 0; i < perProducer; i++ {
				size := 60 + i%200
				require.NoError(t, e.Xmit(pkt(size)))
				totalBytes += int64(size)
			}
		}()
	}
	wg.Wait()

	require.Eventually(t, func() bool {
		return e.counters.TxPackets.Load() == 2*perProducer
	}, 10*time.Second, time.Millisecond)
	assert.EqualValues(t, 0, e.counters.TxErr.Load())
}

// TestPushCPUBlocksAndWakesOnDispatcherDrain is scenario S5: fill a
// per-CPU staging ring to capacity, confirm one more push is refused,
// and register a waiter for it; once the dispatcher pops a single entry
// from that ring (not necessarily the whole ring) the waiter must be
// woken. The waiter is registered directly rather than through pushCPU,
// so the retried push and its ordering are not exercised here.
func TestPushCPUBlocksAndWakesOnDispatcherDrain(t *testing.T) {
	q := fake.NewQueue(1, 0) // capacity 1, immediate completion
	sched := fake.NewScheduler(1)
	sched.BindCurrentGoroutine(0)
	e := New(Config{Queue: q, Scheduler: sched, Counters: &stats.Counters{}})

	r := e.perCPU[0]
	for i := 0; i < stage.StagingCapacity; i++ {
		require.True(t, r.TryPush(pkt(8), int64(i)))
	}
	require.False(t, r.TryPush(pkt(8), int64(stage.StagingCapacity)), "ring should report full before the dispatcher runs")

	// Register a waiter exactly as push_cpu's retry-then-block step does,
	// without actually blocking the test goroutine on it.
	waitCh := r.RegisterWaiter()

	e.Start()
	t.Cleanup(e.Stop)
	e.pending.MarkPending()

	select {
	case <-waitCh:
	case <-time.After(5 * time.Second):
		t.Fatal("waiter was never woken after the dispatcher popped an entry")
	}
}

// TestFlushInvalidatesStagedPackets covers §4.D flush(): packets staged
// on a per-CPU ring but not yet drained must be released, not leaked or
// delivered.
func TestFlushInvalidatesStagedPackets(t *testing.T) {
	q := fake.NewQueue(1, time.Hour) // never completes within the test
	sched := fake.NewScheduler(1)
	e := New(Config{Queue: q, Scheduler: sched, Counters: &stats.Counters{}})

	// Fill the single hardware slot so the fast path must fall back to
	// staging, then stage one more packet directly.
	require.NoError(t, e.Xmit(pkt(10)))
	e.pushCPU(pkt(20))

	assert.NotPanics(t, e.Flush)
	assert.Equal(t, 0, e.perCPU[0].Len())
}
