package rxeng

import (
	"context"
	"encoding/binary"
	"testing"
	"time"

	"github.com/momentics/vnic/api"
	"github.com/momentics/vnic/fake"
	"github.com/momentics/vnic/internal/stats"
	"github.com/momentics/vnic/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRx(t *testing.T, capacity int, mergedRxBuf, guestCsum bool) (*Engine, *fake.Queue, *fake.BufferPool, *fake.UpperLayer) {
	t.Helper()
	q := fake.NewQueue(capacity, 0)
	pool := fake.NewBufferPool()
	upper := fake.NewUpperLayer()
	e := New(Config{
		Queue: q, Pool: pool, Upper: upper, Counters: &stats.Counters{},
		MergedRxBuf: mergedRxBuf, GuestCsum: guestCsum,
	})
	return e, q, pool, upper
}

// postFrame stamps a net header plus payload into a freshly "posted"
// buffer bound to a cookie the engine owns, then completes that cookie
// on the fake queue, simulating one received descriptor.
func postFrame(t *testing.T, e *Engine, q *fake.Queue, mergedRxBuf bool, hdr wire.NetHeader, payload []byte) {
	t.Helper()
	headerSize := wire.HeaderSize(mergedRxBuf)
	data := make([]byte, headerSize+len(payload))
	n, err := hdr.Encode(data, mergedRxBuf)
	require.NoError(t, err)
	copy(data[n:], payload)

	cookie, ok := e.allocCookie()
	require.True(t, ok)
	e.posted[cookie] = api.Buffer{Data: data}
	q.PostCompleted(cookie, uint32(len(data)))
}

// postFragment completes one additional merged-buffer fragment.
func postFragment(t *testing.T, e *Engine, q *fake.Queue, data []byte, reportedLen int) {
	t.Helper()
	cookie, ok := e.allocCookie()
	require.True(t, ok)
	e.posted[cookie] = api.Buffer{Data: data}
	q.PostCompleted(cookie, uint32(reportedLen))
}

func ethUDPFrame(payloadLen int) []byte {
	out := make([]byte, wire.EthernetHeaderLen+20+8+payloadLen)
	out[12], out[13] = 0x08, 0x00 // IPv4
	ip := out[wire.EthernetHeaderLen:]
	ip[0] = 0x45
	ip[9] = wire.IPProtoUDP
	udp := ip[20:]
	binary.BigEndian.PutUint16(udp[4:6], uint16(8+payloadLen))
	return out
}

func TestRefillPostsUntilRingFull(t *testing.T) {
	e, q, _, _ := newTestRx(t, 4, false, false)
	e.Refill()
	assert.False(t, q.AvailRingHasRoom(1))
	assert.Equal(t, 1, q.Kicks())
}

func TestRefillStopsOnAllocatorExhaustion(t *testing.T) {
	e, q, pool, _ := newTestRx(t, 8, false, false)
	pool.Exhausted.Store(true)
	e.Refill()
	assert.Equal(t, 0, q.Kicks())
	assert.True(t, q.AvailRingHasRoom(1))
}

func startAndStop(t *testing.T, e *Engine, upper *fake.UpperLayer) context.Context {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	e.Start(ctx)
	t.Cleanup(func() {
		upper.SetRunning(false)
		cancel()
		<-e.Done()
	})
	return ctx
}

func TestPollLoopDeliversSingleBufferFrame(t *testing.T) {
	e, q, _, upper := newTestRx(t, 8, false, false)
	startAndStop(t, e, upper)

	payload := ethUDPFrame(20)
	postFrame(t, e, q, false, wire.NetHeader{}, payload)

	require.Eventually(t, func() bool {
		return len(upper.Snapshot()) == 1
	}, time.Second, time.Millisecond)

	got := upper.Snapshot()[0]
	assert.Equal(t, len(payload), got.Len())
	assert.EqualValues(t, 0, e.counters.RxDrops.Load())
}

// TestReassemblyRoundTrip is testable property 6: a frame transmitted
// with num_buffers = k across k posted receive slots reassembles into
// one chain of exactly the original length.
func TestReassemblyRoundTrip(t *testing.T) {
	e, q, _, upper := newTestRx(t, 16, true, false)
	startAndStop(t, e, upper)

	const k = 3
	payload := ethUDPFrame(40)
	first := payload[:30]
	rest := payload[30:]

	postFrame(t, e, q, true, wire.NetHeader{NumBuffers: k}, first)

	mid := len(rest) / 2
	postFragment(t, e, q, append([]byte{}, rest[:mid]...), mid)
	postFragment(t, e, q, append([]byte{}, rest[mid:]...), len(rest)-mid)

	require.Eventually(t, func() bool {
		return len(upper.Snapshot()) == 1
	}, time.Second, time.Millisecond)

	got := upper.Snapshot()[0]
	assert.Equal(t, len(payload), got.Len())
	assert.EqualValues(t, 0, e.counters.RxDrops.Load())
}

// TestMissingFragmentDropsChain covers §4.E step 5 / §7 "missing
// receive fragment": if a merged frame's later fragment never arrives,
// the already-collected chain is dropped, not delivered half-formed.
func TestMissingFragmentDropsChain(t *testing.T) {
	e, q, _, upper := newTestRx(t, 16, true, false)
	startAndStop(t, e, upper)

	postFrame(t, e, q, true, wire.NetHeader{NumBuffers: 2}, ethUDPFrame(10))
	// No second fragment is ever posted.

	require.Eventually(t, func() bool {
		return e.counters.RxDrops.Load() == 1
	}, time.Second, time.Millisecond)
	assert.Empty(t, upper.Snapshot())
}

func TestRuntFrameIsDropped(t *testing.T) {
	e, q, _, upper := newTestRx(t, 8, false, false)
	startAndStop(t, e, upper)

	cookie, ok := e.allocCookie()
	require.True(t, ok)
	e.posted[cookie] = api.Buffer{Data: make([]byte, 4)}
	q.PostCompleted(cookie, 4)

	require.Eventually(t, func() bool {
		return e.counters.RxDrops.Load() == 1
	}, time.Second, time.Millisecond)
	assert.Empty(t, upper.Snapshot())
}

// TestUDPZeroChecksumIsValid is scenario S4: a UDP-over-IPv4 frame with
// NEEDS_CSUM set and a zero UDP checksum field must be delivered as
// valid, never counted as rx_csum_err.
func TestUDPZeroChecksumIsValid(t *testing.T) {
	e, q, _, upper := newTestRx(t, 8, false, true)
	startAndStop(t, e, upper)

	payload := ethUDPFrame(20)
	hdr := wire.NetHeader{
		Flags:      wire.NeedsCsum,
		CsumStart:  wire.EthernetHeaderLen + 20,
		CsumOffset: wire.UDPChecksumOffset,
	}
	postFrame(t, e, q, false, hdr, payload)

	require.Eventually(t, func() bool {
		return len(upper.Snapshot()) == 1
	}, time.Second, time.Millisecond)

	assert.EqualValues(t, 1, e.counters.RxCsum.Load())
	assert.EqualValues(t, 0, e.counters.RxCsumErr.Load())
	assert.True(t, upper.Snapshot()[0].Checksum.DataValid)
}

// TestBadChecksumOffsetIsRejected is testable property 7: a mismatched
// csum_offset must be treated as a bad checksum, not silently accepted.
func TestBadChecksumOffsetIsRejected(t *testing.T) {
	e, q, _, upper := newTestRx(t, 8, false, true)
	startAndStop(t, e, upper)

	payload := ethUDPFrame(20)
	hdr := wire.NetHeader{
		Flags:      wire.NeedsCsum,
		CsumStart:  wire.EthernetHeaderLen + 20,
		CsumOffset: wire.TCPChecksumOffset, // wrong: frame is UDP
	}
	postFrame(t, e, q, false, hdr, payload)

	require.Eventually(t, func() bool {
		return e.counters.RxCsumErr.Load() == 1
	}, time.Second, time.Millisecond)
	assert.False(t, upper.Snapshot()[0].Checksum.DataValid)
}
