package dispatch

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutorRunsAllSubmittedTasks(t *testing.T) {
	e := NewExecutor(4)
	defer e.Close()

	const n = 1000
	var done atomic.Int64
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		e.Submit(func() {
			done.Add(1)
			wg.Done()
		})
	}

	waitCh := make(chan struct{})
	go func() {
		wg.Wait()
		close(waitCh)
	}()
	select {
	case <-waitCh:
	case <-time.After(5 * time.Second):
		t.Fatal("not all tasks ran")
	}
	assert.EqualValues(t, n, done.Load())
}

func TestExecutorCloseDrainsQueue(t *testing.T) {
	e := NewExecutor(1)
	var ran atomic.Bool
	e.Submit(func() { ran.Store(true) })
	e.Close()
	require.True(t, ran.Load())
}

func TestExecutorCloseUnblocksWorkers(t *testing.T) {
	e := NewExecutor(2)
	done := make(chan struct{})
	go func() {
		e.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Close did not return")
	}
}
