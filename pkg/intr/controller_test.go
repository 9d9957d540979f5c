package intr

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netstack-lab/netstack-go/pkg/log"
)

const testTimeout = 2 * time.Second

func nopHandler(IRQ, any) error { return nil }

// startController runs a fresh controller and shuts it down at cleanup.
func startController(t *testing.T, setup func(c *Controller)) *Controller {
	t.Helper()
	c := NewController(Config{})
	if setup != nil {
		setup(c)
	}
	require.NoError(t, c.Run())
	t.Cleanup(c.Shutdown)
	return c
}

func waitFor[T any](t *testing.T, ch chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(testTimeout):
		t.Fatal("timed out waiting for handler")
	}
	var zero T
	return zero
}

func TestRequestIRQSharing(t *testing.T) {
	c := NewController(Config{})
	irq := IRQBase + 3

	require.NoError(t, c.RequestIRQ(irq, nopHandler, FlagShared, "a", nil))
	require.NoError(t, c.RequestIRQ(irq, nopHandler, FlagShared, "b", nil))

	err := c.RequestIRQ(irq, nopHandler, 0, "c", nil)
	assert.ErrorIs(t, err, ErrIRQConflict)
}

func TestRequestIRQExclusive(t *testing.T) {
	c := NewController(Config{})
	irq := IRQBase + 1

	require.NoError(t, c.RequestIRQ(irq, nopHandler, 0, "lo", nil))

	assert.ErrorIs(t, c.RequestIRQ(irq, nopHandler, 0, "x", nil), ErrIRQConflict)
	assert.ErrorIs(t, c.RequestIRQ(irq, nopHandler, FlagShared, "y", nil), ErrIRQConflict)

	// Other IRQ numbers are unaffected.
	assert.NoError(t, c.RequestIRQ(irq+1, nopHandler, 0, "z", nil))
}

func TestRequestIRQSharedThenExclusiveFirst(t *testing.T) {
	c := NewController(Config{})
	irq := IRQBase

	require.NoError(t, c.RequestIRQ(irq, nopHandler, 0, "first", nil))
	assert.ErrorIs(t, c.RequestIRQ(irq, nopHandler, FlagShared, "second", nil), ErrIRQConflict)
}

func TestRequestIRQReserved(t *testing.T) {
	c := NewController(Config{})

	err := c.RequestIRQ(IRQTerminate, nopHandler, FlagShared, "bad", nil)
	assert.ErrorIs(t, err, ErrIRQReserved)
	assert.ErrorIs(t, err, ErrIRQConflict)
}

func TestRequestIRQNilHandler(t *testing.T) {
	c := NewController(Config{})
	assert.Error(t, c.RequestIRQ(IRQBase, nil, 0, "nil", nil))
}

func TestRequestIRQTruncatesName(t *testing.T) {
	c := NewController(Config{})
	require.NoError(t, c.RequestIRQ(IRQBase, nopHandler, 0, "a-very-long-handler-name", nil))

	c.tableMu.RLock()
	defer c.tableMu.RUnlock()
	assert.Equal(t, "a-very-long-han", c.entries[0].name)
}

func TestRaiseIRQBeforeRun(t *testing.T) {
	c := NewController(Config{})
	assert.ErrorIs(t, c.RaiseIRQ(IRQBase), ErrNotRunning)
}

func TestRaiseIRQDispatchesHandler(t *testing.T) {
	type call struct {
		irq IRQ
		dev any
	}
	calls := make(chan call, 1)
	dev := "net0"

	c := startController(t, func(c *Controller) {
		require.NoError(t, c.RequestIRQ(IRQBase+1, func(irq IRQ, d any) error {
			calls <- call{irq, d}
			return nil
		}, 0, "net0", dev))
	})

	require.NoError(t, c.RaiseIRQ(IRQBase+1))

	got := waitFor(t, calls)
	assert.Equal(t, IRQBase+1, got.irq)
	assert.Equal(t, dev, got.dev)
}

func TestSharedHandlersRunInRegistrationOrder(t *testing.T) {
	order := make(chan string, 3)
	irq := IRQBase

	c := startController(t, func(c *Controller) {
		for _, name := range []string{"first", "second", "third"} {
			name := name
			require.NoError(t, c.RequestIRQ(irq, func(IRQ, any) error {
				order <- name
				return nil
			}, FlagShared, name, nil))
		}
	})

	require.NoError(t, c.RaiseIRQ(irq))

	for _, want := range []string{"first", "second", "third"} {
		assert.Equal(t, want, waitFor(t, order))
	}
}

func TestHandlersNeverRunConcurrently(t *testing.T) {
	var active, maxActive atomic.Int32
	var calls atomic.Int32

	handler := func(IRQ, any) error {
		n := active.Add(1)
		for {
			m := maxActive.Load()
			if n <= m || maxActive.CompareAndSwap(m, n) {
				break
			}
		}
		time.Sleep(50 * time.Microsecond)
		active.Add(-1)
		calls.Add(1)
		return nil
	}

	c := startController(t, func(c *Controller) {
		for i := IRQ(0); i < 4; i++ {
			require.NoError(t, c.RequestIRQ(IRQBase+i, handler, 0, "h", nil))
		}
	})

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				_ = c.RaiseIRQ(IRQBase + IRQ((g+i)%4))
			}
		}(g)
	}
	wg.Wait()
	c.Shutdown()

	assert.Equal(t, int32(1), maxActive.Load())
	assert.Positive(t, calls.Load())
}

func TestHandlerErrorDoesNotStopWorker(t *testing.T) {
	results := make(chan int, 2)
	var n atomic.Int32

	c := startController(t, func(c *Controller) {
		require.NoError(t, c.RequestIRQ(IRQBase, func(IRQ, any) error {
			i := int(n.Add(1))
			results <- i
			if i == 1 {
				return errors.New("boom")
			}
			return nil
		}, 0, "flaky", nil))
	})

	require.NoError(t, c.RaiseIRQ(IRQBase))
	waitFor(t, results)
	require.NoError(t, c.RaiseIRQ(IRQBase))
	waitFor(t, results)

	c.Shutdown()
	st := c.Stats(IRQBase)
	assert.Equal(t, uint64(2), st.Dispatched)
	assert.Equal(t, uint64(1), st.HandlerErrors)
}

func TestHandlerMayRaiseItsOwnIRQ(t *testing.T) {
	const rounds = 5
	finished := make(chan struct{})
	var c *Controller
	var count int

	c = startController(t, func(ctrl *Controller) {
		require.NoError(t, ctrl.RequestIRQ(IRQBase, func(irq IRQ, _ any) error {
			count++
			if count < rounds {
				return c.RaiseIRQ(irq)
			}
			close(finished)
			return nil
		}, 0, "reentrant", nil))
	})

	require.NoError(t, c.RaiseIRQ(IRQBase))
	waitFor(t, finished)
	assert.Equal(t, rounds, count)
}

func TestRaiseIRQCoalescesPending(t *testing.T) {
	gate := make(chan struct{})
	blocked := make(chan struct{})
	dispatched := make(chan struct{}, 4)
	slow, fast := IRQBase, IRQBase+1

	c := startController(t, func(c *Controller) {
		require.NoError(t, c.RequestIRQ(slow, func(IRQ, any) error {
			close(blocked)
			<-gate
			return nil
		}, 0, "slow", nil))
		require.NoError(t, c.RequestIRQ(fast, func(IRQ, any) error {
			dispatched <- struct{}{}
			return nil
		}, 0, "fast", nil))
	})

	// Park the worker inside the slow handler.
	require.NoError(t, c.RaiseIRQ(slow))
	waitFor(t, blocked)

	for i := 0; i < 3; i++ {
		require.NoError(t, c.RaiseIRQ(fast))
	}
	close(gate)
	waitFor(t, dispatched)

	c.Shutdown()
	st := c.Stats(fast)
	assert.Equal(t, uint64(3), st.Raised)
	assert.Equal(t, uint64(2), st.Coalesced)
	assert.Equal(t, uint64(1), st.Dispatched)
}

func TestShutdownWaitsForWorker(t *testing.T) {
	c := NewController(Config{})
	require.NoError(t, c.Run())
	assert.Equal(t, StateRunning, c.State())

	c.Shutdown()

	select {
	case <-c.Done():
	default:
		t.Fatal("Shutdown returned before the worker exited")
	}
	assert.Equal(t, StateStopped, c.State())
	assert.ErrorIs(t, c.RaiseIRQ(IRQBase), ErrNotRunning)
}

func TestShutdownWithoutRunIsNoop(t *testing.T) {
	c := NewController(Config{})
	c.Shutdown()
	assert.Equal(t, StateIdle, c.State())

	// Still usable afterwards.
	require.NoError(t, c.Run())
	c.Shutdown()
	c.Shutdown()
	assert.Equal(t, StateStopped, c.State())
}

func TestRunTwiceFails(t *testing.T) {
	c := startController(t, nil)
	assert.ErrorIs(t, c.Run(), ErrWorkerStart)

	c.Shutdown()
	assert.ErrorIs(t, c.Run(), ErrWorkerStart)
}

func TestConcurrentShutdown(t *testing.T) {
	c := NewController(Config{})
	require.NoError(t, c.Run())

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Shutdown()
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	waitFor(t, done)

	select {
	case <-c.Done():
	default:
		t.Fatal("worker still running after concurrent Shutdown")
	}
}

type recordingCapture struct {
	mu     sync.Mutex
	events []log.Event
}

func (r *recordingCapture) Log(e log.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func TestCaptureIRQEvents(t *testing.T) {
	rec := &recordingCapture{}
	c := NewController(Config{CaptureLogger: rec, StackID: "stack-1"})
	handled := make(chan struct{}, 1)
	require.NoError(t, c.RequestIRQ(IRQBase, func(IRQ, any) error {
		handled <- struct{}{}
		return nil
	}, 0, "cap", nil))
	require.NoError(t, c.Run())

	require.NoError(t, c.RaiseIRQ(IRQBase))
	waitFor(t, handled)
	c.Shutdown()

	rec.mu.Lock()
	defer rec.mu.Unlock()

	var actions []log.IRQAction
	var states []string
	for _, e := range rec.events {
		assert.Equal(t, "stack-1", e.StackID)
		assert.Equal(t, log.LayerInterrupt, e.Layer)
		if e.IRQ != nil {
			actions = append(actions, e.IRQ.Action)
		}
		if e.StateChange != nil {
			states = append(states, e.StateChange.NewState)
		}
	}
	assert.Equal(t, []log.IRQAction{log.IRQActionRaise, log.IRQActionDispatch}, actions)
	assert.Equal(t, []string{"RUNNING", "STOPPED"}, states)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "IDLE", StateIdle.String())
	assert.Equal(t, "RUNNING", StateRunning.String())
	assert.Equal(t, "STOPPING", StateStopping.String())
	assert.Equal(t, "STOPPED", StateStopped.String())
	assert.Equal(t, "UNKNOWN", State(42).String())
}
