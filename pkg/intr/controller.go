package intr

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/netstack-lab/netstack-go/pkg/log"
)

// IRQ numbers.
const (
	// IRQTerminate is reserved to stop the worker.
	IRQTerminate IRQ = 1

	// IRQBase is the first IRQ number handed to drivers.
	// Each driver instance uses IRQBase plus its own offset.
	IRQBase IRQ = 35
)

// maxNameLen matches the 16-byte name buffer of a handler entry.
const maxNameLen = 15

// Interrupt errors.
var (
	ErrIRQConflict = errors.New("conflicts with already registered IRQ")
	ErrIRQReserved = fmt.Errorf("%w: reserved IRQ", ErrIRQConflict)
	ErrNotRunning  = errors.New("interrupt worker not running")
	ErrWorkerStart = errors.New("interrupt worker start failed")
)

// IRQ is an interrupt request number.
type IRQ uint32

// Flags qualify a handler registration.
type Flags uint8

const (
	// FlagShared allows other shared handlers on the same IRQ.
	FlagShared Flags = 1 << iota
)

// Handler is called on the worker goroutine when its IRQ fires.
// dev is the value given to RequestIRQ.
type Handler func(irq IRQ, dev any) error

// State represents the controller state.
type State uint8

const (
	// StateIdle - controller created but not started.
	StateIdle State = iota

	// StateRunning - worker is waiting for notifications.
	StateRunning

	// StateStopping - terminate has been queued.
	StateStopping

	// StateStopped - worker has exited.
	StateStopped
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateRunning:
		return "RUNNING"
	case StateStopping:
		return "STOPPING"
	case StateStopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

// Stats holds counters for one IRQ.
type Stats struct {
	Raised        uint64
	Coalesced     uint64
	Dispatched    uint64
	HandlerErrors uint64
}

// Config configures a Controller.
type Config struct {
	// Logger is the optional logger for operational output.
	// If nil, logging is disabled.
	Logger *slog.Logger

	// CaptureLogger receives IRQ events. If nil, capture is disabled.
	CaptureLogger log.Logger

	// StackID is stamped on capture events.
	StackID string
}

// entry is one registered handler.
type entry struct {
	irq     IRQ
	handler Handler
	flags   Flags
	name    string
	dev     any
}

func (e *entry) shared() bool {
	return e.flags&FlagShared != 0
}

// Controller owns the IRQ handler table and the worker goroutine.
type Controller struct {
	// Handler table, append-only.
	tableMu sync.RWMutex
	entries []*entry

	// Pending notifications and lifecycle.
	mu        sync.Mutex
	state     State
	pending   []IRQ
	isPending map[IRQ]bool
	stats     map[IRQ]*Stats

	wake chan struct{}
	done chan struct{}

	logger  *slog.Logger
	capture log.Logger
	stackID string
}

// NewController creates an idle controller with an empty handler table.
func NewController(cfg Config) *Controller {
	return &Controller{
		state:     StateIdle,
		isPending: make(map[IRQ]bool),
		stats:     make(map[IRQ]*Stats),
		wake:      make(chan struct{}, 1),
		done:      make(chan struct{}),
		logger:    cfg.Logger,
		capture:   cfg.CaptureLogger,
		stackID:   cfg.StackID,
	}
}

// RequestIRQ registers handler on irq.
//
// Registration fails with ErrIRQConflict when the IRQ already has a
// handler and either that handler or this one is not shared.
func (c *Controller) RequestIRQ(irq IRQ, handler Handler, flags Flags, name string, dev any) error {
	if irq == IRQTerminate {
		return fmt.Errorf("%w: irq=%d", ErrIRQReserved, irq)
	}
	if handler == nil {
		return fmt.Errorf("intr: nil handler for irq=%d", irq)
	}

	e := &entry{
		irq:     irq,
		handler: handler,
		flags:   flags,
		name:    truncateName(name),
		dev:     dev,
	}

	c.tableMu.Lock()
	defer c.tableMu.Unlock()

	for _, existing := range c.entries {
		if existing.irq != irq {
			continue
		}
		if !existing.shared() || !e.shared() {
			c.logError("IRQ conflict", "irq", irq, "name", e.name, "existing", existing.name)
			return fmt.Errorf("%w: irq=%d name=%s existing=%s", ErrIRQConflict, irq, e.name, existing.name)
		}
	}

	c.entries = append(c.entries, e)
	c.debugLog("IRQ registered", "irq", irq, "name", e.name, "shared", e.shared())
	return nil
}

// RaiseIRQ notifies the worker that irq fired. It never blocks.
// It returns ErrNotRunning unless the controller is running.
func (c *Controller) RaiseIRQ(irq IRQ) error {
	if irq == IRQTerminate {
		return fmt.Errorf("%w: irq=%d", ErrIRQReserved, irq)
	}

	c.mu.Lock()
	if c.state != StateRunning {
		state := c.state
		c.mu.Unlock()
		return fmt.Errorf("%w: irq=%d state=%s", ErrNotRunning, irq, state)
	}
	coalesced := c.enqueueLocked(irq)
	st := c.statsLocked(irq)
	st.Raised++
	if coalesced {
		st.Coalesced++
	}
	c.mu.Unlock()

	action := log.IRQActionRaise
	if coalesced {
		action = log.IRQActionCoalesce
	}
	c.captureIRQ(irq, action, 0)

	c.signal()
	return nil
}

// Run starts the worker and returns once it is waiting for notifications.
func (c *Controller) Run() error {
	c.mu.Lock()
	if c.state != StateIdle {
		state := c.state
		c.mu.Unlock()
		return fmt.Errorf("%w: state=%s", ErrWorkerStart, state)
	}
	c.state = StateRunning
	c.mu.Unlock()

	ready := make(chan struct{})
	go c.worker(ready)

	c.debugLog("waiting for interrupt worker")
	<-ready

	c.captureState(StateIdle, StateRunning)
	return nil
}

// Shutdown stops the worker and waits until it has exited.
// It is a no-op if the worker was never started.
func (c *Controller) Shutdown() {
	c.mu.Lock()
	switch c.state {
	case StateIdle, StateStopped:
		c.mu.Unlock()
		return
	case StateStopping:
		c.mu.Unlock()
		<-c.done
		return
	}
	c.state = StateStopping
	c.enqueueLocked(IRQTerminate)
	c.mu.Unlock()

	c.signal()
	<-c.done

	c.mu.Lock()
	c.state = StateStopped
	c.mu.Unlock()

	c.captureState(StateRunning, StateStopped)
	c.debugLog("interrupt worker stopped")
}

// State returns the current controller state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Done returns a channel closed when the worker has exited.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// Stats returns the counters for irq.
func (c *Controller) Stats(irq IRQ) Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	if st, ok := c.stats[irq]; ok {
		return *st
	}
	return Stats{}
}

// worker is the single goroutine that runs handlers.
func (c *Controller) worker(ready chan<- struct{}) {
	defer close(c.done)

	c.debugLog("interrupt worker started")
	close(ready)

	for range c.wake {
		for {
			irq, ok := c.next()
			if !ok {
				break
			}
			if irq == IRQTerminate {
				c.debugLog("interrupt worker terminating")
				return
			}
			c.dispatch(irq)
		}
	}
}

// dispatch runs every handler registered on irq in registration order.
func (c *Controller) dispatch(irq IRQ) {
	c.tableMu.RLock()
	var matched []*entry
	for _, e := range c.entries {
		if e.irq == irq {
			matched = append(matched, e)
		}
	}
	c.tableMu.RUnlock()

	var failed uint64
	for _, e := range matched {
		c.debugLog("dispatching IRQ", "irq", irq, "name", e.name)
		if err := e.handler(irq, e.dev); err != nil {
			failed++
			c.logError("IRQ handler failed", "irq", irq, "name", e.name, "error", err)
		}
	}

	c.mu.Lock()
	st := c.statsLocked(irq)
	st.Dispatched++
	st.HandlerErrors += failed
	c.mu.Unlock()

	c.captureIRQ(irq, log.IRQActionDispatch, len(matched))
}

// enqueueLocked appends irq to the pending FIFO unless it is already
// pending. It reports whether the raise was coalesced. Caller holds c.mu.
func (c *Controller) enqueueLocked(irq IRQ) bool {
	if c.isPending[irq] {
		return true
	}
	c.isPending[irq] = true
	c.pending = append(c.pending, irq)
	return false
}

// next pops the oldest pending IRQ.
func (c *Controller) next() (IRQ, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.pending) == 0 {
		return 0, false
	}
	irq := c.pending[0]
	c.pending = c.pending[1:]
	delete(c.isPending, irq)
	return irq, true
}

// signal wakes the worker without blocking. A wake-up already in the
// channel covers this one because the worker drains the whole FIFO.
func (c *Controller) signal() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

func (c *Controller) statsLocked(irq IRQ) *Stats {
	st, ok := c.stats[irq]
	if !ok {
		st = &Stats{}
		c.stats[irq] = st
	}
	return st
}

func (c *Controller) captureIRQ(irq IRQ, action log.IRQAction, handlers int) {
	if c.capture == nil {
		return
	}
	c.capture.Log(log.Event{
		Timestamp: time.Now(),
		StackID:   c.stackID,
		Layer:     log.LayerInterrupt,
		Category:  log.CategoryIRQ,
		IRQ: &log.IRQEvent{
			IRQ:      uint32(irq),
			Action:   action,
			Handlers: handlers,
		},
	})
}

func (c *Controller) captureState(from, to State) {
	if c.capture == nil {
		return
	}
	c.capture.Log(log.Event{
		Timestamp: time.Now(),
		StackID:   c.stackID,
		Layer:     log.LayerInterrupt,
		Category:  log.CategoryState,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityInterrupts,
			OldState: from.String(),
			NewState: to.String(),
		},
	})
}

func (c *Controller) debugLog(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, append([]any{"component", "intr"}, args...)...)
	}
}

func (c *Controller) logError(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Error(msg, append([]any{"component", "intr"}, args...)...)
	}
}

func truncateName(name string) string {
	if len(name) > maxNameLen {
		return name[:maxNameLen]
	}
	return name
}
