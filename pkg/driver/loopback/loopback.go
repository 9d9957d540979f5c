package loopback

import (
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/netstack-lab/netstack-go/pkg/intr"
	"github.com/netstack-lab/netstack-go/pkg/log"
	"github.com/netstack-lab/netstack-go/pkg/netdev"
	"github.com/netstack-lab/netstack-go/pkg/queue"
)

// QueueLimit is the number of frames a loopback device holds before
// Transmit fails.
const QueueLimit = 16

// ErrQueueFull is returned by Transmit when QueueLimit frames are pending.
var ErrQueueFull = fmt.Errorf("loopback: %w", queue.ErrFull)

// Registry is the part of the device registry a loopback device uses.
type Registry interface {
	Alloc() *netdev.Device
	Register(dev *netdev.Device) error
	Input(typ uint16, data []byte, dev *netdev.Device) error
}

// Interrupts is the part of the interrupt subsystem a loopback device uses.
type Interrupts interface {
	RequestIRQ(irq intr.IRQ, handler intr.Handler, flags intr.Flags, name string, dev any) error
	RaiseIRQ(irq intr.IRQ) error
}

// Config configures a loopback device.
type Config struct {
	// IRQ is the interrupt line of this instance. Zero selects IRQFor(0).
	IRQ intr.IRQ

	// Logger is the optional logger for operational output.
	Logger *slog.Logger

	// CaptureLogger receives driver-layer frame events. If nil, capture is disabled.
	CaptureLogger log.Logger

	// StackID is stamped on capture events.
	StackID string
}

// MaxInstance is the largest instance number IRQFor maps without wrapping.
const MaxInstance = math.MaxUint32 - uint64(intr.IRQBase) - 1

// IRQFor returns the IRQ of the loopback instance with the given number,
// which must lie in [0, MaxInstance].
func IRQFor(instance int) intr.IRQ {
	return intr.IRQBase + 1 + intr.IRQ(instance)
}

type entry struct {
	typ  uint16
	data []byte
}

// Driver is the private state of one loopback device. It is installed as
// both the device's Driver and its Priv.
type Driver struct {
	mu    sync.Mutex
	queue *queue.Queue[entry]

	// deliverMu serializes drains so batches reach the registry whole and
	// in order. It is never taken by Transmit.
	deliverMu sync.Mutex

	irq  intr.IRQ
	dev  *netdev.Device
	reg  Registry
	intr Interrupts

	logger  *slog.Logger
	capture log.Logger
	stackID string
}

// New creates, registers and wires up a loopback device.
//
// The IRQ is requested before the device is registered, so a conflict
// leaves the registry untouched.
func New(reg Registry, irqs Interrupts, cfg Config) (*netdev.Device, error) {
	irq := cfg.IRQ
	if irq == 0 {
		irq = IRQFor(0)
	}

	dev := reg.Alloc()
	dev.Type = netdev.TypeLoopback
	dev.MTU = netdev.MaxMTU
	dev.HeaderLen = 0
	dev.AddrLen = 0
	dev.SetFlags(netdev.FlagLoopback)

	d := &Driver{
		queue:   queue.New[entry](QueueLimit),
		irq:     irq,
		dev:     dev,
		reg:     reg,
		intr:    irqs,
		logger:  cfg.Logger,
		capture: cfg.CaptureLogger,
		stackID: cfg.StackID,
	}
	dev.Driver = d
	dev.Priv = d

	if err := irqs.RequestIRQ(irq, d.handleIRQ, 0, "loopback", dev); err != nil {
		return nil, fmt.Errorf("loopback: %w", err)
	}
	if err := reg.Register(dev); err != nil {
		return nil, err
	}

	d.debugLog("initialized", "device", dev.Name, "irq", irq)
	return dev, nil
}

// FromDevice returns the loopback state of dev.
func FromDevice(dev *netdev.Device) (*Driver, bool) {
	d, ok := dev.Priv.(*Driver)
	return d, ok
}

// IRQ returns the interrupt line of the device.
func (d *Driver) IRQ() intr.IRQ {
	return d.irq
}

// Len returns the number of queued frames.
func (d *Driver) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.queue.Len()
}

// Transmit queues a copy of data and raises the device IRQ.
func (d *Driver) Transmit(dev *netdev.Device, typ uint16, data []byte, dst []byte) error {
	d.mu.Lock()
	if d.queue.Full() {
		d.mu.Unlock()
		d.logError("queue is full", "device", dev.Name)
		return ErrQueueFull
	}
	e := entry{typ: typ, data: append(make([]byte, 0, len(data)), data...)}
	_ = d.queue.Push(e)
	num := d.queue.Len()
	d.mu.Unlock()

	d.debugLog("queue pushed", "device", dev.Name, "num", num, "type", fmt.Sprintf("0x%04x", typ), "len", len(data))
	d.captureFrame(log.DirectionOut, typ, e.data)

	if err := d.intr.RaiseIRQ(d.irq); err != nil {
		// The frame stays queued and goes out with the next drain.
		d.logError("raise IRQ failed", "device", dev.Name, "irq", d.irq, "error", err)
	}
	return nil
}

// Drain delivers every queued frame to the registry in FIFO order and
// returns how many were delivered. It is safe to call while the interrupt
// worker drains the same device. The queue lock is released before the
// first frame is handed up, so input hooks may transmit on this device.
func (d *Driver) Drain() int {
	d.deliverMu.Lock()
	defer d.deliverMu.Unlock()

	d.mu.Lock()
	batch := make([]entry, 0, d.queue.Len())
	for {
		e, ok := d.queue.Pop()
		if !ok {
			break
		}
		batch = append(batch, e)
	}
	d.mu.Unlock()

	for i, e := range batch {
		d.debugLog("queue popped", "device", d.dev.Name, "num", len(batch)-i-1, "type", fmt.Sprintf("0x%04x", e.typ), "len", len(e.data))
		d.captureFrame(log.DirectionIn, e.typ, e.data)
		d.reg.Input(e.typ, e.data, d.dev)
	}
	return len(batch)
}

func (d *Driver) handleIRQ(irq intr.IRQ, _ any) error {
	d.Drain()
	return nil
}

func (d *Driver) captureFrame(dir log.Direction, typ uint16, data []byte) {
	if d.capture == nil {
		return
	}
	d.capture.Log(log.Event{
		Timestamp: time.Now(),
		StackID:   d.stackID,
		Direction: dir,
		Layer:     log.LayerDriver,
		Category:  log.CategoryFrame,
		Device:    d.dev.Name,
		Frame:     log.NewFrameEvent(typ, data),
	})
}

func (d *Driver) debugLog(msg string, args ...any) {
	if d.logger != nil {
		d.logger.Debug(msg, append([]any{"component", "loopback"}, args...)...)
	}
}

func (d *Driver) logError(msg string, args ...any) {
	if d.logger != nil {
		d.logger.Error(msg, append([]any{"component", "loopback"}, args...)...)
	}
}
