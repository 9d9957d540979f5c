// Package null implements a device that discards every frame.
//
// Transmit raises the shared null IRQ so that the interrupt path is
// exercised even though nothing is ever received.
package null

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/netstack-lab/netstack-go/pkg/intr"
	"github.com/netstack-lab/netstack-go/pkg/netdev"
)

// IRQ is shared by every null device.
const IRQ = intr.IRQBase

// Registry is the part of the device registry a null device uses.
type Registry interface {
	Alloc() *netdev.Device
	Register(dev *netdev.Device) error
}

// Interrupts is the part of the interrupt subsystem a null device uses.
type Interrupts interface {
	RequestIRQ(irq intr.IRQ, handler intr.Handler, flags intr.Flags, name string, dev any) error
	RaiseIRQ(irq intr.IRQ) error
}

// Driver is the private state of one null device.
type Driver struct {
	intr   Interrupts
	logger *slog.Logger

	discarded  atomic.Uint64
	interrupts atomic.Uint64
}

// New creates and registers a null device. Nothing is registered when
// the IRQ cannot be shared.
func New(reg Registry, irqs Interrupts, logger *slog.Logger) (*netdev.Device, error) {
	d := &Driver{intr: irqs, logger: logger}

	dev := reg.Alloc()
	dev.Type = netdev.TypeNull
	dev.MTU = netdev.MaxMTU
	dev.Driver = d
	dev.Priv = d

	if err := irqs.RequestIRQ(IRQ, d.handleIRQ, intr.FlagShared, "null", dev); err != nil {
		return nil, fmt.Errorf("null: %w", err)
	}
	if err := reg.Register(dev); err != nil {
		return nil, err
	}

	d.debugLog("initialized", "device", dev.Name)
	return dev, nil
}

// FromDevice returns the null state of dev.
func FromDevice(dev *netdev.Device) (*Driver, bool) {
	d, ok := dev.Priv.(*Driver)
	return d, ok
}

// Discarded returns the number of frames dropped by Transmit.
func (d *Driver) Discarded() uint64 {
	return d.discarded.Load()
}

// Interrupts returns the number of times the handler has run for this device.
func (d *Driver) Interrupts() uint64 {
	return d.interrupts.Load()
}

// Transmit drops the frame and raises the null IRQ.
func (d *Driver) Transmit(dev *netdev.Device, typ uint16, data []byte, dst []byte) error {
	d.discarded.Add(1)
	d.debugLog("frame discarded", "device", dev.Name, "type", fmt.Sprintf("0x%04x", typ), "len", len(data))

	if err := d.intr.RaiseIRQ(IRQ); err != nil {
		d.debugLog("raise IRQ failed", "device", dev.Name, "error", err)
	}
	return nil
}

func (d *Driver) handleIRQ(irq intr.IRQ, v any) error {
	d.interrupts.Add(1)
	if dev, ok := v.(*netdev.Device); ok {
		d.debugLog("irq", "irq", irq, "device", dev.Name)
	}
	return nil
}

func (d *Driver) debugLog(msg string, args ...any) {
	if d.logger != nil {
		d.logger.Debug(msg, append([]any{"component", "null"}, args...)...)
	}
}
