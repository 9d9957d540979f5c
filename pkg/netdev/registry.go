package netdev

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/netstack-lab/netstack-go/pkg/log"
)

// Registry errors.
var (
	ErrRegistration    = errors.New("device registration failed")
	ErrAlreadyUp       = errors.New("device already up")
	ErrAlreadyDown     = errors.New("device already down")
	ErrOpen            = errors.New("device open failed")
	ErrClose           = errors.New("device close failed")
	ErrNotUp           = errors.New("device not up")
	ErrPayloadTooLarge = errors.New("payload exceeds MTU")
	ErrTransmit        = errors.New("device transmit failed")
)

// Config configures a Registry.
type Config struct {
	// Interrupts is started by Run and stopped by Shutdown.
	// If nil, Run only opens the devices.
	Interrupts Interrupts

	// Logger is the optional logger for operational output.
	// If nil, logging is disabled.
	Logger *slog.Logger

	// CaptureLogger receives frame and state events. If nil, capture is disabled.
	CaptureLogger log.Logger

	// StackID is stamped on capture events.
	StackID string
}

// Registry owns every registered device for the life of the process and
// routes frames between callers and drivers.
type Registry struct {
	mu        sync.RWMutex
	devices   []*Device
	nextIndex uint32
	inputs    []InputHandler

	intr    Interrupts
	logger  *slog.Logger
	capture log.Logger
	stackID string
}

// NewRegistry creates an empty registry.
func NewRegistry(cfg Config) *Registry {
	return &Registry{
		intr:    cfg.Interrupts,
		logger:  cfg.Logger,
		capture: cfg.CaptureLogger,
		stackID: cfg.StackID,
	}
}

// Alloc returns a zero-initialized device for a driver constructor to fill in.
func (r *Registry) Alloc() *Device {
	return &Device{}
}

// Register assigns the next index and name to dev and adds it to the registry.
func (r *Registry) Register(dev *Device) error {
	if dev == nil {
		return fmt.Errorf("%w: nil device", ErrRegistration)
	}
	if dev.Driver == nil {
		return fmt.Errorf("%w: device has no driver", ErrRegistration)
	}

	r.mu.Lock()
	dev.Index = r.nextIndex
	dev.Name = deviceName(dev.Index)
	r.nextIndex++
	r.devices = append(r.devices, dev)
	r.mu.Unlock()

	r.infoLog("device registered", "device", dev.Name, "type", dev.Type.String())
	return nil
}

// Devices returns the registered devices in registration order.
func (r *Registry) Devices() []*Device {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Device, len(r.devices))
	copy(out, r.devices)
	return out
}

// Len returns the number of registered devices.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.devices)
}

// Lookup returns the device with the given index.
func (r *Registry) Lookup(index uint32) (*Device, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	// Indices are assigned densely in registration order.
	if int(index) >= len(r.devices) {
		return nil, false
	}
	return r.devices[index], true
}

// LookupName returns the device with the given name.
func (r *Registry) LookupName(name string) (*Device, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, dev := range r.devices {
		if dev.Name == name {
			return dev, true
		}
	}
	return nil, false
}

// OnInput registers a handler for frames received from drivers.
// Handlers run in registration order.
func (r *Registry) OnInput(h InputHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inputs = append(r.inputs, h)
}

// Open brings dev up, calling the driver's Open hook if it has one.
func (r *Registry) Open(dev *Device) error {
	dev.mu.Lock()
	defer dev.mu.Unlock()

	if dev.flags&FlagUp != 0 {
		r.logError("device already up", "device", dev.Name)
		return fmt.Errorf("%w: %s", ErrAlreadyUp, dev.Name)
	}

	if opener, ok := dev.Driver.(Opener); ok {
		if err := opener.Open(dev); err != nil {
			r.logError("device open failed", "device", dev.Name, "error", err)
			r.captureError(dev, "open", err)
			return fmt.Errorf("%w: %s: %w", ErrOpen, dev.Name, err)
		}
	}

	dev.flags |= FlagUp
	r.infoLog("device up", "device", dev.Name, "state", "up")
	r.captureState(dev, "down", "up")
	return nil
}

// Close brings dev down, calling the driver's Close hook if it has one.
func (r *Registry) Close(dev *Device) error {
	dev.mu.Lock()
	defer dev.mu.Unlock()

	if dev.flags&FlagUp == 0 {
		r.logError("device already down", "device", dev.Name)
		return fmt.Errorf("%w: %s", ErrAlreadyDown, dev.Name)
	}

	if closer, ok := dev.Driver.(Closer); ok {
		if err := closer.Close(dev); err != nil {
			r.logError("device close failed", "device", dev.Name, "error", err)
			r.captureError(dev, "close", err)
			return fmt.Errorf("%w: %s: %w", ErrClose, dev.Name, err)
		}
	}

	dev.flags &^= FlagUp
	r.infoLog("device down", "device", dev.Name, "state", "down")
	r.captureState(dev, "up", "down")
	return nil
}

// Output hands one frame to dev's driver.
func (r *Registry) Output(dev *Device, typ uint16, data []byte, dst []byte) error {
	dev.mu.RLock()
	defer dev.mu.RUnlock()

	if dev.flags&FlagUp == 0 {
		r.logError("device not up", "device", dev.Name)
		return fmt.Errorf("%w: %s", ErrNotUp, dev.Name)
	}
	if len(data) > int(dev.MTU) {
		r.logError("payload too large", "device", dev.Name, "mtu", dev.MTU, "len", len(data))
		return fmt.Errorf("%w: %s: mtu=%d len=%d", ErrPayloadTooLarge, dev.Name, dev.MTU, len(data))
	}

	r.debugLog("output", "device", dev.Name, "type", fmt.Sprintf("0x%04x", typ), "len", len(data))
	r.captureFrame(dev, log.DirectionOut, typ, data)

	if err := dev.Driver.Transmit(dev, typ, data, dst); err != nil {
		dev.txErrors.Add(1)
		r.logError("transmit failed", "device", dev.Name, "len", len(data), "error", err)
		r.captureError(dev, "transmit", err)
		return fmt.Errorf("%w: %s: %w", ErrTransmit, dev.Name, err)
	}

	dev.txPackets.Add(1)
	dev.txBytes.Add(uint64(len(data)))
	return nil
}

// Input receives one frame from dev's driver and passes it to the input
// handlers. Drivers call it from their interrupt handler. It always
// succeeds.
func (r *Registry) Input(typ uint16, data []byte, dev *Device) error {
	r.debugLog("input", "device", dev.Name, "type", fmt.Sprintf("0x%04x", typ), "len", len(data))
	r.captureFrame(dev, log.DirectionIn, typ, data)

	dev.rxPackets.Add(1)
	dev.rxBytes.Add(uint64(len(data)))

	r.mu.RLock()
	inputs := r.inputs
	r.mu.RUnlock()

	for _, h := range inputs {
		h(typ, data, dev)
	}
	return nil
}

// Run starts the interrupt subsystem and then opens every registered
// device in registration order. A device that fails to open is logged and
// skipped.
func (r *Registry) Run() error {
	if r.intr != nil {
		if err := r.intr.Run(); err != nil {
			r.logError("interrupt start failed", "error", err)
			return err
		}
	}

	r.debugLog("opening all devices")
	for _, dev := range r.Devices() {
		if err := r.Open(dev); err != nil {
			r.warnLog("skipping device", "device", dev.Name, "error", err)
		}
	}
	return nil
}

// Shutdown stops the interrupt subsystem. Devices are left as they are.
func (r *Registry) Shutdown() {
	if r.intr != nil {
		r.intr.Shutdown()
	}
	r.debugLog("registry shut down")
}
