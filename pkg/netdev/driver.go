package netdev

// Driver is the mandatory capability of every device variant.
type Driver interface {
	// Transmit sends one frame. data is only valid for the duration of the
	// call; a driver that keeps it must copy it. dst is an opaque
	// destination (a hardware address for devices that have one, nil
	// otherwise).
	Transmit(dev *Device, typ uint16, data []byte, dst []byte) error
}

// Opener is implemented by drivers that need work when a device goes up.
// Open runs with the device lock held and must not call Flags, IsUp or
// State on dev.
type Opener interface {
	Open(dev *Device) error
}

// Closer is implemented by drivers that need work when a device goes down.
// The same locking rule as Opener applies.
type Closer interface {
	Close(dev *Device) error
}

// InputHandler receives frames handed up by Registry.Input.
// It runs on the interrupt worker and must not block.
type InputHandler func(typ uint16, data []byte, dev *Device)

// Interrupts is the part of the interrupt subsystem the registry drives.
type Interrupts interface {
	Run() error
	Shutdown()
}
