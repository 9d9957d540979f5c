package netdev

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Device constants.
const (
	// MaxMTU is the largest MTU a device may declare.
	MaxMTU = 65535

	// AddrLen is the size of the hardware address fields.
	AddrLen = 16

	// NameSize is the size of the original device name buffer.
	// Generated names always fit within NameSize-1 bytes.
	NameSize = 16
)

// Type identifies the device variant.
type Type uint16

const (
	TypeNull     Type = 0x0000
	TypeLoopback Type = 0x0001
	TypeEthernet Type = 0x0002
)

// String returns the type name.
func (t Type) String() string {
	switch t {
	case TypeNull:
		return "NULL"
	case TypeLoopback:
		return "LOOPBACK"
	case TypeEthernet:
		return "ETHERNET"
	default:
		return "UNKNOWN"
	}
}

// Flags is the device flag bitmask.
type Flags uint16

const (
	FlagUp        Flags = 0x0001
	FlagLoopback  Flags = 0x0010
	FlagBroadcast Flags = 0x0020
	FlagP2P       Flags = 0x0040
	FlagNeedARP   Flags = 0x0100
)

// Stats holds per-device traffic counters.
type Stats struct {
	TxPackets uint64
	TxBytes   uint64
	TxErrors  uint64
	RxPackets uint64
	RxBytes   uint64
}

// Device is one network endpoint.
//
// Index and Name are assigned by Registry.Register and must not be changed
// afterwards. The remaining exported fields are filled in by the driver
// constructor before registration.
type Device struct {
	Index uint32
	Name  string

	Type      Type
	MTU       uint16
	HeaderLen uint16
	AddrLen   uint16

	// Addr is the hardware address.
	Addr [AddrLen]byte
	// Broadcast is the broadcast address, or the peer address on
	// point-to-point devices (see Peer).
	Broadcast [AddrLen]byte

	Driver Driver

	// Priv is owned by the driver.
	Priv any

	mu    sync.RWMutex
	flags Flags

	txPackets atomic.Uint64
	txBytes   atomic.Uint64
	txErrors  atomic.Uint64
	rxPackets atomic.Uint64
	rxBytes   atomic.Uint64
}

// Peer returns the peer address of a point-to-point device.
// It shares storage with Broadcast.
func (d *Device) Peer() *[AddrLen]byte {
	return &d.Broadcast
}

// Flags returns the current flag bitmask.
func (d *Device) Flags() Flags {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.flags
}

// SetFlags sets static capability flags such as FlagLoopback.
// FlagUp is managed by the registry and is ignored here.
func (d *Device) SetFlags(f Flags) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.flags |= f &^ FlagUp
}

// IsUp reports whether the device is open.
func (d *Device) IsUp() bool {
	return d.Flags()&FlagUp != 0
}

// State returns "up" or "down".
func (d *Device) State() string {
	if d.IsUp() {
		return "up"
	}
	return "down"
}

// Stats returns a snapshot of the traffic counters.
func (d *Device) Stats() Stats {
	return Stats{
		TxPackets: d.txPackets.Load(),
		TxBytes:   d.txBytes.Load(),
		TxErrors:  d.txErrors.Load(),
		RxPackets: d.rxPackets.Load(),
		RxBytes:   d.rxBytes.Load(),
	}
}

// String returns a short description, e.g. "net0 (LOOPBACK)".
func (d *Device) String() string {
	return fmt.Sprintf("%s (%s)", d.Name, d.Type)
}

// deviceName derives the name of the device at index.
func deviceName(index uint32) string {
	return fmt.Sprintf("net%d", index)
}
