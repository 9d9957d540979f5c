// Package netdev implements the device layer of the stack: the device data
// model, the driver capability interfaces and the registry that dispatches
// frames between callers and drivers.
//
// # Devices
//
// A Device is allocated with Registry.Alloc, filled in by a driver
// constructor and handed to Registry.Register, which assigns its index and
// name ("net0", "net1", ...). Devices are never removed.
//
// # Drivers
//
// Every driver implements Driver. Opener and Closer are optional; a
// missing hook is treated as a successful no-op.
//
// # Data Path
//
//	caller -> Registry.Output -> Driver.Transmit
//	driver interrupt handler -> Registry.Input -> input hooks
//
// Output rejects frames on a device that is down and frames larger than
// the device MTU before the driver sees them.
package netdev
