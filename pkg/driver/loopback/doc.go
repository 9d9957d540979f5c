// Package loopback implements a device that hands every transmitted frame
// back to the stack as received input.
//
// Transmit copies the frame into a bounded queue and raises the device's
// IRQ. The IRQ handler, running on the interrupt worker, drains the whole
// queue and passes each frame to Registry.Input in the order it was
// transmitted. A full queue rejects the frame with ErrQueueFull; nothing is
// dropped silently.
package loopback
