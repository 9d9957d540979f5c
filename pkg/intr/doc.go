// Package intr emulates hardware interrupt delivery inside a single process.
//
// A device driver registers a handler against an interrupt request (IRQ)
// number with RequestIRQ. When data becomes ready, a producer calls
// RaiseIRQ, which never blocks: the IRQ number is appended to a pending
// FIFO and the worker goroutine is woken. The worker runs every handler
// registered on the IRQ, in registration order, one at a time.
//
// An IRQ raised again while it is still pending is coalesced into the
// pending notification, the way a pending signal is not queued twice.
// Handlers must therefore drain all work they own on each invocation.
//
// # Lifecycle
//
//	ctrl := intr.NewController(intr.Config{Logger: logger})
//	ctrl.RequestIRQ(intr.IRQBase+1, handler, 0, "net0", dev)
//	ctrl.Run()      // returns once the worker is waiting
//	...
//	ctrl.Shutdown() // returns once the worker has exited
//
// IRQTerminate is reserved for Shutdown and cannot be requested.
// A controller is single-use: it cannot be run again after Shutdown.
package intr
