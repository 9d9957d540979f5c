// Package queue provides the bounded FIFO used by the software transports.
//
// A Queue is not safe for concurrent use. Transports that share a queue
// between producers and the interrupt worker guard it with their own lock
// so that a whole drain can run under a single critical section.
package queue
