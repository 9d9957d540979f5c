// Package log provides structured frame and interrupt capture for the stack.
//
// This package defines the Logger interface and Event types for capturing
// what crosses the device layer: frames handed to and received from
// drivers, device state changes, and interrupt activity. It is separate
// from operational logging (slog) - capture provides a complete
// machine-readable trace for debugging and analysis.
//
// # Basic Usage
//
//	// For development: log to console via slog
//	cfg.CaptureLogger = log.NewSlogAdapter(slog.Default())
//
//	// For later analysis: write to binary file
//	cfg.CaptureLogger, _ = log.NewFileLogger("/tmp/netstack.nlog")
//
//	// Both: use MultiLogger
//	cfg.CaptureLogger = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # Event Types
//
// Events are captured at three layers:
//   - Device: frames passing through the registry (FrameEvent), up/down
//     transitions (StateChangeEvent)
//   - Driver: frames queued and dequeued inside a transport (FrameEvent)
//   - Interrupt: raise, coalesce and dispatch of IRQs (IRQEvent)
//
// Errors at any layer use ErrorEventData.
//
// # File Format
//
// Capture files use the .nlog extension. A file starts with a FileHeader
// wrapped in CBOR tag 0x4e53544b ("NSTK"), followed by a stream of
// CBOR-encoded events. Readers also accept a bare event stream. The
// netstack-log command views and summarizes them.
package log
