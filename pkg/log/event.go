package log

import "time"

// MaxFrameDataSize is the maximum frame data size kept in a capture event (4 KB).
// Larger frames are truncated to avoid excessive memory usage.
const MaxFrameDataSize = 4096

// Event represents a capture event recorded at any layer.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// StackID identifies the stack instance that produced the event (UUID).
	StackID string `cbor:"2,keyasint"`

	// Direction indicates frame flow relative to the stack.
	Direction Direction `cbor:"3,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"4,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"5,keyasint"`

	// Device is the device name, e.g. "net0" (empty for stack-wide events).
	Device string `cbor:"6,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Frame       *FrameEvent       `cbor:"10,keyasint,omitempty"`
	StateChange *StateChangeEvent `cbor:"11,keyasint,omitempty"`
	IRQ         *IRQEvent         `cbor:"12,keyasint,omitempty"`
	Error       *ErrorEventData   `cbor:"13,keyasint,omitempty"`
}

// Direction indicates the direction of frame flow.
type Direction uint8

const (
	// DirectionIn indicates a frame travelling up from a driver.
	DirectionIn Direction = 0
	// DirectionOut indicates a frame travelling down to a driver.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Layer indicates which part of the stack captured the event.
type Layer uint8

const (
	// LayerDevice is the registry and dispatch layer.
	LayerDevice Layer = 0
	// LayerDriver is a transport implementation.
	LayerDriver Layer = 1
	// LayerInterrupt is the interrupt emulation.
	LayerInterrupt Layer = 2
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerDevice:
		return "DEVICE"
	case LayerDriver:
		return "DRIVER"
	case LayerInterrupt:
		return "INTERRUPT"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryFrame indicates a frame passing through a layer.
	CategoryFrame Category = 0
	// CategoryState indicates a state change.
	CategoryState Category = 1
	// CategoryIRQ indicates interrupt activity.
	CategoryIRQ Category = 2
	// CategoryError indicates an error event.
	CategoryError Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryFrame:
		return "FRAME"
	case CategoryState:
		return "STATE"
	case CategoryIRQ:
		return "IRQ"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// FrameEvent captures an opaque frame.
type FrameEvent struct {
	// Type is the frame type (e.g. 0x0800).
	Type uint16 `cbor:"1,keyasint"`

	// Size is the full payload size in bytes.
	Size int `cbor:"2,keyasint"`

	// Data is the payload (may be truncated for large frames).
	Data []byte `cbor:"3,keyasint,omitempty"`

	// Truncated indicates if Data was truncated.
	Truncated bool `cbor:"4,keyasint,omitempty"`
}

// NewFrameEvent builds a FrameEvent, truncating data beyond MaxFrameDataSize.
// The data is copied so callers may reuse their buffer.
func NewFrameEvent(typ uint16, data []byte) *FrameEvent {
	keep := data
	truncated := false
	if len(keep) > MaxFrameDataSize {
		keep = keep[:MaxFrameDataSize]
		truncated = true
	}
	return &FrameEvent{
		Type:      typ,
		Size:      len(data),
		Data:      append([]byte(nil), keep...),
		Truncated: truncated,
	}
}

// StateChangeEvent captures device and interrupt subsystem lifecycle events.
type StateChangeEvent struct {
	// Entity being changed.
	Entity StateEntity `cbor:"1,keyasint"`

	// OldState is the previous state (may be empty).
	OldState string `cbor:"2,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"3,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"4,keyasint,omitempty"`
}

// StateEntity indicates what entity changed state.
type StateEntity uint8

const (
	// StateEntityDevice indicates a device up/down transition.
	StateEntityDevice StateEntity = 0
	// StateEntityInterrupts indicates an interrupt controller transition.
	StateEntityInterrupts StateEntity = 1
)

// String returns the entity name.
func (s StateEntity) String() string {
	switch s {
	case StateEntityDevice:
		return "DEVICE"
	case StateEntityInterrupts:
		return "INTERRUPTS"
	default:
		return "UNKNOWN"
	}
}

// IRQEvent captures interrupt activity.
type IRQEvent struct {
	// IRQ is the interrupt request number.
	IRQ uint32 `cbor:"1,keyasint"`

	// Action is what happened to the IRQ.
	Action IRQAction `cbor:"2,keyasint"`

	// Handlers is the number of handlers invoked (dispatch only).
	Handlers int `cbor:"3,keyasint,omitempty"`
}

// IRQAction indicates what happened to an IRQ.
type IRQAction uint8

const (
	// IRQActionRaise indicates a producer raised the IRQ.
	IRQActionRaise IRQAction = 0
	// IRQActionCoalesce indicates a raise merged into an already pending IRQ.
	IRQActionCoalesce IRQAction = 1
	// IRQActionDispatch indicates the worker ran the IRQ's handlers.
	IRQActionDispatch IRQAction = 2
)

// String returns the action name.
func (a IRQAction) String() string {
	switch a {
	case IRQActionRaise:
		return "RAISE"
	case IRQActionCoalesce:
		return "COALESCE"
	case IRQActionDispatch:
		return "DISPATCH"
	default:
		return "UNKNOWN"
	}
}

// ErrorEventData captures errors at any layer.
type ErrorEventData struct {
	// Layer where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Context describes what operation was being performed.
	Context string `cbor:"3,keyasint,omitempty"`
}
