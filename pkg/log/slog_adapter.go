package log

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
)

// maxSlogDumpBytes bounds the hex dump attached to frame records.
const maxSlogDumpBytes = 64

// SlogAdapter writes capture events to an slog.Logger.
// Useful for development when you want to see frames in the console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at Debug level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("stack_id", event.StackID),
		slog.String("direction", event.Direction.String()),
		slog.String("layer", event.Layer.String()),
		slog.String("category", event.Category.String()),
	}

	if event.Device != "" {
		attrs = append(attrs, slog.String("device", event.Device))
	}

	switch {
	case event.Frame != nil:
		dump := event.Frame.Data
		if len(dump) > maxSlogDumpBytes {
			dump = dump[:maxSlogDumpBytes]
		}
		attrs = append(attrs,
			slog.String("frame_type", fmt.Sprintf("0x%04x", event.Frame.Type)),
			slog.Int("frame_size", event.Frame.Size),
			slog.Bool("truncated", event.Frame.Truncated),
			slog.String("data", hex.EncodeToString(dump)),
		)
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("entity", event.StateChange.Entity.String()),
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}
	case event.IRQ != nil:
		attrs = append(attrs,
			slog.Uint64("irq", uint64(event.IRQ.IRQ)),
			slog.String("action", event.IRQ.Action.String()),
		)
		if event.IRQ.Handlers > 0 {
			attrs = append(attrs, slog.Int("handlers", event.IRQ.Handlers))
		}
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_layer", event.Error.Layer.String()),
			slog.String("error_msg", event.Error.Message),
			slog.String("error_context", event.Error.Context),
		)
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "capture", attrs...)
}

var _ Logger = (*SlogAdapter)(nil)
