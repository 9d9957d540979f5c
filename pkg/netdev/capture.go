package netdev

import (
	"time"

	"github.com/netstack-lab/netstack-go/pkg/log"
)

func (r *Registry) captureFrame(dev *Device, dir log.Direction, typ uint16, data []byte) {
	if r.capture == nil {
		return
	}
	r.capture.Log(log.Event{
		Timestamp: time.Now(),
		StackID:   r.stackID,
		Direction: dir,
		Layer:     log.LayerDevice,
		Category:  log.CategoryFrame,
		Device:    dev.Name,
		Frame:     log.NewFrameEvent(typ, data),
	})
}

func (r *Registry) captureState(dev *Device, from, to string) {
	if r.capture == nil {
		return
	}
	r.capture.Log(log.Event{
		Timestamp: time.Now(),
		StackID:   r.stackID,
		Layer:     log.LayerDevice,
		Category:  log.CategoryState,
		Device:    dev.Name,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityDevice,
			OldState: from,
			NewState: to,
		},
	})
}

func (r *Registry) captureError(dev *Device, op string, err error) {
	if r.capture == nil {
		return
	}
	r.capture.Log(log.Event{
		Timestamp: time.Now(),
		StackID:   r.stackID,
		Layer:     log.LayerDevice,
		Category:  log.CategoryError,
		Device:    dev.Name,
		Error: &log.ErrorEventData{
			Layer:   log.LayerDevice,
			Message: err.Error(),
			Context: op,
		},
	})
}

func (r *Registry) debugLog(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Debug(msg, append([]any{"component", "registry"}, args...)...)
	}
}

func (r *Registry) infoLog(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Info(msg, append([]any{"component", "registry"}, args...)...)
	}
}

func (r *Registry) warnLog(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Warn(msg, append([]any{"component", "registry"}, args...)...)
	}
}

func (r *Registry) logError(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Error(msg, append([]any{"component", "registry"}, args...)...)
	}
}
