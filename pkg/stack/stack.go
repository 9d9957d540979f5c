package stack

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/netstack-lab/netstack-go/pkg/driver/loopback"
	"github.com/netstack-lab/netstack-go/pkg/driver/null"
	"github.com/netstack-lab/netstack-go/pkg/intr"
	"github.com/netstack-lab/netstack-go/pkg/log"
	"github.com/netstack-lab/netstack-go/pkg/netdev"
)

// Stack errors.
var (
	ErrCapture = errors.New("capture setup failed")
	ErrDevice  = errors.New("device setup failed")
)

// Options carries runtime dependencies that do not belong in a
// configuration file.
type Options struct {
	// Logger is the optional logger for operational output.
	Logger *slog.Logger

	// CaptureLogger receives capture events in addition to
	// Config.CaptureFile.
	CaptureLogger log.Logger

	// ID overrides the generated stack ID.
	ID string
}

// Stack owns the interrupt controller, the registry and the devices.
type Stack struct {
	id     string
	config Config
	logger *slog.Logger

	capture     log.Logger
	captureFile *log.FileLogger

	intr     *intr.Controller
	registry *netdev.Registry
}

// New initializes a stack: the interrupt controller, the registry and
// every configured device. Nothing runs until Run is called.
func New(cfg Config, opts Options) (*Stack, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	id := opts.ID
	if id == "" {
		id = uuid.New().String()
	}

	s := &Stack{
		id:     id,
		config: cfg,
		logger: opts.Logger,
	}

	if err := s.setupCapture(opts.CaptureLogger); err != nil {
		return nil, err
	}

	s.intr = intr.NewController(intr.Config{
		Logger:        s.logger,
		CaptureLogger: s.capture,
		StackID:       id,
	})
	s.registry = netdev.NewRegistry(netdev.Config{
		Interrupts:    s.intr,
		Logger:        s.logger,
		CaptureLogger: s.capture,
		StackID:       id,
	})

	if err := s.createDevices(); err != nil {
		s.closeCapture()
		return nil, err
	}

	s.debugLog("initialized", "stack_id", id, "devices", s.registry.Len())
	return s, nil
}

// setupCapture combines the configured capture sinks. s.capture stays nil
// when there are none.
func (s *Stack) setupCapture(extra log.Logger) error {
	var sinks []log.Logger

	if s.config.CaptureFile != "" {
		fl, err := log.NewFileLogger(s.config.CaptureFile,
			log.WithStackID(s.id),
			log.WithSnapLen(s.config.CaptureSnapLen))
		if err != nil {
			return fmt.Errorf("%w: %w", ErrCapture, err)
		}
		s.captureFile = fl
		sinks = append(sinks, fl)
	}
	if s.config.CaptureToLog && s.logger != nil {
		sinks = append(sinks, log.NewSlogAdapter(s.logger))
	}
	if extra != nil {
		sinks = append(sinks, extra)
	}

	switch len(sinks) {
	case 0:
	case 1:
		s.capture = sinks[0]
	default:
		s.capture = log.NewMultiLogger(sinks...)
	}
	return nil
}

func (s *Stack) createDevices() error {
	instances := s.config.loopbackInstances()

	for i, dc := range s.config.Devices {
		var (
			dev *netdev.Device
			err error
		)
		switch dc.Type {
		case DeviceNull:
			dev, err = null.New(s.registry, s.intr, s.logger)
		case DeviceLoopback:
			dev, err = loopback.New(s.registry, s.intr, loopback.Config{
				IRQ:           loopback.IRQFor(instances[i]),
				Logger:        s.logger,
				CaptureLogger: s.capture,
				StackID:       s.id,
			})
		}
		if err != nil {
			return fmt.Errorf("%w: device %d (%s): %w", ErrDevice, i, dc.Type, err)
		}
		if dc.MTU != 0 {
			dev.MTU = dc.MTU
		}
	}
	return nil
}

// ID returns the stack ID stamped on capture events.
func (s *Stack) ID() string {
	return s.id
}

// Config returns the configuration the stack was built from.
func (s *Stack) Config() Config {
	return s.config
}

// Registry returns the device registry.
func (s *Stack) Registry() *netdev.Registry {
	return s.registry
}

// Interrupts returns the interrupt controller.
func (s *Stack) Interrupts() *intr.Controller {
	return s.intr
}

// Devices returns the devices in registration order.
func (s *Stack) Devices() []*netdev.Device {
	return s.registry.Devices()
}

// Run starts interrupt delivery and opens every device.
func (s *Stack) Run() error {
	s.infoLog("starting", "stack_id", s.id)
	if err := s.registry.Run(); err != nil {
		return err
	}
	s.infoLog("running", "stack_id", s.id)
	return nil
}

// Shutdown stops interrupt delivery and closes the capture file.
// Devices are not closed.
func (s *Stack) Shutdown() {
	s.registry.Shutdown()
	s.closeCapture()
	s.infoLog("shut down", "stack_id", s.id)
}

func (s *Stack) closeCapture() {
	if s.captureFile == nil {
		return
	}
	if err := s.captureFile.Close(); err != nil && s.logger != nil {
		s.logger.Warn("closing capture file", "component", "stack", "error", err)
	}
	s.captureFile = nil
}

func (s *Stack) debugLog(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, append([]any{"component", "stack"}, args...)...)
	}
}

func (s *Stack) infoLog(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Info(msg, append([]any{"component", "stack"}, args...)...)
	}
}
