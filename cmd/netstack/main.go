// Command netstack runs the device layer with the configured devices and
// exercises it.
//
// By default it sends a test frame on one device at a fixed interval and
// logs every frame handed back up by the drivers, until SIGINT or SIGTERM.
// With -interactive it opens a shell instead.
//
// Usage:
//
//	netstack [flags]
//
// Flags:
//
//	-config string      Configuration file path (YAML)
//	-log-level string   Log level: debug, info, warn, error (overrides config)
//	-capture string     Capture file path (CBOR, overrides config)
//	-device string      Device that receives the periodic test frame (default "net0")
//	-interval duration  Interval between test frames (default 1s)
//	-count int          Stop after this many frames (0 = until interrupted)
//	-interactive        Start the interactive shell
//
// Examples:
//
//	# Loopback device, one frame per second
//	netstack
//
//	# Devices from a config file, capture written for netstack-log
//	netstack -config netstack.yaml -capture /tmp/netstack.cbor -log-level debug
package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/netstack-lab/netstack-go/cmd/netstack/interactive"
	"github.com/netstack-lab/netstack-go/pkg/netdev"
	"github.com/netstack-lab/netstack-go/pkg/stack"
)

// testFrameType is the frame type of the periodic test frame (IPv4).
const testFrameType = 0x0800

// testFrame is the periodic test payload: an IPv4 header followed by a
// short ASCII body.
var testFrame = []byte{
	0x45, 0x00, 0x00, 0x30,
	0x00, 0x80, 0x00, 0x00,
	0xff, 0x01, 0xbd, 0x4a,
	0x7f, 0x00, 0x00, 0x01,
	0x7f, 0x00, 0x00, 0x01,
	0x08, 0x00, 0x35, 0x64,
	0x00, 0x80, 0x00, 0x01,
	0x31, 0x32, 0x33, 0x34,
	0x35, 0x36, 0x37, 0x38,
	0x39, 0x30, 0x21, 0x40,
	0x23, 0x24, 0x25, 0x5e,
	0x26, 0x2a, 0x28, 0x29,
}

// Options holds the command line settings.
type Options struct {
	ConfigFile  string
	LogLevel    string
	CaptureFile string
	Device      string
	Interval    time.Duration
	Count       int
	Interactive bool
}

var opts Options

func init() {
	flag.StringVar(&opts.ConfigFile, "config", "", "Configuration file path (YAML)")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	flag.StringVar(&opts.CaptureFile, "capture", "", "Capture file path (CBOR, overrides config)")
	flag.StringVar(&opts.Device, "device", "net0", "Device that receives the periodic test frame")
	flag.DurationVar(&opts.Interval, "interval", time.Second, "Interval between test frames")
	flag.IntVar(&opts.Count, "count", 0, "Stop after this many frames (0 = until interrupted)")
	flag.BoolVar(&opts.Interactive, "interactive", false, "Start the interactive shell")
}

func main() {
	flag.Parse()

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var shell *interactive.Shell
	out := io.Writer(os.Stderr)
	if opts.Interactive {
		shell, err = interactive.New()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		out = shell.Stderr()
	}

	logger, err := newLogger(out, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	s, err := stack.New(cfg, stack.Options{Logger: logger})
	if err != nil {
		logger.Error("stack init failed", "error", err)
		os.Exit(1)
	}
	logger.Info("stack initialized", "stack_id", s.ID(), "devices", len(s.Devices()))

	s.Registry().OnInput(func(typ uint16, data []byte, dev *netdev.Device) {
		logger.Info("frame received", "device", dev.Name, "type", fmt.Sprintf("0x%04x", typ), "len", len(data))
		logger.Debug("frame data", "device", dev.Name, "dump", "\n"+hex.Dump(data))
	})

	if err := s.Run(); err != nil {
		logger.Error("stack run failed", "error", err)
		os.Exit(1)
	}
	defer s.Shutdown()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received signal", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	if shell != nil {
		shell.Attach(s)
		shell.Run(ctx, cancel)
	} else {
		runSender(ctx, s, logger, opts)
	}

	logger.Info("shutting down")
}

// loadConfig builds the stack configuration from the config file and the
// command line overrides.
func loadConfig(o Options) (stack.Config, error) {
	cfg := stack.DefaultConfig()
	if o.ConfigFile != "" {
		var err error
		cfg, err = stack.LoadConfig(o.ConfigFile)
		if err != nil {
			return stack.Config{}, err
		}
	}
	if o.LogLevel != "" {
		cfg.LogLevel = o.LogLevel
	}
	if o.CaptureFile != "" {
		cfg.CaptureFile = o.CaptureFile
	}
	if o.Interval <= 0 {
		return stack.Config{}, fmt.Errorf("interval must be positive, got %s", o.Interval)
	}
	return cfg, cfg.Validate()
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	lvl, err := stack.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

// runSender outputs the test frame on the selected device every interval
// until ctx is done or Count frames have been sent.
func runSender(ctx context.Context, s *stack.Stack, logger *slog.Logger, o Options) {
	dev, ok := s.Registry().LookupName(o.Device)
	if !ok {
		logger.Error("unknown device", "device", o.Device)
		return
	}

	ticker := time.NewTicker(o.Interval)
	defer ticker.Stop()

	sent := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Registry().Output(dev, testFrameType, testFrame, nil); err != nil {
				logger.Warn("output failed", "device", dev.Name, "error", err)
				continue
			}
			sent++
			if o.Count > 0 && sent >= o.Count {
				// Let the worker hand the last frame up before shutdown.
				time.Sleep(o.Interval)
				return
			}
		}
	}
}
