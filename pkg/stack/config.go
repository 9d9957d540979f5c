package stack

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/netstack-lab/netstack-go/pkg/driver/loopback"
)

// Device kinds accepted in a configuration file.
const (
	DeviceNull     = "null"
	DeviceLoopback = "loopback"
)

// ErrInvalidConfig is returned by Validate and by the loaders.
var ErrInvalidConfig = errors.New("invalid stack config")

// Config describes a stack and its devices.
type Config struct {
	// LogLevel is one of debug, info, warn or error.
	LogLevel string `yaml:"log_level"`

	// CaptureFile, if set, receives every capture event in CBOR form.
	CaptureFile string `yaml:"capture_file"`

	// CaptureSnapLen limits the frame bytes kept per event in CaptureFile.
	// Zero keeps frames up to the capture maximum.
	CaptureSnapLen int `yaml:"capture_snaplen"`

	// CaptureToLog also writes capture events to the operational log at
	// debug level.
	CaptureToLog bool `yaml:"capture_to_log"`

	// Devices are created in order, so the first entry is net0.
	Devices []DeviceConfig `yaml:"devices"`
}

// DeviceConfig describes one device.
type DeviceConfig struct {
	// Type is DeviceNull or DeviceLoopback.
	Type string `yaml:"type"`

	// MTU overrides the driver default when non-zero.
	MTU uint16 `yaml:"mtu,omitempty"`

	// Instance selects the loopback IRQ (see loopback.IRQFor). Loopback
	// entries without an instance are numbered in order of appearance.
	Instance *int `yaml:"instance,omitempty"`
}

// DefaultConfig returns a stack with a single loopback device.
func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Devices: []DeviceConfig{
			{Type: DeviceLoopback},
		},
	}
}

// LoadConfig reads and validates a YAML configuration file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes and validates YAML configuration. Fields missing
// from data keep their DefaultConfig values.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}

	if c.CaptureSnapLen < 0 {
		return fmt.Errorf("%w: negative capture_snaplen %d", ErrInvalidConfig, c.CaptureSnapLen)
	}

	for i, d := range c.Devices {
		switch d.Type {
		case DeviceNull:
			if d.Instance != nil {
				return fmt.Errorf("%w: device %d: instance is only valid for loopback", ErrInvalidConfig, i)
			}
		case DeviceLoopback:
		default:
			return fmt.Errorf("%w: device %d: unknown type %q", ErrInvalidConfig, i, d.Type)
		}
	}

	instances := c.loopbackInstances()
	used := make(map[int]int)
	for i := range c.Devices {
		n, ok := instances[i]
		if !ok {
			continue
		}
		if n < 0 || uint64(n) > loopback.MaxInstance {
			return fmt.Errorf("%w: device %d: instance %d out of range [0, %d]", ErrInvalidConfig, i, n, loopback.MaxInstance)
		}
		if prev, dup := used[n]; dup {
			return fmt.Errorf("%w: device %d: loopback instance %d already used by device %d", ErrInvalidConfig, i, n, prev)
		}
		used[n] = i
	}
	return nil
}

// loopbackInstances returns the instance number of every loopback entry,
// keyed by position in Devices.
func (c Config) loopbackInstances() map[int]int {
	out := make(map[int]int)
	next := 0
	for i, d := range c.Devices {
		if d.Type != DeviceLoopback {
			continue
		}
		n := next
		if d.Instance != nil {
			n = *d.Instance
		}
		out[i] = n
		next = n + 1
	}
	return out
}

// ParseLevel converts a level name to a slog.Level. An empty name is info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, s)
	}
}
