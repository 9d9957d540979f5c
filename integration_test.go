package netstack_test

import (
	"errors"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/netstack-lab/netstack-go/pkg/driver/loopback"
	"github.com/netstack-lab/netstack-go/pkg/driver/null"
	"github.com/netstack-lab/netstack-go/pkg/intr"
	"github.com/netstack-lab/netstack-go/pkg/log"
	"github.com/netstack-lab/netstack-go/pkg/netdev"
	"github.com/netstack-lab/netstack-go/pkg/stack"
)

type frame struct {
	dev  string
	typ  uint16
	data string
}

type frameSink struct {
	mu     sync.Mutex
	frames []frame
	ch     chan frame
}

func newFrameSink(reg *netdev.Registry) *frameSink {
	s := &frameSink{ch: make(chan frame, 128)}
	reg.OnInput(func(typ uint16, data []byte, dev *netdev.Device) {
		f := frame{dev: dev.Name, typ: typ, data: string(data)}
		s.mu.Lock()
		s.frames = append(s.frames, f)
		s.mu.Unlock()
		s.ch <- f
	})
	return s
}

func (s *frameSink) wait(t *testing.T, n int) []frame {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for i := 0; i < n; i++ {
		select {
		case <-s.ch:
		case <-deadline:
			t.Fatalf("received %d of %d frames", i, n)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]frame(nil), s.frames...)
}

// TestE2E_LoopbackHello sends one frame through a running stack and checks
// that it comes back exactly once.
func TestE2E_LoopbackHello(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	s, err := stack.New(stack.DefaultConfig(), stack.Options{})
	if err != nil {
		t.Fatalf("stack.New failed: %v", err)
	}
	sink := newFrameSink(s.Registry())

	if err := s.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	dev := s.Devices()[0]
	if err := s.Registry().Output(dev, 0x0800, []byte("hello"), nil); err != nil {
		t.Fatalf("Output failed: %v", err)
	}

	got := sink.wait(t, 1)
	s.Shutdown()

	if len(got) != 1 {
		t.Fatalf("expected exactly 1 frame, got %d", len(got))
	}
	want := frame{dev: "net0", typ: 0x0800, data: "hello"}
	if got[0] != want {
		t.Errorf("got %+v, want %+v", got[0], want)
	}
}

// TestE2E_MixedDevices runs null and loopback devices side by side and
// checks that only loopback frames come back, each on its own device and in
// order.
func TestE2E_MixedDevices(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	cfg := stack.Config{Devices: []stack.DeviceConfig{
		{Type: stack.DeviceLoopback},
		{Type: stack.DeviceNull},
		{Type: stack.DeviceLoopback},
		{Type: stack.DeviceNull},
	}}
	s, err := stack.New(cfg, stack.Options{})
	if err != nil {
		t.Fatalf("stack.New failed: %v", err)
	}
	sink := newFrameSink(s.Registry())

	if err := s.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	defer s.Shutdown()

	devs := s.Devices()
	payloads := []string{"one", "two", "three"}
	for _, p := range payloads {
		for _, dev := range devs {
			if err := s.Registry().Output(dev, 0x86dd, []byte(p), nil); err != nil {
				t.Fatalf("Output on %s failed: %v", dev.Name, err)
			}
		}
	}

	got := sink.wait(t, 2*len(payloads))

	perDevice := make(map[string][]string)
	for _, f := range got {
		perDevice[f.dev] = append(perDevice[f.dev], f.data)
	}
	for _, name := range []string{"net0", "net2"} {
		if len(perDevice[name]) != len(payloads) {
			t.Fatalf("%s: got %v, want %v", name, perDevice[name], payloads)
		}
		for i, p := range payloads {
			if perDevice[name][i] != p {
				t.Errorf("%s frame %d = %q, want %q", name, i, perDevice[name][i], p)
			}
		}
	}
	for _, name := range []string{"net1", "net3"} {
		if len(perDevice[name]) != 0 {
			t.Errorf("%s: null device delivered %v", name, perDevice[name])
		}
		dev, _ := s.Registry().LookupName(name)
		nd, _ := null.FromDevice(dev)
		if nd.Discarded() != uint64(len(payloads)) {
			t.Errorf("%s: discarded %d, want %d", name, nd.Discarded(), len(payloads))
		}
	}
}

// TestE2E_ShutdownStopsDelivery checks that frames output after shutdown
// stay queued and raise nothing.
func TestE2E_ShutdownStopsDelivery(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	s, err := stack.New(stack.DefaultConfig(), stack.Options{})
	if err != nil {
		t.Fatalf("stack.New failed: %v", err)
	}
	if err := s.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	s.Shutdown()

	if err := s.Interrupts().RaiseIRQ(loopback.IRQFor(0)); !errors.Is(err, intr.ErrNotRunning) {
		t.Errorf("RaiseIRQ after shutdown = %v, want ErrNotRunning", err)
	}

	dev := s.Devices()[0]
	for i := 0; i < loopback.QueueLimit; i++ {
		if err := s.Registry().Output(dev, 0x0800, []byte{byte(i)}, nil); err != nil {
			t.Fatalf("Output %d failed: %v", i, err)
		}
	}
	err = s.Registry().Output(dev, 0x0800, []byte{0xff}, nil)
	if !errors.Is(err, loopback.ErrQueueFull) {
		t.Errorf("Output on full queue = %v, want ErrQueueFull", err)
	}
}

// TestE2E_CaptureFile checks that a capture file written by a running stack
// reads back with frame, state and IRQ events for every layer.
func TestE2E_CaptureFile(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	path := filepath.Join(t.TempDir(), "capture.cbor")
	cfg := stack.DefaultConfig()
	cfg.CaptureFile = path

	s, err := stack.New(cfg, stack.Options{})
	if err != nil {
		t.Fatalf("stack.New failed: %v", err)
	}
	sink := newFrameSink(s.Registry())
	if err := s.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if err := s.Registry().Output(s.Devices()[0], 0x0800, []byte("captured"), nil); err != nil {
		t.Fatalf("Output failed: %v", err)
	}
	sink.wait(t, 1)
	s.Shutdown()

	reader, err := log.NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	layers := make(map[log.Layer]bool)
	categories := make(map[log.Category]bool)
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		if event.StackID != s.ID() {
			t.Errorf("event stack ID = %q, want %q", event.StackID, s.ID())
		}
		layers[event.Layer] = true
		categories[event.Category] = true
	}

	for _, l := range []log.Layer{log.LayerDevice, log.LayerDriver, log.LayerInterrupt} {
		if !layers[l] {
			t.Errorf("no events for layer %s", l)
		}
	}
	for _, c := range []log.Category{log.CategoryFrame, log.CategoryState, log.CategoryIRQ} {
		if !categories[c] {
			t.Errorf("no events for category %s", c)
		}
	}
}
