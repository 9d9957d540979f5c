package interactive

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netstack-lab/netstack-go/pkg/stack"
)

func newTestShell(t *testing.T) (*Shell, *bytes.Buffer) {
	t.Helper()
	cfg := stack.Config{Devices: []stack.DeviceConfig{
		{Type: stack.DeviceLoopback},
		{Type: stack.DeviceNull},
	}}
	s, err := stack.New(cfg, stack.Options{ID: "test"})
	require.NoError(t, err)

	var out bytes.Buffer
	return &Shell{out: &out, s: s}, &out
}

func TestExecQuit(t *testing.T) {
	sh, out := newTestShell(t)

	assert.True(t, sh.exec(""))
	assert.False(t, sh.exec("quit"))
	assert.Contains(t, out.String(), "Exiting")
}

func TestExecUnknown(t *testing.T) {
	sh, out := newTestShell(t)

	assert.True(t, sh.exec("frobnicate"))
	assert.Contains(t, out.String(), "Unknown command: frobnicate")
}

func TestDevices(t *testing.T) {
	sh, out := newTestShell(t)

	sh.exec("devices")
	assert.Contains(t, out.String(), "net0")
	assert.Contains(t, out.String(), "LOOPBACK")
	assert.Contains(t, out.String(), "net1")
	assert.Contains(t, out.String(), "NULL")
}

func TestOpenSendDrain(t *testing.T) {
	sh, out := newTestShell(t)

	sh.exec("send net0 0x0800 hello")
	assert.Contains(t, out.String(), "device not up")

	out.Reset()
	sh.exec("open net0")
	assert.Contains(t, out.String(), "net0 is up")

	out.Reset()
	sh.exec("send 0 0x0800 hello world")
	assert.Contains(t, out.String(), "Sent 11 bytes on net0")

	// The controller is not running, so the frame waits for drain.
	out.Reset()
	sh.exec("stats net0")
	assert.Contains(t, out.String(), "Queue: 1/16")

	out.Reset()
	sh.exec("drain net0")
	assert.Contains(t, out.String(), "Delivered 1 frames")

	out.Reset()
	sh.exec("stats net0")
	assert.Contains(t, out.String(), "RX: 1 packets, 11 bytes")

	out.Reset()
	sh.exec("close net0")
	assert.Contains(t, out.String(), "net0 is down")
}

func TestSendErrors(t *testing.T) {
	sh, out := newTestShell(t)

	sh.exec("send net0")
	assert.Contains(t, out.String(), "Usage: send")

	out.Reset()
	sh.exec("send net9 0x0800")
	assert.Contains(t, out.String(), "Unknown device: net9")

	out.Reset()
	sh.exec("send net0 0x10000")
	assert.Contains(t, out.String(), "Invalid frame type")
}

func TestDrainRequiresLoopback(t *testing.T) {
	sh, out := newTestShell(t)

	sh.exec("drain net1")
	assert.Contains(t, out.String(), "net1 is not a loopback device")
}

func TestIRQsAndStatus(t *testing.T) {
	sh, out := newTestShell(t)

	sh.exec("irqs")
	assert.Contains(t, out.String(), "IRQ 35")
	assert.Contains(t, out.String(), "IRQ 36")

	out.Reset()
	sh.exec("status")
	assert.Contains(t, out.String(), "Stack ID:     test")
	assert.Contains(t, out.String(), "IDLE")
}
