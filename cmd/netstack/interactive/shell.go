// Package interactive provides the interactive command-line interface
// for netstack.
package interactive

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/netstack-lab/netstack-go/pkg/driver/loopback"
	"github.com/netstack-lab/netstack-go/pkg/driver/null"
	"github.com/netstack-lab/netstack-go/pkg/intr"
	"github.com/netstack-lab/netstack-go/pkg/netdev"
	"github.com/netstack-lab/netstack-go/pkg/stack"
)

// Shell handles interactive mode for netstack.
type Shell struct {
	rl  *readline.Instance
	out io.Writer
	s   *stack.Stack
}

// New creates the shell and its line editor. The stack is attached
// separately so that logging can be routed through Stderr first.
func New() (*Shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "netstack> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return &Shell{rl: rl, out: rl.Stdout()}, nil
}

// Attach sets the stack the commands operate on.
func (sh *Shell) Attach(s *stack.Stack) {
	sh.s = s
}

// Stdout returns a writer that properly coordinates with the readline input.
func (sh *Shell) Stdout() io.Writer {
	return sh.rl.Stdout()
}

// Stderr returns a writer that properly coordinates with the readline input.
// Use this for log output to avoid interfering with the command prompt.
func (sh *Shell) Stderr() io.Writer {
	return sh.rl.Stderr()
}

// Run starts the interactive command loop.
func (sh *Shell) Run(ctx context.Context, cancel context.CancelFunc) {
	defer sh.rl.Close()

	sh.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := sh.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(sh.out, "Exiting...")
			cancel()
			return
		}

		if !sh.exec(line) {
			cancel()
			return
		}
	}
}

// exec runs one command line. It returns false when the shell should exit.
func (sh *Shell) exec(line string) bool {
	input := strings.TrimSpace(line)
	if input == "" {
		return true
	}

	parts := strings.Fields(input)
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "?":
		sh.printHelp()

	case "devices", "ls":
		sh.cmdDevices()

	case "open", "up":
		sh.cmdOpen(args)

	case "close", "down":
		sh.cmdClose(args)

	case "send", "tx":
		sh.cmdSend(args)

	case "drain":
		sh.cmdDrain(args)

	case "stats":
		sh.cmdStats(args)

	case "irqs":
		sh.cmdIRQs()

	case "status":
		sh.cmdStatus()

	case "quit", "exit", "q":
		fmt.Fprintln(sh.out, "Exiting...")
		return false

	default:
		fmt.Fprintf(sh.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return true
}

func (sh *Shell) printHelp() {
	fmt.Fprintln(sh.out, `
netstack Commands:
  Devices:
    devices                    - List devices
    open <dev>                 - Bring a device up
    close <dev>                - Bring a device down
    stats [dev]                - Show traffic counters

  Traffic:
    send <dev> <type> [text]   - Output a frame (type in hex, e.g. 0x0800)
    drain <dev>                - Deliver queued loopback frames now

  Interrupts:
    irqs                       - Show interrupt counters
    status                     - Show stack status

  General:
    help                       - Show this help
    quit                       - Exit

  Devices are named net0, net1, ... or given by index.`)
}

// lookup resolves a device by name or index.
func (sh *Shell) lookup(arg string) (*netdev.Device, bool) {
	reg := sh.s.Registry()
	if dev, ok := reg.LookupName(arg); ok {
		return dev, true
	}
	if n, err := strconv.ParseUint(arg, 10, 32); err == nil {
		return reg.Lookup(uint32(n))
	}
	fmt.Fprintf(sh.out, "Unknown device: %s\n", arg)
	return nil, false
}

func (sh *Shell) cmdDevices() {
	fmt.Fprintln(sh.out, "\nDevices")
	fmt.Fprintln(sh.out, "-------------------------------------------")
	for _, dev := range sh.s.Devices() {
		fmt.Fprintf(sh.out, "  %-6s %-9s mtu=%-5d %s\n", dev.Name, dev.Type, dev.MTU, dev.State())
	}
	fmt.Fprintln(sh.out)
}

func (sh *Shell) cmdOpen(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(sh.out, "Usage: open <dev>")
		return
	}
	dev, ok := sh.lookup(args[0])
	if !ok {
		return
	}
	if err := sh.s.Registry().Open(dev); err != nil {
		fmt.Fprintf(sh.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(sh.out, "%s is up\n", dev.Name)
}

func (sh *Shell) cmdClose(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(sh.out, "Usage: close <dev>")
		return
	}
	dev, ok := sh.lookup(args[0])
	if !ok {
		return
	}
	if err := sh.s.Registry().Close(dev); err != nil {
		fmt.Fprintf(sh.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(sh.out, "%s is down\n", dev.Name)
}

func (sh *Shell) cmdSend(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(sh.out, "Usage: send <dev> <type> [text]")
		return
	}
	dev, ok := sh.lookup(args[0])
	if !ok {
		return
	}
	typ, err := strconv.ParseUint(args[1], 0, 16)
	if err != nil {
		fmt.Fprintf(sh.out, "Invalid frame type: %v\n", err)
		return
	}
	data := []byte(strings.Join(args[2:], " "))

	if err := sh.s.Registry().Output(dev, uint16(typ), data, nil); err != nil {
		fmt.Fprintf(sh.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(sh.out, "Sent %d bytes on %s\n", len(data), dev.Name)
	if len(data) > 0 {
		fmt.Fprint(sh.out, hex.Dump(data))
	}
}

func (sh *Shell) cmdDrain(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(sh.out, "Usage: drain <dev>")
		return
	}
	dev, ok := sh.lookup(args[0])
	if !ok {
		return
	}
	lo, ok := loopback.FromDevice(dev)
	if !ok {
		fmt.Fprintf(sh.out, "%s is not a loopback device\n", dev.Name)
		return
	}
	fmt.Fprintf(sh.out, "Delivered %d frames\n", lo.Drain())
}

func (sh *Shell) cmdStats(args []string) {
	devs := sh.s.Devices()
	if len(args) > 0 {
		dev, ok := sh.lookup(args[0])
		if !ok {
			return
		}
		devs = []*netdev.Device{dev}
	}

	fmt.Fprintln(sh.out, "\nDevice Statistics")
	fmt.Fprintln(sh.out, "-------------------------------------------")
	for _, dev := range devs {
		st := dev.Stats()
		fmt.Fprintf(sh.out, "  %s:\n", dev.Name)
		fmt.Fprintf(sh.out, "    TX: %d packets, %d bytes, %d errors\n", st.TxPackets, st.TxBytes, st.TxErrors)
		fmt.Fprintf(sh.out, "    RX: %d packets, %d bytes\n", st.RxPackets, st.RxBytes)
		if lo, ok := loopback.FromDevice(dev); ok {
			fmt.Fprintf(sh.out, "    Queue: %d/%d\n", lo.Len(), loopback.QueueLimit)
		}
		if nd, ok := null.FromDevice(dev); ok {
			fmt.Fprintf(sh.out, "    Discarded: %d\n", nd.Discarded())
		}
	}
	fmt.Fprintln(sh.out)
}

func (sh *Shell) cmdIRQs() {
	ctrl := sh.s.Interrupts()

	irqs := []intr.IRQ{null.IRQ}
	for _, dev := range sh.s.Devices() {
		if lo, ok := loopback.FromDevice(dev); ok {
			irqs = append(irqs, lo.IRQ())
		}
	}

	fmt.Fprintln(sh.out, "\nInterrupts")
	fmt.Fprintln(sh.out, "-------------------------------------------")
	for _, irq := range irqs {
		st := ctrl.Stats(irq)
		fmt.Fprintf(sh.out, "  IRQ %-4d raised=%d coalesced=%d dispatched=%d errors=%d\n",
			irq, st.Raised, st.Coalesced, st.Dispatched, st.HandlerErrors)
	}
	fmt.Fprintln(sh.out)
}

func (sh *Shell) cmdStatus() {
	fmt.Fprintln(sh.out, "\nStack Status")
	fmt.Fprintln(sh.out, "-------------------------------------------")
	fmt.Fprintf(sh.out, "  Stack ID:     %s\n", sh.s.ID())
	fmt.Fprintf(sh.out, "  Interrupts:   %s\n", sh.s.Interrupts().State())
	fmt.Fprintf(sh.out, "  Devices:      %d\n", len(sh.s.Devices()))
	fmt.Fprintln(sh.out)
}
