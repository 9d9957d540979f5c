package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/netstack-lab/netstack-go/pkg/log"
)

// Stats holds aggregate statistics about a capture file.
type Stats struct {
	Header            *log.FileHeader
	TotalEvents       int
	EventsByLayer     map[log.Layer]int
	EventsByCategory  map[log.Category]int
	EventsByDirection map[log.Direction]int
	Devices           map[string]*DeviceStats
	IRQs              map[uint32]*IRQStats
	Stacks            map[string]int
	Errors            int
	TimeRange         struct {
		Start time.Time
		End   time.Time
	}
}

// DeviceStats holds frame statistics for a single device.
type DeviceStats struct {
	FramesOut int
	FramesIn  int
	BytesOut  int
	BytesIn   int
	Truncated int
}

// IRQStats holds interrupt statistics for a single IRQ.
type IRQStats struct {
	Raised     int
	Coalesced  int
	Dispatched int
}

func newStats() *Stats {
	return &Stats{
		EventsByLayer:     make(map[log.Layer]int),
		EventsByCategory:  make(map[log.Category]int),
		EventsByDirection: make(map[log.Direction]int),
		Devices:           make(map[string]*DeviceStats),
		IRQs:              make(map[uint32]*IRQStats),
		Stacks:            make(map[string]int),
	}
}

func (s *Stats) add(event log.Event) {
	s.TotalEvents++
	s.EventsByLayer[event.Layer]++
	s.EventsByCategory[event.Category]++
	s.Stacks[event.StackID]++

	if s.TimeRange.Start.IsZero() || event.Timestamp.Before(s.TimeRange.Start) {
		s.TimeRange.Start = event.Timestamp
	}
	if event.Timestamp.After(s.TimeRange.End) {
		s.TimeRange.End = event.Timestamp
	}

	// Frames are counted once, at the device layer.
	if event.Frame != nil && event.Layer == log.LayerDevice {
		s.EventsByDirection[event.Direction]++
		dev, ok := s.Devices[event.Device]
		if !ok {
			dev = &DeviceStats{}
			s.Devices[event.Device] = dev
		}
		if event.Direction == log.DirectionOut {
			dev.FramesOut++
			dev.BytesOut += event.Frame.Size
		} else {
			dev.FramesIn++
			dev.BytesIn += event.Frame.Size
		}
		if event.Frame.Truncated {
			dev.Truncated++
		}
	}

	if event.IRQ != nil {
		irq, ok := s.IRQs[event.IRQ.IRQ]
		if !ok {
			irq = &IRQStats{}
			s.IRQs[event.IRQ.IRQ] = irq
		}
		switch event.IRQ.Action {
		case log.IRQActionRaise:
			irq.Raised++
		case log.IRQActionCoalesce:
			irq.Raised++
			irq.Coalesced++
		case log.IRQActionDispatch:
			irq.Dispatched++
		}
	}

	if event.Error != nil {
		s.Errors++
	}
}

// RunStats analyzes the capture file and prints statistics.
func RunStats(path string, w io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open capture file: %w", err)
	}
	defer reader.Close()

	stats := newStats()
	if h, ok := reader.Header(); ok {
		stats.Header = &h
	}
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		stats.add(event)
	}

	printStats(w, stats)
	return nil
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== netstack Capture Statistics ===")
	fmt.Fprintln(w)

	if h := stats.Header; h != nil {
		fmt.Fprintf(w, "File:       version %d, created %s\n", h.Version, h.Created.Format(time.RFC3339))
		if h.StackID != "" {
			fmt.Fprintf(w, "Writer:     %s\n", h.StackID)
		}
		if h.SnapLen > 0 {
			fmt.Fprintf(w, "Snap Len:   %d bytes\n", h.SnapLen)
		}
		fmt.Fprintln(w)
	}

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Millisecond))
		fmt.Fprintf(w, "Stacks:     %d\n", len(stats.Stacks))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Layer:")
	for _, layer := range []log.Layer{log.LayerDevice, log.LayerDriver, log.LayerInterrupt} {
		if count := stats.EventsByLayer[layer]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", layer.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Category:")
	for _, cat := range []log.Category{log.CategoryFrame, log.CategoryState, log.CategoryIRQ, log.CategoryError} {
		if count := stats.EventsByCategory[cat]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", cat.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Frames by Direction:")
	for _, dir := range []log.Direction{log.DirectionIn, log.DirectionOut} {
		if count := stats.EventsByDirection[dir]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", dir.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Devices: %d\n", len(stats.Devices))
	names := make([]string, 0, len(stats.Devices))
	for name := range stats.Devices {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		d := stats.Devices[name]
		fmt.Fprintf(w, "  [%s] out %d frames (%d bytes), in %d frames (%d bytes)\n",
			name, d.FramesOut, d.BytesOut, d.FramesIn, d.BytesIn)
		if d.Truncated > 0 {
			fmt.Fprintf(w, "         Truncated: %d\n", d.Truncated)
		}
	}

	if len(stats.IRQs) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "IRQs: %d\n", len(stats.IRQs))
		irqs := make([]uint32, 0, len(stats.IRQs))
		for irq := range stats.IRQs {
			irqs = append(irqs, irq)
		}
		sort.Slice(irqs, func(i, j int) bool { return irqs[i] < irqs[j] })
		for _, irq := range irqs {
			s := stats.IRQs[irq]
			fmt.Fprintf(w, "  [%d] raised %d, coalesced %d, dispatched %d\n", irq, s.Raised, s.Coalesced, s.Dispatched)
		}
	}

	if stats.Errors > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Errors: %d\n", stats.Errors)
	}
}
