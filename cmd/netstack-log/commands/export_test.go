package commands

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/netstack-lab/netstack-go/pkg/log"
)

func testExportEvents() []log.Event {
	ts := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)
	return []log.Event{
		{Timestamp: ts, StackID: "s1", Device: "net0", Direction: log.DirectionOut, Category: log.CategoryFrame, Frame: log.NewFrameEvent(0x0800, []byte("hello"))},
		{Timestamp: ts, StackID: "s1", Layer: log.LayerInterrupt, Category: log.CategoryIRQ, IRQ: &log.IRQEvent{IRQ: 36, Action: log.IRQActionRaise}},
	}
}

func TestExportJSONL(t *testing.T) {
	path := createTestCaptureFile(t, testExportEvents())
	outPath := filepath.Join(t.TempDir(), "out.jsonl")

	if err := RunExport(path, "jsonl", outPath); err != nil {
		t.Fatalf("RunExport failed: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}

	var event log.Event
	if err := json.Unmarshal([]byte(lines[0]), &event); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if event.Device != "net0" {
		t.Errorf("expected net0, got %s", event.Device)
	}
	if event.Frame == nil || string(event.Frame.Data) != "hello" {
		t.Errorf("expected frame data hello, got %+v", event.Frame)
	}
}

func TestExportCSV(t *testing.T) {
	path := createTestCaptureFile(t, testExportEvents())
	outPath := filepath.Join(t.TempDir(), "out.csv")

	if err := RunExport(path, "csv", outPath); err != nil {
		t.Fatalf("RunExport failed: %v", err)
	}

	f, err := os.Open(outPath)
	if err != nil {
		t.Fatalf("failed to open output: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header and 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "timestamp" {
		t.Errorf("unexpected header: %v", rows[0])
	}
	if rows[1][6] != "frame" || rows[1][7] != "0x0800" || rows[1][8] != "5" {
		t.Errorf("unexpected frame row: %v", rows[1])
	}
	if rows[2][6] != "irq_RAISE" || rows[2][9] != "36" {
		t.Errorf("unexpected irq row: %v", rows[2])
	}
}

func TestExportUnknownFormat(t *testing.T) {
	path := createTestCaptureFile(t, nil)
	if err := RunExport(path, "xml", filepath.Join(t.TempDir(), "out")); err == nil {
		t.Error("expected error for unknown format")
	}
}
