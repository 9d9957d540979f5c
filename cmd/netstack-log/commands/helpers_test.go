package commands

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/netstack-lab/netstack-go/pkg/log"
)

// createTestCaptureFile writes events to a temporary capture file.
func createTestCaptureFile(t *testing.T, events []log.Event, opts ...log.FileOption) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.cbor")
	logger, err := log.NewFileLogger(path, opts...)
	if err != nil {
		t.Fatalf("failed to create capture file: %v", err)
	}
	for _, e := range events {
		logger.Log(e)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("failed to close capture file: %v", err)
	}
	return path
}

// readCaptureFile returns every event in path.
func readCaptureFile(t *testing.T, path string) []log.Event {
	t.Helper()

	reader, err := log.NewReader(path)
	if err != nil {
		t.Fatalf("failed to open capture file: %v", err)
	}
	defer reader.Close()

	var events []log.Event
	for {
		event, err := reader.Next()
		if err == io.EOF {
			return events
		}
		if err != nil {
			t.Fatalf("failed to read event: %v", err)
		}
		events = append(events, event)
	}
}
