package log

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// FileOption configures a FileLogger.
type FileOption func(*FileLogger)

// WithStackID records id in the header of a new capture file.
func WithStackID(id string) FileOption {
	return func(l *FileLogger) {
		l.stackID = id
	}
}

// WithSnapLen keeps at most n bytes of each frame. Frames cut here are
// marked truncated and keep their original Size. n <= 0 disables the limit.
func WithSnapLen(n int) FileOption {
	return func(l *FileLogger) {
		if n > 0 {
			l.snapLen = n
		}
	}
}

// FileLogger appends capture events to a file.
//
// A new file starts with a FileHeader. Reopening an existing file appends
// events after whatever it already holds; its header is left as is.
type FileLogger struct {
	mu      sync.Mutex
	file    *os.File
	encoder *cbor.Encoder
	closed  bool

	stackID string
	snapLen int
}

// NewFileLogger opens path for appending, creating it with mode 0644 and
// writing the file header if it is new or empty.
func NewFileLogger(path string, opts ...FileOption) (*FileLogger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}

	l := &FileLogger{
		file:    f,
		encoder: NewEncoder(f),
	}
	for _, opt := range opts {
		opt(l)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.Size() == 0 {
		if err := l.writeHeader(); err != nil {
			f.Close()
			return nil, fmt.Errorf("write capture header: %w", err)
		}
	}
	return l, nil
}

func (l *FileLogger) writeHeader() error {
	data, err := EncodeFileHeader(FileHeader{
		Version: FileVersion,
		StackID: l.stackID,
		Created: time.Now(),
		SnapLen: l.snapLen,
	})
	if err != nil {
		return err
	}
	_, err = l.file.Write(data)
	return err
}

// Log writes an event to the capture file, applying the snap length to
// frame data. The caller's event is not modified.
func (l *FileLogger) Log(event Event) {
	if l.snapLen > 0 && event.Frame != nil && len(event.Frame.Data) > l.snapLen {
		frame := *event.Frame
		frame.Data = frame.Data[:l.snapLen]
		frame.Truncated = true
		event.Frame = &frame
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}

	// Capture must not disrupt the data path.
	_ = l.encoder.Encode(event)
}

// Close closes the file. Further calls to Close or Log do nothing.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}

	l.closed = true
	return l.file.Close()
}

var _ Logger = (*FileLogger)(nil)
