package log

import (
	"errors"
	"io"
	"os"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// Filter specifies criteria for filtering capture events.
// Empty/nil fields match all events for that criterion.
type Filter struct {
	// StackID filters by exact stack ID match.
	StackID string

	// Device filters by device name.
	Device string

	// Direction filters by frame direction.
	Direction *Direction

	// Layer filters by capture layer.
	Layer *Layer

	// Category filters by event category.
	Category *Category

	// TimeStart filters events at or after this time.
	TimeStart *time.Time

	// TimeEnd filters events before this time.
	TimeEnd *time.Time
}

// Matches returns true if the event matches all filter criteria.
func (f *Filter) Matches(event Event) bool {
	if f.StackID != "" && event.StackID != f.StackID {
		return false
	}
	if f.Device != "" && event.Device != f.Device {
		return false
	}
	if f.Direction != nil && event.Direction != *f.Direction {
		return false
	}
	if f.Layer != nil && event.Layer != *f.Layer {
		return false
	}
	if f.Category != nil && event.Category != *f.Category {
		return false
	}
	if f.TimeStart != nil && event.Timestamp.Before(*f.TimeStart) {
		return false
	}
	if f.TimeEnd != nil && !event.Timestamp.Before(*f.TimeEnd) {
		return false
	}
	return true
}

// Reader reads capture events from a CBOR-encoded file.
// It provides an iterator interface for streaming large files.
//
// The file header is consumed when the Reader is created. Files without a
// header are read from their first event, and headers of concatenated
// captures are skipped.
type Reader struct {
	file    *os.File
	decoder *cbor.Decoder
	filter  Filter

	header  *FileHeader
	pending cbor.RawMessage
}

// NewReader creates a Reader that reads all events from the specified file.
func NewReader(path string) (*Reader, error) {
	return NewFilteredReader(path, Filter{})
}

// NewFilteredReader creates a Reader that reads events matching the filter.
func NewFilteredReader(path string, filter Filter) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r := &Reader{
		file:    f,
		decoder: NewDecoder(f),
		filter:  filter,
	}
	if err := r.readHeader(); err != nil {
		f.Close()
		return nil, err
	}
	return r, nil
}

func (r *Reader) readHeader() error {
	var item cbor.RawMessage
	if err := r.decoder.Decode(&item); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	if !isFileHeader(item) {
		r.pending = item
		return nil
	}

	h, err := DecodeFileHeader(item)
	if err != nil {
		return err
	}
	r.header = &h
	return nil
}

// Header returns the file header, if the file has one.
func (r *Reader) Header() (FileHeader, bool) {
	if r.header == nil {
		return FileHeader{}, false
	}
	return *r.header, true
}

// Next returns the next event that matches the filter.
// Returns io.EOF when no more events are available.
func (r *Reader) Next() (Event, error) {
	for {
		item := r.pending
		r.pending = nil
		if item == nil {
			if err := r.decoder.Decode(&item); err != nil {
				if errors.Is(err, io.EOF) {
					return Event{}, io.EOF
				}
				return Event{}, err
			}
		}
		if isFileHeader(item) {
			continue
		}

		event, err := DecodeEvent(item)
		if err != nil {
			return Event{}, err
		}
		if r.filter.Matches(event) {
			return event, nil
		}
	}
}

// Close closes the underlying file.
func (r *Reader) Close() error {
	return r.file.Close()
}
