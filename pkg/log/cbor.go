package log

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// FileVersion is the capture file format written by FileLogger.
const FileVersion = 1

// headerTag marks the FileHeader item. Its four bytes read "NSTK" in a
// hex dump of the file.
const headerTag = 0x4e53544b

// headerPrefix is the encoded head of a headerTag item.
var headerPrefix = []byte{0xda, 0x4e, 0x53, 0x54, 0x4b}

// Capture file errors.
var (
	ErrNotFileHeader      = errors.New("not a capture file header")
	ErrUnsupportedVersion = errors.New("unsupported capture file version")
)

// FileHeader is the first item of a capture file. Events follow it as a
// plain CBOR sequence.
type FileHeader struct {
	// Version is the format version, currently FileVersion.
	Version uint8 `cbor:"1,keyasint"`

	// StackID is the stack that created the file (may be empty).
	StackID string `cbor:"2,keyasint,omitempty"`

	// Created is when the file was started.
	Created time.Time `cbor:"3,keyasint"`

	// SnapLen is the per-frame data limit applied by the writer.
	// Zero means frames are kept up to MaxFrameDataSize.
	SnapLen int `cbor:"4,keyasint,omitempty"`
}

var (
	logEncMode cbor.EncMode
	logDecMode cbor.DecMode
)

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeRFC3339Nano,
	}
	logEncMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("capture: CBOR encoder mode: %v", err))
	}

	decOpts := cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyQuiet,
		IndefLength:       cbor.IndefLengthAllowed,
		ExtraReturnErrors: cbor.ExtraDecErrorNone,
	}
	logDecMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("capture: CBOR decoder mode: %v", err))
	}
}

// EncodeEvent encodes an Event to CBOR bytes.
func EncodeEvent(event Event) ([]byte, error) {
	return logEncMode.Marshal(event)
}

// DecodeEvent decodes CBOR bytes into an Event.
func DecodeEvent(data []byte) (Event, error) {
	var event Event
	if err := logDecMode.Unmarshal(data, &event); err != nil {
		return Event{}, err
	}
	return event, nil
}

// EncodeFileHeader encodes h as a tagged CBOR item.
func EncodeFileHeader(h FileHeader) ([]byte, error) {
	return logEncMode.Marshal(cbor.Tag{Number: headerTag, Content: h})
}

// DecodeFileHeader decodes an item produced by EncodeFileHeader.
func DecodeFileHeader(data []byte) (FileHeader, error) {
	var tag cbor.RawTag
	if err := logDecMode.Unmarshal(data, &tag); err != nil {
		return FileHeader{}, fmt.Errorf("%w: %w", ErrNotFileHeader, err)
	}
	if tag.Number != headerTag {
		return FileHeader{}, fmt.Errorf("%w: tag %d", ErrNotFileHeader, tag.Number)
	}

	var h FileHeader
	if err := logDecMode.Unmarshal(tag.Content, &h); err != nil {
		return FileHeader{}, fmt.Errorf("%w: %w", ErrNotFileHeader, err)
	}
	if h.Version == 0 || h.Version > FileVersion {
		return FileHeader{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}
	return h, nil
}

func isFileHeader(item []byte) bool {
	return bytes.HasPrefix(item, headerPrefix)
}

// NewEncoder creates a CBOR encoder for capture events that writes to w.
func NewEncoder(w io.Writer) *cbor.Encoder {
	return logEncMode.NewEncoder(w)
}

// NewDecoder creates a CBOR decoder for capture events that reads from r.
func NewDecoder(r io.Reader) *cbor.Decoder {
	return logDecMode.NewDecoder(r)
}
