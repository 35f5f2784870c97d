package pack

import (
	"fmt"

	"github.com/arloliu/textgrid/endian"
	"github.com/arloliu/textgrid/errs"
	"github.com/arloliu/textgrid/format"
)

const (
	// Magic opens every pack.
	Magic = "ooTGPack"
	// Version is the only envelope version this package writes and reads.
	Version uint8 = 1
	// HeaderSize is the fixed size of the envelope header in bytes.
	HeaderSize = 24
)

// Header is the fixed envelope in front of the compressed payload.
//
//	offset 0-7    "ooTGPack"
//	offset 8      version
//	offset 9      payload format
//	offset 10     compression type
//	offset 11     reserved, zero
//	offset 12-15  u32 raw payload size
//	offset 16-23  u64 xxHash64 of the raw payload
//
// Multi-byte fields are little-endian.
type Header struct {
	Version     uint8
	Format      format.Format
	Compression format.CompressionType
	RawSize     uint32
	Checksum    uint64
}

// Parse parses the header from a byte slice.
//
// Parameters:
//   - data: Byte slice holding at least HeaderSize bytes
//
// Returns:
//   - error: *errs.MalformedError for a short slice, bad magic, unknown
//     version or payload format; errs.ErrUnsupportedCompression for an
//     unknown compression type
func (h *Header) Parse(data []byte) error {
	if len(data) < HeaderSize {
		return &errs.MalformedError{
			Offset:   len(data),
			Expected: "pack header",
			Reason:   fmt.Sprintf("truncated: need %d bytes, have %d", HeaderSize, len(data)),
		}
	}
	if string(data[:len(Magic)]) != Magic {
		return &errs.MalformedError{Offset: 0, Expected: Magic, Reason: "bad magic"}
	}

	engine := endian.GetLittleEndianEngine()

	h.Version = data[8]
	h.Format = format.Format(data[9])
	h.Compression = format.CompressionType(data[10])
	h.RawSize = engine.Uint32(data[12:16])
	h.Checksum = engine.Uint64(data[16:24])

	return h.validate()
}

func (h *Header) validate() error {
	if h.Version != Version {
		return &errs.MalformedError{Offset: 8, Expected: fmt.Sprintf("version %d", Version), Reason: fmt.Sprintf("unknown version %d", h.Version)}
	}
	if !h.Format.IsValid() {
		return &errs.MalformedError{Offset: 9, Expected: "payload format", Reason: fmt.Sprintf("unknown payload format %d", h.Format)}
	}
	if h.Compression < format.CompressionNone || h.Compression > format.CompressionXZ {
		return fmt.Errorf("%w: compression type %d", errs.ErrUnsupportedCompression, h.Compression)
	}

	return nil
}

// Bytes serializes the header.
func (h *Header) Bytes() []byte {
	return h.appendTo(make([]byte, 0, HeaderSize))
}

func (h *Header) appendTo(b []byte) []byte {
	engine := endian.GetLittleEndianEngine()

	b = append(b, Magic...)
	b = append(b, h.Version, byte(h.Format), byte(h.Compression), 0)
	b = engine.AppendUint32(b, h.RawSize)
	b = engine.AppendUint64(b, h.Checksum)

	return b
}

// ParseHeader parses a Header from the front of data.
func ParseHeader(data []byte) (Header, error) {
	var h Header
	if err := h.Parse(data); err != nil {
		return Header{}, err
	}

	return h, nil
}
