// Package pack wraps an encoded TextGrid in a small checksummed envelope and
// compresses the payload.
//
// A pack is a Header followed by the compressed payload. The payload is the
// document in one of the three TextGrid formats, so unpacking yields exactly
// the bytes a plain writer would have produced:
//
//	data, err := pack.Encode(doc, pack.WithCompression(format.CompressionZstd))
//	...
//	doc, err := pack.Decode(data)
//
// The checksum covers the uncompressed payload; a mismatch is reported as
// errs.ErrChecksumMismatch.
package pack

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/arloliu/textgrid/binfmt"
	"github.com/arloliu/textgrid/compress"
	"github.com/arloliu/textgrid/errs"
	"github.com/arloliu/textgrid/format"
	"github.com/arloliu/textgrid/grid"
	"github.com/arloliu/textgrid/internal/hash"
	"github.com/arloliu/textgrid/internal/options"
	"github.com/arloliu/textgrid/internal/pool"
	"github.com/arloliu/textgrid/textfmt"
)

// Defaults used when no option overrides them.
const (
	DefaultFormat      = format.FormatBinary
	DefaultCompression = format.CompressionZstd
)

type config struct {
	format      format.Format
	compression format.CompressionType
}

// Option configures Encode.
type Option = options.Option[*config]

// WithCompression selects the payload compression.
func WithCompression(ct format.CompressionType) Option {
	return options.New(func(c *config) error {
		if _, err := compress.GetCodec(ct); err != nil {
			return err
		}
		c.compression = ct

		return nil
	})
}

// WithPayloadFormat selects the format the document is encoded in before
// compression.
func WithPayloadFormat(f format.Format) Option {
	return options.New(func(c *config) error {
		if !f.IsValid() {
			return fmt.Errorf("%w: payload format %d", errs.ErrInvalidRange, f)
		}
		c.format = f

		return nil
	})
}

// IsPacked reports whether data starts with the pack magic.
func IsPacked(data []byte) bool {
	return bytes.HasPrefix(data, []byte(Magic))
}

// Encode encodes doc, compresses the payload and prepends the header.
//
// Parameters:
//   - doc: Document to pack; it is encoded as is, without validation
//   - opts: WithCompression, WithPayloadFormat
//
// Returns:
//   - []byte: Packed bytes
//   - error: Option errors, payload encoding errors, or compression errors
func Encode(doc *grid.Document, opts ...Option) ([]byte, error) {
	data, _, err := encode(doc, opts...)
	return data, err
}

// EncodeStats is Encode that also reports the compression sizes.
func EncodeStats(doc *grid.Document, opts ...Option) ([]byte, compress.Stats, error) {
	return encode(doc, opts...)
}

// WriteTo packs doc and writes the result to w. Write failures match errs.ErrIO.
func WriteTo(w io.Writer, doc *grid.Document, opts ...Option) error {
	data, err := Encode(doc, opts...)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return errs.IO(err)
	}

	return nil
}

func encode(doc *grid.Document, opts ...Option) ([]byte, compress.Stats, error) {
	cfg := &config{format: DefaultFormat, compression: DefaultCompression}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, compress.Stats{}, err
	}

	payload, err := marshalPayload(doc, cfg.format)
	if err != nil {
		return nil, compress.Stats{}, err
	}
	if uint64(len(payload)) > math.MaxUint32 {
		return nil, compress.Stats{}, fmt.Errorf("%w: payload of %d bytes exceeds the pack limit", errs.ErrInvalidRange, len(payload))
	}

	compressed, stats, err := compress.Measure(cfg.compression, payload)
	if err != nil {
		return nil, compress.Stats{}, err
	}

	h := Header{
		Version:     Version,
		Format:      cfg.format,
		Compression: cfg.compression,
		RawSize:     uint32(len(payload)),
		Checksum:    hash.Sum64(payload),
	}

	buf := pool.GetDocumentBuffer()
	defer pool.PutDocumentBuffer(buf)

	buf.B = h.appendTo(buf.B)
	buf.B = append(buf.B, compressed...)

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())

	return out, stats, nil
}

func marshalPayload(doc *grid.Document, f format.Format) ([]byte, error) {
	if f == format.FormatBinary {
		return binfmt.Marshal(doc)
	}

	return textfmt.Marshal(doc, f)
}

// Unpack checks the envelope and returns the header and the raw payload.
func Unpack(data []byte) (Header, []byte, error) {
	h, err := ParseHeader(data)
	if err != nil {
		return Header{}, nil, err
	}

	codec, err := compress.GetCodec(h.Compression)
	if err != nil {
		return Header{}, nil, err
	}

	if uint64(h.RawSize) > math.MaxInt {
		return Header{}, nil, &errs.MalformedError{Offset: 12, Expected: "payload size", Reason: fmt.Sprintf("%d bytes do not fit in memory", h.RawSize)}
	}

	// the header size bounds decompression so a small pack cannot expand without limit
	payload, err := codec.DecompressLimit(data[HeaderSize:], int(h.RawSize))
	if err != nil {
		return Header{}, nil, &errs.MalformedError{Offset: HeaderSize, Expected: h.Compression.String() + " payload", Reason: err.Error()}
	}
	if len(payload) != int(h.RawSize) {
		return Header{}, nil, &errs.MalformedError{
			Offset:   HeaderSize,
			Expected: "payload size",
			Reason:   fmt.Sprintf("payload is %d bytes, header says %d", len(payload), h.RawSize),
		}
	}
	if sum := hash.Sum64(payload); sum != h.Checksum {
		return Header{}, nil, fmt.Errorf("%w: payload hash %016x, header says %016x", errs.ErrChecksumMismatch, sum, h.Checksum)
	}

	return h, payload, nil
}

// Decode unpacks data and decodes the payload. opts are passed to grid.New.
// The result is not validated.
func Decode(data []byte, opts ...grid.Option) (*grid.Document, error) {
	h, payload, err := Unpack(data)
	if err != nil {
		return nil, err
	}

	if h.Format == format.FormatBinary {
		return binfmt.Unmarshal(payload, opts...)
	}

	dec, err := textfmt.NewDecoder(payload)
	if err != nil {
		return nil, err
	}
	if dec.Format() != h.Format {
		return nil, &errs.MalformedError{
			Offset:   HeaderSize,
			Expected: h.Format.String() + " payload",
			Reason:   fmt.Sprintf("payload is %s text", dec.Format()),
		}
	}

	return dec.Decode(opts...)
}
