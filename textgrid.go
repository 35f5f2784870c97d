// Package textgrid reads, writes and validates Praat TextGrid annotations.
//
// A TextGrid is a time-aligned annotation: a document span holding named
// tiers of labeled intervals or point marks. This package offers top-level
// wrappers over the subpackages for the common cases:
//
//   - grid: the document model, validator and undo/redo edit engine
//   - textfmt: the long and short text formats
//   - binfmt: the binary format
//   - pack: a compressed, checksummed envelope around any of the three
//   - store: a SQLite archive of packed documents
//
// # Basic Usage
//
// Reading any supported input and writing it back as short text:
//
//	doc, err := textgrid.Read(data)
//	if err != nil {
//	    return err
//	}
//	_ = doc.RenameTier("words", "orthography")
//	out, err := textgrid.Write(doc, format.FormatShort)
//
// Read detects the encoding from the first bytes and validates the result;
// Write validates before encoding. WithValidation(false) skips both checks.
package textgrid

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/arloliu/textgrid/binfmt"
	"github.com/arloliu/textgrid/errs"
	"github.com/arloliu/textgrid/format"
	"github.com/arloliu/textgrid/grid"
	"github.com/arloliu/textgrid/internal/options"
	"github.com/arloliu/textgrid/pack"
	"github.com/arloliu/textgrid/textfmt"
)

type config struct {
	validate bool
	gridOpts []grid.Option
	packOpts []pack.Option
}

// Option configures Read, Write and Pack.
type Option = options.Option[*config]

func newConfig(opts []Option) (*config, error) {
	cfg := &config{validate: true}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// WithValidation turns document validation on reads and writes on or off.
// It is on by default.
func WithValidation(enabled bool) Option {
	return options.NoError(func(c *config) {
		c.validate = enabled
	})
}

// WithDocumentOptions passes opts to grid.New for every document Read builds.
func WithDocumentOptions(opts ...grid.Option) Option {
	return options.NoError(func(c *config) {
		c.gridOpts = append(c.gridOpts, opts...)
	})
}

// WithPackOptions passes opts to pack.Encode.
func WithPackOptions(opts ...pack.Option) Option {
	return options.NoError(func(c *config) {
		c.packOpts = append(c.packOpts, opts...)
	})
}

// Detection describes the encoding of an input.
type Detection struct {
	// Format is the TextGrid format, of the payload for packed input.
	Format format.Format
	// Packed reports a pack envelope around the payload.
	Packed bool
	// Compression is the pack compression; CompressionNone for plain input.
	Compression format.CompressionType
}

func (d Detection) String() string {
	if d.Packed {
		return fmt.Sprintf("%s (packed, %s)", d.Format, d.Compression)
	}

	return d.Format.String()
}

// Detect inspects the header of data without decoding the document.
//
// Returns:
//   - Detection: Format, and the envelope when the input is packed
//   - error: *errs.MalformedError when no known header is found
func Detect(data []byte) (Detection, error) {
	switch {
	case pack.IsPacked(data):
		h, err := pack.ParseHeader(data)
		if err != nil {
			return Detection{}, err
		}

		return Detection{Format: h.Format, Packed: true, Compression: h.Compression}, nil
	case binfmt.IsBinary(data):
		return Detection{Format: format.FormatBinary, Compression: format.CompressionNone}, nil
	}

	dec, err := textfmt.NewDecoder(data)
	if err != nil {
		return Detection{}, err
	}

	return Detection{Format: dec.Format(), Compression: format.CompressionNone}, nil
}

// Read decodes data in whichever supported encoding it is in and validates
// the result.
//
// Parameters:
//   - data: Long or short text, binary, or packed input
//   - opts: WithValidation, WithDocumentOptions
//
// Returns:
//   - *grid.Document: Decoded document with an empty history
//   - error: *errs.MalformedError, *errs.ValidationError, or pack errors
func Read(data []byte, opts ...Option) (*grid.Document, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	var doc *grid.Document
	switch {
	case pack.IsPacked(data):
		doc, err = pack.Decode(data, cfg.gridOpts...)
	case binfmt.IsBinary(data):
		doc, err = binfmt.Unmarshal(data, cfg.gridOpts...)
	default:
		doc, err = textfmt.Unmarshal(data, cfg.gridOpts...)
	}
	if err != nil {
		return nil, err
	}

	if cfg.validate {
		if err := grid.Validate(doc); err != nil {
			return nil, err
		}
	}

	return doc, nil
}

// ReadFrom reads r to the end and decodes it with Read. Read failures match
// errs.ErrIO.
func ReadFrom(r io.Reader, opts ...Option) (*grid.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errs.IO(err)
	}

	return Read(data, opts...)
}

// Unpack is Read restricted to packed input.
func Unpack(data []byte, opts ...Option) (*grid.Document, error) {
	if !pack.IsPacked(data) {
		return nil, &errs.MalformedError{Offset: 0, Expected: pack.Magic, Reason: "not a pack"}
	}

	return Read(data, opts...)
}

// Write validates doc and encodes it in format f.
func Write(doc *grid.Document, f format.Format, opts ...Option) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteTo(&buf, doc, f, opts...); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// WriteTo validates doc and writes it to w in format f. Write failures match
// errs.ErrIO.
func WriteTo(w io.Writer, doc *grid.Document, f format.Format, opts ...Option) error {
	cfg, err := newConfig(opts)
	if err != nil {
		return err
	}
	if cfg.validate {
		if err := grid.Validate(doc); err != nil {
			return err
		}
	}

	switch {
	case f == format.FormatBinary:
		return binfmt.NewEncoder(w).Encode(doc)
	case f.IsText():
		enc, err := textfmt.NewEncoder(w, f)
		if err != nil {
			return err
		}

		return enc.Encode(doc)
	default:
		return fmt.Errorf("%w: format %d", errs.ErrInvalidRange, f)
	}
}

// Pack validates doc and wraps it in a pack envelope. Use WithPackOptions to
// pick the payload format and compression.
func Pack(doc *grid.Document, opts ...Option) ([]byte, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	if cfg.validate {
		if err := grid.Validate(doc); err != nil {
			return nil, err
		}
	}

	return pack.Encode(doc, cfg.packOpts...)
}

// Validate checks every document invariant. See grid.Validate.
func Validate(doc *grid.Document) error {
	return grid.Validate(doc)
}

// File extensions recognized by DetectPath.
const (
	ExtText   = ".TextGrid"
	ExtBinary = ".TextGridBin"
	ExtPack   = ".tgpack"
)

// DetectPath maps a file name to the encoding its extension implies.
// Extensions compare case-insensitively. Text files report FormatLong, the
// format Write uses for them by default.
func DetectPath(path string) (Detection, bool) {
	switch ext := filepath.Ext(path); {
	case strings.EqualFold(ext, ExtText):
		return Detection{Format: format.FormatLong, Compression: format.CompressionNone}, true
	case strings.EqualFold(ext, ExtBinary):
		return Detection{Format: format.FormatBinary, Compression: format.CompressionNone}, true
	case strings.EqualFold(ext, ExtPack):
		return Detection{Format: pack.DefaultFormat, Packed: true, Compression: pack.DefaultCompression}, true
	default:
		return Detection{}, false
	}
}
