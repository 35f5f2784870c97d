package binfmt

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"github.com/arloliu/textgrid/endian"
	"github.com/arloliu/textgrid/errs"
	"github.com/arloliu/textgrid/grid"
)

// reader consumes a byte slice front to back. Every accessor checks that
// enough bytes remain.
type reader struct {
	data   []byte
	off    int
	engine endian.EndianEngine
}

func (r *reader) malformed(expected, reason string) error {
	return &errs.MalformedError{Offset: r.off, Expected: expected, Reason: reason}
}

func (r *reader) take(n int, what string) ([]byte, error) {
	if n < 0 || len(r.data)-r.off < n {
		return nil, r.malformed(what, fmt.Sprintf("truncated: need %d bytes, have %d", n, len(r.data)-r.off))
	}

	b := r.data[r.off : r.off+n]
	r.off += n

	return b, nil
}

func (r *reader) u16(what string) (uint16, error) {
	b, err := r.take(sizeU16, what)
	if err != nil {
		return 0, err
	}

	return r.engine.Uint16(b), nil
}

func (r *reader) u32(what string) (uint32, error) {
	b, err := r.take(sizeU32, what)
	if err != nil {
		return 0, err
	}

	return r.engine.Uint32(b), nil
}

func (r *reader) f64(what string) (float64, error) {
	b, err := r.take(sizeF64, what)
	if err != nil {
		return 0, err
	}

	return endian.Float64(r.engine, b), nil
}

func (r *reader) str(what string) (string, error) {
	n, err := r.u16(what + " length")
	if err != nil {
		return "", err
	}

	start := r.off
	b, err := r.take(int(n), what)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", &errs.MalformedError{Offset: start, Expected: what, Reason: "invalid UTF-8"}
	}

	return string(b), nil
}

// count reads an element count and rejects counts the remaining input cannot
// hold at minSize bytes per element.
func (r *reader) count(what string, minSize int) (int, error) {
	start := r.off
	n, err := r.u32(what)
	if err != nil {
		return 0, err
	}

	if int64(n)*int64(minSize) > int64(len(r.data)-r.off) {
		return 0, &errs.MalformedError{
			Offset:   start,
			Expected: what,
			Reason:   fmt.Sprintf("truncated: %d elements cannot fit in %d bytes", n, len(r.data)-r.off),
		}
	}

	return int(n), nil
}

// IsBinary reports whether data starts with the binary magic.
func IsBinary(data []byte) bool {
	return bytes.HasPrefix(data, []byte(Magic))
}

// Unmarshal decodes a binary TextGrid. opts are passed to grid.New.
//
// The result is not validated. Structural errors are *errs.MalformedError
// values carrying the byte offset; a document span with xmin >= xmax is a
// *errs.ValidationError.
func Unmarshal(data []byte, opts ...grid.Option) (*grid.Document, error) {
	r := &reader{data: data, engine: endian.GetLittleEndianEngine()}

	magic, err := r.take(len(Magic), "magic")
	if err != nil {
		return nil, err
	}
	if string(magic) != Magic {
		return nil, &errs.MalformedError{Offset: 0, Expected: Magic, Reason: "bad magic"}
	}

	start := r.off
	class, err := r.str("object class")
	if err != nil {
		return nil, err
	}
	if class != ObjectClass {
		return nil, &errs.MalformedError{Offset: start, Expected: ObjectClass, Reason: fmt.Sprintf("object class %q", class)}
	}

	xmin, err := r.f64("xmin")
	if err != nil {
		return nil, err
	}
	xmax, err := r.f64("xmax")
	if err != nil {
		return nil, err
	}

	// a tier needs at least two empty strings, two floats and a count
	numTiers, err := r.count("tier count", 2*sizeU16+2*sizeF64+sizeU32)
	if err != nil {
		return nil, err
	}

	tiers := make([]grid.Tier, 0, numTiers)
	for range numTiers {
		tier, err := r.tier()
		if err != nil {
			return nil, err
		}
		tiers = append(tiers, tier)
	}

	if r.off != len(r.data) {
		return nil, r.malformed("end of input", fmt.Sprintf("%d trailing bytes", len(r.data)-r.off))
	}

	if !(xmin < xmax) {
		return nil, &errs.ValidationError{Index: -1, Reason: "document xmin must be less than xmax"}
	}

	return grid.New(xmin, xmax, append([]grid.Option{grid.WithTiers(tiers...)}, opts...)...)
}

func (r *reader) tier() (grid.Tier, error) {
	start := r.off
	class, err := r.str("tier class")
	if err != nil {
		return grid.Tier{}, err
	}
	kind, ok := grid.ParseClassName(class)
	if !ok {
		return grid.Tier{}, &errs.MalformedError{
			Offset:   start,
			Expected: grid.ClassIntervalTier + " or " + grid.ClassTextTier,
			Reason:   fmt.Sprintf("unknown tier class %q", class),
		}
	}

	tier := grid.Tier{Kind: kind}
	if tier.Name, err = r.str("tier name"); err != nil {
		return grid.Tier{}, err
	}
	if tier.XMin, err = r.f64("tier xmin"); err != nil {
		return grid.Tier{}, err
	}
	if tier.XMax, err = r.f64("tier xmax"); err != nil {
		return grid.Tier{}, err
	}

	if kind == grid.IntervalTier {
		n, err := r.count("interval count", minIntervalSize)
		if err != nil {
			return grid.Tier{}, err
		}
		tier.Intervals = make([]grid.Interval, n)
		for i := range tier.Intervals {
			iv := &tier.Intervals[i]
			if iv.XMin, err = r.f64("interval xmin"); err != nil {
				return grid.Tier{}, err
			}
			if iv.XMax, err = r.f64("interval xmax"); err != nil {
				return grid.Tier{}, err
			}
			if iv.Text, err = r.str("interval text"); err != nil {
				return grid.Tier{}, err
			}
		}

		return tier, nil
	}

	n, err := r.count("point count", minPointSize)
	if err != nil {
		return grid.Tier{}, err
	}
	tier.Points = make([]grid.Point, n)
	for i := range tier.Points {
		p := &tier.Points[i]
		if p.Time, err = r.f64("point time"); err != nil {
			return grid.Tier{}, err
		}
		if p.Mark, err = r.str("point mark"); err != nil {
			return grid.Tier{}, err
		}
	}

	return tier, nil
}
