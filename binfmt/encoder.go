package binfmt

import (
	"fmt"
	"io"

	"github.com/arloliu/textgrid/endian"
	"github.com/arloliu/textgrid/errs"
	"github.com/arloliu/textgrid/grid"
	"github.com/arloliu/textgrid/internal/pool"
)

// Encoder writes binary TextGrids to an io.Writer.
type Encoder struct {
	w      io.Writer
	engine endian.EndianEngine
}

// NewEncoder creates an encoder for w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w, engine: endian.GetLittleEndianEngine()}
}

// Encode writes doc.
//
// A string longer than MaxStringLen bytes fails with a *errs.ValidationError
// before anything is written. A failing writer yields an error matching
// errs.ErrIO.
func (e *Encoder) Encode(doc *grid.Document) error {
	buf := pool.GetDocumentBuffer()
	defer pool.PutDocumentBuffer(buf)

	if err := e.encode(buf, doc); err != nil {
		return err
	}

	if _, err := buf.WriteTo(e.w); err != nil {
		return errs.IO(err)
	}

	return nil
}

// Marshal encodes doc into a new byte slice.
func Marshal(doc *grid.Document) ([]byte, error) {
	buf := pool.GetDocumentBuffer()
	defer pool.PutDocumentBuffer(buf)

	e := Encoder{engine: endian.GetLittleEndianEngine()}
	if err := e.encode(buf, doc); err != nil {
		return nil, err
	}

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())

	return out, nil
}

func (e *Encoder) encode(buf *pool.ByteBuffer, doc *grid.Document) error {
	tiers := doc.Tiers()
	if err := checkStrings(tiers); err != nil {
		return err
	}

	b := buf.B
	b = append(b, Magic...)
	b = e.appendString(b, ObjectClass)
	b = endian.AppendFloat64(e.engine, b, doc.XMin())
	b = endian.AppendFloat64(e.engine, b, doc.XMax())
	b = e.engine.AppendUint32(b, uint32(len(tiers)))

	for _, t := range tiers {
		b = e.appendString(b, t.Kind.ClassName())
		b = e.appendString(b, t.Name)
		b = endian.AppendFloat64(e.engine, b, t.XMin)
		b = endian.AppendFloat64(e.engine, b, t.XMax)

		if t.Kind == grid.IntervalTier {
			b = e.engine.AppendUint32(b, uint32(len(t.Intervals)))
			for _, iv := range t.Intervals {
				b = endian.AppendFloat64(e.engine, b, iv.XMin)
				b = endian.AppendFloat64(e.engine, b, iv.XMax)
				b = e.appendString(b, iv.Text)
			}
			continue
		}

		b = e.engine.AppendUint32(b, uint32(len(t.Points)))
		for _, p := range t.Points {
			b = endian.AppendFloat64(e.engine, b, p.Time)
			b = e.appendString(b, p.Mark)
		}
	}
	buf.B = b

	return nil
}

func (e *Encoder) appendString(b []byte, s string) []byte {
	b = e.engine.AppendUint16(b, uint16(len(s)))
	return append(b, s...)
}

func checkStrings(tiers []grid.Tier) error {
	tooLong := func(tier string, index int, what string, s string) error {
		if len(s) <= MaxStringLen {
			return nil
		}

		return &errs.ValidationError{
			Tier:   tier,
			Index:  index,
			Reason: fmt.Sprintf("%s is %d bytes, binary strings are limited to %d", what, len(s), MaxStringLen),
		}
	}

	for _, t := range tiers {
		if err := tooLong(t.Name, -1, "tier name", t.Name); err != nil {
			return err
		}
		for i, iv := range t.Intervals {
			if err := tooLong(t.Name, i, "interval text", iv.Text); err != nil {
				return err
			}
		}
		for i, p := range t.Points {
			if err := tooLong(t.Name, i, "point mark", p.Mark); err != nil {
				return err
			}
		}
	}

	return nil
}
