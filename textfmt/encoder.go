package textfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/arloliu/textgrid/errs"
	"github.com/arloliu/textgrid/format"
	"github.com/arloliu/textgrid/grid"
	"github.com/arloliu/textgrid/internal/pool"
)

// Encoder writes a TextGrid in long or short text format.
//
// Counts and 1-based item indices are derived from the document. Numbers use
// the shortest decimal form that parses back to the same float64, so a
// document survives an encode and decode unchanged.
type Encoder struct {
	w      io.Writer
	format format.Format
}

// NewEncoder creates an encoder for w. f must be format.FormatLong or
// format.FormatShort.
func NewEncoder(w io.Writer, f format.Format) (*Encoder, error) {
	if !f.IsText() {
		return nil, fmt.Errorf("textfmt: %s is not a text format", f)
	}

	return &Encoder{w: w, format: f}, nil
}

// Encode writes doc. It does not validate; see grid.Validate.
// A failing writer yields an error matching errs.ErrIO.
func (e *Encoder) Encode(doc *grid.Document) error {
	buf := pool.GetDocumentBuffer()
	defer pool.PutDocumentBuffer(buf)

	lw := lineWriter{buf: buf}
	lw.line(HeaderFileType)
	lw.line(HeaderObjectClass)
	lw.line("")

	if e.format == format.FormatLong {
		writeLong(&lw, doc)
	} else {
		writeShort(&lw, doc)
	}

	if _, err := buf.WriteTo(e.w); err != nil {
		return errs.IO(err)
	}

	return nil
}

// Marshal encodes doc in format f.
func Marshal(doc *grid.Document, f format.Format) ([]byte, error) {
	var sb strings.Builder
	enc, err := NewEncoder(&sb, f)
	if err != nil {
		return nil, err
	}
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}

	return []byte(sb.String()), nil
}

func writeLong(lw *lineWriter, doc *grid.Document) {
	lw.number("xmin = ", doc.XMin())
	lw.number("xmax = ", doc.XMax())
	lw.line("tiers? <exists>")
	lw.count("size = ", doc.NumTiers())
	lw.line("item []:")

	for i, t := range doc.Tiers() {
		lw.indent = 1
		lw.index("item [", i+1)
		lw.indent = 2
		lw.quoted("class = ", t.Kind.ClassName())
		lw.quoted("name = ", t.Name)
		lw.number("xmin = ", t.XMin)
		lw.number("xmax = ", t.XMax)

		if t.Kind == grid.IntervalTier {
			lw.count("intervals: size = ", len(t.Intervals))
			for j, iv := range t.Intervals {
				lw.indent = 2
				lw.index("intervals [", j+1)
				lw.indent = 3
				lw.number("xmin = ", iv.XMin)
				lw.number("xmax = ", iv.XMax)
				lw.quoted("text = ", iv.Text)
			}
		} else {
			lw.count("points: size = ", len(t.Points))
			for j, p := range t.Points {
				lw.indent = 2
				lw.index("points [", j+1)
				lw.indent = 3
				lw.number("number = ", p.Time)
				lw.quoted("mark = ", p.Mark)
			}
		}
	}
	lw.indent = 0
}

func writeShort(lw *lineWriter, doc *grid.Document) {
	lw.number("", doc.XMin())
	lw.number("", doc.XMax())
	lw.line("<exists>")
	lw.count("", doc.NumTiers())

	for _, t := range doc.Tiers() {
		lw.quoted("", t.Kind.ClassName())
		lw.quoted("", t.Name)
		lw.number("", t.XMin)
		lw.number("", t.XMax)

		if t.Kind == grid.IntervalTier {
			lw.count("", len(t.Intervals))
			for _, iv := range t.Intervals {
				lw.number("", iv.XMin)
				lw.number("", iv.XMax)
				lw.quoted("", iv.Text)
			}
		} else {
			lw.count("", len(t.Points))
			for _, p := range t.Points {
				lw.number("", p.Time)
				lw.quoted("", p.Mark)
			}
		}
	}
}

// lineWriter appends indented lines to a pooled buffer.
type lineWriter struct {
	buf    *pool.ByteBuffer
	indent int
}

const indentUnit = "    "

func (lw *lineWriter) begin(prefix string) {
	for range lw.indent {
		lw.buf.B = append(lw.buf.B, indentUnit...)
	}
	lw.buf.B = append(lw.buf.B, prefix...)
}

func (lw *lineWriter) end() {
	lw.buf.B = append(lw.buf.B, '\n')
}

func (lw *lineWriter) line(s string) {
	if s == "" {
		lw.end()
		return
	}
	lw.begin(s)
	lw.end()
}

func (lw *lineWriter) number(prefix string, v float64) {
	lw.begin(prefix)
	lw.buf.B = strconv.AppendFloat(lw.buf.B, v, 'f', -1, 64)
	lw.end()
}

func (lw *lineWriter) count(prefix string, n int) {
	lw.begin(prefix)
	lw.buf.B = strconv.AppendInt(lw.buf.B, int64(n), 10)
	lw.end()
}

// index writes a block marker such as "item [3]:".
func (lw *lineWriter) index(prefix string, n int) {
	lw.begin(prefix)
	lw.buf.B = strconv.AppendInt(lw.buf.B, int64(n), 10)
	lw.buf.B = append(lw.buf.B, "]:"...)
	lw.end()
}

func (lw *lineWriter) quoted(prefix, s string) {
	lw.begin(prefix)
	lw.buf.B = append(lw.buf.B, '"')
	lw.buf.B = append(lw.buf.B, strings.ReplaceAll(s, `"`, `""`)...)
	lw.buf.B = append(lw.buf.B, '"')
	lw.end()
}
