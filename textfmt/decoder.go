package textfmt

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"

	"github.com/arloliu/textgrid/errs"
	"github.com/arloliu/textgrid/format"
	"github.com/arloliu/textgrid/grid"
)

// Header lines shared by both text formats.
const (
	HeaderFileType    = `File type = "ooTextFile"`
	HeaderObjectClass = `Object class = "TextGrid"`
)

const utf8BOM = "\xef\xbb\xbf"

// Decoder reads a TextGrid in long or short text format.
//
// The format is chosen once by NewDecoder: after the two header lines the long
// format starts with an "xmin = " line, anything else is read as short.
type Decoder struct {
	sc     *lineScanner
	format format.Format
}

// NewDecoder checks the header of data and detects its text format.
//
// The input must be UTF-8, or UTF-16 with a byte order mark as Praat writes
// for non-ASCII text. A UTF-8 byte order mark and CRLF line endings are
// accepted. Blank lines between fields are skipped.
func NewDecoder(data []byte) (*Decoder, error) {
	if isUTF16(data) {
		decoded, err := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder().Bytes(data)
		if err != nil {
			return nil, &errs.MalformedError{Reason: "invalid UTF-16: " + err.Error()}
		}
		data = decoded
	}
	if !utf8.Valid(data) {
		return nil, &errs.MalformedError{Reason: "input is not valid UTF-8"}
	}

	text := strings.TrimPrefix(string(data), utf8BOM)
	sc := newLineScanner(text)
	if err := sc.expectLine(HeaderFileType); err != nil {
		return nil, err
	}
	if err := sc.expectLine(HeaderObjectClass); err != nil {
		return nil, err
	}

	f := format.FormatShort
	if line, _, ok := sc.peek(); ok && strings.HasPrefix(line, "xmin = ") {
		f = format.FormatLong
	}

	return &Decoder{sc: sc, format: f}, nil
}

// Format returns the detected text format.
func (d *Decoder) Format() format.Format {
	return d.format
}

// Decode reads the whole document. opts are passed to grid.New.
//
// The result is not validated. Structural errors are *errs.MalformedError
// values; a document span with xmin >= xmax is a *errs.ValidationError.
func (d *Decoder) Decode(opts ...grid.Option) (*grid.Document, error) {
	var (
		xmin, xmax float64
		tiers      []grid.Tier
		err        error
	)

	if d.format == format.FormatLong {
		xmin, xmax, tiers, err = d.decodeLong()
	} else {
		xmin, xmax, tiers, err = d.decodeShort()
	}
	if err != nil {
		return nil, err
	}

	if line, n, ok := d.sc.next(); ok {
		return nil, malformed(n, line, "end of input", "unexpected trailing content")
	}

	if !(xmin < xmax) {
		return nil, &errs.ValidationError{Index: -1, Reason: "document xmin must be less than xmax"}
	}

	return grid.New(xmin, xmax, append([]grid.Option{grid.WithTiers(tiers...)}, opts...)...)
}

func isUTF16(data []byte) bool {
	return len(data) >= 2 && ((data[0] == 0xfe && data[1] == 0xff) || (data[0] == 0xff && data[1] == 0xfe))
}

// Unmarshal decodes data in whichever text format it is written in.
func Unmarshal(data []byte, opts ...grid.Option) (*grid.Document, error) {
	dec, err := NewDecoder(data)
	if err != nil {
		return nil, err
	}

	return dec.Decode(opts...)
}

func (d *Decoder) decodeLong() (float64, float64, []grid.Tier, error) {
	sc := d.sc

	xmin, err := sc.float("xmin = ")
	if err != nil {
		return 0, 0, nil, err
	}
	xmax, err := sc.float("xmax = ")
	if err != nil {
		return 0, 0, nil, err
	}
	if err := sc.expectLine("tiers? <exists>"); err != nil {
		return 0, 0, nil, err
	}
	size, err := sc.count("size = ")
	if err != nil {
		return 0, 0, nil, err
	}
	if err := sc.expectLine("item []:"); err != nil {
		return 0, 0, nil, err
	}

	tiers := make([]grid.Tier, 0, min(size, sc.remaining()))
	for range size {
		if _, _, err := sc.expectPrefix("item ["); err != nil {
			return 0, 0, nil, err
		}

		tier, err := d.tierHeader("class = ", "name = ", "xmin = ", "xmax = ")
		if err != nil {
			return 0, 0, nil, err
		}

		if tier.Kind == grid.IntervalTier {
			tier.Intervals, err = d.longIntervals()
		} else {
			tier.Points, err = d.longPoints()
		}
		if err != nil {
			return 0, 0, nil, err
		}
		tiers = append(tiers, tier)
	}

	return xmin, xmax, tiers, nil
}

func (d *Decoder) longIntervals() ([]grid.Interval, error) {
	sc := d.sc

	n, err := sc.count("intervals: size = ")
	if err != nil {
		return nil, err
	}

	out := make([]grid.Interval, 0, min(n, sc.remaining()))
	for range n {
		if _, _, err := sc.expectPrefix("intervals ["); err != nil {
			return nil, err
		}
		iv, err := d.interval("xmin = ", "xmax = ", "text = ")
		if err != nil {
			return nil, err
		}
		out = append(out, iv)
	}

	return out, nil
}

func (d *Decoder) longPoints() ([]grid.Point, error) {
	sc := d.sc

	n, err := sc.count("points: size = ")
	if err != nil {
		return nil, err
	}

	out := make([]grid.Point, 0, min(n, sc.remaining()))
	for range n {
		if _, _, err := sc.expectPrefix("points ["); err != nil {
			return nil, err
		}

		// Praat writes "number = "; some tools write "time = ".
		timePrefix := "number = "
		if line, _, ok := sc.peek(); ok && strings.HasPrefix(line, "time = ") {
			timePrefix = "time = "
		}
		p, err := d.point(timePrefix, "mark = ")
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}

	return out, nil
}

func (d *Decoder) decodeShort() (float64, float64, []grid.Tier, error) {
	sc := d.sc

	xmin, err := sc.float("")
	if err != nil {
		return 0, 0, nil, err
	}
	xmax, err := sc.float("")
	if err != nil {
		return 0, 0, nil, err
	}
	if line, _, ok := sc.peek(); ok && line == "<exists>" {
		sc.next()
	}
	size, err := sc.count("")
	if err != nil {
		return 0, 0, nil, err
	}

	tiers := make([]grid.Tier, 0, min(size, sc.remaining()))
	for range size {
		tier, err := d.tierHeader("", "", "", "")
		if err != nil {
			return 0, 0, nil, err
		}

		n, err := sc.count("")
		if err != nil {
			return 0, 0, nil, err
		}
		for range n {
			if tier.Kind == grid.IntervalTier {
				iv, err := d.interval("", "", "")
				if err != nil {
					return 0, 0, nil, err
				}
				tier.Intervals = append(tier.Intervals, iv)
			} else {
				p, err := d.point("", "")
				if err != nil {
					return 0, 0, nil, err
				}
				tier.Points = append(tier.Points, p)
			}
		}
		tiers = append(tiers, tier)
	}

	return xmin, xmax, tiers, nil
}

// tierHeader reads class, name and bounds of one tier.
func (d *Decoder) tierHeader(classPrefix, namePrefix, xminPrefix, xmaxPrefix string) (grid.Tier, error) {
	sc := d.sc
	_, line, _ := sc.peek()

	class, err := sc.quoted(classPrefix)
	if err != nil {
		return grid.Tier{}, err
	}
	kind, ok := grid.ParseClassName(class)
	if !ok {
		return grid.Tier{}, malformed(line, class, `"IntervalTier" or "TextTier"`, "unknown tier class")
	}

	tier := grid.Tier{Kind: kind}
	if tier.Name, err = sc.quoted(namePrefix); err != nil {
		return grid.Tier{}, err
	}
	if tier.XMin, err = sc.float(xminPrefix); err != nil {
		return grid.Tier{}, err
	}
	if tier.XMax, err = sc.float(xmaxPrefix); err != nil {
		return grid.Tier{}, err
	}

	if d.format == format.FormatLong {
		// the size label must agree with the class
		want := "intervals: size = "
		if kind == grid.PointTier {
			want = "points: size = "
		}
		if next, n, ok := sc.peek(); ok && !strings.HasPrefix(next, want) {
			return grid.Tier{}, malformed(n, next, want, "size label does not match tier class")
		}
	}

	return tier, nil
}

func (d *Decoder) interval(xminPrefix, xmaxPrefix, textPrefix string) (grid.Interval, error) {
	var (
		iv  grid.Interval
		err error
	)

	if iv.XMin, err = d.sc.float(xminPrefix); err != nil {
		return iv, err
	}
	if iv.XMax, err = d.sc.float(xmaxPrefix); err != nil {
		return iv, err
	}
	if iv.Text, err = d.sc.quoted(textPrefix); err != nil {
		return iv, err
	}

	return iv, nil
}

func (d *Decoder) point(timePrefix, markPrefix string) (grid.Point, error) {
	var (
		p   grid.Point
		err error
	)

	if p.Time, err = d.sc.float(timePrefix); err != nil {
		return p, err
	}
	if p.Mark, err = d.sc.quoted(markPrefix); err != nil {
		return p, err
	}

	return p, nil
}
