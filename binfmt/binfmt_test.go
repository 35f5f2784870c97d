package binfmt

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/textgrid/endian"
	"github.com/arloliu/textgrid/errs"
	"github.com/arloliu/textgrid/grid"
)

func sampleDoc(t *testing.T) *grid.Document {
	t.Helper()

	doc, err := grid.New(-0.5, math.Pi, grid.WithTiers(
		grid.NewIntervalTier("words", -0.5, math.Pi,
			grid.Interval{XMin: -0.5, XMax: 0.1, Text: ""},
			grid.Interval{XMin: 0.1, XMax: math.Pi, Text: "naïve \"quoted\"\nline"},
		),
		grid.NewPointTier("tones", 0, 3, grid.Point{Time: 1e-300, Mark: "H*"}),
	))
	require.NoError(t, err)

	return doc
}

func TestRoundTrip(t *testing.T) {
	doc := sampleDoc(t)

	data, err := Marshal(doc)
	require.NoError(t, err)
	require.True(t, IsBinary(data))

	got, err := Unmarshal(data)
	require.NoError(t, err)
	require.True(t, doc.Equal(got))

	var buf bytes.Buffer
	require.NoError(t, NewEncoder(&buf).Encode(doc))
	require.Equal(t, data, buf.Bytes())
}

func TestLayout(t *testing.T) {
	doc, err := grid.New(0, 1, grid.WithTiers(
		grid.NewPointTier("p", 0, 1, grid.Point{Time: 0.5, Mark: "m"}),
	))
	require.NoError(t, err)

	data, err := Marshal(doc)
	require.NoError(t, err)

	le := endian.GetLittleEndianEngine()
	var want []byte
	want = append(want, "ooBinaryFile"...)
	want = le.AppendUint16(want, 8)
	want = append(want, "TextGrid"...)
	want = endian.AppendFloat64(le, want, 0)
	want = endian.AppendFloat64(le, want, 1)
	want = le.AppendUint32(want, 1)
	want = le.AppendUint16(want, 8)
	want = append(want, "TextTier"...)
	want = le.AppendUint16(want, 1)
	want = append(want, 'p')
	want = endian.AppendFloat64(le, want, 0)
	want = endian.AppendFloat64(le, want, 1)
	want = le.AppendUint32(want, 1)
	want = endian.AppendFloat64(le, want, 0.5)
	want = le.AppendUint16(want, 1)
	want = append(want, 'm')

	require.Equal(t, want, data)
}

func TestUnmarshalMalformed(t *testing.T) {
	valid, err := Marshal(sampleDoc(t))
	require.NoError(t, err)

	le := endian.GetLittleEndianEngine()
	header := func(class string) []byte {
		b := append([]byte(Magic), le.AppendUint16(nil, uint16(len(class)))...)
		return append(b, class...)
	}

	cases := []struct {
		name   string
		data   []byte
		offset int
	}{
		{"empty", nil, 0},
		{"bad magic", append([]byte("ooTextFile!!"), valid[12:]...), 0},
		{"wrong object class", header("Sound"), 12},
		{"truncated header", valid[:20], 14},
		{"trailing bytes", append(append([]byte{}, valid...), 0), len(valid)},
		{"huge tier count", le.AppendUint32(endian.AppendFloat64(le, endian.AppendFloat64(le, header(ObjectClass), 0), 1), math.MaxUint32), 12 + 2 + 8 + 16},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Unmarshal(tc.data)
			require.ErrorIs(t, err, errs.ErrMalformedInput)

			var me *errs.MalformedError
			require.True(t, errors.As(err, &me))
			require.Equal(t, tc.offset, me.Offset)
		})
	}

	t.Run("every truncation fails cleanly", func(t *testing.T) {
		for n := range len(valid) {
			_, err := Unmarshal(valid[:n])
			require.ErrorIs(t, err, errs.ErrMalformedInput, "prefix of %d bytes", n)
		}
	})

	t.Run("unknown tier class", func(t *testing.T) {
		b := header(ObjectClass)
		b = endian.AppendFloat64(le, b, 0)
		b = endian.AppendFloat64(le, b, 1)
		b = le.AppendUint32(b, 1)
		b = le.AppendUint16(b, 5)
		b = append(b, "Sound"...)
		b = append(b, make([]byte, 2+16+4)...)

		_, err := Unmarshal(b)
		var me *errs.MalformedError
		require.ErrorAs(t, err, &me)
		require.Contains(t, me.Reason, "unknown tier class")
	})

	t.Run("invalid UTF-8 name", func(t *testing.T) {
		b := header(ObjectClass)
		b = endian.AppendFloat64(le, b, 0)
		b = endian.AppendFloat64(le, b, 1)
		b = le.AppendUint32(b, 1)
		b = le.AppendUint16(b, 12)
		b = append(b, "IntervalTier"...)
		b = le.AppendUint16(b, 2)
		b = append(b, 0xc3, 0x28)
		b = append(b, make([]byte, 16+4)...)

		_, err := Unmarshal(b)
		var me *errs.MalformedError
		require.ErrorAs(t, err, &me)
		require.Equal(t, "invalid UTF-8", me.Reason)
	})

	t.Run("inverted span is a validation error", func(t *testing.T) {
		b := header(ObjectClass)
		b = endian.AppendFloat64(le, b, 1)
		b = endian.AppendFloat64(le, b, 0)
		b = le.AppendUint32(b, 0)

		_, err := Unmarshal(b)
		require.ErrorIs(t, err, errs.ErrValidation)
	})
}

func TestEncodeRejectsLongStrings(t *testing.T) {
	doc, err := grid.New(0, 1, grid.WithTiers(
		grid.NewIntervalTier("words", 0, 1, grid.Interval{XMin: 0, XMax: 1, Text: strings.Repeat("a", MaxStringLen+1)}),
	))
	require.NoError(t, err)

	var buf bytes.Buffer
	err = NewEncoder(&buf).Encode(doc)
	require.ErrorIs(t, err, errs.ErrValidation)
	require.Zero(t, buf.Len())

	var ve *errs.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Equal(t, "words", ve.Tier)
	require.Equal(t, 0, ve.Index)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestEncodeWriterFailure(t *testing.T) {
	err := NewEncoder(failingWriter{}).Encode(sampleDoc(t))
	require.ErrorIs(t, err, errs.ErrIO)
}
