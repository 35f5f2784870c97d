package compress

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/textgrid/errs"
	"github.com/arloliu/textgrid/format"
)

func getAllCodecs() map[string]Codec {
	return map[string]Codec{
		"NoOp": NewNoOpCompressor(),
		"LZ4":  NewLZ4Compressor(),
		"S2":   NewS2Compressor(),
		"Zstd": NewZstdCompressor(),
		"XZ":   NewXZCompressor(),
	}
}

// longTextGrid builds a long-format TextGrid body with n intervals.
func longTextGrid(n int) []byte {
	var sb strings.Builder
	sb.WriteString("File type = \"ooTextFile\"\nObject class = \"TextGrid\"\n\n")
	fmt.Fprintf(&sb, "xmin = 0\nxmax = %d\ntiers? <exists>\nsize = 1\nitem []:\n", n)
	sb.WriteString("    item [1]:\n        class = \"IntervalTier\"\n        name = \"words\"\n")
	fmt.Fprintf(&sb, "        xmin = 0\n        xmax = %d\n        intervals: size = %d\n", n, n)
	for i := range n {
		fmt.Fprintf(&sb, "        intervals [%d]:\n            xmin = %d\n            xmax = %d\n            text = \"word%d\"\n", i+1, i, i+1, i%17)
	}

	return []byte(sb.String())
}

func TestCreateCodec(t *testing.T) {
	for _, ct := range []format.CompressionType{
		format.CompressionNone, format.CompressionZstd, format.CompressionS2,
		format.CompressionLZ4, format.CompressionXZ,
	} {
		t.Run(ct.String(), func(t *testing.T) {
			codec, err := CreateCodec(ct, "payload")
			require.NoError(t, err)
			require.NotNil(t, codec)

			shared, err := GetCodec(ct)
			require.NoError(t, err)
			require.IsType(t, codec, shared)
		})
	}

	t.Run("Unknown type is unsupported", func(t *testing.T) {
		_, err := CreateCodec(format.CompressionType(0x7f), "payload")
		require.ErrorIs(t, err, errs.ErrUnsupportedCompression)
		require.Contains(t, err.Error(), "payload")

		_, err = GetCodec(format.CompressionType(0))
		require.ErrorIs(t, err, errs.ErrUnsupportedCompression)
	})
}

func TestStats(t *testing.T) {
	tests := []struct {
		name    string
		stats   Stats
		ratio   float64
		savings float64
	}{
		{"Half size", Stats{OriginalSize: 1000, CompressedSize: 500}, 0.5, 50},
		{"No gain", Stats{OriginalSize: 10, CompressedSize: 10}, 1, 0},
		{"Expansion", Stats{OriginalSize: 10, CompressedSize: 20}, 2, -100},
		{"Empty input", Stats{}, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.InDelta(t, tt.ratio, tt.stats.Ratio(), 1e-9)
			require.InDelta(t, tt.savings, tt.stats.SpaceSavings(), 1e-9)
		})
	}

	t.Run("Measure reports sizes of a TextGrid payload", func(t *testing.T) {
		data := longTextGrid(200)

		out, stats, err := Measure(format.CompressionZstd, data)
		require.NoError(t, err)
		require.Equal(t, format.CompressionZstd, stats.Algorithm)
		require.Equal(t, len(data), stats.OriginalSize)
		require.Equal(t, len(out), stats.CompressedSize)
		require.Less(t, stats.Ratio(), 0.25)

		_, _, err = Measure(format.CompressionType(0x7f), data)
		require.ErrorIs(t, err, errs.ErrUnsupportedCompression)
	})
}

func TestNoOpCompressor(t *testing.T) {
	c := NewNoOpCompressor()
	data := []byte("xmin = 0")

	out, err := c.Compress(data)
	require.NoError(t, err)
	require.Same(t, &data[0], &out[0])

	back, err := c.Decompress(out)
	require.NoError(t, err)
	require.Equal(t, data, back)
}

func TestAllCodecs_EmptyData(t *testing.T) {
	for name, codec := range getAllCodecs() {
		t.Run(name, func(t *testing.T) {
			compressed, err := codec.Compress(nil)
			require.NoError(t, err)
			require.Nil(t, compressed, "Compressing nil should return nil")

			decompressed, err := codec.Decompress(nil)
			require.NoError(t, err)
			require.Nil(t, decompressed, "Decompressing nil should return nil")

			compressed, err = codec.Compress([]byte{})
			require.NoError(t, err)

			decompressed, err = codec.Decompress(compressed)
			require.NoError(t, err)
			require.Empty(t, decompressed)
		})
	}
}

func TestAllCodecs_RoundTrip(t *testing.T) {
	testCases := []struct {
		name string
		data []byte
	}{
		{"small text", []byte("Hello, World!")},
		{"single byte", []byte{0x42}},
		{"binary header", []byte("ooBinaryFile\x08\x00TextGrid\x00\x00\x00\x00\x00\x00\x00\x00")},
		{"short TextGrid", longTextGrid(3)},
		{"long TextGrid", longTextGrid(2000)},
		{"zeros", make([]byte, 256*1024)},
	}

	for codecName, codec := range getAllCodecs() {
		t.Run(codecName, func(t *testing.T) {
			for _, tc := range testCases {
				t.Run(tc.name, func(t *testing.T) {
					compressed, err := codec.Compress(tc.data)
					require.NoError(t, err)
					require.NotNil(t, compressed)

					decompressed, err := codec.Decompress(compressed)
					require.NoError(t, err)
					require.Equal(t, tc.data, decompressed)
				})
			}
		})
	}
}

func TestAllCodecs_CompressTextGrid(t *testing.T) {
	data := longTextGrid(2000)

	for codecName, codec := range getAllCodecs() {
		if codecName == "NoOp" {
			continue
		}
		t.Run(codecName, func(t *testing.T) {
			compressed, err := codec.Compress(data)
			require.NoError(t, err)
			require.Less(t, len(compressed), len(data)/3, "TextGrid text is repetitive")
		})
	}
}

func TestAllCodecs_DecompressLimit(t *testing.T) {
	data := longTextGrid(500)

	for codecName, codec := range getAllCodecs() {
		t.Run(codecName, func(t *testing.T) {
			compressed, err := codec.Compress(data)
			require.NoError(t, err)

			t.Run("Output within the limit decodes", func(t *testing.T) {
				out, err := codec.DecompressLimit(compressed, len(data))
				require.NoError(t, err)
				require.Equal(t, data, out)

				out, err = codec.DecompressLimit(compressed, len(data)+100)
				require.NoError(t, err)
				require.Equal(t, data, out)
			})

			t.Run("Output past the limit is refused", func(t *testing.T) {
				_, err := codec.DecompressLimit(compressed, 16)
				require.ErrorIs(t, err, ErrOutputLimit)

				_, err = codec.DecompressLimit(compressed, len(data)-1)
				require.ErrorIs(t, err, ErrOutputLimit)
			})
		})
	}
}

func TestAllCodecs_InvalidData(t *testing.T) {
	invalidInputs := []struct {
		name string
		data []byte
	}{
		{"random bytes", []byte{0xFF, 0xFF, 0xFF, 0xFF}},
		{"text as compressed", []byte("this is not compressed data")},
		{"corrupted header", []byte{0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07}},
	}

	for codecName, codec := range getAllCodecs() {
		if codecName == "NoOp" {
			continue
		}
		t.Run(codecName, func(t *testing.T) {
			for _, input := range invalidInputs {
				t.Run(input.name, func(t *testing.T) {
					_, err := codec.Decompress(input.data)
					require.Error(t, err)
				})
			}
		})
	}
}

func TestAllCodecs_ConcurrentUsage(t *testing.T) {
	const numGoroutines = 16
	data := longTextGrid(50)

	for codecName, codec := range getAllCodecs() {
		t.Run(codecName, func(t *testing.T) {
			compressed, err := codec.Compress(data)
			require.NoError(t, err)

			done := make(chan error, numGoroutines*2)
			for range numGoroutines {
				go func() {
					_, err := codec.Compress(data)
					done <- err
				}()
				go func() {
					out, err := codec.Decompress(compressed)
					if err == nil && !bytes.Equal(data, out) {
						err = fmt.Errorf("decompressed data mismatch")
					}
					done <- err
				}()
			}

			for range numGoroutines * 2 {
				require.NoError(t, <-done)
			}
		})
	}
}
