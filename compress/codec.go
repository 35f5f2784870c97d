package compress

import (
	"errors"
	"fmt"

	"github.com/arloliu/textgrid/errs"
	"github.com/arloliu/textgrid/format"
)

// Compressor compresses an encoded TextGrid payload.
//
// The returned slice is owned by the caller; the input is not modified.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// ErrOutputLimit is returned by DecompressLimit when the decoded payload
// would exceed the limit.
var ErrOutputLimit = errors.New("decompressed output exceeds limit")

// Decompressor restores a payload produced by the matching Compressor.
//
// Corrupt input or input produced by another algorithm yields an error.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)

	// DecompressLimit is Decompress for untrusted input. It fails with
	// ErrOutputLimit, without producing the rest of the output, once more
	// than limit bytes would be decoded.
	DecompressLimit(data []byte, limit int) ([]byte, error)
}

// Codec combines both directions. All built-in codecs are safe for
// concurrent use.
type Codec interface {
	Compressor
	Decompressor
}

// Stats summarizes one compression run.
type Stats struct {
	Algorithm      format.CompressionType
	OriginalSize   int
	CompressedSize int
}

// Ratio returns compressed size / original size, or 0 for empty input.
func (s Stats) Ratio() float64 {
	if s.OriginalSize == 0 {
		return 0
	}

	return float64(s.CompressedSize) / float64(s.OriginalSize)
}

// SpaceSavings returns the saved share of the original size in percent.
// Incompressible input can make it negative.
func (s Stats) SpaceSavings() float64 {
	if s.OriginalSize == 0 {
		return 0
	}

	return (1 - s.Ratio()) * 100
}

// CreateCodec returns a new Codec for compressionType.
//
// Parameters:
//   - compressionType: Type of compression (None, Zstd, S2, LZ4 or XZ)
//   - target: Description of target usage (for error messages)
//
// Returns:
//   - Codec: Codec instance for the specified type
//   - error: errs.ErrUnsupportedCompression for an unknown type
func CreateCodec(compressionType format.CompressionType, target string) (Codec, error) {
	switch compressionType {
	case format.CompressionNone:
		return NewNoOpCompressor(), nil
	case format.CompressionZstd:
		return NewZstdCompressor(), nil
	case format.CompressionS2:
		return NewS2Compressor(), nil
	case format.CompressionLZ4:
		return NewLZ4Compressor(), nil
	case format.CompressionXZ:
		return NewXZCompressor(), nil
	default:
		return nil, fmt.Errorf("%w: %s compression %s", errs.ErrUnsupportedCompression, target, compressionType)
	}
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCompressor(),
	format.CompressionZstd: NewZstdCompressor(),
	format.CompressionS2:   NewS2Compressor(),
	format.CompressionLZ4:  NewLZ4Compressor(),
	format.CompressionXZ:   NewXZCompressor(),
}

// GetCodec retrieves the shared built-in Codec for compressionType.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("%w: %s", errs.ErrUnsupportedCompression, compressionType)
}

// Measure compresses data with the shared codec for compressionType and
// reports the sizes alongside the compressed bytes.
func Measure(compressionType format.CompressionType, data []byte) ([]byte, Stats, error) {
	codec, err := GetCodec(compressionType)
	if err != nil {
		return nil, Stats{}, err
	}

	out, err := codec.Compress(data)
	if err != nil {
		return nil, Stats{}, err
	}

	return out, Stats{Algorithm: compressionType, OriginalSize: len(data), CompressedSize: len(out)}, nil
}
