package compress

// ZstdCompressor provides Zstandard compression.
//
// The implementation is selected at build time: klauspost/compress by
// default, valyala/gozstd when built with the cgo_zstd tag. Both produce
// standard Zstandard frames and read each other's output.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd compressor with default settings.
//
// Example:
//
//	compressor := NewZstdCompressor()
//	compressed, err := compressor.Compress(data)
//	if err != nil {
//		return err
//	}
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
