// Package compress provides the compression codecs used by packed TextGrid
// archives.
//
// A codec is applied to a fully encoded payload (binary or text) before it
// is wrapped in a pack envelope:
//   - None: payload stored as is
//   - Zstd: best general ratio; pure Go by default, cgo (gozstd) with the
//     cgo_zstd build tag
//   - S2: fast with a moderate ratio
//   - LZ4: fastest decompression
//   - XZ: smallest output for large text payloads, slowest
//
// Look up a shared codec by type:
//
//	codec, err := compress.GetCodec(format.CompressionZstd)
//	if err != nil {
//	    return err
//	}
//	packed, err := codec.Compress(payload)
//
// TextGrid text is highly repetitive (labels, indentation, "xmin = ") and
// typically shrinks by 5-10x under Zstd or XZ; the binary format is denser
// and gains less.
package compress
