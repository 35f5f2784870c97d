package format

import (
	"fmt"
	"strings"
)

type (
	Format          uint8
	CompressionType uint8
)

const (
	FormatLong   Format = 0x1 // FormatLong is the labeled ("key = value") text format.
	FormatShort  Format = 0x2 // FormatShort is the positional text format with bare values.
	FormatBinary Format = 0x3 // FormatBinary is the little-endian binary format.

	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
	CompressionXZ   CompressionType = 0x5 // CompressionXZ represents xz (LZMA2) compression.
)

func (f Format) String() string {
	switch f {
	case FormatLong:
		return "Long"
	case FormatShort:
		return "Short"
	case FormatBinary:
		return "Binary"
	default:
		return "Unknown"
	}
}

// IsText reports whether f is one of the two text formats.
func (f Format) IsText() bool {
	return f == FormatLong || f == FormatShort
}

// IsValid reports whether f is a known format.
func (f Format) IsValid() bool {
	return f >= FormatLong && f <= FormatBinary
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	case CompressionXZ:
		return "XZ"
	default:
		return "Unknown"
	}
}

// ParseFormat maps a case-insensitive name ("long", "short", "binary") to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "long", "text":
		return FormatLong, nil
	case "short":
		return FormatShort, nil
	case "binary", "bin":
		return FormatBinary, nil
	default:
		return 0, fmt.Errorf("unknown format: %q", name)
	}
}

// ParseCompression maps a case-insensitive name to a CompressionType.
func ParseCompression(name string) (CompressionType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "none", "":
		return CompressionNone, nil
	case "zstd":
		return CompressionZstd, nil
	case "s2":
		return CompressionS2, nil
	case "lz4":
		return CompressionLZ4, nil
	case "xz":
		return CompressionXZ, nil
	default:
		return 0, fmt.Errorf("unknown compression: %q", name)
	}
}
