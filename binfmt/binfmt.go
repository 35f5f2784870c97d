// Package binfmt reads and writes the little-endian binary TextGrid format.
//
// Layout, all multi-byte values little-endian:
//
//	"ooBinaryFile"                 12 bytes, no length prefix
//	u16 len + "TextGrid"           object class
//	f64 xmin, f64 xmax
//	u32 tier count
//	per tier:
//	    u16 len + class            "IntervalTier" or "TextTier"
//	    u16 len + name
//	    f64 xmin, f64 xmax
//	    u32 element count
//	    per interval: f64 xmin, f64 xmax, u16 len + text
//	    per point:    f64 time, u16 len + mark
//
// Strings are UTF-8. Every read is checked against the remaining input, and
// bytes left over after the last tier are rejected.
package binfmt

import "math"

// Magic opens every binary TextGrid.
const Magic = "ooBinaryFile"

// ObjectClass is the class name that follows Magic.
const ObjectClass = "TextGrid"

// MaxStringLen is the longest string a u16 length prefix can describe.
const MaxStringLen = math.MaxUint16

const (
	sizeU16 = 2
	sizeU32 = 4
	sizeF64 = 8

	minIntervalSize = 2*sizeF64 + sizeU16
	minPointSize    = sizeF64 + sizeU16
)
