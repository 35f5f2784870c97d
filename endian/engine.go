// Package endian provides the byte order plumbing used by the binary codec.
//
// EndianEngine joins encoding/binary's ByteOrder and AppendByteOrder so one
// value can both decode fixed-width fields in place and append them to a
// growing buffer:
//
//	engine := endian.GetLittleEndianEngine()
//	buf = engine.AppendUint32(buf, uint32(len(tiers)))
//	buf = endian.AppendFloat64(engine, buf, tier.XMin)
//
// The TextGrid binary layout is little-endian; the big-endian engine exists
// for tests and tooling that need to produce deliberately foreign input.
package endian

import (
	"encoding/binary"
	"math"
)

// EndianEngine combines ByteOrder and AppendByteOrder.
//
// binary.LittleEndian and binary.BigEndian both satisfy it.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// AppendFloat64 appends the IEEE 754 bits of v to buf in engine byte order.
func AppendFloat64(engine EndianEngine, buf []byte, v float64) []byte {
	return engine.AppendUint64(buf, math.Float64bits(v))
}

// Float64 decodes an IEEE 754 double from the first 8 bytes of b.
func Float64(engine EndianEngine, b []byte) float64 {
	return math.Float64frombits(engine.Uint64(b))
}
