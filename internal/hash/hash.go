package hash

import "github.com/cespare/xxhash/v2"

// Sum64 computes the xxHash64 of data.
func Sum64(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// String computes the xxHash64 of s without copying it.
func String(s string) uint64 {
	return xxhash.Sum64String(s)
}

// Digest accumulates an xxHash64 over several writes.
type Digest struct {
	d *xxhash.Digest
}

// NewDigest returns an empty Digest.
func NewDigest() Digest {
	return Digest{d: xxhash.New()}
}

// Write adds p to the running hash.
func (h Digest) Write(p []byte) {
	_, _ = h.d.Write(p)
}

// WriteString adds s to the running hash.
func (h Digest) WriteString(s string) {
	_, _ = h.d.WriteString(s)
}

// Sum64 returns the hash of everything written so far.
func (h Digest) Sum64() uint64 {
	return h.d.Sum64()
}
