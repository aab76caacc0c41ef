// Package digest implements the 256-bit, word-oriented digests shared by
// claims, receipts and seals, together with the tagged-struct hashing rule
// used to derive them.
package digest

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

const (
	// Words is the number of 32-bit words in a digest.
	Words = 8
	// Bytes is the byte length of a digest.
	Bytes = 32
	// WordSize is the byte length of one digest word.
	WordSize = 4
)

// Digest is a 256-bit value addressed as little-endian 32-bit words, matching
// the word-oriented public interface of the guest circuit.
type Digest [Words]uint32

// Digestible is implemented by values with a canonical digest.
type Digestible interface {
	Digest() Digest
}

// FromBytes interprets b as little-endian digest words. It panics if b is not
// exactly Bytes long.
func FromBytes(b []byte) Digest {
	if len(b) != Bytes {
		panic("digest: FromBytes requires exactly 32 bytes")
	}
	var d Digest
	for i := 0; i < Words; i++ {
		d[i] = binary.LittleEndian.Uint32(b[i*WordSize:])
	}
	return d
}

// Sum hashes data with SHA-256 and returns the digest.
func Sum(data []byte) Digest {
	h := sha256.Sum256(data)
	return FromBytes(h[:])
}

// Bytes returns the little-endian byte encoding of d.
func (d Digest) Bytes() []byte {
	b := make([]byte, Bytes)
	for i, w := range d {
		binary.LittleEndian.PutUint32(b[i*WordSize:], w)
	}
	return b
}

// Words32 returns the digest words as a slice.
func (d Digest) Words32() []uint32 {
	return d[:]
}

// IsZero reports whether all words of d are zero.
func (d Digest) IsZero() bool {
	for _, w := range d {
		if w != 0 {
			return false
		}
	}
	return true
}

func (d Digest) String() string {
	return hex.EncodeToString(d.Bytes())
}

// TagHash computes the digest of a tagged struct:
//
//	SHA-256( SHA-256(tag) || down... || data... || len(down) as u16 )
//
// where down digests and data words are serialized little-endian. Every
// logical structure proven by this module (system states, outputs, claims)
// hashes through this rule, so that two distinct structures can never collide
// across tags.
func TagHash(tag string, down []Digest, data []uint32) Digest {
	h := sha256.New()
	tagDigest := sha256.Sum256([]byte(tag))
	h.Write(tagDigest[:])
	for _, d := range down {
		h.Write(d.Bytes())
	}
	var w [WordSize]byte
	for _, v := range data {
		binary.LittleEndian.PutUint32(w[:], v)
		h.Write(w[:])
	}
	var n [2]byte
	binary.LittleEndian.PutUint16(n[:], uint16(len(down)))
	h.Write(n[:])
	return FromBytes(h.Sum(nil))
}
