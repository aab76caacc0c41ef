package hal

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"hash"

	poseidon2_bls377 "github.com/consensys/gnark-crypto/ecc/bls12-377/fr/poseidon2"
	poseidon2_bn254 "github.com/consensys/gnark-crypto/ecc/bn254/fr/poseidon2"
)

// Hash suite names. A backend is constructed for exactly one suite; receipts
// record the suite they were produced under.
const (
	Sha256      = "sha-256"
	Poseidon    = "poseidon"
	Poseidon254 = "poseidon_254"
)

// Suite is a hash suite identity: a stable name plus a constructor for the
// transcript and commitment hash.
type Suite struct {
	Name string
	New  func() hash.Hash
}

// Sha256Suite returns the SHA-256 suite.
func Sha256Suite() Suite {
	return Suite{Name: Sha256, New: sha256.New}
}

// PoseidonSuite returns the Poseidon2 suite used for recursion-compatible
// proving.
func PoseidonSuite() Suite {
	return Suite{Name: Poseidon, New: func() hash.Hash {
		return newFieldHasher(func() hash.Hash { return poseidon2_bls377.NewMerkleDamgardHasher() })
	}}
}

// Poseidon254Suite returns the Poseidon2 suite over a 254-bit field, used to
// re-encode succinct receipts for verifiers bound to that field.
func Poseidon254Suite() Suite {
	return Suite{Name: Poseidon254, New: func() hash.Hash {
		return newFieldHasher(func() hash.Hash { return poseidon2_bn254.NewMerkleDamgardHasher() })
	}}
}

// fieldHasherChunk is one byte short of a field element, so every block fed
// to the inner hash stays canonical in the field.
const fieldHasherChunk = 31

// fieldHasher adapts a field-based hash to arbitrary byte input. Written
// bytes are buffered and re-blocked into right-aligned 32-byte chunks of at
// most fieldHasherChunk payload bytes, followed by a length block that keeps
// the padding injective.
type fieldHasher struct {
	newInner func() hash.Hash
	buf      []byte
}

func newFieldHasher(newInner func() hash.Hash) *fieldHasher {
	return &fieldHasher{newInner: newInner}
}

func (h *fieldHasher) Write(p []byte) (int, error) {
	h.buf = append(h.buf, p...)
	return len(p), nil
}

func (h *fieldHasher) Sum(b []byte) []byte {
	inner := h.newInner()
	var block [32]byte
	for lo := 0; lo < len(h.buf); lo += fieldHasherChunk {
		hi := min(lo+fieldHasherChunk, len(h.buf))
		clear(block[:])
		copy(block[32-(hi-lo):], h.buf[lo:hi])
		inner.Write(block[:])
	}
	clear(block[:])
	binary.BigEndian.PutUint64(block[24:], uint64(len(h.buf)))
	inner.Write(block[:])
	return append(b, inner.Sum(nil)...)
}

func (h *fieldHasher) Reset()         { h.buf = h.buf[:0] }
func (h *fieldHasher) Size() int      { return 32 }
func (h *fieldHasher) BlockSize() int { return fieldHasherChunk }

// SuiteByName resolves a hash suite from its configured name. An unrecognized
// name is a configuration error, reported immediately with the value.
func SuiteByName(name string) (Suite, error) {
	switch name {
	case Sha256:
		return Sha256Suite(), nil
	case Poseidon:
		return PoseidonSuite(), nil
	case Poseidon254:
		return Poseidon254Suite(), nil
	default:
		return Suite{}, fmt.Errorf("unsupported hashfn: %s", name)
	}
}

// DefaultSuites returns the suites a default verification context accepts.
func DefaultSuites() []Suite {
	return []Suite{Sha256Suite(), PoseidonSuite(), Poseidon254Suite()}
}
