// Package session models a recorded guest execution: the ordered segments of
// one run, the journal it committed, the assumptions it made, and the
// observer hooks to notify while proving. Sessions are produced by the
// execution layer and consumed read-only here.
package session

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/bits-and-blooms/bitset"
	"github.com/consensys/gnark-crypto/accumulator/merkletree"

	"github.com/provar-zk/provar/digest"
)

// PageSize is the byte size of one memory page.
const PageSize = 1024

// MemoryImage is a paged snapshot of guest memory plus the program counter,
// taken at a segment boundary. Pages are committed into a merkle tree whose
// root identifies the image.
type MemoryImage struct {
	// PC is the program counter at the snapshot.
	PC uint32

	pages    map[uint32][]byte
	resident *bitset.BitSet
	root     *digest.Digest
}

// NewMemoryImage returns an empty image starting at pc.
func NewMemoryImage(pc uint32) *MemoryImage {
	return &MemoryImage{
		PC:       pc,
		pages:    make(map[uint32][]byte),
		resident: bitset.New(64),
	}
}

// AddPage records a resident page. The data must be exactly PageSize bytes.
func (img *MemoryImage) AddPage(idx uint32, data []byte) error {
	if len(data) != PageSize {
		return fmt.Errorf("page %d: %d bytes, want %d", idx, len(data), PageSize)
	}
	p := make([]byte, PageSize)
	copy(p, data)
	img.pages[idx] = p
	img.resident.Set(uint(idx))
	img.root = nil
	return nil
}

// Page returns a resident page.
func (img *MemoryImage) Page(idx uint32) ([]byte, bool) {
	p, ok := img.pages[idx]
	return p, ok
}

// NumPages returns the number of resident pages.
func (img *MemoryImage) NumPages() uint {
	return img.resident.Count()
}

// Root returns the merkle root over the resident pages in ascending index
// order. The root is cached until the image changes.
func (img *MemoryImage) Root() digest.Digest {
	if img.root != nil {
		return *img.root
	}
	if img.resident.Count() == 0 {
		return digest.TagHash("provar.EmptyImage", nil, nil)
	}
	tree := merkletree.New(sha256.New())
	var idx [4]byte
	for i, ok := img.resident.NextSet(0); ok; i, ok = img.resident.NextSet(i + 1) {
		binary.LittleEndian.PutUint32(idx[:], uint32(i))
		leaf := make([]byte, 0, 4+PageSize)
		leaf = append(leaf, idx[:]...)
		leaf = append(leaf, img.pages[uint32(i)]...)
		tree.Push(leaf)
	}
	root := digest.FromBytes(tree.Root())
	img.root = &root
	return root
}
