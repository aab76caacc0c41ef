// Package witness regenerates a segment's circuit witness by replaying its
// recorded trace through a chunked executor, and adapts the finalized witness
// into the register-group buffers the HAL commits. The witness is generated
// exactly once per segment proof.
package witness

import (
	"encoding/binary"

	"github.com/consensys/gnark-crypto/field/babybear"

	"github.com/provar-zk/provar/digest"
	"github.com/provar-zk/provar/session"
)

// Register group widths, in field elements per cycle.
const (
	CodeCols  = 16
	DataCols  = 32
	AccumCols = 8
)

// ChunkRows is the number of trace rows replayed per executor step.
const ChunkRows = 1024

// GlobalsSize is the element count of the circuit's fixed-layout public
// input/output vector: a zeroed input-digest region, the starting program
// counter byte by byte, and the starting image root word by word.
const GlobalsSize = digest.Words*digest.WordSize + digest.WordSize + digest.Words*digest.WordSize

// PrepareGlobals builds the public globals vector for a segment.
func PrepareGlobals(seg *session.Segment) ([]babybear.Element, error) {
	pre, err := seg.PreState()
	if err != nil {
		return nil, err
	}
	io := make([]babybear.Element, GlobalsSize)

	// input digest region stays zero
	offset := digest.Words * digest.WordSize

	var pcBytes [4]byte
	binary.LittleEndian.PutUint32(pcBytes[:], pre.PC)
	for i := 0; i < digest.WordSize; i++ {
		io[offset+i].SetUint64(uint64(pcBytes[i]))
	}
	offset += digest.WordSize

	var w [4]byte
	for i, word := range pre.MerkleRoot {
		binary.LittleEndian.PutUint32(w[:], word)
		for j := 0; j < digest.WordSize; j++ {
			io[offset+i*digest.WordSize+j].SetUint64(uint64(w[j]))
		}
	}
	return io, nil
}
