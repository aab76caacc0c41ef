// Package hal defines the hardware abstraction the segment prover drives: a
// backend stages named buffers of field elements, commits register groups and
// finalizes an interactive transcript into an opaque seal. Concrete backends
// live in hal/cpu, hal/cuda and hal/zeknox; the proving algorithm never
// branches on which one is active.
package hal

import (
	"fmt"

	"github.com/consensys/gnark-crypto/field/babybear"

	"github.com/provar-zk/provar/digest"
)

// RegisterGroup identifies one of the circuit's trace register groups.
type RegisterGroup int

const (
	// GroupCode holds the control/code trace.
	GroupCode RegisterGroup = iota
	// GroupData holds the data trace.
	GroupData
	// GroupAccum holds the accumulator trace. Its values depend on challenges
	// derived from the two prior group commitments.
	GroupAccum

	// NumGroups is the number of committed register groups.
	NumGroups
)

func (g RegisterGroup) String() string {
	switch g {
	case GroupCode:
		return "code"
	case GroupData:
		return "data"
	case GroupAccum:
		return "accum"
	default:
		return fmt.Sprintf("group(%d)", int(g))
	}
}

// Buffer is a named buffer of field elements staged on a backend. Elements
// returns the host view; backends holding device memory mirror it.
type Buffer interface {
	Name() string
	Len() int
	Elements() []babybear.Element
}

// Hal is the hardware backend handle. It is constructed once per proving
// service, shared read-only across all segment proofs of a session, and
// requires no internal synchronization under the prover's sequential contract.
type Hal interface {
	// Suite returns the backend's hash suite identity.
	Suite() Suite

	// CopyFromElem stages values under name and returns the staged buffer.
	CopyFromElem(name string, values []babybear.Element) Buffer

	// CommitRoot computes the merkle commitment of a staged buffer.
	CommitRoot(buf Buffer) (digest.Digest, error)

	// MemoryUsage reports the peak number of bytes the backend has staged.
	MemoryUsage() uint64
}

// CircuitHal evaluates the circuit-specific part of proof finalization.
type CircuitHal interface {
	// SealCheck computes the low-degree consistency check digest over the
	// final transcript challenge and the named opening roots.
	SealCheck(challenge []byte, mixRoot, outRoot digest.Digest) digest.Digest
}

// Pair bundles a Hal with its CircuitHal. Constructing a pair is expensive;
// one pair serves every segment proof of a session.
type Pair struct {
	Hal     Hal
	Circuit CircuitHal
}

// Check is the canonical seal-check formula. Every CircuitHal implementation
// must produce this value; the CPU backend computes it directly and seal
// verification recomputes it.
func Check(su Suite, challenge []byte, mixRoot, outRoot digest.Digest) digest.Digest {
	h := su.New()
	h.Write(challenge)
	h.Write(mixRoot.Bytes())
	h.Write(outRoot.Bytes())
	return digest.FromBytes(h.Sum(nil)[:digest.Bytes])
}

// GlobalsDigest commits the fixed-layout public input/output header of a
// segment: the starting program counter and the starting memory image root,
// with a zeroed input-digest region.
func GlobalsDigest(pc uint32, imageRoot digest.Digest) digest.Digest {
	return digest.TagHash("provar.Globals", []digest.Digest{{}, imageRoot}, []uint32{pc})
}
