package session

import (
	"fmt"

	"github.com/provar-zk/provar/digest"
	"github.com/provar-zk/provar/receipt"
)

// TraceRow is one recorded cycle of guest execution, in the form the circuit
// executor replays.
type TraceRow struct {
	Cycle uint32
	PC    uint32
	Insn  uint32
}

// Segment is a bounded slice of one execution: at most 2^PO2 cycles starting
// from PreImage. Segments are produced by the execution layer, consumed
// read-only, and proved at most once.
type Segment struct {
	// Index is the segment's position in its session.
	Index int
	// PO2 is the power-of-two cycle bound the segment was split at.
	PO2 int
	// Cycles is the number of cycles actually used.
	Cycles int
	// PreImage is the memory snapshot the segment starts from.
	PreImage *MemoryImage
	// Post is the machine state the segment ended in.
	Post receipt.SystemState
	// ExitCode records how the segment ended; every non-final segment of a
	// session exits SystemSplit.
	ExitCode receipt.ExitCode
	// Input is the session input digest.
	Input digest.Digest
	// Output is set on the final segment only.
	Output *receipt.Output
	// Trace holds the recorded cycles.
	Trace []TraceRow
}

// PreState returns the machine state the segment starts from.
func (s *Segment) PreState() (receipt.SystemState, error) {
	if s.PreImage == nil {
		return receipt.SystemState{}, fmt.Errorf("segment %d has no pre-state image", s.Index)
	}
	return receipt.SystemState{PC: s.PreImage.PC, MerkleRoot: s.PreImage.Root()}, nil
}

// Claim returns the claim proving this segment asserts.
func (s *Segment) Claim() (receipt.Claim, error) {
	pre, err := s.PreState()
	if err != nil {
		return receipt.Claim{}, err
	}
	if s.Cycles > 1<<s.PO2 {
		return receipt.Claim{}, fmt.Errorf("segment %d: %d cycles exceed po2 bound %d", s.Index, s.Cycles, s.PO2)
	}
	return receipt.Claim{
		Input:    s.Input,
		Pre:      pre,
		Post:     s.Post,
		ExitCode: s.ExitCode,
		Output:   s.Output,
	}, nil
}
