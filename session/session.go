package session

import (
	"fmt"

	"github.com/provar-zk/provar/digest"
	"github.com/provar-zk/provar/receipt"
)

// SegmentRef resolves to a Segment on demand, so large sessions need not hold
// every segment in memory at once.
type SegmentRef interface {
	Resolve() (*Segment, error)
}

// SimpleSegmentRef holds its segment in memory.
type SimpleSegmentRef struct {
	seg *Segment
}

// NewSimpleSegmentRef wraps an in-memory segment.
func NewSimpleSegmentRef(seg *Segment) *SimpleSegmentRef {
	return &SimpleSegmentRef{seg: seg}
}

func (r *SimpleSegmentRef) Resolve() (*Segment, error) {
	if r.seg == nil {
		return nil, fmt.Errorf("segment ref resolves to nothing")
	}
	return r.seg, nil
}

// Hook observes the proving of a session's segments. Hooks run synchronously
// between segment proofs, on the proving thread of control, and must not
// assume knowledge of other segments' state.
type Hook interface {
	PreProveSegment(*Segment)
	PostProveSegment(*Segment)
}

// Session is the full recorded execution of one guest run. It is immutable
// once execution completes.
type Session struct {
	// Segments references the session's segments in index order.
	Segments []SegmentRef
	// Journal holds the public output bytes the guest committed, if any.
	Journal []byte
	// ExitCode records how the session ended.
	ExitCode receipt.ExitCode
	// Assumptions holds a receipt for every assumption the session depends
	// on, in the order the guest made them.
	Assumptions []*receipt.Receipt
	// Hooks are notified before and after each segment proof.
	Hooks []Hook
}

// AddHook registers an observer for segment proving.
func (s *Session) AddHook(h Hook) {
	s.Hooks = append(s.Hooks, h)
}

// Claim returns the claim a receipt for this session must prove: from the
// first segment's pre-state to the last segment's post-state, with the
// journal committed and all assumptions discharged.
func (s *Session) Claim() (receipt.Claim, error) {
	if len(s.Segments) == 0 {
		return receipt.Claim{}, fmt.Errorf("session has no segments")
	}
	first, err := s.Segments[0].Resolve()
	if err != nil {
		return receipt.Claim{}, err
	}
	last, err := s.Segments[len(s.Segments)-1].Resolve()
	if err != nil {
		return receipt.Claim{}, err
	}
	pre, err := first.PreState()
	if err != nil {
		return receipt.Claim{}, err
	}
	return receipt.Claim{
		Input:    first.Input,
		Pre:      pre,
		Post:     last.Post,
		ExitCode: last.ExitCode,
		Output:   &receipt.Output{JournalDigest: digest.Sum(s.Journal)},
	}, nil
}
