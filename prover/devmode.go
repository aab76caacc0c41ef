package prover

import (
	"fmt"

	"github.com/provar-zk/provar/receipt"
	"github.com/provar-zk/provar/session"
)

// devModeProver skips proving entirely and records claims in fake receipts.
// Only session proving is meaningful here; the receipt-to-receipt operations
// have nothing to operate on.
type devModeProver struct{}

func (p *devModeProver) ProveSession(ctx *receipt.VerifierContext, s *session.Session) (*ProveInfo, error) {
	claim, err := s.Claim()
	if err != nil {
		return nil, err
	}
	var stats SessionStats
	for i, ref := range s.Segments {
		seg, err := ref.Resolve()
		if err != nil {
			return nil, fmt.Errorf("resolve segment %d: %w", i, err)
		}
		stats.Segments++
		stats.TotalCycles += uint64(1) << seg.PO2
		stats.UserCycles += uint64(seg.Cycles)
	}
	r := receipt.New(&receipt.FakeReceipt{ReceiptClaim: claim}, s.Journal)
	if err := r.VerifyIntegrity(ctx); err != nil {
		return nil, fmt.Errorf("dev mode receipt failed verification: %w", err)
	}
	return &ProveInfo{Receipt: r, Stats: stats}, nil
}

func (p *devModeProver) ProveSegment(*receipt.VerifierContext, *session.Segment) (*receipt.SegmentReceipt, error) {
	return nil, ErrDevMode
}

func (p *devModeProver) Lift(*receipt.SegmentReceipt) (*receipt.SuccinctReceipt, error) {
	return nil, ErrDevMode
}

func (p *devModeProver) Join(_, _ *receipt.SuccinctReceipt) (*receipt.SuccinctReceipt, error) {
	return nil, ErrDevMode
}

func (p *devModeProver) Resolve(_, _ *receipt.SuccinctReceipt) (*receipt.SuccinctReceipt, error) {
	return nil, ErrDevMode
}

func (p *devModeProver) IdentityP254(*receipt.SuccinctReceipt) (*receipt.SuccinctReceipt, error) {
	return nil, ErrDevMode
}

// Compress passes fake receipts through so dev-mode pipelines that always
// compress keep working.
func (p *devModeProver) Compress(_ *receipt.VerifierContext, r *receipt.Receipt) (*receipt.Receipt, error) {
	if _, ok := r.Inner.(*receipt.FakeReceipt); !ok {
		return nil, ErrDevMode
	}
	return r, nil
}

func (p *devModeProver) PeakMemoryUsage() uint64 { return 0 }
