package receipt

import (
	"fmt"

	"github.com/provar-zk/provar/digest"
)

// CompositeReceipt is the linear-size receipt representation: the ordered
// segment receipts of one session plus the receipts of the assumptions it
// depends on. Its size is proportional to segment count + assumption count.
type CompositeReceipt struct {
	// Segments holds the per-segment receipts in index order.
	Segments []*SegmentReceipt
	// Assumptions holds the inner representations proving the session's
	// assumptions, in the order the final segment lists them.
	Assumptions []InnerReceipt
	// JournalDigest commits the session journal; nil when the session
	// produced no output.
	JournalDigest *digest.Digest
}

func (r *CompositeReceipt) isInnerReceipt() {}

// Claim derives the top-level claim: the continuation from the first
// segment's pre-state to the last segment's post-state, with the carried
// assumption receipts considered discharged.
func (r *CompositeReceipt) Claim() (Claim, error) {
	if len(r.Segments) == 0 {
		return Claim{}, ErrNoSegments
	}
	first := r.Segments[0].ReceiptClaim
	last := r.Segments[len(r.Segments)-1].ReceiptClaim

	claim := Claim{
		Input:    first.Input,
		Pre:      first.Pre,
		Post:     last.Post,
		ExitCode: last.ExitCode,
	}
	if r.JournalDigest != nil {
		claim.Output = &Output{JournalDigest: *r.JournalDigest}
	} else if last.Output != nil {
		claim.Output = &Output{JournalDigest: last.Output.JournalDigest}
	}
	return claim, nil
}

// VerifyIntegrity checks every constituent receipt and the continuation
// invariants between them.
func (r *CompositeReceipt) VerifyIntegrity(ctx *VerifierContext) error {
	if len(r.Segments) == 0 {
		return ErrNoSegments
	}
	for i, seg := range r.Segments {
		if seg.Index != i {
			return &VerificationError{
				What:  "composite receipt",
				Cause: fmt.Errorf("segment receipt at position %d has index %d", i, seg.Index),
			}
		}
		if err := seg.VerifyIntegrity(ctx); err != nil {
			return err
		}
		final := i == len(r.Segments)-1
		if !final && seg.ReceiptClaim.ExitCode.Kind != SystemSplit {
			return &VerificationError{
				What:  "composite receipt",
				Cause: fmt.Errorf("non-final segment %d exits %s, want %s", i, seg.ReceiptClaim.ExitCode.Kind, SystemSplit),
			}
		}
		if i > 0 {
			prev := r.Segments[i-1].ReceiptClaim
			if prev.Post.Digest() != seg.ReceiptClaim.Pre.Digest() {
				return &VerificationError{
					What:  "composite receipt",
					Cause: fmt.Errorf("continuation gap between segments %d and %d", i-1, i),
				}
			}
		}
	}

	last := r.Segments[len(r.Segments)-1].ReceiptClaim
	var assumed Assumptions
	if last.Output != nil {
		assumed = last.Output.Assumptions
	}
	if len(assumed) != len(r.Assumptions) {
		return &VerificationError{
			What:  "composite receipt",
			Cause: fmt.Errorf("claim lists %d assumptions, receipt carries %d", len(assumed), len(r.Assumptions)),
		}
	}
	for i, a := range r.Assumptions {
		if err := a.VerifyIntegrity(ctx); err != nil {
			return &VerificationError{What: fmt.Sprintf("assumption %d", i), Cause: err}
		}
		claim, err := a.Claim()
		if err != nil {
			return &VerificationError{What: fmt.Sprintf("assumption %d", i), Cause: err}
		}
		if cd := claim.Digest(); cd != assumed[i] {
			return &VerificationError{
				What:  fmt.Sprintf("assumption %d", i),
				Cause: &ClaimDigestMismatchError{Expected: assumed[i], Got: cd},
			}
		}
	}

	if r.JournalDigest != nil {
		if last.Output == nil || last.Output.JournalDigest != *r.JournalDigest {
			return &VerificationError{
				What:  "composite receipt",
				Cause: fmt.Errorf("journal digest does not match final segment output"),
			}
		}
	}
	return nil
}
