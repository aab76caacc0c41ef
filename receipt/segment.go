package receipt

import (
	"fmt"

	"github.com/provar-zk/provar/hal"
)

// SegmentReceipt proves the correct execution of one segment. It is produced
// at most once per segment and immutable afterwards.
type SegmentReceipt struct {
	// Seal is the opaque proof payload, in words.
	Seal []uint32
	// Index is the segment's position in its session.
	Index int
	// Hashfn names the hash suite the seal was produced under.
	Hashfn string
	// ReceiptClaim is the claim the seal proves.
	ReceiptClaim Claim
}

// Claim returns the claim this receipt proves.
func (r *SegmentReceipt) Claim() (Claim, error) {
	return r.ReceiptClaim, nil
}

// VerifyIntegrity replays the seal's transcript against the claim under the
// given context.
func (r *SegmentReceipt) VerifyIntegrity(ctx *VerifierContext) error {
	su, err := ctx.Suite(r.Hashfn)
	if err != nil {
		return &VerificationError{What: fmt.Sprintf("segment receipt %d", r.Index), Cause: err}
	}
	if r.ReceiptClaim.Pre.MerkleRoot.IsZero() {
		return &VerificationError{
			What:  fmt.Sprintf("segment receipt %d", r.Index),
			Cause: fmt.Errorf("claim has empty pre-state image root"),
		}
	}
	globals := hal.GlobalsDigest(r.ReceiptClaim.Pre.PC, r.ReceiptClaim.Pre.MerkleRoot)
	if err := hal.VerifySeal(su, r.Seal, globals); err != nil {
		return &VerificationError{What: fmt.Sprintf("segment receipt %d", r.Index), Cause: err}
	}
	return nil
}
