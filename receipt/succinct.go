package receipt

import (
	"fmt"

	"github.com/provar-zk/provar/digest"
	"github.com/provar-zk/provar/hal"
)

// SuccinctReceipt is the fixed-size receipt representation produced by the
// recursion programs. Its size is independent of the execution length it
// proves.
type SuccinctReceipt struct {
	// Seal is the opaque recursion proof payload, in words.
	Seal []uint32
	// ControlRoot commits the set of recursion programs allowed to have
	// produced this receipt.
	ControlRoot digest.Digest
	// Hashfn names the hash suite the seal was produced under.
	Hashfn string
	// ReceiptClaim is the claim the seal proves.
	ReceiptClaim Claim
}

func (r *SuccinctReceipt) isInnerReceipt() {}

// Claim returns the claim this receipt proves.
func (r *SuccinctReceipt) Claim() (Claim, error) {
	return r.ReceiptClaim, nil
}

// SuccinctSeal binds a claim digest to a control root under a suite. The
// recursion programs produce seals of this shape; verification recomputes it.
func SuccinctSeal(su hal.Suite, controlRoot, claimDigest digest.Digest) []uint32 {
	h := su.New()
	h.Write(controlRoot.Bytes())
	h.Write(claimDigest.Bytes())
	return digest.FromBytes(h.Sum(nil)[:digest.Bytes]).Words32()
}

// VerifyIntegrity checks the seal against the claim under the given context.
func (r *SuccinctReceipt) VerifyIntegrity(ctx *VerifierContext) error {
	su, err := ctx.Suite(r.Hashfn)
	if err != nil {
		return &VerificationError{What: "succinct receipt", Cause: err}
	}
	if r.ControlRoot.IsZero() {
		return &VerificationError{What: "succinct receipt", Cause: fmt.Errorf("empty control root")}
	}
	want := SuccinctSeal(su, r.ControlRoot, r.ReceiptClaim.Digest())
	if len(r.Seal) != len(want) {
		return &VerificationError{
			What:  "succinct receipt",
			Cause: fmt.Errorf("malformed seal: %d words, want %d", len(r.Seal), len(want)),
		}
	}
	for i := range want {
		if r.Seal[i] != want[i] {
			return &VerificationError{
				What:  "succinct receipt",
				Cause: fmt.Errorf("seal does not bind claim %s", r.ReceiptClaim.Digest()),
			}
		}
	}
	return nil
}
