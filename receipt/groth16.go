package receipt

import (
	"fmt"
)

// Groth16Receipt wraps a proof from a foreign proof system. Its seal encoding
// and verification belong to that system; this core only tracks the claim it
// asserts and treats the payload as opaque.
type Groth16Receipt struct {
	// Seal is the foreign proof, byte-encoded.
	Seal []byte
	// ReceiptClaim is the claim the foreign proof asserts.
	ReceiptClaim Claim
}

func (r *Groth16Receipt) isInnerReceipt() {}

// Claim returns the asserted claim.
func (r *Groth16Receipt) Claim() (Claim, error) {
	return r.ReceiptClaim, nil
}

// VerifyIntegrity checks the wrapper's shape. Cryptographic verification of
// the foreign proof is delegated to that system's verifier.
func (r *Groth16Receipt) VerifyIntegrity(_ *VerifierContext) error {
	if len(r.Seal) == 0 {
		return &VerificationError{What: "groth16 receipt", Cause: fmt.Errorf("empty seal")}
	}
	return nil
}
