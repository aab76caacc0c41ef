package receipt

// FakeReceipt is the dev-mode placeholder representation. It records the
// claim but proves nothing; only a verification context that explicitly
// accepts fake receipts will pass it.
type FakeReceipt struct {
	ReceiptClaim Claim
}

func (r *FakeReceipt) isInnerReceipt() {}

// Claim returns the recorded claim.
func (r *FakeReceipt) Claim() (Claim, error) {
	return r.ReceiptClaim, nil
}

// VerifyIntegrity succeeds only when the context accepts fake receipts. No
// cryptographic check of any kind is performed.
func (r *FakeReceipt) VerifyIntegrity(ctx *VerifierContext) error {
	if !ctx.acceptFake {
		return ErrFakeReceipt
	}
	return nil
}
