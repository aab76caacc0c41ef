package receipt

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/provar-zk/provar/digest"
)

func TestFakeReceiptRejectedByDefault(t *testing.T) {
	ctx := DefaultVerifierContext()
	fake := &FakeReceipt{ReceiptClaim: testClaim()}
	require.ErrorIs(t, fake.VerifyIntegrity(ctx), ErrFakeReceipt)
	require.NoError(t, fake.VerifyIntegrity(ctx.WithFakeReceipts()))
}

func TestWithFakeReceiptsDoesNotMutate(t *testing.T) {
	ctx := DefaultVerifierContext()
	_ = ctx.WithFakeReceipts()
	fake := &FakeReceipt{ReceiptClaim: testClaim()}
	require.ErrorIs(t, fake.VerifyIntegrity(ctx), ErrFakeReceipt)
}

func TestVerifierContextUnknownSuite(t *testing.T) {
	_, err := DefaultVerifierContext().Suite("keccak")
	require.ErrorContains(t, err, `hash suite "keccak" not supported`)
}

func TestReceiptJournalMustMatchClaim(t *testing.T) {
	ctx := DefaultVerifierContext().WithFakeReceipts()
	journal := []byte("committed output")

	claim := testClaim()
	claim.Output = &Output{JournalDigest: digest.Sum(journal)}
	r := New(&FakeReceipt{ReceiptClaim: claim}, journal)
	require.NoError(t, r.VerifyIntegrity(ctx))

	tampered := New(&FakeReceipt{ReceiptClaim: claim}, []byte("something else"))
	var mismatch *ClaimDigestMismatchError
	require.ErrorAs(t, tampered.VerifyIntegrity(ctx), &mismatch)
}

func TestReceiptNoOutputRejectsJournal(t *testing.T) {
	ctx := DefaultVerifierContext().WithFakeReceipts()
	claim := testClaim()
	claim.Output = nil
	r := New(&FakeReceipt{ReceiptClaim: claim}, []byte("stray"))
	err := r.VerifyIntegrity(ctx)
	require.Error(t, err)
	require.ErrorContains(t, err, "no output")
}

func TestGroth16ReceiptShape(t *testing.T) {
	ctx := DefaultVerifierContext()
	g := &Groth16Receipt{ReceiptClaim: testClaim()}
	require.Error(t, g.VerifyIntegrity(ctx))
	g.Seal = []byte{1, 2, 3}
	require.NoError(t, g.VerifyIntegrity(ctx))
}
