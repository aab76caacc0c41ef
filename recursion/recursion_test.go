package recursion

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/provar-zk/provar/digest"
	"github.com/provar-zk/provar/hal"
	"github.com/provar-zk/provar/receipt"
)

func state(seed byte) receipt.SystemState {
	return receipt.SystemState{PC: uint32(0x1000 + int(seed)), MerkleRoot: digest.Sum([]byte{seed})}
}

func segmentReceipt(index int, pre, post receipt.SystemState, exit receipt.ExitCode, out *receipt.Output) *receipt.SegmentReceipt {
	return &receipt.SegmentReceipt{
		Seal:   []uint32{1, 2, 3},
		Index:  index,
		Hashfn: hal.Sha256,
		ReceiptClaim: receipt.Claim{
			Input:    digest.Sum([]byte("input")),
			Pre:      pre,
			Post:     post,
			ExitCode: exit,
			Output:   out,
		},
	}
}

func TestControlRootStable(t *testing.T) {
	require.Equal(t, ControlRoot(), ControlRoot())
	require.False(t, ControlRoot().IsZero())
}

func TestLift(t *testing.T) {
	seg := segmentReceipt(0, state(1), state(2), receipt.ExitCode{Kind: receipt.SystemSplit}, nil)
	sr, err := Lift(seg)
	require.NoError(t, err)
	require.Equal(t, hal.Poseidon, sr.Hashfn)
	require.Equal(t, ControlRoot(), sr.ControlRoot)
	require.Equal(t, seg.ReceiptClaim.Digest(), sr.ReceiptClaim.Digest(), "lift preserves the claim")
	require.NoError(t, sr.VerifyIntegrity(receipt.DefaultVerifierContext()))
}

func TestLiftRejectsEmptySeal(t *testing.T) {
	seg := segmentReceipt(2, state(1), state(2), receipt.ExitCode{Kind: receipt.SystemSplit}, nil)
	seg.Seal = nil
	_, err := Lift(seg)
	require.ErrorContains(t, err, "segment 2 has an empty seal")
}

func TestJoin(t *testing.T) {
	out := &receipt.Output{JournalDigest: digest.Sum([]byte("journal"))}
	a, err := Lift(segmentReceipt(0, state(1), state(2), receipt.ExitCode{Kind: receipt.SystemSplit}, nil))
	require.NoError(t, err)
	b, err := Lift(segmentReceipt(1, state(2), state(3), receipt.ExitCode{Kind: receipt.Halted}, out))
	require.NoError(t, err)

	joined, err := Join(a, b)
	require.NoError(t, err)
	require.Equal(t, state(1), joined.ReceiptClaim.Pre)
	require.Equal(t, state(3), joined.ReceiptClaim.Post)
	require.Equal(t, receipt.Halted, joined.ReceiptClaim.ExitCode.Kind)
	require.NotNil(t, joined.ReceiptClaim.Output)
	require.NoError(t, joined.VerifyIntegrity(receipt.DefaultVerifierContext()))

	// join is order sensitive
	_, err = Join(b, a)
	require.Error(t, err)
}

func TestJoinRequiresAdjacency(t *testing.T) {
	a, err := Lift(segmentReceipt(0, state(1), state(2), receipt.ExitCode{Kind: receipt.SystemSplit}, nil))
	require.NoError(t, err)
	c, err := Lift(segmentReceipt(1, state(9), state(3), receipt.ExitCode{Kind: receipt.Halted}, nil))
	require.NoError(t, err)

	_, err = Join(a, c)
	require.ErrorIs(t, err, errNotAdjacent)
}

func TestJoinRequiresSystemSplit(t *testing.T) {
	a, err := Lift(segmentReceipt(0, state(1), state(2), receipt.ExitCode{Kind: receipt.Halted}, nil))
	require.NoError(t, err)
	b, err := Lift(segmentReceipt(1, state(2), state(3), receipt.ExitCode{Kind: receipt.Halted}, nil))
	require.NoError(t, err)

	_, err = Join(a, b)
	require.ErrorIs(t, err, errNotSplit)
}

func TestResolve(t *testing.T) {
	assumed, err := Lift(segmentReceipt(0, state(7), state(8), receipt.ExitCode{Kind: receipt.Halted},
		&receipt.Output{JournalDigest: digest.Sum([]byte("assumed journal"))}))
	require.NoError(t, err)

	out := &receipt.Output{
		JournalDigest: digest.Sum([]byte("journal")),
		Assumptions:   receipt.Assumptions{assumed.ReceiptClaim.Digest()},
	}
	cond, err := Lift(segmentReceipt(0, state(1), state(2), receipt.ExitCode{Kind: receipt.Halted}, out))
	require.NoError(t, err)

	resolved, err := Resolve(cond, assumed)
	require.NoError(t, err)
	require.Empty(t, resolved.ReceiptClaim.Output.Assumptions)
	require.Equal(t, out.JournalDigest, resolved.ReceiptClaim.Output.JournalDigest)
	require.NoError(t, resolved.VerifyIntegrity(receipt.DefaultVerifierContext()))
}

func TestResolveHeadMismatch(t *testing.T) {
	assumed, err := Lift(segmentReceipt(0, state(7), state(8), receipt.ExitCode{Kind: receipt.Halted}, nil))
	require.NoError(t, err)

	out := &receipt.Output{
		JournalDigest: digest.Sum([]byte("journal")),
		Assumptions:   receipt.Assumptions{digest.Sum([]byte("someone else"))},
	}
	cond, err := Lift(segmentReceipt(0, state(1), state(2), receipt.ExitCode{Kind: receipt.Halted}, out))
	require.NoError(t, err)

	var mismatch *receipt.ClaimDigestMismatchError
	_, err = Resolve(cond, assumed)
	require.ErrorAs(t, err, &mismatch)
}

func TestResolveWithoutAssumptions(t *testing.T) {
	cond, err := Lift(segmentReceipt(0, state(1), state(2), receipt.ExitCode{Kind: receipt.Halted}, nil))
	require.NoError(t, err)
	_, err = Resolve(cond, cond)
	require.ErrorIs(t, err, errNoAssumption)
}

func TestIdentityP254(t *testing.T) {
	sr, err := Lift(segmentReceipt(0, state(1), state(2), receipt.ExitCode{Kind: receipt.Halted}, nil))
	require.NoError(t, err)

	p254, err := IdentityP254(sr)
	require.NoError(t, err)
	require.Equal(t, hal.Poseidon254, p254.Hashfn)
	require.Equal(t, sr.ReceiptClaim.Digest(), p254.ReceiptClaim.Digest())
	require.NoError(t, p254.VerifyIntegrity(receipt.DefaultVerifierContext()))

	// only poseidon receipts can be re-encoded again
	_, err = IdentityP254(p254)
	require.Error(t, err)
}
