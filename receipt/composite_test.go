package receipt

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/provar-zk/provar/digest"
)

func chainClaims(n int) []Claim {
	states := make([]SystemState, n+1)
	for i := range states {
		states[i] = SystemState{PC: uint32(0x1000 + i), MerkleRoot: digest.Sum([]byte{byte(i + 1)})}
	}
	claims := make([]Claim, n)
	for i := range claims {
		claims[i] = Claim{
			Input:    digest.Sum([]byte("input")),
			Pre:      states[i],
			Post:     states[i+1],
			ExitCode: ExitCode{Kind: SystemSplit},
		}
	}
	claims[n-1].ExitCode = ExitCode{Kind: Halted}
	claims[n-1].Output = &Output{JournalDigest: digest.Sum([]byte("journal"))}
	return claims
}

func TestCompositeClaimSpansSegments(t *testing.T) {
	claims := chainClaims(3)
	var segments []*SegmentReceipt
	for i, c := range claims {
		segments = append(segments, &SegmentReceipt{Index: i, Hashfn: "sha-256", ReceiptClaim: c})
	}
	jd := digest.Sum([]byte("journal"))
	composite := &CompositeReceipt{Segments: segments, JournalDigest: &jd}

	claim, err := composite.Claim()
	require.NoError(t, err)
	require.Equal(t, claims[0].Pre, claim.Pre)
	require.Equal(t, claims[2].Post, claim.Post)
	require.Equal(t, ExitCode{Kind: Halted}, claim.ExitCode)
	require.NotNil(t, claim.Output)
	require.Equal(t, jd, claim.Output.JournalDigest)
	require.Empty(t, claim.Output.Assumptions, "carried assumptions count as discharged")
}

func TestCompositeClaimEmpty(t *testing.T) {
	composite := &CompositeReceipt{}
	_, err := composite.Claim()
	require.ErrorIs(t, err, ErrNoSegments)
	require.EqualError(t, err, "malformed composite receipt has no continuation segment receipts")
}

func TestCompositeVerifyEmpty(t *testing.T) {
	require.ErrorIs(t, (&CompositeReceipt{}).VerifyIntegrity(DefaultVerifierContext()), ErrNoSegments)
}

func TestCompositeVerifyIndexMismatch(t *testing.T) {
	claims := chainClaims(1)
	composite := &CompositeReceipt{Segments: []*SegmentReceipt{
		{Index: 5, Hashfn: "sha-256", ReceiptClaim: claims[0]},
	}}
	err := composite.VerifyIntegrity(DefaultVerifierContext())
	require.Error(t, err)
	require.ErrorContains(t, err, "position 0 has index 5")
}

func TestCompositeVerifyRejectsEmptySeal(t *testing.T) {
	claims := chainClaims(1)
	composite := &CompositeReceipt{Segments: []*SegmentReceipt{
		{Index: 0, Hashfn: "sha-256", ReceiptClaim: claims[0]},
	}}
	err := composite.VerifyIntegrity(DefaultVerifierContext())
	require.Error(t, err)
	require.ErrorContains(t, err, "malformed seal")
}
