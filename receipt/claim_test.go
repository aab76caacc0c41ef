package receipt

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/provar-zk/provar/digest"
)

func testClaim() Claim {
	return Claim{
		Input: digest.Sum([]byte("input")),
		Pre:   SystemState{PC: 0x1000, MerkleRoot: digest.Sum([]byte("pre"))},
		Post:  SystemState{PC: 0x2000, MerkleRoot: digest.Sum([]byte("post"))},
		ExitCode: ExitCode{
			Kind: Halted,
		},
		Output: &Output{JournalDigest: digest.Sum([]byte("journal"))},
	}
}

func TestClaimDigestSensitivity(t *testing.T) {
	base := testClaim().Digest()

	c := testClaim()
	c.Pre.PC++
	require.NotEqual(t, base, c.Digest())

	c = testClaim()
	c.Post.MerkleRoot = digest.Sum([]byte("other"))
	require.NotEqual(t, base, c.Digest())

	c = testClaim()
	c.ExitCode = ExitCode{Kind: Halted, User: 1}
	require.NotEqual(t, base, c.Digest())

	c = testClaim()
	c.Output = nil
	require.NotEqual(t, base, c.Digest())

	require.Equal(t, base, testClaim().Digest())
}

func TestNilOutputDigestsToZero(t *testing.T) {
	var o *Output
	require.True(t, o.Digest().IsZero())
}

func TestAssumptionsNilAndEmptyHashEqual(t *testing.T) {
	var nilA Assumptions
	require.Equal(t, nilA.Digest(), Assumptions{}.Digest())

	withOne := Assumptions{digest.Sum([]byte("a"))}
	require.NotEqual(t, nilA.Digest(), withOne.Digest())
}

func TestExitCodeFinal(t *testing.T) {
	require.True(t, ExitCode{Kind: Halted}.Final())
	require.True(t, ExitCode{Kind: Paused}.Final())
	require.False(t, ExitCode{Kind: SystemSplit}.Final())
	require.False(t, ExitCode{Kind: SessionLimit}.Final())
}
