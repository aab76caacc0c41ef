package cpu

import (
	"testing"

	"github.com/consensys/gnark-crypto/field/babybear"
	"github.com/stretchr/testify/require"

	"github.com/provar-zk/provar/digest"
	"github.com/provar-zk/provar/hal"
)

func elems(t *testing.T, n int, seed uint64) []babybear.Element {
	t.Helper()
	v := make([]babybear.Element, n)
	for i := range v {
		v[i].SetUint64(seed + uint64(i)*2654435761)
	}
	return v
}

func TestNewPairUnknownHashfn(t *testing.T) {
	_, err := NewPair("keccak")
	require.EqualError(t, err, "unsupported hashfn: keccak")

	_, err = NewPair(hal.Poseidon254)
	require.Error(t, err, "the 254-bit suite is for re-encoding, not segment proving")
}

func TestCommitRootDeterministic(t *testing.T) {
	for _, hashfn := range []string{hal.Sha256, hal.Poseidon} {
		t.Run(hashfn, func(t *testing.T) {
			pair, err := NewPair(hashfn)
			require.NoError(t, err)

			v := elems(t, 1000, 7)
			buf := pair.Hal.CopyFromElem("test", v)
			r1, err := pair.Hal.CommitRoot(buf)
			require.NoError(t, err)
			r2, err := pair.Hal.CommitRoot(buf)
			require.NoError(t, err)
			require.Equal(t, r1, r2, "same buffer must commit to the same root")

			other := pair.Hal.CopyFromElem("test", elems(t, 1000, 8))
			r3, err := pair.Hal.CommitRoot(other)
			require.NoError(t, err)
			require.NotEqual(t, r1, r3)
		})
	}
}

func TestCommitRootEmptyBuffer(t *testing.T) {
	pair, err := NewPair(hal.Sha256)
	require.NoError(t, err)
	_, err = pair.Hal.CommitRoot(pair.Hal.CopyFromElem("empty", nil))
	require.Error(t, err)
}

func TestMemoryUsageTracksPeak(t *testing.T) {
	h := NewHal(hal.Sha256Suite())
	require.Zero(t, h.MemoryUsage())
	h.CopyFromElem("a", elems(t, 100, 1))
	require.Equal(t, uint64(100*babybear.Bytes), h.MemoryUsage())
	h.CopyFromElem("b", elems(t, 50, 2))
	require.Equal(t, uint64(150*babybear.Bytes), h.MemoryUsage())
}

func TestTraceProverEnforcesGroupOrder(t *testing.T) {
	pair, err := NewPair(hal.Sha256)
	require.NoError(t, err)

	tp := hal.NewTraceProver(pair, digest.Sum([]byte("globals")))
	tp.SetPO2(4)
	err = tp.CommitGroup(hal.GroupData, pair.Hal.CopyFromElem("data", elems(t, 16, 1)))
	require.ErrorContains(t, err, "out of order")

	_, err = tp.AccumChallenge()
	require.Error(t, err, "challenge before code and data commitments")
}

func TestTraceProverFinalizeRequiresAllGroups(t *testing.T) {
	pair, err := NewPair(hal.Sha256)
	require.NoError(t, err)

	tp := hal.NewTraceProver(pair, digest.Sum([]byte("globals")))
	tp.SetPO2(4)
	require.NoError(t, tp.CommitGroup(hal.GroupCode, pair.Hal.CopyFromElem("code", elems(t, 16, 1))))
	_, err = tp.Finalize(
		pair.Hal.CopyFromElem("mix", elems(t, 4, 2)),
		pair.Hal.CopyFromElem("out", elems(t, 4, 3)),
	)
	require.Error(t, err)
}

func proveSeal(t *testing.T, pair hal.Pair, globals digest.Digest) []uint32 {
	t.Helper()
	tp := hal.NewTraceProver(pair, globals)
	tp.SetPO2(4)
	require.NoError(t, tp.CommitGroup(hal.GroupCode, pair.Hal.CopyFromElem("code", elems(t, 256, 1))))
	require.NoError(t, tp.CommitGroup(hal.GroupData, pair.Hal.CopyFromElem("data", elems(t, 512, 2))))
	challenge, err := tp.AccumChallenge()
	require.NoError(t, err)
	require.NotEmpty(t, challenge)
	require.NoError(t, tp.CommitGroup(hal.GroupAccum, pair.Hal.CopyFromElem("accum", elems(t, 128, 3))))
	seal, err := tp.Finalize(
		pair.Hal.CopyFromElem("mix", elems(t, 36, 4)),
		pair.Hal.CopyFromElem("out", elems(t, 68, 5)),
	)
	require.NoError(t, err)
	return seal
}

func TestSealRoundTrip(t *testing.T) {
	for _, hashfn := range []string{hal.Sha256, hal.Poseidon} {
		t.Run(hashfn, func(t *testing.T) {
			pair, err := NewPair(hashfn)
			require.NoError(t, err)
			globals := digest.Sum([]byte("globals"))

			seal := proveSeal(t, pair, globals)
			require.Len(t, seal, hal.SealWords)
			require.NoError(t, hal.VerifySeal(pair.Hal.Suite(), seal, globals))
		})
	}
}

func TestVerifySealRejectsTampering(t *testing.T) {
	pair, err := NewPair(hal.Sha256)
	require.NoError(t, err)
	globals := digest.Sum([]byte("globals"))
	seal := proveSeal(t, pair, globals)

	require.Error(t, hal.VerifySeal(pair.Hal.Suite(), seal, digest.Sum([]byte("other globals"))),
		"seal must be bound to its globals")

	for _, off := range []int{0, 1, 10, len(seal) - 1} {
		tampered := append([]uint32(nil), seal...)
		tampered[off] ^= 1
		require.Error(t, hal.VerifySeal(pair.Hal.Suite(), tampered, globals), "offset %d", off)
	}

	require.Error(t, hal.VerifySeal(pair.Hal.Suite(), seal[:len(seal)-1], globals))
}
