package digest

import (
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSumMatchesSha256(t *testing.T) {
	msg := []byte("the quick brown fox")
	want := sha256.Sum256(msg)
	require.Equal(t, want[:], Sum(msg).Bytes())
}

func TestFromBytesRoundTrip(t *testing.T) {
	d := Sum([]byte("round trip"))
	require.Equal(t, d, FromBytes(d.Bytes()))
}

func TestFromBytesPanicsOnBadLength(t *testing.T) {
	require.Panics(t, func() { FromBytes(make([]byte, Bytes-1)) })
}

func TestTagHashDomainSeparation(t *testing.T) {
	down := []Digest{Sum([]byte("a")), Sum([]byte("b"))}
	data := []uint32{1, 2, 3}

	d1 := TagHash("provar.TagA", down, data)
	d2 := TagHash("provar.TagB", down, data)
	require.NotEqual(t, d1, d2, "different tags must not collide")

	d3 := TagHash("provar.TagA", []Digest{down[1], down[0]}, data)
	require.NotEqual(t, d1, d3, "digest order must matter")

	d4 := TagHash("provar.TagA", down, []uint32{1, 2, 4})
	require.NotEqual(t, d1, d4, "data must matter")
}

func TestTagHashDeterministic(t *testing.T) {
	down := []Digest{Sum([]byte("x"))}
	require.Equal(t, TagHash("provar.T", down, []uint32{7}), TagHash("provar.T", down, []uint32{7}))
}

func TestTagHashEmptyVsNil(t *testing.T) {
	require.Equal(t, TagHash("provar.T", nil, nil), TagHash("provar.T", []Digest{}, []uint32{}))
}

func TestIsZero(t *testing.T) {
	var zero Digest
	require.True(t, zero.IsZero())
	require.False(t, Sum([]byte("nonzero")).IsZero())
}
