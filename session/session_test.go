package session

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/provar-zk/provar/digest"
	"github.com/provar-zk/provar/receipt"
)

func testImage(t *testing.T, pc uint32, fill byte) *MemoryImage {
	t.Helper()
	img := NewMemoryImage(pc)
	page := make([]byte, PageSize)
	for i := range page {
		page[i] = fill
	}
	require.NoError(t, img.AddPage(0, page))
	return img
}

func TestMemoryImageRejectsBadPage(t *testing.T) {
	img := NewMemoryImage(0x1000)
	require.Error(t, img.AddPage(0, make([]byte, PageSize-1)))
	require.Error(t, img.AddPage(0, make([]byte, PageSize+1)))

	require.NoError(t, img.AddPage(0, make([]byte, PageSize)))
	require.Equal(t, uint(1), img.NumPages())
}

func TestMemoryImageRootInvalidatedOnWrite(t *testing.T) {
	img := testImage(t, 0x1000, 1)
	before := img.Root()

	page := make([]byte, PageSize)
	page[0] = 0xff
	require.NoError(t, img.AddPage(0, page))
	require.NotEqual(t, before, img.Root(), "overwriting a page must change the root")
}

func TestMemoryImageRoot(t *testing.T) {
	a := testImage(t, 0x1000, 1)
	b := testImage(t, 0x1000, 1)
	require.Equal(t, a.Root(), b.Root(), "identical images must share a root")

	c := testImage(t, 0x1000, 2)
	require.NotEqual(t, a.Root(), c.Root())

	empty := NewMemoryImage(0)
	require.NotEqual(t, digest.Digest{}, empty.Root(), "empty image root is a fixed non-zero value")
	require.Equal(t, empty.Root(), NewMemoryImage(0).Root())
}

func TestMemoryImageRootDependsOnPageIndex(t *testing.T) {
	page := make([]byte, PageSize)
	page[0] = 7

	a := NewMemoryImage(0)
	require.NoError(t, a.AddPage(0, page))
	b := NewMemoryImage(0)
	require.NoError(t, b.AddPage(1, page))
	require.NotEqual(t, a.Root(), b.Root())
}

func TestSegmentClaimWithinBound(t *testing.T) {
	img := testImage(t, 0x1000, 1)
	seg := &Segment{
		Index:    0,
		PO2:      4,
		Cycles:   16,
		PreImage: img,
		Post:     receipt.SystemState{PC: 0x2000, MerkleRoot: digest.Sum([]byte("post"))},
		ExitCode: receipt.ExitCode{Kind: receipt.Halted},
	}
	claim, err := seg.Claim()
	require.NoError(t, err)
	require.Equal(t, img.PC, claim.Pre.PC)
	require.Equal(t, img.Root(), claim.Pre.MerkleRoot)

	seg.Cycles = 17
	_, err = seg.Claim()
	require.ErrorContains(t, err, "exceed po2 bound")
}

func TestSegmentClaimNeedsPreImage(t *testing.T) {
	seg := &Segment{Index: 3}
	_, err := seg.Claim()
	require.ErrorContains(t, err, "segment 3 has no pre-state image")
}

func TestSessionClaim(t *testing.T) {
	img1 := testImage(t, 0x1000, 1)
	img2 := testImage(t, 0x2000, 2)
	journal := []byte("output")

	seg1 := &Segment{
		Index:    0,
		PO2:      4,
		PreImage: img1,
		Post:     receipt.SystemState{PC: img2.PC, MerkleRoot: img2.Root()},
		ExitCode: receipt.ExitCode{Kind: receipt.SystemSplit},
	}
	seg2 := &Segment{
		Index:    1,
		PO2:      4,
		PreImage: img2,
		Post:     receipt.SystemState{PC: 0x3000, MerkleRoot: img2.Root()},
		ExitCode: receipt.ExitCode{Kind: receipt.Halted},
		Output:   &receipt.Output{JournalDigest: digest.Sum(journal)},
	}
	s := &Session{
		Segments: []SegmentRef{NewSimpleSegmentRef(seg1), NewSimpleSegmentRef(seg2)},
		Journal:  journal,
		ExitCode: receipt.ExitCode{Kind: receipt.Halted},
	}

	claim, err := s.Claim()
	require.NoError(t, err)

	want := receipt.Claim{
		Pre:      receipt.SystemState{PC: img1.PC, MerkleRoot: img1.Root()},
		Post:     seg2.Post,
		ExitCode: receipt.ExitCode{Kind: receipt.Halted},
		Output:   &receipt.Output{JournalDigest: digest.Sum(journal)},
	}
	if diff := cmp.Diff(want, claim); diff != "" {
		t.Fatalf("session claim mismatch (-want +got):\n%s", diff)
	}
}

func TestSessionClaimEmpty(t *testing.T) {
	_, err := (&Session{}).Claim()
	require.Error(t, err)
}

func TestSimpleSegmentRef(t *testing.T) {
	seg := &Segment{Index: 1}
	got, err := NewSimpleSegmentRef(seg).Resolve()
	require.NoError(t, err)
	require.Same(t, seg, got)

	_, err = (&SimpleSegmentRef{}).Resolve()
	require.Error(t, err)
}
