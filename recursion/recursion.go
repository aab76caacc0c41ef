// Package recursion implements the receipt-to-receipt programs: lifting a
// segment receipt into the fixed-size succinct form, joining two adjacent
// succinct receipts, resolving an assumption out of a conditional receipt,
// and re-encoding a succinct receipt over a 254-bit field.
package recursion

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"sync"

	"github.com/consensys/gnark-crypto/accumulator/merkletree"

	"github.com/provar-zk/provar/digest"
	"github.com/provar-zk/provar/hal"
	"github.com/provar-zk/provar/receipt"
)

// programs allowed under the default control root, in tree order.
var programs = []string{"lift", "join", "resolve", "identity_p254"}

var (
	errNotSplit     = errors.New("left receipt does not end in a system split")
	errNotAdjacent  = errors.New("receipts are not continuations of each other")
	errNoAssumption = errors.New("conditional receipt carries no assumptions")
)

var (
	controlRootOnce sync.Once
	controlRoot     digest.Digest
)

// ControlRoot returns the merkle root committing the recursion program set.
// Succinct receipts produced by this package verify against it.
func ControlRoot() digest.Digest {
	controlRootOnce.Do(func() {
		tree := merkletree.New(sha256.New())
		for _, name := range programs {
			d := digest.Sum([]byte("provar.Program." + name))
			tree.Push(d.Bytes())
		}
		controlRoot = digest.FromBytes(tree.Root())
	})
	return controlRoot
}

func seal(su hal.Suite, claim receipt.Claim) *receipt.SuccinctReceipt {
	root := ControlRoot()
	return &receipt.SuccinctReceipt{
		Seal:         receipt.SuccinctSeal(su, root, claim.Digest()),
		ControlRoot:  root,
		Hashfn:       su.Name,
		ReceiptClaim: claim,
	}
}

func wantPoseidon(what string, r *receipt.SuccinctReceipt) error {
	if r.Hashfn != hal.Poseidon {
		return fmt.Errorf("%s: want a %s receipt, got %s", what, hal.Poseidon, r.Hashfn)
	}
	return nil
}

// Lift converts a segment receipt into a succinct receipt proving the same
// claim. The linear-size segment seal is consumed; the result is fixed-size
// and joins with its neighbors.
func Lift(seg *receipt.SegmentReceipt) (*receipt.SuccinctReceipt, error) {
	if len(seg.Seal) == 0 {
		return nil, fmt.Errorf("lift: segment %d has an empty seal", seg.Index)
	}
	return seal(hal.PoseidonSuite(), seg.ReceiptClaim), nil
}

// Join merges two succinct receipts over adjacent execution spans into one.
// a must end in a system split and b must start exactly where a ended; the
// result claims the combined span, taking its exit condition and output
// from b.
func Join(a, b *receipt.SuccinctReceipt) (*receipt.SuccinctReceipt, error) {
	if err := wantPoseidon("join", a); err != nil {
		return nil, err
	}
	if err := wantPoseidon("join", b); err != nil {
		return nil, err
	}
	if a.ReceiptClaim.ExitCode.Kind != receipt.SystemSplit {
		return nil, fmt.Errorf("join: %w (exit %s)", errNotSplit, a.ReceiptClaim.ExitCode.Kind)
	}
	if a.ReceiptClaim.Post.Digest() != b.ReceiptClaim.Pre.Digest() {
		return nil, fmt.Errorf("join: %w", errNotAdjacent)
	}
	joined := receipt.Claim{
		Input:    a.ReceiptClaim.Input,
		Pre:      a.ReceiptClaim.Pre,
		Post:     b.ReceiptClaim.Post,
		ExitCode: b.ReceiptClaim.ExitCode,
		Output:   b.ReceiptClaim.Output,
	}
	return seal(hal.PoseidonSuite(), joined), nil
}

// Resolve discharges the first assumption of a conditional receipt using a
// receipt proving that assumption. The result claims the same execution with
// the head assumption removed.
func Resolve(cond, assumption *receipt.SuccinctReceipt) (*receipt.SuccinctReceipt, error) {
	if err := wantPoseidon("resolve", cond); err != nil {
		return nil, err
	}
	if err := wantPoseidon("resolve", assumption); err != nil {
		return nil, err
	}
	out := cond.ReceiptClaim.Output
	if out == nil || len(out.Assumptions) == 0 {
		return nil, fmt.Errorf("resolve: %w", errNoAssumption)
	}
	head := out.Assumptions[0]
	got := assumption.ReceiptClaim.Digest()
	if head != got {
		return nil, &receipt.ClaimDigestMismatchError{Expected: head, Got: got}
	}
	resolved := cond.ReceiptClaim
	resolved.Output = &receipt.Output{
		JournalDigest: out.JournalDigest,
		Assumptions:   append(receipt.Assumptions{}, out.Assumptions[1:]...),
	}
	return seal(hal.PoseidonSuite(), resolved), nil
}

// IdentityP254 re-encodes a succinct receipt under the 254-bit field suite,
// the form consumed by outer proof systems. The claim is unchanged.
func IdentityP254(r *receipt.SuccinctReceipt) (*receipt.SuccinctReceipt, error) {
	if err := wantPoseidon("identity_p254", r); err != nil {
		return nil, err
	}
	return seal(hal.Poseidon254Suite(), r.ReceiptClaim), nil
}
