package prover

import (
	"errors"
	"fmt"

	"github.com/provar-zk/provar/receipt"
	"github.com/provar-zk/provar/recursion"
)

var (
	// ErrFakeAssumption is returned when a composite receipt conditioned on a
	// fake receipt is compressed; recursion cannot discharge what was never
	// proven.
	ErrFakeAssumption = errors.New("compressing composite receipts with fake receipt assumptions is not supported")

	// ErrGroth16Assumption is the analogous error for assumptions carried as
	// foreign wrapped proofs, which recursion cannot consume.
	ErrGroth16Assumption = errors.New("compressing composite receipts with groth16 receipt assumptions is not supported")
)

// Compress rewrites a receipt into its fixed-size succinct form, verifying
// the result and checking claim equality before handing it back. Receipts
// already succinct (or opaque wrapped forms) pass through unchanged.
func (p *ProverImpl) Compress(ctx *receipt.VerifierContext, r *receipt.Receipt) (*receipt.Receipt, error) {
	want, err := r.Claim()
	if err != nil {
		return nil, err
	}
	inner, err := p.compressInner(ctx, r.Inner)
	if err != nil {
		return nil, err
	}
	out := receipt.New(inner, r.Journal)
	if err := out.VerifyIntegrity(ctx); err != nil {
		return nil, fmt.Errorf("compressed receipt failed verification: %w", err)
	}
	return out, checkClaim("compressed receipt", want, inner)
}

// compressInner folds a composite receipt into a succinct one: segment
// receipts are lifted and joined pairwise in order, then every carried
// assumption is compressed itself and resolved out, head first.
func (p *ProverImpl) compressInner(ctx *receipt.VerifierContext, inner receipt.InnerReceipt) (receipt.InnerReceipt, error) {
	switch r := inner.(type) {
	case *receipt.CompositeReceipt:
		if len(r.Segments) == 0 {
			return nil, receipt.ErrNoSegments
		}
		cur, err := recursion.Lift(r.Segments[0])
		if err != nil {
			return nil, err
		}
		for _, seg := range r.Segments[1:] {
			next, err := recursion.Lift(seg)
			if err != nil {
				return nil, err
			}
			cur, err = recursion.Join(cur, next)
			if err != nil {
				return nil, err
			}
		}
		for i, a := range r.Assumptions {
			sa, err := p.compressAssumption(ctx, a)
			if err != nil {
				return nil, fmt.Errorf("assumption %d: %w", i, err)
			}
			cur, err = recursion.Resolve(cur, sa)
			if err != nil {
				return nil, fmt.Errorf("resolve assumption %d: %w", i, err)
			}
		}
		return cur, nil
	case *receipt.SuccinctReceipt, *receipt.FakeReceipt, *receipt.Groth16Receipt:
		return inner, nil
	default:
		return nil, fmt.Errorf("unknown receipt representation %T", inner)
	}
}

// compressAssumption brings an assumption receipt into the succinct form
// Resolve consumes.
func (p *ProverImpl) compressAssumption(ctx *receipt.VerifierContext, inner receipt.InnerReceipt) (*receipt.SuccinctReceipt, error) {
	switch r := inner.(type) {
	case *receipt.SuccinctReceipt:
		return r, nil
	case *receipt.CompositeReceipt:
		compressed, err := p.compressInner(ctx, r)
		if err != nil {
			return nil, err
		}
		return compressed.(*receipt.SuccinctReceipt), nil
	case *receipt.FakeReceipt:
		return nil, ErrFakeAssumption
	case *receipt.Groth16Receipt:
		return nil, ErrGroth16Assumption
	default:
		return nil, fmt.Errorf("unknown receipt representation %T", inner)
	}
}
