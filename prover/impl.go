package prover

import (
	"fmt"

	"github.com/provar-zk/provar/debug"
	"github.com/provar-zk/provar/digest"
	"github.com/provar-zk/provar/hal"
	"github.com/provar-zk/provar/logger"
	"github.com/provar-zk/provar/receipt"
	"github.com/provar-zk/provar/recursion"
	"github.com/provar-zk/provar/session"
	"github.com/provar-zk/provar/witness"
)

// ProverImpl is the real proving service. One backend pair is constructed per
// server and shared across every segment of every session it proves.
type ProverImpl struct {
	pair hal.Pair
}

// NewProverImpl returns a proving service on the given backend pair.
func NewProverImpl(pair hal.Pair) *ProverImpl {
	return &ProverImpl{pair: pair}
}

// ProveSession proves every segment in order, assembles the composite
// receipt, and checks that the proven claim is exactly the session's claim
// before handing anything back. Under the poseidon suite the composite is
// further folded into a succinct receipt.
func (p *ProverImpl) ProveSession(ctx *receipt.VerifierContext, s *session.Session) (info *ProveInfo, err error) {
	// a panic in a backend or a session hook must not tear down the server
	defer func() {
		if r := recover(); r != nil {
			info = nil
			err = fmt.Errorf("prover panic: %v\n%s", r, debug.Stack())
		}
	}()

	log := logger.Logger().With().Str("hashfn", p.pair.Hal.Suite().Name).Logger()
	log.Info().Int("segments", len(s.Segments)).Msg("proving session")

	sessionClaim, err := s.Claim()
	if err != nil {
		return nil, err
	}

	var (
		segments []*receipt.SegmentReceipt
		stats    SessionStats
	)
	for i, ref := range s.Segments {
		seg, err := ref.Resolve()
		if err != nil {
			return nil, fmt.Errorf("resolve segment %d: %w", i, err)
		}
		for _, h := range s.Hooks {
			h.PreProveSegment(seg)
		}
		sr, err := p.ProveSegment(ctx, seg)
		if err != nil {
			return nil, fmt.Errorf("prove segment %d: %w", i, err)
		}
		for _, h := range s.Hooks {
			h.PostProveSegment(seg)
		}
		segments = append(segments, sr)
		stats.Segments++
		stats.TotalCycles += uint64(1) << seg.PO2
		stats.UserCycles += uint64(seg.Cycles)
	}

	assumptions := make([]receipt.InnerReceipt, 0, len(s.Assumptions))
	for _, a := range s.Assumptions {
		assumptions = append(assumptions, a.Inner)
	}
	journalDigest := digest.Sum(s.Journal)
	composite := &receipt.CompositeReceipt{
		Segments:      segments,
		Assumptions:   assumptions,
		JournalDigest: &journalDigest,
	}
	if err := composite.VerifyIntegrity(ctx); err != nil {
		return nil, fmt.Errorf("composite receipt failed verification: %w", err)
	}
	if err := checkClaim("composite receipt", sessionClaim, composite); err != nil {
		return nil, err
	}

	var inner receipt.InnerReceipt = composite
	if p.pair.Hal.Suite().Name == hal.Poseidon {
		inner, err = p.compressInner(ctx, composite)
		if err != nil {
			return nil, fmt.Errorf("compress session receipt: %w", err)
		}
	}

	r := receipt.New(inner, s.Journal)
	if err := r.VerifyIntegrity(ctx); err != nil {
		return nil, fmt.Errorf("session receipt failed verification: %w", err)
	}
	if err := checkClaim("session receipt", sessionClaim, r.Inner); err != nil {
		return nil, err
	}

	log.Info().
		Int("segments", stats.Segments).
		Uint64("totalCycles", stats.TotalCycles).
		Uint64("userCycles", stats.UserCycles).
		Msg("session proven")
	return &ProveInfo{Receipt: r, Stats: stats}, nil
}

// checkClaim compares the claim a freshly produced receipt proves against the
// claim it was meant to prove. A mismatch means the prover is defective and
// the receipt must not escape.
func checkClaim(what string, want digest.Digestible, inner receipt.InnerReceipt) error {
	got, err := inner.Claim()
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	if wd, gd := want.Digest(), got.Digest(); wd != gd {
		return fmt.Errorf("%s: %w", what, &receipt.ClaimDigestMismatchError{Expected: wd, Got: gd})
	}
	return nil
}

// ProveSegment regenerates the segment witness, runs the commit/challenge
// transcript against the backend, and verifies the resulting receipt before
// returning it.
func (p *ProverImpl) ProveSegment(ctx *receipt.VerifierContext, seg *session.Segment) (*receipt.SegmentReceipt, error) {
	claim, err := seg.Claim()
	if err != nil {
		return nil, err
	}
	log := logger.Logger()
	log.Debug().Int("segment", seg.Index).Int("po2", seg.PO2).Msg("proving segment")

	io, err := witness.PrepareGlobals(seg)
	if err != nil {
		return nil, err
	}
	exec := witness.NewExecutor(witness.NewMachineContext(seg), seg.PO2, io)
	if err := exec.Run(); err != nil {
		return nil, fmt.Errorf("segment %d witness replay: %w", seg.Index, err)
	}
	adapter, err := witness.NewAdapter(exec)
	if err != nil {
		return nil, err
	}

	tp := hal.NewTraceProver(p.pair, hal.GlobalsDigest(claim.Pre.PC, claim.Pre.MerkleRoot))
	tp.SetPO2(seg.PO2)

	if err := tp.CommitGroup(hal.GroupCode, p.pair.Hal.CopyFromElem("code", adapter.Code())); err != nil {
		return nil, err
	}
	if err := tp.CommitGroup(hal.GroupData, p.pair.Hal.CopyFromElem("data", adapter.Data())); err != nil {
		return nil, err
	}
	challenge, err := tp.AccumChallenge()
	if err != nil {
		return nil, err
	}
	if err := adapter.Accumulate(challenge); err != nil {
		return nil, err
	}
	accum, err := adapter.Accum()
	if err != nil {
		return nil, err
	}
	if err := tp.CommitGroup(hal.GroupAccum, p.pair.Hal.CopyFromElem("accum", accum)); err != nil {
		return nil, err
	}
	mix, err := adapter.Mix()
	if err != nil {
		return nil, err
	}
	seal, err := tp.Finalize(
		p.pair.Hal.CopyFromElem("mix", mix),
		p.pair.Hal.CopyFromElem("out", adapter.Out()),
	)
	if err != nil {
		return nil, fmt.Errorf("segment %d finalize: %w", seg.Index, err)
	}

	sr := &receipt.SegmentReceipt{
		Seal:         seal,
		Index:        seg.Index,
		Hashfn:       p.pair.Hal.Suite().Name,
		ReceiptClaim: claim,
	}
	if err := sr.VerifyIntegrity(ctx); err != nil {
		return nil, fmt.Errorf("segment %d receipt failed verification: %w", seg.Index, err)
	}
	return sr, nil
}

func (p *ProverImpl) Lift(seg *receipt.SegmentReceipt) (*receipt.SuccinctReceipt, error) {
	return recursion.Lift(seg)
}

func (p *ProverImpl) Join(a, b *receipt.SuccinctReceipt) (*receipt.SuccinctReceipt, error) {
	return recursion.Join(a, b)
}

func (p *ProverImpl) Resolve(cond, assumption *receipt.SuccinctReceipt) (*receipt.SuccinctReceipt, error) {
	return recursion.Resolve(cond, assumption)
}

func (p *ProverImpl) IdentityP254(r *receipt.SuccinctReceipt) (*receipt.SuccinctReceipt, error) {
	return recursion.IdentityP254(r)
}

// PeakMemoryUsage reports the peak bytes staged on the proving backend.
func (p *ProverImpl) PeakMemoryUsage() uint64 {
	return p.pair.Hal.MemoryUsage()
}
