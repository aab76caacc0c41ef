// Package prover implements the host-side proving service: it turns recorded
// sessions and segments into receipts, folds composite receipts into succinct
// ones through the recursion programs, and selects a hardware backend for the
// work.
package prover

import (
	"errors"
	"fmt"

	"github.com/provar-zk/provar/hal"
	"github.com/provar-zk/provar/hal/cpu"
	"github.com/provar-zk/provar/hal/cuda"
	"github.com/provar-zk/provar/hal/zeknox"
	"github.com/provar-zk/provar/logger"
	"github.com/provar-zk/provar/receipt"
	"github.com/provar-zk/provar/session"
)

// ErrDevMode is returned by dev-mode prover operations that have no
// meaningful non-cryptographic counterpart.
var ErrDevMode = errors.New("operation not supported in dev mode")

// Opts configures a proving service.
type Opts struct {
	// Hashfn names the hash suite seals are produced under.
	Hashfn string
	// DevMode replaces proving with non-cryptographic fake receipts.
	DevMode bool
}

// DefaultOpts returns the production defaults: poseidon seals, recursion
// available.
func DefaultOpts() Opts {
	return Opts{Hashfn: hal.Poseidon}
}

// SessionStats summarizes one proven session.
type SessionStats struct {
	// Segments is the number of segment proofs produced.
	Segments int
	// TotalCycles is the padded cycle count actually proven, summed over
	// segments.
	TotalCycles uint64
	// UserCycles is the number of recorded guest cycles.
	UserCycles uint64
}

// ProveInfo is the result of proving a session: the receipt plus statistics
// about the work performed.
type ProveInfo struct {
	Receipt *receipt.Receipt
	Stats   SessionStats
}

// ProverServer is the host-side proving interface. Implementations are safe
// for sequential use; a session's segments are proven in order on one server.
type ProverServer interface {
	// ProveSession proves every segment of a session and assembles, checks
	// and returns the session receipt.
	ProveSession(ctx *receipt.VerifierContext, s *session.Session) (*ProveInfo, error)

	// ProveSegment proves a single segment.
	ProveSegment(ctx *receipt.VerifierContext, seg *session.Segment) (*receipt.SegmentReceipt, error)

	// Lift converts a segment receipt into a succinct receipt.
	Lift(seg *receipt.SegmentReceipt) (*receipt.SuccinctReceipt, error)

	// Join merges two succinct receipts over adjacent spans.
	Join(a, b *receipt.SuccinctReceipt) (*receipt.SuccinctReceipt, error)

	// Resolve discharges the head assumption of a conditional receipt.
	Resolve(cond, assumption *receipt.SuccinctReceipt) (*receipt.SuccinctReceipt, error)

	// IdentityP254 re-encodes a succinct receipt over the 254-bit field.
	IdentityP254(r *receipt.SuccinctReceipt) (*receipt.SuccinctReceipt, error)

	// Compress rewrites a receipt into its fixed-size succinct form. Receipts
	// already at or past that form are returned unchanged.
	Compress(ctx *receipt.VerifierContext, r *receipt.Receipt) (*receipt.Receipt, error)

	// PeakMemoryUsage reports the peak bytes staged on the proving backend.
	PeakMemoryUsage() uint64
}

// GetProverServer returns the proving service for the given options. In dev
// mode no cryptography runs at all; otherwise the fastest compiled-in backend
// serving the requested hashfn is selected.
func GetProverServer(opts Opts) (ProverServer, error) {
	if opts.DevMode {
		log := logger.Logger()
		log.Warn().Msg("proving in dev mode; receipts carry no cryptographic content and must never be used in production")
		return &devModeProver{}, nil
	}
	pair, err := newPair(opts.Hashfn)
	if err != nil {
		return nil, err
	}
	return NewProverImpl(pair), nil
}

func newPair(hashfn string) (hal.Pair, error) {
	switch {
	case cuda.HasCuda:
		return cuda.NewPair(hashfn)
	case zeknox.HasZeknox:
		return zeknox.NewPair(hashfn)
	default:
		return cpu.NewPair(hashfn)
	}
}

// Prove is the convenience entry point: it proves a session with the given
// options against the default verification context.
func Prove(opts Opts, s *session.Session) (*ProveInfo, error) {
	server, err := GetProverServer(opts)
	if err != nil {
		return nil, err
	}
	ctx := receipt.DefaultVerifierContext()
	if opts.DevMode {
		ctx = ctx.WithFakeReceipts()
	}
	info, err := server.ProveSession(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("prove session: %w", err)
	}
	return info, nil
}
