// Package receipt defines the claims proven by the zkVM and the receipt
// representations that prove them: linear-size composites, fixed-size
// succinct receipts, the non-cryptographic dev-mode placeholder, and
// externally-wrapped proofs.
package receipt

import (
	"github.com/provar-zk/provar/digest"
)

// ExitKind classifies how a segment or session ended.
type ExitKind uint32

const (
	// Halted: the guest terminated normally with a user exit code.
	Halted ExitKind = iota
	// Paused: the guest suspended itself and can be resumed.
	Paused
	// SystemSplit: the segment ended because the host split the execution;
	// every non-final segment of a session exits this way.
	SystemSplit
	// SessionLimit: the session hit its cycle limit.
	SessionLimit
)

func (k ExitKind) String() string {
	switch k {
	case Halted:
		return "halted"
	case Paused:
		return "paused"
	case SystemSplit:
		return "system_split"
	case SessionLimit:
		return "session_limit"
	default:
		return "unknown"
	}
}

// ExitCode is the outcome recorded in a claim: a kind plus the guest's user
// exit value for Halted and Paused.
type ExitCode struct {
	Kind ExitKind
	User uint32
}

// Final reports whether this exit code ends a session (as opposed to a
// segment split).
func (e ExitCode) Final() bool {
	return e.Kind == Halted || e.Kind == Paused
}

func (e ExitCode) words() []uint32 {
	return []uint32{uint32(e.Kind), e.User}
}

// SystemState pins one machine state: the program counter and the merkle root
// of the memory image.
type SystemState struct {
	PC         uint32
	MerkleRoot digest.Digest
}

// Digest returns the canonical digest of the state.
func (s SystemState) Digest() digest.Digest {
	return digest.TagHash("provar.SystemState", []digest.Digest{s.MerkleRoot}, []uint32{s.PC})
}

// Assumptions is the ordered list of claim digests a conditional receipt
// still depends on. Resolution discharges them head-first.
type Assumptions []digest.Digest

// Digest returns the canonical digest of the assumption list. An empty and a
// nil list hash identically.
func (a Assumptions) Digest() digest.Digest {
	return digest.TagHash("provar.Assumptions", a, nil)
}

// Output is the public output of a final segment: the journal digest and the
// assumptions the proof is conditioned on.
type Output struct {
	JournalDigest digest.Digest
	Assumptions   Assumptions
}

// Digest returns the canonical digest of the output; a nil output hashes to
// the zero digest.
func (o *Output) Digest() digest.Digest {
	if o == nil {
		return digest.Digest{}
	}
	return digest.TagHash("provar.Output", []digest.Digest{o.JournalDigest, o.Assumptions.Digest()}, nil)
}

// Claim is the logical statement a receipt proves: starting from Pre with
// input Input, execution reached Post with the given exit code and output.
// The correctness invariant of the whole system is claim-digest equality
// between what was intended and what was proven.
type Claim struct {
	Input    digest.Digest
	Pre      SystemState
	Post     SystemState
	ExitCode ExitCode
	// Output is nil on non-final segments.
	Output *Output
}

// Digest returns the canonical digest of the claim.
func (c Claim) Digest() digest.Digest {
	down := []digest.Digest{
		c.Input,
		c.Pre.Digest(),
		c.Post.Digest(),
		c.Output.Digest(),
	}
	return digest.TagHash("provar.ReceiptClaim", down, c.ExitCode.words())
}
