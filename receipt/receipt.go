package receipt

import (
	"fmt"

	"github.com/provar-zk/provar/digest"
	"github.com/provar-zk/provar/hal"
)

// VerifierContext is the configuration governing what counts as a valid,
// supported receipt during integrity checks. It is passed through, never
// mutated, by the proving core.
type VerifierContext struct {
	suites     map[string]hal.Suite
	acceptFake bool
}

// NewVerifierContext returns a context accepting exactly the given suites.
func NewVerifierContext(suites ...hal.Suite) *VerifierContext {
	m := make(map[string]hal.Suite, len(suites))
	for _, su := range suites {
		m[su.Name] = su
	}
	return &VerifierContext{suites: m}
}

// DefaultVerifierContext accepts all built-in hash suites and rejects fake
// receipts.
func DefaultVerifierContext() *VerifierContext {
	return NewVerifierContext(hal.DefaultSuites()...)
}

// WithFakeReceipts returns a copy of the context that additionally accepts
// non-cryptographic dev-mode receipts. Never enable this outside development.
func (ctx *VerifierContext) WithFakeReceipts() *VerifierContext {
	cp := *ctx
	cp.acceptFake = true
	return &cp
}

// Suite resolves a hash suite name against the context's allow-list.
func (ctx *VerifierContext) Suite(name string) (hal.Suite, error) {
	su, ok := ctx.suites[name]
	if !ok {
		return hal.Suite{}, fmt.Errorf("hash suite %q not supported by verifier context", name)
	}
	return su, nil
}

// InnerReceipt is the tagged union over receipt representations: Composite,
// Succinct, Fake or Groth16-wrapped. The set of variants is closed.
type InnerReceipt interface {
	// Claim returns the claim this representation proves.
	Claim() (Claim, error)

	// VerifyIntegrity checks the representation against its own seals under
	// the given context.
	VerifyIntegrity(ctx *VerifierContext) error

	isInnerReceipt()
}

// Receipt is the externally handed-back artifact: a proven representation
// plus the raw journal bytes the guest committed.
type Receipt struct {
	Inner   InnerReceipt
	Journal []byte
}

// New wraps an inner representation and journal into a Receipt.
func New(inner InnerReceipt, journal []byte) *Receipt {
	return &Receipt{Inner: inner, Journal: journal}
}

// Claim returns the claim proven by the receipt's inner representation.
func (r *Receipt) Claim() (Claim, error) {
	return r.Inner.Claim()
}

// VerifyIntegrity checks the inner representation and that the carried
// journal bytes hash to the journal digest the claim commits to.
func (r *Receipt) VerifyIntegrity(ctx *VerifierContext) error {
	if err := r.Inner.VerifyIntegrity(ctx); err != nil {
		return err
	}
	claim, err := r.Inner.Claim()
	if err != nil {
		return err
	}
	if claim.Output != nil {
		if jd := digest.Sum(r.Journal); jd != claim.Output.JournalDigest {
			return &VerificationError{
				What:  "journal does not match claim",
				Cause: &ClaimDigestMismatchError{Expected: claim.Output.JournalDigest, Got: jd},
			}
		}
	} else if len(r.Journal) != 0 {
		return &VerificationError{
			What:  "journal does not match claim",
			Cause: fmt.Errorf("claim has no output but receipt carries %d journal bytes", len(r.Journal)),
		}
	}
	return nil
}
