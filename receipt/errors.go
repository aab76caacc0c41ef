package receipt

import (
	"errors"
	"fmt"

	"github.com/provar-zk/provar/digest"
)

var (
	// ErrNoSegments is returned when a composite receipt carries no
	// continuation segment receipts.
	ErrNoSegments = errors.New("malformed composite receipt has no continuation segment receipts")

	// ErrFakeReceipt is returned when a fake (dev-mode) receipt reaches a
	// verification context that does not accept it.
	ErrFakeReceipt = errors.New("fake receipt carries no cryptographic content")
)

// ClaimDigestMismatchError reports that a freshly produced receipt proves a
// different claim than intended. It always signals a proving defect or data
// corruption, never user error, and is never downgraded or retried.
type ClaimDigestMismatchError struct {
	Expected digest.Digest
	Got      digest.Digest
}

func (e *ClaimDigestMismatchError) Error() string {
	return fmt.Sprintf("claim digest mismatch: expected %s, got %s", e.Expected, e.Got)
}

// VerificationError reports an integrity-check failure with its cause.
type VerificationError struct {
	What  string
	Cause error
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("%s: %v", e.What, e.Cause)
}

func (e *VerificationError) Unwrap() error { return e.Cause }
