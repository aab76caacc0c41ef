// Package provar is the host-side orchestration layer of a zkVM prover: given
// the recorded execution of a guest program, it produces a cryptographic
// receipt proving correct execution, verifiable without re-execution.
//
// The module is organised around a small set of packages:
//   - session: the recorded execution (segments, journal, assumptions)
//   - receipt: claims and the receipt representations proving them
//   - hal: the hardware abstraction the segment prover drives
//   - recursion: lift/join/resolve, the claim-transforming recursion programs
//   - prover: the proving service, its local implementation and backend selection
package provar

import (
	"github.com/blang/semver/v4"

	"github.com/provar-zk/provar/hal"
)

// Version of the provar module. Encoded receipts record it; decoding rejects
// payloads from another major version.
var Version = semver.MustParse("0.3.0")

// HashSuites returns the hash suite names a prover can be constructed with.
func HashSuites() []string {
	return []string{hal.Sha256, hal.Poseidon}
}
