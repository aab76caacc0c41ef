package hal

import (
	"encoding/binary"
	"errors"
	"fmt"

	fiatshamir "github.com/consensys/gnark-crypto/fiat-shamir"

	"github.com/provar-zk/provar/digest"
)

// Seal layout, in 32-bit words: po2, then the code, data, accum, mix and out
// roots, then the check digest. The layout is an internal contract between
// the transcript prover and VerifySeal; callers treat seals as opaque.
const (
	sealPO2Off   = 0
	sealRootsOff = 1
	sealCheckOff = sealRootsOff + 5*digest.Words

	// SealWords is the fixed word length of a segment seal.
	SealWords = sealCheckOff + digest.Words
)

// Transcript challenge identifiers, in derivation order.
const (
	challengeAccum = "accum"
	challengeFinal = "final"
)

var (
	errGroupOrder  = errors.New("register group committed out of order")
	errNotFinished = errors.New("register groups not fully committed")
)

// TraceProver runs the interactive commit/challenge protocol for one segment
// against a backend pair. Register groups must be committed in order: code,
// data, accum. The accumulator values are gated by the challenge returned
// from AccumChallenge, which in turn depends on the first two commitments, so
// the sequence cannot be reordered.
type TraceProver struct {
	pair    Pair
	fs      *fiatshamir.Transcript
	po2     int
	globals digest.Digest
	roots   [NumGroups]digest.Digest
	next    RegisterGroup
	bound   bool
}

// NewTraceProver opens a transcript for a segment whose public globals hash
// to the given digest.
func NewTraceProver(pair Pair, globals digest.Digest) *TraceProver {
	su := pair.Hal.Suite()
	return &TraceProver{
		pair:    pair,
		fs:      fiatshamir.NewTranscript(su.New(), challengeAccum, challengeFinal),
		globals: globals,
	}
}

// SetPO2 records the segment's power-of-two cycle bound.
func (p *TraceProver) SetPO2(po2 int) {
	p.po2 = po2
}

func (p *TraceProver) bindHeader() error {
	if p.bound {
		return nil
	}
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(p.po2))
	if err := p.fs.Bind(challengeAccum, b[:]); err != nil {
		return err
	}
	if err := p.fs.Bind(challengeAccum, p.globals.Bytes()); err != nil {
		return err
	}
	p.bound = true
	return nil
}

// CommitGroup commits one register group. Groups must arrive in order.
func (p *TraceProver) CommitGroup(g RegisterGroup, buf Buffer) error {
	if g != p.next {
		return fmt.Errorf("%w: got %s, want %s", errGroupOrder, g, p.next)
	}
	if err := p.bindHeader(); err != nil {
		return err
	}
	root, err := p.pair.Hal.CommitRoot(buf)
	if err != nil {
		return fmt.Errorf("commit %s: %w", g, err)
	}
	challenge := challengeAccum
	if g == GroupAccum {
		challenge = challengeFinal
	}
	if err := p.fs.Bind(challenge, root.Bytes()); err != nil {
		return err
	}
	p.roots[g] = root
	p.next++
	return nil
}

// AccumChallenge derives the randomness gating the accumulator trace. It is
// only available once the code and data groups are committed.
func (p *TraceProver) AccumChallenge() ([]byte, error) {
	if p.next != GroupAccum {
		return nil, fmt.Errorf("accum challenge requires code and data commitments, next group is %s", p.next)
	}
	return p.fs.ComputeChallenge(challengeAccum)
}

// Finalize commits the mix and out buffers as named openings and closes the
// transcript, yielding the seal.
func (p *TraceProver) Finalize(mix, out Buffer) ([]uint32, error) {
	if p.next != NumGroups {
		return nil, errNotFinished
	}
	mixRoot, err := p.pair.Hal.CommitRoot(mix)
	if err != nil {
		return nil, fmt.Errorf("commit mix opening: %w", err)
	}
	outRoot, err := p.pair.Hal.CommitRoot(out)
	if err != nil {
		return nil, fmt.Errorf("commit out opening: %w", err)
	}
	if err := p.fs.Bind(challengeFinal, mixRoot.Bytes()); err != nil {
		return nil, err
	}
	if err := p.fs.Bind(challengeFinal, outRoot.Bytes()); err != nil {
		return nil, err
	}
	challenge, err := p.fs.ComputeChallenge(challengeFinal)
	if err != nil {
		return nil, err
	}
	check := p.pair.Circuit.SealCheck(challenge, mixRoot, outRoot)

	seal := make([]uint32, 0, SealWords)
	seal = append(seal, uint32(p.po2))
	for _, root := range [5]digest.Digest{p.roots[GroupCode], p.roots[GroupData], p.roots[GroupAccum], mixRoot, outRoot} {
		seal = append(seal, root.Words32()...)
	}
	seal = append(seal, check.Words32()...)
	return seal, nil
}

func sealRoot(seal []uint32, i int) digest.Digest {
	var d digest.Digest
	copy(d[:], seal[sealRootsOff+i*digest.Words:])
	return d
}

// VerifySeal replays the commit/challenge transcript from the roots recorded
// in a seal and checks the embedded consistency digest. globals must be
// recomputed from the claim the seal is presented for; a seal produced for
// different globals, or with its roots reordered, fails here.
func VerifySeal(su Suite, seal []uint32, globals digest.Digest) error {
	if len(seal) != SealWords {
		return fmt.Errorf("malformed seal: %d words, want %d", len(seal), SealWords)
	}
	fs := fiatshamir.NewTranscript(su.New(), challengeAccum, challengeFinal)
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], seal[sealPO2Off])
	if err := fs.Bind(challengeAccum, b[:]); err != nil {
		return err
	}
	if err := fs.Bind(challengeAccum, globals.Bytes()); err != nil {
		return err
	}
	code, data, accum, mix, out := sealRoot(seal, 0), sealRoot(seal, 1), sealRoot(seal, 2), sealRoot(seal, 3), sealRoot(seal, 4)
	if err := fs.Bind(challengeAccum, code.Bytes()); err != nil {
		return err
	}
	if err := fs.Bind(challengeAccum, data.Bytes()); err != nil {
		return err
	}
	if _, err := fs.ComputeChallenge(challengeAccum); err != nil {
		return err
	}
	if err := fs.Bind(challengeFinal, accum.Bytes()); err != nil {
		return err
	}
	if err := fs.Bind(challengeFinal, mix.Bytes()); err != nil {
		return err
	}
	if err := fs.Bind(challengeFinal, out.Bytes()); err != nil {
		return err
	}
	challenge, err := fs.ComputeChallenge(challengeFinal)
	if err != nil {
		return err
	}
	check := Check(su, challenge, mix, out)
	var got digest.Digest
	copy(got[:], seal[sealCheckOff:])
	if check != got {
		return fmt.Errorf("seal check mismatch: computed %s, sealed %s", check, got)
	}
	return nil
}
