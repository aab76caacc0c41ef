package receipt

import (
	"bytes"
	"fmt"

	"github.com/blang/semver/v4"
	"github.com/consensys/compress/lzss"
	"github.com/fxamacker/cbor/v2"
	"github.com/ronanh/intcomp"
	"golang.org/x/crypto/blake2b"

	provar "github.com/provar-zk/provar"
	"github.com/provar-zk/provar/digest"
)

// Inner representation tags in the binary envelope.
const (
	kindComposite = 1
	kindSuccinct  = 2
	kindFake      = 3
	kindGroth16   = 4
)

// journals below this size are stored raw
const journalCompressThreshold = 64

type claimDTO struct {
	Input       []byte   `cbor:"1,keyasint"`
	PrePC       uint32   `cbor:"2,keyasint"`
	PreRoot     []byte   `cbor:"3,keyasint"`
	PostPC      uint32   `cbor:"4,keyasint"`
	PostRoot    []byte   `cbor:"5,keyasint"`
	ExitKind    uint32   `cbor:"6,keyasint"`
	ExitUser    uint32   `cbor:"7,keyasint"`
	HasOutput   bool     `cbor:"8,keyasint"`
	Journal     []byte   `cbor:"9,keyasint,omitempty"`
	Assumptions [][]byte `cbor:"10,keyasint,omitempty"`
}

type segmentDTO struct {
	Seal   []uint32  `cbor:"1,keyasint"`
	Index  int       `cbor:"2,keyasint"`
	Hashfn string    `cbor:"3,keyasint"`
	Claim  *claimDTO `cbor:"4,keyasint"`
}

type innerDTO struct {
	Kind          uint8         `cbor:"1,keyasint"`
	Claim         *claimDTO     `cbor:"2,keyasint,omitempty"`
	Seal          []uint32      `cbor:"3,keyasint,omitempty"`
	SealBytes     []byte        `cbor:"4,keyasint,omitempty"`
	ControlRoot   []byte        `cbor:"5,keyasint,omitempty"`
	Hashfn        string        `cbor:"6,keyasint,omitempty"`
	Segments      []*segmentDTO `cbor:"7,keyasint,omitempty"`
	Assumptions   []*innerDTO   `cbor:"8,keyasint,omitempty"`
	JournalDigest []byte        `cbor:"9,keyasint,omitempty"`
}

type payloadDTO struct {
	Inner      *innerDTO `cbor:"1,keyasint"`
	Journal    []byte    `cbor:"2,keyasint,omitempty"`
	JournalRaw bool      `cbor:"3,keyasint"`
}

type envelope struct {
	Version string `cbor:"1,keyasint"`
	Sum     []byte `cbor:"2,keyasint"`
	Payload []byte `cbor:"3,keyasint"`
}

func claimToDTO(c Claim) *claimDTO {
	dto := &claimDTO{
		Input:    c.Input.Bytes(),
		PrePC:    c.Pre.PC,
		PreRoot:  c.Pre.MerkleRoot.Bytes(),
		PostPC:   c.Post.PC,
		PostRoot: c.Post.MerkleRoot.Bytes(),
		ExitKind: uint32(c.ExitCode.Kind),
		ExitUser: c.ExitCode.User,
	}
	if c.Output != nil {
		dto.HasOutput = true
		dto.Journal = c.Output.JournalDigest.Bytes()
		for _, a := range c.Output.Assumptions {
			dto.Assumptions = append(dto.Assumptions, a.Bytes())
		}
	}
	return dto
}

func claimFromDTO(dto *claimDTO) (Claim, error) {
	if dto == nil {
		return Claim{}, fmt.Errorf("missing claim")
	}
	toDigest := func(b []byte, what string) (digest.Digest, error) {
		if len(b) != digest.Bytes {
			return digest.Digest{}, fmt.Errorf("%s: %d bytes, want %d", what, len(b), digest.Bytes)
		}
		return digest.FromBytes(b), nil
	}
	input, err := toDigest(dto.Input, "input digest")
	if err != nil {
		return Claim{}, err
	}
	preRoot, err := toDigest(dto.PreRoot, "pre-state root")
	if err != nil {
		return Claim{}, err
	}
	postRoot, err := toDigest(dto.PostRoot, "post-state root")
	if err != nil {
		return Claim{}, err
	}
	c := Claim{
		Input:    input,
		Pre:      SystemState{PC: dto.PrePC, MerkleRoot: preRoot},
		Post:     SystemState{PC: dto.PostPC, MerkleRoot: postRoot},
		ExitCode: ExitCode{Kind: ExitKind(dto.ExitKind), User: dto.ExitUser},
	}
	if dto.HasOutput {
		jd, err := toDigest(dto.Journal, "journal digest")
		if err != nil {
			return Claim{}, err
		}
		out := &Output{JournalDigest: jd}
		for i, a := range dto.Assumptions {
			ad, err := toDigest(a, fmt.Sprintf("assumption digest %d", i))
			if err != nil {
				return Claim{}, err
			}
			out.Assumptions = append(out.Assumptions, ad)
		}
		c.Output = out
	}
	return c, nil
}

func innerToDTO(inner InnerReceipt) (*innerDTO, error) {
	switch r := inner.(type) {
	case *CompositeReceipt:
		dto := &innerDTO{Kind: kindComposite}
		for _, seg := range r.Segments {
			dto.Segments = append(dto.Segments, &segmentDTO{
				Seal:   intcomp.CompressUint32(seg.Seal, nil),
				Index:  seg.Index,
				Hashfn: seg.Hashfn,
				Claim:  claimToDTO(seg.ReceiptClaim),
			})
		}
		for _, a := range r.Assumptions {
			adto, err := innerToDTO(a)
			if err != nil {
				return nil, err
			}
			dto.Assumptions = append(dto.Assumptions, adto)
		}
		if r.JournalDigest != nil {
			dto.JournalDigest = r.JournalDigest.Bytes()
		}
		return dto, nil
	case *SuccinctReceipt:
		return &innerDTO{
			Kind:        kindSuccinct,
			Claim:       claimToDTO(r.ReceiptClaim),
			Seal:        intcomp.CompressUint32(r.Seal, nil),
			ControlRoot: r.ControlRoot.Bytes(),
			Hashfn:      r.Hashfn,
		}, nil
	case *FakeReceipt:
		return &innerDTO{Kind: kindFake, Claim: claimToDTO(r.ReceiptClaim)}, nil
	case *Groth16Receipt:
		return &innerDTO{Kind: kindGroth16, Claim: claimToDTO(r.ReceiptClaim), SealBytes: r.Seal}, nil
	default:
		return nil, fmt.Errorf("unknown inner receipt type %T", inner)
	}
}

func innerFromDTO(dto *innerDTO) (InnerReceipt, error) {
	switch dto.Kind {
	case kindComposite:
		r := &CompositeReceipt{}
		for _, seg := range dto.Segments {
			claim, err := claimFromDTO(seg.Claim)
			if err != nil {
				return nil, err
			}
			r.Segments = append(r.Segments, &SegmentReceipt{
				Seal:         intcomp.UncompressUint32(seg.Seal, nil),
				Index:        seg.Index,
				Hashfn:       seg.Hashfn,
				ReceiptClaim: claim,
			})
		}
		for _, a := range dto.Assumptions {
			inner, err := innerFromDTO(a)
			if err != nil {
				return nil, err
			}
			r.Assumptions = append(r.Assumptions, inner)
		}
		if dto.JournalDigest != nil {
			if len(dto.JournalDigest) != digest.Bytes {
				return nil, fmt.Errorf("journal digest: %d bytes, want %d", len(dto.JournalDigest), digest.Bytes)
			}
			jd := digest.FromBytes(dto.JournalDigest)
			r.JournalDigest = &jd
		}
		return r, nil
	case kindSuccinct:
		claim, err := claimFromDTO(dto.Claim)
		if err != nil {
			return nil, err
		}
		if len(dto.ControlRoot) != digest.Bytes {
			return nil, fmt.Errorf("control root: %d bytes, want %d", len(dto.ControlRoot), digest.Bytes)
		}
		return &SuccinctReceipt{
			Seal:         intcomp.UncompressUint32(dto.Seal, nil),
			ControlRoot:  digest.FromBytes(dto.ControlRoot),
			Hashfn:       dto.Hashfn,
			ReceiptClaim: claim,
		}, nil
	case kindFake:
		claim, err := claimFromDTO(dto.Claim)
		if err != nil {
			return nil, err
		}
		return &FakeReceipt{ReceiptClaim: claim}, nil
	case kindGroth16:
		claim, err := claimFromDTO(dto.Claim)
		if err != nil {
			return nil, err
		}
		return &Groth16Receipt{Seal: dto.SealBytes, ReceiptClaim: claim}, nil
	default:
		return nil, fmt.Errorf("unknown inner receipt kind %d", dto.Kind)
	}
}

// MarshalBinary encodes the receipt into the versioned binary envelope.
func (r *Receipt) MarshalBinary() ([]byte, error) {
	inner, err := innerToDTO(r.Inner)
	if err != nil {
		return nil, err
	}
	p := payloadDTO{Inner: inner, JournalRaw: true, Journal: r.Journal}
	if len(r.Journal) >= journalCompressThreshold {
		compressor, err := lzss.NewCompressor(nil)
		if err != nil {
			return nil, err
		}
		c, err := compressor.Compress(r.Journal)
		if err != nil {
			return nil, err
		}
		if len(c) < len(r.Journal) {
			p.Journal = c
			p.JournalRaw = false
		}
	}
	payload, err := cbor.Marshal(&p)
	if err != nil {
		return nil, err
	}
	sum := blake2b.Sum256(payload)
	return cbor.Marshal(&envelope{
		Version: provar.Version.String(),
		Sum:     sum[:],
		Payload: payload,
	})
}

// UnmarshalBinary decodes a receipt from its binary envelope. Payloads from
// another major version or with a corrupted checksum are rejected.
func (r *Receipt) UnmarshalBinary(data []byte) error {
	var env envelope
	if err := cbor.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("decode receipt envelope: %w", err)
	}
	v, err := semver.Parse(env.Version)
	if err != nil {
		return fmt.Errorf("decode receipt envelope: bad version %q: %w", env.Version, err)
	}
	if v.Major != provar.Version.Major {
		return fmt.Errorf("incompatible receipt version %s, this is provar %s", env.Version, provar.Version)
	}
	sum := blake2b.Sum256(env.Payload)
	if !bytes.Equal(sum[:], env.Sum) {
		return fmt.Errorf("decode receipt envelope: checksum mismatch")
	}
	var p payloadDTO
	if err := cbor.Unmarshal(env.Payload, &p); err != nil {
		return fmt.Errorf("decode receipt payload: %w", err)
	}
	inner, err := innerFromDTO(p.Inner)
	if err != nil {
		return fmt.Errorf("decode receipt payload: %w", err)
	}
	journal := p.Journal
	if !p.JournalRaw {
		journal, err = lzss.Decompress(p.Journal, nil)
		if err != nil {
			return fmt.Errorf("decode receipt journal: %w", err)
		}
	}
	r.Inner = inner
	r.Journal = journal
	return nil
}
