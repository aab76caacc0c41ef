// Package cpu implements the reference HAL backend. It stages buffers in host
// memory and computes commitments with the configured hash suite, hashing
// merkle leaves in parallel.
package cpu

import (
	"fmt"
	"runtime"

	"github.com/consensys/gnark-crypto/accumulator/merkletree"
	"github.com/consensys/gnark-crypto/field/babybear"
	"golang.org/x/sync/errgroup"

	"github.com/provar-zk/provar/digest"
	"github.com/provar-zk/provar/hal"
)

// elements per merkle leaf; fixed so commitments do not depend on the number
// of workers
const leafElems = 256

type buffer struct {
	name string
	v    []babybear.Element
}

func (b *buffer) Name() string                 { return b.name }
func (b *buffer) Len() int                     { return len(b.v) }
func (b *buffer) Elements() []babybear.Element { return b.v }

// Hal is the CPU backend handle. It is immutable after construction apart
// from the staging accounting, which is only touched under the prover's
// sequential contract.
type Hal struct {
	su   hal.Suite
	cur  uint64
	peak uint64
}

// NewHal returns a CPU backend for the given suite.
func NewHal(su hal.Suite) *Hal {
	return &Hal{su: su}
}

// NewPair returns a CPU backend pair for the requested hashfn.
func NewPair(hashfn string) (hal.Pair, error) {
	su, err := hal.SuiteByName(hashfn)
	if err != nil {
		return hal.Pair{}, err
	}
	if su.Name == hal.Poseidon254 {
		// the 254-bit suite re-encodes succinct receipts, it cannot prove segments
		return hal.Pair{}, fmt.Errorf("hashfn %s is reserved for receipt re-encoding", hashfn)
	}
	h := NewHal(su)
	return hal.Pair{Hal: h, Circuit: &CircuitHal{su: su}}, nil
}

func (h *Hal) Suite() hal.Suite { return h.su }

func (h *Hal) CopyFromElem(name string, values []babybear.Element) hal.Buffer {
	v := make([]babybear.Element, len(values))
	copy(v, values)
	h.cur += uint64(len(v)) * babybear.Bytes
	if h.cur > h.peak {
		h.peak = h.cur
	}
	return &buffer{name: name, v: v}
}

// CommitRoot merkle-commits a staged buffer. Leaves are hashed in parallel;
// the leaf width is fixed so the root is independent of scheduling.
func (h *Hal) CommitRoot(buf hal.Buffer) (digest.Digest, error) {
	v := buf.Elements()
	if len(v) == 0 {
		return digest.Digest{}, fmt.Errorf("commit %s: empty buffer", buf.Name())
	}
	nbLeaves := (len(v) + leafElems - 1) / leafElems
	leaves := make([][]byte, nbLeaves)

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i := 0; i < nbLeaves; i++ {
		g.Go(func() error {
			lo := i * leafElems
			hi := min(lo+leafElems, len(v))
			hh := h.su.New()
			for j := lo; j < hi; j++ {
				hh.Write(v[j].Marshal())
			}
			leaves[i] = hh.Sum(nil)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return digest.Digest{}, err
	}

	tree := merkletree.New(h.su.New())
	for _, leaf := range leaves {
		tree.Push(leaf)
	}
	return digest.FromBytes(tree.Root()), nil
}

// MemoryUsage reports the peak number of bytes staged on this backend.
func (h *Hal) MemoryUsage() uint64 { return h.peak }

// CircuitHal evaluates the seal check on the host.
type CircuitHal struct {
	su hal.Suite
}

func (c *CircuitHal) SealCheck(challenge []byte, mixRoot, outRoot digest.Digest) digest.Digest {
	return hal.Check(c.su, challenge, mixRoot, outRoot)
}
