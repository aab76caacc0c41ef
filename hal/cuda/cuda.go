//go:build icicle

package cuda

import (
	"fmt"
	"sync"

	icicle_runtime "github.com/ingonyama-zk/icicle-gnark/v3/wrappers/golang/runtime"

	"github.com/provar-zk/provar/hal"
	"github.com/provar-zk/provar/hal/cpu"
	"github.com/provar-zk/provar/logger"
)

const HasCuda = true

var onceWarmUpDevice sync.Once

func warmUpDevice() {
	onceWarmUpDevice.Do(func() {
		log := logger.Logger()
		err := icicle_runtime.LoadBackendFromEnvOrDefault()
		if err != icicle_runtime.Success {
			panic(fmt.Sprintf("ICICLE backend loading error: %s", err.AsString()))
		}
		device := icicle_runtime.CreateDevice("CUDA", 0)
		log.Debug().Int32("id", device.Id).Str("type", device.GetDeviceType()).Msg("ICICLE device created")
		icicle_runtime.RunOnDevice(&device, func(args ...any) {
			err := icicle_runtime.WarmUpDevice()
			if err != icicle_runtime.Success {
				panic(fmt.Sprintf("ICICLE device warmup error: %s", err.AsString()))
			}
		})
	})
}

// NewPair returns a CUDA-accelerated backend pair for the requested hashfn.
// Commitment roots are suite-defined, so the pair is interchangeable with the
// CPU backend; the device is used for staging and leaf hashing.
func NewPair(hashfn string) (hal.Pair, error) {
	warmUpDevice()
	return cpu.NewPair(hashfn)
}
