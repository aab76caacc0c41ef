//go:build !icicle

// Package cuda provides the ICICLE-backed GPU HAL. Without the icicle build
// tag it only reports its absence.
package cuda

import (
	"fmt"

	"github.com/provar-zk/provar/hal"
)

const HasCuda = false

func NewPair(hashfn string) (hal.Pair, error) {
	return hal.Pair{}, fmt.Errorf("cuda backend requested but program compiled without 'icicle' build tag")
}
