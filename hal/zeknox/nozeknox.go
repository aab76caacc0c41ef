//go:build !zeknox

// Package zeknox provides the zeknox-backed GPU HAL. Without the zeknox build
// tag it only reports its absence.
package zeknox

import (
	"fmt"

	"github.com/provar-zk/provar/hal"
)

const HasZeknox = false

func NewPair(hashfn string) (hal.Pair, error) {
	return hal.Pair{}, fmt.Errorf("zeknox backend requested but program compiled without 'zeknox' build tag")
}
