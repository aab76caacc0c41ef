package witness

import (
	"github.com/consensys/gnark-crypto/field/babybear"
)

// mixElems is the size of the mixing vector derived from the accumulation
// challenge.
const mixElems = 36

// Adapter folds a finalized execution trace into the accumulation group.
// The accumulator columns exist to tie the code and data groups together
// under a verifier-chosen challenge, so they can only be produced after
// the first two groups are committed.
type Adapter struct {
	exec  *Executor
	accum []babybear.Element
	mix   []babybear.Element
}

func NewAdapter(exec *Executor) (*Adapter, error) {
	if !exec.finalized {
		return nil, errNotFinal
	}
	return &Adapter{exec: exec}, nil
}

func (a *Adapter) PO2() int { return a.exec.po2 }

// Code returns the control column group, row major.
func (a *Adapter) Code() []babybear.Element { return a.exec.code }

// Data returns the data column group, row major.
func (a *Adapter) Data() []babybear.Element { return a.exec.data }

// Accumulate derives the accumulation group from the committed code and data
// groups under the given challenge. It must run exactly once, between the
// data commitment and the accum commitment.
func (a *Adapter) Accumulate(challenge []byte) error {
	if a.accum != nil {
		return errFinalized
	}
	var c babybear.Element
	c.SetBytes(challenge)

	rows := a.exec.rows
	a.accum = make([]babybear.Element, rows*AccumCols)
	var t babybear.Element
	for r := 0; r < rows; r++ {
		for k := 0; k < AccumCols; k++ {
			t.Mul(&a.exec.data[r*DataCols+k], &c)
			a.accum[r*AccumCols+k].Add(&t, &a.exec.code[r*CodeCols+k])
		}
	}

	a.mix = make([]babybear.Element, mixElems)
	var step babybear.Element
	step.SetOne()
	for i := range a.mix {
		step.Mul(&step, &c)
		a.mix[i].Set(&step)
	}
	return nil
}

// Accum returns the accumulation group. Accumulate must have run.
func (a *Adapter) Accum() ([]babybear.Element, error) {
	if a.accum == nil {
		return nil, errNotFinal
	}
	return a.accum, nil
}

// Mix returns the mixing vector. Accumulate must have run.
func (a *Adapter) Mix() ([]babybear.Element, error) {
	if a.mix == nil {
		return nil, errNotFinal
	}
	return a.mix, nil
}

// Out returns the public globals.
func (a *Adapter) Out() []babybear.Element { return a.exec.io }
