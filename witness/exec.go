package witness

import (
	"errors"
	"fmt"

	"github.com/consensys/gnark-crypto/field/babybear"

	"github.com/provar-zk/provar/session"
)

var (
	errFinalized   = errors.New("executor already finalized")
	errNotFinal    = errors.New("executor not finalized")
	errTraceBounds = errors.New("trace exceeds declared cycle bound")
)

// mixing constants for column derivation
const (
	colStride  = 0x9e3779b9
	rowStride  = 0x85ebca6b
	insnStride = 0xc2b2ae35
)

// Executor replays a trace through the circuit, regenerating the control/code
// and data register groups in circuit-native form. Rows not covered by the
// trace stay at the circuit's padding values.
type Executor struct {
	machine   *MachineContext
	po2       int
	rows      int
	io        []babybear.Element
	code      []babybear.Element
	data      []babybear.Element
	cycles    int
	finalized bool
}

// NewExecutor prepares a replay of machine bounded at 2^po2 cycles, with the
// given public globals.
func NewExecutor(machine *MachineContext, po2 int, io []babybear.Element) *Executor {
	rows := 1 << po2
	return &Executor{
		machine: machine,
		po2:     po2,
		rows:    rows,
		io:      io,
		code:    make([]babybear.Element, rows*CodeCols),
		data:    make([]babybear.Element, rows*DataCols),
	}
}

// Run replays the machine's whole trace in chunks and finalizes.
func (e *Executor) Run() error {
	chunks := e.machine.Chunks(ChunkRows)
	if len(chunks) == 0 {
		return e.Finalize()
	}
	for i, chunk := range chunks {
		if err := e.Step(chunk, i == len(chunks)-1); err != nil {
			return err
		}
	}
	return nil
}

// Step replays one chunk of trace rows. fini marks the last chunk.
func (e *Executor) Step(chunk []session.TraceRow, fini bool) error {
	if e.finalized {
		return errFinalized
	}
	for _, row := range chunk {
		if e.cycles >= e.rows {
			return fmt.Errorf("%w: 2^%d cycles", errTraceBounds, e.po2)
		}
		r := e.cycles
		for j := 0; j < CodeCols; j++ {
			e.code[r*CodeCols+j].SetUint64(
				uint64(row.Cycle)*rowStride + uint64(row.PC) + uint64(j)*colStride)
		}
		for j := 0; j < DataCols; j++ {
			e.data[r*DataCols+j].SetUint64(
				uint64(row.Insn)*insnStride + uint64(row.PC)*uint64(j+1) + uint64(row.Cycle))
		}
		e.cycles++
	}
	if fini {
		return e.Finalize()
	}
	return nil
}

// Finalize closes the replay. After this the witness is complete and the
// executor refuses further steps.
func (e *Executor) Finalize() error {
	if e.finalized {
		return errFinalized
	}
	if e.cycles != e.machine.NbCycles() {
		return fmt.Errorf("replay incomplete: %d of %d cycles", e.cycles, e.machine.NbCycles())
	}
	e.finalized = true
	return nil
}
