package witness

import (
	"github.com/provar-zk/provar/session"
)

// MachineContext adapts a segment's recorded trace for the circuit executor,
// exposing it chunk by chunk.
type MachineContext struct {
	seg *session.Segment
}

// NewMachineContext wraps a segment.
func NewMachineContext(seg *session.Segment) *MachineContext {
	return &MachineContext{seg: seg}
}

// NbCycles returns the number of recorded cycles.
func (m *MachineContext) NbCycles() int {
	return len(m.seg.Trace)
}

// Chunks splits the trace into replay chunks of at most size rows.
func (m *MachineContext) Chunks(size int) [][]session.TraceRow {
	trace := m.seg.Trace
	var chunks [][]session.TraceRow
	for len(trace) > 0 {
		n := min(size, len(trace))
		chunks = append(chunks, trace[:n])
		trace = trace[n:]
	}
	return chunks
}
