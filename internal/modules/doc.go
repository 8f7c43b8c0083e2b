// Package modules provides ready-made solver modules: observers that the
// engine calls after every published step.
//
//   - [Recorder] keeps the accepted points in memory
//   - [DenseSampler] samples the solution on a uniform grid through the
//     scheme's interpolant
//   - [CSVWriter] streams accepted points as CSV
//   - [Progress] prints the completed fraction of the time span
//   - [Invariant] tracks the drift of a conserved quantity
//   - [StepStats] summarises step sizes and error norms
package modules

import (
	"github.com/san-kum/imexrk/internal/dynamo"
)

// Trajectory is a sequence of (t, y) points in increasing time.
type Trajectory struct {
	Times  []float64
	States []dynamo.State
}

func (t *Trajectory) Append(time float64, y dynamo.State) {
	t.Times = append(t.Times, time)
	t.States = append(t.States, y.Clone())
}

func (t *Trajectory) Len() int { return len(t.Times) }

// Component returns the i-th component of every state.
func (t *Trajectory) Component(i int) []float64 {
	out := make([]float64, len(t.States))
	for j, y := range t.States {
		out[j] = y[i]
	}
	return out
}

// Last returns the final point, or ok=false for an empty trajectory.
func (t *Trajectory) Last() (float64, dynamo.State, bool) {
	if len(t.Times) == 0 {
		return 0, nil, false
	}
	n := len(t.Times) - 1
	return t.Times[n], t.States[n], true
}
