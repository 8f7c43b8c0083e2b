package modules

import (
	"fmt"

	"github.com/san-kum/imexrk/internal/dense"
	"github.com/san-kum/imexrk/internal/dynamo"
	"github.com/san-kum/imexrk/internal/props"
)

// DenseSampler evaluates the solution at n+1 equally spaced times over
// [t0, tEnd] using the interpolant of the scheme, independently of the
// steps the engine takes.
type DenseSampler struct {
	n    int
	grid []float64
	next int
	traj Trajectory
}

func NewDenseSampler(n int) *DenseSampler {
	return &DenseSampler{n: n}
}

func (d *DenseSampler) Required() []string {
	return []string{
		props.InitialTime, props.InitialValues, props.FinalTime, props.FinalValues,
		props.StageValues, props.Scheme, props.StepSize, props.StepAccepted,
	}
}

func (d *DenseSampler) BeginStepping(t0 float64, y0 dynamo.State, constants *props.Holder) error {
	if d.n < 1 {
		return fmt.Errorf("%w: dense sampler needs at least one interval, got %d", dynamo.ErrConfig, d.n)
	}
	tEnd, err := constants.Real(props.FinalTime)
	if err != nil {
		return err
	}

	d.grid = make([]float64, d.n+1)
	for i := range d.grid {
		d.grid[i] = t0 + (tEnd-t0)*float64(i)/float64(d.n)
	}
	d.grid[d.n] = tEnd

	d.traj = Trajectory{}
	d.traj.Append(t0, y0)
	d.next = 1
	return nil
}

func (d *DenseSampler) Step(h *props.Holder) error {
	if ok, err := h.Bool(props.StepAccepted); err != nil || !ok {
		return err
	}
	t0, err := h.Real(props.InitialTime)
	if err != nil {
		return err
	}
	t1, err := h.Real(props.FinalTime)
	if err != nil {
		return err
	}
	dt, err := h.Real(props.StepSize)
	if err != nil {
		return err
	}
	y0, err := h.Vector(props.InitialValues)
	if err != nil {
		return err
	}
	y1, err := h.Vector(props.FinalValues)
	if err != nil {
		return err
	}
	stages, err := h.Stages(props.StageValues)
	if err != nil {
		return err
	}
	scheme, err := h.Scheme(props.Scheme)
	if err != nil {
		return err
	}

	for d.next < len(d.grid) && d.grid[d.next] <= t1 {
		tt := d.grid[d.next]
		theta := (tt - t0) / dt
		if tt >= t1 || theta > 1 {
			theta = 1
		}
		if err := dense.CheckTheta(theta); err != nil {
			return fmt.Errorf("sample %d at t=%g: %w", d.next, tt, err)
		}
		y, err := scheme.Interpolant().Evaluate(y0, y1, theta, dt, stages)
		if err != nil {
			return fmt.Errorf("sample %d at t=%g: %w", d.next, tt, err)
		}
		d.traj.Append(tt, y)
		d.next++
	}
	return nil
}

func (d *DenseSampler) EndStepping() error { return nil }

func (d *DenseSampler) Trajectory() Trajectory { return d.traj }
