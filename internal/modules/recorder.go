package modules

import (
	"github.com/san-kum/imexrk/internal/dynamo"
	"github.com/san-kum/imexrk/internal/props"
)

// Recorder keeps the initial point and every accepted step end point.
type Recorder struct {
	traj Trajectory
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Required() []string {
	return []string{props.FinalTime, props.FinalValues, props.StepAccepted}
}

func (r *Recorder) BeginStepping(t0 float64, y0 dynamo.State, _ *props.Holder) error {
	r.traj = Trajectory{}
	r.traj.Append(t0, y0)
	return nil
}

func (r *Recorder) Step(h *props.Holder) error {
	if ok, err := h.Bool(props.StepAccepted); err != nil || !ok {
		return err
	}
	t, err := h.Real(props.FinalTime)
	if err != nil {
		return err
	}
	y, err := h.Vector(props.FinalValues)
	if err != nil {
		return err
	}
	r.traj.Append(t, y)
	return nil
}

func (r *Recorder) EndStepping() error { return nil }

func (r *Recorder) Trajectory() Trajectory { return r.traj }
