package modules

import (
	"math"

	"github.com/san-kum/imexrk/internal/dynamo"
	"github.com/san-kum/imexrk/internal/props"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// StepSummary describes the step sequence of one run.
type StepSummary struct {
	Accepted     int
	Rejected     int
	MinStep      float64
	MaxStep      float64
	MeanStep     float64
	StdStep      float64
	MaxErrorNorm float64
}

// StepStats collects step sizes and error norms. Rejected attempts are
// only counted when the engine publishes them.
type StepStats struct {
	sizes    []float64
	norms    []float64
	rejected int
}

func NewStepStats() *StepStats {
	return &StepStats{}
}

func (s *StepStats) Required() []string {
	return []string{props.StepAccepted, props.StepSize, props.ErrorNorm}
}

func (s *StepStats) BeginStepping(float64, dynamo.State, *props.Holder) error {
	s.sizes, s.norms, s.rejected = nil, nil, 0
	return nil
}

func (s *StepStats) Step(h *props.Holder) error {
	ok, err := h.Bool(props.StepAccepted)
	if err != nil {
		return err
	}
	if !ok {
		s.rejected++
		return nil
	}
	size, err := h.Real(props.StepSize)
	if err != nil {
		return err
	}
	norm, err := h.Real(props.ErrorNorm)
	if err != nil {
		return err
	}
	s.sizes = append(s.sizes, size)
	s.norms = append(s.norms, norm)
	return nil
}

func (s *StepStats) EndStepping() error { return nil }

// Sizes returns the accepted step sizes in order.
func (s *StepStats) Sizes() []float64 { return s.sizes }

func (s *StepStats) Summary() StepSummary {
	sum := StepSummary{Accepted: len(s.sizes), Rejected: s.rejected}
	if len(s.sizes) == 0 {
		return sum
	}
	sum.MinStep = floats.Min(s.sizes)
	sum.MaxStep = floats.Max(s.sizes)
	sum.MeanStep, sum.StdStep = stat.MeanStdDev(s.sizes, nil)
	if math.IsNaN(sum.StdStep) {
		sum.StdStep = 0
	}
	sum.MaxErrorNorm = floats.Max(s.norms)
	return sum
}
