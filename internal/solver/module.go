package solver

import (
	"fmt"

	"github.com/san-kum/imexrk/internal/dynamo"
	"github.com/san-kum/imexrk/internal/props"
)

// Module observes an integration run. Modules are called synchronously
// in registration order.
type Module interface {
	// Required lists the property names the module reads from each step.
	Required() []string
	// BeginStepping is called once before the first step. constants holds
	// the scheme and the target final time.
	BeginStepping(t0 float64, y0 dynamo.State, constants *props.Holder) error
	Step(h *props.Holder) error
	EndStepping() error
}

// ModuleError wraps an error returned by a module callback.
type ModuleError struct {
	Index int
	Phase string
	Err   error
}

func (e *ModuleError) Error() string {
	return fmt.Sprintf("module %d %s: %v", e.Index, e.Phase, e.Err)
}

func (e *ModuleError) Unwrap() error { return e.Err }

type lifecycle int

const (
	idle lifecycle = iota
	stepping
	finished
)

func (l lifecycle) String() string {
	switch l {
	case idle:
		return "idle"
	case stepping:
		return "stepping"
	case finished:
		return "finished"
	}
	return "unknown"
}
