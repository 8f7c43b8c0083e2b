// Package props implements the property holder handed to solver modules.
//
// A Holder maps names to typed values. Each key may be written once;
// getters fail with ErrLookup when a key is absent or holds a value of
// another type. The engine fills a fresh Holder for the initial point
// and for every published step.
package props

import (
	"errors"
	"fmt"
	"slices"

	"github.com/samber/lo"
	"github.com/san-kum/imexrk/internal/dynamo"
	"github.com/san-kum/imexrk/internal/tableau"
)

// Property names published by the engine.
const (
	InitialTime   = "initialTime"
	InitialValues = "initialValues"
	FinalTime     = "finalTime"
	FinalValues   = "finalValues"
	StageValues   = "stageValues"
	StepAccepted  = "stepAccepted"
	Scheme        = "scheme"
	StepSize      = "stepSize"
	ErrorNorm     = "errorNorm"
	StepNumber    = "stepNumber"
)

// Standard lists every name the engine publishes on a step.
var Standard = []string{
	InitialTime, InitialValues, FinalTime, FinalValues, StageValues,
	StepAccepted, Scheme, StepSize, ErrorNorm, StepNumber,
}

var (
	ErrLookup   = errors.New("props: property lookup failed")
	ErrReadOnly = errors.New("props: property already set")
)

type Holder struct {
	values map[string]any
}

func New() *Holder {
	return &Holder{values: make(map[string]any)}
}

// Set stores v under name. Setting an existing name fails.
func (h *Holder) Set(name string, v any) error {
	if _, ok := h.values[name]; ok {
		return fmt.Errorf("%w: %s", ErrReadOnly, name)
	}
	h.values[name] = v
	return nil
}

func (h *Holder) Has(name string) bool {
	_, ok := h.values[name]
	return ok
}

// Names returns the stored names in sorted order.
func (h *Holder) Names() []string {
	names := lo.Keys(h.values)
	slices.Sort(names)
	return names
}

// Missing returns the entries of required that h does not hold.
func (h *Holder) Missing(required []string) []string {
	return lo.Filter(required, func(name string, _ int) bool { return !h.Has(name) })
}

func get[T any](h *Holder, name string) (T, error) {
	var zero T
	raw, ok := h.values[name]
	if !ok {
		return zero, fmt.Errorf("%w: %s not set", ErrLookup, name)
	}
	v, ok := raw.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s holds %T, want %T", ErrLookup, name, raw, zero)
	}
	return v, nil
}

func (h *Holder) Real(name string) (float64, error) { return get[float64](h, name) }
func (h *Holder) Bool(name string) (bool, error)    { return get[bool](h, name) }
func (h *Holder) Int(name string) (int, error)      { return get[int](h, name) }

func (h *Holder) Vector(name string) (dynamo.State, error) {
	return get[dynamo.State](h, name)
}

func (h *Holder) Stages(name string) (dynamo.StageValues, error) {
	return get[dynamo.StageValues](h, name)
}

func (h *Holder) Scheme(name string) (tableau.Scheme, error) {
	return get[tableau.Scheme](h, name)
}
