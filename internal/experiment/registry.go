package experiment

import (
	"fmt"
	"slices"

	"github.com/samber/lo"
	"github.com/san-kum/imexrk/internal/dynamo"
	"github.com/san-kum/imexrk/internal/problems"
	"github.com/san-kum/imexrk/internal/tableau"
)

type Registry struct {
	problems map[string]func() problems.Problem
}

func NewRegistry() *Registry {
	r := &Registry{
		problems: make(map[string]func() problems.Problem),
	}

	r.problems["arenstorf"] = func() problems.Problem { return problems.NewArenstorf() }
	r.problems["decay-chain"] = func() problems.Problem { return problems.NewDecayChain(5) }
	r.problems["exponential"] = func() problems.Problem { return problems.NewExponential(1) }
	r.problems["oscillator"] = func() problems.Problem { return problems.NewOscillator() }
	r.problems["lorenz"] = func() problems.Problem { return problems.NewLorenz() }
	r.problems["prothero-robinson"] = func() problems.Problem { return problems.NewProtheroRobinson(-100) }
	r.problems["van-der-pol"] = func() problems.Problem { return problems.NewVanDerPol() }
	r.problems["brusselator"] = func() problems.Problem { return problems.NewBrusselator() }

	return r
}

// Register adds or replaces a problem factory.
func (r *Registry) Register(name string, fn func() problems.Problem) {
	r.problems[name] = fn
}

func (r *Registry) GetProblem(name string) (problems.Problem, error) {
	fn, ok := r.problems[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown problem: %s", dynamo.ErrConfig, name)
	}
	return fn(), nil
}

func (r *Registry) GetScheme(name string) (tableau.Scheme, error) {
	s, err := tableau.Lookup(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", dynamo.ErrConfig, err)
	}
	return s, nil
}

func (r *Registry) ListProblems() []string {
	names := lo.Keys(r.problems)
	slices.Sort(names)
	return names
}

func (r *Registry) ListSchemes() []string {
	return tableau.Names()
}

// Compatible lists the schemes that can integrate p: additive schemes
// need a split right-hand side.
func (r *Registry) Compatible(p problems.Problem) []string {
	_, split := p.(dynamo.Additive)
	return lo.Filter(r.ListSchemes(), func(name string, _ int) bool {
		s, _ := tableau.Lookup(name)
		return split || s.Parts() == 1
	})
}
