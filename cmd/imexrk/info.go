package main

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"
	"github.com/san-kum/imexrk/internal/config"
	"github.com/san-kum/imexrk/internal/dynamo"
	"github.com/san-kum/imexrk/internal/experiment"
	"github.com/san-kum/imexrk/internal/problems"
	"github.com/san-kum/imexrk/internal/tableau"
	"github.com/spf13/cobra"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	badStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "-"
}

func listSchemes(cmd *cobra.Command, args []string) error {
	fmt.Println(titleStyle.Render("schemes"))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tKIND\tSTAGES\tORDER\tEMBEDDED\tFSAL")

	var broken []error
	for _, name := range tableau.Names() {
		s, err := tableau.Lookup(name)
		if err != nil {
			return err
		}
		if err := tableau.Check(s); err != nil {
			broken = append(broken, err)
		}
		emb := "-"
		if s.Embedded() {
			emb = strconv.Itoa(s.EmbeddedOrder())
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%s\n", s.Name(), tableau.Kind(s), s.Stages(), s.Order(), emb, yesNo(s.FSAL()))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	for _, err := range broken {
		fmt.Println(badStyle.Render(err.Error()))
	}
	return nil
}

func formatParams(p map[string]float64) string {
	names := lo.Keys(p)
	slices.Sort(names)
	return strings.Join(lo.Map(names, func(n string, _ int) string {
		return fmt.Sprintf("%s=%g", n, p[n])
	}), " ")
}

func listProblems(cmd *cobra.Command, args []string) error {
	reg := experiment.NewRegistry()
	fmt.Println(titleStyle.Render("problems"))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tDIM\tSPAN\tSPLIT\tEXACT\tPARAMS")

	for _, name := range reg.ListProblems() {
		p, err := reg.GetProblem(name)
		if err != nil {
			return err
		}
		_, split := p.(dynamo.Additive)
		_, exact := p.(problems.Exact)
		params := ""
		if c, ok := p.(problems.Configurable); ok {
			params = formatParams(c.Params())
		}
		t0, tEnd := p.Span()
		fmt.Fprintf(w, "%s\t%d\t[%g, %g]\t%s\t%s\t%s\n", name, p.Size(), t0, tEnd, yesNo(split), yesNo(exact), params)
	}
	return w.Flush()
}

func listPresets(cmd *cobra.Command, args []string) error {
	names := config.Problems()
	if len(args) > 0 {
		if len(config.ListPresets(args[0])) == 0 {
			fmt.Printf("no presets for problem: %s\n", args[0])
			return nil
		}
		names = args[:1]
	}
	for _, problem := range names {
		fmt.Printf("presets for %s:\n", titleStyle.Render(problem))
		for _, name := range config.ListPresets(problem) {
			p := config.GetPreset(problem, name)
			mode := "adaptive"
			if !p.Adaptive {
				mode = fmt.Sprintf("h=%g", p.H0)
			}
			fmt.Printf("  %-16s %-10s %s %s\n", name, p.Scheme, mode, formatParams(p.Params))
		}
	}
	return nil
}

func writeConfig(cmd *cobra.Command, args []string) error {
	cfg := config.DefaultConfig()
	if name := env.GetString("preset"); name != "" {
		problem, presetName, ok := strings.Cut(name, "/")
		if !ok {
			return fmt.Errorf("%w: preset %q is not problem/name", dynamo.ErrConfig, name)
		}
		cfg = config.GetPreset(problem, presetName)
		if cfg == nil {
			return fmt.Errorf("unknown preset: %s (available: %v)", presetName, config.ListPresets(problem))
		}
	}
	if err := config.Save(args[0], cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", args[0])
	return nil
}
