package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/imexrk/internal/storage"
	"github.com/spf13/cobra"
)

const maxPlots = 6

func store() *storage.Store {
	return storage.New(env.GetString("data"))
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := store().List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPROBLEM\tSCHEME\tTIME\tSPAN\tTOL\tACCEPTED\tREJECTED")

	for _, run := range runs {
		tol := "fixed"
		if run.Adaptive {
			tol = fmt.Sprintf("%.0e/%.0e", run.ATol, run.RTol)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t[%g, %g]\t%s\t%.0f\t%.0f\n",
			run.ID,
			run.Problem,
			run.Scheme,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.T0, run.TEnd,
			tol,
			run.Metrics["accepted"],
			run.Metrics["rejected"],
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := store()
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	traj, err := st.LoadStates(runID)
	if err != nil {
		return err
	}
	if traj.Len() == 0 {
		return fmt.Errorf("no data to plot")
	}

	kind := "accepted steps"
	if meta.Dense {
		kind = "dense samples"
	}
	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("problem: %s (%s)\n", meta.Problem, meta.Scheme)
	fmt.Printf("%s: %d\n\n", kind, traj.Len())

	dim := len(traj.States[0])
	comps := make([]int, 0, dim)
	switch {
	case component >= dim:
		return fmt.Errorf("component %d out of range, state has %d", component, dim)
	case component >= 0:
		comps = append(comps, component)
	default:
		for i := 0; i < dim && i < maxPlots; i++ {
			comps = append(comps, i)
		}
	}

	for _, i := range comps {
		graph := asciigraph.Plot(traj.Component(i),
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("y%d vs time, t in [%g, %g]", i, meta.T0, meta.TEnd)),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := store()
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	traj, err := st.LoadStates(runID)
	if err != nil {
		return err
	}

	var out io.Writer = os.Stdout
	if path := env.GetString("out"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	return storage.ExportJSON(out, *meta, traj)
}
