package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/imexrk/internal/dynamo"
	"github.com/san-kum/imexrk/internal/props"
	"github.com/san-kum/imexrk/internal/solver"
	"golang.org/x/sync/errgroup"
)

// Sender is satisfied by *tea.Program.
type Sender interface {
	Send(msg tea.Msg)
}

// Monitor is a solver module forwarding steps to a Sender, at most
// FrameRate times per second. The final step is always forwarded.
type Monitor struct {
	FrameRate int

	out       Sender
	tEnd      float64
	lastFrame time.Time
	steps     int
	rejected  int
}

func NewMonitor(out Sender, frameRate int) *Monitor {
	return &Monitor{out: out, FrameRate: frameRate}
}

func (mon *Monitor) Required() []string {
	return []string{props.FinalTime, props.FinalValues, props.StepAccepted, props.StepSize, props.ErrorNorm}
}

func (mon *Monitor) BeginStepping(_ float64, _ dynamo.State, constants *props.Holder) error {
	tEnd, err := constants.Real(props.FinalTime)
	if err != nil {
		return err
	}
	mon.tEnd = tEnd
	mon.lastFrame = time.Time{}
	mon.steps, mon.rejected = 0, 0
	return nil
}

func (mon *Monitor) Step(h *props.Holder) error {
	accepted, err := h.Bool(props.StepAccepted)
	if err != nil {
		return err
	}
	if accepted {
		mon.steps++
	} else {
		mon.rejected++
	}

	msg := StepMsg{Accepted: accepted, Steps: mon.steps, Rejected: mon.rejected}
	if msg.T, err = h.Real(props.FinalTime); err != nil {
		return err
	}
	final := accepted && msg.T >= mon.tEnd
	if !final && !mon.due() {
		return nil
	}

	if msg.H, err = h.Real(props.StepSize); err != nil {
		return err
	}
	if msg.ErrNorm, err = h.Real(props.ErrorNorm); err != nil {
		return err
	}
	if msg.Y, err = h.Vector(props.FinalValues); err != nil {
		return err
	}
	mon.lastFrame = time.Now()
	mon.out.Send(msg)
	return nil
}

func (mon *Monitor) due() bool {
	if mon.FrameRate <= 0 || mon.lastFrame.IsZero() {
		return true
	}
	return time.Since(mon.lastFrame) >= time.Second/time.Duration(mon.FrameRate)
}

func (mon *Monitor) EndStepping() error { return nil }

// Run integrates with eng while a full-screen monitor shows the progress.
// Quitting the monitor early cancels the integration.
func Run(ctx context.Context, eng *solver.Engine, title string, labels []string, t0, tEnd float64, y0 dynamo.State) (dynamo.State, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newModel(title, labels, t0, tEnd, cancel), tea.WithAltScreen())
	if err := eng.Register(NewMonitor(p, 30)); err != nil {
		return nil, err
	}

	var (
		y      dynamo.State
		runErr error
	)
	g := new(errgroup.Group)
	g.Go(func() error {
		y, runErr = eng.Integrate(ctx, t0, tEnd, y0)
		p.Send(DoneMsg{Err: runErr})
		return nil
	})

	_, uiErr := p.Run()
	cancel()
	_ = g.Wait()
	return y, errors.Join(runErr, uiErr)
}
