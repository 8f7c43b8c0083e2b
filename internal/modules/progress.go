package modules

import (
	"fmt"
	"io"
	"math"

	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/imexrk/internal/dynamo"
	"github.com/san-kum/imexrk/internal/props"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var (
	progressLabel = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	progressDim   = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
)

// Progress prints one line each time the integration crosses another
// Interval fraction of [t0, tEnd], and a summary when stepping ends.
type Progress struct {
	Interval float64
	// Styled colours the output for a terminal.
	Styled bool

	out      io.Writer
	p        *message.Printer
	scheme   string
	t0, tEnd float64
	next     float64
	accepted int
	rejected int
	last     float64
}

func NewProgress(out io.Writer) *Progress {
	return &Progress{
		Interval: 0.1,
		out:      out,
		p:        message.NewPrinter(language.English),
	}
}

func (pr *Progress) Required() []string {
	return []string{props.FinalTime, props.StepAccepted, props.StepSize}
}

func (pr *Progress) BeginStepping(t0 float64, _ dynamo.State, constants *props.Holder) error {
	if !(pr.Interval > 0 && pr.Interval <= 1) {
		return fmt.Errorf("%w: progress interval %g outside (0, 1]", dynamo.ErrConfig, pr.Interval)
	}
	tEnd, err := constants.Real(props.FinalTime)
	if err != nil {
		return err
	}
	scheme, err := constants.Scheme(props.Scheme)
	if err != nil {
		return err
	}
	pr.scheme = scheme.Name()
	pr.t0, pr.tEnd = t0, tEnd
	pr.next = pr.Interval
	pr.accepted, pr.rejected, pr.last = 0, 0, 0
	return nil
}

func (pr *Progress) Step(h *props.Holder) error {
	ok, err := h.Bool(props.StepAccepted)
	if err != nil {
		return err
	}
	if !ok {
		pr.rejected++
		return nil
	}
	pr.accepted++

	t, err := h.Real(props.FinalTime)
	if err != nil {
		return err
	}
	if pr.last, err = h.Real(props.StepSize); err != nil {
		return err
	}

	frac := (t - pr.t0) / (pr.tEnd - pr.t0)
	if frac+1e-12 < pr.next {
		return nil
	}
	for pr.next <= frac+1e-12 {
		pr.next += pr.Interval
	}
	_, err = fmt.Fprintln(pr.out, pr.line(math.Min(frac, 1), t))
	return err
}

func (pr *Progress) line(frac, t float64) string {
	label := pr.p.Sprintf("[%s] %v", pr.scheme, number.Percent(frac, number.MaxFractionDigits(1)))
	detail := pr.p.Sprintf("t=%.6g h=%.3g steps=%d", t, pr.last, pr.accepted)
	if pr.Styled {
		return progressLabel.Render(label) + " " + progressDim.Render(detail)
	}
	return label + " " + detail
}

func (pr *Progress) EndStepping() error {
	summary := pr.p.Sprintf("%d accepted, %d rejected", pr.accepted, pr.rejected)
	if pr.Styled {
		summary = progressDim.Render(summary)
	}
	_, err := fmt.Fprintln(pr.out, summary)
	return err
}
