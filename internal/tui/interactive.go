package tui

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/imexrk/internal/dynamo"
)

var (
	cyan   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	green  = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	red    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

const historyCapacity = 120

// StepMsg carries one published step to the monitor model.
type StepMsg struct {
	T, H     float64
	ErrNorm  float64
	Accepted bool
	Y        dynamo.State
	// Counts of accepted and rejected attempts so far, including this one.
	Steps    int
	Rejected int
}

// DoneMsg ends a run. Err is nil on success.
type DoneMsg struct {
	Err error
}

type model struct {
	title    string
	labels   []string
	t0, tEnd float64

	t        float64
	h        float64
	errNorm  float64
	y        dynamo.State
	steps    int
	rejected int

	// log10 of accepted step sizes, and the selected component
	hHistory []float64
	yHistory []float64
	comp     int

	done   bool
	err    error
	quit   bool
	onQuit func()

	width int
}

func newModel(title string, labels []string, t0, tEnd float64, onQuit func()) model {
	return model{
		title:  title,
		labels: labels,
		t0:     t0,
		tEnd:   tEnd,
		t:      t0,
		onQuit: onQuit,
		width:  80,
	}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case StepMsg:
		m.record(msg)
		return m, nil
	case DoneMsg:
		m.done = true
		m.err = msg.Err
		return m, nil
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		if !m.done && m.onQuit != nil {
			m.onQuit()
		}
		m.quit = true
		return m, tea.Quit
	case "tab", "right", "l":
		if len(m.y) > 0 {
			m.comp = (m.comp + 1) % len(m.y)
			m.yHistory = nil
		}
	case "left", "h":
		if len(m.y) > 0 {
			m.comp = (m.comp + len(m.y) - 1) % len(m.y)
			m.yHistory = nil
		}
	}
	return m, nil
}

func (m *model) record(s StepMsg) {
	m.steps, m.rejected = s.Steps, s.Rejected
	m.errNorm = s.ErrNorm
	if !s.Accepted {
		return
	}
	m.t, m.h, m.y = s.T, s.H, s.Y

	m.hHistory = appendCapped(m.hHistory, math.Log10(s.H))
	if m.comp < len(s.Y) {
		m.yHistory = appendCapped(m.yHistory, s.Y[m.comp])
	}
}

func appendCapped(hist []float64, v float64) []float64 {
	hist = append(hist, v)
	if len(hist) > historyCapacity {
		hist = hist[1:]
	}
	return hist
}

func (m model) label(i int) string {
	if i < len(m.labels) {
		return m.labels[i]
	}
	return fmt.Sprintf("y%d", i)
}

func (m model) progress() float64 {
	p := (m.t - m.t0) / (m.tEnd - m.t0)
	return math.Max(0, math.Min(p, 1))
}

func (m model) View() string {
	var b strings.Builder

	statusIcon := green.Render("●")
	statusText := green.Render("integrating")
	switch {
	case m.done && m.err != nil:
		statusIcon, statusText = red.Render("✗"), red.Render("failed")
	case m.done:
		statusIcon, statusText = cyan.Render("✓"), cyan.Render("done")
	}
	b.WriteString(fmt.Sprintf("\n   %s %s  %s\n", statusIcon, cyan.Render(m.title), statusText))

	barWidth := 36
	filled := int(m.progress() * float64(barWidth))
	timeStr := fmt.Sprintf("t=%.4g/%.4g", m.t, m.tEnd)
	bar := cyan.Render(strings.Repeat("━", filled)) + dimmer.Render(strings.Repeat("─", barWidth-filled))
	b.WriteString(fmt.Sprintf("   %s %s\n\n", bar, dim.Render(timeStr)))

	b.WriteString(fmt.Sprintf("   %s %s  %s %s  %s %s  %s %s\n",
		dim.Render("h"), white.Render(fmt.Sprintf("%.3e", m.h)),
		dim.Render("err"), white.Render(fmt.Sprintf("%.3f", m.errNorm)),
		dim.Render("steps"), white.Render(fmt.Sprintf("%d", m.steps)),
		dim.Render("rejected"), yellow.Render(fmt.Sprintf("%d", m.rejected)),
	))

	if len(m.y) > 0 {
		var state strings.Builder
		state.WriteString("   ")
		for i, v := range m.y {
			if i >= 6 {
				state.WriteString(dim.Render("…"))
				break
			}
			state.WriteString(dim.Render(m.label(i) + "="))
			state.WriteString(white.Render(fmt.Sprintf("%.4g", v)))
			state.WriteString("  ")
		}
		b.WriteString(state.String() + "\n")
	}

	graphWidth := max(30, m.width-16)
	if len(m.yHistory) > 1 {
		chart := asciigraph.Plot(m.yHistory,
			asciigraph.Height(8),
			asciigraph.Width(graphWidth),
			asciigraph.Caption(m.label(m.comp)),
		)
		b.WriteString("\n" + indent(chart) + "\n")
	}
	if len(m.hHistory) > 1 {
		b.WriteString(fmt.Sprintf("\n   %s %s\n", dim.Render("log h"), cyan.Render(sparkline(m.hHistory, 40))))
	}

	if m.err != nil {
		b.WriteString("\n   " + red.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n" + dim.Render("   tab/←→ component  q quit") + "\n")
	return b.String()
}

func indent(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = "   " + l
	}
	return strings.Join(lines, "\n")
}

func sparkline(data []float64, width int) string {
	if len(data) == 0 {
		return ""
	}
	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	minVal, maxVal := data[0], data[0]
	for _, v := range data {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	rang := maxVal - minVal
	if rang == 0 {
		rang = 1
	}
	step := max(len(data)/width, 1)
	var sb strings.Builder
	for i := 0; i < width && i*step < len(data); i++ {
		idx := int((data[i*step] - minVal) / rang * 7)
		idx = max(0, min(idx, 7))
		sb.WriteRune(chars[idx])
	}
	return sb.String()
}
