package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/imexrk/internal/dynamo"
	"github.com/san-kum/imexrk/internal/problems"
	"github.com/san-kum/imexrk/internal/solver"
	"github.com/san-kum/imexrk/internal/tableau"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capture struct {
	msgs []tea.Msg
}

func (c *capture) Send(msg tea.Msg) { c.msgs = append(c.msgs, msg) }

func (c *capture) steps() []StepMsg {
	var out []StepMsg
	for _, m := range c.msgs {
		if s, ok := m.(StepMsg); ok {
			out = append(out, s)
		}
	}
	return out
}

func integrate(t *testing.T, mon *Monitor, cfg solver.Config) *solver.Engine {
	t.Helper()
	eng, err := solver.New(problems.NewVanDerPol(), tableau.DormandPrince54(), cfg)
	require.NoError(t, err)
	require.NoError(t, eng.Register(mon))
	_, err = eng.Integrate(context.Background(), 0, 5, dynamo.State{2, 0})
	require.NoError(t, err)
	return eng
}

func TestMonitorForwardsEveryStep(t *testing.T) {
	out := &capture{}
	cfg := solver.DefaultConfig()
	cfg.H0 = 1
	cfg.NotifyRejected = true
	eng := integrate(t, NewMonitor(out, 0), cfg)

	steps := out.steps()
	stats := eng.Stats()
	require.Len(t, steps, stats.Accepted+stats.Rejected)

	last := steps[len(steps)-1]
	assert.True(t, last.Accepted)
	assert.Equal(t, 5.0, last.T)
	assert.Equal(t, stats.Accepted, last.Steps)
	assert.Equal(t, stats.Rejected, last.Rejected)
	assert.Len(t, last.Y, 2)
}

func TestMonitorThrottles(t *testing.T) {
	out := &capture{}
	eng := integrate(t, NewMonitor(out, 1), solver.DefaultConfig())

	steps := out.steps()
	require.NotEmpty(t, steps)
	assert.Less(t, len(steps), eng.Stats().Accepted)
	assert.Equal(t, 5.0, steps[len(steps)-1].T)
	assert.Equal(t, eng.Stats().Accepted, steps[len(steps)-1].Steps)
}

func TestModelUpdate(t *testing.T) {
	quit := false
	m := newModel("van-der-pol / kc43", []string{"x", "v"}, 0, 10, func() { quit = true })

	for i := 1; i <= 5; i++ {
		next, _ := m.Update(StepMsg{T: float64(i), H: 0.1 * float64(i), Accepted: true, Y: dynamo.State{float64(i), -1}, Steps: i})
		m = next.(model)
	}
	next, _ := m.Update(StepMsg{T: 6, H: 1, Accepted: false, Steps: 5, Rejected: 1, ErrNorm: 3})
	m = next.(model)

	assert.Equal(t, 5.0, m.t)
	assert.Equal(t, 1, m.rejected)
	assert.Equal(t, 3.0, m.errNorm)
	assert.Len(t, m.hHistory, 5)
	assert.Equal(t, []float64{1, 2, 3, 4, 5}, m.yHistory)
	assert.InDelta(t, 0.5, m.progress(), 1e-15)

	view := m.View()
	assert.Contains(t, view, "van-der-pol / kc43")
	assert.Contains(t, view, "integrating")
	assert.Contains(t, view, "x=")

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(model)
	assert.Equal(t, 1, m.comp)
	assert.Empty(t, m.yHistory)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	m = next.(model)
	assert.True(t, quit)
	assert.True(t, m.quit)
	assert.NotNil(t, cmd)
}

func TestModelDone(t *testing.T) {
	m := newModel("run", nil, 0, 1, nil)
	next, _ := m.Update(DoneMsg{Err: errors.New("boom")})
	m = next.(model)
	assert.True(t, m.done)
	assert.Contains(t, m.View(), "boom")
	assert.Contains(t, m.View(), "failed")
	assert.Equal(t, "y3", m.label(3))
}

func TestSparkline(t *testing.T) {
	assert.Equal(t, "", sparkline(nil, 10))
	s := sparkline([]float64{0, 1, 2, 3, 4, 5, 6, 7}, 8)
	assert.Equal(t, "▁▂▃▄▅▆▇█", s)
	assert.Equal(t, 4, len([]rune(sparkline([]float64{1, 1, 1, 1}, 10))))
	assert.True(t, strings.HasPrefix(indent("a\nb"), "   a"))
}
