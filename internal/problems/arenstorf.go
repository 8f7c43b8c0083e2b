package problems

import (
	"math"

	"github.com/san-kum/imexrk/internal/dynamo"
)

// ArenstorfPeriod is the period of the closed orbit started from
// Arenstorf's initial state.
const ArenstorfPeriod = 17.0652165601579625588917206249

// Arenstorf is the restricted three-body problem of a light body moving
// around the earth-moon pair, in rotating coordinates.
// State: [x, y, vx, vy]
type Arenstorf struct {
	mu float64 // moon mass ratio
}

func NewArenstorf() *Arenstorf {
	return &Arenstorf{mu: 0.012277471}
}

func (a *Arenstorf) Name() string { return "arenstorf" }
func (a *Arenstorf) Size() int    { return 4 }

func (a *Arenstorf) Derive(_ float64, y dynamo.State) dynamo.State {
	x, yy, vx, vy := y[0], y[1], y[2], y[3]
	mu1 := 1 - a.mu

	// distances to the moon and the earth
	d1 := math.Pow((x+a.mu)*(x+a.mu)+yy*yy, 1.5)
	d2 := math.Pow((x-mu1)*(x-mu1)+yy*yy, 1.5)

	ax := x + 2*vy - mu1*(x+a.mu)/d1 - a.mu*(x-mu1)/d2
	ay := yy - 2*vx - mu1*yy/d1 - a.mu*yy/d2

	return dynamo.State{vx, vy, ax, ay}
}

func (a *Arenstorf) Initial() dynamo.State {
	return dynamo.State{0.994, 0, 0, -2.00158510637908252240537862224}
}

func (a *Arenstorf) Span() (float64, float64) { return 0, ArenstorfPeriod }

func (a *Arenstorf) Params() map[string]float64 {
	return map[string]float64{"mu": a.mu}
}

func (a *Arenstorf) SetParam(name string, value float64) error {
	if name != "mu" {
		return unknownParam(a.Name(), name)
	}
	a.mu = value
	return nil
}
