package modules

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/san-kum/imexrk/internal/dynamo"
	"github.com/san-kum/imexrk/internal/props"
)

// CSVWriter streams the initial point and every accepted step to w, one
// row per point: time followed by the state components. Every keeps one
// row out of Every accepted steps; the final point is always written.
type CSVWriter struct {
	Every int

	w    *csv.Writer
	dim  int
	seen int
	tEnd float64
}

func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{Every: 1, w: csv.NewWriter(w)}
}

// Header returns the column names for a state of size dim.
func Header(dim int) []string {
	header := []string{"time"}
	for i := 0; i < dim; i++ {
		header = append(header, fmt.Sprintf("y%d", i))
	}
	return header
}

// Row formats one point with full round-trip precision.
func Row(t float64, y dynamo.State) []string {
	row := []string{strconv.FormatFloat(t, 'g', -1, 64)}
	for _, v := range y {
		row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
	}
	return row
}

func (c *CSVWriter) Required() []string {
	return []string{props.FinalTime, props.FinalValues, props.StepAccepted}
}

func (c *CSVWriter) BeginStepping(t0 float64, y0 dynamo.State, constants *props.Holder) error {
	tEnd, err := constants.Real(props.FinalTime)
	if err != nil {
		return err
	}
	c.dim, c.seen, c.tEnd = len(y0), 0, tEnd
	if err := c.w.Write(Header(c.dim)); err != nil {
		return err
	}
	return c.write(t0, y0)
}

func (c *CSVWriter) Step(h *props.Holder) error {
	if ok, err := h.Bool(props.StepAccepted); err != nil || !ok {
		return err
	}
	c.seen++
	t, err := h.Real(props.FinalTime)
	if err != nil {
		return err
	}
	if c.Every > 1 && c.seen%c.Every != 0 && t < c.tEnd {
		return nil
	}
	y, err := h.Vector(props.FinalValues)
	if err != nil {
		return err
	}
	return c.write(t, y)
}

func (c *CSVWriter) write(t float64, y dynamo.State) error {
	if len(y) != c.dim {
		return fmt.Errorf("%w: row has %d components, header %d", dynamo.ErrDimensionMismatch, len(y), c.dim)
	}
	return c.w.Write(Row(t, y))
}

func (c *CSVWriter) EndStepping() error {
	c.w.Flush()
	return c.w.Error()
}
