package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/imexrk/internal/modules"
)

type ExportData struct {
	RunMetadata
	Steps  int         `json:"steps"`
	Times  []float64   `json:"times"`
	States [][]float64 `json:"states"`
}

// ExportJSON writes a run as one indented JSON document.
func ExportJSON(w io.Writer, meta RunMetadata, traj modules.Trajectory) error {
	data := ExportData{
		RunMetadata: meta,
		Steps:       traj.Len(),
		Times:       traj.Times,
		States:      make([][]float64, len(traj.States)),
	}
	for i, s := range traj.States {
		data.States[i] = s
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
