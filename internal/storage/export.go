package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/ddesim/internal/dynamo"
)

type ExportData struct {
	RunMetadata
	Times  []float64   `json:"times"`
	States [][]float64 `json:"states"`
}

// ExportJSON writes a run with its samples as one indented JSON document.
func ExportJSON(w io.Writer, meta RunMetadata, times []float64, states []dynamo.State) error {
	data := ExportData{
		RunMetadata: meta,
		Times:       times,
		States:      make([][]float64, len(states)),
	}
	for i, s := range states {
		data.States[i] = s
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
