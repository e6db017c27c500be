package models

import (
	"fmt"

	"github.com/san-kum/ddesim/internal/dde"
	"github.com/san-kum/ddesim/internal/dynamo"
)

// Delayed is a model with a default history and named parameters.
type Delayed interface {
	dde.Model
	dynamo.Configurable
	Name() string
	StateDim() int
	ParamNames() []string
	History() dynamo.History
	Args() []float64
}

// arg returns args[i] when present and fallback otherwise, so models also
// work when called without bound arguments.
func arg(args []float64, i int, fallback float64) float64 {
	if i < len(args) {
		return args[i]
	}
	return fallback
}

func argsOf(m Delayed) []float64 {
	params := m.GetParams()
	names := m.ParamNames()
	out := make([]float64, len(names))
	for i, name := range names {
		out[i] = params[name]
	}
	return out
}

func unknownParam(model, name string) error {
	return fmt.Errorf("%s: unknown parameter %q", model, name)
}
