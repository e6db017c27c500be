package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/ddesim/internal/dynamo"
	"github.com/san-kum/ddesim/internal/integrators"
	"github.com/san-kum/ddesim/internal/models"
)

type Registry struct {
	models      map[string]func() models.Delayed
	integrators map[string]func() dynamo.Integrator
}

func NewRegistry() *Registry {
	r := &Registry{
		models:      make(map[string]func() models.Delayed),
		integrators: make(map[string]func() dynamo.Integrator),
	}

	r.models["decay"] = func() models.Delayed { return models.NewDecay() }
	r.models["sine"] = func() models.Delayed { return models.NewSine() }
	r.models["lotka"] = func() models.Delayed { return models.NewLotkaVolterra() }
	r.models["mackey_glass"] = func() models.Delayed { return models.NewMackeyGlass() }
	r.models["hutchinson"] = func() models.Delayed { return models.NewHutchinson() }
	r.models["variable_delay"] = func() models.Delayed { return models.NewVariableDelay() }

	r.integrators["euler"] = func() dynamo.Integrator { return integrators.NewEuler() }
	r.integrators["rk4"] = func() dynamo.Integrator { return integrators.NewRK4() }
	r.integrators["rk23"] = func() dynamo.Integrator { return integrators.NewRK23() }
	r.integrators["rk45"] = func() dynamo.Integrator { return integrators.NewRK45() }

	return r
}

// Register adds or replaces a model constructor.
func (r *Registry) Register(name string, fn func() models.Delayed) {
	r.models[name] = fn
}

func (r *Registry) GetModel(name string) (models.Delayed, error) {
	fn, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("unknown model: %s", name)
	}
	return fn(), nil
}

func (r *Registry) GetIntegrator(name string) (dynamo.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

func (r *Registry) ListModels() []string {
	return sortedKeys(r.models)
}

func (r *Registry) ListIntegrators() []string {
	return sortedKeys(r.integrators)
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
