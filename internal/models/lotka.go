package models

import (
	"fmt"

	"github.com/san-kum/ddesim/internal/dynamo"
)

// LotkaVolterra implements a predator-prey system whose interaction terms
// see the other population d time units late.
// State: [x, y] (prey, predator)
// Equations:
//
//	dx/dt =  r x(t) (1 - y(t-d))
//	dy/dt = -r y(t) (1 - x(t-d))
//
// d = 0 recovers the classic closed orbits; any d > 0 makes them spiral out.
type LotkaVolterra struct {
	d     float64
	rate  float64
	prey  float64
	preds float64
}

func NewLotkaVolterra() *LotkaVolterra {
	return &LotkaVolterra{d: 0.2, rate: 0.5, prey: 1, preds: 2}
}

func (l *LotkaVolterra) Name() string         { return "lotka" }
func (l *LotkaVolterra) StateDim() int        { return 2 }
func (l *LotkaVolterra) ParamNames() []string { return []string{"d", "rate"} }
func (l *LotkaVolterra) Args() []float64      { return argsOf(l) }

func (l *LotkaVolterra) History() dynamo.History {
	return dynamo.ConstantHistory(l.prey, l.preds)
}

func (l *LotkaVolterra) Derive(y dynamo.Accessor, t float64, args []float64) (dynamo.State, error) {
	d := arg(args, 0, l.d)
	r := arg(args, 1, l.rate)

	now := y.At(t)
	late := y.At(t - d)
	x, p := now[0], now[1]
	xd, pd := late[0], late[1]

	return dynamo.State{
		r * x * (1 - pd),
		-r * p * (1 - xd),
	}, nil
}

// GetParams implements dynamo.Configurable
func (l *LotkaVolterra) GetParams() map[string]float64 {
	return map[string]float64{
		"d":        l.d,
		"rate":     l.rate,
		"prey":     l.prey,
		"predator": l.preds,
	}
}

// SetParam implements dynamo.Configurable
func (l *LotkaVolterra) SetParam(name string, value float64) error {
	switch name {
	case "d":
		if value < 0 {
			return fmt.Errorf("lotka: d must be non-negative, got %g", value)
		}
		l.d = value
	case "rate":
		l.rate = value
	case "prey":
		l.prey = value
	case "predator":
		l.preds = value
	default:
		return unknownParam(l.Name(), name)
	}
	return nil
}
