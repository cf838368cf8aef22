package reward

import (
	"fmt"

	"github.com/kilianp07/gridsim/core/model"
)

// Weights balance the partially conflicting dispatch objectives. All must
// be non-negative; the blackout weight should dominate so that load
// shedding is never cheaper than expensive feasible dispatch.
type Weights struct {
	Finance  float64 `json:"finance"`
	CO2      float64 `json:"co2"`
	Waste    float64 `json:"waste"`
	Blackout float64 `json:"blackout"`
}

// SetDefaults applies the reference weighting.
func (w *Weights) SetDefaults() {
	if w.Finance == 0 && w.CO2 == 0 && w.Waste == 0 && w.Blackout == 0 {
		w.Finance = 0.1
		w.CO2 = 0.1
		w.Waste = 0.5
		w.Blackout = 100
	}
}

// Validate rejects negative weights.
func (w Weights) Validate() error {
	if w.Finance < 0 || w.CO2 < 0 || w.Waste < 0 || w.Blackout < 0 {
		return fmt.Errorf("reward weights must be non-negative")
	}
	return nil
}

// Breakdown is the unweighted per-step decomposition of the penalty terms.
type Breakdown struct {
	Cost     float64
	CO2      float64
	WasteMW  float64
	Blackout float64
}

// Evaluator scores one step's realized outcome. It is a pure function of
// its inputs and never mutates state.
type Evaluator struct {
	specs   []model.PlantSpec
	weights Weights
}

// New builds an evaluator bound to a fixed fleet and weight configuration.
func New(specs []model.PlantSpec, w Weights) (Evaluator, error) {
	if err := w.Validate(); err != nil {
		return Evaluator{}, err
	}
	return Evaluator{specs: append([]model.PlantSpec(nil), specs...), weights: w}, nil
}

// Weights returns the configured weighting.
func (e Evaluator) Weights() Weights { return e.weights }

// Score computes reward = −(wF·cost + wC·co2 + wW·waste + wB·blackout)
// from the step's final plant outputs, curtailed renewable energy and
// supply/demand balance. The blackout term is the unmet demand
// max(0, −balance); it is zero whenever supply covers the load.
func (e Evaluator) Score(outputs []float64, wasteMW, balance float64) (float64, Breakdown) {
	var b Breakdown
	for i, s := range e.specs {
		if i >= len(outputs) {
			break
		}
		b.Cost += outputs[i] * s.CostPerMWh
		b.CO2 += outputs[i] * s.CO2PerMWh
	}
	if wasteMW > 0 {
		b.WasteMW = wasteMW
	}
	if balance < 0 {
		b.Blackout = -balance
	}
	reward := -(e.weights.Finance*b.Cost +
		e.weights.CO2*b.CO2 +
		e.weights.Waste*b.WasteMW +
		e.weights.Blackout*b.Blackout)
	return reward, b
}
