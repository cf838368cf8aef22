package scenarios

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/gridsim/config"
	"github.com/kilianp07/gridsim/core/model"
)

// PlantDef describes one plant in a scenario file.
type PlantDef struct {
	ID         string  `yaml:"id"`
	Type       string  `yaml:"type"`
	MinMW      float64 `yaml:"min_mw"`
	MaxMW      float64 `yaml:"max_mw"`
	RampMW     float64 `yaml:"ramp_mw"`
	CostPerMWh float64 `yaml:"cost_per_mwh"`
	CO2PerMWh  float64 `yaml:"co2_per_mwh"`
}

// ToSpec converts the definition to a plant spec.
func (p PlantDef) ToSpec() (model.PlantSpec, error) {
	t, err := model.ParsePlantType(p.Type)
	if err != nil {
		return model.PlantSpec{}, err
	}
	spec := model.PlantSpec{
		ID:         p.ID,
		Type:       t,
		MinMW:      p.MinMW,
		MaxMW:      p.MaxMW,
		RampMW:     p.RampMW,
		CostPerMWh: p.CostPerMWh,
		CO2PerMWh:  p.CO2PerMWh,
	}
	return spec, spec.Validate()
}

// Expected states the assertions a scenario run must satisfy.
type Expected struct {
	// Outcome is "terminated" or "truncated".
	Outcome string `yaml:"outcome"`
	// MaxUnmetMW bounds the cumulative unmet demand when set.
	MaxUnmetMW *float64 `yaml:"max_unmet_mw,omitempty"`
	// MinSteps requires the episode to survive at least this many steps.
	MinSteps int `yaml:"min_steps,omitempty"`
}

// Scenario is a deterministic replay: a fleet, a seed and an action
// sequence, with expectations on the outcome. When the action sequence is
// shorter than the episode, the last action is repeated.
type Scenario struct {
	Name                string      `yaml:"name"`
	Description         string      `yaml:"description,omitempty"`
	Seed                int64       `yaml:"seed"`
	MaxSteps            int         `yaml:"max_steps,omitempty"`
	BlackoutThresholdMW float64     `yaml:"blackout_threshold_mw,omitempty"`
	Plants              []PlantDef  `yaml:"plants,omitempty"`
	Actions             [][]float64 `yaml:"actions"`
	Expected            Expected    `yaml:"expected"`
}

// Specs returns the scenario fleet, falling back to the reference fleet
// when the file defines none.
func (s *Scenario) Specs() ([]model.PlantSpec, error) {
	if len(s.Plants) == 0 {
		return config.Specs(config.DefaultPlants())
	}
	specs := make([]model.PlantSpec, 0, len(s.Plants))
	for _, p := range s.Plants {
		spec, err := p.ToSpec()
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, model.ValidateFleet(specs)
}

// Load reads a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}
