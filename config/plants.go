package config

import "github.com/kilianp07/gridsim/core/model"

// PlantConfig describes one generation unit in the configuration file.
type PlantConfig struct {
	ID         string  `json:"id"`
	Type       string  `json:"type"`
	MinMW      float64 `json:"min_mw"`
	MaxMW      float64 `json:"max_mw"`
	RampMW     float64 `json:"ramp_mw"`
	CostPerMWh float64 `json:"cost_per_mwh"`
	CO2PerMWh  float64 `json:"co2_per_mwh"`
}

// ToSpec converts the config entry to a validated plant spec.
func (p PlantConfig) ToSpec() (model.PlantSpec, error) {
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

// DefaultPlants is the reference fleet: three dispatchable units and two
// weather-driven farms serving a 400 MW city.
func DefaultPlants() []PlantConfig {
	return []PlantConfig{
		{ID: "gas-1", Type: "gas", MinMW: 0, MaxMW: 100, RampMW: 100, CostPerMWh: 150, CO2PerMWh: 0.8},
		{ID: "coal-1", Type: "coal", MinMW: 0, MaxMW: 150, RampMW: 50, CostPerMWh: 50, CO2PerMWh: 1.2},
		{ID: "nuclear-1", Type: "nuclear", MinMW: 150, MaxMW: 300, RampMW: 20, CostPerMWh: 20, CO2PerMWh: 0.01},
		{ID: "solar-1", Type: "solar", MinMW: 0, MaxMW: 150},
		{ID: "wind-1", Type: "wind", MinMW: 0, MaxMW: 100},
	}
}

// Specs converts and validates the whole fleet.
func Specs(plants []PlantConfig) ([]model.PlantSpec, error) {
	specs := make([]model.PlantSpec, 0, len(plants))
	for _, p := range plants {
		s, err := p.ToSpec()
		if err != nil {
			return nil, err
		}
		specs = append(specs, s)
	}
	if err := model.ValidateFleet(specs); err != nil {
		return nil, err
	}
	return specs, nil
}
