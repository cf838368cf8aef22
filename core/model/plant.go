package model

import "fmt"

// PlantType identifies the technology of a generation unit. The set is
// closed: behaviour differences between types are purely parametric.
type PlantType int

const (
	Gas PlantType = iota
	Coal
	Nuclear
	Solar
	Wind
)

// String returns a human-readable representation of the plant type.
func (t PlantType) String() string {
	switch t {
	case Gas:
		return "gas"
	case Coal:
		return "coal"
	case Nuclear:
		return "nuclear"
	case Solar:
		return "solar"
	case Wind:
		return "wind"
	default:
		return "unknown"
	}
}

// ParsePlantType converts a configuration string to a PlantType.
func ParsePlantType(s string) (PlantType, error) {
	switch s {
	case "gas":
		return Gas, nil
	case "coal":
		return Coal, nil
	case "nuclear":
		return Nuclear, nil
	case "solar":
		return Solar, nil
	case "wind":
		return Wind, nil
	default:
		return 0, fmt.Errorf("unknown plant type %q", s)
	}
}

// Dispatchable reports whether units of this type are directly actuated by
// dispatch targets. Solar and wind follow realized weather instead.
func (t PlantType) Dispatchable() bool {
	switch t {
	case Gas, Coal, Nuclear:
		return true
	default:
		return false
	}
}

// PlantSpec holds the immutable physical and economic parameters of one
// generation unit. One simulation step corresponds to one hour, so RampMW
// is the maximum output change per hour.
type PlantSpec struct {
	ID         string
	Type       PlantType
	MinMW      float64
	MaxMW      float64
	RampMW     float64
	CostPerMWh float64
	CO2PerMWh  float64
}

// Validate checks that the spec describes a physically sound unit.
func (s PlantSpec) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("plant id is required")
	}
	if s.MaxMW <= 0 {
		return fmt.Errorf("plant %s: max output must be positive", s.ID)
	}
	if s.MinMW < 0 || s.MinMW > s.MaxMW {
		return fmt.Errorf("plant %s: min output %.2f outside [0, %.2f]", s.ID, s.MinMW, s.MaxMW)
	}
	if s.Type.Dispatchable() && s.RampMW <= 0 {
		return fmt.Errorf("plant %s: ramp rate must be positive", s.ID)
	}
	if s.CostPerMWh < 0 {
		return fmt.Errorf("plant %s: negative marginal cost", s.ID)
	}
	if s.CO2PerMWh < 0 {
		return fmt.Errorf("plant %s: negative emission rate", s.ID)
	}
	return nil
}

// DefaultOutput returns the output a dispatchable plant starts an episode
// at: the middle of its operating range. Renewables start at zero and are
// overwritten by the first realized availability.
func (s PlantSpec) DefaultOutput() float64 {
	if !s.Type.Dispatchable() {
		return 0
	}
	return (s.MinMW + s.MaxMW) / 2
}

// PlantState is the mutable per-step state of one unit. It is owned
// exclusively by the grid engine.
type PlantState struct {
	OutputMW float64
}

// ValidateFleet checks a full plant list: every spec must be valid, IDs
// must be unique, and at least one dispatchable unit must exist.
func ValidateFleet(specs []PlantSpec) error {
	if len(specs) == 0 {
		return fmt.Errorf("at least one plant is required")
	}
	seen := make(map[string]struct{}, len(specs))
	dispatchable := 0
	for _, s := range specs {
		if err := s.Validate(); err != nil {
			return err
		}
		if _, ok := seen[s.ID]; ok {
			return fmt.Errorf("duplicate plant id %s", s.ID)
		}
		seen[s.ID] = struct{}{}
		if s.Type.Dispatchable() {
			dispatchable++
		}
	}
	if dispatchable == 0 {
		return fmt.Errorf("at least one dispatchable plant is required")
	}
	return nil
}
