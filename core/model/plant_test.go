package model

import "testing"

func validSpec() PlantSpec {
	return PlantSpec{ID: "gas-1", Type: Gas, MinMW: 0, MaxMW: 100, RampMW: 10, CostPerMWh: 150, CO2PerMWh: 0.8}
}

func TestPlantSpecValidate(t *testing.T) {
	if err := validSpec().Validate(); err != nil {
		t.Fatalf("valid spec rejected: %v", err)
	}

	cases := map[string]func(*PlantSpec){
		"missing id":    func(s *PlantSpec) { s.ID = "" },
		"zero max":      func(s *PlantSpec) { s.MaxMW = 0 },
		"negative min":  func(s *PlantSpec) { s.MinMW = -1 },
		"min above max": func(s *PlantSpec) { s.MinMW = 200 },
		"zero ramp":     func(s *PlantSpec) { s.RampMW = 0 },
		"negative cost": func(s *PlantSpec) { s.CostPerMWh = -1 },
		"negative co2":  func(s *PlantSpec) { s.CO2PerMWh = -1 },
	}
	for name, mutate := range cases {
		s := validSpec()
		mutate(&s)
		if err := s.Validate(); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}

func TestRenewableNeedsNoRamp(t *testing.T) {
	s := PlantSpec{ID: "solar-1", Type: Solar, MaxMW: 50}
	if err := s.Validate(); err != nil {
		t.Fatalf("renewable without ramp rejected: %v", err)
	}
}

func TestDispatchable(t *testing.T) {
	for _, typ := range []PlantType{Gas, Coal, Nuclear} {
		if !typ.Dispatchable() {
			t.Errorf("%s should be dispatchable", typ)
		}
	}
	for _, typ := range []PlantType{Solar, Wind} {
		if typ.Dispatchable() {
			t.Errorf("%s should not be dispatchable", typ)
		}
	}
}

func TestParsePlantTypeRoundTrip(t *testing.T) {
	for _, typ := range []PlantType{Gas, Coal, Nuclear, Solar, Wind} {
		got, err := ParsePlantType(typ.String())
		if err != nil {
			t.Fatalf("parse %s: %v", typ, err)
		}
		if got != typ {
			t.Errorf("round trip %s: got %s", typ, got)
		}
	}
	if _, err := ParsePlantType("fusion"); err == nil {
		t.Error("expected error for unknown type")
	}
}

func TestValidateFleet(t *testing.T) {
	gas := validSpec()
	if err := ValidateFleet([]PlantSpec{gas}); err != nil {
		t.Fatalf("valid fleet rejected: %v", err)
	}
	if err := ValidateFleet(nil); err == nil {
		t.Error("expected error for empty fleet")
	}
	if err := ValidateFleet([]PlantSpec{gas, gas}); err == nil {
		t.Error("expected error for duplicate ids")
	}
	solar := PlantSpec{ID: "solar-1", Type: Solar, MaxMW: 50}
	if err := ValidateFleet([]PlantSpec{solar}); err == nil {
		t.Error("expected error for fleet without dispatchable plant")
	}
}

func TestDefaultOutput(t *testing.T) {
	s := PlantSpec{ID: "nuc-1", Type: Nuclear, MinMW: 150, MaxMW: 300, RampMW: 20}
	if got := s.DefaultOutput(); got != 225 {
		t.Fatalf("expected mid-range 225, got %.2f", got)
	}
	solar := PlantSpec{ID: "solar-1", Type: Solar, MaxMW: 50}
	if got := solar.DefaultOutput(); got != 0 {
		t.Fatalf("renewable default should be 0, got %.2f", got)
	}
}
