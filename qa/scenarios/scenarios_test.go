package scenarios

import (
	"os"
	"path/filepath"
	"testing"
)

// RunScenario replays the scenario and fails the test on any invariant or
// expectation violation.
func RunScenario(t *testing.T, sc *Scenario) {
	t.Helper()
	res, err := Replay(sc)
	if err != nil {
		t.Fatalf("scenario %s: %v", sc.Name, err)
	}
	if err := sc.Check(res); err != nil {
		t.Errorf("scenario %s: %v", sc.Name, err)
	}
}

func TestScenarios(t *testing.T) {
	files, err := filepath.Glob("*.yaml")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(files) == 0 {
		t.Fatal("no scenario files found")
	}
	for _, f := range files {
		sc, err := Load(f)
		if err != nil {
			t.Fatalf("load %s: %v", f, err)
		}
		t.Run(sc.Name, func(t *testing.T) {
			RunScenario(t, sc)
		})
	}
}

func TestScenariosAreDeterministic(t *testing.T) {
	sc, err := Load("full_dispatch.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	// A replay is only meaningful if two runs agree; RunScenario asserts
	// the same expectations both times.
	RunScenario(t, sc)
	RunScenario(t, sc)
}

func TestLoadInvalid(t *testing.T) {
	if _, err := Load("no-file.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
	tmp := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(tmp, []byte(":"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(tmp); err == nil {
		t.Fatal("expected error for malformed yaml")
	}
}

func TestScenarioDefaultFleet(t *testing.T) {
	sc := &Scenario{}
	specs, err := sc.Specs()
	if err != nil {
		t.Fatalf("specs: %v", err)
	}
	if len(specs) != 5 {
		t.Fatalf("expected reference fleet of 5 plants, got %d", len(specs))
	}
}
