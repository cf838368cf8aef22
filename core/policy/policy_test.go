package policy

import (
	"errors"
	"math"
	"testing"

	"github.com/kilianp07/gridsim/core/episode"
	"github.com/kilianp07/gridsim/core/model"
)

func testFleet() []model.PlantSpec {
	return []model.PlantSpec{
		{ID: "gas-1", Type: model.Gas, MinMW: 0, MaxMW: 100, RampMW: 100, CostPerMWh: 150, CO2PerMWh: 0.8},
		{ID: "coal-1", Type: model.Coal, MinMW: 0, MaxMW: 150, RampMW: 50, CostPerMWh: 50, CO2PerMWh: 1.2},
		{ID: "nuclear-1", Type: model.Nuclear, MinMW: 150, MaxMW: 300, RampMW: 20, CostPerMWh: 20, CO2PerMWh: 0.01},
		{ID: "solar-1", Type: model.Solar, MaxMW: 150},
	}
}

// obsWith builds an observation vector where the one-hour-ahead demand and
// renewable centers produce the given residual. All other fields are zero.
func obsWith(l episode.Layout, demandMW, renewMW float64) []float64 {
	obs := make([]float64, l.Size())
	obs[l.DemandCenter(1)] = demandMW
	obs[l.RenewableCenter(1)] = renewMW
	return obs
}

func actionMW(specs []model.PlantSpec, action []float64) []float64 {
	var disp []model.PlantSpec
	for _, s := range specs {
		if s.Type.Dispatchable() {
			disp = append(disp, s)
		}
	}
	out := make([]float64, len(action))
	for i := range action {
		out[i] = action[i] * disp[i].MaxMW
	}
	return out
}

func TestMeritOrderFillsCheapestFirst(t *testing.T) {
	specs := testFleet()
	l := episode.Layout{Plants: len(specs), Horizon: 12}
	p := NewMeritOrder(specs, l)

	// Residual 350: nuclear runs at its 300 cap, coal covers the remaining
	// 50, gas stays off.
	action := p.Act(obsWith(l, 400, 50))
	mw := actionMW(specs, action)
	if mw[2] != 300 {
		t.Errorf("nuclear %v, want 300 (cheapest, filled first)", mw[2])
	}
	if math.Abs(mw[1]-50) > 1e-9 {
		t.Errorf("coal %v, want 50", mw[1])
	}
	if mw[0] != 0 {
		t.Errorf("gas %v, want 0 (most expensive)", mw[0])
	}
}

func TestMeritOrderCommitsMinima(t *testing.T) {
	specs := testFleet()
	l := episode.Layout{Plants: len(specs), Horizon: 12}
	p := NewMeritOrder(specs, l)

	// Residual below the nuclear minimum: the minimum is still committed.
	action := p.Act(obsWith(l, 100, 0))
	mw := actionMW(specs, action)
	if mw[2] < 150 {
		t.Errorf("nuclear %v below technical minimum 150", mw[2])
	}
}

func TestMeritOrderActionsInRange(t *testing.T) {
	specs := testFleet()
	l := episode.Layout{Plants: len(specs), Horizon: 12}
	p := NewMeritOrder(specs, l)
	for _, residual := range []float64{-100, 0, 50, 400, 550, 10000} {
		action := p.Act(obsWith(l, residual, 0))
		if len(action) != 3 {
			t.Fatalf("action length %d, want 3", len(action))
		}
		for i, a := range action {
			if a < 0 || a > 1 {
				t.Fatalf("residual %.0f: action[%d]=%v outside [0,1]", residual, i, a)
			}
		}
	}
}

func TestLPMatchesMeritOnSimpleCase(t *testing.T) {
	specs := testFleet()
	l := episode.Layout{Plants: len(specs), Horizon: 12}
	lp := NewLPPolicy(specs, l)
	merit := NewMeritOrder(specs, l)

	obs := obsWith(l, 400, 50)
	got := actionMW(specs, lp.Act(obs))
	want := actionMW(specs, merit.Act(obs))
	for i := range got {
		if math.Abs(got[i]-want[i]) > 1e-6 {
			t.Fatalf("plant %d: lp %v, merit %v", i, got[i], want[i])
		}
	}
}

func TestLPClampsInfeasibleTargets(t *testing.T) {
	specs := testFleet()
	l := episode.Layout{Plants: len(specs), Horizon: 12}
	p := NewLPPolicy(specs, l)

	// Demand beyond the fleet's total capacity: everything runs flat out.
	action := p.Act(obsWith(l, 5000, 0))
	for i, a := range action {
		if math.Abs(a-1) > 1e-6 {
			t.Fatalf("action[%d]=%v, want 1 at saturation", i, a)
		}
	}

	// Residual below the committed minima: only the minima run.
	action = p.Act(obsWith(l, 0, 0))
	mw := actionMW(specs, action)
	if math.Abs(mw[2]-150) > 1e-6 || mw[0] > 1e-6 || mw[1] > 1e-6 {
		t.Fatalf("expected minima-only dispatch, got %v", mw)
	}
}

func TestLPFallsBackOnSolverFailure(t *testing.T) {
	orig := lpSolve
	lpSolve = func(costs, mins, maxs []float64, target float64) ([]float64, error) {
		return nil, errors.New("simplex diverged")
	}
	defer func() { lpSolve = orig }()

	specs := testFleet()
	l := episode.Layout{Plants: len(specs), Horizon: 12}
	p := NewLPPolicy(specs, l)
	merit := NewMeritOrder(specs, l)

	obs := obsWith(l, 400, 50)
	got := p.Act(obs)
	want := merit.Act(obs)
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("fallback action[%d]=%v, merit gives %v", i, got[i], want[i])
		}
	}
}

func TestSolveLPRespectsBox(t *testing.T) {
	sol, err := solveLP(
		[]float64{150, 50, 20},
		[]float64{0, 0, 150},
		[]float64{100, 150, 300},
		400,
	)
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	var total float64
	for i, v := range sol {
		total += v
		if v < -1e-6 {
			t.Fatalf("sol[%d]=%v negative", i, v)
		}
	}
	if math.Abs(total-400) > 1e-6 {
		t.Fatalf("total %v, want 400", total)
	}
	// Cost-optimal split: nuclear 300, coal 100, gas 0.
	if math.Abs(sol[2]-300) > 1e-6 || math.Abs(sol[1]-100) > 1e-6 || math.Abs(sol[0]) > 1e-6 {
		t.Fatalf("unexpected allocation %v", sol)
	}
}
