package policy

import (
	"errors"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/kilianp07/gridsim/core/episode"
	"github.com/kilianp07/gridsim/core/model"
)

// ErrInfeasible indicates the LP had no solution meeting the residual.
var ErrInfeasible = errors.New("lp infeasible")

// LPPolicy solves a linear program minimizing total marginal cost subject
// to covering the forecast residual within each plant's operating range.
// On solver failure it falls back to the merit-order allocation.
type LPPolicy struct {
	plants   []model.PlantSpec
	layout   episode.Layout
	fallback *MeritOrder
}

// NewLPPolicy builds an LP policy for the given fleet and observation
// layout.
func NewLPPolicy(specs []model.PlantSpec, layout episode.Layout) *LPPolicy {
	p := &LPPolicy{layout: layout, fallback: NewMeritOrder(specs, layout)}
	for _, s := range specs {
		if s.Type.Dispatchable() {
			p.plants = append(p.plants, s)
		}
	}
	return p
}

// solveLP runs the simplex algorithm: minimize c·x subject to the equality
// Σx = target and the per-plant box constraints min ≤ x ≤ max.
func solveLP(costs, mins, maxs []float64, target float64) ([]float64, error) {
	n := len(costs)
	c := append([]float64(nil), costs...)

	// Box constraints as G x ≤ h: x ≤ max and −x ≤ −min.
	g := mat.NewDense(2*n, n, nil)
	h := make([]float64, 2*n)
	for i := 0; i < n; i++ {
		g.Set(i, i, 1)
		h[i] = maxs[i]
		g.Set(n+i, i, -1)
		h[n+i] = -mins[i]
	}

	A := mat.NewDense(1, n, nil)
	for i := 0; i < n; i++ {
		A.Set(0, i, 1)
	}
	b := []float64{target}

	cStd, AStd, bStd := lp.Convert(c, g, h, A, b)
	_, sol, err := lp.Simplex(cStd, AStd, bStd, 1e-7, nil)
	if err != nil {
		return nil, err
	}
	return sol[:n], nil
}

// lpSolve points to the function used to solve the LP. It can be overridden
// in tests to simulate solver failures.
var lpSolve = solveLP

// Act computes the cost-optimal dispatch for the next step. The residual is
// clamped into the fleet's feasible range before solving so the LP only
// fails on genuine solver trouble.
func (p *LPPolicy) Act(obs []float64) []float64 {
	n := len(p.plants)
	if n == 0 {
		return nil
	}
	costs := make([]float64, n)
	mins := make([]float64, n)
	maxs := make([]float64, n)
	var minSum, maxSum float64
	for i, s := range p.plants {
		costs[i] = s.CostPerMWh
		mins[i] = s.MinMW
		maxs[i] = s.MaxMW
		minSum += s.MinMW
		maxSum += s.MaxMW
	}

	target := residualMW(obs, p.layout)
	if target < minSum {
		target = minSum
	} else if target > maxSum {
		target = maxSum
	}

	sol, err := lpSolve(costs, mins, maxs, target)
	if err != nil {
		return p.fallback.Act(obs)
	}
	action := make([]float64, n)
	for i := range sol {
		v := sol[i]
		if v < mins[i] {
			v = mins[i]
		} else if v > maxs[i] {
			v = maxs[i]
		}
		action[i] = v / maxs[i]
	}
	return action
}
