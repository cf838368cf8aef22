package policy

import (
	"sort"

	"github.com/kilianp07/gridsim/core/episode"
	"github.com/kilianp07/gridsim/core/model"
)

// Policy produces a dispatch action from an observation vector. The
// returned vector holds one fraction in [0,1] per dispatchable plant in
// construction order. Policies consume the same fixed-layout observation a
// trained controller would; they are collaborators of the simulation
// contract, not part of it.
type Policy interface {
	Act(obs []float64) []float64
}

// residualMW estimates the generation the dispatchable fleet must cover at
// the next step: the one-step-ahead demand center minus the renewable
// center.
func residualMW(obs []float64, l episode.Layout) float64 {
	if l.Horizon < 1 {
		return 0
	}
	r := obs[l.DemandCenter(1)] - obs[l.RenewableCenter(1)]
	if r < 0 {
		return 0
	}
	return r
}

// MeritOrder fills the forecast residual plant by plant in ascending
// marginal cost order, respecting each plant's operating range.
type MeritOrder struct {
	layout episode.Layout
	plants []model.PlantSpec // dispatchable, construction order
	order  []int             // indices into plants, cheapest first
}

// NewMeritOrder builds a merit-order policy for the given fleet and
// observation layout. Only the dispatchable plants are retained.
func NewMeritOrder(specs []model.PlantSpec, layout episode.Layout) *MeritOrder {
	p := &MeritOrder{layout: layout}
	for _, s := range specs {
		if s.Type.Dispatchable() {
			p.plants = append(p.plants, s)
		}
	}
	p.order = make([]int, len(p.plants))
	for i := range p.order {
		p.order[i] = i
	}
	sort.SliceStable(p.order, func(a, b int) bool {
		return p.plants[p.order[a]].CostPerMWh < p.plants[p.order[b]].CostPerMWh
	})
	return p
}

// Act allocates the residual greedily. Every plant produces at least its
// technical minimum, so the minima are committed first and only the
// remainder is allocated by cost.
func (p *MeritOrder) Act(obs []float64) []float64 {
	remaining := residualMW(obs, p.layout)
	targets := make([]float64, len(p.plants))
	for i, s := range p.plants {
		targets[i] = s.MinMW
		remaining -= s.MinMW
	}
	for _, i := range p.order {
		if remaining <= 0 {
			break
		}
		headroom := p.plants[i].MaxMW - targets[i]
		take := headroom
		if take > remaining {
			take = remaining
		}
		targets[i] += take
		remaining -= take
	}
	action := make([]float64, len(p.plants))
	for i, s := range p.plants {
		action[i] = targets[i] / s.MaxMW
	}
	return action
}
