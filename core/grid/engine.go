package grid

import (
	"errors"
	"fmt"
	"math"

	"github.com/kilianp07/gridsim/core/model"
)

// ErrInvalidAction indicates a malformed dispatch vector: wrong length or
// non-finite entries. Out-of-[0,1] entries are clamped instead (lenient
// policy), never rejected.
var ErrInvalidAction = errors.New("invalid action")

// ErrInvariant indicates an internal physics bug: a clamped output landed
// outside its plant's operating range. It must never occur in correct
// operation.
var ErrInvariant = errors.New("physics invariant violated")

// Result is the outcome of applying one dispatch step.
type Result struct {
	// Outputs holds the new output of every plant in construction order.
	Outputs []float64
	// Balance is total production minus realized demand. Negative balance
	// means unmet demand.
	Balance float64
	// AvailableRenewableMW is the realized renewable availability summed
	// over all non-dispatchable plants.
	AvailableRenewableMW float64
	// WasteMW is the curtailed renewable energy: the share of a production
	// surplus absorbed by spilling renewables first.
	WasteMW float64
}

// Engine owns the plant states and applies dispatch actions under ramp and
// capacity constraints. All plants are updated from a single snapshot of
// the previous step, so no in-step ordering effects exist.
type Engine struct {
	specs        []model.PlantSpec
	states       []model.PlantState
	dispatchable []int
	renewable    []int
}

// New builds an engine for the given fleet. Plant order is fixed for the
// lifetime of the engine; action vectors address dispatchable plants in
// that order.
func New(specs []model.PlantSpec) (*Engine, error) {
	if err := model.ValidateFleet(specs); err != nil {
		return nil, err
	}
	e := &Engine{
		specs:  append([]model.PlantSpec(nil), specs...),
		states: make([]model.PlantState, len(specs)),
	}
	for i, s := range specs {
		if s.Type.Dispatchable() {
			e.dispatchable = append(e.dispatchable, i)
		} else {
			e.renewable = append(e.renewable, i)
		}
	}
	e.Reset()
	return e, nil
}

// Reset puts every dispatchable plant at the middle of its operating range
// and every renewable at zero.
func (e *Engine) Reset() {
	for i, s := range e.specs {
		e.states[i].OutputMW = s.DefaultOutput()
	}
}

// SetRenewableOutputs points the non-dispatchable plants at their realized
// availability without moving dispatchable units. Used once at episode
// reset so the initial observation reflects the first realized weather.
func (e *Engine) SetRenewableOutputs(availMW []float64) {
	for ri, pi := range e.renewable {
		if ri >= len(availMW) {
			break
		}
		v := availMW[ri]
		if v < 0 {
			v = 0
		} else if v > e.specs[pi].MaxMW {
			v = e.specs[pi].MaxMW
		}
		e.states[pi].OutputMW = v
	}
}

// Specs returns the fleet in construction order.
func (e *Engine) Specs() []model.PlantSpec { return e.specs }

// Outputs returns the current output of every plant in construction order.
func (e *Engine) Outputs() []float64 {
	out := make([]float64, len(e.states))
	for i, st := range e.states {
		out[i] = st.OutputMW
	}
	return out
}

// DispatchableCount returns the expected action vector length.
func (e *Engine) DispatchableCount() int { return len(e.dispatchable) }

// Apply advances the fleet by one step. action holds one fractional target
// in [0,1] per dispatchable plant, interpreted as target×max output.
// renewable holds the realized availability of each non-dispatchable plant
// in construction order, demand the realized load.
//
// Each dispatchable plant moves toward its desired output clamped first by
// its ramp rate relative to the previous snapshot, then by its [min, max]
// bounds. Renewable plants follow their availability. A production surplus
// is accounted as curtailed renewable energy, capped at what renewables
// actually produced.
func (e *Engine) Apply(action []float64, renewable []float64, demand float64) (Result, error) {
	if len(action) != len(e.dispatchable) {
		return Result{}, fmt.Errorf("%w: got %d targets, want %d", ErrInvalidAction, len(action), len(e.dispatchable))
	}
	for i, a := range action {
		if math.IsNaN(a) || math.IsInf(a, 0) {
			return Result{}, fmt.Errorf("%w: non-finite target at index %d", ErrInvalidAction, i)
		}
	}
	if len(renewable) != len(e.renewable) {
		return Result{}, fmt.Errorf("%w: got %d renewable values, want %d", ErrInvalidAction, len(renewable), len(e.renewable))
	}

	prev := make([]float64, len(e.states))
	for i, st := range e.states {
		prev[i] = st.OutputMW
	}

	for ai, pi := range e.dispatchable {
		spec := e.specs[pi]
		frac := action[ai]
		if frac < 0 {
			frac = 0
		} else if frac > 1 {
			frac = 1
		}
		desired := frac * spec.MaxMW

		delta := desired - prev[pi]
		if delta > spec.RampMW {
			delta = spec.RampMW
		} else if delta < -spec.RampMW {
			delta = -spec.RampMW
		}
		out := prev[pi] + delta
		if out < spec.MinMW {
			out = spec.MinMW
		} else if out > spec.MaxMW {
			out = spec.MaxMW
		}
		if out < spec.MinMW || out > spec.MaxMW {
			return Result{}, fmt.Errorf("%w: plant %s output %.4f outside [%.2f, %.2f]", ErrInvariant, spec.ID, out, spec.MinMW, spec.MaxMW)
		}
		e.states[pi].OutputMW = out
	}

	var available float64
	for ri, pi := range e.renewable {
		spec := e.specs[pi]
		avail := renewable[ri]
		if avail < 0 {
			avail = 0
		} else if avail > spec.MaxMW {
			avail = spec.MaxMW
		}
		e.states[pi].OutputMW = avail
		available += avail
	}

	res := Result{
		Outputs:              e.Outputs(),
		AvailableRenewableMW: available,
	}
	var total float64
	for _, o := range res.Outputs {
		total += o
	}
	res.Balance = total - demand
	if surplus := res.Balance; surplus > 0 {
		res.WasteMW = math.Min(available, surplus)
	}
	return res, nil
}
