package episode

import (
	"errors"
	"fmt"

	"github.com/kilianp07/gridsim/core/forecast"
	"github.com/kilianp07/gridsim/core/grid"
	"github.com/kilianp07/gridsim/core/model"
	"github.com/kilianp07/gridsim/core/reward"
	"github.com/kilianp07/gridsim/infra/logger"
)

// ErrInvalidState indicates Step was called before Reset or after the
// episode ended. This is a caller sequencing bug, surfaced immediately.
var ErrInvalidState = errors.New("invalid episode state")

// Phase is the controller's lifecycle state.
type Phase int

const (
	Uninitialized Phase = iota
	Running
	Terminated
	Truncated
)

// String returns a human-readable phase name.
func (p Phase) String() string {
	switch p {
	case Uninitialized:
		return "uninitialized"
	case Running:
		return "running"
	case Terminated:
		return "terminated"
	case Truncated:
		return "truncated"
	default:
		return "unknown"
	}
}

// Config bounds one episode.
type Config struct {
	// MaxSteps truncates the episode when the step index reaches it.
	MaxSteps int `json:"max_steps"`
	// BlackoutThresholdMW is the cumulative unmet demand beyond which the
	// grid collapses and the episode terminates.
	BlackoutThresholdMW float64 `json:"blackout_threshold_mw"`
}

// SetDefaults applies the reference episode bounds: one simulated day.
func (c *Config) SetDefaults() {
	if c.MaxSteps == 0 {
		c.MaxSteps = 24
	}
	if c.BlackoutThresholdMW == 0 {
		c.BlackoutThresholdMW = 300
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.MaxSteps < 1 {
		return fmt.Errorf("max steps must be at least 1")
	}
	if c.BlackoutThresholdMW <= 0 {
		return fmt.Errorf("blackout threshold must be positive")
	}
	return nil
}

// State is the mutable per-episode bookkeeping, replaced at every Reset.
type State struct {
	Step               int
	CumulativeCost     float64
	CumulativeCO2      float64
	CumulativeWasteMW  float64
	CumulativeUnmetMW  float64
	DemandHistoryMW    []float64
	RenewableHistoryMW []float64
}

// StepResult is the outcome of one Step call.
type StepResult struct {
	Observation []float64
	Reward      float64
	Terminated  bool
	Truncated   bool
	// Info carries the reward decomposition and realized physics of the
	// step, keyed by stable names.
	Info map[string]float64
}

// Controller drives one simulation instance through the
// Uninitialized → Running → {Terminated, Truncated} lifecycle. Reset and
// Step are synchronous and atomic with respect to the caller; a single
// instance must never be stepped concurrently.
type Controller struct {
	grid *grid.Engine
	fc   *forecast.Engine
	eval reward.Evaluator
	cfg  Config
	log  logger.Logger

	phase Phase
	state State
}

// New wires a controller from validated components. The plant order given
// here fixes the action and observation layout for the controller's
// lifetime.
func New(specs []model.PlantSpec, fcCfg forecast.Config, weights reward.Weights, cfg Config, log logger.Logger) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	g, err := grid.New(specs)
	if err != nil {
		return nil, err
	}
	fc, err := forecast.New(fcCfg, specs, cfg.MaxSteps)
	if err != nil {
		return nil, err
	}
	eval, err := reward.New(specs, weights)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Controller{grid: g, fc: fc, eval: eval, cfg: cfg, log: log}, nil
}

// Phase returns the current lifecycle phase.
func (c *Controller) Phase() Phase { return c.phase }

// State returns a copy of the episode bookkeeping.
func (c *Controller) State() State {
	s := c.state
	s.DemandHistoryMW = append([]float64(nil), c.state.DemandHistoryMW...)
	s.RenewableHistoryMW = append([]float64(nil), c.state.RenewableHistoryMW...)
	return s
}

// Layout describes the observation indexing for this configuration.
func (c *Controller) Layout() Layout {
	return Layout{Plants: len(c.grid.Specs()), Horizon: c.fc.Horizon()}
}

// DispatchableCount returns the expected action vector length.
func (c *Controller) DispatchableCount() int { return c.grid.DispatchableCount() }

// Specs returns the fleet in construction order.
func (c *Controller) Specs() []model.PlantSpec { return c.grid.Specs() }

// Reset starts a fresh episode deterministically from seed and returns the
// initial observation. Dispatchable plants start mid-range; renewables at
// the first realized availability.
func (c *Controller) Reset(seed int64) ([]float64, error) {
	c.grid.Reset()
	c.fc.Reset(seed)
	c.state = State{}

	demand, renew := c.fc.Realized(0)
	c.grid.SetRenewableOutputs(renew)
	c.state.DemandHistoryMW = append(c.state.DemandHistoryMW, demand)
	c.state.RenewableHistoryMW = append(c.state.RenewableHistoryMW, sum(renew))

	cone, err := c.fc.Cone(0)
	if err != nil {
		return nil, err
	}
	c.phase = Running
	return c.observation(cone), nil
}

// Step advances the simulation by one hour. It is valid only while the
// episode is Running: the grid applies the action, the forecast engine
// reveals the next realized values and advances its cone, the evaluator
// scores the outcome, and the terminal conditions are checked.
func (c *Controller) Step(action []float64) (StepResult, error) {
	if c.phase != Running {
		return StepResult{}, fmt.Errorf("%w: step called while %s", ErrInvalidState, c.phase)
	}

	t := c.state.Step + 1
	demand, renew := c.fc.Realized(t)
	res, err := c.grid.Apply(action, renew, demand)
	if err != nil {
		return StepResult{}, err
	}
	rew, bd := c.eval.Score(res.Outputs, res.WasteMW, res.Balance)

	c.state.Step = t
	c.state.CumulativeCost += bd.Cost
	c.state.CumulativeCO2 += bd.CO2
	c.state.CumulativeWasteMW += bd.WasteMW
	c.state.CumulativeUnmetMW += bd.Blackout
	c.state.DemandHistoryMW = append(c.state.DemandHistoryMW, demand)
	c.state.RenewableHistoryMW = append(c.state.RenewableHistoryMW, res.AvailableRenewableMW)

	terminated := c.state.CumulativeUnmetMW > c.cfg.BlackoutThresholdMW
	truncated := !terminated && t >= c.cfg.MaxSteps
	switch {
	case terminated:
		c.phase = Terminated
		c.log.Infof("grid collapse at step %d: cumulative unmet %.1f MW exceeds %.1f MW", t, c.state.CumulativeUnmetMW, c.cfg.BlackoutThresholdMW)
	case truncated:
		c.phase = Truncated
		c.log.Debugf("episode truncated at step %d", t)
	}

	cone, err := c.fc.Cone(t)
	if err != nil {
		return StepResult{}, err
	}

	return StepResult{
		Observation: c.observation(cone),
		Reward:      rew,
		Terminated:  terminated,
		Truncated:   truncated,
		Info: map[string]float64{
			"step":                float64(t),
			"cost":                bd.Cost,
			"co2":                 bd.CO2,
			"waste_mw":            bd.WasteMW,
			"blackout_mw":         bd.Blackout,
			"balance_mw":          res.Balance,
			"demand_mw":           demand,
			"renewable_mw":        res.AvailableRenewableMW,
			"cumulative_cost":     c.state.CumulativeCost,
			"cumulative_co2":      c.state.CumulativeCO2,
			"cumulative_waste_mw": c.state.CumulativeWasteMW,
			"cumulative_unmet_mw": c.state.CumulativeUnmetMW,
		},
	}, nil
}

// observation assembles the fixed-layout vector from the current plant
// states and cone. See Layout for the exact indexing.
func (c *Controller) observation(cone forecast.Cone) []float64 {
	l := c.Layout()
	obs := make([]float64, 0, l.Size())
	specs := c.grid.Specs()
	for i, out := range c.grid.Outputs() {
		obs = append(obs, out/specs[i].MaxMW)
	}
	for _, track := range []forecast.Track{cone.Demand, cone.Renewable} {
		obs = append(obs, track.RealizedMW)
		for _, b := range track.Bands {
			obs = append(obs, b.CenterMW, b.LowerMW, b.UpperMW)
		}
	}
	return obs
}

func sum(vs []float64) float64 {
	var s float64
	for _, v := range vs {
		s += v
	}
	return s
}
