package scenarios

import (
	"fmt"
	"math"

	"github.com/kilianp07/gridsim/core/episode"
	"github.com/kilianp07/gridsim/core/forecast"
	"github.com/kilianp07/gridsim/core/reward"
	"github.com/kilianp07/gridsim/infra/logger"
)

// ReplayResult summarizes one scenario replay.
type ReplayResult struct {
	Outcome           string
	Steps             int
	TotalReward       float64
	CumulativeUnmetMW float64
}

// Replay drives an episode with the scenario's action sequence, checking the
// physical invariants on every step: outputs inside [min, max] and ramp
// limits honored. It returns an error on the first violation.
func Replay(sc *Scenario) (*ReplayResult, error) {
	specs, err := sc.Specs()
	if err != nil {
		return nil, fmt.Errorf("specs: %w", err)
	}

	epCfg := episode.Config{MaxSteps: sc.MaxSteps, BlackoutThresholdMW: sc.BlackoutThresholdMW}
	epCfg.SetDefaults()
	fcCfg := forecast.Config{}
	fcCfg.SetDefaults()
	var weights reward.Weights
	weights.SetDefaults()

	ctrl, err := episode.New(specs, fcCfg, weights, epCfg, logger.NopLogger{})
	if err != nil {
		return nil, fmt.Errorf("controller: %w", err)
	}
	obs, err := ctrl.Reset(sc.Seed)
	if err != nil {
		return nil, fmt.Errorf("reset: %w", err)
	}

	layout := ctrl.Layout()
	prev := make([]float64, len(specs))
	for i, s := range specs {
		prev[i] = obs[layout.PlantOutput(i)] * s.MaxMW
	}

	var totalReward float64
	step := 0
	for ctrl.Phase() == episode.Running {
		action := sc.Actions[min(step, len(sc.Actions)-1)]
		res, err := ctrl.Step(action)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", step+1, err)
		}
		step++
		totalReward += res.Reward

		for i, s := range specs {
			cur := res.Observation[layout.PlantOutput(i)] * s.MaxMW
			if cur < s.MinMW-1e-9 || cur > s.MaxMW+1e-9 {
				return nil, fmt.Errorf("step %d: plant %s output %.4f outside [%.2f, %.2f]", step, s.ID, cur, s.MinMW, s.MaxMW)
			}
			if s.Type.Dispatchable() && math.Abs(cur-prev[i]) > s.RampMW+1e-9 {
				return nil, fmt.Errorf("step %d: plant %s ramped %.4f, limit %.2f", step, s.ID, math.Abs(cur-prev[i]), s.RampMW)
			}
			prev[i] = cur
		}
	}

	st := ctrl.State()
	return &ReplayResult{
		Outcome:           ctrl.Phase().String(),
		Steps:             st.Step,
		TotalReward:       totalReward,
		CumulativeUnmetMW: st.CumulativeUnmetMW,
	}, nil
}

// Check asserts the scenario's expectations against a replay result.
func (sc *Scenario) Check(res *ReplayResult) error {
	if res.Outcome != sc.Expected.Outcome {
		return fmt.Errorf("expected outcome %s, got %s", sc.Expected.Outcome, res.Outcome)
	}
	if sc.Expected.MaxUnmetMW != nil && res.CumulativeUnmetMW > *sc.Expected.MaxUnmetMW+1e-9 {
		return fmt.Errorf("cumulative unmet %.2f exceeds %.2f", res.CumulativeUnmetMW, *sc.Expected.MaxUnmetMW)
	}
	if sc.Expected.MinSteps > 0 && res.Steps < sc.Expected.MinSteps {
		return fmt.Errorf("ended after %d steps, expected at least %d", res.Steps, sc.Expected.MinSteps)
	}
	return nil
}
