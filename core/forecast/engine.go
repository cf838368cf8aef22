package forecast

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/kilianp07/gridsim/core/model"
)

// Diurnal base profiles, one value per hour of day, as fractions of the
// track's capacity. Taken from the reference grid tuning.
var (
	demandProfile = [24]float64{
		0.6, 0.55, 0.5, 0.5, 0.55, 0.65, 0.8, 0.9, 0.95, 0.9, 0.85, 0.85,
		0.85, 0.85, 0.85, 0.85, 0.9, 0.95, 1.0, 0.95, 0.9, 0.8, 0.7, 0.65,
	}
	solarProfile = [24]float64{
		0, 0, 0, 0, 0, 0, 0.1, 0.3, 0.6, 0.8, 0.9, 1.0,
		1.0, 0.9, 0.8, 0.6, 0.3, 0.1, 0, 0, 0, 0, 0, 0,
	}
	windMean = 0.5
)

const pcgStream = 0x9e3779b97f4a7c15

// Engine owns one episode's latent ground-truth trajectories for demand
// and renewable availability and derives the uncertainty cone from them.
// Each instance carries its own seeded random source, so independent
// instances never share state.
type Engine struct {
	cfg        Config
	renewSpecs []model.PlantSpec
	episodeLen int

	renewCapMW float64

	normal  distuv.Normal
	uniform distuv.Uniform

	demand     []float64   // latent demand, index 0..episodeLen
	renew      [][]float64 // latent availability per renewable plant
	renewTotal []float64   // aggregate renewable latent
}

// New prepares an engine for the given fleet and episode length. The
// renewable specs must be the non-dispatchable plants in construction
// order. Reset must be called before the engine is queried.
func New(cfg Config, specs []model.PlantSpec, episodeLen int) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if episodeLen < 1 {
		return nil, fmt.Errorf("episode length must be at least 1")
	}
	e := &Engine{cfg: cfg, episodeLen: episodeLen}
	for _, s := range specs {
		if s.Type.Dispatchable() {
			continue
		}
		e.renewSpecs = append(e.renewSpecs, s)
		e.renewCapMW += s.MaxMW
	}
	return e, nil
}

// Reset samples a fresh latent trajectory for the full episode from seed.
// The same seed always reproduces the same trajectory and cone sequence.
func (e *Engine) Reset(seed int64) {
	src := rand.NewPCG(uint64(seed), pcgStream)
	e.normal = distuv.Normal{Mu: 0, Sigma: 1, Src: src}
	e.uniform = distuv.Uniform{Min: -1, Max: 1, Src: src}

	n := e.episodeLen + 1
	e.demand = make([]float64, n)
	e.renew = make([][]float64, len(e.renewSpecs))
	for i := range e.renew {
		e.renew[i] = make([]float64, n)
	}
	e.renewTotal = make([]float64, n)

	for t := 0; t < n; t++ {
		hour := t % 24
		e.demand[t] = math.Max(0, e.cfg.DemandBaseMW*demandProfile[hour]*(1+e.boundedNoise(e.cfg.DemandVolatility)))
		for i, s := range e.renewSpecs {
			var trend, vol float64
			switch s.Type {
			case model.Solar:
				trend, vol = solarProfile[hour], e.cfg.SolarVolatility
			default:
				trend, vol = windMean, e.cfg.WindVolatility
			}
			v := s.MaxMW * trend * (1 + e.boundedNoise(vol))
			if v < 0 {
				v = 0
			} else if v > s.MaxMW {
				v = s.MaxMW
			}
			e.renew[i][t] = v
			e.renewTotal[t] += v
		}
	}
}

// boundedNoise draws a zero-mean perturbation clipped to ±3 volatilities,
// keeping the latent process inside a known envelope.
func (e *Engine) boundedNoise(vol float64) float64 {
	if vol == 0 {
		return 0
	}
	n := e.normal.Rand() * vol
	limit := 3 * vol
	return math.Max(-limit, math.Min(limit, n))
}

// Horizon returns the cone length H.
func (e *Engine) Horizon() int { return e.cfg.Horizon }

// Realized reveals the latent values at step t: the demand and the
// availability of each renewable plant in construction order. Values are
// deterministic given the seed but unknown to the controller in advance.
func (e *Engine) Realized(t int) (demandMW float64, renewMW []float64) {
	t = e.clampStep(t)
	renewMW = make([]float64, len(e.renewSpecs))
	for i := range e.renewSpecs {
		renewMW[i] = e.renew[i][t]
	}
	return e.demand[t], renewMW
}

// Cone builds the uncertainty cone as seen from step t. Band centers are
// the latent future values perturbed by at most JitterFrac of the
// half-width, so the realization is always inside the band. Offsets past
// the episode end hold the last known value with a saturated half-width,
// degenerating to an exactly flat band once no steps remain.
func (e *Engine) Cone(t int) (Cone, error) {
	t = e.clampStep(t)
	remaining := e.episodeLen - t

	c := Cone{
		Demand:    Track{RealizedMW: e.demand[t], Bands: make([]Band, e.cfg.Horizon)},
		Renewable: Track{RealizedMW: e.renewTotal[t], Bands: make([]Band, e.cfg.Horizon)},
	}
	for k := 1; k <= e.cfg.Horizon; k++ {
		eff := k
		if eff > remaining {
			eff = remaining
		}
		dHW := e.cfg.ConeSigma * e.cfg.DemandBaseMW * e.growth(eff)
		rHW := e.cfg.ConeSigma * e.renewCapMW * e.growth(eff)

		var dCenter, rCenter float64
		if k <= remaining {
			dCenter = e.demand[t+k] + e.uniform.Rand()*e.cfg.JitterFrac*dHW
			rCenter = e.renewTotal[t+k] + e.uniform.Rand()*e.cfg.JitterFrac*rHW
		} else {
			dCenter = e.demand[e.episodeLen]
			rCenter = e.renewTotal[e.episodeLen]
		}
		c.Demand.Bands[k-1] = Band{CenterMW: dCenter, LowerMW: dCenter - dHW, UpperMW: dCenter + dHW, HalfWidthMW: dHW}
		c.Renewable.Bands[k-1] = Band{CenterMW: rCenter, LowerMW: rCenter - rHW, UpperMW: rCenter + rHW, HalfWidthMW: rHW}
	}
	if err := c.Validate(); err != nil {
		return Cone{}, err
	}
	return c, nil
}

func (e *Engine) growth(k int) float64 {
	if k <= 0 {
		return 0
	}
	if e.cfg.GrowthLaw == GrowthLinear {
		return float64(k)
	}
	return math.Sqrt(float64(k))
}

func (e *Engine) clampStep(t int) int {
	if t < 0 {
		return 0
	}
	if t > e.episodeLen {
		return e.episodeLen
	}
	return t
}
