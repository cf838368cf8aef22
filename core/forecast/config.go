package forecast

import "fmt"

// Growth laws for the cone half-width as a function of the forecast offset.
const (
	GrowthSqrt   = "sqrt"
	GrowthLinear = "linear"
)

// Config tunes the stochastic trajectories and the uncertainty cone.
type Config struct {
	// Horizon is the number of forward offsets exposed by the cone.
	Horizon int `json:"horizon"`
	// GrowthLaw selects how the band half-width grows with the offset:
	// "sqrt" or "linear". Both are zero at offset 0 and strictly increasing.
	GrowthLaw string `json:"growth_law"`
	// ConeSigma scales the half-width as a fraction of the track magnitude:
	// halfWidth(k) = ConeSigma × trackScale × g(k).
	ConeSigma float64 `json:"cone_sigma"`
	// JitterFrac is the share of the half-width used to perturb band
	// centers away from the latent value. Must stay below 1 so the true
	// value always lies inside the band.
	JitterFrac float64 `json:"jitter_frac"`
	// DemandBaseMW is the peak city load the diurnal demand profile scales to.
	DemandBaseMW float64 `json:"demand_base_mw"`
	// Volatility of the bounded noise applied to each latent track.
	DemandVolatility float64 `json:"demand_volatility"`
	SolarVolatility  float64 `json:"solar_volatility"`
	WindVolatility   float64 `json:"wind_volatility"`
}

// SetDefaults applies the reference tuning: a 12-step cone over a 400 MW
// city with sqrt growth.
func (c *Config) SetDefaults() {
	if c.Horizon == 0 {
		c.Horizon = 12
	}
	if c.GrowthLaw == "" {
		c.GrowthLaw = GrowthSqrt
	}
	if c.ConeSigma == 0 {
		c.ConeSigma = 0.05
	}
	if c.JitterFrac == 0 {
		c.JitterFrac = 0.5
	}
	if c.DemandBaseMW == 0 {
		c.DemandBaseMW = 400
	}
	if c.DemandVolatility == 0 {
		c.DemandVolatility = 0.05
	}
	if c.SolarVolatility == 0 {
		c.SolarVolatility = 0.15
	}
	if c.WindVolatility == 0 {
		c.WindVolatility = 0.25
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.Horizon < 1 {
		return fmt.Errorf("forecast horizon must be at least 1")
	}
	if c.GrowthLaw != GrowthSqrt && c.GrowthLaw != GrowthLinear {
		return fmt.Errorf("unknown growth law %q", c.GrowthLaw)
	}
	if c.ConeSigma <= 0 {
		return fmt.Errorf("cone sigma must be positive")
	}
	if c.JitterFrac < 0 || c.JitterFrac >= 1 {
		return fmt.Errorf("jitter fraction must be in [0, 1)")
	}
	if c.DemandBaseMW <= 0 {
		return fmt.Errorf("demand base must be positive")
	}
	if c.DemandVolatility < 0 || c.SolarVolatility < 0 || c.WindVolatility < 0 {
		return fmt.Errorf("volatilities must be non-negative")
	}
	return nil
}
