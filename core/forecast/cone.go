package forecast

import (
	"errors"
	"fmt"
)

// ErrInvariant indicates a malformed cone: a band width shrinking with the
// offset or a center escaping its own bounds. It must never occur in
// correct operation.
var ErrInvariant = errors.New("cone invariant violated")

// Band is one uncertainty interval at a forward offset. Lower may be
// negative: bounds are not clamped so that the half-width stays an exact
// monotone function of the offset.
type Band struct {
	CenterMW    float64
	LowerMW     float64
	UpperMW     float64
	HalfWidthMW float64
}

// Track is the cone of one forecast variable. RealizedMW is the collapsed
// offset-0 point, known exactly once the step is reached; Bands covers
// offsets 1..H.
type Track struct {
	RealizedMW float64
	Bands      []Band
}

// Cone bundles the demand and aggregate renewable tracks for one step.
type Cone struct {
	Demand    Track
	Renewable Track
}

// Validate asserts the structural cone invariants: non-decreasing
// half-widths and centers inside their own bounds.
func (c Cone) Validate() error {
	if err := c.Demand.validate("demand"); err != nil {
		return err
	}
	return c.Renewable.validate("renewable")
}

func (t Track) validate(name string) error {
	prev := 0.0
	for k, b := range t.Bands {
		if b.HalfWidthMW < prev {
			return fmt.Errorf("%w: %s half-width shrinks at offset %d (%.4f < %.4f)", ErrInvariant, name, k+1, b.HalfWidthMW, prev)
		}
		if b.CenterMW < b.LowerMW || b.CenterMW > b.UpperMW {
			return fmt.Errorf("%w: %s center outside band at offset %d", ErrInvariant, name, k+1)
		}
		prev = b.HalfWidthMW
	}
	return nil
}
