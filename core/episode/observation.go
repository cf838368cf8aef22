package episode

// Layout describes the fixed indexing of the flat observation vector for a
// given configuration. The order is stable across calls so external
// consumers (loggers, trained policies) can rely on fixed indices:
//
//	[0, Plants)            normalized plant outputs (output/max), construction order
//	then the demand track:    realized value, then center/lower/upper for offsets 1..H
//	then the renewable track: realized value, then center/lower/upper for offsets 1..H
type Layout struct {
	Plants  int
	Horizon int
}

const bandFields = 3 // center, lower, upper

// Size returns the observation vector length.
func (l Layout) Size() int {
	return l.Plants + 2*(1+bandFields*l.Horizon)
}

// PlantOutput returns the index of plant i's normalized output.
func (l Layout) PlantOutput(i int) int { return i }

// DemandRealized returns the index of the realized demand (offset 0).
func (l Layout) DemandRealized() int { return l.Plants }

// DemandCenter returns the index of the demand band center at offset k in [1, H].
func (l Layout) DemandCenter(k int) int { return l.Plants + 1 + bandFields*(k-1) }

// DemandLower returns the index of the demand band lower bound at offset k.
func (l Layout) DemandLower(k int) int { return l.DemandCenter(k) + 1 }

// DemandUpper returns the index of the demand band upper bound at offset k.
func (l Layout) DemandUpper(k int) int { return l.DemandCenter(k) + 2 }

// RenewableRealized returns the index of the realized aggregate renewable
// availability (offset 0).
func (l Layout) RenewableRealized() int { return l.Plants + 1 + bandFields*l.Horizon }

// RenewableCenter returns the index of the renewable band center at offset k in [1, H].
func (l Layout) RenewableCenter(k int) int { return l.RenewableRealized() + 1 + bandFields*(k-1) }

// RenewableLower returns the index of the renewable band lower bound at offset k.
func (l Layout) RenewableLower(k int) int { return l.RenewableCenter(k) + 1 }

// RenewableUpper returns the index of the renewable band upper bound at offset k.
func (l Layout) RenewableUpper(k int) int { return l.RenewableCenter(k) + 2 }
