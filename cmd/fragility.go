package cmd

import "sort"

// FragilityPoint is one point of a fragility curve: at the given hazard
// intensity, a component fails with the given probability.
type FragilityPoint struct {
	Intensity   float64
	Probability float64
}

// FragilityCurve evaluates failure probability by linear interpolation
// between FragilityPoints (§4.10 step 1 consumes the resulting probability,
// this evaluation itself sits outside the simulation core). Points must be
// sorted ascending by Intensity.
type FragilityCurve struct {
	Points []FragilityPoint
}

// ProbabilityAt linearly interpolates the failure probability at the given
// hazard intensity, clamping to the curve's endpoint probabilities outside
// its domain.
func (f FragilityCurve) ProbabilityAt(intensity float64) float64 {
	n := len(f.Points)
	if n == 0 {
		return 0
	}
	if intensity <= f.Points[0].Intensity {
		return f.Points[0].Probability
	}
	if intensity >= f.Points[n-1].Intensity {
		return f.Points[n-1].Probability
	}
	i := sort.Search(n, func(i int) bool { return f.Points[i].Intensity >= intensity })
	lo, hi := f.Points[i-1], f.Points[i]
	if hi.Intensity == lo.Intensity {
		return hi.Probability
	}
	frac := (intensity - lo.Intensity) / (hi.Intensity - lo.Intensity)
	return lo.Probability + frac*(hi.Probability-lo.Probability)
}
