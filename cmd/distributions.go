package cmd

import (
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/flowgrid/flowgrid/sim"
)

// Distribution draws a single sample given an RNG, used by SampleSchedule
// to generate Load/UncontrolledSource schedule values that the simulation
// core itself never samples.
type Distribution interface {
	Sample(rng *rand.Rand) float64
}

// FixedDistribution always returns the same value.
type FixedDistribution struct{ Value float64 }

func (d FixedDistribution) Sample(*rand.Rand) float64 { return d.Value }

// UniformDistribution draws uniformly from [Min, Max).
type UniformDistribution struct{ Min, Max float64 }

func (d UniformDistribution) Sample(rng *rand.Rand) float64 {
	u := distuv.Uniform{Min: d.Min, Max: d.Max, Src: rng}
	return u.Rand()
}

// NormalDistribution draws from Normal(Mu, Sigma), clamped to non-negative.
type NormalDistribution struct{ Mu, Sigma float64 }

func (d NormalDistribution) Sample(rng *rand.Rand) float64 {
	n := distuv.Normal{Mu: d.Mu, Sigma: d.Sigma, Src: rng}
	return max(0, n.Rand())
}

// WeibullDistribution draws from Weibull(K, Lambda), the usual choice for
// time-to-failure and repair-duration sampling.
type WeibullDistribution struct{ K, Lambda float64 }

func (d WeibullDistribution) Sample(rng *rand.Rand) float64 {
	w := distuv.Weibull{K: d.K, Lambda: d.Lambda, Src: rng}
	return w.Rand()
}

// QuantileTableDistribution inverts a user-supplied empirical CDF: draw
// u ~ Uniform(0,1) and linearly interpolate between the bracketing
// (quantile, value) pairs.
type QuantileTableDistribution struct {
	Quantiles []float64 // strictly increasing, in [0,1]
	Values    []float64 // same length as Quantiles
}

func (d QuantileTableDistribution) Sample(rng *rand.Rand) float64 {
	return d.interpolate(rng.Float64())
}

// interpolate maps a uniform draw u in [0,1] to a value via linear
// interpolation between the bracketing quantile pairs.
func (d QuantileTableDistribution) interpolate(u float64) float64 {
	n := len(d.Quantiles)
	if n == 0 {
		return 0
	}
	i := sort.SearchFloat64s(d.Quantiles, u)
	if i == 0 {
		return d.Values[0]
	}
	if i >= n {
		return d.Values[n-1]
	}
	q0, q1 := d.Quantiles[i-1], d.Quantiles[i]
	v0, v1 := d.Values[i-1], d.Values[i]
	if q1 == q0 {
		return v1
	}
	frac := (u - q0) / (q1 - q0)
	return v0 + frac*(v1-v0)
}

// SampleSchedule builds a piecewise-constant ScheduleEntry series by
// drawing one value per timestamp from dist, used to materialize Load and
// UncontrolledSource profiles from a distribution instead of fixed data.
func SampleSchedule(times []int64, dist Distribution, rng *rand.Rand) []sim.ScheduleEntry {
	out := make([]sim.ScheduleEntry, len(times))
	for i, t := range times {
		out[i] = sim.ScheduleEntry{Time: t, Value: dist.Sample(rng)}
	}
	return out
}

// DistributionConfig is the TOML description of a schedule_distribution
// block: a component's Load/UncontrolledSource schedule sampled fresh each
// occurrence instead of read literally from a fixed schedule table.
type DistributionConfig struct {
	Type string `toml:"type"`

	Value float64 `toml:"value"`

	Min float64 `toml:"min"`
	Max float64 `toml:"max"`

	Mu    float64 `toml:"mu"`
	Sigma float64 `toml:"sigma"`

	K      float64 `toml:"k"`
	Lambda float64 `toml:"lambda"`

	Quantiles []float64 `toml:"quantiles"`
	Values    []float64 `toml:"values"`
}

// buildDistribution translates a DistributionConfig into the Distribution it
// names.
func buildDistribution(c DistributionConfig) (Distribution, error) {
	switch c.Type {
	case "fixed":
		return FixedDistribution{Value: c.Value}, nil
	case "uniform":
		return UniformDistribution{Min: c.Min, Max: c.Max}, nil
	case "normal":
		return NormalDistribution{Mu: c.Mu, Sigma: c.Sigma}, nil
	case "weibull":
		return WeibullDistribution{K: c.K, Lambda: c.Lambda}, nil
	case "quantile_table":
		return QuantileTableDistribution{Quantiles: c.Quantiles, Values: c.Values}, nil
	default:
		return nil, &sim.ConfigError{Component: c.Type, Reason: "unknown distribution type " + c.Type}
	}
}
