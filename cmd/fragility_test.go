package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFragilityCurve_InterpolatesBetweenPoints(t *testing.T) {
	c := FragilityCurve{Points: []FragilityPoint{
		{Intensity: 0, Probability: 0},
		{Intensity: 10, Probability: 0.5},
		{Intensity: 20, Probability: 1.0},
	}}

	assert.InDelta(t, 0, c.ProbabilityAt(0), 1e-9)
	assert.InDelta(t, 0.25, c.ProbabilityAt(5), 1e-9)
	assert.InDelta(t, 0.75, c.ProbabilityAt(15), 1e-9)
	assert.InDelta(t, 1.0, c.ProbabilityAt(20), 1e-9)
}

func TestFragilityCurve_ClampsOutsideDomain(t *testing.T) {
	c := FragilityCurve{Points: []FragilityPoint{
		{Intensity: 5, Probability: 0.1},
		{Intensity: 15, Probability: 0.9},
	}}

	assert.InDelta(t, 0.1, c.ProbabilityAt(-100), 1e-9)
	assert.InDelta(t, 0.9, c.ProbabilityAt(100), 1e-9)
}

func TestFragilityCurve_EmptyCurveIsAlwaysSafe(t *testing.T) {
	c := FragilityCurve{}
	assert.Equal(t, 0.0, c.ProbabilityAt(50))
}
