package sim

import "math/rand"

// Scenario bundles the component specs and connections needed to build a
// Network, together with how long and how many times to run it. Running a
// scenario more than once (NumOccurrences > 1) re-samples fragility each
// time via the supplied RNG, letting Monte Carlo statistics emerge across
// occurrences instead of a single fragility draw.
type Scenario struct {
	ID               string
	Specs            map[string]ComponentSpec
	Connections      []Connection
	Duration         int64
	NumOccurrences   int
	RecordOccurrence func(occurrence int, series []*PortSeries)
}

// Run executes every occurrence of the scenario, aggregating statistics
// into a single Metrics. RecordOccurrence, if set, is invoked once per
// occurrence with that run's raw port series (useful for per-occurrence
// CSV emission alongside the aggregate).
func (sc *Scenario) Run(rng *rand.Rand) (*Metrics, error) {
	n := sc.NumOccurrences
	if n <= 0 {
		n = 1
	}
	metrics := NewMetrics()
	for occ := 0; occ < n; occ++ {
		network, err := BuildNetwork(sc.Specs, sc.Connections, rng)
		if err != nil {
			return nil, err
		}
		writer := NewFlowWriter()
		simulator := NewSimulator(network, sc.Duration, writer)
		if err := simulator.Run(); err != nil {
			return nil, err
		}
		series := writer.Series()
		metrics.Accumulate(series)
		if sc.RecordOccurrence != nil {
			sc.RecordOccurrence(occ, series)
		}
	}
	return metrics, nil
}
