package sim

// StreamRoleKey aggregates energy by the medium it moved through and the
// role the port played, across every occurrence of a scenario.
type StreamRoleKey struct {
	Stream Stream
	Role   PortRole
}

// Metrics aggregates ComponentStats and per-(stream, role) energy totals
// across every occurrence run for a scenario, for final reporting.
type Metrics struct {
	Occurrences int

	ByComponent map[string]ComponentStats
	ByStream    map[StreamRoleKey]FlowValue
}

// NewMetrics constructs an empty Metrics accumulator.
func NewMetrics() *Metrics {
	return &Metrics{
		ByComponent: make(map[string]ComponentStats),
		ByStream:    make(map[StreamRoleKey]FlowValue),
	}
}

// Accumulate folds one occurrence's flow-writer output into m.
func (m *Metrics) Accumulate(series []*PortSeries) {
	m.Occurrences++
	for _, cs := range StatsFromSeries(series) {
		acc := m.ByComponent[cs.Component]
		acc.Component = cs.Component
		acc.Uptime += cs.Uptime
		acc.Downtime += cs.Downtime
		if cs.MaxDowntime > acc.MaxDowntime {
			acc.MaxDowntime = cs.MaxDowntime
		}
		acc.LoadNotServed += cs.LoadNotServed
		acc.TotalEnergy += cs.TotalEnergy
		m.ByComponent[cs.Component] = acc
	}
	for _, s := range series {
		key := StreamRoleKey{Stream: s.Stream, Role: s.Role}
		var energy FlowValue
		var last FlowRecord
		has := false
		for _, rec := range s.Records {
			if has {
				energy += last.Achieved * float64(rec.Time.Real-last.Time.Real)
			}
			last = rec
			has = true
		}
		m.ByStream[key] += energy
	}
}
