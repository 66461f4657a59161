package sim

// ComponentStats summarizes one component's behavior over a scenario
// occurrence: how long it spent serving its rated flow versus degraded or
// failed, and how much requested flow went unserved.
type ComponentStats struct {
	Component string

	Uptime      int64 // seconds with achieved >= requested - eps
	Downtime    int64 // seconds with achieved < requested - eps
	MaxDowntime int64 // longest single downtime run

	LoadNotServed FlowValue // integral of (requested-achieved) over downtime, same role as Uptime/Downtime
	TotalEnergy   FlowValue // integral of achieved over the whole run
}

// statsAccumulator derives ComponentStats from a PortSeries by walking its
// records and integrating between them.
type statsAccumulator struct {
	stats          ComponentStats
	curDowntimeRun int64
	lastTime       Time
	lastRequested  FlowValue
	lastAchieved   FlowValue
	started        bool
}

func newStatsAccumulator(component string) *statsAccumulator {
	return &statsAccumulator{stats: ComponentStats{Component: component}}
}

func (a *statsAccumulator) observe(rec FlowRecord) {
	if a.started {
		dt := float64(rec.Time.Real - a.lastTime.Real)
		if dt > 0 {
			a.stats.TotalEnergy += a.lastAchieved * dt
			if a.lastAchieved < a.lastRequested-Epsilon {
				a.stats.Downtime += rec.Time.Real - a.lastTime.Real
				a.curDowntimeRun += rec.Time.Real - a.lastTime.Real
				a.stats.LoadNotServed += (a.lastRequested - a.lastAchieved) * dt
				if a.curDowntimeRun > a.stats.MaxDowntime {
					a.stats.MaxDowntime = a.curDowntimeRun
				}
			} else {
				a.stats.Uptime += rec.Time.Real - a.lastTime.Real
				a.curDowntimeRun = 0
			}
		}
	}
	a.lastTime = rec.Time
	a.lastRequested = rec.Requested
	a.lastAchieved = rec.Achieved
	a.started = true
}

// rolePriority ranks port roles by how well they represent a component's
// service level to the rest of the network. Several atomic models record
// more than one role under the same component name (a Converter's outflow
// and wasteflow, a Storage's inflow and outflow, an OnOffSwitch's or
// FlowLimits' inflow and outflow); Uptime/Downtime/MaxDowntime/LoadNotServed
// are derived from whichever recorded role ranks highest here, rather than
// integrated across roles, since those roles run on independent clocks and
// are not interchangeable "uptime" signals.
var rolePriority = map[PortRole]int{
	RoleLoadInflow:     0,
	RoleStorageOutflow: 1,
	RoleSourceOutflow:  2,
	RoleOutflow:        3,
	RoleStorageInflow:  4,
	RoleWasteInflow:    5,
	RoleInflow:         6,
}

// StatsFromSeries derives one ComponentStats per distinct component name in
// series. Each (component, role) series gets its own statsAccumulator so a
// multi-port component's series never share a running clock: TotalEnergy
// sums every role's own integrated energy, while the uptime-related fields
// come from a single role chosen by rolePriority.
func StatsFromSeries(series []*PortSeries) []ComponentStats {
	type roleStats struct {
		role  PortRole
		stats ComponentStats
	}

	byComponent := make(map[string][]roleStats)
	var order []string
	for _, s := range series {
		acc := newStatsAccumulator(s.Component)
		for _, rec := range s.Records {
			acc.observe(rec)
		}
		if _, ok := byComponent[s.Component]; !ok {
			order = append(order, s.Component)
		}
		byComponent[s.Component] = append(byComponent[s.Component], roleStats{role: s.Role, stats: acc.stats})
	}

	out := make([]ComponentStats, 0, len(order))
	for _, name := range order {
		roles := byComponent[name]
		combined := ComponentStats{Component: name}
		best := roles[0]
		for _, r := range roles {
			combined.TotalEnergy += r.stats.TotalEnergy
			if rolePriority[r.role] < rolePriority[best.role] {
				best = r
			}
		}
		combined.Uptime = best.stats.Uptime
		combined.Downtime = best.stats.Downtime
		combined.MaxDowntime = best.stats.MaxDowntime
		combined.LoadNotServed = best.stats.LoadNotServed
		out = append(out, combined)
	}
	return out
}
