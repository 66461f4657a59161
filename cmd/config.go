package cmd

import (
	"math/rand"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/flowgrid/flowgrid/sim"
)

// FileConfig is the root of a scenario's TOML configuration file.
type FileConfig struct {
	Scenario    ScenarioConfig     `toml:"scenario"`
	Components  []ComponentConfig  `toml:"components"`
	Connections []ConnectionConfig `toml:"connections"`
}

// ScenarioConfig carries the run-level knobs: how long to simulate, how
// many Monte Carlo occurrences to draw, and the master RNG seed.
type ScenarioConfig struct {
	ID          string `toml:"id"`
	DurationS   int64  `toml:"duration_s"`
	Occurrences int    `toml:"occurrences"`
	Seed        int64  `toml:"seed"`
}

// ScheduleEntryConfig is one point of a Load/UncontrolledSource schedule.
type ScheduleEntryConfig struct {
	Time  int64   `toml:"time"`
	Value float64 `toml:"value"`
}

// TimeStateConfig is one point of an OnOffSwitch reliability schedule.
type TimeStateConfig struct {
	Time  int64 `toml:"time"`
	State bool  `toml:"state"`
}

// ComponentConfig is the union of every component type's fields; only the
// fields relevant to Type are read.
type ComponentConfig struct {
	ID      string `toml:"id"`
	Type    string `toml:"type"`
	Stream  string `toml:"stream"`
	History bool   `toml:"history"`

	FailureProbabilities []float64         `toml:"failure_probabilities"`
	ReliabilitySchedule  []TimeStateConfig `toml:"reliability_schedule"`

	Lower      float64 `toml:"lower"`
	Upper      float64 `toml:"upper"`
	MaxOutflow float64 `toml:"max_outflow"`

	Efficiency float64 `toml:"efficiency"`

	CapacityKJ      float64 `toml:"capacity_kj"`
	MaxChargeRateKW float64 `toml:"max_charge_rate_kw"`
	SOC0            float64 `toml:"soc0"`

	Schedule []ScheduleEntryConfig `toml:"schedule"`

	// ScheduleDistribution, if set, overrides Schedule: ScheduleTimes is
	// resampled through it once per occurrence (§4.5 Monte Carlo) rather
	// than read literally.
	ScheduleDistribution *DistributionConfig `toml:"schedule_distribution"`
	ScheduleTimes        []int64             `toml:"schedule_times"`

	NumInflows  int    `toml:"num_inflows"`
	NumOutflows int    `toml:"num_outflows"`
	Strategy    string `toml:"strategy"`

	COP float64 `toml:"cop"`

	InitialState bool `toml:"initial_state"`
}

// ConnectionConfig is one edge of the network graph.
type ConnectionConfig struct {
	From     string `toml:"from"`
	FromPort int    `toml:"from_port"`
	To       string `toml:"to"`
	ToPort   int    `toml:"to_port"`
	Stream   string `toml:"stream"`
}

// LoadConfig strictly decodes path into a FileConfig, rejecting any key the
// schema does not recognize (the same discipline the rest of this project's
// decoders apply to external input).
func LoadConfig(path string) (*FileConfig, error) {
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, &sim.ConfigError{Component: path, Reason: err.Error()}
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, &sim.ConfigError{Component: path, Reason: "unknown key " + undecoded[0].String()}
	}
	return &cfg, nil
}

// BuildScenario translates a decoded FileConfig into a sim.Scenario,
// constructing a factory closure per component (§4.10 ComponentSpec.Build).
// distRNG feeds any schedule_distribution component, resampled once per
// occurrence; it may be nil if no component in cfg uses one.
func BuildScenario(cfg *FileConfig, distRNG *rand.Rand) (*sim.Scenario, error) {
	specs := make(map[string]sim.ComponentSpec, len(cfg.Components))
	for _, c := range cfg.Components {
		spec, err := componentSpec(c, distRNG)
		if err != nil {
			return nil, err
		}
		specs[c.ID] = spec
	}

	connections := make([]sim.Connection, 0, len(cfg.Connections))
	for _, conn := range cfg.Connections {
		connections = append(connections, sim.Connection{
			FromComponent: conn.From,
			FromPort:      conn.FromPort,
			ToComponent:   conn.To,
			ToPort:        conn.ToPort,
			Stream:        sim.Stream(conn.Stream),
		})
	}

	return &sim.Scenario{
		ID:             cfg.Scenario.ID,
		Specs:          specs,
		Connections:    connections,
		Duration:       cfg.Scenario.DurationS,
		NumOccurrences: cfg.Scenario.Occurrences,
	}, nil
}

func componentSpec(c ComponentConfig, distRNG *rand.Rand) (sim.ComponentSpec, error) {
	probs := append([]float64(nil), c.FailureProbabilities...)
	sort.Sort(sort.Reverse(sort.Float64Slice(probs)))

	schedule := make([]sim.ScheduleEntry, len(c.Schedule))
	for i, e := range c.Schedule {
		schedule[i] = sim.ScheduleEntry{Time: e.Time, Value: e.Value}
	}
	reliability := make([]sim.TimeState, len(c.ReliabilitySchedule))
	for i, e := range c.ReliabilitySchedule {
		reliability[i] = sim.TimeState{Time: e.Time, State: e.State}
	}

	// scheduleFn returns this component's schedule fresh each time it is
	// called; Build invokes it once per occurrence, so a
	// schedule_distribution component draws a new profile every run while a
	// literal schedule just returns the same slice.
	scheduleFn := func() []sim.ScheduleEntry { return schedule }
	if c.ScheduleDistribution != nil {
		dist, err := buildDistribution(*c.ScheduleDistribution)
		if err != nil {
			return sim.ComponentSpec{}, err
		}
		if distRNG == nil {
			return sim.ComponentSpec{}, &sim.ConfigError{Component: c.ID, Reason: "schedule_distribution set but no distribution RNG supplied"}
		}
		times := c.ScheduleTimes
		scheduleFn = func() []sim.ScheduleEntry {
			return SampleSchedule(times, dist, distRNG)
		}
	}

	stream := sim.Stream(c.Stream)
	id, history := c.ID, c.History

	var build func() sim.Component
	switch c.Type {
	case "supply":
		cap := sim.FlowValue(c.MaxOutflow)
		if c.MaxOutflow == 0 {
			cap = sim.Unlimited
		}
		build = func() sim.Component { return sim.NewSupply(id, stream, cap, history) }
	case "load":
		build = func() sim.Component { return sim.NewLoad(id, stream, scheduleFn(), history) }
	case "uncontrolled_source":
		build = func() sim.Component { return sim.NewUncontrolledSource(id, stream, scheduleFn(), history) }
	case "converter":
		build = func() sim.Component { return sim.NewConverter(id, stream, c.Efficiency, history) }
	case "storage":
		build = func() sim.Component {
			return sim.NewStorage(id, stream, c.CapacityKJ, c.MaxChargeRateKW, c.SOC0, history)
		}
	case "flow_limits":
		build = func() sim.Component { return sim.NewFlowLimits(id, stream, c.Lower, c.Upper, history) }
	case "onoffswitch":
		build = func() sim.Component {
			return sim.NewOnOffSwitch(id, stream, c.InitialState, reliability, history)
		}
	case "mux":
		strategy := sim.InOrder
		if c.Strategy == "distribute" {
			strategy = sim.Distribute
		}
		build = func() sim.Component {
			return sim.NewMux(id, stream, c.NumInflows, c.NumOutflows, strategy, history)
		}
	case "mover":
		build = func() sim.Component { return sim.NewMover(id, stream, c.COP, history) }
	default:
		return sim.ComponentSpec{}, &sim.ConfigError{Component: c.ID, Reason: "unknown component type " + c.Type}
	}

	return sim.ComponentSpec{
		ID:                   c.ID,
		Build:                build,
		History:              history,
		FailureProbabilities: probs,
		ReliabilitySchedule:  reliability,
	}, nil
}
