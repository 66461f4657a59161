package sim

import "math/rand"

// Connection describes one coupling the network builder must materialize:
// component a's outflow port i feeds component b's inflow port j, carrying
// the named stream (§4.10).
type Connection struct {
	FromComponent string
	FromPort      int
	ToComponent   string
	ToPort        int
	Stream        Stream
}

// ComponentSpec is the language-neutral description of one component to be
// materialized by the network builder: a factory plus the fragility and
// reliability data that gate it (§4.10).
type ComponentSpec struct {
	ID      string
	Build   func() Component
	History bool

	// FailureProbabilities are sampled in order at first materialization;
	// the component fails if any draw succeeds. Pre-sort descending so a
	// probability of 1.0 short-circuits the remaining draws.
	FailureProbabilities []float64

	// ReliabilitySchedule, if non-empty, wraps the component with an
	// OnOffSwitch per direction instead of instantiating it directly.
	ReliabilitySchedule []TimeState
}

// BuiltComponent records what the builder materialized for one
// ComponentSpec: the live ports and however many extra wrapper elements
// (OnOffSwitches) were synthesized around it.
type BuiltComponent struct {
	Core          Component
	Inflow        []Component // per-port wrapper, or Core itself if unwrapped
	Outflow       []Component
	ElementsAdded int
}

// Network is the materialized result of NewNetwork: every atomic model
// instantiated plus the couplings wiring their ports together.
type Network struct {
	Components []Component
	Built      map[string]*BuiltComponent
	Couplings  []coupling
}

// coupling connects one component's output port id to another's input port
// id; the simulator routes Output() messages through these at runtime.
type coupling struct {
	from   Component
	fromID int
	to     Component
	toID   int
}

// BuildNetwork materializes specs and connections into a Network,
// sampling fragility and applying reliability overlays as each component
// is first referenced (§4.10).
func BuildNetwork(specs map[string]ComponentSpec, connections []Connection, rng *rand.Rand) (*Network, error) {
	n := &Network{Built: make(map[string]*BuiltComponent)}

	materialize := func(id string) (*BuiltComponent, error) {
		if bc, ok := n.Built[id]; ok {
			return bc, nil
		}
		spec, ok := specs[id]
		if !ok {
			return nil, &ReferenceError{Kind: "component", Name: id}
		}
		bc, err := n.materializeComponent(spec, rng)
		if err != nil {
			return nil, err
		}
		n.Built[id] = bc
		return bc, nil
	}

	for _, c := range connections {
		from, err := materialize(c.FromComponent)
		if err != nil {
			return nil, err
		}
		to, err := materialize(c.ToComponent)
		if err != nil {
			return nil, err
		}
		if c.FromPort >= len(from.Outflow) {
			return nil, &ReferenceError{Kind: "outflow port", Name: c.FromComponent}
		}
		if c.ToPort >= len(to.Inflow) {
			return nil, &ReferenceError{Kind: "inflow port", Name: c.ToComponent}
		}

		fromElem := from.Outflow[c.FromPort]
		toElem := to.Inflow[c.ToPort]

		declaredFrom := fromElem.OutflowStream(localIndex(from, fromElem, c.FromPort, false))
		declaredTo := toElem.InflowStream(localIndex(to, toElem, c.ToPort, true))
		if declaredFrom != c.Stream || declaredTo != c.Stream {
			return nil, &StreamMismatchError{
				Connection: c.FromComponent + "->" + c.ToComponent,
				Declared:   c.Stream,
				Actual:     declaredFrom,
			}
		}

		n.Couplings = append(n.Couplings,
			coupling{from: fromElem, fromID: OutportOutflowAchieved + localIndex(from, fromElem, c.FromPort, false), to: toElem, toID: InportInflowAchieved + localIndex(to, toElem, c.ToPort, true)},
			coupling{from: toElem, fromID: OutportInflowRequest + localIndex(to, toElem, c.ToPort, true), to: fromElem, toID: InportOutflowRequest + localIndex(from, fromElem, c.FromPort, false)},
		)
	}
	return n, nil
}

// localIndex returns the port index an individual wrapper element uses for
// its single port: wrapped components always expose exactly one inflow and
// one outflow port per wrapper, regardless of the core component's own port
// index, since each direction gets its own OnOffSwitch (§4.10 step 1).
func localIndex(bc *BuiltComponent, elem Component, coreIdx int, inflow bool) int {
	if elem == bc.Core {
		return coreIdx
	}
	return 0
}

// materializeComponent applies fragility sampling and then either wraps
// every port with a per-direction element (a zero-limit FlowLimits for a
// failed component, an OnOffSwitch for a reliability schedule) or
// instantiates the component directly (§4.10 step 1).
func (n *Network) materializeComponent(spec ComponentSpec, rng *rand.Rand) (*BuiltComponent, error) {
	failed := sampleFragility(spec.FailureProbabilities, rng)

	core := spec.Build()
	bc := &BuiltComponent{Core: core, ElementsAdded: 1}

	if !failed && len(spec.ReliabilitySchedule) == 0 {
		n.Components = append(n.Components, core)
		for i := 0; i < core.NumInflows(); i++ {
			bc.Inflow = append(bc.Inflow, core)
		}
		for i := 0; i < core.NumOutflows(); i++ {
			bc.Outflow = append(bc.Outflow, core)
		}
		return bc, nil
	}

	if !failed {
		n.Components = append(n.Components, core)
	}

	newWrapper := func(id string, stream Stream) Component {
		if failed {
			return NewFailedFlowLimits(id, stream, false)
		}
		return NewOnOffSwitch(id, stream, true, spec.ReliabilitySchedule, false)
	}

	for i := 0; i < core.NumInflows(); i++ {
		meter := newWrapper(spec.ID+"/in"+itoa(i), core.InflowStream(i))
		n.Components = append(n.Components, meter)
		if !failed {
			n.Couplings = append(n.Couplings,
				coupling{from: meter, fromID: OutportOutflowAchieved, to: core, toID: InportInflowAchieved + i},
				coupling{from: core, fromID: OutportInflowRequest + i, to: meter, toID: InportOutflowRequest},
			)
		}
		bc.Inflow = append(bc.Inflow, meter)
		bc.ElementsAdded++
	}
	for i := 0; i < core.NumOutflows(); i++ {
		gate := newWrapper(spec.ID+"/out"+itoa(i), core.OutflowStream(i))
		n.Components = append(n.Components, gate)
		if !failed {
			n.Couplings = append(n.Couplings,
				coupling{from: core, fromID: OutportOutflowAchieved + i, to: gate, toID: InportInflowAchieved},
				coupling{from: gate, fromID: OutportInflowRequest, to: core, toID: InportOutflowRequest + i},
			)
		}
		bc.Outflow = append(bc.Outflow, gate)
		bc.ElementsAdded++
	}
	return bc, nil
}

// sampleFragility draws against each probability in order and fails on the
// first success; probabilities should be pre-sorted descending so a value
// of 1.0 (force-failed) short-circuits the remaining draws (§4.10 step 1).
func sampleFragility(probabilities []float64, rng *rand.Rand) bool {
	for _, p := range probabilities {
		if p >= 1 {
			return true
		}
		if p <= 0 {
			continue
		}
		if rng.Float64() <= p {
			return true
		}
	}
	return false
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	digits := []byte{}
	for i > 0 {
		digits = append([]byte{byte('0' + i%10)}, digits...)
		i /= 10
	}
	return string(digits)
}
