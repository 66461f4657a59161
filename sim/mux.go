package sim

// MuxStrategy selects how a Mux redistributes supply across its outflow
// ports when they are not already balanced against demand (§4.8).
type MuxStrategy int

const (
	// InOrder satisfies outflow ports in index order, each consuming
	// min(request, remaining).
	InOrder MuxStrategy = iota
	// Distribute iteratively grants each unsatisfied outflow an equal
	// share of remaining supply until capped by its own request or supply
	// is exhausted.
	Distribute
)

// muxDistributeIterationCap bounds Distribute's iterative allocation loop.
// It is a safety guard against a live-lock in pathological request
// combinations, not a proven convergence bound (see DESIGN.md).
const muxDistributeIterationCap = 100

// Mux is an N-inflow x M-outflow dispatcher (§4.8). It does not itself
// transform flow; it only decides which inflow ports to draw from and how
// to divide the result across outflow ports.
type Mux struct {
	name   string
	stream Stream

	strategy MuxStrategy

	inflows  []Port
	outflows []Port

	reportInflowRequest   []bool
	reportOutflowAchieved []bool

	// asked tracks, within the current rerequest cycle, which inflow ports
	// have already been tapped for additional supply during undersupply
	// (§4.8 "next higher-index inflow port that has not yet been asked").
	asked []bool

	history bool
}

// NewMux constructs a Mux with the given inflow/outflow port counts and
// dispatch strategy.
func NewMux(name string, stream Stream, numInflows, numOutflows int, strategy MuxStrategy, history bool) *Mux {
	return &Mux{
		name:                  name,
		stream:                stream,
		strategy:              strategy,
		inflows:               make([]Port, numInflows),
		outflows:              make([]Port, numOutflows),
		reportInflowRequest:   make([]bool, numInflows),
		reportOutflowAchieved: make([]bool, numOutflows),
		asked:                 make([]bool, numInflows),
		history:               history,
	}
}

func (m *Mux) Type() ComponentType      { return ComponentMux }
func (m *Mux) Name() string             { return m.name }
func (m *Mux) NumInflows() int          { return len(m.inflows) }
func (m *Mux) NumOutflows() int         { return len(m.outflows) }
func (m *Mux) InflowStream(int) Stream  { return m.stream }
func (m *Mux) OutflowStream(int) Stream { return m.stream }
func (m *Mux) RecordHistory() bool      { return m.history }

func (m *Mux) TA() int64 {
	for _, r := range m.reportInflowRequest {
		if r {
			return 0
		}
	}
	for _, r := range m.reportOutflowAchieved {
		if r {
			return 0
		}
	}
	return InfiniteDuration
}

func (m *Mux) Output() []PortValue {
	var outs []PortValue
	for i, pending := range m.reportInflowRequest {
		if pending {
			outs = append(outs, PortValue{PortID: OutportInflowRequest + i, Value: m.inflows[i].Requested})
		}
	}
	for i, pending := range m.reportOutflowAchieved {
		if pending {
			outs = append(outs, PortValue{PortID: OutportOutflowAchieved + i, Value: m.outflows[i].Achieved})
		}
	}
	return outs
}

func (m *Mux) DeltaInt() {
	for i := range m.reportInflowRequest {
		m.reportInflowRequest[i] = false
	}
	for i := range m.reportOutflowAchieved {
		m.reportOutflowAchieved[i] = false
	}
}

func (m *Mux) DeltaConf(xs []PortValue) error {
	return deltaConfDefault(m, xs)
}

func (m *Mux) DeltaExt(_ int64, xs []PortValue) error {
	fresh := false
	for _, x := range xs {
		switch {
		case x.PortID >= InportOutflowRequest && x.PortID < InportOutflowRequest+len(m.outflows):
			i := x.PortID - InportOutflowRequest
			m.outflows[i] = m.outflows[i].WithRequested(x.Value).Port
			fresh = true
		case x.PortID >= InportInflowAchieved && x.PortID < InportInflowAchieved+len(m.inflows):
			i := x.PortID - InportInflowAchieved
			upd, err := m.inflows[i].WithAchieved(x.Value)
			if err != nil {
				return err
			}
			m.inflows[i] = upd.Port
		}
	}
	return m.rebalance(fresh)
}

func (m *Mux) rebalance(freshRequest bool) error {
	totalOutReq := sumRequested(m.outflows)
	totalInAch := sumAchieved(m.inflows)

	switch {
	case totalInAch > totalOutReq+Epsilon:
		m.rerequestInOrder(totalOutReq)
	case totalInAch < totalOutReq-Epsilon:
		if freshRequest {
			m.rerequestInOrder(totalOutReq)
		} else {
			m.pullFromNextInflow(totalOutReq - totalInAch)
		}
	}

	supply := sumAchieved(m.inflows)
	switch m.strategy {
	case Distribute:
		return m.redistribute(supply)
	default:
		return m.redistributeInOrder(supply)
	}
}

// rerequestInOrder concentrates the full outflow demand on inflow[0] and
// zeroes every other inflow request, then resets the undersupply "asked"
// tracker so the next pull starts again at index 1 (§4.8).
func (m *Mux) rerequestInOrder(total FlowValue) {
	for i := range m.inflows {
		target := FlowValue(0)
		if i == 0 {
			target = total
		}
		upd := m.inflows[i].WithRequested(target)
		m.inflows[i] = upd.Port
		if upd.SendRequest {
			m.reportInflowRequest[i] = true
		}
		m.asked[i] = i == 0
	}
}

// pullFromNextInflow asks the first not-yet-asked inflow (in increasing
// index order, capped at the highest index) to cover the given shortfall.
func (m *Mux) pullFromNextInflow(shortfall FlowValue) {
	target := len(m.inflows) - 1
	for i, asked := range m.asked {
		if !asked {
			target = i
			break
		}
	}
	newReq := m.inflows[target].Achieved + shortfall
	upd := m.inflows[target].WithRequested(newReq)
	m.inflows[target] = upd.Port
	if upd.SendRequest {
		m.reportInflowRequest[target] = true
	}
	m.asked[target] = true
}

// redistributeInOrder applies the InOrder strategy: outflow ports consume
// supply in index order, each taking min(request, remaining).
func (m *Mux) redistributeInOrder(supply FlowValue) error {
	remaining := supply
	for i := range m.outflows {
		grant := min(m.outflows[i].Requested, remaining)
		remaining -= grant
		if err := m.applyOutflowAchieved(i, grant); err != nil {
			return err
		}
	}
	return nil
}

// redistribute applies the Distribute strategy: unsatisfied outflows each
// receive an equal share of what remains, iterated until every outflow is
// capped by its own request or supply runs out.
func (m *Mux) redistribute(supply FlowValue) error {
	achieved := make([]FlowValue, len(m.outflows))
	remaining := supply

	for iter := 0; iter < muxDistributeIterationCap; iter++ {
		var live []int
		for i := range m.outflows {
			if achieved[i] < m.outflows[i].Requested-Epsilon {
				live = append(live, i)
			}
		}
		if len(live) == 0 || remaining <= Epsilon {
			break
		}
		share := remaining / FlowValue(len(live))
		for _, i := range live {
			grant := min(share, m.outflows[i].Requested-achieved[i])
			achieved[i] += grant
			remaining -= grant
		}
	}

	for i := range m.outflows {
		if err := m.applyOutflowAchieved(i, achieved[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *Mux) applyOutflowAchieved(i int, a FlowValue) error {
	upd, err := m.outflows[i].WithAchieved(a)
	if err != nil {
		return err
	}
	m.outflows[i] = upd.Port
	if upd.SendAchieved {
		m.reportOutflowAchieved[i] = true
	}
	return nil
}

func (m *Mux) recordHistory(w *FlowWriter, t Time) {
	for i, p := range m.inflows {
		w.Record(m.name+"/in"+itoa(i), RoleInflow, m.stream, t, p)
	}
	for i, p := range m.outflows {
		w.Record(m.name+"/out"+itoa(i), RoleOutflow, m.stream, t, p)
	}
}

func sumRequested(ports []Port) FlowValue {
	var total FlowValue
	for _, p := range ports {
		total += p.Requested
	}
	return total
}

func sumAchieved(ports []Port) FlowValue {
	var total FlowValue
	for _, p := range ports {
		total += p.Achieved
	}
	return total
}
