package sim

import "math"

// Mover couples two inflow ports by a coefficient of performance (§4.9):
// outflow = inflow0 + inflow1, with inflow1 = inflow0/COP (equivalently
// outflow = inflow0*(1+1/COP) = inflow1*(1+COP)). Heat pumps and similar
// COP-driven devices are expressed this way rather than as a Converter,
// since a Converter has only one inflow.
type Mover struct {
	name   string
	stream Stream

	COP FlowValue

	inflow0, inflow1 Port
	outflow          Port

	reported0, reported1 bool

	reportInflow0Request  bool
	reportInflow1Request  bool
	reportOutflowAchieved bool

	history bool
}

// NewMover constructs a Mover with the given coefficient of performance.
func NewMover(name string, stream Stream, cop FlowValue, history bool) *Mover {
	return &Mover{name: name, stream: stream, COP: cop, history: history}
}

func (m *Mover) Type() ComponentType      { return ComponentMover }
func (m *Mover) Name() string             { return m.name }
func (m *Mover) NumInflows() int          { return 2 }
func (m *Mover) NumOutflows() int         { return 1 }
func (m *Mover) InflowStream(int) Stream  { return m.stream }
func (m *Mover) OutflowStream(int) Stream { return m.stream }
func (m *Mover) RecordHistory() bool      { return m.history }

func (m *Mover) TA() int64 {
	if m.reportInflow0Request || m.reportInflow1Request || m.reportOutflowAchieved {
		return 0
	}
	return InfiniteDuration
}

func (m *Mover) Output() []PortValue {
	var outs []PortValue
	if m.reportInflow0Request {
		outs = append(outs, PortValue{PortID: OutportInflowRequest + 0, Value: m.inflow0.Requested})
	}
	if m.reportInflow1Request {
		outs = append(outs, PortValue{PortID: OutportInflowRequest + 1, Value: m.inflow1.Requested})
	}
	if m.reportOutflowAchieved {
		outs = append(outs, PortValue{PortID: OutportOutflowAchieved, Value: m.outflow.Achieved})
	}
	return outs
}

func (m *Mover) DeltaInt() {
	m.reportInflow0Request = false
	m.reportInflow1Request = false
	m.reportOutflowAchieved = false
}

func (m *Mover) DeltaConf(xs []PortValue) error {
	return deltaConfDefault(m, xs)
}

func (m *Mover) DeltaExt(_ int64, xs []PortValue) error {
	for _, x := range xs {
		switch x.PortID {
		case InportOutflowRequest:
			m.applyOutflowRequest(x.Value)
		case InportInflowAchieved + 0:
			if err := m.applyInflowAchieved(0, x.Value); err != nil {
				return err
			}
		case InportInflowAchieved + 1:
			if err := m.applyInflowAchieved(1, x.Value); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *Mover) applyOutflowRequest(r FlowValue) {
	outUpd := m.outflow.WithRequested(r)
	m.outflow = outUpd.Port
	if outUpd.SendAchieved {
		m.reportOutflowAchieved = true
	}

	in0Target := r * m.COP / (m.COP + 1)
	in1Target := r / (m.COP + 1)

	in0Upd := m.inflow0.WithRequested(in0Target)
	m.inflow0 = in0Upd.Port
	if in0Upd.SendRequest {
		m.reportInflow0Request = true
	}

	in1Upd := m.inflow1.WithRequested(in1Target)
	m.inflow1 = in1Upd.Port
	if in1Upd.SendRequest {
		m.reportInflow1Request = true
	}
}

func (m *Mover) applyInflowAchieved(which int, a FlowValue) error {
	if which == 0 {
		upd, err := m.inflow0.WithAchieved(a)
		if err != nil {
			return err
		}
		m.inflow0 = upd.Port
		m.reported0 = true
	} else {
		upd, err := m.inflow1.WithAchieved(a)
		if err != nil {
			return err
		}
		m.inflow1 = upd.Port
		m.reported1 = true
	}
	return m.recompute()
}

func (m *Mover) recordHistory(w *FlowWriter, t Time) {
	w.Record(m.name+"/in0", RoleInflow, m.stream, t, m.inflow0)
	w.Record(m.name+"/in1", RoleInflow, m.stream, t, m.inflow1)
	w.Record(m.name, RoleOutflow, m.stream, t, m.outflow)
}

// recompute re-derives the outflow and the opposing inflow request from
// whichever inflow is currently the more constrained side (§4.9).
func (m *Mover) recompute() error {
	implied0 := FlowValue(math.MaxFloat64)
	if m.reported0 {
		implied0 = m.inflow0.Achieved * (1 + 1/m.COP)
	}
	implied1 := FlowValue(math.MaxFloat64)
	if m.reported1 {
		implied1 = m.inflow1.Achieved * (1 + m.COP)
	}

	outTarget := min(m.outflow.Requested, min(implied0, implied1))

	outUpd, err := m.outflow.WithAchieved(outTarget)
	if err != nil {
		return err
	}
	m.outflow = outUpd.Port
	if outUpd.SendAchieved {
		m.reportOutflowAchieved = true
	}

	in0Target := outTarget * m.COP / (m.COP + 1)
	in1Target := outTarget / (m.COP + 1)

	in0Upd := m.inflow0.WithRequested(in0Target)
	m.inflow0 = in0Upd.Port
	if in0Upd.SendRequest {
		m.reportInflow0Request = true
	}

	in1Upd := m.inflow1.WithRequested(in1Target)
	m.inflow1 = in1Upd.Port
	if in1Upd.SendRequest {
		m.reportInflow1Request = true
	}
	return nil
}
