package sim

// Supply is a source with an optional max-outflow cap (§4.6). Unlimited is
// the sentinel for "no cap".
type Supply struct {
	name   string
	stream Stream

	MaxOutflow FlowValue // Unlimited sentinel means uncapped

	outflow        Port
	reportAchieved bool

	history bool
}

// NewSupply constructs a Supply with the given outflow cap (Unlimited for none).
func NewSupply(name string, stream Stream, maxOutflow FlowValue, history bool) *Supply {
	return &Supply{name: name, stream: stream, MaxOutflow: maxOutflow, history: history}
}

func (s *Supply) Type() ComponentType      { return ComponentSource }
func (s *Supply) Name() string             { return s.name }
func (s *Supply) NumInflows() int          { return 0 }
func (s *Supply) NumOutflows() int         { return 1 }
func (s *Supply) InflowStream(int) Stream  { return "" }
func (s *Supply) OutflowStream(int) Stream { return s.stream }
func (s *Supply) RecordHistory() bool      { return s.history }

func (s *Supply) TA() int64 {
	if s.reportAchieved {
		return 0
	}
	return InfiniteDuration
}

func (s *Supply) Output() []PortValue {
	if s.reportAchieved {
		return []PortValue{{PortID: OutportOutflowAchieved, Value: s.outflow.Achieved}}
	}
	return nil
}

func (s *Supply) DeltaInt() {
	s.reportAchieved = false
}

func (s *Supply) recordHistory(w *FlowWriter, t Time) {
	w.Record(s.name, RoleSourceOutflow, s.stream, t, s.outflow)
}

func (s *Supply) DeltaConf(xs []PortValue) error {
	return deltaConfDefault(s, xs)
}

func (s *Supply) DeltaExt(_ int64, xs []PortValue) error {
	for _, x := range xs {
		if x.PortID != InportOutflowRequest {
			continue
		}
		reqUpd := s.outflow.WithRequested(x.Value)
		s.outflow = reqUpd.Port

		target := x.Value
		if s.MaxOutflow != Unlimited {
			target = min(target, s.MaxOutflow)
		}
		achUpd, err := s.outflow.WithAchieved(target)
		if err != nil {
			return err
		}
		s.outflow = achUpd.Port
		if reqUpd.SendAchieved || achUpd.SendAchieved {
			s.reportAchieved = true
		}
	}
	return nil
}
