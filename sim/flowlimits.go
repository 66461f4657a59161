package sim

// FlowLimits clamps a downstream outflow request into an upstream inflow
// request bounded by [Lower, Upper] (§4.2). A failed component (§3
// Lifecycle, §4.10 step 1) is represented as a FlowLimits with
// Lower == Upper == 0.
type FlowLimits struct {
	name   string
	stream Stream

	inflow  Port
	outflow Port

	lower, upper FlowValue

	reportInflowRequest   bool
	reportOutflowAchieved bool

	history bool
}

// NewFlowLimits constructs a pass-through limiter bounding the upstream
// request to [lower, upper].
func NewFlowLimits(name string, stream Stream, lower, upper FlowValue, history bool) *FlowLimits {
	return &FlowLimits{name: name, stream: stream, lower: lower, upper: upper, history: history}
}

// NewFailedFlowLimits builds the zero-limit pipe used to materialize a
// fragility-killed component (§4.10 step 1).
func NewFailedFlowLimits(name string, stream Stream, history bool) *FlowLimits {
	return NewFlowLimits(name, stream, 0, 0, history)
}

func (f *FlowLimits) Type() ComponentType      { return ComponentPassThrough }
func (f *FlowLimits) Name() string             { return f.name }
func (f *FlowLimits) NumInflows() int          { return 1 }
func (f *FlowLimits) NumOutflows() int         { return 1 }
func (f *FlowLimits) InflowStream(int) Stream  { return f.stream }
func (f *FlowLimits) OutflowStream(int) Stream { return f.stream }
func (f *FlowLimits) RecordHistory() bool      { return f.history }

func (f *FlowLimits) TA() int64 {
	if f.reportInflowRequest || f.reportOutflowAchieved {
		return 0
	}
	return InfiniteDuration
}

func (f *FlowLimits) Output() []PortValue {
	var outs []PortValue
	if f.reportInflowRequest {
		outs = append(outs, PortValue{PortID: OutportInflowRequest, Value: f.inflow.Requested})
	}
	if f.reportOutflowAchieved {
		outs = append(outs, PortValue{PortID: OutportOutflowAchieved, Value: f.outflow.Achieved})
	}
	return outs
}

func (f *FlowLimits) DeltaInt() {
	f.reportInflowRequest = false
	f.reportOutflowAchieved = false
}

func (f *FlowLimits) DeltaConf(xs []PortValue) error {
	return deltaConfDefault(f, xs)
}

func (f *FlowLimits) DeltaExt(_ int64, xs []PortValue) error {
	for _, x := range xs {
		switch x.PortID {
		case InportOutflowRequest:
			if err := f.applyOutflowRequest(x.Value); err != nil {
				return err
			}
		case InportInflowAchieved:
			if err := f.applyInflowAchieved(x.Value); err != nil {
				return err
			}
		}
	}
	return nil
}

func (f *FlowLimits) applyOutflowRequest(r FlowValue) error {
	outUpd := f.outflow.WithRequested(r)
	f.outflow = outUpd.Port
	if outUpd.SendAchieved {
		f.reportOutflowAchieved = true
	}

	upper := f.upper
	if upper == Unlimited {
		upper = r
	}
	clamped := clampFV(r, f.lower, upper)
	inUpd := f.inflow.WithRequested(clamped)
	f.inflow = inUpd.Port
	if inUpd.SendRequest {
		f.reportInflowRequest = true
	}
	return f.syncOutflowAchieved()
}

func (f *FlowLimits) applyInflowAchieved(a FlowValue) error {
	inUpd, err := f.inflow.WithAchieved(a)
	if err != nil {
		return err
	}
	f.inflow = inUpd.Port
	return f.syncOutflowAchieved()
}

// syncOutflowAchieved maintains the FlowLimits invariant that outflow
// achieved tracks inflow achieved 1:1, capped by whatever the outflow side
// has actually requested (§3 invariant 5).
func (f *FlowLimits) syncOutflowAchieved() error {
	target := min(f.inflow.Achieved, f.outflow.Requested)
	upd, err := f.outflow.WithAchieved(target)
	if err != nil {
		return err
	}
	f.outflow = upd.Port
	if upd.SendAchieved {
		f.reportOutflowAchieved = true
	}
	return nil
}

func (f *FlowLimits) recordHistory(w *FlowWriter, t Time) {
	w.Record(f.name, RoleInflow, f.stream, t, f.inflow)
	w.Record(f.name, RoleOutflow, f.stream, t, f.outflow)
}

func clampFV(v, lo, hi FlowValue) FlowValue {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
