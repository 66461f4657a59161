package sim

// TimeState is one entry of an on/off schedule: the switch holds State from
// Time until the next entry (§4.7, shared shape with ScheduleEntry).
type TimeState struct {
	Time  int64
	State bool
}

// OnOffSwitch gates its inflow/outflow pair according to a schedule: a
// transparent pipe while on, a zero-limit gate while off (§4.7). This is
// the mechanism reliability overlays use to interrupt a connection during a
// scheduled outage (§4.10 step 2).
type OnOffSwitch struct {
	name   string
	stream Stream

	schedule []TimeState
	idx      int
	clock    int64
	on       bool

	inflow  Port
	outflow Port

	reportInflowRequest   bool
	reportOutflowAchieved bool

	history bool
}

// NewOnOffSwitch constructs an OnOffSwitch starting in the given state,
// gated thereafter by schedule (sorted by Time ascending).
func NewOnOffSwitch(name string, stream Stream, initialState bool, schedule []TimeState, history bool) *OnOffSwitch {
	return &OnOffSwitch{name: name, stream: stream, on: initialState, schedule: schedule, history: history}
}

func (o *OnOffSwitch) Type() ComponentType      { return ComponentOnOffSwitch }
func (o *OnOffSwitch) Name() string             { return o.name }
func (o *OnOffSwitch) NumInflows() int          { return 1 }
func (o *OnOffSwitch) NumOutflows() int         { return 1 }
func (o *OnOffSwitch) InflowStream(int) Stream  { return o.stream }
func (o *OnOffSwitch) OutflowStream(int) Stream { return o.stream }
func (o *OnOffSwitch) RecordHistory() bool      { return o.history }

// On reports the switch's current gating state.
func (o *OnOffSwitch) On() bool { return o.on }

func (o *OnOffSwitch) TA() int64 {
	if o.reportInflowRequest || o.reportOutflowAchieved {
		return 0
	}
	if o.idx < len(o.schedule) {
		return o.schedule[o.idx].Time - o.clock
	}
	return InfiniteDuration
}

func (o *OnOffSwitch) Output() []PortValue {
	var outs []PortValue
	if o.reportInflowRequest {
		outs = append(outs, PortValue{PortID: OutportInflowRequest, Value: o.inflow.Requested})
	}
	if o.reportOutflowAchieved {
		outs = append(outs, PortValue{PortID: OutportOutflowAchieved, Value: o.outflow.Achieved})
	}
	return outs
}

func (o *OnOffSwitch) DeltaInt() {
	notifyOnly := o.reportInflowRequest || o.reportOutflowAchieved
	o.reportInflowRequest = false
	o.reportOutflowAchieved = false
	if notifyOnly {
		return
	}
	elapsed := o.schedule[o.idx].Time - o.clock
	o.clock += elapsed
	o.on = o.schedule[o.idx].State
	o.idx++
	o.resync()
}

func (o *OnOffSwitch) DeltaConf(xs []PortValue) error {
	return deltaConfDefault(o, xs)
}

func (o *OnOffSwitch) DeltaExt(elapsed int64, xs []PortValue) error {
	o.clock += elapsed
	for _, x := range xs {
		switch x.PortID {
		case InportOutflowRequest:
			upd := o.outflow.WithRequested(x.Value)
			o.outflow = upd.Port
		case InportInflowAchieved:
			upd, err := o.inflow.WithAchieved(x.Value)
			if err != nil {
				return err
			}
			o.inflow = upd.Port
		}
	}
	o.resync()
	return nil
}

func (o *OnOffSwitch) recordHistory(w *FlowWriter, t Time) {
	w.Record(o.name, RoleInflow, o.stream, t, o.inflow)
	w.Record(o.name, RoleOutflow, o.stream, t, o.outflow)
}

// resync re-derives both ports from the current gating state: a transparent
// pass-through while on, fully clamped to zero while off.
func (o *OnOffSwitch) resync() {
	var reqTarget, achievedCap FlowValue
	if o.on {
		reqTarget = o.outflow.Requested
		achievedCap = o.outflow.Requested
	}

	inUpd := o.inflow.WithRequested(reqTarget)
	o.inflow = inUpd.Port
	if inUpd.SendRequest {
		o.reportInflowRequest = true
	}

	target := min(o.inflow.Achieved, achievedCap)
	outUpd, _ := o.outflow.WithAchieved(target)
	// target <= outflow.Requested always: achievedCap is either 0 or
	// outflow.Requested, and inflow.Achieved <= inflow.Requested ==
	// reqTarget <= outflow.Requested when on.
	o.outflow = outUpd.Port
	if outUpd.SendAchieved {
		o.reportOutflowAchieved = true
	}
}
