package sim

// ScheduleEntry is one point of a piecewise-constant schedule: the value
// holds from Time until the next entry's Time (§4.5, §4.10 step 4 scenario
// occurrence schedules are built from the same shape).
type ScheduleEntry struct {
	Time  int64
	Value FlowValue
}

// Load drives its single inflow port from a finite request schedule (§4.5):
// at each scheduled time it requests the next value, then reports whatever
// achieved value comes back from upstream. A Load is a terminal sink — it
// has no outflow port and never propagates past its own inflow.
type Load struct {
	name   string
	stream Stream

	schedule []ScheduleEntry
	idx      int
	clock    int64

	inflow        Port
	reportRequest bool

	history bool
}

// NewLoad constructs a Load against the given request schedule, which must
// be sorted by Time ascending.
func NewLoad(name string, stream Stream, schedule []ScheduleEntry, history bool) *Load {
	return &Load{name: name, stream: stream, schedule: schedule, history: history}
}

func (l *Load) Type() ComponentType       { return ComponentLoad }
func (l *Load) Name() string              { return l.name }
func (l *Load) NumInflows() int           { return 1 }
func (l *Load) NumOutflows() int          { return 0 }
func (l *Load) InflowStream(int) Stream   { return l.stream }
func (l *Load) OutflowStream(int) Stream  { return "" }
func (l *Load) RecordHistory() bool       { return l.history }

// Schedule returns the request schedule this Load was built with.
func (l *Load) Schedule() []ScheduleEntry { return l.schedule }

// Unmet returns the current shortfall between what the load requested and
// what it is actually receiving, i.e. the instantaneous load-not-served rate.
func (l *Load) Unmet() FlowValue {
	return l.inflow.Requested - l.inflow.Achieved
}

func (l *Load) TA() int64 {
	if l.reportRequest {
		return 0
	}
	if l.idx < len(l.schedule) {
		return l.schedule[l.idx].Time - l.clock
	}
	return InfiniteDuration
}

func (l *Load) Output() []PortValue {
	if l.reportRequest {
		return []PortValue{{PortID: OutportInflowRequest, Value: l.inflow.Requested}}
	}
	return nil
}

func (l *Load) DeltaInt() {
	if l.reportRequest {
		l.reportRequest = false
		return
	}
	elapsed := l.schedule[l.idx].Time - l.clock
	l.clock += elapsed
	upd := l.inflow.WithRequested(l.schedule[l.idx].Value)
	l.inflow = upd.Port
	l.reportRequest = upd.SendRequest
	l.idx++
}

func (l *Load) DeltaConf(xs []PortValue) error {
	return deltaConfDefault(l, xs)
}

func (l *Load) DeltaExt(elapsed int64, xs []PortValue) error {
	l.clock += elapsed
	for _, x := range xs {
		if x.PortID != InportInflowAchieved {
			continue
		}
		upd, err := l.inflow.WithAchieved(x.Value)
		if err != nil {
			return err
		}
		l.inflow = upd.Port
	}
	return nil
}

func (l *Load) recordHistory(w *FlowWriter, t Time) {
	w.Record(l.name, RoleLoadInflow, l.stream, t, l.inflow)
}

// UncontrolledSource drives its single outflow port from a finite supply
// schedule (§4.5), symmetric to Load: at each scheduled time it updates the
// available supply and recomputes its achieved outflow against whatever the
// downstream side currently requests.
type UncontrolledSource struct {
	name   string
	stream Stream

	schedule []ScheduleEntry
	idx      int
	clock    int64

	available FlowValue
	outflow   Port

	reportAchieved bool

	history bool
}

// NewUncontrolledSource constructs an UncontrolledSource against the given
// supply schedule, which must be sorted by Time ascending.
func NewUncontrolledSource(name string, stream Stream, schedule []ScheduleEntry, history bool) *UncontrolledSource {
	return &UncontrolledSource{name: name, stream: stream, schedule: schedule, history: history}
}

func (u *UncontrolledSource) Type() ComponentType      { return ComponentUncontrolledSource }
func (u *UncontrolledSource) Name() string             { return u.name }
func (u *UncontrolledSource) NumInflows() int          { return 0 }
func (u *UncontrolledSource) NumOutflows() int         { return 1 }
func (u *UncontrolledSource) InflowStream(int) Stream  { return "" }
func (u *UncontrolledSource) OutflowStream(int) Stream { return u.stream }
func (u *UncontrolledSource) RecordHistory() bool      { return u.history }

func (u *UncontrolledSource) TA() int64 {
	if u.reportAchieved {
		return 0
	}
	if u.idx < len(u.schedule) {
		return u.schedule[u.idx].Time - u.clock
	}
	return InfiniteDuration
}

func (u *UncontrolledSource) Output() []PortValue {
	if u.reportAchieved {
		return []PortValue{{PortID: OutportOutflowAchieved, Value: u.outflow.Achieved}}
	}
	return nil
}

func (u *UncontrolledSource) DeltaInt() {
	if u.reportAchieved {
		u.reportAchieved = false
		return
	}
	elapsed := u.schedule[u.idx].Time - u.clock
	u.clock += elapsed
	u.available = u.schedule[u.idx].Value
	u.idx++
	u.recompute()
}

func (u *UncontrolledSource) DeltaConf(xs []PortValue) error {
	return deltaConfDefault(u, xs)
}

func (u *UncontrolledSource) DeltaExt(elapsed int64, xs []PortValue) error {
	u.clock += elapsed
	for _, x := range xs {
		if x.PortID != InportOutflowRequest {
			continue
		}
		upd := u.outflow.WithRequested(x.Value)
		u.outflow = upd.Port
	}
	u.recompute()
	return nil
}

func (u *UncontrolledSource) recordHistory(w *FlowWriter, t Time) {
	w.Record(u.name, RoleSourceOutflow, u.stream, t, u.outflow)
}

// recompute re-derives achieved outflow as whatever the downstream side
// requests, capped by the currently available supply.
func (u *UncontrolledSource) recompute() {
	upd := u.outflow.WithRequestedAndAvailable(u.outflow.Requested, u.available)
	u.outflow = upd.Port
	if upd.SendAchieved {
		u.reportAchieved = true
	}
}
