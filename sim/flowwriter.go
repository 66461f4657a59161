package sim

// FlowRecord is one observed change at an instrumented port: the value that
// held from Time onward, until the next record in the same PortSeries.
type FlowRecord struct {
	Time      Time
	Requested FlowValue
	Achieved  FlowValue
}

// PortSeries accumulates the FlowRecords for one (component, port role,
// stream) triple, identified by a stable integer id (§4.12).
type PortSeries struct {
	ID        int
	Component string
	Role      PortRole
	Stream    Stream
	Records   []FlowRecord
}

// FlowWriter assigns stable ids to instrumented ports and records every
// requested/achieved change, emitting a terminal record at finalize-time
// (§4.12). Components without RecordHistory() are never recorded.
type FlowWriter struct {
	series    []*PortSeries
	index     map[seriesKey]int
	lastValue map[int]FlowRecord
}

type seriesKey struct {
	component string
	role      PortRole
	stream    Stream
}

// NewFlowWriter constructs an empty FlowWriter.
func NewFlowWriter() *FlowWriter {
	return &FlowWriter{index: make(map[seriesKey]int), lastValue: make(map[int]FlowRecord)}
}

// idFor returns the stable id for (component, role, stream), assigning one
// on first use.
func (w *FlowWriter) idFor(component string, role PortRole, stream Stream) int {
	key := seriesKey{component: component, role: role, stream: stream}
	if id, ok := w.index[key]; ok {
		return id
	}
	id := len(w.series)
	w.series = append(w.series, &PortSeries{ID: id, Component: component, Role: role, Stream: stream})
	w.index[key] = id
	return id
}

// Record appends a new entry for (component, role, stream) at t if the
// value actually changed from the last recorded value, maintaining the
// strictly-increasing-time guarantee from §4.12.
func (w *FlowWriter) Record(component string, role PortRole, stream Stream, t Time, p Port) {
	id := w.idFor(component, role, stream)
	last, ok := w.lastValue[id]
	rec := FlowRecord{Time: t, Requested: p.Requested, Achieved: p.Achieved}
	if ok && last.Time.Equal(t) {
		w.series[id].Records[len(w.series[id].Records)-1] = rec
		w.lastValue[id] = rec
		return
	}
	if ok && floatEqual(last.Requested, p.Requested) && floatEqual(last.Achieved, p.Achieved) {
		return
	}
	w.series[id].Records = append(w.series[id].Records, rec)
	w.lastValue[id] = rec
}

// recordFrom is the simulator's hook: it records whichever ports of c carry
// history, through the historyRecorder interface since Component does not expose raw Port
// values generically (§4.12 only requires instrumenting the concrete atomic
// models, not an open port-introspection API).
func (w *FlowWriter) recordFrom(c Component, t Time) {
	if !c.RecordHistory() {
		return
	}
	if rec, ok := c.(historyRecorder); ok {
		rec.recordHistory(w, t)
	}
}

// historyRecorder is implemented by atomic models that expose their ports
// for flow-writer instrumentation.
type historyRecorder interface {
	recordHistory(w *FlowWriter, t Time)
}

// Finalize appends one terminal record per series at scenarioDuration,
// mirroring its last value, unless a record already sits at that time
// (§4.12).
func (w *FlowWriter) Finalize(scenarioDuration int64) {
	end := Time{Real: scenarioDuration}
	for _, s := range w.series {
		if len(s.Records) == 0 {
			continue
		}
		last := s.Records[len(s.Records)-1]
		if last.Time.Real == scenarioDuration {
			continue
		}
		s.Records = append(s.Records, FlowRecord{Time: end, Requested: last.Requested, Achieved: last.Achieved})
	}
}

// Series returns every recorded port series, in assignment order.
func (w *FlowWriter) Series() []*PortSeries {
	return w.series
}
