package sim

import "math"

// Storage is a state-of-charge integrator bounded by capacity and a
// max-charge-rate (§4.4). Two regimes apply at the soc boundaries:
//
//   - soc == 0 (empty): outflow is inflow-limited, outflow.Achieved =
//     min(outflow.Requested, inflow.Achieved).
//   - soc == 1 (full): inflow request is capped to outflow demand,
//     inflow.Requested = outflow.Requested.
//
// In between, outflow is always fully met from storage (outflow.Achieved
// = outflow.Requested) and inflow requests the max charge rate, so any
// deficit or surplus between inflow.Achieved and outflow.Achieved drives
// soc at rate (inflow.Achieved-outflow.Achieved)/CapacityKJ.
type Storage struct {
	name   string
	stream Stream

	CapacityKJ      FlowValue
	MaxChargeRateKW FlowValue

	soc FlowValue

	inflow  Port
	outflow Port

	reportInflowRequest   bool
	reportOutflowAchieved bool

	// energy balance accumulators (§4.4, §8 testable property), reset
	// by ResetEnergyBalance.
	energyIn, energyOut FlowValue
	socAtReset          FlowValue

	history bool
}

// NewStorage constructs a Storage with the given capacity (kJ), max
// charge rate (kW), and initial state of charge in [0,1].
func NewStorage(name string, stream Stream, capacityKJ, maxChargeRateKW, soc0 FlowValue, history bool) *Storage {
	s := &Storage{
		name:            name,
		stream:          stream,
		CapacityKJ:      capacityKJ,
		MaxChargeRateKW: maxChargeRateKW,
		soc:             soc0,
		socAtReset:      soc0,
		history:         history,
	}
	return s
}

func (s *Storage) Type() ComponentType      { return ComponentStorage }
func (s *Storage) Name() string             { return s.name }
func (s *Storage) NumInflows() int          { return 1 }
func (s *Storage) NumOutflows() int         { return 1 }
func (s *Storage) InflowStream(int) Stream  { return s.stream }
func (s *Storage) OutflowStream(int) Stream { return s.stream }
func (s *Storage) RecordHistory() bool      { return s.history }

// SOC returns the current state of charge in [0,1].
func (s *Storage) SOC() FlowValue { return s.soc }

// netRate returns the current rate of soc change, in fraction-per-second.
func (s *Storage) netRate() FlowValue {
	return (s.inflow.Achieved - s.outflow.Achieved) / s.CapacityKJ
}

func (s *Storage) TA() int64 {
	if s.reportInflowRequest || s.reportOutflowAchieved {
		return 0
	}
	rate := s.netRate()
	switch {
	case rate > Epsilon:
		dt := (1 - s.soc) / rate
		return secondsUntil(dt)
	case rate < -Epsilon:
		dt := s.soc / -rate
		return secondsUntil(dt)
	default:
		return InfiniteDuration
	}
}

func secondsUntil(dt float64) int64 {
	if dt <= 0 {
		return 0
	}
	return int64(math.Round(dt))
}

func (s *Storage) Output() []PortValue {
	var outs []PortValue
	if s.reportInflowRequest {
		outs = append(outs, PortValue{PortID: OutportInflowRequest, Value: s.inflow.Requested})
	}
	if s.reportOutflowAchieved {
		outs = append(outs, PortValue{PortID: OutportOutflowAchieved, Value: s.outflow.Achieved})
	}
	return outs
}

// elapsedSinceSchedule returns the elapsed time implied by the current
// TA(): 0 if a notification is pending (state hasn't moved), else the
// soc-boundary duration. Safe to call at the top of DeltaInt/DeltaConf
// because nothing mutates Storage's ports between scheduling and firing.
func (s *Storage) elapsedSinceSchedule() int64 {
	if dt := s.TA(); dt != InfiniteDuration {
		return dt
	}
	return 0
}

func (s *Storage) DeltaInt() {
	elapsed := s.elapsedSinceSchedule()
	s.reportInflowRequest = false
	s.reportOutflowAchieved = false
	s.advance(elapsed)
	s.recompute()
}

func (s *Storage) DeltaConf(xs []PortValue) error {
	elapsed := s.elapsedSinceSchedule()
	s.reportInflowRequest = false
	s.reportOutflowAchieved = false
	s.advance(elapsed)
	return s.DeltaExt(0, xs)
}

func (s *Storage) DeltaExt(elapsed int64, xs []PortValue) error {
	s.advance(elapsed)
	for _, x := range xs {
		switch x.PortID {
		case InportOutflowRequest:
			upd := s.outflow.WithRequested(x.Value)
			s.outflow = upd.Port
		case InportInflowAchieved:
			upd, err := s.inflow.WithAchieved(x.Value)
			if err != nil {
				return err
			}
			s.inflow = upd.Port
		}
	}
	s.recompute()
	return nil
}

// advance integrates soc forward by elapsed seconds at the current rate
// and clamps to [0,1]; it also feeds the energy-balance accumulators.
func (s *Storage) advance(elapsed int64) {
	if elapsed <= 0 {
		return
	}
	dt := float64(elapsed)
	s.energyIn += s.inflow.Achieved * dt
	s.energyOut += s.outflow.Achieved * dt
	s.soc += s.netRate() * dt
	if s.soc < 0 {
		s.soc = 0
	}
	if s.soc > 1 {
		s.soc = 1
	}
}

// recompute re-derives the outflow-achieved and inflow-requested targets
// for the current soc regime and flags any resulting changes for output.
func (s *Storage) recompute() {
	var outTarget FlowValue
	if s.soc <= 0 {
		outTarget = min(s.outflow.Requested, s.inflow.Achieved)
	} else {
		outTarget = s.outflow.Requested
	}
	// Storage's own achieved can never legitimately exceed its own
	// requested; this call cannot fail because outTarget <= outflow.Requested
	// by construction in both branches above.
	outUpd, _ := s.outflow.WithAchieved(outTarget)
	s.outflow = outUpd.Port
	if outUpd.SendAchieved {
		s.reportOutflowAchieved = true
	}

	var inReq FlowValue
	if s.soc >= 1 {
		inReq = s.outflow.Requested
	} else {
		inReq = s.MaxChargeRateKW
	}
	inUpd := s.inflow.WithRequested(inReq)
	s.inflow = inUpd.Port
	if inUpd.SendRequest {
		s.reportInflowRequest = true
	}
}

func (s *Storage) recordHistory(w *FlowWriter, t Time) {
	w.Record(s.name, RoleStorageInflow, s.stream, t, s.inflow)
	w.Record(s.name, RoleStorageOutflow, s.stream, t, s.outflow)
}

// EnergyBalance returns the accumulated (in, out) energy in kJ since the
// last ResetEnergyBalance, and the soc-implied store term for that same
// interval (§8 testable property: |in - out - store| < Epsilon).
func (s *Storage) EnergyBalance() (in, out, store FlowValue) {
	return s.energyIn, s.energyOut, (s.soc - s.socAtReset) * s.CapacityKJ
}

// ResetEnergyBalance zeroes the accumulators, starting a new audit window.
func (s *Storage) ResetEnergyBalance() {
	s.energyIn = 0
	s.energyOut = 0
	s.socAtReset = s.soc
}
