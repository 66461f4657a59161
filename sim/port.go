package sim

// Port is a (requested, achieved) value pair through which flow
// negotiation occurs. The invariant 0 <= Achieved <= Requested holds at
// every resting state (§3 invariant 3).
type Port struct {
	Requested FlowValue
	Achieved  FlowValue
}

// PortUpdate is the result of applying a transition to a Port: the new
// port value plus flags telling the caller which directions of the
// negotiation need to be propagated to coupled neighbors.
type PortUpdate struct {
	Port          Port
	SendRequest   bool
	SendAchieved  bool
}

// WithRequested applies a new requested value (§4.1). Achieved is clamped
// to the new requested value if it would otherwise exceed it, which lets a
// downstream reduction in demand retract an already-granted achieved value
// without a further round trip.
func (p Port) WithRequested(r FlowValue) PortUpdate {
	next := p
	next.Requested = r
	sendRequest := !floatEqual(r, p.Requested)
	clamped := min(p.Achieved, r)
	sendAchieved := !floatEqual(clamped, p.Achieved)
	next.Achieved = clamped
	return PortUpdate{Port: next, SendRequest: sendRequest, SendAchieved: sendAchieved}
}

// WithAchieved applies a new achieved value (§4.1). It is a programming or
// upstream error to report more than was requested; callers surface this as
// an InvariantViolation rather than silently clamping.
func (p Port) WithAchieved(a FlowValue) (PortUpdate, error) {
	if a > p.Requested+Epsilon {
		return PortUpdate{}, &InvariantViolation{
			Reason: "achieved exceeds requested",
			Detail: formatPortViolation(p, a),
		}
	}
	next := p
	next.Achieved = a
	sendAchieved := !floatEqual(a, p.Achieved)
	return PortUpdate{Port: next, SendAchieved: sendAchieved}, nil
}

// WithRequestedAndAvailable is the upstream-response primitive (§3): the
// downstream side reports a new request together with how much is
// available upstream, and the port resolves the achieved value to
// min(r, avail) in one step instead of a separate request/achieved
// round trip.
func (p Port) WithRequestedAndAvailable(r, avail FlowValue) PortUpdate {
	next := Port{Requested: r, Achieved: min(r, avail)}
	sendRequest := !floatEqual(r, p.Requested)
	sendAchieved := !floatEqual(next.Achieved, p.Achieved)
	return PortUpdate{Port: next, SendRequest: sendRequest, SendAchieved: sendAchieved}
}

func floatEqual(a, b FlowValue) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < Epsilon
}

func formatPortViolation(p Port, a FlowValue) string {
	return "requested=" + ftoa(p.Requested) + " achieved=" + ftoa(a)
}
