package sim

import (
	"fmt"
	"strconv"
)

// ftoa formats a FlowValue compactly for error messages.
func ftoa(v FlowValue) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// ConfigError reports malformed input discovered while building a network:
// a missing required field, unknown tag, negative duration, non-monotone
// load times, zero capacity, or impossible limits. Fatal for the scenario.
type ConfigError struct {
	Component string
	Reason    string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error in %q: %s", e.Component, e.Reason)
}

// ReferenceError reports a name referenced but never declared: an unknown
// component in a connection, or an unknown distribution in a failure mode.
// Fatal for the scenario.
type ReferenceError struct {
	Kind string // "component", "distribution", "fragility_curve", ...
	Name string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("reference error: unknown %s %q", e.Kind, e.Name)
}

// StreamMismatchError reports a connection whose declared stream differs
// from one of its endpoints' port streams. Fatal for the scenario.
type StreamMismatchError struct {
	Connection string
	Declared   Stream
	Actual     Stream
}

func (e *StreamMismatchError) Error() string {
	return fmt.Sprintf("stream mismatch on %q: declared %q, endpoint carries %q",
		e.Connection, e.Declared, e.Actual)
}

// InvariantViolation reports a runtime check that detected achieved >
// requested or another infeasible flow. Fatal for the run.
type InvariantViolation struct {
	Reason string
	Detail string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("invariant violation: %s (%s)", e.Reason, e.Detail)
}

// Divergence reports that the simulator's non-advance watchdog (§4.11 step
// 5) tripped: the event queue kept producing events at the same real time
// for longer than the configured budget, indicating a live-lock in the
// coupling logic rather than genuine progress.
type Divergence struct {
	At         Time
	Iterations int
	LastState  string
}

func (e *Divergence) Error() string {
	return fmt.Sprintf("divergence at t=%s after %d non-advancing iterations: %s",
		e.At, e.Iterations, e.LastState)
}
