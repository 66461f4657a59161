package sim

// InfiniteDuration is the ta() sentinel meaning "no internal event
// scheduled"; §3 calls this the infinity sentinel.
const InfiniteDuration int64 = -1

// Atomic is the classic DEVS atomic-model contract (§2 item 2): a
// time-advance function plus the three transition functions and an output
// function, all operating on PortValue messages local to the component.
//
// The confluent transition's default semantics (used by every atomic model
// in this package unless documented otherwise) is "apply the internal
// transition, then apply the external transition with zero elapsed time" —
// i.e. DeltaConf(xs) == { DeltaInt(); DeltaExt(0, xs) }. Models override
// DeltaConf only when that default would violate a component-specific
// invariant.
type Atomic interface {
	// TA returns the number of seconds until this component's next
	// internal transition, or InfiniteDuration if none is scheduled.
	TA() int64
	// DeltaInt applies the internal transition: the component has just
	// produced its Output() and now advances past that event.
	DeltaInt()
	// DeltaExt applies an external transition: elapsed seconds have
	// passed since the last transition, and xs carries input messages
	// addressed to this component's inports.
	DeltaExt(elapsed int64, xs []PortValue) error
	// DeltaConf applies a confluent transition: this component's
	// internal event and one or more external inputs landed at the same
	// instant.
	DeltaConf(xs []PortValue) error
	// Output produces the messages this component emits at its next
	// scheduled internal event. Called before DeltaInt/DeltaConf.
	Output() []PortValue
}

// Component is an Atomic model plus the metadata the network builder and
// flow writer need: its kind, its port counts, and the stream each port
// carries (§4.10 step 3 stream-consistency check).
type Component interface {
	Atomic
	Type() ComponentType
	Name() string
	NumInflows() int
	NumOutflows() int
	InflowStream(i int) Stream
	OutflowStream(i int) Stream
	// RecordHistory reports whether the flow writer should retain this
	// component's port history (§4.12); components synthesized purely as
	// fragility/reliability wrappers may suppress it.
	RecordHistory() bool
}

// deltaConfDefault runs the documented default confluent transition for
// atomic models that don't need a specialized one.
func deltaConfDefault(c Atomic, xs []PortValue) error {
	c.DeltaInt()
	return c.DeltaExt(0, xs)
}
