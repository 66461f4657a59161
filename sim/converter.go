package sim

// Converter applies a constant efficiency between its inflow and outflow,
// routing whatever is not converted to a wasteflow port (§4.3). Efficiency
// above 1 is permitted to model COP-style devices (heat pumps, movers);
// see Converter.Lossflow doc comment for the documented limitation this
// creates (spec.md §9 open question (b)).
type Converter struct {
	name   string
	stream Stream

	// Efficiency is eta. eta > 1 is valid (COP-style use) but lossflow is
	// only meaningful for eta <= 1: for eta > 1 there is no "lost" energy
	// to account for, so Lossflow() is pinned to 0 rather than reporting
	// a nonsensical negative loss.
	Efficiency FlowValue

	inflow    Port
	outflow   Port
	wasteflow Port

	reportInflowRequest     bool
	reportOutflowAchieved   bool
	reportWasteflowAchieved bool

	history bool
}

// NewConverter constructs a Converter with the given constant efficiency.
func NewConverter(name string, stream Stream, efficiency FlowValue, history bool) *Converter {
	return &Converter{name: name, stream: stream, Efficiency: efficiency, history: history}
}

func (c *Converter) Type() ComponentType      { return ComponentConverter }
func (c *Converter) Name() string             { return c.name }
func (c *Converter) NumInflows() int          { return 1 }
func (c *Converter) NumOutflows() int         { return 2 } // 0: outflow, 1: wasteflow
func (c *Converter) InflowStream(int) Stream  { return c.stream }
func (c *Converter) RecordHistory() bool      { return c.history }

func (c *Converter) OutflowStream(i int) Stream {
	if i == 1 {
		return "waste"
	}
	return c.stream
}

// Lossflow returns the energy lost in conversion (only meaningful for
// Efficiency <= 1; see struct doc comment).
func (c *Converter) Lossflow() FlowValue {
	if c.Efficiency > 1 {
		return 0
	}
	return (1 - c.Efficiency) * c.inflow.Achieved
}

func (c *Converter) TA() int64 {
	if c.reportInflowRequest || c.reportOutflowAchieved || c.reportWasteflowAchieved {
		return 0
	}
	return InfiniteDuration
}

func (c *Converter) Output() []PortValue {
	var outs []PortValue
	if c.reportInflowRequest {
		outs = append(outs, PortValue{PortID: OutportInflowRequest, Value: c.inflow.Requested})
	}
	if c.reportOutflowAchieved {
		outs = append(outs, PortValue{PortID: OutportOutflowAchieved + 0, Value: c.outflow.Achieved})
	}
	if c.reportWasteflowAchieved {
		outs = append(outs, PortValue{PortID: OutportOutflowAchieved + 1, Value: c.wasteflow.Achieved})
	}
	return outs
}

func (c *Converter) DeltaInt() {
	c.reportInflowRequest = false
	c.reportOutflowAchieved = false
	c.reportWasteflowAchieved = false
}

func (c *Converter) DeltaConf(xs []PortValue) error {
	return deltaConfDefault(c, xs)
}

func (c *Converter) DeltaExt(_ int64, xs []PortValue) error {
	for _, x := range xs {
		switch x.PortID {
		case InportOutflowRequest + 0:
			if err := c.applyOutflowRequest(x.Value); err != nil {
				return err
			}
		case InportInflowAchieved:
			if err := c.applyInflowAchieved(x.Value); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Converter) applyOutflowRequest(r FlowValue) error {
	outUpd := c.outflow.WithRequested(r)
	c.outflow = outUpd.Port
	if outUpd.SendAchieved {
		c.reportOutflowAchieved = true
	}

	inflowTarget := r / c.Efficiency
	inUpd := c.inflow.WithRequested(inflowTarget)
	c.inflow = inUpd.Port
	if inUpd.SendRequest {
		c.reportInflowRequest = true
	}
	return c.recompute()
}

func (c *Converter) applyInflowAchieved(a FlowValue) error {
	inUpd, err := c.inflow.WithAchieved(a)
	if err != nil {
		return err
	}
	c.inflow = inUpd.Port
	return c.recompute()
}

func (c *Converter) recordHistory(w *FlowWriter, t Time) {
	w.Record(c.name, RoleInflow, c.stream, t, c.inflow)
	w.Record(c.name, RoleOutflow, c.stream, t, c.outflow)
	w.Record(c.name, RoleWasteInflow, "waste", t, c.wasteflow)
}

// recompute re-derives outflow and wasteflow achieved from the current
// inflow achieved and efficiency (§4.3 relations).
func (c *Converter) recompute() error {
	outTarget := c.Efficiency * c.inflow.Achieved
	outUpd, err := c.outflow.WithAchieved(outTarget)
	if err != nil {
		return err
	}
	c.outflow = outUpd.Port
	if outUpd.SendAchieved {
		c.reportOutflowAchieved = true
	}

	loss := c.Lossflow()
	wasteReq := c.wasteflow.WithRequested(loss)
	c.wasteflow = wasteReq.Port
	wasteUpd, err := c.wasteflow.WithAchieved(loss)
	if err != nil {
		return err
	}
	c.wasteflow = wasteUpd.Port
	if wasteReq.SendRequest || wasteUpd.SendAchieved {
		c.reportWasteflowAchieved = true
	}
	return nil
}
