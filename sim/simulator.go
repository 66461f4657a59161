package sim

import (
	"container/heap"

	"github.com/sirupsen/logrus"
)

// Simulator drives a Network forward over super-dense time until the queue
// empties, goes infinite, or scenarioDuration is reached (§4.11).
type Simulator struct {
	network  *Network
	duration int64

	queue   eventQueue
	entries map[Component]*scheduledEvent
	seq     int64

	// routes maps each component to the couplings whose "from" side is
	// that component, so a fired Output() can be routed without scanning
	// every coupling on every tick.
	routes map[Component][]coupling

	// lastReal tracks, per component, the real-time instant at which it
	// was last given a transition; it is how DeltaExt's elapsed argument
	// is derived for components that were not also imminent this tick.
	lastReal map[Component]int64

	writer *FlowWriter

	// nonAdvanceLimit bounds how many consecutive ticks may share the same
	// real-time instant before the run aborts as a divergence (§4.11 step
	// 5); it is set to 10_000 * len(elements) at construction.
	nonAdvanceLimit int
}

// NewSimulator constructs a Simulator over network, recording port history
// through writer, terminating once no event remains before scenarioDuration.
func NewSimulator(network *Network, scenarioDuration int64, writer *FlowWriter) *Simulator {
	s := &Simulator{
		network:         network,
		duration:        scenarioDuration,
		entries:         make(map[Component]*scheduledEvent),
		routes:          make(map[Component][]coupling),
		lastReal:        make(map[Component]int64),
		writer:          writer,
		nonAdvanceLimit: 10_000 * max(1, len(network.Components)),
	}
	for _, c := range network.Couplings {
		s.routes[c.from] = append(s.routes[c.from], c)
	}
	for _, comp := range network.Components {
		s.lastReal[comp] = 0
		s.schedule(comp, Time{Real: 0})
	}
	return s
}

func (s *Simulator) schedule(c Component, now Time) {
	dt := c.TA()
	var at Time
	if dt == InfiniteDuration {
		at = InfiniteTime
	} else if dt == 0 {
		at = now.NextLogical()
	} else {
		at = now.AtReal(dt)
	}
	if ev, ok := s.entries[c]; ok {
		ev.time = at
		ev.seq = s.nextSeq()
		heap.Fix(&s.queue, ev.index)
		return
	}
	ev := &scheduledEvent{time: at, seq: s.nextSeq(), component: c}
	s.entries[c] = ev
	heap.Push(&s.queue, ev)
}

func (s *Simulator) nextSeq() int64 {
	s.seq++
	return s.seq
}

// Run drives the simulator to completion, returning a Divergence error if
// the non-advance budget is exceeded.
func (s *Simulator) Run() error {
	var lastReal int64 = -1
	nonAdvance := 0

	for s.queue.Len() > 0 {
		next := s.queue[0]
		if next.time.IsInfinite() || (s.duration >= 0 && next.time.Real > s.duration) {
			break
		}

		t := next.time
		if t.Real == lastReal {
			nonAdvance++
			if nonAdvance > s.nonAdvanceLimit {
				logrus.Warnf("[tick %s] non-advance budget exceeded after %d iterations", t, nonAdvance)
				return &Divergence{At: t, Iterations: nonAdvance, LastState: s.describeImminent(t)}
			}
		} else {
			nonAdvance = 0
			lastReal = t.Real
		}

		imminent := s.popImminent(t)
		logrus.Debugf("[tick %s] %d imminent component(s)", t, len(imminent))
		inbound := make(map[Component][]PortValue)

		for _, c := range imminent {
			for _, pv := range c.Output() {
				for _, route := range s.routes[c] {
					if route.fromID != pv.PortID {
						continue
					}
					inbound[route.to] = append(inbound[route.to], PortValue{PortID: route.toID, Value: pv.Value})
				}
			}
		}

		imminentSet := make(map[Component]bool, len(imminent))
		for _, c := range imminent {
			imminentSet[c] = true
		}

		touched := make(map[Component]bool)
		for _, c := range imminent {
			touched[c] = true
		}
		for c := range inbound {
			touched[c] = true
		}

		for c := range touched {
			xs := inbound[c]
			var err error
			switch {
			case imminentSet[c] && len(xs) > 0:
				logrus.Debugf("[tick %s] %s: DeltaConf (%d inbound)", t, c.Name(), len(xs))
				err = c.DeltaConf(xs)
			case imminentSet[c]:
				logrus.Debugf("[tick %s] %s: DeltaInt", t, c.Name())
				c.DeltaInt()
			default:
				logrus.Debugf("[tick %s] %s: DeltaExt (elapsed %d, %d inbound)", t, c.Name(), t.Real-s.lastReal[c], len(xs))
				err = c.DeltaExt(t.Real-s.lastReal[c], xs)
			}
			if err != nil {
				return err
			}
			s.lastReal[c] = t.Real
			if s.writer != nil {
				s.writer.recordFrom(c, t)
			}
		}
		for c := range touched {
			s.schedule(c, t)
		}
	}
	if s.writer != nil {
		s.writer.Finalize(s.duration)
	}
	logrus.Debugf("simulation ended at duration %d", s.duration)
	return nil
}

// popImminent removes and returns every component whose scheduled time
// equals t (§4.11 step 1).
func (s *Simulator) popImminent(t Time) []Component {
	var out []Component
	for s.queue.Len() > 0 && s.queue[0].time.Equal(t) {
		ev := heap.Pop(&s.queue).(*scheduledEvent)
		delete(s.entries, ev.component)
		out = append(out, ev.component)
	}
	return out
}

func (s *Simulator) describeImminent(t Time) string {
	return "stalled at " + t.String()
}
