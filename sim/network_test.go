package sim

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func supplySpec(id string, cap_ FlowValue) ComponentSpec {
	return ComponentSpec{ID: id, Build: func() Component { return NewSupply(id, "electricity", cap_, true) }}
}

func loadSpec(id string, schedule []ScheduleEntry) ComponentSpec {
	return ComponentSpec{ID: id, Build: func() Component { return NewLoad(id, "electricity", schedule, true) }}
}

func TestBuildNetwork_UnknownComponentIsReferenceError(t *testing.T) {
	specs := map[string]ComponentSpec{"source": supplySpec("source", Unlimited)}
	connections := []Connection{{FromComponent: "source", FromPort: 0, ToComponent: "missing", ToPort: 0, Stream: "electricity"}}

	_, err := BuildNetwork(specs, connections, rand.New(rand.NewSource(1)))
	require.Error(t, err)
	var refErr *ReferenceError
	require.ErrorAs(t, err, &refErr)
}

func TestBuildNetwork_StreamMismatchIsRejected(t *testing.T) {
	specs := map[string]ComponentSpec{
		"source": supplySpec("source", Unlimited),
		"sink":   loadSpec("sink", []ScheduleEntry{{Time: 0, Value: 5}}),
	}
	connections := []Connection{{FromComponent: "source", FromPort: 0, ToComponent: "sink", ToPort: 0, Stream: "heat"}}

	_, err := BuildNetwork(specs, connections, rand.New(rand.NewSource(1)))
	require.Error(t, err)
	var mismatch *StreamMismatchError
	require.ErrorAs(t, err, &mismatch)
}

func TestBuildNetwork_ForcedFragilityWrapsWithZeroLimitPipe(t *testing.T) {
	specs := map[string]ComponentSpec{
		"source": {ID: "source", Build: func() Component { return NewSupply("source", "electricity", Unlimited, false) }, FailureProbabilities: []float64{1.0}},
		"sink":   loadSpec("sink", []ScheduleEntry{{Time: 0, Value: 5}}),
	}
	connections := []Connection{{FromComponent: "source", FromPort: 0, ToComponent: "sink", ToPort: 0, Stream: "electricity"}}

	net, err := BuildNetwork(specs, connections, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	writer := NewFlowWriter()
	s := NewSimulator(net, 5, writer)
	require.NoError(t, s.Run())

	for _, series := range writer.Series() {
		if series.Component == "sink" {
			last := series.Records[len(series.Records)-1]
			assert.Equal(t, FlowValue(0), last.Achieved, "a force-failed source delivers nothing downstream")
		}
	}
}

func TestBuildNetwork_ReliabilityScheduleGatesConnection(t *testing.T) {
	specs := map[string]ComponentSpec{
		"source": {ID: "source", Build: func() Component { return NewSupply("source", "electricity", Unlimited, false) },
			ReliabilitySchedule: []TimeState{{Time: 5, State: false}}},
		"sink": loadSpec("sink", []ScheduleEntry{{Time: 0, Value: 5}}),
	}
	connections := []Connection{{FromComponent: "source", FromPort: 0, ToComponent: "sink", ToPort: 0, Stream: "electricity"}}

	net, err := BuildNetwork(specs, connections, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	writer := NewFlowWriter()
	s := NewSimulator(net, 10, writer)
	require.NoError(t, s.Run())

	var sinkSeries *PortSeries
	for _, series := range writer.Series() {
		if series.Component == "sink" {
			sinkSeries = series
		}
	}
	require.NotNil(t, sinkSeries)

	var atStart, atEnd FlowRecord
	for _, rec := range sinkSeries.Records {
		if rec.Time.Real == 0 {
			atStart = rec
		}
		if rec.Time.Real == 10 {
			atEnd = rec
		}
	}
	assert.Equal(t, FlowValue(5), atStart.Achieved, "fed at full request before the outage")
	assert.Equal(t, FlowValue(0), atEnd.Achieved, "gated off after the t=5 outage begins")
}
