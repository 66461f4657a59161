package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_RequestsScheduleInOrder(t *testing.T) {
	l := NewLoad("house", "electricity", []ScheduleEntry{
		{Time: 0, Value: 3},
		{Time: 10, Value: 5},
	}, false)

	assert.Equal(t, int64(0), l.TA())
	l.DeltaInt() // consumes the t=0 schedule entry, queues the request notification
	assert.Equal(t, FlowValue(3), l.inflow.Requested)
	assert.Equal(t, int64(0), l.TA())
	l.DeltaInt() // clears the notification

	assert.Equal(t, int64(10), l.TA())
	l.DeltaInt() // consumes the t=10 schedule entry
	assert.Equal(t, FlowValue(5), l.inflow.Requested)
	assert.Equal(t, int64(0), l.TA())
	l.DeltaInt() // clears the notification

	assert.Equal(t, InfiniteDuration, l.TA())
}

func TestLoad_TracksUnmetDemand(t *testing.T) {
	l := NewLoad("house", "electricity", []ScheduleEntry{{Time: 0, Value: 10}}, false)
	l.DeltaInt()
	require.NoError(t, l.DeltaExt(0, []PortValue{{PortID: InportInflowAchieved, Value: 4}}))
	assert.InDelta(t, 6, l.Unmet(), Epsilon)
}

func TestUncontrolledSource_AchievedCapsToAvailable(t *testing.T) {
	u := NewUncontrolledSource("solar", "electricity", []ScheduleEntry{
		{Time: 0, Value: 2},
		{Time: 10, Value: 20},
	}, false)

	require.NoError(t, u.DeltaExt(0, []PortValue{{PortID: InportOutflowRequest, Value: 10}}))

	assert.Equal(t, int64(0), u.TA())
	u.DeltaInt() // t=0 schedule boundary: available=2
	assert.InDelta(t, 2, u.outflow.Achieved, Epsilon)
	assert.Equal(t, int64(0), u.TA())
	u.DeltaInt() // clears the achieved-report notification

	assert.Equal(t, int64(10), u.TA())
	u.DeltaInt() // t=10 schedule boundary: available=20, capped by the 10 requested
	assert.InDelta(t, 10, u.outflow.Achieved, Epsilon)
}
