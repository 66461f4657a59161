package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_AccumulatesAcrossOccurrences(t *testing.T) {
	series := []*PortSeries{{
		Component: "house",
		Role:      RoleLoadInflow,
		Stream:    "electricity",
		Records: []FlowRecord{
			{Time: Time{Real: 0}, Requested: 10, Achieved: 10},
			{Time: Time{Real: 10}, Requested: 10, Achieved: 4},
		},
	}}

	m := NewMetrics()
	m.Accumulate(series)
	m.Accumulate(series)

	assert.Equal(t, 2, m.Occurrences)

	cs, ok := m.ByComponent["house"]
	require.True(t, ok)
	assert.Equal(t, int64(20), cs.Uptime, "one occurrence's 10s uptime, doubled")
	assert.InDelta(t, 200, cs.TotalEnergy, Epsilon)

	key := StreamRoleKey{Stream: "electricity", Role: RoleLoadInflow}
	assert.InDelta(t, 200, m.ByStream[key], Epsilon)
}
