package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSupply_UncappedMatchesRequest(t *testing.T) {
	s := NewSupply("grid", "electricity", Unlimited, false)
	require.NoError(t, s.DeltaExt(0, []PortValue{{PortID: InportOutflowRequest, Value: 50}}))
	assert.Equal(t, FlowValue(50), s.outflow.Achieved)
}

func TestSupply_CapLimitsAchieved(t *testing.T) {
	s := NewSupply("genset", "electricity", 20, false)
	require.NoError(t, s.DeltaExt(0, []PortValue{{PortID: InportOutflowRequest, Value: 50}}))
	assert.Equal(t, FlowValue(20), s.outflow.Achieved)
	assert.Equal(t, FlowValue(50), s.outflow.Requested)
}
