package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestStorage_UndisturbedDischarge reproduces the capacity=100kJ,
// max_charge=10kW, soc0=1.0 scenario driven by a pinned 5kW outflow request
// with inflow achieved permanently at 0.
func TestStorage_UndisturbedDischarge(t *testing.T) {
	s := NewStorage("battery", "electricity", 100, 10, 1.0, false)

	require.NoError(t, s.DeltaExt(0, []PortValue{{PortID: InportOutflowRequest, Value: 5}}))
	assert.Equal(t, FlowValue(5), s.outflow.Achieved)
	assert.Equal(t, FlowValue(5), s.inflow.Requested)
	assert.Equal(t, int64(0), s.TA())

	s.DeltaInt() // t=0 internal: clears the pending notification

	assert.Equal(t, int64(20), s.TA())
	s.DeltaInt() // t=20s internal: soc hits zero

	assert.Equal(t, FlowValue(0), s.SOC())
	assert.Equal(t, FlowValue(0), s.outflow.Achieved, "outflow must drop from 5 to 0 once soc is exhausted")
	assert.Equal(t, FlowValue(10), s.inflow.Requested, "empty storage requests the max charge rate")

	in, out, store := s.EnergyBalance()
	assert.InDelta(t, 0, in, Epsilon)
	assert.InDelta(t, 100, out, Epsilon)
	assert.InDelta(t, 0, in-out-store, Epsilon)
}

func TestStorage_FullChargeCapsInflowRequestToOutflowDemand(t *testing.T) {
	s := NewStorage("battery", "electricity", 100, 10, 1.0, false)
	require.NoError(t, s.DeltaExt(0, []PortValue{{PortID: InportOutflowRequest, Value: 3}}))
	assert.Equal(t, FlowValue(3), s.inflow.Requested)
}
