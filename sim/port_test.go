package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPort_WithRequested_ClampsAchieved(t *testing.T) {
	p := Port{Requested: 10, Achieved: 8}
	upd := p.WithRequested(5)
	assert.Equal(t, FlowValue(5), upd.Port.Requested)
	assert.Equal(t, FlowValue(5), upd.Port.Achieved)
	assert.True(t, upd.SendRequest)
	assert.True(t, upd.SendAchieved)
}

func TestPort_WithRequested_NoChangeNoSend(t *testing.T) {
	p := Port{Requested: 10, Achieved: 10}
	upd := p.WithRequested(10)
	assert.False(t, upd.SendRequest)
	assert.False(t, upd.SendAchieved)
}

func TestPort_WithAchieved_RejectsOverRequest(t *testing.T) {
	p := Port{Requested: 5, Achieved: 0}
	_, err := p.WithAchieved(6)
	require.Error(t, err)
	var invariant *InvariantViolation
	assert.ErrorAs(t, err, &invariant)
}

func TestPort_WithAchieved_AllowsEpsilonSlack(t *testing.T) {
	p := Port{Requested: 5, Achieved: 0}
	upd, err := p.WithAchieved(5 + Epsilon/2)
	require.NoError(t, err)
	assert.True(t, upd.SendAchieved)
}

func TestPort_WithRequestedAndAvailable(t *testing.T) {
	p := Port{Requested: 0, Achieved: 0}
	upd := p.WithRequestedAndAvailable(10, 6)
	assert.Equal(t, FlowValue(10), upd.Port.Requested)
	assert.Equal(t, FlowValue(6), upd.Port.Achieved)
	assert.True(t, upd.SendRequest)
	assert.True(t, upd.SendAchieved)
}
