package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowgrid/flowgrid/sim"
)

func TestWriteSeriesCSV_EmitsOneRowPerRecord(t *testing.T) {
	series := []*sim.PortSeries{{
		ID:        0,
		Component: "house",
		Role:      sim.RoleLoadInflow,
		Stream:    "electricity",
		Records: []sim.FlowRecord{
			{Time: sim.Time{Real: 0}, Requested: 5, Achieved: 5},
			{Time: sim.Time{Real: 10}, Requested: 5, Achieved: 2},
		},
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteSeriesCSV(&buf, series))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3) // header + 2 records
	assert.Equal(t, "series_id,component,role,stream,time,requested,achieved", lines[0])
	assert.Equal(t, "0,house,load_inflow,electricity,10,5,2", lines[2])
}

func TestWriteStatsCSV_EmitsOneRowPerComponent(t *testing.T) {
	stats := []sim.ComponentStats{
		{Component: "house", Uptime: 20, Downtime: 10, MaxDowntime: 10, LoadNotServed: 60, TotalEnergy: 240},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteStatsCSV(&buf, stats))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "component,uptime_s,downtime_s,max_downtime_s,load_not_served,total_energy", lines[0])
	assert.Equal(t, "house,20,10,10,60,240", lines[1])
}
