package cmd

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/flowgrid/flowgrid/sim"
)

// WriteSeriesCSV emits one row per FlowRecord across every series, columns
// (series_id, component, role, stream, time, requested, achieved).
func WriteSeriesCSV(w io.Writer, series []*sim.PortSeries) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"series_id", "component", "role", "stream", "time", "requested", "achieved"}); err != nil {
		return err
	}
	for _, s := range series {
		for _, rec := range s.Records {
			row := []string{
				strconv.Itoa(s.ID),
				s.Component,
				s.Role.String(),
				string(s.Stream),
				strconv.FormatInt(rec.Time.Real, 10),
				strconv.FormatFloat(rec.Requested, 'g', -1, 64),
				strconv.FormatFloat(rec.Achieved, 'g', -1, 64),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	return cw.Error()
}

// WriteStatsCSV emits one row per component's aggregated ComponentStats.
func WriteStatsCSV(w io.Writer, stats []sim.ComponentStats) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"component", "uptime_s", "downtime_s", "max_downtime_s", "load_not_served", "total_energy"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, s := range stats {
		row := []string{
			s.Component,
			strconv.FormatInt(s.Uptime, 10),
			strconv.FormatInt(s.Downtime, 10),
			strconv.FormatInt(s.MaxDowntime, 10),
			strconv.FormatFloat(s.LoadNotServed, 'g', -1, 64),
			strconv.FormatFloat(s.TotalEnergy, 'g', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return cw.Error()
}
