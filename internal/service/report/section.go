package report

import (
	"fmt"

	"github.com/cmlabs-hris/attendance-dashboard-go/internal/domain/dashboard"
	"github.com/cmlabs-hris/attendance-dashboard-go/internal/domain/metric"
	"github.com/cmlabs-hris/attendance-dashboard-go/internal/pkg/raster"
)

// snapshotSections builds chart sections from a dashboard snapshot
type snapshotSections struct {
	snapshot *dashboard.Snapshot
}

func newSnapshotSections(snapshot *dashboard.Snapshot) *snapshotSections {
	return &snapshotSections{snapshot: snapshot}
}

// Section returns the four metric panels of a group; a group with no
// records in any metric has no section.
func (s *snapshotSections) Section(index int, group string) (raster.Section, bool) {
	sec := raster.Section{Heading: fmt.Sprintf("%d. %s", index+1, group)}

	empty := true
	for _, kind := range metric.Kinds {
		records := s.snapshot.Series(group, kind)
		if len(records) > 0 {
			empty = false
		}
		sec.Panels = append(sec.Panels, panelFor(kind, records))
	}
	if empty {
		return raster.Section{}, false
	}
	return sec, true
}

func panelFor(kind metric.Kind, records []metric.Record) raster.Panel {
	labels := make([]string, 0, len(records))
	for _, rec := range records {
		labels = append(labels, rec.MonthLabel)
	}

	values := func(value func(metric.Record) float64) []float64 {
		out := make([]float64, 0, len(records))
		for _, rec := range records {
			out = append(out, value(rec))
		}
		return out
	}

	panel := raster.Panel{Title: kind.Title(), Labels: labels}
	switch kind {
	case metric.KindLeave:
		panel.Series = []raster.Series{
			{Name: "SL %", Values: values(func(r metric.Record) float64 { return r.SLPct })},
			{Name: "CL %", Values: values(func(r metric.Record) float64 { return r.CLPct })},
			{Name: "A %", Values: values(func(r metric.Record) float64 { return r.APct })},
		}
	case metric.KindLost:
		panel.Series = []raster.Series{{Name: "Hours", Values: values(metric.Record.HoursLost)}}
	default:
		panel.Series = []raster.Series{{Name: kind.Title(), Values: values(func(r metric.Record) float64 { return r.Value(kind) })}}
		panel.Max = 100
	}
	return panel
}
