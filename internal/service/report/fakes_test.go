package report

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/cmlabs-hris/attendance-dashboard-go/internal/domain/dashboard"
	"github.com/cmlabs-hris/attendance-dashboard-go/internal/domain/metric"
	"github.com/cmlabs-hris/attendance-dashboard-go/internal/pkg/raster"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/require"
)

// mapSections serves fixed sections; missing groups have none
type mapSections map[string]raster.Section

func (m mapSections) Section(index int, group string) (raster.Section, bool) {
	sec, ok := m[group]
	return sec, ok
}

func simpleSection(group string) raster.Section {
	return raster.Section{
		Heading: group,
		Panels: []raster.Panel{{
			Title:  "On Time %",
			Labels: []string{"Jan 25"},
			Series: []raster.Series{{Name: "On Time %", Values: []float64{80}}},
			Max:    100,
		}},
	}
}

// failingRenderer fails on the named heading and renders everything else
type failingRenderer struct {
	failOn string
	calls  []string
}

func (f *failingRenderer) RenderPNG(sec raster.Section, w io.Writer) error {
	f.calls = append(f.calls, sec.Heading)
	if sec.Heading == f.failOn {
		return errors.New("canvas exhausted")
	}
	return raster.NewRenderer(raster.MinScale).RenderPNG(sec, w)
}

// snapshotService serves a fixed snapshot
type snapshotService struct {
	dashboard.DashboardService
	snapshot *dashboard.Snapshot
}

func (s *snapshotService) Snapshot(ctx context.Context) (*dashboard.Snapshot, error) {
	return s.snapshot, nil
}

func testSnapshot(groups ...string) *dashboard.Snapshot {
	series := make(map[string][]metric.Record)
	var filtered []metric.Record
	for _, g := range groups {
		rec := metric.Record{Group: g, Month: "2025-01", MonthLabel: "Jan 25", Members: 10, OnTimePct: 80, CompletionPct: 70, Lost: 3, SLPct: 50, CLPct: 30, APct: 20}
		series[g] = []metric.Record{rec}
		filtered = append(filtered, rec)
	}

	return &dashboard.Snapshot{
		Filter: dashboard.FilterState{Dimension: metric.DimensionLocation},
		Groups: groups,
		Filtered: map[metric.Kind][]metric.Record{
			metric.KindOnTime:     filtered,
			metric.KindCompletion: filtered,
			metric.KindLost:       filtered,
			metric.KindLeave:      filtered,
		},
		Series: func(group string, kind metric.Kind) []metric.Record {
			return series[group]
		},
	}
}

func userContext(t *testing.T, userID string) context.Context {
	t.Helper()
	ja := jwtauth.New("HS256", []byte("test-secret"), nil)
	token, _, err := ja.Encode(map[string]interface{}{"user_id": userID})
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
}
