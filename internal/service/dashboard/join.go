package dashboard

import (
	"github.com/cmlabs-hris/attendance-dashboard-go/internal/domain/dashboard"
	"github.com/cmlabs-hris/attendance-dashboard-go/internal/domain/metric"
)

// DatasetResult is the outcome of fetching one metric
type DatasetResult struct {
	Kind    metric.Kind
	State   dashboard.DatasetState
	Records []metric.Record
	Err     error
	Version uint64
}

// Data returns the records of a loaded dataset; pending and failed ones are empty
func (d DatasetResult) Data() []metric.Record {
	if d.State != dashboard.DatasetLoaded {
		return nil
	}
	return d.Records
}

// Joined combines the four independently loaded datasets
type Joined struct {
	OnTime     DatasetResult
	Completion DatasetResult
	Lost       DatasetResult
	Leave      DatasetResult
	Status     dashboard.Status
	AnyError   bool
	NoData     bool
}

// Join derives the combined status of the four datasets.
//
//	ready   - no fetch failed or pending, some data
//	partial - some data, but another fetch failed or is pending
//	error   - no data and at least one fetch failed
//	empty   - no data and nothing failed
func Join(onTime, completion, lost, leave DatasetResult) Joined {
	j := Joined{OnTime: onTime, Completion: completion, Lost: lost, Leave: leave}

	hasData, failed, pending := false, 0, 0
	for _, d := range j.All() {
		switch d.State {
		case dashboard.DatasetFailed:
			failed++
		case dashboard.DatasetPending:
			pending++
		default:
			if len(d.Records) > 0 {
				hasData = true
			}
		}
	}

	j.AnyError = failed > 0
	j.NoData = !hasData
	switch {
	case hasData && failed == 0 && pending == 0:
		j.Status = dashboard.StatusReady
	case hasData:
		j.Status = dashboard.StatusPartial
	case failed > 0:
		j.Status = dashboard.StatusError
	default:
		j.Status = dashboard.StatusEmpty
	}
	return j
}

// All returns the datasets in render order
func (j Joined) All() []DatasetResult {
	return []DatasetResult{j.OnTime, j.Completion, j.Lost, j.Leave}
}

// Get returns the dataset of a metric
func (j Joined) Get(kind metric.Kind) DatasetResult {
	switch kind {
	case metric.KindOnTime:
		return j.OnTime
	case metric.KindCompletion:
		return j.Completion
	case metric.KindLost:
		return j.Lost
	default:
		return j.Leave
	}
}

// Filter narrows every loaded dataset to the month range and re-derives the status
func (j Joined) Filter(rng metric.MonthRange) Joined {
	narrow := func(d DatasetResult) DatasetResult {
		d.Records = FilterByMonth(d.Data(), rng)
		return d
	}
	return Join(narrow(j.OnTime), narrow(j.Completion), narrow(j.Lost), narrow(j.Leave))
}

// Statuses describes each dataset for the view
func (j Joined) Statuses() []dashboard.DatasetStatus {
	out := make([]dashboard.DatasetStatus, 0, 4)
	for _, d := range j.All() {
		s := dashboard.DatasetStatus{
			Metric:  d.Kind,
			State:   d.State,
			Records: len(d.Data()),
			Version: d.Version,
		}
		if d.Err != nil {
			s.Error = d.Err.Error()
		}
		out = append(out, s)
	}
	return out
}
