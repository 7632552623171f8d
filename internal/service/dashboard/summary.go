package dashboard

import (
	"strings"

	"github.com/cmlabs-hris/attendance-dashboard-go/internal/domain/dashboard"
	"github.com/cmlabs-hris/attendance-dashboard-go/internal/domain/metric"
)

// Summarize computes member weighted averages for the latest month in range.
// Inputs must already be month filtered.
//
// The reference dataset is the first non-empty of onTime, completion, lost;
// its latest month and its members at that month give LatestMonth and
// TotalMembers. Each average is taken over the records at that metric's own
// latest month, so a metric lagging behind the reference is still averaged
// over its newest data. An average is 0 when its member sum is 0.
func Summarize(onTime, completion, lost []metric.Record) dashboard.SummaryStatistics {
	reference := onTime
	switch {
	case len(onTime) > 0:
	case len(completion) > 0:
		reference = completion
	default:
		reference = lost
	}

	latest := latestMonth(reference)
	if latest == "" {
		return dashboard.SummaryStatistics{}
	}

	totalMembers := 0
	for _, rec := range atMonth(reference, latest) {
		totalMembers += rec.Members
	}

	lostAtLatest := atLatest(lost)
	return dashboard.SummaryStatistics{
		TotalMembers:  totalMembers,
		AvgOnTime:     weightedAverage(atLatest(onTime), func(r metric.Record) float64 { return r.OnTimePct }),
		AvgCompletion: weightedAverage(atLatest(completion), func(r metric.Record) float64 { return r.CompletionPct }),
		AvgLost:       weightedAverage(lostAtLatest, func(r metric.Record) float64 { return r.LostPct }),
		AvgLostHours:  weightedAverage(lostAtLatest, metric.Record.HoursLost),
		LatestMonth:   latest,
	}
}

// SummarizeLeave applies the same weighting to the leave split, using the
// leave dataset's own latest month.
func SummarizeLeave(leave []metric.Record) dashboard.LeaveSummary {
	latest := latestMonth(leave)
	if latest == "" {
		return dashboard.LeaveSummary{}
	}
	records := atLatest(leave)
	return dashboard.LeaveSummary{
		AvgSL:       weightedAverage(records, func(r metric.Record) float64 { return r.SLPct }),
		AvgCL:       weightedAverage(records, func(r metric.Record) float64 { return r.CLPct }),
		AvgA:        weightedAverage(records, func(r metric.Record) float64 { return r.APct }),
		LatestMonth: latest,
	}
}

func atLatest(records []metric.Record) []metric.Record {
	return atMonth(records, latestMonth(records))
}

func atMonth(records []metric.Record, month string) []metric.Record {
	var out []metric.Record
	for _, rec := range records {
		if strings.TrimSpace(rec.Month) == month {
			out = append(out, rec)
		}
	}
	return out
}

// weightedAverage is Σ(value×members)/Σ(members), floored to 0 without members
func weightedAverage(records []metric.Record, value func(metric.Record) float64) float64 {
	var sum float64
	members := 0
	for _, rec := range records {
		sum += value(rec) * float64(rec.Members)
		members += rec.Members
	}
	if members == 0 {
		return 0
	}
	return sum / float64(members)
}
