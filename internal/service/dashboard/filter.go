package dashboard

import (
	"sort"
	"strings"

	"github.com/cmlabs-hris/attendance-dashboard-go/internal/domain/metric"
	"github.com/samber/lo"
)

// FilterByMonth keeps records whose month lies in the inclusive range.
// An unbounded range returns the input unchanged. Records without a month
// never pass a bounded range. Order is preserved, nothing is sorted.
func FilterByMonth(records []metric.Record, r metric.MonthRange) []metric.Record {
	if r.IsUnbounded() {
		return records
	}
	return lo.Filter(records, func(rec metric.Record, _ int) bool {
		return r.Contains(rec.Month)
	})
}

// latestMonth is the string-max month of a record set, "" when empty
func latestMonth(records []metric.Record) string {
	latest := ""
	for _, rec := range records {
		if m := strings.TrimSpace(rec.Month); m > latest {
			latest = m
		}
	}
	return latest
}

// latestMonths returns the last n distinct months across the datasets, ascending
func latestMonths(n int, datasets ...[]metric.Record) []string {
	seen := make(map[string]struct{})
	for _, records := range datasets {
		for _, rec := range records {
			if m := strings.TrimSpace(rec.Month); m != "" {
				seen[m] = struct{}{}
			}
		}
	}
	months := lo.Keys(seen)
	sort.Strings(months)
	if len(months) > n {
		months = months[len(months)-n:]
	}
	return months
}
