package dashboard

import (
	"testing"

	"github.com/cmlabs-hris/attendance-dashboard-go/internal/domain/metric"
	"github.com/stretchr/testify/assert"
)

func monthRecords(months ...string) []metric.Record {
	records := make([]metric.Record, 0, len(months))
	for _, m := range months {
		records = append(records, metric.Record{Group: "Sales", Month: m, Members: 1})
	}
	return records
}

func months(records []metric.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Month)
	}
	return out
}

func TestFilterByMonth_UnboundedIsIdentity(t *testing.T) {
	records := monthRecords("2025-03", "", "2025-01")

	got := FilterByMonth(records, metric.MonthRange{})

	assert.Equal(t, records, got)
}

func TestFilterByMonth_InclusiveBounds(t *testing.T) {
	records := monthRecords("2024-12", "2025-01", "2025-02", "2025-03", "2025-04")

	cases := []struct {
		name string
		rng  metric.MonthRange
		want []string
	}{
		{"both bounds", metric.MonthRange{From: "2025-01", To: "2025-03"}, []string{"2025-01", "2025-02", "2025-03"}},
		{"from only", metric.MonthRange{From: "2025-03"}, []string{"2025-03", "2025-04"}},
		{"to only", metric.MonthRange{To: "2025-01"}, []string{"2024-12", "2025-01"}},
		{"single month", metric.MonthRange{From: "2025-02", To: "2025-02"}, []string{"2025-02"}},
		{"trimmed bounds", metric.MonthRange{From: " 2025-04 ", To: "2025-04 "}, []string{"2025-04"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, months(FilterByMonth(records, c.rng)))
		})
	}
}

func TestFilterByMonth_InvertedRangeIsEmpty(t *testing.T) {
	records := monthRecords("2025-01", "2025-02", "2025-03")

	got := FilterByMonth(records, metric.MonthRange{From: "2025-03", To: "2025-01"})

	assert.Empty(t, got)
}

func TestFilterByMonth_ExcludesMissingMonth(t *testing.T) {
	records := monthRecords("", "  ", "2025-02")

	got := FilterByMonth(records, metric.MonthRange{From: "2000-01"})

	assert.Equal(t, []string{"2025-02"}, months(got))
}

func TestFilterByMonth_PreservesOrderAndIsIdempotent(t *testing.T) {
	records := monthRecords("2025-03", "2025-01", "2025-02", "2024-11")
	rng := metric.MonthRange{From: "2025-01", To: "2025-03"}

	once := FilterByMonth(records, rng)
	twice := FilterByMonth(once, rng)

	assert.Equal(t, []string{"2025-03", "2025-01", "2025-02"}, months(once))
	assert.Equal(t, once, twice)
}

func TestLatestMonths(t *testing.T) {
	a := monthRecords("2025-01", "2025-04", "2025-02")
	b := monthRecords("2025-03", "2025-04", "")

	assert.Equal(t, []string{"2025-02", "2025-03", "2025-04"}, latestMonths(3, a, b))
	assert.Equal(t, []string{"2025-01", "2025-02", "2025-03", "2025-04"}, latestMonths(10, a, b))
	assert.Empty(t, latestMonths(3))
}
