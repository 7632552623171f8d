package dashboard

import (
	"sort"
	"strings"

	"github.com/cmlabs-hris/attendance-dashboard-go/internal/domain/metric"
	"github.com/samber/lo"
)

// GroupIndex returns the sorted, de-duplicated, trimmed group names found
// in any of the datasets. Empty names are dropped; identity is case sensitive.
func GroupIndex(datasets ...[]metric.Record) []string {
	groups := lo.Uniq(lo.FilterMap(lo.Flatten(datasets), func(rec metric.Record, _ int) (string, bool) {
		g := strings.TrimSpace(rec.Group)
		return g, g != ""
	}))
	sort.Strings(groups)
	return groups
}
