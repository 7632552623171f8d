package dashboard

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-dashboard-go/internal/domain/metric"
)

const defaultCacheEntries = 2048

// MonthLabel turns "2025-03" into "Mar 25"; anything unparsable is returned as is
func MonthLabel(month string) string {
	month = strings.TrimSpace(month)
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return month
	}
	return t.Format("Jan 06")
}

// DeriveSeries selects one group's records, labels their months and sorts
// them by month then group. The input is never mutated.
func DeriveSeries(records []metric.Record, group string) []metric.Record {
	group = strings.TrimSpace(group)
	out := make([]metric.Record, 0)
	for _, rec := range records {
		if strings.TrimSpace(rec.Group) != group {
			continue
		}
		rec.MonthLabel = MonthLabel(rec.Month)
		out = append(out, rec)
	}
	sort.SliceStable(out, func(i, j int) bool {
		mi, mj := strings.TrimSpace(out[i].Month), strings.TrimSpace(out[j].Month)
		if mi != mj {
			return mi < mj
		}
		return out[i].Group < out[j].Group
	})
	return out
}

type cacheKey struct {
	group   string
	kind    metric.Kind
	version uint64
	rng     metric.MonthRange
}

// ChartCache memoizes DeriveSeries per (group, metric, dataset version, range).
// A new dataset version or range simply misses; the map is dropped whole
// when it grows past its bound.
type ChartCache struct {
	mu         sync.Mutex
	entries    map[cacheKey][]metric.Record
	maxEntries int
	hits       uint64
	misses     uint64
}

func NewChartCache(maxEntries int) *ChartCache {
	if maxEntries <= 0 {
		maxEntries = defaultCacheEntries
	}
	return &ChartCache{
		entries:    make(map[cacheKey][]metric.Record),
		maxEntries: maxEntries,
	}
}

// Series returns the derived series, computing it once per key
func (c *ChartCache) Series(kind metric.Kind, version uint64, rng metric.MonthRange, group string, records []metric.Record) []metric.Record {
	key := cacheKey{
		group:   strings.TrimSpace(group),
		kind:    kind,
		version: version,
		rng:     rng.Normalize(),
	}

	c.mu.Lock()
	if series, ok := c.entries[key]; ok {
		c.hits++
		c.mu.Unlock()
		return series
	}
	c.misses++
	c.mu.Unlock()

	series := DeriveSeries(records, group)

	c.mu.Lock()
	if len(c.entries) >= c.maxEntries {
		c.entries = make(map[cacheKey][]metric.Record)
	}
	c.entries[key] = series
	c.mu.Unlock()

	return series
}

// Stats returns hit and miss counters
func (c *ChartCache) Stats() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

func (c *ChartCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
