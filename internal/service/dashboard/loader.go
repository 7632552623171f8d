package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cmlabs-hris/attendance-dashboard-go/internal/domain/dashboard"
	"github.com/cmlabs-hris/attendance-dashboard-go/internal/domain/metric"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// DefaultFetchLimit bounds a fetch that keeps running after its caller
// was answered with a pending dataset.
const DefaultFetchLimit = 2 * time.Minute

type loaderKey struct {
	kind      metric.Kind
	dimension metric.Dimension
}

func (k loaderKey) String() string {
	return string(k.kind) + "/" + string(k.dimension)
}

type cachedDataset struct {
	records   []metric.Record
	version   uint64
	fetchedAt time.Time
}

// Loader fetches the four metric datasets of a dimension concurrently and
// keeps fresh results for ttl. Every successful fetch gets a new version.
//
// A caller waits at most timeout for a dataset and then sees it pending.
// The fetch itself continues detached from the caller, bounded by the fetch
// limit, and its result lands in the cache for the next Load. Concurrent
// callers for the same (metric, dimension) share one in-flight fetch.
type Loader struct {
	source     metric.Source
	ttl        time.Duration
	timeout    time.Duration
	fetchLimit time.Duration
	now        func() time.Time

	inflight singleflight.Group

	mu      sync.RWMutex
	entries map[loaderKey]cachedDataset
	version atomic.Uint64
}

func NewLoader(source metric.Source, ttl, timeout time.Duration) *Loader {
	return &Loader{
		source:     source,
		ttl:        ttl,
		timeout:    timeout,
		fetchLimit: DefaultFetchLimit,
		now:        time.Now,
		entries:    make(map[loaderKey]cachedDataset),
	}
}

// SetFetchLimit changes how long a detached fetch may run; zero or less keeps the current limit
func (l *Loader) SetFetchLimit(limit time.Duration) {
	if limit > 0 {
		l.fetchLimit = limit
	}
}

// Load returns the joined datasets; failures are isolated per metric
func (l *Loader) Load(ctx context.Context, dimension metric.Dimension) Joined {
	return l.load(ctx, dimension, false)
}

// Refresh refetches every metric of the dimension regardless of freshness.
// It waits for each fetch to finish instead of reporting it pending.
func (l *Loader) Refresh(ctx context.Context, dimension metric.Dimension) error {
	joined := l.load(ctx, dimension, true)

	var errs []error
	for _, d := range joined.All() {
		if d.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", d.Kind, d.Err))
		}
	}
	return errors.Join(errs...)
}

func (l *Loader) load(ctx context.Context, dimension metric.Dimension, force bool) Joined {
	results := make([]DatasetResult, len(metric.Kinds))

	// Each goroutine records its own failure; none cancels the others.
	var g errgroup.Group
	for i, kind := range metric.Kinds {
		g.Go(func() error {
			results[i] = l.loadOne(ctx, kind, dimension, force)
			return nil
		})
	}
	_ = g.Wait()

	return Join(results[0], results[1], results[2], results[3])
}

func (l *Loader) cached(key loaderKey) (cachedDataset, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	entry, ok := l.entries[key]
	if !ok || l.now().Sub(entry.fetchedAt) >= l.ttl {
		return cachedDataset{}, false
	}
	return entry, true
}

func (l *Loader) loadOne(ctx context.Context, kind metric.Kind, dimension metric.Dimension, force bool) DatasetResult {
	key := loaderKey{kind: kind, dimension: dimension}

	if !force {
		if entry, ok := l.cached(key); ok {
			return DatasetResult{Kind: kind, State: dashboard.DatasetLoaded, Records: entry.records, Version: entry.version}
		}
	}

	done := l.inflight.DoChan(key.String(), func() (interface{}, error) {
		return l.fetch(context.WithoutCancel(ctx), key)
	})

	var timeout <-chan time.Time
	if !force && l.timeout > 0 {
		timer := time.NewTimer(l.timeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case res := <-done:
		if res.Err != nil {
			return DatasetResult{Kind: kind, State: dashboard.DatasetFailed, Err: res.Err}
		}
		entry := res.Val.(cachedDataset)
		return DatasetResult{Kind: kind, State: dashboard.DatasetLoaded, Records: entry.records, Version: entry.version}

	case <-timeout:
		slog.Warn("Metric fetch still pending", "metric", kind, "dimension", dimension, "timeout", l.timeout)
		return DatasetResult{Kind: kind, State: dashboard.DatasetPending}

	case <-ctx.Done():
		return DatasetResult{Kind: kind, State: dashboard.DatasetFailed, Err: ctx.Err()}
	}
}

// fetch runs one source call under the fetch limit and records the outcome.
// A failure drops the cached entry so stale data is never served.
func (l *Loader) fetch(ctx context.Context, key loaderKey) (cachedDataset, error) {
	ctx, cancel := context.WithTimeout(ctx, l.fetchLimit)
	defer cancel()

	records, err := l.source.Fetch(ctx, key.kind, key.dimension)
	if err != nil {
		l.mu.Lock()
		delete(l.entries, key)
		l.mu.Unlock()

		slog.Error("Metric fetch failed", "metric", key.kind, "dimension", key.dimension, "error", err)
		return cachedDataset{}, err
	}
	if records == nil {
		records = []metric.Record{}
	}

	entry := cachedDataset{records: records, version: l.version.Add(1), fetchedAt: l.now()}
	l.mu.Lock()
	l.entries[key] = entry
	l.mu.Unlock()

	return entry, nil
}
