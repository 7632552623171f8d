package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-dashboard-go/internal/domain/dashboard"
	"github.com/cmlabs-hris/attendance-dashboard-go/internal/domain/metric"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoader_IsolatesFailures(t *testing.T) {
	src := newFakeSource()
	src.records[metric.KindOnTime] = []metric.Record{{Group: "A", Month: "2025-01", Members: 1}}
	src.errs[metric.KindCompletion] = errors.New("upstream down")

	joined := NewLoader(src, time.Minute, time.Second).Load(context.Background(), metric.DimensionCompany)

	assert.Equal(t, dashboard.DatasetLoaded, joined.OnTime.State)
	assert.Len(t, joined.OnTime.Data(), 1)
	assert.Equal(t, dashboard.DatasetFailed, joined.Completion.State)
	assert.EqualError(t, joined.Completion.Err, "upstream down")
	assert.Equal(t, dashboard.DatasetLoaded, joined.Lost.State)
	assert.NotNil(t, joined.Lost.Records)
	assert.Equal(t, dashboard.StatusPartial, joined.Status)
	assert.Contains(t, src.dims, metric.DimensionCompany)
}

func TestLoader_CachesWithinTTL(t *testing.T) {
	src := newFakeSource()
	src.records[metric.KindOnTime] = []metric.Record{{Group: "A", Month: "2025-01"}}
	loader := NewLoader(src, time.Minute, time.Second)

	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	loader.now = func() time.Time { return now }

	first := loader.Load(context.Background(), metric.DimensionFunction)
	second := loader.Load(context.Background(), metric.DimensionFunction)

	assert.Equal(t, 1, src.callCount(metric.KindOnTime))
	assert.Equal(t, first.OnTime.Version, second.OnTime.Version)

	now = now.Add(2 * time.Minute)
	third := loader.Load(context.Background(), metric.DimensionFunction)

	assert.Equal(t, 2, src.callCount(metric.KindOnTime))
	assert.Greater(t, third.OnTime.Version, first.OnTime.Version)
}

func TestLoader_FailureIsNotCached(t *testing.T) {
	src := newFakeSource()
	src.errs[metric.KindLost] = errors.New("boom")
	loader := NewLoader(src, time.Minute, time.Second)

	loader.Load(context.Background(), metric.DimensionFunction)
	delete(src.errs, metric.KindLost)
	joined := loader.Load(context.Background(), metric.DimensionFunction)

	assert.Equal(t, 2, src.callCount(metric.KindLost))
	assert.Equal(t, dashboard.DatasetLoaded, joined.Lost.State)
}

func TestLoader_SlowFetchIsPending(t *testing.T) {
	src := newFakeSource()
	src.block[metric.KindLeave] = true
	src.records[metric.KindOnTime] = []metric.Record{{Group: "A", Month: "2025-01"}}

	loader := NewLoader(src, time.Minute, 20*time.Millisecond)
	loader.SetFetchLimit(100 * time.Millisecond)
	joined := loader.Load(context.Background(), metric.DimensionLocation)

	assert.Equal(t, dashboard.DatasetPending, joined.Leave.State)
	assert.Nil(t, joined.Leave.Data())
	assert.Equal(t, dashboard.DatasetLoaded, joined.OnTime.State)
	assert.Equal(t, dashboard.StatusPartial, joined.Status)
	assert.False(t, joined.AnyError)
}

func TestLoader_RefreshReportsFailures(t *testing.T) {
	src := newFakeSource()
	loader := NewLoader(src, time.Minute, time.Second)
	require.NoError(t, loader.Refresh(context.Background(), metric.DimensionFunction))

	src.errs[metric.KindCompletion] = errors.New("nope")
	err := loader.Refresh(context.Background(), metric.DimensionFunction)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "completion: nope")
	assert.Equal(t, 2, src.callCount(metric.KindOnTime))
}

func TestLoader_SlowFetchLandsOnLaterLoad(t *testing.T) {
	src := newFakeSource()
	src.delay[metric.KindCompletion] = 80 * time.Millisecond
	src.records[metric.KindCompletion] = []metric.Record{{Group: "A", Month: "2025-01", Members: 3}}
	loader := NewLoader(src, time.Minute, 20*time.Millisecond)

	first := loader.Load(context.Background(), metric.DimensionFunction)
	require.Equal(t, dashboard.DatasetPending, first.Completion.State)

	require.Eventually(t, func() bool {
		return loader.Load(context.Background(), metric.DimensionFunction).Completion.State == dashboard.DatasetLoaded
	}, 2*time.Second, 10*time.Millisecond)

	joined := loader.Load(context.Background(), metric.DimensionFunction)
	assert.Len(t, joined.Completion.Data(), 1)
	assert.Equal(t, dashboard.StatusReady, joined.Status)
	assert.Equal(t, 1, src.callCount(metric.KindCompletion))
}

func TestLoader_FetchOutlivesCancelledCaller(t *testing.T) {
	src := newFakeSource()
	src.delay[metric.KindLost] = 50 * time.Millisecond
	loader := NewLoader(src, time.Minute, time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	joined := loader.Load(ctx, metric.DimensionFunction)
	require.Equal(t, dashboard.DatasetFailed, joined.Lost.State)
	require.ErrorIs(t, joined.Lost.Err, context.DeadlineExceeded)

	require.Eventually(t, func() bool {
		_, ok := loader.cached(loaderKey{kind: metric.KindLost, dimension: metric.DimensionFunction})
		return ok
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, src.callCount(metric.KindLost))
}

func TestLoader_RefreshWaitsForSlowFetch(t *testing.T) {
	src := newFakeSource()
	src.delay[metric.KindLeave] = 60 * time.Millisecond
	src.records[metric.KindLeave] = []metric.Record{{Group: "A", Month: "2025-01"}}
	loader := NewLoader(src, time.Minute, 10*time.Millisecond)

	require.NoError(t, loader.Refresh(context.Background(), metric.DimensionLocation))

	joined := loader.Load(context.Background(), metric.DimensionLocation)
	assert.Equal(t, dashboard.DatasetLoaded, joined.Leave.State)
	assert.Equal(t, 1, src.callCount(metric.KindLeave))
}

func TestLoader_ConcurrentLoadsShareOneFetch(t *testing.T) {
	src := newFakeSource()
	for _, kind := range metric.Kinds {
		src.delay[kind] = 40 * time.Millisecond
	}
	src.records[metric.KindOnTime] = []metric.Record{{Group: "A", Month: "2025-01"}}
	loader := NewLoader(src, time.Minute, time.Second)

	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			joined := loader.Load(context.Background(), metric.DimensionCompany)
			assert.Equal(t, dashboard.StatusReady, joined.Status)
		}()
	}
	wg.Wait()

	for _, kind := range metric.Kinds {
		assert.Equal(t, 1, src.callCount(kind), kind)
	}
}
