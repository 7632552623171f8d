package cron

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-dashboard-go/internal/domain/dashboard"
	"github.com/cmlabs-hris/attendance-dashboard-go/internal/domain/metric"
	"github.com/cmlabs-hris/attendance-dashboard-go/internal/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type warmRecorder struct {
	dashboard.DashboardService
	mu     sync.Mutex
	warmed []metric.Dimension
	fail   metric.Dimension
}

func (w *warmRecorder) Warm(ctx context.Context, dimension metric.Dimension) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.warmed = append(w.warmed, dimension)
	if dimension == w.fail {
		return errors.New("source down")
	}
	return nil
}

type pruneRecorder struct {
	storage.FileStorage
	before time.Time
	calls  int
}

func (p *pruneRecorder) Prune(ctx context.Context, before time.Time) (int, error) {
	p.calls++
	p.before = before
	return 2, nil
}

func TestDashboardJobs_WarmDatasets(t *testing.T) {
	svc := &warmRecorder{fail: metric.DimensionCompany}
	jobs := NewDashboardJobs(svc, &pruneRecorder{}, time.Minute, time.Hour)

	err := jobs.WarmDatasets(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "company: source down")
	assert.Equal(t, metric.Dimensions, svc.warmed)
}

func TestDashboardJobs_PruneExports(t *testing.T) {
	store := &pruneRecorder{}
	jobs := NewDashboardJobs(&warmRecorder{}, store, time.Minute, 24*time.Hour)
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	jobs.now = func() time.Time { return now }

	require.NoError(t, jobs.PruneExports(context.Background()))
	assert.Equal(t, now.Add(-24*time.Hour), store.before)

	jobs.retention = 0
	require.NoError(t, jobs.PruneExports(context.Background()))
	assert.Equal(t, 1, store.calls)
}

type idleRecorder struct {
	idle    time.Duration
	removed int
}

func (r *idleRecorder) PruneIdle(idle time.Duration) int {
	r.idle = idle
	return r.removed
}

func TestDashboardJobs_PruneIdle(t *testing.T) {
	sessions := &idleRecorder{removed: 3}
	exports := &idleRecorder{}
	jobs := NewDashboardJobs(&warmRecorder{}, &pruneRecorder{}, time.Minute, time.Hour)

	// nothing registered yet
	require.NoError(t, jobs.PruneIdle(context.Background()))

	jobs.PruneIdleState(6*time.Hour, map[string]IdlePruner{"sessions": sessions, "exports": exports})
	require.NoError(t, jobs.PruneIdle(context.Background()))
	assert.Equal(t, 6*time.Hour, sessions.idle)
	assert.Equal(t, 6*time.Hour, exports.idle)

	disabled := &idleRecorder{}
	jobs = NewDashboardJobs(&warmRecorder{}, &pruneRecorder{}, time.Minute, time.Hour)
	jobs.PruneIdleState(0, map[string]IdlePruner{"sessions": disabled})
	require.NoError(t, jobs.PruneIdle(context.Background()))
	assert.Zero(t, disabled.idle)
}

func TestDashboardJobs_RegistersJobs(t *testing.T) {
	scheduler := NewScheduler()
	NewDashboardJobs(&warmRecorder{}, &pruneRecorder{}, time.Minute, time.Hour).RegisterJobs(scheduler)
	assert.Len(t, scheduler.jobs, 3)
}

func TestScheduler_RunsJobsUntilStopped(t *testing.T) {
	scheduler := NewScheduler()
	ran := make(chan struct{}, 8)
	scheduler.AddJob("tick", 10*time.Millisecond, func(ctx context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	})
	scheduler.AddJob("ignored", 0, func(ctx context.Context) error { return nil })

	scheduler.Start(context.Background())
	<-ran
	<-ran
	scheduler.Stop()

	assert.Len(t, scheduler.jobs, 1)
}

func TestScheduler_RunOnce(t *testing.T) {
	scheduler := NewScheduler()
	var order []string
	scheduler.AddJob("a", time.Hour, func(ctx context.Context) error { order = append(order, "a"); return nil })
	scheduler.AddJob("b", time.Hour, func(ctx context.Context) error { order = append(order, "b"); return errors.New("boom") })

	scheduler.RunOnce(context.Background())

	assert.Equal(t, []string{"a", "b"}, order)
}
