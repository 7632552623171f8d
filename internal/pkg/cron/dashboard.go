package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-dashboard-go/internal/domain/dashboard"
	"github.com/cmlabs-hris/attendance-dashboard-go/internal/domain/metric"
	"github.com/cmlabs-hris/attendance-dashboard-go/internal/pkg/storage"
)

// IdlePruner drops per-user state untouched for longer than idle and
// reports how many users it dropped.
type IdlePruner interface {
	PruneIdle(idle time.Duration) int
}

// DashboardJobs keeps metric datasets warm, old exports pruned and idle
// per-user state forgotten.
type DashboardJobs struct {
	dashboardService dashboard.DashboardService
	exportStorage    storage.FileStorage
	warmInterval     time.Duration
	retention        time.Duration
	now              func() time.Time

	idle    time.Duration
	pruners map[string]IdlePruner
}

func NewDashboardJobs(dashboardService dashboard.DashboardService, exportStorage storage.FileStorage, warmInterval, retention time.Duration) *DashboardJobs {
	return &DashboardJobs{
		dashboardService: dashboardService,
		exportStorage:    exportStorage,
		warmInterval:     warmInterval,
		retention:        retention,
		now:              time.Now,
		pruners:          make(map[string]IdlePruner),
	}
}

// PruneIdleState registers per-user state to forget after idle
func (j *DashboardJobs) PruneIdleState(idle time.Duration, pruners map[string]IdlePruner) {
	j.idle = idle
	for name, p := range pruners {
		j.pruners[name] = p
	}
}

func (j *DashboardJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("warm_dashboard_datasets", j.warmInterval, j.WarmDatasets)
	scheduler.AddJob("prune_exports", 1*time.Hour, j.PruneExports)
	scheduler.AddJob("prune_idle_sessions", 15*time.Minute, j.PruneIdle)
}

// WarmDatasets refreshes every dimension so the first request after a
// cache expiry does not wait on the metric source.
func (j *DashboardJobs) WarmDatasets(ctx context.Context) error {
	var errs []error
	for _, dimension := range metric.Dimensions {
		if err := j.dashboardService.Warm(ctx, dimension); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", dimension, err))
		}
	}
	return errors.Join(errs...)
}

func (j *DashboardJobs) PruneExports(ctx context.Context) error {
	if j.retention <= 0 {
		return nil
	}

	removed, err := j.exportStorage.Prune(ctx, j.now().Add(-j.retention))
	if err != nil {
		return err
	}
	if removed > 0 {
		slog.Info("Cron: Pruned expired exports", "removed", removed, "retention", j.retention)
	}
	return nil
}

func (j *DashboardJobs) PruneIdle(ctx context.Context) error {
	if j.idle <= 0 {
		return nil
	}

	for name, p := range j.pruners {
		if removed := p.PruneIdle(j.idle); removed > 0 {
			slog.Info("Cron: Pruned idle state", "state", name, "removed", removed, "idle", j.idle)
		}
	}
	return nil
}
