package dashboard

import (
	"context"

	"github.com/cmlabs-hris/attendance-dashboard-go/internal/domain/metric"
)

// DashboardService defines the dashboard operations of the current user
type DashboardService interface {
	// GetDashboard returns the filtered, summarized and disclosed view
	GetDashboard(ctx context.Context) (*DashboardResponse, error)

	// UpdateFilter changes month range and/or dimension; a dimension change resets disclosure
	UpdateFilter(ctx context.Context, req UpdateFilterRequest) (*DashboardResponse, error)

	// LoadMore reveals the next page of groups
	LoadMore(ctx context.Context) (*DashboardResponse, error)

	// ShowAll reveals every group
	ShowAll(ctx context.Context) (*DashboardResponse, error)

	// GetGroupSeries returns one group's derived series for a metric
	GetGroupSeries(ctx context.Context, group string, kind metric.Kind) (*GroupSeriesResponse, error)

	// Snapshot returns the full view, ignoring disclosure
	Snapshot(ctx context.Context) (*Snapshot, error)

	// Warm refreshes cached datasets of a dimension
	Warm(ctx context.Context, dimension metric.Dimension) error
}
