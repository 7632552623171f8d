package dashboard

import (
	"github.com/cmlabs-hris/attendance-dashboard-go/internal/domain/metric"
	"github.com/cmlabs-hris/attendance-dashboard-go/internal/pkg/validator"
)

// ========== FILTER STATE ==========

// FilterState is the persisted month range + active tab of one user
type FilterState struct {
	FromMonth   string           `json:"from_month"`
	ToMonth     string           `json:"to_month"`
	Dimension   metric.Dimension `json:"dimension"`
	Initialized bool             `json:"initialized"` // latest-3-months default already applied
}

func DefaultFilterState() FilterState {
	return FilterState{Dimension: metric.DimensionFunction}
}

func (f FilterState) Range() metric.MonthRange {
	return metric.MonthRange{From: f.FromMonth, To: f.ToMonth}.Normalize()
}

// UpdateFilterRequest changes any subset of the filter fields.
// An empty string clears a month bound.
type UpdateFilterRequest struct {
	FromMonth *string `json:"from_month"`
	ToMonth   *string `json:"to_month"`
	Dimension *string `json:"dimension"`
}

func (r *UpdateFilterRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.FromMonth != nil && !validator.IsEmpty(*r.FromMonth) && !validator.IsValidMonth(*r.FromMonth) {
		errs = append(errs, validator.ValidationError{
			Field:   "from_month",
			Message: "from_month must be in YYYY-MM format",
		})
	}
	if r.ToMonth != nil && !validator.IsEmpty(*r.ToMonth) && !validator.IsValidMonth(*r.ToMonth) {
		errs = append(errs, validator.ValidationError{
			Field:   "to_month",
			Message: "to_month must be in YYYY-MM format",
		})
	}
	if r.Dimension != nil {
		if _, err := metric.ParseDimension(*r.Dimension); err != nil {
			errs = append(errs, validator.ValidationError{
				Field:   "dimension",
				Message: "dimension must be one of function, company, location",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ========== DATASETS ==========

// DatasetState is the load state of one metric fetch
type DatasetState string

const (
	DatasetPending DatasetState = "pending"
	DatasetLoaded  DatasetState = "loaded"
	DatasetFailed  DatasetState = "failed"
)

// Status is the combined state of the four datasets
type Status string

const (
	StatusReady   Status = "ready"
	StatusPartial Status = "partial"
	StatusEmpty   Status = "empty"
	StatusError   Status = "error"
)

// DatasetStatus describes one metric's dataset in the view
type DatasetStatus struct {
	Metric  metric.Kind  `json:"metric"`
	State   DatasetState `json:"state"`
	Records int          `json:"records"` // after month filtering
	Version uint64       `json:"version"`
	Error   string       `json:"error,omitempty"`
}

// ========== SUMMARY ==========

// SummaryStatistics holds member weighted averages for the latest month in range.
// A zero average with zero members is a floor value, not missing data.
type SummaryStatistics struct {
	TotalMembers  int     `json:"total_members"`
	AvgOnTime     float64 `json:"avg_on_time"`
	AvgCompletion float64 `json:"avg_completion"`
	AvgLost       float64 `json:"avg_lost"`
	AvgLostHours  float64 `json:"avg_lost_hours"`
	LatestMonth   string  `json:"latest_month,omitempty"`
}

// LeaveSummary is the weighted leave split for the leave dataset's latest month
type LeaveSummary struct {
	AvgSL       float64 `json:"avg_sl"`
	AvgCL       float64 `json:"avg_cl"`
	AvgA        float64 `json:"avg_a"`
	LatestMonth string  `json:"latest_month,omitempty"`
}

// ========== VIEW ==========

// GroupSection is everything rendered for one group
type GroupSection struct {
	Index  int                             `json:"index"`
	Group  string                          `json:"group"`
	Series map[metric.Kind][]metric.Record `json:"series"`
}

// DashboardResponse is the full dashboard view of one user
type DashboardResponse struct {
	Filter       FilterState       `json:"filter"`
	Status       Status            `json:"status"`
	AnyError     bool              `json:"any_error"`
	NoData       bool              `json:"no_data"`
	Datasets     []DatasetStatus   `json:"datasets"`
	Summary      SummaryStatistics `json:"summary"`
	Leave        LeaveSummary      `json:"leave"`
	TotalGroups  int               `json:"total_groups"`
	VisibleCount int               `json:"visible_count"`
	HasMore      bool              `json:"has_more"`
	Sections     []GroupSection    `json:"sections"`
}

// GroupSeriesResponse is the derived chart series of one group and metric
type GroupSeriesResponse struct {
	Group   string          `json:"group"`
	Metric  metric.Kind     `json:"metric"`
	Records []metric.Record `json:"records"`
}

// Snapshot is the full (undisclosed) view used by exports
type Snapshot struct {
	Filter   FilterState
	Status   Status
	Groups   []string
	Summary  SummaryStatistics
	Filtered map[metric.Kind][]metric.Record

	// Series returns the derived chart series of a group, memoized
	Series func(group string, kind metric.Kind) []metric.Record `json:"-"`
}
