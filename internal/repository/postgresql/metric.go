package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/attendance-dashboard-go/internal/domain/metric"
	"github.com/cmlabs-hris/attendance-dashboard-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

// On-time figures live in one table per dimension
var onTimeTables = map[metric.Dimension]string{
	metric.DimensionFunction: "function_kpi",
	metric.DimensionCompany:  "company_kpi",
	metric.DimensionLocation: "location_kpi",
}

type metricRepositoryImpl struct {
	db *database.DB
}

func NewMetricRepository(db *database.DB) metric.Source {
	return &metricRepositoryImpl{db: db}
}

func (r *metricRepositoryImpl) Fetch(ctx context.Context, kind metric.Kind, dimension metric.Dimension) ([]metric.Record, error) {
	if !dimension.IsValid() {
		return nil, metric.ErrInvalidDimension
	}

	switch kind {
	case metric.KindOnTime:
		return r.fetchOnTime(ctx, dimension)
	case metric.KindCompletion:
		return r.fetchCompletion(ctx, dimension)
	case metric.KindLost:
		return r.fetchLost(ctx, dimension)
	case metric.KindLeave:
		return r.fetchLeave(ctx, dimension)
	}
	return nil, metric.ErrInvalidKind
}

func (r *metricRepositoryImpl) fetchOnTime(ctx context.Context, dimension metric.Dimension) ([]metric.Record, error) {
	q := GetQuerier(ctx, r.db)

	// on_time_pct is stored as text; blank or non numeric values read as zero
	query := fmt.Sprintf(`
		SELECT group_value, month, members, present, late, on_time,
			CASE WHEN on_time_pct ~ '^-?[0-9]+(\.[0-9]+)?$'
				THEN on_time_pct::double precision ELSE 0 END
		FROM %s
		ORDER BY group_value, month
	`, onTimeTables[dimension])

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query on time kpi: %w", err)
	}

	records, err := collect(rows, func(row pgx.Rows, rec *metric.Record) error {
		return row.Scan(&rec.Group, &rec.Month, &rec.Members, &rec.Present, &rec.Late, &rec.OnTime, &rec.OnTimePct)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan on time kpi: %w", err)
	}
	return records, nil
}

func (r *metricRepositoryImpl) fetchCompletion(ctx context.Context, dimension metric.Dimension) ([]metric.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT group_value, month, members, shift_hours, work_hours, completed, completion_pct
		FROM work_hour_kpi
		WHERE group_type = $1
		ORDER BY group_value, month
	`

	rows, err := q.Query(ctx, query, string(dimension))
	if err != nil {
		return nil, fmt.Errorf("failed to query work hour kpi: %w", err)
	}

	records, err := collect(rows, func(row pgx.Rows, rec *metric.Record) error {
		return row.Scan(&rec.Group, &rec.Month, &rec.Members, &rec.ShiftHours, &rec.WorkHours, &rec.Completed, &rec.CompletionPct)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan work hour kpi: %w", err)
	}
	return records, nil
}

func (r *metricRepositoryImpl) fetchLost(ctx context.Context, dimension metric.Dimension) ([]metric.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT group_value, month, members, shift_hours, work_hours, lost_hours, lost_pct
		FROM work_hour_lost_kpi
		WHERE group_type = $1
		ORDER BY group_value, month
	`

	rows, err := q.Query(ctx, query, string(dimension))
	if err != nil {
		return nil, fmt.Errorf("failed to query work hour lost kpi: %w", err)
	}

	records, err := collect(rows, func(row pgx.Rows, rec *metric.Record) error {
		return row.Scan(&rec.Group, &rec.Month, &rec.Members, &rec.ShiftHours, &rec.WorkHours, &rec.LostHours, &rec.LostPct)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan work hour lost kpi: %w", err)
	}
	return records, nil
}

func (r *metricRepositoryImpl) fetchLeave(ctx context.Context, dimension metric.Dimension) ([]metric.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT group_value, month, members, leave_members, sl, cl, a, sl_pct, cl_pct, a_pct
		FROM leave_analysis_kpi
		WHERE group_type = $1
		ORDER BY group_value, month
	`

	rows, err := q.Query(ctx, query, string(dimension))
	if err != nil {
		return nil, fmt.Errorf("failed to query leave analysis kpi: %w", err)
	}

	records, err := collect(rows, func(row pgx.Rows, rec *metric.Record) error {
		return row.Scan(&rec.Group, &rec.Month, &rec.Members, &rec.LeaveMembers,
			&rec.SL, &rec.CL, &rec.A, &rec.SLPct, &rec.CLPct, &rec.APct)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan leave analysis kpi: %w", err)
	}
	return records, nil
}

func collect(rows pgx.Rows, scan func(pgx.Rows, *metric.Record) error) ([]metric.Record, error) {
	defer rows.Close()

	records := []metric.Record{}
	for rows.Next() {
		var rec metric.Record
		if err := scan(rows, &rec); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
