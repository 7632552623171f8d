package postgresql_test

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/attendance-dashboard-go/internal/domain/metric"
	"github.com/cmlabs-hris/attendance-dashboard-go/internal/repository/postgresql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricRepository_OnTime(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, err := db.Exec(ctx, `
		INSERT INTO company_kpi (month, group_value, members, present, late, on_time, on_time_pct)
		VALUES ('2025-02', 'Acme', 20, 18, 3, 15, '83.3'),
		       ('2025-01', 'Acme', 19, 17, 2, 15, ''),
		       ('2025-01', 'Beta', 5, 5, 0, 5, '100')
	`)
	require.NoError(t, err)

	repo := postgresql.NewMetricRepository(db)
	records, err := repo.Fetch(ctx, metric.KindOnTime, metric.DimensionCompany)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "Acme", records[0].Group)
	assert.Equal(t, "2025-01", records[0].Month)
	assert.Equal(t, 0.0, records[0].OnTimePct, "blank percentage reads as zero")
	assert.Equal(t, 83.3, records[1].OnTimePct)
	assert.Equal(t, 20, records[1].Members)
	assert.Equal(t, "Beta", records[2].Group)

	// other dimensions have their own tables
	records, err = repo.Fetch(ctx, metric.KindOnTime, metric.DimensionFunction)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestMetricRepository_GroupTypeTables(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, err := db.Exec(ctx, `
		INSERT INTO work_hour_kpi (group_type, month, group_value, members, shift_hours, work_hours, completed, completion_pct)
		VALUES ('function', '2025-03', 'Finance', 10, 1600, 1500, 8, 93.75),
		       ('location', '2025-03', 'Jakarta', 40, 6400, 6000, 30, 93.75);
		INSERT INTO work_hour_lost_kpi (group_type, month, group_value, members, shift_hours, work_hours, lost_hours, lost_pct)
		VALUES ('function', '2025-03', 'Finance', 10, 1600, 1500, 100, 6.25);
		INSERT INTO leave_analysis_kpi (group_type, month, group_value, members, leave_members, sl, cl, a, sl_pct, cl_pct, a_pct)
		VALUES ('function', '2025-03', 'Finance', 10, 4, 2, 1, 1, 50, 25, 25);
	`)
	require.NoError(t, err)

	repo := postgresql.NewMetricRepository(db)

	completion, err := repo.Fetch(ctx, metric.KindCompletion, metric.DimensionFunction)
	require.NoError(t, err)
	require.Len(t, completion, 1)
	assert.Equal(t, "Finance", completion[0].Group)
	assert.Equal(t, 93.75, completion[0].CompletionPct)
	assert.Equal(t, 8, completion[0].Completed)

	lost, err := repo.Fetch(ctx, metric.KindLost, metric.DimensionFunction)
	require.NoError(t, err)
	require.Len(t, lost, 1)
	assert.Equal(t, 100.0, lost[0].HoursLost())

	leave, err := repo.Fetch(ctx, metric.KindLeave, metric.DimensionFunction)
	require.NoError(t, err)
	require.Len(t, leave, 1)
	assert.Equal(t, 4, leave[0].LeaveMembers)
	assert.Equal(t, 25.0, leave[0].APct)

	leave, err = repo.Fetch(ctx, metric.KindLeave, metric.DimensionCompany)
	require.NoError(t, err)
	assert.Empty(t, leave)
}

func TestMetricRepository_InvalidArguments(t *testing.T) {
	db := newTestDB(t)
	repo := postgresql.NewMetricRepository(db)

	_, err := repo.Fetch(context.Background(), metric.Kind("od"), metric.DimensionFunction)
	assert.ErrorIs(t, err, metric.ErrInvalidKind)

	_, err = repo.Fetch(context.Background(), metric.KindOnTime, metric.Dimension("employee"))
	assert.ErrorIs(t, err, metric.ErrInvalidDimension)
}
