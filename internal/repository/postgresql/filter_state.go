package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/attendance-dashboard-go/internal/domain/dashboard"
	"github.com/cmlabs-hris/attendance-dashboard-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type filterStateRepositoryImpl struct {
	db *database.DB
}

func NewFilterStateRepository(db *database.DB) dashboard.FilterStateRepository {
	return &filterStateRepositoryImpl{db: db}
}

func (r *filterStateRepositoryImpl) Load(ctx context.Context, userID string) ([]byte, error) {
	q := GetQuerier(ctx, r.db)

	var payload []byte
	err := q.QueryRow(ctx, `SELECT payload FROM dashboard_filter_states WHERE user_id = $1`, userID).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dashboard.ErrFilterStateNotFound
		}
		return nil, fmt.Errorf("failed to load filter state: %w", err)
	}
	return payload, nil
}

func (r *filterStateRepositoryImpl) Save(ctx context.Context, userID string, payload []byte) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO dashboard_filter_states (user_id, payload, updated_at)
		VALUES ($1, $2::jsonb, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at
	`

	if _, err := q.Exec(ctx, query, userID, string(payload)); err != nil {
		return fmt.Errorf("failed to save filter state: %w", err)
	}
	return nil
}
