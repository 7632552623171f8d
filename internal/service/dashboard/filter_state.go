package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/attendance-dashboard-go/internal/domain/dashboard"
	"github.com/cmlabs-hris/attendance-dashboard-go/internal/pkg/validator"
)

// defaultRangeMonths is how many recent months an uninitialized filter opens with
const defaultRangeMonths = 3

// FilterStore reads and writes filter state through the injected repository.
// Anything missing or unreadable falls back to the defaults.
type FilterStore struct {
	repo dashboard.FilterStateRepository
}

func NewFilterStore(repo dashboard.FilterStateRepository) *FilterStore {
	return &FilterStore{repo: repo}
}

func (s *FilterStore) Load(ctx context.Context, userID string) dashboard.FilterState {
	payload, err := s.repo.Load(ctx, userID)
	if err != nil {
		if !errors.Is(err, dashboard.ErrFilterStateNotFound) {
			slog.Warn("Failed to load filter state, using defaults", "user_id", userID, "error", err)
		}
		return dashboard.DefaultFilterState()
	}

	state, err := decodeFilterState(payload)
	if err != nil {
		slog.Warn("Malformed filter state, using defaults", "user_id", userID, "error", err)
		return dashboard.DefaultFilterState()
	}
	return state
}

func (s *FilterStore) Save(ctx context.Context, userID string, state dashboard.FilterState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode filter state: %w", err)
	}
	if err := s.repo.Save(ctx, userID, payload); err != nil {
		return fmt.Errorf("failed to save filter state: %w", err)
	}
	return nil
}

func decodeFilterState(payload []byte) (dashboard.FilterState, error) {
	var state dashboard.FilterState
	if err := json.Unmarshal(payload, &state); err != nil {
		return dashboard.FilterState{}, err
	}
	if !state.Dimension.IsValid() {
		return dashboard.FilterState{}, fmt.Errorf("invalid dimension %q", state.Dimension)
	}
	if state.FromMonth != "" && !validator.IsValidMonth(state.FromMonth) {
		return dashboard.FilterState{}, fmt.Errorf("invalid from_month %q", state.FromMonth)
	}
	if state.ToMonth != "" && !validator.IsValidMonth(state.ToMonth) {
		return dashboard.FilterState{}, fmt.Errorf("invalid to_month %q", state.ToMonth)
	}
	return state, nil
}

// applyDefaultRange sets the latest three months once, the first time data
// is available. It reports whether the state changed.
func applyDefaultRange(state *dashboard.FilterState, joined Joined) bool {
	if state.Initialized {
		return false
	}
	months := latestMonths(defaultRangeMonths,
		joined.OnTime.Data(), joined.Completion.Data(), joined.Lost.Data(), joined.Leave.Data())
	if len(months) == 0 {
		return false
	}
	state.FromMonth = months[0]
	state.ToMonth = months[len(months)-1]
	state.Initialized = true
	return true
}
