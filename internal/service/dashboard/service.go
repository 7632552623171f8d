package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-dashboard-go/internal/domain/dashboard"
	"github.com/cmlabs-hris/attendance-dashboard-go/internal/domain/metric"
	"github.com/go-chi/jwtauth/v5"
	"github.com/samber/lo"
)

// session is the view state of one user. Its mutex serializes that user's requests.
type session struct {
	mu         sync.Mutex
	loaded     bool
	filter     dashboard.FilterState
	disclosure *Disclosure
	seen       time.Time // guarded by DashboardServiceImpl.mu
}

type DashboardServiceImpl struct {
	loader   *Loader
	cache    *ChartCache
	filters  *FilterStore
	pageSize int
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

var _ dashboard.DashboardService = (*DashboardServiceImpl)(nil)

func NewDashboardService(loader *Loader, cache *ChartCache, filterRepo dashboard.FilterStateRepository, pageSize int) *DashboardServiceImpl {
	return &DashboardServiceImpl{
		loader:   loader,
		cache:    cache,
		filters:  NewFilterStore(filterRepo),
		pageSize: pageSize,
		now:      time.Now,
		sessions: make(map[string]*session),
	}
}

// getUserID extracts user_id from JWT claims
func (s *DashboardServiceImpl) getUserID(ctx context.Context) (string, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to extract claims from context: %w", err)
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", dashboard.ErrUserNotInContext
	}
	return userID, nil
}

// lockSession returns the caller's session locked; the filter is read from
// the repository on first use.
func (s *DashboardServiceImpl) lockSession(ctx context.Context) (*session, string, error) {
	userID, err := s.getUserID(ctx)
	if err != nil {
		return nil, "", err
	}

	s.mu.Lock()
	sess, ok := s.sessions[userID]
	if !ok {
		sess = &session{disclosure: NewDisclosure(s.pageSize)}
		s.sessions[userID] = sess
	}
	sess.seen = s.now()
	s.mu.Unlock()

	sess.mu.Lock()
	if !sess.loaded {
		sess.filter = s.filters.Load(ctx, userID)
		sess.loaded = true
	}
	return sess, userID, nil
}

// PruneIdle drops sessions untouched for longer than idle. A session busy
// with a request is kept. The filter survives in the repository, so a pruned
// user only loses disclosure progress.
func (s *DashboardServiceImpl) PruneIdle(idle time.Duration) int {
	cutoff := s.now().Add(-idle)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for userID, sess := range s.sessions {
		if !sess.seen.Before(cutoff) || !sess.mu.TryLock() {
			continue
		}
		delete(s.sessions, userID)
		sess.mu.Unlock()
		removed++
	}
	return removed
}

// computed is the undisclosed pipeline output for a session
type computed struct {
	filter   dashboard.FilterState
	joined   Joined
	filtered Joined
	groups   []string
	summary  dashboard.SummaryStatistics
	leave    dashboard.LeaveSummary
}

func (s *DashboardServiceImpl) compute(ctx context.Context, sess *session, userID string) *computed {
	joined := s.loader.Load(ctx, sess.filter.Dimension)

	if applyDefaultRange(&sess.filter, joined) {
		if err := s.filters.Save(ctx, userID, sess.filter); err != nil {
			slog.Error("Failed to persist default month range", "user_id", userID, "error", err)
		}
	}

	rng := sess.filter.Range()
	filtered := joined.Filter(rng)
	onTime, completion, lost, leave := filtered.OnTime.Data(), filtered.Completion.Data(), filtered.Lost.Data(), filtered.Leave.Data()

	return &computed{
		filter:   sess.filter,
		joined:   joined,
		filtered: filtered,
		groups:   GroupIndex(onTime, completion, lost, leave),
		summary:  Summarize(onTime, completion, lost),
		leave:    SummarizeLeave(leave),
	}
}

func (s *DashboardServiceImpl) series(c *computed, group string, kind metric.Kind) []metric.Record {
	d := c.filtered.Get(kind)
	return s.cache.Series(kind, d.Version, c.filter.Range(), group, d.Data())
}

func (s *DashboardServiceImpl) respond(sess *session, c *computed) *dashboard.DashboardResponse {
	visible := sess.disclosure.Visible(c.groups)

	sections := make([]dashboard.GroupSection, 0, len(visible))
	for i, group := range visible {
		section := dashboard.GroupSection{
			Index:  i,
			Group:  group,
			Series: make(map[metric.Kind][]metric.Record, len(metric.Kinds)),
		}
		for _, kind := range metric.Kinds {
			section.Series[kind] = s.series(c, group, kind)
		}
		sections = append(sections, section)
	}

	return &dashboard.DashboardResponse{
		Filter:       c.filter,
		Status:       c.filtered.Status,
		AnyError:     c.filtered.AnyError,
		NoData:       c.filtered.NoData,
		Datasets:     c.filtered.Statuses(),
		Summary:      c.summary,
		Leave:        c.leave,
		TotalGroups:  len(c.groups),
		VisibleCount: len(visible),
		HasMore:      sess.disclosure.HasMore(len(c.groups)),
		Sections:     sections,
	}
}

// GetDashboard returns the current view of the user
func (s *DashboardServiceImpl) GetDashboard(ctx context.Context) (*dashboard.DashboardResponse, error) {
	sess, userID, err := s.lockSession(ctx)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	return s.respond(sess, s.compute(ctx, sess, userID)), nil
}

// UpdateFilter applies and persists filter changes
func (s *DashboardServiceImpl) UpdateFilter(ctx context.Context, req dashboard.UpdateFilterRequest) (*dashboard.DashboardResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sess, userID, err := s.lockSession(ctx)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	next := sess.filter
	if req.FromMonth != nil {
		next.FromMonth = strings.TrimSpace(*req.FromMonth)
		next.Initialized = true
	}
	if req.ToMonth != nil {
		next.ToMonth = strings.TrimSpace(*req.ToMonth)
		next.Initialized = true
	}
	if req.Dimension != nil {
		dimension, _ := metric.ParseDimension(*req.Dimension)
		next.Dimension = dimension
	}

	if next.Dimension != sess.filter.Dimension {
		sess.disclosure.Reset()
	}
	if next != sess.filter {
		sess.filter = next
		if err := s.filters.Save(ctx, userID, next); err != nil {
			return nil, err
		}
	}

	return s.respond(sess, s.compute(ctx, sess, userID)), nil
}

// LoadMore reveals the next page of groups
func (s *DashboardServiceImpl) LoadMore(ctx context.Context) (*dashboard.DashboardResponse, error) {
	sess, userID, err := s.lockSession(ctx)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	c := s.compute(ctx, sess, userID)
	sess.disclosure.LoadMore(len(c.groups))
	return s.respond(sess, c), nil
}

// ShowAll reveals every group
func (s *DashboardServiceImpl) ShowAll(ctx context.Context) (*dashboard.DashboardResponse, error) {
	sess, userID, err := s.lockSession(ctx)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	c := s.compute(ctx, sess, userID)
	sess.disclosure.ShowAll(len(c.groups))
	return s.respond(sess, c), nil
}

// GetGroupSeries returns one group's derived series for a metric
func (s *DashboardServiceImpl) GetGroupSeries(ctx context.Context, group string, kind metric.Kind) (*dashboard.GroupSeriesResponse, error) {
	if !kind.IsValid() {
		return nil, metric.ErrInvalidKind
	}

	sess, userID, err := s.lockSession(ctx)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	c := s.compute(ctx, sess, userID)
	group = strings.TrimSpace(group)
	if !lo.Contains(c.groups, group) {
		return nil, dashboard.ErrGroupNotFound
	}

	return &dashboard.GroupSeriesResponse{
		Group:   group,
		Metric:  kind,
		Records: s.series(c, group, kind),
	}, nil
}

// Snapshot returns the full view for exports, ignoring disclosure
func (s *DashboardServiceImpl) Snapshot(ctx context.Context) (*dashboard.Snapshot, error) {
	sess, userID, err := s.lockSession(ctx)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	c := s.compute(ctx, sess, userID)
	filtered := make(map[metric.Kind][]metric.Record, len(metric.Kinds))
	for _, kind := range metric.Kinds {
		filtered[kind] = c.filtered.Get(kind).Data()
	}

	return &dashboard.Snapshot{
		Filter:   c.filter,
		Status:   c.filtered.Status,
		Groups:   c.groups,
		Summary:  c.summary,
		Filtered: filtered,
		Series: func(group string, kind metric.Kind) []metric.Record {
			return s.series(c, group, kind)
		},
	}, nil
}

// Warm refreshes the cached datasets of a dimension
func (s *DashboardServiceImpl) Warm(ctx context.Context, dimension metric.Dimension) error {
	return s.loader.Refresh(ctx, dimension)
}
