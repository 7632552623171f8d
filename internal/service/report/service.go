package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-dashboard-go/internal/domain/dashboard"
	"github.com/cmlabs-hris/attendance-dashboard-go/internal/domain/report"
	"github.com/cmlabs-hris/attendance-dashboard-go/internal/pkg/sse"
	"github.com/cmlabs-hris/attendance-dashboard-go/internal/pkg/storage"
	"github.com/cmlabs-hris/attendance-dashboard-go/internal/pkg/validator"
	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
)

// userExports is the export state of one user
type userExports struct {
	exporter *Exporter
	jobID    string
	cancel   context.CancelFunc
	last     *report.ExportResult
	seen     time.Time
}

type ReportServiceImpl struct {
	dashboardService dashboard.DashboardService
	renderer         SectionRenderer
	storage          storage.FileStorage
	hub              *sse.Hub
	now              func() time.Time

	mu    sync.Mutex
	users map[string]*userExports
	wg    sync.WaitGroup
}

var _ report.ReportService = (*ReportServiceImpl)(nil)

func NewReportService(dashboardService dashboard.DashboardService, renderer SectionRenderer, fileStorage storage.FileStorage, hub *sse.Hub) *ReportServiceImpl {
	return &ReportServiceImpl{
		dashboardService: dashboardService,
		renderer:         renderer,
		storage:          fileStorage,
		hub:              hub,
		now:              time.Now,
		users:            make(map[string]*userExports),
	}
}

// getUserID extracts user_id from JWT claims
func (s *ReportServiceImpl) getUserID(ctx context.Context) (string, error) {
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

func (s *ReportServiceImpl) user(userID string) *userExports {
	s.mu.Lock()
	defer s.mu.Unlock()

	ue, ok := s.users[userID]
	if !ok {
		ue = &userExports{exporter: NewExporter(s.renderer)}
		s.users[userID] = ue
	}
	ue.seen = s.now()
	return ue
}

// StartExport snapshots the user's full view and exports it in the background
func (s *ReportServiceImpl) StartExport(ctx context.Context) (*report.StartExportResponse, error) {
	userID, err := s.getUserID(ctx)
	if err != nil {
		return nil, err
	}

	ue := s.user(userID)
	if ue.exporter.Running() {
		return nil, report.ErrExportInProgress
	}

	snapshot, err := s.dashboardService.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if len(snapshot.Groups) == 0 {
		return nil, report.ErrNoGroups
	}

	jobID := uuid.NewString()
	job, err := ue.exporter.Start(jobID, len(snapshot.Groups))
	if err != nil {
		return nil, err
	}

	// the job outlives the request
	jobCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.mu.Lock()
	ue.jobID = jobID
	ue.cancel = cancel
	s.mu.Unlock()

	s.hub.Forget(userID)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()
		s.run(jobCtx, userID, jobID, snapshot, ue)
	}()

	slog.Info("Export started", "user_id", userID, "job_id", jobID, "total_groups", job.TotalGroups)
	return &report.StartExportResponse{JobID: jobID, TotalGroups: job.TotalGroups}, nil
}

func (s *ReportServiceImpl) run(ctx context.Context, userID, jobID string, snapshot *dashboard.Snapshot, ue *userExports) {
	dimension := snapshot.Filter.Dimension
	title := fmt.Sprintf("Dashboard %s", dimension.Label())

	progress := func(p report.Progress) {
		s.hub.Publish(userID, sse.Event{Event: report.EventExportProgress, Data: p})
	}

	result := &report.ExportResult{JobID: jobID}
	doc, skipped, err := ue.exporter.Run(ctx, title, snapshot.Groups, newSnapshotSections(snapshot), progress)
	result.Skipped = skipped

	if err == nil {
		var buf bytes.Buffer
		if err = doc.Output(&buf); err == nil {
			result.Pages = doc.Pages()
			result.FileName = FileName(dimension, s.now(), "pdf")
			err = s.store(ctx, userID, result, &buf)
		}
	}
	result.FinishedAt = s.now()

	if err != nil {
		result.Error = err.Error()
		result.FileName = ""
		if errors.Is(err, report.ErrExportCancelled) {
			slog.Info("Export cancelled", "user_id", userID, "job_id", jobID)
		} else {
			slog.Error("Export failed", "user_id", userID, "job_id", jobID, "error", err)
		}
		s.hub.Publish(userID, sse.Event{Event: report.EventExportFailed, Data: result})
	} else {
		slog.Info("Export completed", "user_id", userID, "job_id", jobID, "file", result.FileName, "pages", result.Pages, "skipped", skipped)
		s.hub.Publish(userID, sse.Event{Event: report.EventExportCompleted, Data: result})
	}

	s.mu.Lock()
	ue.last = result
	ue.seen = result.FinishedAt
	if ue.jobID == jobID {
		ue.jobID = ""
		ue.cancel = nil
	}
	s.mu.Unlock()

	// released last: the file, the final event and the result are all in place
	ue.exporter.Finish()
}

func (s *ReportServiceImpl) store(ctx context.Context, userID string, result *report.ExportResult, content io.Reader) error {
	if _, err := s.storage.Upload(ctx, content, userID+"/"+result.FileName, "application/pdf"); err != nil {
		return fmt.Errorf("%w: %w", report.ErrDocumentFailed, err)
	}
	// the download route resolves the user from the token, so the URL carries only the name
	url, err := s.storage.GetURL(ctx, result.FileName)
	if err != nil {
		return fmt.Errorf("%w: %w", report.ErrDocumentFailed, err)
	}
	result.URL = url
	return nil
}

// CancelExport signals the running export; it stops before the next group
func (s *ReportServiceImpl) CancelExport(ctx context.Context) error {
	userID, err := s.getUserID(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	ue, ok := s.users[userID]
	var cancel context.CancelFunc
	if ok {
		cancel = ue.cancel
	}
	s.mu.Unlock()

	if cancel == nil || !ue.exporter.Running() {
		return report.ErrNoActiveExport
	}
	cancel()
	return nil
}

// PruneIdle forgets users with no running export and no activity for longer
// than idle, together with the progress event the hub retained for them.
// Stored files are left to the retention job.
func (s *ReportServiceImpl) PruneIdle(idle time.Duration) int {
	cutoff := s.now().Add(-idle)

	s.mu.Lock()
	var removed []string
	for userID, ue := range s.users {
		if ue.seen.Before(cutoff) && !ue.exporter.Running() {
			delete(s.users, userID)
			removed = append(removed, userID)
		}
	}
	s.mu.Unlock()

	for _, userID := range removed {
		s.hub.Forget(userID)
	}
	return len(removed)
}

func (s *ReportServiceImpl) GetExportStatus(ctx context.Context) (*report.ExportStatusResponse, error) {
	userID, err := s.getUserID(ctx)
	if err != nil {
		return nil, err
	}

	ue := s.user(userID)
	resp := &report.ExportStatusResponse{Job: ue.exporter.Job()}
	resp.Running = resp.Job != nil

	s.mu.Lock()
	if ue.last != nil {
		last := *ue.last
		resp.Last = &last
	}
	s.mu.Unlock()

	return resp, nil
}

// OpenExport opens one of the user's stored exports
func (s *ReportServiceImpl) OpenExport(ctx context.Context, fileName string) (io.ReadCloser, error) {
	userID, err := s.getUserID(ctx)
	if err != nil {
		return nil, err
	}
	if !validator.IsSafeFileName(fileName) {
		return nil, report.ErrExportFileNotFound
	}

	rc, err := s.storage.Download(ctx, userID+"/"+fileName)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidPath) {
			return nil, report.ErrExportFileNotFound
		}
		return nil, err
	}
	return rc, nil
}

// GenerateWorkbook builds the current filtered datasets as xlsx
func (s *ReportServiceImpl) GenerateWorkbook(ctx context.Context) (*report.Workbook, error) {
	snapshot, err := s.dashboardService.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	content, err := buildWorkbook(snapshot)
	if err != nil {
		return nil, err
	}

	return &report.Workbook{
		FileName: FileName(snapshot.Filter.Dimension, s.now(), "xlsx"),
		Content:  content,
	}, nil
}

// Wait blocks until background exports have finished
func (s *ReportServiceImpl) Wait() {
	s.wg.Wait()
}

// CancelAll stops every running export; used on shutdown before Wait
func (s *ReportServiceImpl) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ue := range s.users {
		if ue.cancel != nil {
			ue.cancel()
		}
	}
}
