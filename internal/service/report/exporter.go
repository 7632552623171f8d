package report

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/cmlabs-hris/attendance-dashboard-go/internal/domain/report"
	"github.com/cmlabs-hris/attendance-dashboard-go/internal/pkg/document"
	"github.com/cmlabs-hris/attendance-dashboard-go/internal/pkg/raster"
)

// SectionProvider returns the chart section of a group. ok is false when
// the group has nothing to render; such groups are skipped, not failed.
type SectionProvider interface {
	Section(index int, group string) (sec raster.Section, ok bool)
}

// SectionRenderer rasterizes a section to PNG
type SectionRenderer interface {
	RenderPNG(sec raster.Section, w io.Writer) error
}

// Exporter runs one export at a time. Groups are rasterized strictly in
// order and one at a time so only a single raster buffer is alive.
type Exporter struct {
	renderer SectionRenderer

	running atomic.Bool
	mu      sync.Mutex
	job     *report.ExportJob
}

func NewExporter(renderer SectionRenderer) *Exporter {
	return &Exporter{renderer: renderer}
}

// Start reserves the exporter for a job; ErrExportInProgress if one is running
func (e *Exporter) Start(jobID string, totalGroups int) (*report.ExportJob, error) {
	if !e.running.CompareAndSwap(false, true) {
		return nil, report.ErrExportInProgress
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.job = &report.ExportJob{JobID: jobID, TotalGroups: totalGroups}
	job := *e.job
	return &job, nil
}

// Running reports whether a job is reserved or in progress
func (e *Exporter) Running() bool {
	return e.running.Load()
}

// Job returns a copy of the running job, nil when idle
func (e *Exporter) Job() *report.ExportJob {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.job == nil {
		return nil
	}
	job := *e.job
	return &job
}

// Finish releases the reservation taken by Start. Callers hold it until the
// produced document is stored, so a new job never overlaps the tail of the last.
func (e *Exporter) Finish() {
	e.mu.Lock()
	e.job = nil
	e.mu.Unlock()
	e.running.Store(false)
}

// advance moves the job one group forward and returns the progress to emit
func (e *Exporter) advance(group string, skipped bool) report.Progress {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.job.CurrentIndex++
	return report.Progress{
		CurrentIndex: e.job.CurrentIndex,
		TotalGroups:  e.job.TotalGroups,
		Group:        group,
		Skipped:      skipped,
	}
}

// Run walks the groups of a started job and assembles the document. Every
// group emits exactly one progress update, skipped ones included. Any
// rasterization or document failure aborts the run. Cancellation is checked
// before each group. The job stays reserved until Finish.
func (e *Exporter) Run(ctx context.Context, title string, groups []string, sections SectionProvider, progress func(report.Progress)) (*document.Document, int, error) {
	if e.Job() == nil {
		return nil, 0, fmt.Errorf("export run without a started job")
	}
	if len(groups) == 0 {
		return nil, 0, report.ErrNoGroups
	}

	doc := document.New(title)
	skipped := 0

	for i, group := range groups {
		if err := ctx.Err(); err != nil {
			return nil, skipped, fmt.Errorf("%w after %d of %d groups: %w", report.ErrExportCancelled, i, len(groups), err)
		}

		sec, ok := sections.Section(i, group)
		if !ok {
			skipped++
			slog.Debug("Export skipped group without data", "group", group, "index", i)
			progress(e.advance(group, true))
			continue
		}

		var buf bytes.Buffer
		if err := e.renderer.RenderPNG(sec, &buf); err != nil {
			return nil, skipped, fmt.Errorf("%w for group %q: %w", report.ErrRasterizeFailed, group, err)
		}
		if err := doc.AddSection(&buf); err != nil {
			return nil, skipped, fmt.Errorf("%w for group %q: %w", report.ErrDocumentFailed, group, err)
		}

		progress(e.advance(group, false))
	}

	if doc.Sections() == 0 {
		return nil, skipped, report.ErrNoGroups
	}
	return doc, skipped, nil
}
