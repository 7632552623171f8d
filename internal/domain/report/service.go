package report

import (
	"context"
	"io"
)

// ReportService defines exports of the current user's dashboard
type ReportService interface {
	// StartExport begins a paged document export in the background
	StartExport(ctx context.Context) (*StartExportResponse, error)

	// CancelExport stops the running export between two groups
	CancelExport(ctx context.Context) error

	// GetExportStatus returns running progress or the last result
	GetExportStatus(ctx context.Context) (*ExportStatusResponse, error)

	// OpenExport opens a stored export file for download
	OpenExport(ctx context.Context, fileName string) (io.ReadCloser, error)

	// GenerateWorkbook builds the filtered datasets as a spreadsheet
	GenerateWorkbook(ctx context.Context) (*Workbook, error)
}
