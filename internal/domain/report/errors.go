package report

import "errors"

var (
	ErrExportInProgress   = errors.New("an export is already running")
	ErrNoActiveExport     = errors.New("no export is running")
	ErrExportCancelled    = errors.New("export cancelled")
	ErrExportFileNotFound = errors.New("export file not found")
	ErrNoGroups           = errors.New("no groups to export")
	ErrRasterizeFailed    = errors.New("failed to rasterize report section")
	ErrDocumentFailed     = errors.New("failed to assemble report document")
)
