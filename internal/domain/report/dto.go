package report

import "time"

// ExportJob is the ephemeral progress of a running export
type ExportJob struct {
	JobID        string `json:"job_id"`
	CurrentIndex int    `json:"current_index"`
	TotalGroups  int    `json:"total_groups"`
}

// Progress is emitted after every processed group, skipped ones included
type Progress struct {
	CurrentIndex int    `json:"current_index"`
	TotalGroups  int    `json:"total_groups"`
	Group        string `json:"group"`
	Skipped      bool   `json:"skipped"`
}

// StartExportResponse is returned when an export is accepted
type StartExportResponse struct {
	JobID       string `json:"job_id"`
	TotalGroups int    `json:"total_groups"`
}

// ExportResult is the outcome of the last finished export
type ExportResult struct {
	JobID      string    `json:"job_id"`
	FileName   string    `json:"file_name,omitempty"`
	URL        string    `json:"url,omitempty"`
	Pages      int       `json:"pages"`
	Skipped    int       `json:"skipped"`
	Error      string    `json:"error,omitempty"`
	FinishedAt time.Time `json:"finished_at"`
}

// ExportStatusResponse shows either the running job or the last result
type ExportStatusResponse struct {
	Running bool          `json:"running"`
	Job     *ExportJob    `json:"job,omitempty"`
	Last    *ExportResult `json:"last,omitempty"`
}

// Workbook is a generated tabular export
type Workbook struct {
	FileName string
	Content  []byte
}

// Progress event names published to the SSE hub
const (
	EventExportProgress  = "export.progress"
	EventExportCompleted = "export.completed"
	EventExportFailed    = "export.failed"
)
