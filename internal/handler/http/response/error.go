package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-dashboard-go/internal/domain/dashboard"
	"github.com/cmlabs-hris/attendance-dashboard-go/internal/domain/metric"
	"github.com/cmlabs-hris/attendance-dashboard-go/internal/domain/report"
	"github.com/cmlabs-hris/attendance-dashboard-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Metric domain errors
	case errors.Is(err, metric.ErrInvalidDimension):
		BadRequest(w, "Dimension must be one of function, company, location", nil)
	case errors.Is(err, metric.ErrInvalidKind):
		BadRequest(w, "Metric must be one of on_time, completion, lost, leave", nil)
	case errors.Is(err, metric.ErrInvalidMonth):
		BadRequest(w, "Month must be in YYYY-MM format", nil)
	case errors.Is(err, metric.ErrSourceFailed):
		BadGateway(w, "Metric source is unavailable")

	// Dashboard domain errors
	case errors.Is(err, dashboard.ErrUserNotInContext):
		Unauthorized(w, "Unauthorized")
	case errors.Is(err, dashboard.ErrGroupNotFound):
		NotFound(w, "Group not found in current view")

	// Report domain errors
	case errors.Is(err, report.ErrExportInProgress):
		Conflict(w, "An export is already running")
	case errors.Is(err, report.ErrNoActiveExport):
		NotFound(w, "No export is running")
	case errors.Is(err, report.ErrExportFileNotFound):
		NotFound(w, "Export file not found")
	case errors.Is(err, report.ErrNoGroups):
		BadRequest(w, "The current view has no groups to export", nil)

	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
