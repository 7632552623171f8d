package http

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/cmlabs-hris/attendance-dashboard-go/internal/domain/report"
	"github.com/cmlabs-hris/attendance-dashboard-go/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-dashboard-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-dashboard-go/internal/pkg/sse"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
)

const (
	contentTypePDF  = "application/pdf"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type ReportHandler interface {
	// Document export
	StartExport(w http.ResponseWriter, r *http.Request)
	CancelExport(w http.ResponseWriter, r *http.Request)
	GetExportStatus(w http.ResponseWriter, r *http.Request)
	DownloadExport(w http.ResponseWriter, r *http.Request)

	// Progress stream
	GetSSEToken(w http.ResponseWriter, r *http.Request)
	Stream(w http.ResponseWriter, r *http.Request)

	// Spreadsheet export
	DownloadWorkbook(w http.ResponseWriter, r *http.Request)
}

// SSETokenResponse is returned by GetSSEToken
type SSETokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

type reportHandlerImpl struct {
	reportService report.ReportService
	jwtService    jwt.Service
	hub           *sse.Hub
	keepalive     time.Duration
}

func NewReportHandler(reportService report.ReportService, jwtService jwt.Service, hub *sse.Hub) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
		jwtService:    jwtService,
		hub:           hub,
		keepalive:     30 * time.Second,
	}
}

// getUserIDFromContext extracts user_id from JWT context
func getUserIDFromContext(r *http.Request) string {
	_, claims, _ := jwtauth.FromContext(r.Context())
	if userID, ok := claims["user_id"].(string); ok {
		return userID
	}
	return ""
}

// StartExport handles POST /reports/export
func (h *reportHandlerImpl) StartExport(w http.ResponseWriter, r *http.Request) {
	result, err := h.reportService.StartExport(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Accepted(w, "Export started", result)
}

// CancelExport handles DELETE /reports/export
func (h *reportHandlerImpl) CancelExport(w http.ResponseWriter, r *http.Request) {
	if err := h.reportService.CancelExport(r.Context()); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Export cancellation requested", nil)
}

// GetExportStatus handles GET /reports/export/status
func (h *reportHandlerImpl) GetExportStatus(w http.ResponseWriter, r *http.Request) {
	result, err := h.reportService.GetExportStatus(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// DownloadExport handles GET /reports/files/{name}
func (h *reportHandlerImpl) DownloadExport(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	rc, err := h.reportService.OpenExport(r.Context(), name)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", contentTypePDF)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if _, err := io.Copy(w, rc); err != nil {
		slog.Warn("Failed to stream export", "file", name, "error", err)
	}
}

// DownloadWorkbook handles GET /reports/workbook
func (h *reportHandlerImpl) DownloadWorkbook(w http.ResponseWriter, r *http.Request) {
	wb, err := h.reportService.GenerateWorkbook(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentTypeXLSX)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", wb.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(wb.Content)))
	w.WriteHeader(http.StatusOK)
	w.Write(wb.Content)
}

// GetSSEToken generates a short-lived token for the progress stream
func (h *reportHandlerImpl) GetSSEToken(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r)
	if userID == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	token, expiresIn, err := h.jwtService.GenerateSSEToken(userID)
	if err != nil {
		response.InternalServerError(w, "Failed to generate SSE token")
		return
	}

	response.Success(w, SSETokenResponse{
		Token:     token,
		ExpiresIn: expiresIn,
	})
}

// Stream handles GET /reports/export/stream?token=
func (h *reportHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	// EventSource cannot set headers, the token comes in the query
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		response.Unauthorized(w, "Missing token")
		return
	}

	userID, err := h.jwtService.ValidateSSEToken(tokenStr)
	if err != nil {
		response.Unauthorized(w, "Invalid token")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		response.InternalServerError(w, "Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, cleanup := h.hub.Subscribe(userID)
	defer cleanup()

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\"}\n\n")
	flusher.Flush()

	keepalive := time.NewTicker(h.keepalive)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := sse.Write(w, event); err != nil {
				slog.Warn("Failed to write export event", "user_id", userID, "error", err)
				return
			}
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
