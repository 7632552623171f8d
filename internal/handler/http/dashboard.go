package http

import (
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/attendance-dashboard-go/internal/domain/dashboard"
	"github.com/cmlabs-hris/attendance-dashboard-go/internal/domain/metric"
	"github.com/cmlabs-hris/attendance-dashboard-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type DashboardHandler interface {
	// GetDashboard returns the current view: filter, summary and visible groups
	GetDashboard(w http.ResponseWriter, r *http.Request)
	// UpdateFilter changes the month range and/or dimension
	UpdateFilter(w http.ResponseWriter, r *http.Request)
	// LoadMore reveals the next page of groups
	LoadMore(w http.ResponseWriter, r *http.Request)
	// ShowAll reveals every group
	ShowAll(w http.ResponseWriter, r *http.Request)
	// GetGroupSeries returns one group's chart series for a metric
	GetGroupSeries(w http.ResponseWriter, r *http.Request)
}

type dashboardHandlerImpl struct {
	dashboardService dashboard.DashboardService
}

func NewDashboardHandler(dashboardService dashboard.DashboardService) DashboardHandler {
	return &dashboardHandlerImpl{dashboardService: dashboardService}
}

// GetDashboard handles GET /dashboard
func (h *dashboardHandlerImpl) GetDashboard(w http.ResponseWriter, r *http.Request) {
	result, err := h.dashboardService.GetDashboard(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// UpdateFilter handles PUT /dashboard/filter
func (h *dashboardHandlerImpl) UpdateFilter(w http.ResponseWriter, r *http.Request) {
	var req dashboard.UpdateFilterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.dashboardService.UpdateFilter(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Filter updated", result)
}

// LoadMore handles POST /dashboard/load-more
func (h *dashboardHandlerImpl) LoadMore(w http.ResponseWriter, r *http.Request) {
	result, err := h.dashboardService.LoadMore(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ShowAll handles POST /dashboard/show-all
func (h *dashboardHandlerImpl) ShowAll(w http.ResponseWriter, r *http.Request) {
	result, err := h.dashboardService.ShowAll(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetGroupSeries handles GET /dashboard/groups/{group}/series?metric=on_time
func (h *dashboardHandlerImpl) GetGroupSeries(w http.ResponseWriter, r *http.Request) {
	kind, err := metric.ParseKind(r.URL.Query().Get("metric"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.dashboardService.GetGroupSeries(r.Context(), chi.URLParam(r, "group"), kind)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
