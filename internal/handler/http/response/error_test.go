package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cmlabs-hris/attendance-dashboard-go/internal/domain/dashboard"
	"github.com/cmlabs-hris/attendance-dashboard-go/internal/domain/metric"
	"github.com/cmlabs-hris/attendance-dashboard-go/internal/domain/report"
	"github.com/cmlabs-hris/attendance-dashboard-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", validator.ValidationErrors{{Field: "from_month", Message: "bad"}}, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"invalid dimension", metric.ErrInvalidDimension, http.StatusBadRequest, "BAD_REQUEST"},
		{"invalid kind", fmt.Errorf("parse: %w", metric.ErrInvalidKind), http.StatusBadRequest, "BAD_REQUEST"},
		{"source failed", metric.ErrSourceFailed, http.StatusBadGateway, "BAD_GATEWAY"},
		{"no user", dashboard.ErrUserNotInContext, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"unknown group", dashboard.ErrGroupNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"export running", report.ErrExportInProgress, http.StatusConflict, "CONFLICT"},
		{"no export", report.ErrNoActiveExport, http.StatusNotFound, "NOT_FOUND"},
		{"no groups", report.ErrNoGroups, http.StatusBadRequest, "BAD_REQUEST"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleError(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			var body Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.False(t, body.Success)
			assert.Equal(t, tt.code, body.Error.Code)
		})
	}
}

func TestHandleError_ValidationDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleError(rec, validator.ValidationErrors{{Field: "to_month", Message: "to_month must be in YYYY-MM format"}})

	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "to_month must be in YYYY-MM format", body.Error.Details["to_month"])
}
