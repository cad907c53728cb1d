package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/workforce-analytics/internal/domain/overview"
	"github.com/cmlabs-hris/workforce-analytics/internal/handler/http/response"
	"github.com/cmlabs-hris/workforce-analytics/internal/pkg/validator"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type OverviewHandler interface {
	// GetOverview returns the company-wide rollup
	GetOverview(w http.ResponseWriter, r *http.Request)
	// ExportOverview streams the rollup as an xlsx workbook
	ExportOverview(w http.ResponseWriter, r *http.Request)
	// SearchPersonnel filters and ranks employees by attendance
	SearchPersonnel(w http.ResponseWriter, r *http.Request)
}

type overviewHandlerImpl struct {
	overviewService overview.OverviewService
}

func NewOverviewHandler(overviewService overview.OverviewService) OverviewHandler {
	return &overviewHandlerImpl{overviewService: overviewService}
}

// GetOverview handles GET /analytics/overview?days=
func (h *overviewHandlerImpl) GetOverview(w http.ResponseWriter, r *http.Request) {
	days, err := validator.ParseIntInRange("days", r.URL.Query().Get("days"), defaultRateDays, minDays, maxDays)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.overviewService.GetCompanyOverview(r.Context(), days)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ExportOverview handles GET /analytics/overview/export?days=
func (h *overviewHandlerImpl) ExportOverview(w http.ResponseWriter, r *http.Request) {
	days, err := validator.ParseIntInRange("days", r.URL.Query().Get("days"), defaultRateDays, minDays, maxDays)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	buf, filename, err := h.overviewService.ExportOverview(r.Context(), days)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.File(w, xlsxContentType, filename, buf.Bytes())
}

// SearchPersonnel handles POST /analytics/search
func (h *overviewHandlerImpl) SearchPersonnel(w http.ResponseWriter, r *http.Request) {
	var req overview.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("SearchPersonnel decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	results, err := h.overviewService.SearchPersonnel(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, results, &response.Meta{TotalItems: int64(len(results))})
}
