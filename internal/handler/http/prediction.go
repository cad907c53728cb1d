package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cmlabs-hris/workforce-analytics/internal/domain/prediction"
	"github.com/cmlabs-hris/workforce-analytics/internal/handler/http/response"
	"github.com/cmlabs-hris/workforce-analytics/internal/pkg/validator"
)

const (
	defaultSummaryDays = 7
	defaultPredictDays = 7
)

type PredictionHandler interface {
	// ListPredictions returns insights for every active employee
	ListPredictions(w http.ResponseWriter, r *http.Request)
	// GetInsight returns the full insight for one employee
	GetInsight(w http.ResponseWriter, r *http.Request)
	// GetSummary returns the historical attendance summary
	GetSummary(w http.ResponseWriter, r *http.Request)
	// GetWeek returns today's status and this week's presence
	GetWeek(w http.ResponseWriter, r *http.Request)
	// GetForecast returns per-day predictions for the coming days
	GetForecast(w http.ResponseWriter, r *http.Request)
	// GetPerformance returns the 30-day performance score
	GetPerformance(w http.ResponseWriter, r *http.Request)
	// GetAccuracy returns the estimated prediction accuracy
	GetAccuracy(w http.ResponseWriter, r *http.Request)
}

type predictionHandlerImpl struct {
	predictionService prediction.PredictionService
}

func NewPredictionHandler(predictionService prediction.PredictionService) PredictionHandler {
	return &predictionHandlerImpl{predictionService: predictionService}
}

type performanceResponse struct {
	EmployeeID       string  `json:"employee_id"`
	PerformanceScore float64 `json:"performance_score"`
}

func employeeIDParam(r *http.Request) (string, error) {
	id := chi.URLParam(r, "id")
	if !validator.IsValidUUID(id) {
		return "", validator.ValidationErrors{{Field: "id", Message: "must be a valid UUID"}}
	}
	return id, nil
}

// ListPredictions handles GET /analytics/predictions
func (h *predictionHandlerImpl) ListPredictions(w http.ResponseWriter, r *http.Request) {
	insights, err := h.predictionService.AllEmployeePredictions(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, insights, &response.Meta{TotalItems: int64(len(insights))})
}

// GetInsight handles GET /analytics/employees/{id}/prediction
func (h *predictionHandlerImpl) GetInsight(w http.ResponseWriter, r *http.Request) {
	id, err := employeeIDParam(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	insight, err := h.predictionService.EmployeeInsight(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, insight)
}

// GetSummary handles GET /analytics/employees/{id}/summary?days=
func (h *predictionHandlerImpl) GetSummary(w http.ResponseWriter, r *http.Request) {
	id, err := employeeIDParam(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	days, err := validator.ParseIntInRange("days", r.URL.Query().Get("days"), defaultSummaryDays, minDays, maxDays)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	summary, err := h.predictionService.HistoricalSummary(r.Context(), id, days)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, summary)
}

// GetWeek handles GET /analytics/employees/{id}/week
func (h *predictionHandlerImpl) GetWeek(w http.ResponseWriter, r *http.Request) {
	id, err := employeeIDParam(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	status, err := h.predictionService.CurrentWeekStatus(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, status)
}

// GetForecast handles GET /analytics/employees/{id}/forecast?days=
func (h *predictionHandlerImpl) GetForecast(w http.ResponseWriter, r *http.Request) {
	id, err := employeeIDParam(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	days, err := validator.ParseIntInRange("days", r.URL.Query().Get("days"), defaultPredictDays, minDays, maxDays)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	predictions, err := h.predictionService.PredictNextDays(r.Context(), id, days)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, predictions)
}

// GetPerformance handles GET /analytics/employees/{id}/performance
func (h *predictionHandlerImpl) GetPerformance(w http.ResponseWriter, r *http.Request) {
	id, err := employeeIDParam(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	score, err := h.predictionService.PerformanceScore(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, performanceResponse{EmployeeID: id, PerformanceScore: score})
}

// GetAccuracy handles GET /analytics/employees/{id}/accuracy
func (h *predictionHandlerImpl) GetAccuracy(w http.ResponseWriter, r *http.Request) {
	id, err := employeeIDParam(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	estimate, err := h.predictionService.PredictionAccuracy(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, estimate)
}
