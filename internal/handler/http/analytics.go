package http

import (
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/workforce-analytics/internal/domain/employee"
	"github.com/cmlabs-hris/workforce-analytics/internal/domain/forecast"
	"github.com/cmlabs-hris/workforce-analytics/internal/handler/http/response"
	"github.com/cmlabs-hris/workforce-analytics/internal/pkg/jwt"
	"github.com/cmlabs-hris/workforce-analytics/internal/pkg/validator"
)

const (
	minDays            = 1
	maxDays            = 365
	defaultRateDays    = 30
	defaultHistorySize = 10
	maxHistorySize     = 100
)

type AnalyticsHandler interface {
	// GetForecast returns the blended next-day attendance forecast
	GetForecast(w http.ResponseWriter, r *http.Request)
	// GetDailyRates returns company attendance rates for recent working days
	GetDailyRates(w http.ResponseWriter, r *http.Request)
	// GetTrends returns calendar-day rates with a 7-day moving average
	GetTrends(w http.ResponseWriter, r *http.Request)
	// GetModel returns the persisted model state
	GetModel(w http.ResponseWriter, r *http.Request)
	// TrainModel runs a training pass
	TrainModel(w http.ResponseWriter, r *http.Request)
	// GetModelHistory lists recent training runs
	GetModelHistory(w http.ResponseWriter, r *http.Request)
}

type analyticsHandlerImpl struct {
	forecastService forecast.ForecastService
	trainerService  forecast.TrainerService
}

func NewAnalyticsHandler(forecastService forecast.ForecastService, trainerService forecast.TrainerService) AnalyticsHandler {
	return &analyticsHandlerImpl{
		forecastService: forecastService,
		trainerService:  trainerService,
	}
}

// GetForecast handles GET /analytics/forecast
func (h *analyticsHandlerImpl) GetForecast(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.forecastService.Calculate(r.Context()))
}

// GetDailyRates handles GET /analytics/daily-rates?days=
func (h *analyticsHandlerImpl) GetDailyRates(w http.ResponseWriter, r *http.Request) {
	days, err := validator.ParseIntInRange("days", r.URL.Query().Get("days"), defaultRateDays, minDays, maxDays)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	series, err := h.forecastService.DailyRates(r.Context(), employee.WorkforceScope, days)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, series)
}

// GetTrends handles GET /analytics/trends?days=
func (h *analyticsHandlerImpl) GetTrends(w http.ResponseWriter, r *http.Request) {
	days, err := validator.ParseIntInRange("days", r.URL.Query().Get("days"), defaultRateDays, minDays, maxDays)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	points, err := h.forecastService.TrendSeries(r.Context(), employee.WorkforceScope, days)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, points)
}

// GetModel handles GET /analytics/model
func (h *analyticsHandlerImpl) GetModel(w http.ResponseWriter, r *http.Request) {
	state, err := h.forecastService.LoadModelState(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, forecast.ModelStatusResponse{Trained: state != nil, State: state})
}

// TrainModel handles POST /analytics/model/train
func (h *analyticsHandlerImpl) TrainModel(w http.ResponseWriter, r *http.Request) {
	claims, err := jwt.ClaimsFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result := h.trainerService.Train(r.Context(), claims.UserID)
	if !result.Success {
		status := http.StatusUnprocessableEntity
		if result.Conflict {
			status = http.StatusConflict
		}
		slog.Warn("Model training failed", "triggered_by", claims.UserID, "message", result.Message)
		response.Failure(w, status, result.Message, result)
		return
	}

	response.SuccessWithMessage(w, "Model trained successfully", result)
}

// GetModelHistory handles GET /analytics/model/history?limit=
func (h *analyticsHandlerImpl) GetModelHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := validator.ParseIntInRange("limit", r.URL.Query().Get("limit"), defaultHistorySize, 1, maxHistorySize)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	entries, err := h.trainerService.History(r.Context(), limit)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, entries)
}
