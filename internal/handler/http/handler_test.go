package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/workforce-analytics/internal/domain/employee"
	"github.com/cmlabs-hris/workforce-analytics/internal/domain/forecast"
	"github.com/cmlabs-hris/workforce-analytics/internal/domain/overview"
	"github.com/cmlabs-hris/workforce-analytics/internal/domain/prediction"
	"github.com/cmlabs-hris/workforce-analytics/internal/pkg/jwt"
)

const (
	handlerTestSecret = "test-secret-key-for-jwt"
	selfEmployeeID    = "0194f3a0-0000-7000-8000-000000000001"
	otherEmployeeID   = "0194f3a0-0000-7000-8000-000000000002"
)

// ---- service stubs ----

type stubForecast struct {
	result    forecast.Result
	state     *forecast.ModelState
	lastDays  int
	lastScope employee.Scope
}

func (s *stubForecast) DailyRates(_ context.Context, scope employee.Scope, days int) (*forecast.DailyRateSeries, error) {
	s.lastScope, s.lastDays = scope, days
	return &forecast.DailyRateSeries{Rates: []forecast.DailyRate{}, Denominator: 10}, nil
}

func (s *stubForecast) TrendSeries(_ context.Context, scope employee.Scope, days int) ([]forecast.TrendPoint, error) {
	s.lastScope, s.lastDays = scope, days
	return []forecast.TrendPoint{}, nil
}

func (s *stubForecast) Calculate(context.Context) forecast.Result { return s.result }

func (s *stubForecast) LoadModelState(context.Context) (*forecast.ModelState, error) {
	return s.state, nil
}

type stubTrainer struct {
	result      forecast.TrainingResult
	triggeredBy string
	lastLimit   int
}

func (s *stubTrainer) Train(_ context.Context, triggeredBy string) forecast.TrainingResult {
	s.triggeredBy = triggeredBy
	return s.result
}

func (s *stubTrainer) History(_ context.Context, limit int) ([]forecast.TrainingAuditEntry, error) {
	s.lastLimit = limit
	return []forecast.TrainingAuditEntry{}, nil
}

type stubOverview struct {
	searchErr error
	lastDays  int
	lastReq   overview.SearchRequest
}

func (s *stubOverview) GetCompanyOverview(_ context.Context, days int) (*overview.CompanyOverview, error) {
	s.lastDays = days
	return &overview.CompanyOverview{Summary: overview.Summary{TotalEmployees: 12}}, nil
}

func (s *stubOverview) SearchPersonnel(_ context.Context, req overview.SearchRequest) ([]overview.PersonnelResult, error) {
	s.lastReq = req
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return []overview.PersonnelResult{{ID: selfEmployeeID, Name: "Budi Santoso"}}, nil
}

func (s *stubOverview) ExportOverview(_ context.Context, days int) (*bytes.Buffer, string, error) {
	s.lastDays = days
	return bytes.NewBufferString("xlsx-bytes"), "attendance-overview-2026-03-18.xlsx", nil
}

type stubPrediction struct {
	lastDays int
	failWith error
}

func (s *stubPrediction) check(id string) error {
	if s.failWith != nil {
		return s.failWith
	}
	if id != selfEmployeeID && id != otherEmployeeID {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

func (s *stubPrediction) HistoricalSummary(_ context.Context, id string, days int) (*prediction.HistoricalSummary, error) {
	s.lastDays = days
	if err := s.check(id); err != nil {
		return nil, err
	}
	return &prediction.HistoricalSummary{TotalDays: days + 1, PresentDays: 3}, nil
}

func (s *stubPrediction) CurrentWeekStatus(_ context.Context, id string) (*prediction.WeekStatus, error) {
	if err := s.check(id); err != nil {
		return nil, err
	}
	return &prediction.WeekStatus{TodayStatus: prediction.NotMarked, WeekStart: "2026-03-16"}, nil
}

func (s *stubPrediction) WeeklyPattern(_ context.Context, id string) (prediction.WeeklyPattern, error) {
	return prediction.WeeklyPattern{}, s.check(id)
}

func (s *stubPrediction) PredictNextDays(_ context.Context, id string, days int) ([]prediction.DayPrediction, error) {
	s.lastDays = days
	if err := s.check(id); err != nil {
		return nil, err
	}
	return make([]prediction.DayPrediction, days), nil
}

func (s *stubPrediction) PerformanceScore(_ context.Context, id string) (float64, error) {
	if err := s.check(id); err != nil {
		return 0, err
	}
	return 72.5, nil
}

func (s *stubPrediction) PredictionAccuracy(_ context.Context, id string) (*prediction.AccuracyEstimate, error) {
	if err := s.check(id); err != nil {
		return nil, err
	}
	return &prediction.AccuracyEstimate{Accuracy: 85, BaseAccuracy: 85, IsEstimate: true}, nil
}

func (s *stubPrediction) EmployeeInsight(_ context.Context, id string) (*prediction.EmployeeInsight, error) {
	if err := s.check(id); err != nil {
		return nil, err
	}
	return &prediction.EmployeeInsight{EmployeeID: id}, nil
}

func (s *stubPrediction) AllEmployeePredictions(context.Context) ([]prediction.EmployeeInsight, error) {
	return []prediction.EmployeeInsight{{EmployeeID: selfEmployeeID}, {EmployeeID: otherEmployeeID}}, nil
}

// ---- harness ----

type testServer struct {
	router     *chi.Mux
	jwt        jwt.Service
	forecast   *stubForecast
	trainer    *stubTrainer
	overview   *stubOverview
	prediction *stubPrediction
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	ts := &testServer{
		jwt:        jwt.NewJWTService(handlerTestSecret, "1h"),
		forecast:   &stubForecast{result: forecast.Result{Percentage: 80, Confidence: 87, Trend: forecast.TrendStable, DataPoints: 20}},
		trainer:    &stubTrainer{},
		overview:   &stubOverview{},
		prediction: &stubPrediction{},
	}
	ts.router = NewRouter(
		RouterConfig{Env: "test", Version: "test", AllowedOrigins: []string{"http://localhost:3000"}, LogLevel: slog.LevelError},
		ts.jwt,
		NewAnalyticsHandler(ts.forecast, ts.trainer),
		NewOverviewHandler(ts.overview),
		NewPredictionHandler(ts.prediction),
	)
	return ts
}

func (ts *testServer) token(t *testing.T, employeeID string, role employee.Role) string {
	t.Helper()
	token, _, err := ts.jwt.GenerateAccessToken("user-"+string(role), employeeID, role)
	require.NoError(t, err)
	return token
}

func (ts *testServer) do(t *testing.T, method, path, token string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
	Meta *struct {
		TotalItems int64 `json:"total_items"`
	} `json:"meta"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

var errBoom = errors.New("boom")
