package forecast

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/cmlabs-hris/workforce-analytics/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-analytics/internal/domain/employee"
	"github.com/cmlabs-hris/workforce-analytics/internal/domain/forecast"
	"github.com/cmlabs-hris/workforce-analytics/internal/pkg/utils"
)

const (
	forecastWindowDays = 30 // working days feeding the forecast
	recentWindow       = 7
	minForecastPoints  = 7
	minTrendPoints     = 14
	trendThreshold     = 0.02 // relative change between the last two weeks
	lowDataConfidence  = 30
	maxConfidence      = 99
)

type ForecastServiceImpl struct {
	attendanceRepo attendance.AttendanceRepository
	employeeRepo   employee.EmployeeRepository
	modelStates    forecast.ModelStateRepository
	loc            *time.Location
	now            func() time.Time
}

func NewForecastService(
	attendanceRepo attendance.AttendanceRepository,
	employeeRepo employee.EmployeeRepository,
	modelStates forecast.ModelStateRepository,
	loc *time.Location,
) *ForecastServiceImpl {
	return &ForecastServiceImpl{
		attendanceRepo: attendanceRepo,
		employeeRepo:   employeeRepo,
		modelStates:    modelStates,
		loc:            loc,
		now:            time.Now,
	}
}

func (s *ForecastServiceImpl) today() time.Time {
	return utils.Today(s.now(), s.loc)
}

// Calculate implements forecast.ForecastService.
func (s *ForecastServiceImpl) Calculate(ctx context.Context) forecast.Result {
	series, err := s.DailyRates(ctx, employee.WorkforceScope, forecastWindowDays)
	if err != nil {
		slog.Error("Failed to load daily rates for forecast", "error", err)
		return forecast.Result{Trend: forecast.TrendStable, LowConfidence: true}
	}

	rates := excludeZeroRates(series.Rates)
	if len(rates) < minForecastPoints {
		return computeForecast(rates, nil)
	}

	model, err := s.modelStates.Load(ctx)
	if err != nil {
		slog.Warn("Failed to load forecast model state, blending without it", "error", err)
		model = nil
	}

	return computeForecast(rates, model)
}

// LoadModelState implements forecast.ForecastService.
func (s *ForecastServiceImpl) LoadModelState(ctx context.Context) (*forecast.ModelState, error) {
	return s.modelStates.Load(ctx)
}

// excludeZeroRates drops zero-rate days. A zero rate on a working day is
// treated as a holiday or missing data, never as real zero attendance.
func excludeZeroRates(series []forecast.DailyRate) []float64 {
	rates := make([]float64, 0, len(series))
	for _, d := range series {
		if d.Rate > 0 {
			rates = append(rates, d.Rate)
		}
	}
	return rates
}

// computeForecast blends recent and older averages, optionally biased by the
// trained model. Inputs are oldest first and already anomaly-filtered.
func computeForecast(rates []float64, model *forecast.ModelState) forecast.Result {
	n := len(rates)
	if n == 0 {
		return forecast.Result{Trend: forecast.TrendStable, LowConfidence: true}
	}
	if n < minForecastPoints {
		return forecast.Result{
			Percentage:    utils.Round(utils.Mean(rates), 1),
			Confidence:    lowDataConfidence,
			Trend:         forecast.TrendStable,
			DataPoints:    n,
			LowConfidence: true,
		}
	}

	split := n - recentWindow
	recentAvg := utils.Mean(rates[split:])
	olderAvg := recentAvg
	if split > 0 {
		olderAvg = utils.Mean(rates[:split])
	}

	bonus := 1.0
	var value float64
	if model != nil {
		bonus = 1 + model.StabilityFactor*0.2
		value = 0.7*recentAvg + 0.2*olderAvg + 0.1*model.AverageRate
	} else {
		value = 0.8*recentAvg + 0.2*olderAvg
	}

	consistency := math.Max(0, 100-2*utils.SampleStdDev(rates))
	abundance := math.Min(float64(n)/forecastWindowDays, 1)
	confidence := math.Min(maxConfidence, (0.6*consistency+0.4*abundance*100)*bonus)

	return forecast.Result{
		Percentage:   utils.Round(utils.Clamp(value, 0, 100), 1),
		Confidence:   int(utils.Round(utils.Clamp(confidence, 0, maxConfidence), 0)),
		Trend:        detectTrend(rates),
		DataPoints:   n,
		ModelApplied: model != nil,
	}
}

// detectTrend compares the mean of the last week with the week before.
func detectTrend(rates []float64) forecast.Trend {
	n := len(rates)
	if n < minTrendPoints {
		return forecast.TrendStable
	}

	current := utils.Mean(rates[n-recentWindow:])
	previous := utils.Mean(rates[n-2*recentWindow : n-recentWindow])

	switch {
	case current > previous*(1+trendThreshold):
		return forecast.TrendUp
	case current < previous*(1-trendThreshold):
		return forecast.TrendDown
	default:
		return forecast.TrendStable
	}
}
