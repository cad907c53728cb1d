package forecast

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/cmlabs-hris/workforce-analytics/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-analytics/internal/domain/employee"
	"github.com/cmlabs-hris/workforce-analytics/internal/domain/forecast"
	"github.com/cmlabs-hris/workforce-analytics/internal/pkg/utils"
)

// lookbackLimitDays bounds the backward scan for working days.
const lookbackLimitDays = 90

// movingAvgWindow is the trend line's moving-average width, current day included.
const movingAvgWindow = 7

// rateOf converts a present count into a percentage of the denominator.
func rateOf(present, denominator int64) float64 {
	if denominator <= 0 {
		return 0
	}
	return utils.Clamp(utils.Round(utils.Percent(float64(present), float64(denominator)), 1), 0, 100)
}

// presentCountsByDate indexes present counts of [from, to] by YYYY-MM-DD.
func (s *ForecastServiceImpl) presentCountsByDate(ctx context.Context, scope employee.Scope, from, to time.Time) (map[string]int64, error) {
	counts, err := s.attendanceRepo.CountByDate(ctx, scope, attendance.PresentStatuses, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to count present records: %w", err)
	}

	byDate := make(map[string]int64, len(counts))
	for _, c := range counts {
		byDate[utils.FormatDate(c.Date)] = c.Count
	}
	return byDate, nil
}

// DailyRates implements forecast.ForecastService.
func (s *ForecastServiceImpl) DailyRates(ctx context.Context, scope employee.Scope, days int) (*forecast.DailyRateSeries, error) {
	if days <= 0 {
		return &forecast.DailyRateSeries{Rates: []forecast.DailyRate{}}, nil
	}

	denominator, err := s.employeeRepo.Count(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to count employees: %w", err)
	}

	today := s.today()
	counts, err := s.presentCountsByDate(ctx, scope, utils.AddDays(today, -lookbackLimitDays), today)
	if err != nil {
		return nil, err
	}

	rates := make([]forecast.DailyRate, 0, days)
	for current := today; len(rates) < days; current = utils.AddDays(current, -1) {
		if utils.DaysBetween(current, today) > lookbackLimitDays {
			break
		}
		if !utils.IsWorkday(current) {
			continue
		}
		key := utils.FormatDate(current)
		rates = append(rates, forecast.DailyRate{
			Date:         key,
			Rate:         rateOf(counts[key], denominator),
			PresentCount: counts[key],
		})
	}
	slices.Reverse(rates)

	return &forecast.DailyRateSeries{
		Rates:       rates,
		Denominator: denominator,
		NoData:      denominator == 0,
	}, nil
}

// TrendSeries implements forecast.ForecastService.
func (s *ForecastServiceImpl) TrendSeries(ctx context.Context, scope employee.Scope, days int) ([]forecast.TrendPoint, error) {
	if days <= 0 {
		return []forecast.TrendPoint{}, nil
	}

	denominator, err := s.employeeRepo.Count(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to count employees: %w", err)
	}

	today := s.today()
	start := utils.AddDays(today, -(days - 1))
	counts, err := s.presentCountsByDate(ctx, scope, start, today)
	if err != nil {
		return nil, err
	}

	points := make([]forecast.TrendPoint, 0, days)
	for i := 0; i < days; i++ {
		key := utils.FormatDate(utils.AddDays(start, i))
		rate := rateOf(counts[key], denominator)

		window := []float64{rate}
		for j := len(points) - 1; j >= 0 && len(window) < movingAvgWindow; j-- {
			window = append(window, points[j].Rate)
		}

		points = append(points, forecast.TrendPoint{
			Date:         key,
			Rate:         rate,
			MovingAvg:    utils.Round(utils.Mean(window), 1),
			PresentCount: counts[key],
		})
	}

	return points, nil
}
