package forecast

import (
	"context"

	"github.com/cmlabs-hris/workforce-analytics/internal/domain/employee"
)

// ForecastService computes company-wide rates and the short-horizon forecast.
type ForecastService interface {
	// DailyRates returns the rates of the most recent days working days
	DailyRates(ctx context.Context, scope employee.Scope, days int) (*DailyRateSeries, error)

	// TrendSeries returns one point per calendar day over the last days days
	TrendSeries(ctx context.Context, scope employee.Scope, days int) ([]TrendPoint, error)

	// Calculate never fails; data problems degrade to a low-confidence zero result
	Calculate(ctx context.Context) Result

	// LoadModelState returns nil when no model has been trained
	LoadModelState(ctx context.Context) (*ModelState, error)
}

// TrainerService refines and persists the stability model.
type TrainerService interface {
	// Train always returns a result; failures are reported in it
	Train(ctx context.Context, triggeredBy string) TrainingResult

	// History returns the latest training runs, newest first
	History(ctx context.Context, limit int) ([]TrainingAuditEntry, error)
}
