package prediction

import "context"

// PredictionService computes per-employee behaviour views. Unknown employees
// yield employee.ErrEmployeeNotFound.
type PredictionService interface {
	HistoricalSummary(ctx context.Context, employeeID string, days int) (*HistoricalSummary, error)
	CurrentWeekStatus(ctx context.Context, employeeID string) (*WeekStatus, error)
	WeeklyPattern(ctx context.Context, employeeID string) (WeeklyPattern, error)
	PredictNextDays(ctx context.Context, employeeID string, days int) ([]DayPrediction, error)
	PerformanceScore(ctx context.Context, employeeID string) (float64, error)
	PredictionAccuracy(ctx context.Context, employeeID string) (*AccuracyEstimate, error)

	// EmployeeInsight combines all of the above for one employee
	EmployeeInsight(ctx context.Context, employeeID string) (*EmployeeInsight, error)

	// AllEmployeePredictions returns insights for every active employee,
	// skipping employees whose computation fails
	AllEmployeePredictions(ctx context.Context) ([]EmployeeInsight, error)
}
