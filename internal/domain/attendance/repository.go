package attendance

import (
	"context"
	"time"

	"github.com/cmlabs-hris/workforce-analytics/internal/domain/employee"
)

// AttendanceRepository is the read side of the attendance store. Every
// company-wide aggregate takes the employee scope explicitly so numerators
// and denominators are always drawn from the same population.
// Date bounds are inclusive civil dates.
type AttendanceRepository interface {
	// CountByDate returns, per date in [from, to], the number of records in scope whose status is in statuses
	CountByDate(ctx context.Context, scope employee.Scope, statuses []Status, from, to time.Time) ([]DailyCount, error)

	// CountByDateAll is CountByDate over the entire history
	CountByDateAll(ctx context.Context, scope employee.Scope, statuses []Status) ([]DailyCount, error)

	// StatusTotals returns present/absent/leave/half-day totals for the window
	StatusTotals(ctx context.Context, scope employee.Scope, from, to time.Time) (StatusTotals, error)

	// TallyByEmployee returns per-employee counts for the window; employees without records are omitted
	TallyByEmployee(ctx context.Context, scope employee.Scope, from, to time.Time) ([]EmployeeTally, error)

	// CheckInTimes returns every recorded check-in time in the window
	CheckInTimes(ctx context.Context, scope employee.Scope, from, to time.Time) ([]TimeOfDay, error)

	// ListByEmployee returns one employee's records in the window ordered by date
	ListByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]Record, error)
}
