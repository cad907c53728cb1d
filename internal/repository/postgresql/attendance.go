package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/workforce-analytics/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-analytics/internal/domain/employee"
	"github.com/cmlabs-hris/workforce-analytics/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// scopeFilter restricts the employees alias e to a scope bound at $1 (role,
// empty for any) and $2 (active only).
const scopeFilter = `($1::text = '' OR e.role = $1) AND (NOT $2::boolean OR e.is_active)`

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

func statusStrings(statuses []attendance.Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func scanDailyCounts(rows pgx.Rows) ([]attendance.DailyCount, error) {
	defer rows.Close()

	var counts []attendance.DailyCount
	for rows.Next() {
		var c attendance.DailyCount
		if err := rows.Scan(&c.Date, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan daily count: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate daily counts: %w", err)
	}
	return counts, nil
}

// CountByDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) CountByDate(ctx context.Context, scope employee.Scope, statuses []attendance.Status, from, to time.Time) ([]attendance.DailyCount, error) {
	if to.Before(from) {
		return nil, attendance.ErrInvalidDateRange
	}

	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ar.date, COUNT(*)
		FROM attendance_records ar
		INNER JOIN employees e ON ar.employee_id = e.id
		WHERE ` + scopeFilter + `
		  AND ar.status = ANY($3)
		  AND ar.date BETWEEN $4 AND $5
		GROUP BY ar.date
		ORDER BY ar.date
	`

	rows, err := q.Query(ctx, query, string(scope.Role), scope.ActiveOnly, statusStrings(statuses), from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to count attendance by date: %w", err)
	}
	return scanDailyCounts(rows)
}

// CountByDateAll implements attendance.AttendanceRepository.
func (a *attendanceRepository) CountByDateAll(ctx context.Context, scope employee.Scope, statuses []attendance.Status) ([]attendance.DailyCount, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ar.date, COUNT(*)
		FROM attendance_records ar
		INNER JOIN employees e ON ar.employee_id = e.id
		WHERE ` + scopeFilter + `
		  AND ar.status = ANY($3)
		GROUP BY ar.date
		ORDER BY ar.date
	`

	rows, err := q.Query(ctx, query, string(scope.Role), scope.ActiveOnly, statusStrings(statuses))
	if err != nil {
		return nil, fmt.Errorf("failed to count attendance history: %w", err)
	}
	return scanDailyCounts(rows)
}

// StatusTotals implements attendance.AttendanceRepository.
func (a *attendanceRepository) StatusTotals(ctx context.Context, scope employee.Scope, from, to time.Time) (attendance.StatusTotals, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT
			COUNT(*) FILTER (WHERE ar.status IN ('present', 'wfh', 'client')),
			COUNT(*) FILTER (WHERE ar.status = 'absent'),
			COUNT(*) FILTER (WHERE ar.status = 'leave'),
			COUNT(*) FILTER (WHERE ar.is_half_day)
		FROM attendance_records ar
		INNER JOIN employees e ON ar.employee_id = e.id
		WHERE ` + scopeFilter + `
		  AND ar.date BETWEEN $3 AND $4
	`

	var totals attendance.StatusTotals
	err := q.QueryRow(ctx, query, string(scope.Role), scope.ActiveOnly, from, to).Scan(
		&totals.Present, &totals.Absent, &totals.Leave, &totals.HalfDay,
	)
	if err != nil {
		return attendance.StatusTotals{}, fmt.Errorf("failed to get status totals: %w", err)
	}
	return totals, nil
}

// TallyByEmployee implements attendance.AttendanceRepository.
func (a *attendanceRepository) TallyByEmployee(ctx context.Context, scope employee.Scope, from, to time.Time) ([]attendance.EmployeeTally, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ar.employee_id::text,
			COUNT(*) FILTER (WHERE ar.status IN ('present', 'wfh', 'client')),
			COUNT(*) FILTER (WHERE ar.status = 'absent'),
			COUNT(*) FILTER (WHERE ar.status = 'leave'),
			COUNT(*) FILTER (WHERE ar.type = 'wfh')
		FROM attendance_records ar
		INNER JOIN employees e ON ar.employee_id = e.id
		WHERE ` + scopeFilter + `
		  AND ar.date BETWEEN $3 AND $4
		GROUP BY ar.employee_id
		ORDER BY ar.employee_id
	`

	rows, err := q.Query(ctx, query, string(scope.Role), scope.ActiveOnly, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to tally attendance by employee: %w", err)
	}
	defer rows.Close()

	var tallies []attendance.EmployeeTally
	for rows.Next() {
		var t attendance.EmployeeTally
		if err := rows.Scan(&t.EmployeeID, &t.Present, &t.Absent, &t.Leave, &t.WFH); err != nil {
			return nil, fmt.Errorf("failed to scan employee tally: %w", err)
		}
		tallies = append(tallies, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate employee tallies: %w", err)
	}
	return tallies, nil
}

// CheckInTimes implements attendance.AttendanceRepository.
func (a *attendanceRepository) CheckInTimes(ctx context.Context, scope employee.Scope, from, to time.Time) ([]attendance.TimeOfDay, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ar.check_in_time
		FROM attendance_records ar
		INNER JOIN employees e ON ar.employee_id = e.id
		WHERE ` + scopeFilter + `
		  AND ar.date BETWEEN $3 AND $4
		  AND ar.check_in_time IS NOT NULL
	`

	rows, err := q.Query(ctx, query, string(scope.Role), scope.ActiveOnly, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to get check-in times: %w", err)
	}
	defer rows.Close()

	var times []attendance.TimeOfDay
	for rows.Next() {
		var t pgtype.Time
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("failed to scan check-in time: %w", err)
		}
		if tod := timeOfDay(t); tod != nil {
			times = append(times, *tod)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate check-in times: %w", err)
	}
	return times, nil
}

// ListByEmployee implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT id::text, employee_id::text, date, status, type,
			   check_in_time, check_out_time, total_hours, is_half_day
		FROM attendance_records
		WHERE employee_id = $1
		  AND date BETWEEN $2 AND $3
		ORDER BY date
	`

	rows, err := q.Query(ctx, query, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance records: %w", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		var (
			r                 attendance.Record
			checkIn, checkOut pgtype.Time
		)
		err := rows.Scan(
			&r.ID, &r.EmployeeID, &r.Date, &r.Status, &r.Type,
			&checkIn, &checkOut, &r.TotalHours, &r.IsHalfDay,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		r.CheckInTime = timeOfDay(checkIn)
		r.CheckOutTime = timeOfDay(checkOut)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attendance records: %w", err)
	}
	return records, nil
}

// timeOfDay converts a TIME column; NULL yields nil.
func timeOfDay(t pgtype.Time) *attendance.TimeOfDay {
	if !t.Valid {
		return nil
	}
	seconds := int(t.Microseconds / 1_000_000)
	return &attendance.TimeOfDay{
		Hour:   seconds / 3600,
		Minute: seconds % 3600 / 60,
		Second: seconds % 60,
	}
}
