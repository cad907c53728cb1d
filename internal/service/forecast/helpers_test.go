package forecast

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/workforce-analytics/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-analytics/internal/domain/employee"
	"github.com/cmlabs-hris/workforce-analytics/internal/repository/memory"
	"github.com/cmlabs-hris/workforce-analytics/internal/pkg/utils"
)

// fixedNow is a Wednesday.
var fixedNow = time.Date(2026, time.March, 18, 14, 30, 0, 0, time.UTC)

func seedWorkforce(store *memory.Store, n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("emp-%02d", i)
		store.AddEmployee(employee.Employee{
			ID:         ids[i],
			Name:       fmt.Sprintf("Employee %d", i),
			Department: "Engineering",
			Role:       employee.RoleEmployee,
			IsActive:   true,
		})
	}
	return ids
}

// seedDay marks the first present ids present on date and the rest absent.
func seedDay(store *memory.Store, ids []string, date time.Time, present int) {
	for i, id := range ids {
		status := attendance.StatusAbsent
		if i < present {
			status = attendance.StatusPresent
		}
		store.AddRecord(attendance.Record{EmployeeID: id, Date: date, Status: status})
	}
}

// recentWorkdays returns the n most recent working days up to today, newest first.
func recentWorkdays(today time.Time, n int) []time.Time {
	days := make([]time.Time, 0, n)
	for d := today; len(days) < n; d = utils.AddDays(d, -1) {
		if utils.IsWorkday(d) {
			days = append(days, d)
		}
	}
	return days
}

func newTestForecastService(store *memory.Store, states *memory.ModelStateRepository) *ForecastServiceImpl {
	svc := NewForecastService(store.Attendance(), store.Employees(), states, time.UTC)
	svc.now = func() time.Time { return fixedNow }
	return svc
}
