package postgresql_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/workforce-analytics/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-analytics/internal/domain/employee"
	"github.com/cmlabs-hris/workforce-analytics/internal/domain/forecast"
	"github.com/cmlabs-hris/workforce-analytics/internal/domain/leave"
	"github.com/cmlabs-hris/workforce-analytics/internal/repository/postgresql"
)

var (
	monday  = time.Date(2026, time.March, 16, 0, 0, 0, 0, time.UTC)
	tuesday = monday.AddDate(0, 0, 1)
)

func strPtr(s string) *string { return &s }

func TestAttendanceRepository_Aggregates(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()

	alice := setup.InsertEmployee(t, "Alice", "Engineering", "employee", true)
	bob := setup.InsertEmployee(t, "Bob", "Sales", "employee", true)
	mgr := setup.InsertEmployee(t, "Maria", "Sales", "manager", true)
	gone := setup.InsertEmployee(t, "Gone", "Sales", "employee", false)

	setup.InsertRecord(t, alice, monday, "present", "office", strPtr("08:45:00"), "8.50")
	setup.InsertRecord(t, bob, monday, "wfh", "wfh", strPtr("09:31:00"), "7.25")
	setup.InsertRecord(t, mgr, monday, "present", "office", strPtr("07:00:00"), "9.00")
	setup.InsertRecord(t, gone, monday, "present", "office", nil, "0")
	setup.InsertRecord(t, alice, tuesday, "absent", "office", nil, "0")
	setup.InsertRecord(t, bob, tuesday, "leave", "office", nil, "0")

	repo := postgresql.NewAttendanceRepository(setup.DB)

	counts, err := repo.CountByDate(ctx, employee.WorkforceScope, attendance.PresentStatuses, monday, tuesday)
	require.NoError(t, err)
	require.Len(t, counts, 1)
	assert.True(t, counts[0].Date.Equal(monday))
	assert.Equal(t, int64(2), counts[0].Count)

	all, err := repo.CountByDateAll(ctx, employee.Scope{}, attendance.PresentStatuses)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, int64(4), all[0].Count)

	_, err = repo.CountByDate(ctx, employee.WorkforceScope, attendance.PresentStatuses, tuesday, monday)
	assert.ErrorIs(t, err, attendance.ErrInvalidDateRange)

	totals, err := repo.StatusTotals(ctx, employee.WorkforceScope, monday, tuesday)
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusTotals{Present: 2, Absent: 1, Leave: 1}, totals)

	tallies, err := repo.TallyByEmployee(ctx, employee.WorkforceScope, monday, tuesday)
	require.NoError(t, err)
	require.Len(t, tallies, 2)
	byID := map[string]attendance.EmployeeTally{}
	for _, tl := range tallies {
		byID[tl.EmployeeID] = tl
	}
	assert.Equal(t, attendance.EmployeeTally{EmployeeID: bob, Present: 1, Leave: 1, WFH: 1}, byID[bob])

	times, err := repo.CheckInTimes(ctx, employee.WorkforceScope, monday, tuesday)
	require.NoError(t, err)
	assert.ElementsMatch(t, []attendance.TimeOfDay{{Hour: 8, Minute: 45}, {Hour: 9, Minute: 31}}, times)

	records, err := repo.ListByEmployee(ctx, alice, monday, tuesday)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, attendance.StatusPresent, records[0].Status)
	assert.True(t, decimal.RequireFromString("8.5").Equal(records[0].TotalHours))
	require.NotNil(t, records[0].CheckInTime)
	assert.Equal(t, "08:45:00", records[0].CheckInTime.String())
	assert.Nil(t, records[1].CheckInTime)
}

func TestEmployeeRepository(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()

	setup.InsertEmployee(t, "Alice Wong", "Engineering", "employee", true)
	setup.InsertEmployee(t, "Bob 100%", "Sales", "employee", true)
	setup.InsertEmployee(t, "Carol", "Sales", "admin", true)
	setup.InsertEmployee(t, "Dan", "Sales", "employee", false)

	repo := postgresql.NewEmployeeRepository(setup.DB)

	n, err := repo.Count(ctx, employee.WorkforceScope)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = repo.Count(ctx, employee.ActiveScope)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	found, err := repo.Search(ctx, employee.WorkforceScope, employee.SearchFilter{Query: "wONG"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Alice Wong", found[0].Name)

	found, err = repo.Search(ctx, employee.WorkforceScope, employee.SearchFilter{Query: "%"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Bob 100%", found[0].Name)

	found, err = repo.Search(ctx, employee.WorkforceScope, employee.SearchFilter{Department: "Sales"})
	require.NoError(t, err)
	assert.Len(t, found, 1)

	got, err := repo.GetByID(ctx, found[0].ID)
	require.NoError(t, err)
	assert.Equal(t, employee.RoleEmployee, got.Role)

	_, err = repo.GetByID(ctx, "0194f3a0-0000-7000-8000-0000000000ff")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestLeaveRequestRepository(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()

	emp := setup.InsertEmployee(t, "Alice", "Engineering", "employee", true)
	setup.InsertRequest(t, emp, "full_day", monday.AddDate(0, 0, -3), monday, "approved")
	setup.InsertRequest(t, emp, "wfh", tuesday, tuesday, "approved")
	setup.InsertRequest(t, emp, "full_day", tuesday, tuesday, "pending")

	repo := postgresql.NewLeaveRequestRepository(setup.DB)

	requests, err := repo.ListApproved(ctx, emp, monday, tuesday)
	require.NoError(t, err)
	require.Len(t, requests, 2)
	assert.Equal(t, leave.RequestTypeFullDay, requests[0].RequestType)
	assert.True(t, requests[0].Covers(monday))

	n, err := repo.CountApprovedStarting(ctx, emp, leave.RequestTypeFullDay, monday, tuesday)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = repo.CountApprovedStarting(ctx, emp, leave.RequestTypeWFH, monday, tuesday)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestModelStateRepository_CompareAndSet(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewModelStateRepository(setup.DB)

	state, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, state)

	trained := time.Date(2026, time.March, 18, 2, 0, 0, 0, time.UTC)
	saved, err := repo.Save(ctx, forecast.ModelState{
		AverageRate:     81.25,
		StabilityFactor: 0.9123,
		DataPoints:      40,
		LastTrained:     trained,
		Version:         forecast.ModelVersion,
		Logs:            []forecast.LogEntry{{Timestamp: trained, Message: "Initializing model training sequence..."}},
	}, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), saved.Revision)

	_, err = repo.Save(ctx, forecast.ModelState{Version: forecast.ModelVersion}, 0)
	assert.ErrorIs(t, err, forecast.ErrRevisionConflict)

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, 81.25, loaded.AverageRate)
	assert.Equal(t, int64(1), loaded.Revision)
	require.Len(t, loaded.Logs, 1)
	assert.True(t, loaded.LastTrained.Equal(trained))

	// concurrent writers expecting the same revision: exactly one wins
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners int
	)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.Save(ctx, forecast.ModelState{Version: forecast.ModelVersion}, 1); err == nil {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, winners)
}

func TestTrainingAuditRepository(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewTrainingAuditRepository(setup.DB)

	base := time.Date(2026, time.March, 18, 1, 0, 0, 0, time.UTC)
	for i, id := range []string{
		"0194f3a0-0000-7000-8000-000000000001",
		"0194f3a0-0000-7000-8000-000000000002",
		"0194f3a0-0000-7000-8000-000000000003",
	} {
		_, err := repo.Append(ctx, forecast.TrainingAuditEntry{
			ID:          id,
			TriggeredBy: "cron",
			DataPoints:  10 + i,
			Logs:        []forecast.LogEntry{},
			CreatedAt:   base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}

	entries, err := repo.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 12, entries[0].DataPoints)
	assert.Equal(t, 11, entries[1].DataPoints)
}
