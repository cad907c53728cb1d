package overview

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/cmlabs-hris/workforce-analytics/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-analytics/internal/domain/employee"
	"github.com/cmlabs-hris/workforce-analytics/internal/domain/forecast"
	"github.com/cmlabs-hris/workforce-analytics/internal/domain/overview"
	"github.com/cmlabs-hris/workforce-analytics/internal/pkg/utils"
	"github.com/cmlabs-hris/workforce-analytics/internal/pkg/validator"
	"github.com/cmlabs-hris/workforce-analytics/internal/repository/memory"
)

// Wednesday 18 March 2026.
var (
	fixedNow = time.Date(2026, time.March, 18, 16, 0, 0, 0, time.UTC)
	today    = utils.DateOf(fixedNow)
)

type fakeForecast struct {
	trends []forecast.TrendPoint
	result forecast.Result
	err    error
}

func (f *fakeForecast) DailyRates(context.Context, employee.Scope, int) (*forecast.DailyRateSeries, error) {
	return &forecast.DailyRateSeries{}, nil
}

func (f *fakeForecast) TrendSeries(context.Context, employee.Scope, int) ([]forecast.TrendPoint, error) {
	return f.trends, f.err
}

func (f *fakeForecast) Calculate(context.Context) forecast.Result {
	return f.result
}

func (f *fakeForecast) LoadModelState(context.Context) (*forecast.ModelState, error) {
	return nil, nil
}

type deptSeed struct {
	name      string
	employees int
	present   int // of the last 10 days
	checkIn   string
	recType   attendance.Type
}

// seedCompany fills the last ten days for each department. Remaining days are absences.
func seedCompany(store *memory.Store, depts []deptSeed) {
	for _, d := range depts {
		for i := 0; i < d.employees; i++ {
			id := fmt.Sprintf("%s-%d", d.name, i)
			store.AddEmployee(employee.Employee{
				ID:         id,
				Name:       fmt.Sprintf("%s Person %d", d.name, i),
				Username:   fmt.Sprintf("%s%d", d.name, i),
				Email:      fmt.Sprintf("%s%d@example.com", d.name, i),
				Department: d.name,
				Role:       employee.RoleEmployee,
				IsActive:   true,
			})
			for day := 0; day < 10; day++ {
				rec := attendance.Record{EmployeeID: id, Date: utils.AddDays(today, -day), Status: attendance.StatusAbsent}
				if day < d.present {
					rec.Status = attendance.StatusPresent
					rec.Type = d.recType
					if d.checkIn != "" {
						t, _ := attendance.ParseTimeOfDay(d.checkIn)
						rec.CheckInTime = &t
					}
				}
				store.AddRecord(rec)
			}
		}
	}
}

func newTestOverviewService(store *memory.Store, fc forecast.ForecastService) *OverviewServiceImpl {
	svc := NewOverviewService(store.Attendance(), store.Employees(), fc, time.UTC)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func trendPoint(date string, rate float64, count int64) forecast.TrendPoint {
	return forecast.TrendPoint{Date: date, Rate: rate, PresentCount: count}
}

func newCompanyFixture() (*memory.Store, *fakeForecast) {
	store := memory.NewStore()
	seedCompany(store, []deptSeed{
		{name: "Engineering", employees: 5, present: 10, checkIn: "08:10"},
		{name: "Sales", employees: 5, present: 4, checkIn: "10:00"},
		{name: "HR", employees: 2, present: 8, recType: attendance.TypeWFH},
		{name: "Ops", employees: 1, present: 7},
	})
	store.AddEmployee(employee.Employee{ID: "floater", Name: "Floater", Role: employee.RoleEmployee, IsActive: true})
	// outside the workforce scope
	store.AddEmployee(employee.Employee{ID: "boss", Name: "Boss", Department: "Sales", Role: employee.RoleManager, IsActive: true})
	store.AddRecord(attendance.Record{EmployeeID: "boss", Date: today, Status: attendance.StatusPresent})

	fc := &fakeForecast{
		trends: []forecast.TrendPoint{
			trendPoint("2026-03-09", 80, 8),
			trendPoint("2026-03-10", 60, 6),
			trendPoint("2026-03-11", 0, 0),
			trendPoint("2026-03-12", 90, 9),
			trendPoint("2026-03-13", 76, 8),
		},
		result: forecast.Result{Percentage: 71.2, Confidence: 80, Trend: forecast.TrendUp, DataPoints: 20},
	}
	return store, fc
}

func departmentNames(stats []overview.DepartmentStat) []string {
	names := make([]string, 0, len(stats))
	for _, d := range stats {
		names = append(names, d.Name)
	}
	return names
}

func TestGetCompanyOverview(t *testing.T) {
	store, fc := newCompanyFixture()

	got, err := newTestOverviewService(store, fc).GetCompanyOverview(context.Background(), 10)
	require.NoError(t, err)

	assert.Equal(t, []string{"Engineering", "HR", "Ops", "Sales"}, departmentNames(got.Departments))
	assert.Equal(t, []string{"Engineering", "HR", "Ops"}, departmentNames(got.TopDepartments))
	assert.Equal(t, []string{"HR", "Ops", "Sales"}, departmentNames(got.BottomDepartments))
	assert.Equal(t, []string{"Sales"}, departmentNames(got.AtRisk))

	sales := got.Departments[3]
	assert.Equal(t, 40.0, sales.AttendanceRate)
	assert.Equal(t, 5, sales.EmployeeCount)
	assert.Equal(t, int64(20), sales.TotalPresent)
	assert.Equal(t, 50, sales.TotalDays)

	s := got.Summary
	assert.Equal(t, int64(14), s.TotalEmployees)
	assert.Equal(t, 10, s.TotalWorkingDays)
	assert.Equal(t, int64(93), s.TotalPresent)
	assert.Equal(t, int64(37), s.TotalAbsent)
	assert.Equal(t, 66.4, s.OverallAttendanceRate)
	assert.Equal(t, 9.3, s.AverageDailyAttendance)
	assert.Equal(t, "Engineering", s.BestDepartment)
	assert.Equal(t, 100.0, s.BestDepartmentRate)
	assert.Equal(t, 71.2, s.Forecast)
	assert.Equal(t, 80, s.Confidence)
	assert.Equal(t, forecast.TrendUp, s.Trend)
	assert.Equal(t, "08:00 - 09:00", s.PeakHour)
	assert.Equal(t, 28.6, s.LateRate)
	assert.Equal(t, 17.2, s.WFHRatio)
	assert.Equal(t, []float64{80, 60, 0, 90, 76}, s.WeeklyStats)
	assert.Equal(t, []float64{8, 6, 0, 9, 8}, s.WeeklyCounts)
	assert.Equal(t, "Thursday", s.PeakDay)
	assert.Equal(t, 1, s.AtRiskCount)
	assert.Equal(t, "Thursday", s.TomorrowDay)
	assert.Equal(t, []float64{80, 60, 0, 90, 76}, s.TrendHistory)
	assert.Equal(t, 2, s.AttendanceStreak)
	assert.Equal(t, 35.5, s.BusiestImpact)

	require.Len(t, got.Employees, 14)
	assert.Equal(t, 100.0, got.Employees[0].AttendanceRate)
	assert.Equal(t, "floater", got.Employees[13].ID)
	assert.Len(t, got.Trends, 5)
}

func TestGetCompanyOverview_Empty(t *testing.T) {
	got, err := newTestOverviewService(memory.NewStore(), &fakeForecast{}).GetCompanyOverview(context.Background(), 0)
	require.NoError(t, err)

	assert.Equal(t, 30, got.Summary.TotalWorkingDays)
	assert.Equal(t, "N/A", got.Summary.BestDepartment)
	assert.Equal(t, "09:00 - 10:00", got.Summary.PeakHour)
	assert.Equal(t, "Monday", got.Summary.PeakDay)
	assert.Zero(t, got.Summary.OverallAttendanceRate)
	assert.Zero(t, got.Summary.BusiestImpact)
	assert.NotNil(t, got.Departments)
	assert.Empty(t, got.BottomDepartments)
	assert.NotNil(t, got.AtRisk)
	assert.NotNil(t, got.Trends)
}

func TestGetCompanyOverview_ReadFailure(t *testing.T) {
	store, fc := newCompanyFixture()
	fc.err = errors.New("timeout")

	_, err := newTestOverviewService(store, fc).GetCompanyOverview(context.Background(), 10)
	assert.ErrorContains(t, err, "failed to build trend series")
}

func TestPeakHour_TiesGoToEarliest(t *testing.T) {
	times := []attendance.TimeOfDay{{Hour: 10}, {Hour: 8}, {Hour: 10}, {Hour: 8}, {Hour: 9}}
	assert.Equal(t, "08:00 - 09:00", peakHour(times))
	assert.Equal(t, "09:00 - 10:00", peakHour(nil))
}

func TestLateRate_StrictlyAfterCutoff(t *testing.T) {
	times := []attendance.TimeOfDay{{Hour: 9, Minute: 30}, {Hour: 9, Minute: 30, Second: 1}}
	assert.Equal(t, 50.0, lateRate(times))
	assert.Zero(t, lateRate(nil))
}

func TestAttendanceStreak(t *testing.T) {
	trends := []forecast.TrendPoint{{Rate: 80}, {Rate: 74.9}, {Rate: 75}, {Rate: 99}}
	assert.Equal(t, 2, attendanceStreak(trends))
	assert.Zero(t, attendanceStreak(nil))
}

func TestSearchPersonnel(t *testing.T) {
	store, fc := newCompanyFixture()
	svc := newTestOverviewService(store, fc)

	results, err := svc.SearchPersonnel(context.Background(), overview.SearchRequest{Department: "Engineering"})
	require.NoError(t, err)
	require.Len(t, results, 5)
	assert.Equal(t, 33.3, results[0].AttendanceRate)
	assert.Equal(t, 100.0, results[0].PredictionScore)
	assert.Equal(t, "Active", results[0].Status)

	results, err = svc.SearchPersonnel(context.Background(), overview.SearchRequest{Query: "SALES3@EXAMPLE"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Sales-3", results[0].ID)
	assert.Equal(t, 13.3, results[0].AttendanceRate)
	assert.Equal(t, 57.1, results[0].PredictionScore)
	assert.Equal(t, "Active", results[0].Status)

	maxRate := 20.0
	results, err = svc.SearchPersonnel(context.Background(), overview.SearchRequest{MaxAttendance: &maxRate})
	require.NoError(t, err)
	for _, r := range results {
		assert.LessOrEqual(t, r.AttendanceRate, maxRate)
		assert.NotEqual(t, "Boss", r.Name)
	}
	assert.Len(t, results, 6) // sales plus the floater

	results, err = svc.SearchPersonnel(context.Background(), overview.SearchRequest{Query: "nobody"})
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestSearchPersonnel_InvalidRange(t *testing.T) {
	lo, hi := 80.0, 20.0
	_, err := newTestOverviewService(memory.NewStore(), &fakeForecast{}).SearchPersonnel(context.Background(),
		overview.SearchRequest{MinAttendance: &lo, MaxAttendance: &hi})

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "min_attendance")
}

func TestExportOverview(t *testing.T) {
	store, fc := newCompanyFixture()

	buf, filename, err := newTestOverviewService(store, fc).ExportOverview(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, "attendance-overview-2026-03-18.xlsx", filename)

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Summary", "Departments", "Employees", "Trends"}, f.GetSheetList())

	name, err := f.GetCellValue("Departments", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Engineering", name)

	risk, err := f.GetCellValue("Departments", "F5")
	require.NoError(t, err)
	assert.Equal(t, "Yes", risk)

	total, err := f.GetCellValue("Summary", "B2")
	require.NoError(t, err)
	assert.Equal(t, "14", total)
}
