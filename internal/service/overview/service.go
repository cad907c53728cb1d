package overview

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cmlabs-hris/workforce-analytics/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-analytics/internal/domain/employee"
	"github.com/cmlabs-hris/workforce-analytics/internal/domain/forecast"
	"github.com/cmlabs-hris/workforce-analytics/internal/domain/overview"
	"github.com/cmlabs-hris/workforce-analytics/internal/pkg/utils"
)

const (
	defaultOverviewDays = 30
	atRiskThreshold     = 60.0
	streakThreshold     = 75.0
	rankedDepartments   = 3
	trendHistoryLen     = 7
	defaultPeakHour     = 9
	noDepartment        = "N/A"
)

// lateAfter is the latest on-time check-in.
var lateAfter = attendance.TimeOfDay{Hour: 9, Minute: 30}

var workdayNames = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

type OverviewServiceImpl struct {
	attendanceRepo  attendance.AttendanceRepository
	employeeRepo    employee.EmployeeRepository
	forecastService forecast.ForecastService
	loc             *time.Location
	now             func() time.Time
}

func NewOverviewService(
	attendanceRepo attendance.AttendanceRepository,
	employeeRepo employee.EmployeeRepository,
	forecastService forecast.ForecastService,
	loc *time.Location,
) *OverviewServiceImpl {
	return &OverviewServiceImpl{
		attendanceRepo:  attendanceRepo,
		employeeRepo:    employeeRepo,
		forecastService: forecastService,
		loc:             loc,
		now:             time.Now,
	}
}

func (s *OverviewServiceImpl) today() time.Time {
	return utils.Today(s.now(), s.loc)
}

// overviewInputs are the independent reads behind one overview.
type overviewInputs struct {
	employees []employee.Employee
	totals    attendance.StatusTotals
	tallies   []attendance.EmployeeTally
	checkIns  []attendance.TimeOfDay
	trends    []forecast.TrendPoint
	forecast  forecast.Result
}

func (s *OverviewServiceImpl) load(ctx context.Context, days int) (*overviewInputs, error) {
	end := s.today()
	start := utils.AddDays(end, -days)
	scope := employee.WorkforceScope

	var in overviewInputs
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		employees, err := s.employeeRepo.List(gCtx, scope)
		if err != nil {
			return fmt.Errorf("failed to list employees: %w", err)
		}
		in.employees = employees
		return nil
	})

	g.Go(func() error {
		totals, err := s.attendanceRepo.StatusTotals(gCtx, scope, start, end)
		if err != nil {
			return fmt.Errorf("failed to get status totals: %w", err)
		}
		in.totals = totals
		return nil
	})

	g.Go(func() error {
		tallies, err := s.attendanceRepo.TallyByEmployee(gCtx, scope, start, end)
		if err != nil {
			return fmt.Errorf("failed to tally attendance by employee: %w", err)
		}
		in.tallies = tallies
		return nil
	})

	g.Go(func() error {
		checkIns, err := s.attendanceRepo.CheckInTimes(gCtx, scope, start, end)
		if err != nil {
			return fmt.Errorf("failed to get check-in times: %w", err)
		}
		in.checkIns = checkIns
		return nil
	})

	g.Go(func() error {
		trends, err := s.forecastService.TrendSeries(gCtx, scope, days)
		if err != nil {
			return fmt.Errorf("failed to build trend series: %w", err)
		}
		in.trends = trends
		return nil
	})

	g.Go(func() error {
		in.forecast = s.forecastService.Calculate(gCtx)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &in, nil
}

// GetCompanyOverview implements overview.OverviewService.
func (s *OverviewServiceImpl) GetCompanyOverview(ctx context.Context, days int) (*overview.CompanyOverview, error) {
	if days <= 0 {
		days = defaultOverviewDays
	}

	in, err := s.load(ctx, days)
	if err != nil {
		return nil, err
	}

	tallies := make(map[string]attendance.EmployeeTally, len(in.tallies))
	for _, t := range in.tallies {
		tallies[t.EmployeeID] = t
	}

	departments := departmentStats(in.employees, tallies, days)
	employees := employeeStats(in.employees, tallies, days)

	var atRisk []overview.DepartmentStat
	for _, d := range departments {
		if d.AttendanceRate < atRiskThreshold {
			atRisk = append(atRisk, d)
		}
	}

	totalEmployees := int64(len(in.employees))
	overallRate := utils.Clamp(utils.Percent(float64(in.totals.Present), float64(totalEmployees*int64(days))), 0, 100)

	var totalWFH int64
	for _, e := range employees {
		totalWFH += e.WFHDays
	}

	weeklyStats, weeklyCounts := weeklyPattern(in.trends)
	peakIdx := peakWeekday(weeklyStats)

	summary := overview.Summary{
		TotalEmployees:         totalEmployees,
		TotalWorkingDays:       days,
		OverallAttendanceRate:  utils.Round(overallRate, 1),
		TotalPresent:           in.totals.Present,
		TotalAbsent:            in.totals.Absent,
		TotalLeave:             in.totals.Leave,
		TotalHalfDay:           in.totals.HalfDay,
		AverageDailyAttendance: utils.Round(float64(in.totals.Present)/float64(days), 1),
		BestDepartment:         noDepartment,
		Forecast:               in.forecast.Percentage,
		Confidence:             in.forecast.Confidence,
		Trend:                  in.forecast.Trend,
		LowConfidence:          in.forecast.LowConfidence,
		PeakHour:               peakHour(in.checkIns),
		PeakDay:                workdayNames[peakIdx],
		WFHRatio:               utils.Round(utils.Percent(float64(totalWFH), float64(in.totals.Present)), 1),
		LateRate:               lateRate(in.checkIns),
		WeeklyStats:            weeklyStats,
		WeeklyCounts:           weeklyCounts,
		AtRiskCount:            len(atRisk),
		TomorrowDay:            utils.AddDays(s.today(), 1).Weekday().String(),
		TrendHistory:           trendHistory(in.trends),
		AttendanceStreak:       attendanceStreak(in.trends),
		BusiestImpact:          busiestImpact(weeklyStats[peakIdx], overallRate),
	}
	if len(departments) > 0 {
		summary.BestDepartment = departments[0].Name
		summary.BestDepartmentRate = departments[0].AttendanceRate
	}

	return &overview.CompanyOverview{
		Summary:           summary,
		Departments:       departments,
		TopDepartments:    departments[:min(rankedDepartments, len(departments))],
		BottomDepartments: departments[len(departments)-min(rankedDepartments, len(departments)):],
		AtRisk:            nonNil(atRisk),
		Employees:         employees,
		Trends:            nonNil(in.trends),
	}, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// departmentStats groups the scoped employees by department, ranked by rate.
func departmentStats(employees []employee.Employee, tallies map[string]attendance.EmployeeTally, days int) []overview.DepartmentStat {
	index := make(map[string]int)
	stats := []overview.DepartmentStat{}
	for _, e := range employees {
		if e.Department == "" {
			continue
		}
		i, ok := index[e.Department]
		if !ok {
			i = len(stats)
			index[e.Department] = i
			stats = append(stats, overview.DepartmentStat{Name: e.Department})
		}
		stats[i].EmployeeCount++
		stats[i].TotalPresent += tallies[e.ID].Present
	}

	for i := range stats {
		possible := stats[i].EmployeeCount * days
		stats[i].TotalDays = possible
		rate := utils.Percent(float64(stats[i].TotalPresent), float64(possible))
		stats[i].AttendanceRate = utils.Round(utils.Clamp(rate, 0, 100), 1)
	}

	slices.SortStableFunc(stats, func(a, b overview.DepartmentStat) int {
		if c := cmp.Compare(b.AttendanceRate, a.AttendanceRate); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return stats
}

func employeeStats(employees []employee.Employee, tallies map[string]attendance.EmployeeTally, days int) []overview.EmployeeStat {
	stats := make([]overview.EmployeeStat, 0, len(employees))
	for _, e := range employees {
		t := tallies[e.ID]
		rate := utils.Percent(float64(t.Present), float64(days))
		stats = append(stats, overview.EmployeeStat{
			ID:             e.ID,
			Name:           e.Name,
			Department:     e.Department,
			AttendanceRate: utils.Round(utils.Clamp(rate, 0, 100), 1),
			PresentDays:    t.Present,
			AbsentDays:     t.Absent,
			LeaveDays:      t.Leave,
			WFHDays:        t.WFH,
			TotalDays:      days,
		})
	}

	slices.SortStableFunc(stats, func(a, b overview.EmployeeStat) int {
		return cmp.Compare(b.AttendanceRate, a.AttendanceRate)
	})
	return stats
}

// peakHour returns the most frequent check-in hour as "HH:00 - HH:00".
// Ties go to the earliest hour.
func peakHour(checkIns []attendance.TimeOfDay) string {
	var counts [24]int
	for _, t := range checkIns {
		if t.Hour >= 0 && t.Hour < 24 {
			counts[t.Hour]++
		}
	}

	peak := defaultPeakHour
	best := 0
	for h, c := range counts {
		if c > best {
			peak, best = h, c
		}
	}
	return fmt.Sprintf("%02d:00 - %02d:00", peak, peak+1)
}

func lateRate(checkIns []attendance.TimeOfDay) float64 {
	if len(checkIns) == 0 {
		return 0
	}
	late := 0
	for _, t := range checkIns {
		if t.After(lateAfter) {
			late++
		}
	}
	return utils.Round(utils.Percent(float64(late), float64(len(checkIns))), 1)
}

// weeklyPattern averages the trend series per weekday, Monday to Friday.
// Days nobody attended are left out.
func weeklyPattern(trends []forecast.TrendPoint) (rates, counts []float64) {
	var rateSums, countSums [5]float64
	var n [5]int
	for _, p := range trends {
		if p.PresentCount == 0 {
			continue
		}
		date, err := time.Parse(utils.DateLayout, p.Date)
		if err != nil || !utils.IsWorkday(date) {
			continue
		}
		day := utils.WeekdayIndex(date)
		rateSums[day] += p.Rate
		countSums[day] += float64(p.PresentCount)
		n[day]++
	}

	rates = make([]float64, 5)
	counts = make([]float64, 5)
	for day := range rates {
		if n[day] > 0 {
			rates[day] = utils.Round(rateSums[day]/float64(n[day]), 1)
			counts[day] = utils.Round(countSums[day]/float64(n[day]), 1)
		}
	}
	return rates, counts
}

// peakWeekday returns the index of the highest weekday rate, Monday on ties or no data.
func peakWeekday(rates []float64) int {
	peak := 0
	for i, r := range rates {
		if r > rates[peak] {
			peak = i
		}
	}
	return peak
}

func trendHistory(trends []forecast.TrendPoint) []float64 {
	tail := trends[max(0, len(trends)-trendHistoryLen):]
	history := make([]float64, 0, len(tail))
	for _, p := range tail {
		history = append(history, p.Rate)
	}
	return history
}

// attendanceStreak counts the most recent consecutive days at or above the streak threshold.
func attendanceStreak(trends []forecast.TrendPoint) int {
	streak := 0
	for i := len(trends) - 1; i >= 0; i-- {
		if trends[i].Rate < streakThreshold {
			break
		}
		streak++
	}
	return streak
}

func busiestImpact(peakRate, overallRate float64) float64 {
	if overallRate <= 0 {
		return 0
	}
	return utils.Round((peakRate-overallRate)/overallRate*100, 1)
}
