package prediction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cmlabs-hris/workforce-analytics/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-analytics/internal/domain/employee"
	"github.com/cmlabs-hris/workforce-analytics/internal/domain/leave"
	"github.com/cmlabs-hris/workforce-analytics/internal/domain/prediction"
	"github.com/cmlabs-hris/workforce-analytics/internal/pkg/utils"
)

const (
	defaultSummaryDays  = 7
	defaultPredictDays  = 7
	patternWindowDays   = 30
	scoreWindowDays     = 30
	accuracyWindowDays  = 30
	presentThreshold    = 0.6
	patternWeight       = 0.3
	recentWeight        = 0.7
	onTimeBeforeHour    = 10
	expectedDailyHours  = 8
	attendanceScoreMax  = 40
	punctualityScoreMax = 30
	hoursScoreMax       = 30
)

type PredictionServiceImpl struct {
	attendanceRepo attendance.AttendanceRepository
	employeeRepo   employee.EmployeeRepository
	leaveRepo      leave.LeaveRequestRepository
	loc            *time.Location
	jitter         int
	now            func() time.Time
	randIntN       func(n int) int
}

func NewPredictionService(
	attendanceRepo attendance.AttendanceRepository,
	employeeRepo employee.EmployeeRepository,
	leaveRepo leave.LeaveRequestRepository,
	loc *time.Location,
	accuracyJitter int,
) *PredictionServiceImpl {
	return &PredictionServiceImpl{
		attendanceRepo: attendanceRepo,
		employeeRepo:   employeeRepo,
		leaveRepo:      leaveRepo,
		loc:            loc,
		jitter:         accuracyJitter,
		now:            time.Now,
		randIntN:       rand.IntN,
	}
}

func (s *PredictionServiceImpl) today() time.Time {
	return utils.Today(s.now(), s.loc)
}

func (s *PredictionServiceImpl) lookup(ctx context.Context, employeeID string) (employee.Employee, error) {
	emp, err := s.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return employee.Employee{}, err
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}
	return emp, nil
}

// HistoricalSummary implements prediction.PredictionService.
func (s *PredictionServiceImpl) HistoricalSummary(ctx context.Context, employeeID string, days int) (*prediction.HistoricalSummary, error) {
	if _, err := s.lookup(ctx, employeeID); err != nil {
		return nil, err
	}
	return s.historicalSummary(ctx, employeeID, days)
}

func (s *PredictionServiceImpl) historicalSummary(ctx context.Context, employeeID string, days int) (*prediction.HistoricalSummary, error) {
	if days <= 0 {
		days = defaultSummaryDays
	}

	end := s.today()
	start := utils.AddDays(end, -days)

	records, err := s.attendanceRepo.ListByEmployee(ctx, employeeID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance records: %w", err)
	}

	summary := &prediction.HistoricalSummary{TotalDays: days}
	for _, r := range records {
		switch {
		case r.Status.CountsPresent():
			summary.PresentDays++
		case r.Status == attendance.StatusAbsent:
			summary.AbsentDays++
		case r.Status == attendance.StatusLeave:
			summary.LeaveDays++
		}
	}

	approvedLeaves, err := s.leaveRepo.CountApprovedStarting(ctx, employeeID, leave.RequestTypeFullDay, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to count approved leave: %w", err)
	}
	summary.LeaveDays = max(summary.LeaveDays, approvedLeaves)
	// the window spans days+1 dates, so a perfect record would exceed 100
	rate := utils.Percent(float64(summary.PresentDays), float64(days))
	summary.AttendanceRate = utils.Round(utils.Clamp(rate, 0, 100), 1)

	return summary, nil
}

// CurrentWeekStatus implements prediction.PredictionService.
func (s *PredictionServiceImpl) CurrentWeekStatus(ctx context.Context, employeeID string) (*prediction.WeekStatus, error) {
	if _, err := s.lookup(ctx, employeeID); err != nil {
		return nil, err
	}
	return s.currentWeekStatus(ctx, employeeID)
}

func (s *PredictionServiceImpl) currentWeekStatus(ctx context.Context, employeeID string) (*prediction.WeekStatus, error) {
	today := s.today()
	weekStart := utils.WeekStart(today)

	records, err := s.attendanceRepo.ListByEmployee(ctx, employeeID, weekStart, today)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance records: %w", err)
	}

	status := &prediction.WeekStatus{
		TodayStatus: prediction.NotMarked,
		WeekStart:   utils.FormatDate(weekStart),
	}
	for _, r := range records {
		if r.Status.CountsPresent() {
			status.WeekPresentDays++
		}
		if r.Date.Equal(today) {
			status.TodayStatus = string(r.Status)
			status.IsActive = r.Status.CountsPresent()
		}
	}

	return status, nil
}

// WeeklyPattern implements prediction.PredictionService.
func (s *PredictionServiceImpl) WeeklyPattern(ctx context.Context, employeeID string) (prediction.WeeklyPattern, error) {
	if _, err := s.lookup(ctx, employeeID); err != nil {
		return prediction.WeeklyPattern{}, err
	}
	return s.weeklyPattern(ctx, employeeID)
}

func (s *PredictionServiceImpl) weeklyPattern(ctx context.Context, employeeID string) (prediction.WeeklyPattern, error) {
	end := s.today()
	records, err := s.attendanceRepo.ListByEmployee(ctx, employeeID, utils.AddDays(end, -patternWindowDays), end)
	if err != nil {
		return defaultPattern(), fmt.Errorf("failed to list attendance records: %w", err)
	}

	var present, total [7]int
	for _, r := range records {
		day := utils.WeekdayIndex(r.Date)
		total[day]++
		if r.Status.CountsPresent() {
			present[day]++
		}
	}

	pattern := defaultPattern()
	for day := range pattern {
		if total[day] > 0 {
			pattern[day] = float64(present[day]) / float64(total[day])
		}
	}
	return pattern, nil
}

func defaultPattern() prediction.WeeklyPattern {
	var p prediction.WeeklyPattern
	for i := range p {
		p[i] = prediction.DefaultDayProbability
	}
	return p
}

// PredictNextDays implements prediction.PredictionService.
func (s *PredictionServiceImpl) PredictNextDays(ctx context.Context, employeeID string, days int) ([]prediction.DayPrediction, error) {
	if _, err := s.lookup(ctx, employeeID); err != nil {
		return nil, err
	}
	return s.predictNextDays(ctx, employeeID, days)
}

func (s *PredictionServiceImpl) predictNextDays(ctx context.Context, employeeID string, days int) ([]prediction.DayPrediction, error) {
	if days <= 0 {
		days = defaultPredictDays
	}

	pattern, err := s.weeklyPattern(ctx, employeeID)
	if err != nil {
		slog.Warn("Falling back to default weekly pattern", "employee_id", employeeID, "error", err)
	}

	recent, err := s.historicalSummary(ctx, employeeID, defaultSummaryDays)
	if err != nil {
		return nil, err
	}
	recentRate := recent.AttendanceRate / 100

	today := s.today()
	first, last := utils.AddDays(today, 1), utils.AddDays(today, days)
	requests, err := s.leaveRepo.ListApproved(ctx, employeeID, first, last)
	if err != nil {
		return nil, fmt.Errorf("failed to list approved requests: %w", err)
	}

	predictions := make([]prediction.DayPrediction, 0, days)
	for i := 1; i <= days; i++ {
		date := utils.AddDays(today, i)
		p := prediction.DayPrediction{
			Date:      utils.FormatDate(date),
			DayOfWeek: date.Format("Mon"),
		}

		if label, ok := scheduledLabel(requests, date); ok {
			p.Prediction = label
			p.Confidence = 100
			p.Scheduled = true
		} else {
			combined := patternWeight*pattern[utils.WeekdayIndex(date)] + recentWeight*recentRate
			if combined >= presentThreshold {
				p.Prediction = prediction.LabelPresent
				p.Confidence = utils.Round(combined*100, 1)
			} else {
				p.Prediction = prediction.LabelAbsent
				p.Confidence = utils.Round((1-combined)*100, 1)
			}
		}
		predictions = append(predictions, p)
	}

	return predictions, nil
}

// scheduledLabel returns the label forced by an approved request covering date.
// Half-day requests do not decide the day.
func scheduledLabel(requests []leave.ApprovedRequest, date time.Time) (string, bool) {
	label, found := "", false
	for _, r := range requests {
		if !r.Covers(date) {
			continue
		}
		switch r.RequestType {
		case leave.RequestTypeFullDay:
			return prediction.LabelLeave, true
		case leave.RequestTypeWFH:
			label, found = prediction.LabelWFH, true
		}
	}
	return label, found
}

// PerformanceScore implements prediction.PredictionService.
func (s *PredictionServiceImpl) PerformanceScore(ctx context.Context, employeeID string) (float64, error) {
	if _, err := s.lookup(ctx, employeeID); err != nil {
		return 0, err
	}
	return s.performanceScore(ctx, employeeID)
}

func (s *PredictionServiceImpl) performanceScore(ctx context.Context, employeeID string) (float64, error) {
	end := s.today()
	start := utils.AddDays(end, -scoreWindowDays)

	records, err := s.attendanceRepo.ListByEmployee(ctx, employeeID, start, end)
	if err != nil {
		return 0, fmt.Errorf("failed to list attendance records: %w", err)
	}
	if len(records) == 0 {
		return 0, nil
	}

	windowDays := utils.DaysBetween(start, end) + 1

	var present, checkIns, onTime int
	totalHours := decimal.Zero
	for _, r := range records {
		if r.Status.CountsPresent() {
			present++
		}
		if r.CheckInTime != nil {
			checkIns++
			if r.CheckInTime.Hour < onTimeBeforeHour {
				onTime++
			}
		}
		totalHours = totalHours.Add(r.TotalHours)
	}

	attendanceScore := float64(present) / float64(windowDays) * attendanceScoreMax

	var punctualityScore float64
	if checkIns > 0 {
		punctualityScore = float64(onTime) / float64(checkIns) * punctualityScoreMax
	}

	avgHours := totalHours.Div(decimal.NewFromInt(int64(len(records))))
	hoursRatio := decimal.Min(avgHours.Div(decimal.NewFromInt(expectedDailyHours)), decimal.NewFromInt(1))
	hoursScore := hoursRatio.InexactFloat64() * hoursScoreMax

	score := utils.Round(attendanceScore+punctualityScore+hoursScore, 1)
	return utils.Clamp(score, 0, 100), nil
}

// PredictionAccuracy implements prediction.PredictionService.
func (s *PredictionServiceImpl) PredictionAccuracy(ctx context.Context, employeeID string) (*prediction.AccuracyEstimate, error) {
	if _, err := s.lookup(ctx, employeeID); err != nil {
		return nil, err
	}
	return s.predictionAccuracy(ctx, employeeID)
}

func (s *PredictionServiceImpl) predictionAccuracy(ctx context.Context, employeeID string) (*prediction.AccuracyEstimate, error) {
	summary, err := s.historicalSummary(ctx, employeeID, accuracyWindowDays)
	if err != nil {
		return nil, err
	}

	base := accuracyBucket(summary.AttendanceRate)
	accuracy := base
	if s.jitter > 0 {
		accuracy += s.randIntN(2*s.jitter+1) - s.jitter
	}

	return &prediction.AccuracyEstimate{
		Accuracy:       min(max(accuracy, 0), 100),
		BaseAccuracy:   base,
		AttendanceRate: summary.AttendanceRate,
		IsEstimate:     true,
	}, nil
}

// accuracyBucket maps a 30-day attendance rate to a base accuracy. More
// regular attendance is treated as more predictable.
func accuracyBucket(rate float64) int {
	switch {
	case rate >= 90:
		return 85
	case rate >= 75:
		return 75
	case rate >= 50:
		return 65
	default:
		return 55
	}
}

// EmployeeInsight implements prediction.PredictionService.
func (s *PredictionServiceImpl) EmployeeInsight(ctx context.Context, employeeID string) (*prediction.EmployeeInsight, error) {
	emp, err := s.lookup(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	return s.employeeInsight(ctx, emp)
}

func (s *PredictionServiceImpl) employeeInsight(ctx context.Context, emp employee.Employee) (*prediction.EmployeeInsight, error) {
	previous, err := s.historicalSummary(ctx, emp.ID, defaultSummaryDays)
	if err != nil {
		return nil, err
	}

	current, err := s.currentWeekStatus(ctx, emp.ID)
	if err != nil {
		return nil, err
	}

	predicted, err := s.predictNextDays(ctx, emp.ID, defaultPredictDays)
	if err != nil {
		return nil, err
	}

	score, err := s.performanceScore(ctx, emp.ID)
	if err != nil {
		return nil, err
	}

	accuracy, err := s.predictionAccuracy(ctx, emp.ID)
	if err != nil {
		return nil, err
	}

	workStatus := prediction.WorkStatusInactive
	if current.IsActive {
		workStatus = prediction.WorkStatusActive
	}

	return &prediction.EmployeeInsight{
		EmployeeID:       emp.ID,
		EmployeeName:     emp.Name,
		EmployeeEmail:    emp.Email,
		Department:       emp.Department,
		PreviousRecord:   *previous,
		CurrentStatus:    *current,
		PredictedRecord:  predicted,
		PerformanceScore: score,
		Accuracy:         *accuracy,
		WorkStatus:       workStatus,
	}, nil
}

// AllEmployeePredictions implements prediction.PredictionService.
func (s *PredictionServiceImpl) AllEmployeePredictions(ctx context.Context) ([]prediction.EmployeeInsight, error) {
	employees, err := s.employeeRepo.List(ctx, employee.ActiveScope)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}

	insights := make([]prediction.EmployeeInsight, 0, len(employees))
	for _, emp := range employees {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		insight, err := s.employeeInsight(ctx, emp)
		if err != nil {
			slog.Warn("Skipping employee prediction", "employee_id", emp.ID, "error", err)
			continue
		}
		insights = append(insights, *insight)
	}

	return insights, nil
}
