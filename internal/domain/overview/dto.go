package overview

import (
	"github.com/cmlabs-hris/workforce-analytics/internal/domain/forecast"
	"github.com/cmlabs-hris/workforce-analytics/internal/pkg/validator"
)

// ========== COMPANY OVERVIEW ==========

type CompanyOverview struct {
	Summary           Summary               `json:"summary"`
	Departments       []DepartmentStat      `json:"departments"`
	TopDepartments    []DepartmentStat      `json:"top_departments"`
	BottomDepartments []DepartmentStat      `json:"bottom_departments"`
	AtRisk            []DepartmentStat      `json:"at_risk"`
	Employees         []EmployeeStat        `json:"employees"`
	Trends            []forecast.TrendPoint `json:"trends"`
}

type Summary struct {
	TotalEmployees         int64          `json:"total_employees"`
	TotalWorkingDays       int            `json:"total_working_days"`
	OverallAttendanceRate  float64        `json:"overall_attendance_rate"`
	TotalPresent           int64          `json:"total_present"`
	TotalAbsent            int64          `json:"total_absent"`
	TotalLeave             int64          `json:"total_leave"`
	TotalHalfDay           int64          `json:"total_half_day"`
	AverageDailyAttendance float64        `json:"average_daily_attendance"`
	BestDepartment         string         `json:"best_department"`
	BestDepartmentRate     float64        `json:"best_department_rate"`
	Forecast               float64        `json:"forecast"`
	Confidence             int            `json:"confidence"`
	Trend                  forecast.Trend `json:"trend"`
	LowConfidence          bool           `json:"low_confidence"`
	PeakHour               string         `json:"peak_hour"`
	PeakDay                string         `json:"peak_day"`
	WFHRatio               float64        `json:"wfh_ratio"`
	LateRate               float64        `json:"late_rate"`
	WeeklyStats            []float64      `json:"weekly_stats"`  // Mon-Fri average rate
	WeeklyCounts           []float64      `json:"weekly_counts"` // Mon-Fri average present count
	AtRiskCount            int            `json:"at_risk_count"`
	TomorrowDay            string         `json:"tomorrow_day"`
	TrendHistory           []float64      `json:"trend_history"`
	AttendanceStreak       int            `json:"attendance_streak"`
	BusiestImpact          float64        `json:"busiest_impact"`
}

type DepartmentStat struct {
	Name           string  `json:"name"`
	EmployeeCount  int     `json:"employee_count"`
	AttendanceRate float64 `json:"attendance_rate"`
	TotalPresent   int64   `json:"total_present"`
	TotalDays      int     `json:"total_days"`
}

type EmployeeStat struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Department     string  `json:"department"`
	AttendanceRate float64 `json:"attendance_rate"`
	PresentDays    int64   `json:"present_days"`
	AbsentDays     int64   `json:"absent_days"`
	LeaveDays      int64   `json:"leave_days"`
	WFHDays        int64   `json:"wfh_days"`
	TotalDays      int     `json:"total_days"`
}

// ========== PERSONNEL SEARCH ==========

type SearchRequest struct {
	Query         string   `json:"query"`
	Department    string   `json:"department"`
	MinAttendance *float64 `json:"min_attendance"`
	MaxAttendance *float64 `json:"max_attendance"`
}

func (r *SearchRequest) Validate() error {
	var errs validator.ValidationErrors

	if len(r.Query) > 100 {
		errs = append(errs, validator.ValidationError{Field: "query", Message: "must be at most 100 characters"})
	}
	if len(r.Department) > 100 {
		errs = append(errs, validator.ValidationError{Field: "department", Message: "must be at most 100 characters"})
	}
	if r.MinAttendance != nil && !validator.IsPercentage(*r.MinAttendance) {
		errs = append(errs, validator.ValidationError{Field: "min_attendance", Message: "must be between 0 and 100"})
	}
	if r.MaxAttendance != nil && !validator.IsPercentage(*r.MaxAttendance) {
		errs = append(errs, validator.ValidationError{Field: "max_attendance", Message: "must be between 0 and 100"})
	}
	if r.MinAttendance != nil && r.MaxAttendance != nil && *r.MinAttendance > *r.MaxAttendance {
		errs = append(errs, validator.ValidationError{Field: "min_attendance", Message: "must not be greater than max_attendance"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type PersonnelResult struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Username        string  `json:"username"`
	Email           string  `json:"email"`
	Department      string  `json:"department"`
	AttendanceRate  float64 `json:"attendance_rate"`
	PredictionScore float64 `json:"prediction_score"`
	Status          string  `json:"status"`
}
