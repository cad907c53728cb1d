package prediction

// HistoricalSummary counts an employee's attendance over a trailing window.
type HistoricalSummary struct {
	TotalDays      int     `json:"total_days"`
	PresentDays    int64   `json:"present_days"`
	AbsentDays     int64   `json:"absent_days"`
	LeaveDays      int64   `json:"leave_days"`
	AttendanceRate float64 `json:"attendance_rate"`
}

// WeekStatus is the employee's position in the current Monday-based week.
type WeekStatus struct {
	TodayStatus     string `json:"today_status"` // attendance status or "not_marked"
	WeekPresentDays int64  `json:"week_present_days"`
	WeekStart       string `json:"week_start"` // Format: "YYYY-MM-DD"
	IsActive        bool   `json:"is_active"`
}

const NotMarked = "not_marked"

// WeeklyPattern holds the presence probability per weekday, Monday first.
type WeeklyPattern [7]float64

// DefaultDayProbability is assumed for weekdays without any record.
const DefaultDayProbability = 0.7

// Labels of a predicted day.
const (
	LabelPresent = "present"
	LabelAbsent  = "absent"
	LabelLeave   = "leave"
	LabelWFH     = "wfh"
)

// DayPrediction is the predicted label of one future date.
type DayPrediction struct {
	Date       string  `json:"date"` // Format: "YYYY-MM-DD"
	DayOfWeek  string  `json:"day_of_week"`
	Prediction string  `json:"prediction"`
	Confidence float64 `json:"confidence"`
	Scheduled  bool    `json:"scheduled"` // taken from an approved request
}

// AccuracyEstimate is a bucketed heuristic, not a measured back-test.
type AccuracyEstimate struct {
	Accuracy       int     `json:"accuracy"`
	BaseAccuracy   int     `json:"base_accuracy"`
	AttendanceRate float64 `json:"attendance_rate"`
	IsEstimate     bool    `json:"is_estimate"`
}

// EmployeeInsight bundles every per-employee view.
type EmployeeInsight struct {
	EmployeeID       string            `json:"employee_id"`
	EmployeeName     string            `json:"employee_name"`
	EmployeeEmail    string            `json:"employee_email"`
	Department       string            `json:"department"`
	PreviousRecord   HistoricalSummary `json:"previous_record"`
	CurrentStatus    WeekStatus        `json:"current_status"`
	PredictedRecord  []DayPrediction   `json:"predicted_record"`
	PerformanceScore float64           `json:"performance_score"`
	Accuracy         AccuracyEstimate  `json:"accuracy"`
	WorkStatus       string            `json:"work_status"`
}

const (
	WorkStatusActive   = "Active"
	WorkStatusInactive = "Inactive"
)
