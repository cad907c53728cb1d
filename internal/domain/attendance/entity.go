package attendance

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPresent Status = "present"
	StatusHalfDay Status = "half_day"
	StatusWFH     Status = "wfh"
	StatusClient  Status = "client"
	StatusAbsent  Status = "absent"
	StatusLeave   Status = "leave"
)

// PresentStatuses are the statuses counted as present by every rate.
// half_day and leave are excluded even when total_hours is nonzero.
var PresentStatuses = []Status{StatusPresent, StatusWFH, StatusClient}

// CountsPresent reports whether s contributes to present counts.
func (s Status) CountsPresent() bool {
	switch s {
	case StatusPresent, StatusWFH, StatusClient:
		return true
	}
	return false
}

type Type string

const (
	TypeOffice Type = "office"
	TypeWFH    Type = "wfh"
	TypeClient Type = "client"
)

// Record is one employee's attendance for one calendar date.
type Record struct {
	ID           string
	EmployeeID   string
	Date         time.Time
	Status       Status
	Type         Type
	CheckInTime  *TimeOfDay
	CheckOutTime *TimeOfDay
	TotalHours   decimal.Decimal
	IsHalfDay    bool
}

// TimeOfDay is a local wall-clock time without a date.
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

// ParseTimeOfDay accepts HH:MM:SS or HH:MM.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return TimeOfDay{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}, nil
		}
	}
	return TimeOfDay{}, fmt.Errorf("invalid time of day %q", s)
}

func (t TimeOfDay) seconds() int {
	return t.Hour*3600 + t.Minute*60 + t.Second
}

// After reports whether t is strictly later than u.
func (t TimeOfDay) After(u TimeOfDay) bool {
	return t.seconds() > u.seconds()
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

// DailyCount is the number of matching records on one date.
type DailyCount struct {
	Date  time.Time
	Count int64
}

// StatusTotals aggregates records of a window by status.
type StatusTotals struct {
	Present int64
	Absent  int64
	Leave   int64
	HalfDay int64 // is_half_day flag, independent of status
}

// EmployeeTally aggregates one employee's records of a window.
type EmployeeTally struct {
	EmployeeID string
	Present    int64
	Absent     int64
	Leave      int64
	WFH        int64 // type = wfh
}
