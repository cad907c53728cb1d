package leave

import "time"

type RequestType string

const (
	RequestTypeFullDay RequestType = "full_day"
	RequestTypeHalfDay RequestType = "half_day"
	RequestTypeWFH     RequestType = "wfh"
)

const StatusApproved = "approved"

// ApprovedRequest is an approved leave or WFH request covering [StartDate, EndDate].
type ApprovedRequest struct {
	ID          string
	EmployeeID  string
	RequestType RequestType
	StartDate   time.Time
	EndDate     time.Time
	Status      string
}

// Covers reports whether date is within the request's inclusive range.
func (r ApprovedRequest) Covers(date time.Time) bool {
	return !date.Before(r.StartDate) && !date.After(r.EndDate)
}
