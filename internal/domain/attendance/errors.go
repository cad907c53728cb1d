package attendance

import "errors"

// Attendance domain errors
var (
	ErrInvalidDateRange = errors.New("invalid attendance date range")
)
