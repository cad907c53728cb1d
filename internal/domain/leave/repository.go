package leave

import (
	"context"
	"time"
)

type LeaveRequestRepository interface {
	// ListApproved returns an employee's approved requests overlapping [from, to]
	ListApproved(ctx context.Context, employeeID string, from, to time.Time) ([]ApprovedRequest, error)

	// CountApprovedStarting counts approved requests of requestType starting within [from, to]
	CountApprovedStarting(ctx context.Context, employeeID string, requestType RequestType, from, to time.Time) (int64, error)
}
