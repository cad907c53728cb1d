package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/workforce-analytics/internal/domain/leave"
	"github.com/cmlabs-hris/workforce-analytics/internal/pkg/database"
)

type leaveRequestRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRequestRepository(db *database.DB) leave.LeaveRequestRepository {
	return &leaveRequestRepositoryImpl{db: db}
}

// ListApproved implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) ListApproved(ctx context.Context, employeeID string, from, to time.Time) ([]leave.ApprovedRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id::text, employee_id::text, request_type, start_date, end_date, status
		FROM employee_requests
		WHERE employee_id::text = $1
		  AND status = $2
		  AND start_date <= $4
		  AND end_date >= $3
		ORDER BY start_date
	`

	rows, err := q.Query(ctx, query, employeeID, leave.StatusApproved, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list approved requests: %w", err)
	}
	defer rows.Close()

	var requests []leave.ApprovedRequest
	for rows.Next() {
		var req leave.ApprovedRequest
		err := rows.Scan(&req.ID, &req.EmployeeID, &req.RequestType, &req.StartDate, &req.EndDate, &req.Status)
		if err != nil {
			return nil, fmt.Errorf("failed to scan approved request: %w", err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate approved requests: %w", err)
	}
	return requests, nil
}

// CountApprovedStarting implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) CountApprovedStarting(ctx context.Context, employeeID string, requestType leave.RequestType, from, to time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COUNT(*)
		FROM employee_requests
		WHERE employee_id::text = $1
		  AND status = $2
		  AND request_type = $3
		  AND start_date BETWEEN $4 AND $5
	`

	var count int64
	err := q.QueryRow(ctx, query, employeeID, leave.StatusApproved, string(requestType), from, to).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count approved %s requests: %w", requestType, err)
	}
	return count, nil
}
