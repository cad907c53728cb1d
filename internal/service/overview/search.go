package overview

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cmlabs-hris/workforce-analytics/internal/domain/employee"
	"github.com/cmlabs-hris/workforce-analytics/internal/domain/overview"
	"github.com/cmlabs-hris/workforce-analytics/internal/domain/prediction"
	"github.com/cmlabs-hris/workforce-analytics/internal/pkg/utils"
)

const (
	searchRateDays      = 30
	searchPredictDays   = 7
	activeMinRecentDays = 4
)

// SearchPersonnel implements overview.OverviewService.
func (s *OverviewServiceImpl) SearchPersonnel(ctx context.Context, req overview.SearchRequest) ([]overview.PersonnelResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	today := s.today()
	scope := employee.WorkforceScope

	var (
		employees []employee.Employee
		month     map[string]int64
		week      map[string]int64
	)
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		employees, err = s.employeeRepo.Search(gCtx, scope, employee.SearchFilter{Query: req.Query, Department: req.Department})
		if err != nil {
			return fmt.Errorf("failed to search employees: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		var err error
		month, err = s.presentByEmployee(gCtx, scope, utils.AddDays(today, -searchRateDays), today)
		return err
	})

	g.Go(func() error {
		var err error
		week, err = s.presentByEmployee(gCtx, scope, utils.AddDays(today, -searchPredictDays), today)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	results := []overview.PersonnelResult{}
	for _, e := range employees {
		rate := min(utils.Percent(float64(month[e.ID]), searchRateDays), 100)
		if req.MinAttendance != nil && rate < *req.MinAttendance {
			continue
		}
		if req.MaxAttendance != nil && rate > *req.MaxAttendance {
			continue
		}

		recent := week[e.ID]
		status := prediction.WorkStatusInactive
		if recent >= activeMinRecentDays {
			status = prediction.WorkStatusActive
		}

		results = append(results, overview.PersonnelResult{
			ID:              e.ID,
			Name:            e.Name,
			Username:        e.Username,
			Email:           e.Email,
			Department:      e.Department,
			AttendanceRate:  utils.Round(rate, 1),
			PredictionScore: utils.Round(min(utils.Percent(float64(recent), searchPredictDays), 100), 1),
			Status:          status,
		})
	}

	slices.SortStableFunc(results, func(a, b overview.PersonnelResult) int {
		return cmp.Compare(b.AttendanceRate, a.AttendanceRate)
	})
	return results, nil
}

func (s *OverviewServiceImpl) presentByEmployee(ctx context.Context, scope employee.Scope, from, to time.Time) (map[string]int64, error) {
	tallies, err := s.attendanceRepo.TallyByEmployee(ctx, scope, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to tally attendance by employee: %w", err)
	}

	present := make(map[string]int64, len(tallies))
	for _, t := range tallies {
		present[t.EmployeeID] = t.Present
	}
	return present, nil
}
