// Package memory keeps the attendance store in process. It backs the service
// tests and mirrors the SQL semantics of the postgresql repositories.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cmlabs-hris/workforce-analytics/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-analytics/internal/domain/employee"
	"github.com/cmlabs-hris/workforce-analytics/internal/domain/leave"
	"github.com/cmlabs-hris/workforce-analytics/internal/pkg/utils"
)

type Store struct {
	mu        sync.RWMutex
	employees map[string]employee.Employee
	records   map[recordKey]attendance.Record
	requests  []leave.ApprovedRequest
	failWith  error
}

type recordKey struct {
	employeeID string
	date       string
}

func NewStore() *Store {
	return &Store{
		employees: make(map[string]employee.Employee),
		records:   make(map[recordKey]attendance.Record),
	}
}

func (s *Store) AddEmployee(e employee.Employee) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees[e.ID] = e
}

// AddRecord stores r, replacing any record of the same employee and date.
func (s *Store) AddRecord(r attendance.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.Date = utils.DateOf(r.Date)
	if r.Type == "" {
		r.Type = attendance.TypeOffice
	}
	s.records[recordKey{r.EmployeeID, utils.FormatDate(r.Date)}] = r
}

func (s *Store) AddRequest(r leave.ApprovedRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.StartDate = utils.DateOf(r.StartDate)
	r.EndDate = utils.DateOf(r.EndDate)
	if r.Status == "" {
		r.Status = leave.StatusApproved
	}
	s.requests = append(s.requests, r)
}

// FailWith makes every subsequent read return err; nil restores normal reads.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = err
}

func (s *Store) Attendance() attendance.AttendanceRepository { return &attendanceRepo{s} }

func (s *Store) Employees() employee.EmployeeRepository { return &employeeRepo{s} }

func (s *Store) LeaveRequests() leave.LeaveRequestRepository { return &leaveRequestRepo{s} }

func inRange(date, from, to time.Time) bool {
	return !date.Before(from) && !date.After(to)
}

// scopedRecords returns records of in-scope employees; zero from/to disable the bound.
func (s *Store) scopedRecords(scope employee.Scope, from, to time.Time) []attendance.Record {
	var out []attendance.Record
	for _, r := range s.records {
		e, ok := s.employees[r.EmployeeID]
		if !ok || !scope.Includes(e) {
			continue
		}
		if !from.IsZero() && r.Date.Before(from) {
			continue
		}
		if !to.IsZero() && r.Date.After(to) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// ===== attendance =====

type attendanceRepo struct{ s *Store }

func (a *attendanceRepo) countByDate(scope employee.Scope, statuses []attendance.Status, from, to time.Time) []attendance.DailyCount {
	counts := make(map[string]int64)
	dates := make(map[string]time.Time)
	for _, r := range a.s.scopedRecords(scope, from, to) {
		if !statusIn(r.Status, statuses) {
			continue
		}
		key := utils.FormatDate(r.Date)
		counts[key]++
		dates[key] = r.Date
	}

	out := make([]attendance.DailyCount, 0, len(counts))
	for key, c := range counts {
		out = append(out, attendance.DailyCount{Date: dates[key], Count: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func statusIn(status attendance.Status, statuses []attendance.Status) bool {
	for _, st := range statuses {
		if st == status {
			return true
		}
	}
	return false
}

func (a *attendanceRepo) CountByDate(_ context.Context, scope employee.Scope, statuses []attendance.Status, from, to time.Time) ([]attendance.DailyCount, error) {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()
	if a.s.failWith != nil {
		return nil, a.s.failWith
	}
	if to.Before(from) {
		return nil, attendance.ErrInvalidDateRange
	}
	return a.countByDate(scope, statuses, from, to), nil
}

func (a *attendanceRepo) CountByDateAll(_ context.Context, scope employee.Scope, statuses []attendance.Status) ([]attendance.DailyCount, error) {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()
	if a.s.failWith != nil {
		return nil, a.s.failWith
	}
	return a.countByDate(scope, statuses, time.Time{}, time.Time{}), nil
}

func (a *attendanceRepo) StatusTotals(_ context.Context, scope employee.Scope, from, to time.Time) (attendance.StatusTotals, error) {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()
	if a.s.failWith != nil {
		return attendance.StatusTotals{}, a.s.failWith
	}

	var totals attendance.StatusTotals
	for _, r := range a.s.scopedRecords(scope, from, to) {
		switch {
		case r.Status.CountsPresent():
			totals.Present++
		case r.Status == attendance.StatusAbsent:
			totals.Absent++
		case r.Status == attendance.StatusLeave:
			totals.Leave++
		}
		if r.IsHalfDay {
			totals.HalfDay++
		}
	}
	return totals, nil
}

func (a *attendanceRepo) TallyByEmployee(_ context.Context, scope employee.Scope, from, to time.Time) ([]attendance.EmployeeTally, error) {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()
	if a.s.failWith != nil {
		return nil, a.s.failWith
	}

	tallies := make(map[string]*attendance.EmployeeTally)
	for _, r := range a.s.scopedRecords(scope, from, to) {
		t, ok := tallies[r.EmployeeID]
		if !ok {
			t = &attendance.EmployeeTally{EmployeeID: r.EmployeeID}
			tallies[r.EmployeeID] = t
		}
		switch {
		case r.Status.CountsPresent():
			t.Present++
		case r.Status == attendance.StatusAbsent:
			t.Absent++
		case r.Status == attendance.StatusLeave:
			t.Leave++
		}
		if r.Type == attendance.TypeWFH {
			t.WFH++
		}
	}

	out := make([]attendance.EmployeeTally, 0, len(tallies))
	for _, t := range tallies {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeID < out[j].EmployeeID })
	return out, nil
}

func (a *attendanceRepo) CheckInTimes(_ context.Context, scope employee.Scope, from, to time.Time) ([]attendance.TimeOfDay, error) {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()
	if a.s.failWith != nil {
		return nil, a.s.failWith
	}

	var out []attendance.TimeOfDay
	for _, r := range a.s.scopedRecords(scope, from, to) {
		if r.CheckInTime != nil {
			out = append(out, *r.CheckInTime)
		}
	}
	return out, nil
}

func (a *attendanceRepo) ListByEmployee(_ context.Context, employeeID string, from, to time.Time) ([]attendance.Record, error) {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()
	if a.s.failWith != nil {
		return nil, a.s.failWith
	}

	var out []attendance.Record
	for _, r := range a.s.records {
		if r.EmployeeID == employeeID && inRange(r.Date, from, to) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// ===== employees =====

type employeeRepo struct{ s *Store }

func (e *employeeRepo) scoped(scope employee.Scope) []employee.Employee {
	var out []employee.Employee
	for _, emp := range e.s.employees {
		if scope.Includes(emp) {
			out = append(out, emp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (e *employeeRepo) Count(_ context.Context, scope employee.Scope) (int64, error) {
	e.s.mu.RLock()
	defer e.s.mu.RUnlock()
	if e.s.failWith != nil {
		return 0, e.s.failWith
	}
	return int64(len(e.scoped(scope))), nil
}

func (e *employeeRepo) List(_ context.Context, scope employee.Scope) ([]employee.Employee, error) {
	e.s.mu.RLock()
	defer e.s.mu.RUnlock()
	if e.s.failWith != nil {
		return nil, e.s.failWith
	}
	return e.scoped(scope), nil
}

func (e *employeeRepo) Search(_ context.Context, scope employee.Scope, filter employee.SearchFilter) ([]employee.Employee, error) {
	e.s.mu.RLock()
	defer e.s.mu.RUnlock()
	if e.s.failWith != nil {
		return nil, e.s.failWith
	}

	query := strings.ToLower(strings.TrimSpace(filter.Query))
	var out []employee.Employee
	for _, emp := range e.scoped(scope) {
		if filter.Department != "" && emp.Department != filter.Department {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(emp.Name), query) &&
			!strings.Contains(strings.ToLower(emp.Username), query) &&
			!strings.Contains(strings.ToLower(emp.Email), query) {
			continue
		}
		out = append(out, emp)
	}
	return out, nil
}

func (e *employeeRepo) GetByID(_ context.Context, id string) (employee.Employee, error) {
	e.s.mu.RLock()
	defer e.s.mu.RUnlock()
	if e.s.failWith != nil {
		return employee.Employee{}, e.s.failWith
	}
	emp, ok := e.s.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return emp, nil
}

// ===== leave requests =====

type leaveRequestRepo struct{ s *Store }

func (l *leaveRequestRepo) ListApproved(_ context.Context, employeeID string, from, to time.Time) ([]leave.ApprovedRequest, error) {
	l.s.mu.RLock()
	defer l.s.mu.RUnlock()
	if l.s.failWith != nil {
		return nil, l.s.failWith
	}

	var out []leave.ApprovedRequest
	for _, r := range l.s.requests {
		if r.EmployeeID != employeeID || r.Status != leave.StatusApproved {
			continue
		}
		if r.EndDate.Before(from) || r.StartDate.After(to) {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (l *leaveRequestRepo) CountApprovedStarting(_ context.Context, employeeID string, requestType leave.RequestType, from, to time.Time) (int64, error) {
	l.s.mu.RLock()
	defer l.s.mu.RUnlock()
	if l.s.failWith != nil {
		return 0, l.s.failWith
	}

	var n int64
	for _, r := range l.s.requests {
		if r.EmployeeID == employeeID && r.Status == leave.StatusApproved &&
			r.RequestType == requestType && inRange(r.StartDate, from, to) {
			n++
		}
	}
	return n, nil
}
