package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/workforce-analytics/internal/domain/employee"
	"github.com/cmlabs-hris/workforce-analytics/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

const employeeColumns = `e.id::text, e.username, e.name, e.email, e.department, e.role, e.is_active, e.created_at, e.updated_at`

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var emp employee.Employee
	err := row.Scan(
		&emp.ID, &emp.Username, &emp.Name, &emp.Email, &emp.Department,
		&emp.Role, &emp.IsActive, &emp.CreatedAt, &emp.UpdatedAt,
	)
	return emp, err
}

func scanEmployees(rows pgx.Rows) ([]employee.Employee, error) {
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, emp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate employees: %w", err)
	}
	return employees, nil
}

// Count implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) Count(ctx context.Context, scope employee.Scope) (int64, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT COUNT(*) FROM employees e WHERE ` + scopeFilter

	var count int64
	if err := q.QueryRow(ctx, query, string(scope.Role), scope.ActiveOnly).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count employees: %w", err)
	}
	return count, nil
}

// List implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) List(ctx context.Context, scope employee.Scope) ([]employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + employeeColumns + `
		FROM employees e
		WHERE ` + scopeFilter + `
		ORDER BY e.name, e.id
	`

	rows, err := q.Query(ctx, query, string(scope.Role), scope.ActiveOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	return scanEmployees(rows)
}

// Search implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) Search(ctx context.Context, scope employee.Scope, filter employee.SearchFilter) ([]employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + employeeColumns + `
		FROM employees e
		WHERE ` + scopeFilter + `
		  AND ($3::text = '' OR e.name ILIKE '%' || $3 || '%' OR e.username ILIKE '%' || $3 || '%' OR e.email ILIKE '%' || $3 || '%')
		  AND ($4::text = '' OR e.department = $4)
		ORDER BY e.name, e.id
	`

	rows, err := q.Query(ctx, query, string(scope.Role), scope.ActiveOnly, escapeLike(filter.Query), filter.Department)
	if err != nil {
		return nil, fmt.Errorf("failed to search employees: %w", err)
	}
	return scanEmployees(rows)
}

// GetByID implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + employeeColumns + ` FROM employees e WHERE e.id::text = $1`

	emp, err := scanEmployee(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee with id %s: %w", id, err)
	}
	return emp, nil
}

// escapeLike escapes LIKE wildcards in user input.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(strings.TrimSpace(s))
}
