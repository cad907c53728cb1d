package employee

import "context"

type EmployeeRepository interface {
	// Count returns the number of employees in scope
	Count(ctx context.Context, scope Scope) (int64, error)

	// List returns employees in scope ordered by name
	List(ctx context.Context, scope Scope) ([]Employee, error)

	// Search returns employees in scope matching filter
	Search(ctx context.Context, scope Scope, filter SearchFilter) ([]Employee, error)

	// GetByID returns ErrEmployeeNotFound for unknown ids
	GetByID(ctx context.Context, id string) (Employee, error)
}
