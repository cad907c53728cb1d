package employee

import "time"

type Role string

const (
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
	RoleAdmin    Role = "admin"
)

// IsManagement reports whether the role may read company-wide analytics.
func (r Role) IsManagement() bool {
	return r == RoleManager || r == RoleAdmin
}

type Employee struct {
	ID         string
	Username   string
	Name       string
	Email      string
	Department string
	Role       Role
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Scope selects the employee population an aggregate is computed over.
// An empty Role matches every role.
type Scope struct {
	Role       Role
	ActiveOnly bool
}

var (
	// WorkforceScope is the population behind company-wide attendance rates:
	// active employees with role employee.
	WorkforceScope = Scope{Role: RoleEmployee, ActiveOnly: true}

	// ActiveScope is every active employee regardless of role.
	ActiveScope = Scope{ActiveOnly: true}
)

// Includes reports whether e belongs to the scope.
func (s Scope) Includes(e Employee) bool {
	if s.ActiveOnly && !e.IsActive {
		return false
	}
	return s.Role == "" || e.Role == s.Role
}

// SearchFilter narrows a scoped employee listing.
type SearchFilter struct {
	Query      string // case-insensitive match on name, username or email
	Department string // exact match
}
