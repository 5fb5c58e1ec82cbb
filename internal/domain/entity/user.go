package entity

import "fmt"

// Role is the closed set of roles recognized by the authorization gate.
// Tokens carrying anything else are rejected at the boundary.
type Role string

const (
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
	RoleAdmin    Role = "admin"
)

// ParseRole validates a free-form role string against the closed enum
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleEmployee, RoleManager, RoleAdmin:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role: %q", s)
	}
}

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

// User represents a user referenced by the workflow. The core never mutates
// users; budget bookkeeping belongs to an admin-facing collaborator.
type User struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Email  string  `json:"email"`
	Role   Role    `json:"role"`
	Budget float64 `json:"budget"`
}

// EmployeeExpenses pairs an employee with their expense requests, as served
// by the manager overview endpoint.
type EmployeeExpenses struct {
	User     User              `json:"user"`
	Expenses []*ExpenseRequest `json:"expenses"`
}
