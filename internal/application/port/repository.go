package port

import (
	"context"

	"github.com/expensehub/expense-workflow/internal/domain/entity"
	"github.com/expensehub/expense-workflow/internal/domain/workflow"
)

// GroupPresence selects expense requests by whether a group is attached
type GroupPresence int

const (
	// GroupAny places no constraint on group presence
	GroupAny GroupPresence = iota
	// GroupAbsent selects individual requests (group IS NULL)
	GroupAbsent
	// GroupPresent selects group requests (group IS NOT NULL)
	GroupPresent
)

// ExpenseFilter is the query contract of the expense store. Status and
// StatusNot are mutually exclusive; a zero filter selects everything.
type ExpenseFilter struct {
	Status    workflow.Status
	StatusNot workflow.Status
	Group     GroupPresence
}

// ExpenseRepository defines persistence operations for ExpenseRequest
type ExpenseRepository interface {
	Create(ctx context.Context, expense *entity.ExpenseRequest) error
	GetByID(ctx context.Context, id string) (*entity.ExpenseRequest, error)
	Find(ctx context.Context, filter ExpenseFilter) ([]*entity.ExpenseRequest, error)
	ListByRequester(ctx context.Context, requesterID string) ([]*entity.ExpenseRequest, error)

	// Decide sets the status of a pending request. The update is conditional
	// on the current status being pending: a request that exists but is no
	// longer pending yields workflow.ErrAlreadyDecided, an unknown id yields
	// ErrNotFound. Exactly one concurrent caller can win.
	Decide(ctx context.Context, id string, status workflow.Status) error
}

// UserRepository defines read access to the user directory. The workflow
// core never writes users.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*entity.User, error)
	ListByRole(ctx context.Context, role entity.Role) ([]*entity.User, error)
}

// NotificationRepository records decision notification attempt outcomes
type NotificationRepository interface {
	Create(ctx context.Context, n *entity.DecisionNotification) error
	GetByExpenseID(ctx context.Context, expenseID string) (*entity.DecisionNotification, error)
}
