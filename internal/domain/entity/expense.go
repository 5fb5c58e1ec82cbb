package entity

import (
	"time"

	"github.com/expensehub/expense-workflow/internal/domain/workflow"
)

// ExpenseRequest represents a single employee expense request moving through
// the approval workflow. The id is assigned at creation and is immutable;
// only Status is mutated after creation.
type ExpenseRequest struct {
	ID             string          `json:"id"`
	RequesterID    string          `json:"user"`
	RequesterName  string          `json:"user_name,omitempty"`
	RequesterEmail string          `json:"user_email,omitempty"`
	Description    string          `json:"description"`
	Amount         float64         `json:"amount"`
	Category       string          `json:"category"`
	SubmittedDate  time.Time       `json:"submitted_date"`
	GroupID        *string         `json:"group,omitempty"`
	Status         workflow.Status `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// IsGroupExpense reports whether the request is associated with a group.
// A nil group id means an individual request.
func (e *ExpenseRequest) IsGroupExpense() bool {
	return e.GroupID != nil
}

// Recipient returns the notification recipient captured on the record at
// creation time. The decision path must not re-fetch the user.
func (e *ExpenseRequest) Recipient() Recipient {
	return Recipient{Name: e.RequesterName, Email: e.RequesterEmail}
}

// Recipient identifies who receives a decision notice
type Recipient struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Group represents a group reference. Only its presence matters to the
// workflow; membership is owned elsewhere.
type Group struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
