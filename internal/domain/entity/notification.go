package entity

import "time"

// Notification status constants
const (
	NotificationStatusSent   = "SENT"
	NotificationStatusFailed = "FAILED"
)

// DecisionNotification records the single notification attempt made for a
// decided expense request. Exactly one row exists per decision; the attempt
// is never retried.
type DecisionNotification struct {
	ID             int64     `json:"id"`
	ExpenseID      string    `json:"expense_id"`
	RecipientEmail string    `json:"recipient_email"`
	Decision       string    `json:"decision"`
	Status         string    `json:"status"`
	ErrorMessage   string    `json:"error_message,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
