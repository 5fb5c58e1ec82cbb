package service

import (
	"errors"
	"fmt"
)

var (
	// ErrExpenseNotFound is returned when no expense request matches the id
	ErrExpenseNotFound = errors.New("expense request not found")

	// ErrNoPendingExpenses is returned when the individual pending-requests
	// view is empty. The group and history views return empty lists instead;
	// the asymmetry is part of the API contract.
	ErrNoPendingExpenses = errors.New("no pending expenses found")

	// ErrStoreUnavailable wraps store failures on list reads. Handlers must
	// surface it generically, without the underlying detail.
	ErrStoreUnavailable = errors.New("expense store unavailable")
)

// ValidationError reports the first failing field of a create or decide
// payload. Message is the caller-facing text.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NotificationError wraps a mail dispatch failure that occurred after the
// decision was durably persisted. The status change is NOT rolled back.
type NotificationError struct {
	Err error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("notification dispatch failed: %v", e.Err)
}

func (e *NotificationError) Unwrap() error {
	return e.Err
}
