package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/expensehub/expense-workflow/internal/application/port"
	"github.com/expensehub/expense-workflow/internal/domain/entity"
	"github.com/expensehub/expense-workflow/internal/domain/workflow"
)

// ExpenseRepository implements port.ExpenseRepository on sqlite
type ExpenseRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewExpenseRepository creates a new expense repository
func NewExpenseRepository(db *sql.DB, logger *zap.Logger) port.ExpenseRepository {
	return &ExpenseRepository{
		db:     db,
		logger: logger,
	}
}

const expenseColumns = `id, requester_id, requester_name, requester_email,
	description, amount, category, submitted_date, group_id, status,
	created_at, updated_at`

// Create persists a new expense request
func (r *ExpenseRepository) Create(ctx context.Context, expense *entity.ExpenseRequest) error {
	query := `
		INSERT INTO expense_requests (
			id, requester_id, requester_name, requester_email,
			description, amount, category, submitted_date, group_id, status,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	now := time.Now().UTC()
	if expense.CreatedAt.IsZero() {
		expense.CreatedAt = now
	}
	expense.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		expense.ID,
		expense.RequesterID,
		expense.RequesterName,
		expense.RequesterEmail,
		expense.Description,
		expense.Amount,
		expense.Category,
		expense.SubmittedDate,
		expense.GroupID,
		expense.Status.String(),
		expense.CreatedAt,
		expense.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create expense request",
			zap.String("expense_id", expense.ID),
			zap.Error(err))
		return fmt.Errorf("failed to create expense request: %w", err)
	}

	return nil
}

// GetByID retrieves an expense request by id
func (r *ExpenseRepository) GetByID(ctx context.Context, id string) (*entity.ExpenseRequest, error) {
	query := fmt.Sprintf("SELECT %s FROM expense_requests WHERE id = ?", expenseColumns)

	expense, err := scanExpense(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, port.ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get expense request",
			zap.String("expense_id", id),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get expense request: %w", err)
	}

	return expense, nil
}

// Find retrieves expense requests matching the filter, newest first
func (r *ExpenseRepository) Find(ctx context.Context, filter port.ExpenseFilter) ([]*entity.ExpenseRequest, error) {
	query := fmt.Sprintf("SELECT %s FROM expense_requests", expenseColumns)

	var conditions []string
	var args []interface{}

	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, filter.Status.String())
	}
	if filter.StatusNot != "" {
		conditions = append(conditions, "status != ?")
		args = append(args, filter.StatusNot.String())
	}
	switch filter.Group {
	case port.GroupAbsent:
		conditions = append(conditions, "group_id IS NULL")
	case port.GroupPresent:
		conditions = append(conditions, "group_id IS NOT NULL")
	}

	for i, cond := range conditions {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY submitted_date DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query expense requests", zap.Error(err))
		return nil, fmt.Errorf("failed to query expense requests: %w", err)
	}
	defer rows.Close()

	return collectExpenses(rows)
}

// ListByRequester retrieves all expense requests submitted by one user
func (r *ExpenseRepository) ListByRequester(ctx context.Context, requesterID string) ([]*entity.ExpenseRequest, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM expense_requests WHERE requester_id = ? ORDER BY submitted_date DESC",
		expenseColumns)

	rows, err := r.db.QueryContext(ctx, query, requesterID)
	if err != nil {
		r.logger.Error("Failed to list expense requests by requester",
			zap.String("requester_id", requesterID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list expense requests: %w", err)
	}
	defer rows.Close()

	return collectExpenses(rows)
}

// Decide applies a terminal status with a guard on the current status being
// pending. The single UPDATE is the only concurrency protection the store
// offers, and it is enough: one caller flips the row, everyone else sees it
// as already decided.
func (r *ExpenseRepository) Decide(ctx context.Context, id string, status workflow.Status) error {
	query := `
		UPDATE expense_requests
		SET status = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		status.String(), time.Now().UTC(), id, workflow.StatusPending.String())
	if err != nil {
		r.logger.Error("Failed to update expense status",
			zap.String("expense_id", id),
			zap.String("status", status.String()),
			zap.Error(err))
		return fmt.Errorf("failed to update expense status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected > 0 {
		return nil
	}

	// No row updated: either the id is unknown or the record left pending.
	var existing string
	err = r.db.QueryRowContext(ctx,
		"SELECT status FROM expense_requests WHERE id = ?", id).Scan(&existing)
	if err == sql.ErrNoRows {
		return port.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to check expense status: %w", err)
	}
	return workflow.ErrAlreadyDecided
}

// rowScanner covers *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanExpense(row rowScanner) (*entity.ExpenseRequest, error) {
	var expense entity.ExpenseRequest
	var groupID sql.NullString
	var status string

	err := row.Scan(
		&expense.ID,
		&expense.RequesterID,
		&expense.RequesterName,
		&expense.RequesterEmail,
		&expense.Description,
		&expense.Amount,
		&expense.Category,
		&expense.SubmittedDate,
		&groupID,
		&status,
		&expense.CreatedAt,
		&expense.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if groupID.Valid {
		expense.GroupID = &groupID.String
	}
	expense.Status = workflow.Status(status)

	return &expense, nil
}

func collectExpenses(rows *sql.Rows) ([]*entity.ExpenseRequest, error) {
	var expenses []*entity.ExpenseRequest
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense request: %w", err)
		}
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expense requests: %w", err)
	}
	return expenses, nil
}
