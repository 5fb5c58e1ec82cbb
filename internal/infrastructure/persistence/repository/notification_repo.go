package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/expensehub/expense-workflow/internal/application/port"
	"github.com/expensehub/expense-workflow/internal/domain/entity"
)

// NotificationRepository implements port.NotificationRepository on sqlite
type NotificationRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *sql.DB, logger *zap.Logger) port.NotificationRepository {
	return &NotificationRepository{
		db:     db,
		logger: logger,
	}
}

// Create records a notification attempt outcome. One row per decided
// request; the unique index on expense_id backs that invariant.
func (r *NotificationRepository) Create(ctx context.Context, n *entity.DecisionNotification) error {
	query := `
		INSERT INTO decision_notifications (
			expense_id, recipient_email, decision, status, error_message, created_at
		) VALUES (?, ?, ?, ?, ?, ?)
	`

	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	result, err := r.db.ExecContext(ctx, query,
		n.ExpenseID,
		n.RecipientEmail,
		n.Decision,
		n.Status,
		n.ErrorMessage,
		n.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create notification record",
			zap.String("expense_id", n.ExpenseID),
			zap.Error(err))
		return fmt.Errorf("failed to create notification record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	n.ID = id
	return nil
}

// GetByExpenseID retrieves the notification outcome for a decided request
func (r *NotificationRepository) GetByExpenseID(ctx context.Context, expenseID string) (*entity.DecisionNotification, error) {
	query := `
		SELECT id, expense_id, recipient_email, decision, status, error_message, created_at
		FROM decision_notifications
		WHERE expense_id = ?
	`

	var n entity.DecisionNotification
	var errorMsg sql.NullString

	err := r.db.QueryRowContext(ctx, query, expenseID).Scan(
		&n.ID,
		&n.ExpenseID,
		&n.RecipientEmail,
		&n.Decision,
		&n.Status,
		&errorMsg,
		&n.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, port.ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get notification record",
			zap.String("expense_id", expenseID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get notification record: %w", err)
	}

	if errorMsg.Valid {
		n.ErrorMessage = errorMsg.String
	}

	return &n, nil
}
