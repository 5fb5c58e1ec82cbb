package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/expensehub/expense-workflow/internal/application/port"
	"github.com/expensehub/expense-workflow/internal/domain/entity"
	"github.com/expensehub/expense-workflow/internal/domain/workflow"
)

func TestNotificationRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	expenses := NewExpenseRepository(db.DB, zap.NewNop())
	repo := NewNotificationRepository(db.DB, zap.NewNop())
	ctx := context.Background()

	submitted := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, expenses.Create(ctx, newTestExpense("e1", "u1", nil, submitted)))
	require.NoError(t, expenses.Decide(ctx, "e1", workflow.StatusApproved))

	notification := &entity.DecisionNotification{
		ExpenseID:      "e1",
		RecipientEmail: "john@x.com",
		Decision:       "approved",
		Status:         entity.NotificationStatusSent,
	}
	require.NoError(t, repo.Create(ctx, notification))
	assert.NotZero(t, notification.ID)

	got, err := repo.GetByExpenseID(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, "e1", got.ExpenseID)
	assert.Equal(t, "john@x.com", got.RecipientEmail)
	assert.Equal(t, "approved", got.Decision)
	assert.Equal(t, entity.NotificationStatusSent, got.Status)
	assert.Empty(t, got.ErrorMessage)
}

func TestNotificationRepository_FailedOutcome(t *testing.T) {
	db := setupTestDB(t)
	expenses := NewExpenseRepository(db.DB, zap.NewNop())
	repo := NewNotificationRepository(db.DB, zap.NewNop())
	ctx := context.Background()

	submitted := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, expenses.Create(ctx, newTestExpense("e1", "u1", nil, submitted)))
	require.NoError(t, expenses.Decide(ctx, "e1", workflow.StatusRejected))

	notification := &entity.DecisionNotification{
		ExpenseID:      "e1",
		RecipientEmail: "john@x.com",
		Decision:       "rejected",
		Status:         entity.NotificationStatusFailed,
		ErrorMessage:   "smtp unreachable",
	}
	require.NoError(t, repo.Create(ctx, notification))

	got, err := repo.GetByExpenseID(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, entity.NotificationStatusFailed, got.Status)
	assert.Equal(t, "smtp unreachable", got.ErrorMessage)
}

func TestNotificationRepository_OneRowPerExpense(t *testing.T) {
	db := setupTestDB(t)
	expenses := NewExpenseRepository(db.DB, zap.NewNop())
	repo := NewNotificationRepository(db.DB, zap.NewNop())
	ctx := context.Background()

	submitted := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, expenses.Create(ctx, newTestExpense("e1", "u1", nil, submitted)))
	require.NoError(t, expenses.Decide(ctx, "e1", workflow.StatusApproved))

	first := &entity.DecisionNotification{
		ExpenseID:      "e1",
		RecipientEmail: "john@x.com",
		Decision:       "approved",
		Status:         entity.NotificationStatusSent,
	}
	require.NoError(t, repo.Create(ctx, first))

	// The unique index on expense_id rejects a second outcome row
	second := &entity.DecisionNotification{
		ExpenseID:      "e1",
		RecipientEmail: "john@x.com",
		Decision:       "approved",
		Status:         entity.NotificationStatusSent,
	}
	assert.Error(t, repo.Create(ctx, second))
}

func TestNotificationRepository_GetByExpenseID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewNotificationRepository(db.DB, zap.NewNop())

	_, err := repo.GetByExpenseID(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, port.ErrNotFound)
}
