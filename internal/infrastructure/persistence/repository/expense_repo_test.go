package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/expensehub/expense-workflow/internal/application/port"
	"github.com/expensehub/expense-workflow/internal/domain/entity"
	"github.com/expensehub/expense-workflow/internal/domain/workflow"
	"github.com/expensehub/expense-workflow/migrations"
	"github.com/expensehub/expense-workflow/pkg/database"
)

func setupTestDB(t *testing.T) *database.DB {
	t.Helper()

	logger := zap.NewNop()
	db, err := database.New(database.Config{
		Path:         filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.NewMigrator(db, logger).RunMigrations(migrations.FS))

	seed := []string{
		`INSERT INTO users (id, name, email, role, budget) VALUES
			('u1', 'John', 'john@x.com', 'employee', 1000),
			('u2', 'Jane', 'jane@x.com', 'employee', 1000),
			('m1', 'Maria', 'maria@x.com', 'manager', 0)`,
		`INSERT INTO groups (id, name) VALUES ('g1', 'Platform')`,
	}
	for _, stmt := range seed {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}

	return db
}

func newTestExpense(id, requester string, groupID *string, submitted time.Time) *entity.ExpenseRequest {
	return &entity.ExpenseRequest{
		ID:             id,
		RequesterID:    requester,
		RequesterName:  "John",
		RequesterEmail: "john@x.com",
		Description:    "Trip",
		Amount:         500,
		Category:       "Travel",
		SubmittedDate:  submitted,
		GroupID:        groupID,
		Status:         workflow.StatusPending,
	}
}

func TestExpenseRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewExpenseRepository(db.DB, zap.NewNop())
	ctx := context.Background()

	submitted := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	expense := newTestExpense("e1", "u1", nil, submitted)
	require.NoError(t, repo.Create(ctx, expense))

	got, err := repo.GetByID(ctx, "e1")
	require.NoError(t, err)

	assert.Equal(t, "e1", got.ID)
	assert.Equal(t, "u1", got.RequesterID)
	assert.Equal(t, "John", got.RequesterName)
	assert.Equal(t, "john@x.com", got.RequesterEmail)
	assert.Equal(t, 500.0, got.Amount)
	assert.Equal(t, workflow.StatusPending, got.Status)
	assert.Nil(t, got.GroupID)
	assert.True(t, got.SubmittedDate.Equal(submitted))
}

func TestExpenseRepository_GetByID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewExpenseRepository(db.DB, zap.NewNop())

	_, err := repo.GetByID(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, port.ErrNotFound)
}

func TestExpenseRepository_Find(t *testing.T) {
	db := setupTestDB(t)
	repo := NewExpenseRepository(db.DB, zap.NewNop())
	ctx := context.Background()

	group := "g1"
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	// Individual pending, group pending, decided individual
	require.NoError(t, repo.Create(ctx, newTestExpense("e1", "u1", nil, base)))
	require.NoError(t, repo.Create(ctx, newTestExpense("e2", "u1", &group, base.Add(time.Hour))))
	require.NoError(t, repo.Create(ctx, newTestExpense("e3", "u2", nil, base.Add(2*time.Hour))))
	require.NoError(t, repo.Decide(ctx, "e3", workflow.StatusApproved))

	t.Run("pending individual", func(t *testing.T) {
		got, err := repo.Find(ctx, port.ExpenseFilter{
			Status: workflow.StatusPending,
			Group:  port.GroupAbsent,
		})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "e1", got[0].ID)
	})

	t.Run("pending group", func(t *testing.T) {
		got, err := repo.Find(ctx, port.ExpenseFilter{
			Status: workflow.StatusPending,
			Group:  port.GroupPresent,
		})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "e2", got[0].ID)
		require.NotNil(t, got[0].GroupID)
		assert.Equal(t, "g1", *got[0].GroupID)
	})

	t.Run("decided", func(t *testing.T) {
		got, err := repo.Find(ctx, port.ExpenseFilter{StatusNot: workflow.StatusPending})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "e3", got[0].ID)
		assert.Equal(t, workflow.StatusApproved, got[0].Status)
	})

	t.Run("newest first", func(t *testing.T) {
		got, err := repo.Find(ctx, port.ExpenseFilter{})
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "e3", got[0].ID)
		assert.Equal(t, "e2", got[1].ID)
		assert.Equal(t, "e1", got[2].ID)
	})
}

func TestExpenseRepository_ListByRequester(t *testing.T) {
	db := setupTestDB(t)
	repo := NewExpenseRepository(db.DB, zap.NewNop())
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Create(ctx, newTestExpense("e1", "u1", nil, base)))
	require.NoError(t, repo.Create(ctx, newTestExpense("e2", "u2", nil, base)))

	got, err := repo.ListByRequester(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "e1", got[0].ID)

	got, err = repo.ListByRequester(ctx, "m1")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestExpenseRepository_Decide(t *testing.T) {
	db := setupTestDB(t)
	repo := NewExpenseRepository(db.DB, zap.NewNop())
	ctx := context.Background()

	submitted := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Create(ctx, newTestExpense("e1", "u1", nil, submitted)))

	require.NoError(t, repo.Decide(ctx, "e1", workflow.StatusApproved))

	got, err := repo.GetByID(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusApproved, got.Status)

	// A second decision on the same record loses
	err = repo.Decide(ctx, "e1", workflow.StatusRejected)
	assert.ErrorIs(t, err, workflow.ErrAlreadyDecided)

	// The losing decision must not have altered the record
	got, err = repo.GetByID(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusApproved, got.Status)
}

func TestExpenseRepository_Decide_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewExpenseRepository(db.DB, zap.NewNop())

	err := repo.Decide(context.Background(), "nonexistent", workflow.StatusApproved)
	assert.ErrorIs(t, err, port.ErrNotFound)
}
