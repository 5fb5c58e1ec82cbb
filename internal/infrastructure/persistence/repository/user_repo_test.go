package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/expensehub/expense-workflow/internal/application/port"
	"github.com/expensehub/expense-workflow/internal/domain/entity"
)

func TestUserRepository_GetByID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db.DB, zap.NewNop())

	user, err := repo.GetByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "John", user.Name)
	assert.Equal(t, "john@x.com", user.Email)
	assert.Equal(t, entity.RoleEmployee, user.Role)

	_, err = repo.GetByID(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, port.ErrNotFound)
}

func TestUserRepository_ListByRole(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db.DB, zap.NewNop())

	employees, err := repo.ListByRole(context.Background(), entity.RoleEmployee)
	require.NoError(t, err)
	require.Len(t, employees, 2)

	// Ordered by name
	assert.Equal(t, "Jane", employees[0].Name)
	assert.Equal(t, "John", employees[1].Name)

	managers, err := repo.ListByRole(context.Background(), entity.RoleManager)
	require.NoError(t, err)
	require.Len(t, managers, 1)
	assert.Equal(t, "Maria", managers[0].Name)

	admins, err := repo.ListByRole(context.Background(), entity.RoleAdmin)
	require.NoError(t, err)
	assert.Empty(t, admins)
}
