package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/expensehub/expense-workflow/internal/application/port"
	"github.com/expensehub/expense-workflow/internal/domain/entity"
)

// UserRepository implements port.UserRepository on sqlite. The workflow core
// only reads from it; user CRUD belongs to the account service.
type UserRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB, logger *zap.Logger) port.UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

// GetByID retrieves a user by id
func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	query := `SELECT id, name, email, role, budget FROM users WHERE id = ?`

	var user entity.User
	var role string
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&role,
		&user.Budget,
	)
	if err == sql.ErrNoRows {
		return nil, port.ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get user", zap.String("user_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user.Role = entity.Role(role)
	return &user, nil
}

// ListByRole retrieves all users holding the given role
func (r *UserRepository) ListByRole(ctx context.Context, role entity.Role) ([]*entity.User, error) {
	query := `SELECT id, name, email, role, budget FROM users WHERE role = ? ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, role.String())
	if err != nil {
		r.logger.Error("Failed to list users by role",
			zap.String("role", role.String()),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*entity.User
	for rows.Next() {
		var user entity.User
		var roleStr string
		if err := rows.Scan(&user.ID, &user.Name, &user.Email, &roleStr, &user.Budget); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		user.Role = entity.Role(roleStr)
		users = append(users, &user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, nil
}
