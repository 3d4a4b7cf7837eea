// internal/repository/postgres/user_pg.go
package postgres

import (
	"context"
	"fmt"

	"walletledger/internal/domain"
	"walletledger/internal/repository"
	"walletledger/internal/util"
)

// UserRepository implements repository.UserRepository for PostgreSQL.
type UserRepository struct{}

// NewUserRepository creates a new UserRepository.
func NewUserRepository() repository.UserRepository {
	return &UserRepository{}
}

// CreateUser inserts a wallet owner.
func (r *UserRepository) CreateUser(ctx context.Context, q repository.DBExecutor, user *domain.User) error {
	query := `INSERT INTO users (username, created_at, updated_at)
              VALUES ($1, $2, $3) RETURNING id`
	err := q.QueryRowContext(ctx, query, user.Username, user.CreatedAt, user.UpdatedAt).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err, constraintUsername) {
			return fmt.Errorf("username %q: %w", user.Username, util.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// UserExists reports whether a user with the given ID exists.
func (r *UserRepository) UserExists(ctx context.Context, q repository.DBExecutor, id int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`
	if err := q.GetContext(ctx, &exists, query, id); err != nil {
		return false, fmt.Errorf("failed to check user %d existence: %w", id, err)
	}
	return exists, nil
}
