// internal/repository/user_repo.go
package repository

import (
	"context"

	"walletledger/internal/domain"
)

// UserRepository stores wallet owners.
type UserRepository interface {
	// CreateUser inserts user and sets its ID. A taken username yields util.ErrDuplicateEntry.
	CreateUser(ctx context.Context, q DBExecutor, user *domain.User) error
	// UserExists reports whether an owner with the given ID exists.
	UserExists(ctx context.Context, q DBExecutor, id int64) (bool, error)
}
