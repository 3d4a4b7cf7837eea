// internal/domain/user.go
package domain

import "time"

// User owns at most one wallet. The ledger only needs to know that the owner exists.
type User struct {
	ID        int64     `db:"id" json:"id"`
	Username  string    `db:"username" json:"username"` // Unique
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// NewUser returns an unsaved owner record stamped with the current UTC time.
func NewUser(username string) *User {
	now := time.Now().UTC()
	return &User{Username: username, CreatedAt: now, UpdatedAt: now}
}
