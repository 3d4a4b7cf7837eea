// internal/repository/audit_repo.go
package repository

import (
	"context"

	"walletledger/internal/domain"
)

// AuditRepository appends audit log rows.
type AuditRepository interface {
	CreateAuditLog(ctx context.Context, q DBExecutor, entry *domain.AuditLog) error
}
