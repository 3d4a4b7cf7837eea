// internal/repository/postgres/audit_pg.go
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"walletledger/internal/domain"
	"walletledger/internal/repository"
)

// AuditRepository implements repository.AuditRepository for PostgreSQL.
type AuditRepository struct{}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository() repository.AuditRepository {
	return &AuditRepository{}
}

// CreateAuditLog appends an audit_logs row.
func (r *AuditRepository) CreateAuditLog(ctx context.Context, q repository.DBExecutor, entry *domain.AuditLog) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO audit_logs (event_type, action, entity_type, entity_id, reference, user_id, wallet_id,
                                      old_values, new_values, status, error_message, created_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING id`
	err := q.QueryRowContext(ctx, query,
		entry.EventType,
		entry.Action,
		entry.EntityType,
		entry.EntityID,
		entry.Reference,
		entry.UserID,
		entry.WalletID,
		jsonParam(entry.OldValues),
		jsonParam(entry.NewValues),
		entry.Status,
		entry.ErrorMessage,
		entry.CreatedAt,
	).Scan(&entry.ID)
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	return nil
}

// jsonParam passes JSON as text; lib/pq would send a raw []byte as bytea.
func jsonParam(raw json.RawMessage) interface{} {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
