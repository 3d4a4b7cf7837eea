// internal/audit/audit.go
package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"walletledger/internal/domain"
	"walletledger/internal/repository"
)

// Event types.
const (
	EventTypeWallet      = "wallet"
	EventTypeTransaction = "transaction"
	EventTypeTransfer    = "transfer"
	EventTypeLedger      = "ledger"
)

// Actions.
const (
	ActionWalletCreated        = "wallet_created"
	ActionWalletFunded         = "wallet_funded"
	ActionWalletWithdrawn      = "wallet_withdrawn"
	ActionWalletDeleted        = "wallet_deleted"
	ActionTransferCompleted    = "transfer_completed"
	ActionTransferFailed       = "transfer_failed"
	ActionIntegrityCheckFailed = "integrity_check_failed"
)

// Entity types.
const (
	EntityWallet      = "Wallet"
	EntityTransaction = "Transaction"
	EntityTransfer    = "Transfer"
)

// Event is a fact the ledger wants recorded. Zero-valued fields are stored as NULL.
type Event struct {
	EventType    string
	Action       string
	EntityType   string
	EntityID     *int64
	Reference    string
	UserID       *int64
	WalletID     *int64
	OldValues    map[string]any
	NewValues    map[string]any
	Status       string
	ErrorMessage string
}

// Logger records audit events. Implementations never fail the caller.
type Logger interface {
	Log(ctx context.Context, event Event)
}

// Service writes events to the audit_logs table and optionally publishes them.
type Service struct {
	repo      repository.AuditRepository
	q         repository.DBExecutor
	publisher Publisher
	logger    *slog.Logger
}

// NewService creates an audit Service. publisher may be nil.
func NewService(repo repository.AuditRepository, q repository.DBExecutor, publisher Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		q:         q,
		publisher: publisher,
		logger:    logger,
	}
}

// Log stores and publishes event. Failures are logged and swallowed.
func (s *Service) Log(ctx context.Context, event Event) {
	// The caller's request may already be finished; the audit row should still land.
	ctx = context.WithoutCancel(ctx)

	entry := s.toAuditLog(event)
	if err := s.repo.CreateAuditLog(ctx, s.q, entry); err != nil {
		s.logger.Error("Failed to write audit log",
			"error", err,
			"action", event.Action,
			"entity_type", event.EntityType,
		)
	}

	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, entry); err != nil {
		s.logger.Warn("Failed to publish audit event", "error", err, "action", event.Action)
	}
}

func (s *Service) toAuditLog(event Event) *domain.AuditLog {
	status := event.Status
	if status == "" {
		status = domain.AuditStatusSuccess
	}
	entry := &domain.AuditLog{
		EventType:  event.EventType,
		Action:     event.Action,
		EntityType: event.EntityType,
		EntityID:   event.EntityID,
		UserID:     event.UserID,
		WalletID:   event.WalletID,
		OldValues:  s.encode(event.OldValues),
		NewValues:  s.encode(event.NewValues),
		Status:     status,
		CreatedAt:  time.Now().UTC(),
	}
	if event.Reference != "" {
		ref := event.Reference
		entry.Reference = &ref
	}
	if event.ErrorMessage != "" {
		msg := event.ErrorMessage
		entry.ErrorMessage = &msg
	}
	return entry
}

func (s *Service) encode(values map[string]any) json.RawMessage {
	if len(values) == 0 {
		return nil
	}
	data, err := json.Marshal(values)
	if err != nil {
		s.logger.Warn("Failed to encode audit values", "error", err)
		return nil
	}
	return data
}

// Nop discards every event.
type Nop struct{}

func (Nop) Log(context.Context, Event) {}

// Int64 returns a pointer to v, for Event id fields.
func Int64(v int64) *int64 {
	return &v
}
