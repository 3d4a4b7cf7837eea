// internal/audit/publisher.go
package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"walletledger/internal/domain"
)

// DefaultChannel is the Redis channel audit events are published on.
const DefaultChannel = "ledger_audit_events"

// Publisher fans a stored audit entry out to subscribers.
type Publisher interface {
	Publish(ctx context.Context, entry *domain.AuditLog) error
}

// redisClient is the part of *redis.Client the publisher needs.
type redisClient interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisPublisher publishes audit entries as JSON over Redis pub/sub.
type RedisPublisher struct {
	client  redisClient
	channel string
}

// NewRedisPublisher creates a RedisPublisher. An empty channel selects DefaultChannel.
func NewRedisPublisher(client redisClient, channel string) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisPublisher{client: client, channel: channel}
}

func (p *RedisPublisher) Publish(ctx context.Context, entry *domain.AuditLog) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal audit event: %w", err)
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish audit event to %s: %w", p.channel, err)
	}
	return nil
}
