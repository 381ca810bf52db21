package services

import (
	"context"

	"medication-tracking-service/internal/adapters"
)

// RelayOutbox is the part of adapters.Outbox the relay drains.
type RelayOutbox interface {
	Pending(limit int) ([]adapters.OutboxEntry, error)
	Ack(seq uint64) error
	Retry(seq uint64) error
}

// OutboxRelayServiceContract moves outbox entries onto the queue in the background.
type OutboxRelayServiceContract interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	// DrainOnce publishes everything currently pending and returns how many
	// entries were delivered.
	DrainOnce(ctx context.Context) (int, error)
}
