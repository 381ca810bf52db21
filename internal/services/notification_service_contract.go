package services

import (
	"context"

	"medication-tracking-service/internal/domain/dtos"

	"github.com/google/uuid"
)

// NotificationServiceContract consumes transition events and keeps a short
// activity feed per line for the ward screens.
type NotificationServiceContract interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	// Recent returns up to limit events of lineID, newest first.
	Recent(lineID uuid.UUID, limit int) []dtos.ProcessTransitionedEvent
}
