package services

import (
	"context"

	"medication-tracking-service/internal/domain/entities"
	"medication-tracking-service/internal/domain/workflow"

	"github.com/google/uuid"
)

// QRRegistryServiceContract administers the printed checkpoint tokens.
type QRRegistryServiceContract interface {
	Issue(ctx context.Context, checkpoint workflow.CheckpointType, label string) (*entities.QRCode, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	// Resolve maps a scanned token to its entry, or ErrQRCodeNotFound.
	Resolve(ctx context.Context, token string) (*entities.QRCode, error)
	List(ctx context.Context) ([]*entities.QRCode, error)
}
