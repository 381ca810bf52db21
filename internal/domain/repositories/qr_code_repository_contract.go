package repositories

import (
	"context"

	"medication-tracking-service/internal/domain/entities"

	"github.com/google/uuid"
)

type QRCodeRepositoryContract interface {
	Create(ctx context.Context, code *entities.QRCode) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.QRCode, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	ListAll(ctx context.Context) ([]*entities.QRCode, error)
}
