package repositories

import (
	"context"

	"medication-tracking-service/internal/domain/entities"

	"github.com/google/uuid"
)

type LineRepositoryContract interface {
	Create(ctx context.Context, line *entities.Line) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Line, error)
	ListAll(ctx context.Context) ([]*entities.Line, error)
}
