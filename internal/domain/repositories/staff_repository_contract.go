package repositories

import (
	"context"

	"medication-tracking-service/internal/domain/entities"

	"github.com/google/uuid"
)

type StaffRepositoryContract interface {
	Create(ctx context.Context, staff *entities.Staff) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Staff, error)
	FindByUsername(ctx context.Context, username string) (*entities.Staff, error)

	CreateSession(ctx context.Context, session *entities.Session) error
	GetSession(ctx context.Context, token uuid.UUID) (*entities.Session, error)
	DeleteSession(ctx context.Context, token uuid.UUID) error
}
