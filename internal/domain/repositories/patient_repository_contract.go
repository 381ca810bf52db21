package repositories

import (
	"context"

	"medication-tracking-service/internal/domain/entities"

	"github.com/google/uuid"
)

type PatientRepositoryContract interface {
	Create(ctx context.Context, patient *entities.Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Patient, error)
	Update(ctx context.Context, patient *entities.Patient) error
	ListByLine(ctx context.Context, lineID uuid.UUID) ([]*entities.Patient, error)
	ListAll(ctx context.Context) ([]*entities.Patient, error)
}
