package services

import (
	"context"

	"medication-tracking-service/internal/domain/dtos"
	"medication-tracking-service/internal/domain/entities"

	"github.com/google/uuid"
)

// PatientServiceContract manages the census: lines and the patients in their beds.
type PatientServiceContract interface {
	Register(ctx context.Context, req dtos.CreatePatientRequest) (*entities.Patient, error)
	Get(ctx context.Context, id uuid.UUID) (*entities.Patient, error)
	// Update moves a patient to another bed or line.
	Update(ctx context.Context, id uuid.UUID, req dtos.UpdatePatientRequest) (*entities.Patient, error)
	ListByLine(ctx context.Context, lineID uuid.UUID) ([]*entities.Patient, error)

	CreateLine(ctx context.Context, req dtos.CreateLineRequest) (*entities.Line, error)
	ListLines(ctx context.Context) ([]*entities.Line, error)
}
