package repositories

import (
	"context"
	"fmt"

	"medication-tracking-service/internal/domain/entities"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PatientRepository is the gorm implementation of PatientRepositoryContract.
type PatientRepository struct {
	db *gorm.DB
}

func NewPatientRepository(db *gorm.DB) PatientRepositoryContract {
	return &PatientRepository{db: db}
}

func (r *PatientRepository) Create(ctx context.Context, patient *entities.Patient) error {
	if err := r.db.WithContext(ctx).Create(patient).Error; err != nil {
		return fmt.Errorf("create patient: %w", err)
	}
	return nil
}

func (r *PatientRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Patient, error) {
	var p entities.Patient
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("get patient %s: %w", id, translate(err))
	}
	return &p, nil
}

func (r *PatientRepository) Update(ctx context.Context, patient *entities.Patient) error {
	err := r.db.WithContext(ctx).Model(patient).
		Select("name", "bed", "line_id", "updated_at").
		Updates(patient).Error
	if err != nil {
		return fmt.Errorf("update patient %s: %w", patient.ID, err)
	}
	return nil
}

func (r *PatientRepository) ListByLine(ctx context.Context, lineID uuid.UUID) ([]*entities.Patient, error) {
	var out []*entities.Patient
	err := r.db.WithContext(ctx).
		Where("line_id = ?", lineID).
		Order("bed ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list patients of line %s: %w", lineID, err)
	}
	return out, nil
}

func (r *PatientRepository) ListAll(ctx context.Context) ([]*entities.Patient, error) {
	var out []*entities.Patient
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	return out, nil
}
