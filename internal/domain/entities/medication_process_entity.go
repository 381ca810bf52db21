package entities

import (
	"time"

	"medication-tracking-service/internal/domain/workflow"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MedicationProcess tracks one (patient, workflow step) pair inside one daily batch.
// Status is only ever changed through the repository compare-and-set primitive.
type MedicationProcess struct {
	ID             uuid.UUID       `json:"id" db:"id" gorm:"type:uuid;primaryKey"`
	PatientID      uuid.UUID       `json:"patient_id" db:"patient_id" gorm:"type:uuid;not null;index:idx_process_patient_step,priority:1"`
	DailyProcessID uuid.UUID       `json:"daily_process_id" db:"daily_process_id" gorm:"type:uuid;not null;index:idx_process_batch,priority:1;index:idx_process_patient_step,priority:3"`
	Step           workflow.Step   `json:"step" db:"step" gorm:"type:varchar(32);not null;index:idx_process_batch,priority:2;index:idx_process_patient_step,priority:2"`
	Status         workflow.Status `json:"status" db:"status" gorm:"type:varchar(32);not null;index:idx_process_batch,priority:3"`
	Notes          string          `json:"notes,omitempty" db:"notes" gorm:"type:text"`
	CreatedBy      string          `json:"created_by" db:"created_by" gorm:"size:100"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

func (m *MedicationProcess) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
