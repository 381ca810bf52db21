package entities

import (
	"time"

	"medication-tracking-service/internal/domain/workflow"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ScanRecord is the append-only receipt of one successful transition.
type ScanRecord struct {
	ID                  uuid.UUID       `json:"id" db:"id" gorm:"type:uuid;primaryKey"`
	MedicationProcessID uuid.UUID       `json:"medication_process_id" db:"medication_process_id" gorm:"type:uuid;not null;index"`
	PatientID           uuid.UUID       `json:"patient_id" db:"patient_id" gorm:"type:uuid;not null"`
	QRCodeID            uuid.UUID       `json:"qr_code_id" db:"qr_code_id" gorm:"type:uuid;not null"`
	DailyProcessID      uuid.UUID       `json:"daily_process_id" db:"daily_process_id" gorm:"type:uuid;not null;index"`
	ScannedBy           string          `json:"scanned_by" db:"scanned_by" gorm:"size:100;not null"`
	FromStatus          workflow.Status `json:"from_status" db:"from_status" gorm:"type:varchar(32);not null"`
	ToStatus            workflow.Status `json:"to_status" db:"to_status" gorm:"type:varchar(32);not null"`
	DestinationLineID   uuid.UUID       `json:"destination_line_id" db:"destination_line_id" gorm:"type:uuid;not null"`
	TransactionType     string          `json:"transaction_type" db:"transaction_type" gorm:"size:50;not null"`
	Temperature         float64         `json:"temperature" db:"temperature"`
	CreatedAt           time.Time       `json:"created_at" db:"created_at"`
}

func (s *ScanRecord) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
