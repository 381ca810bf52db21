package database

import (
	"fmt"

	"medication-tracking-service/internal/domain/entities"

	"gorm.io/gorm"
)

// openProcessIndex keeps at most one process per patient, step and day that
// has not completed. ERROR rows count, since a retry reopens them.
const openProcessIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_medication_processes_open_slot
ON medication_processes (patient_id, step, daily_process_id)
WHERE status <> 'COMPLETED'`

func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&entities.Line{},
		&entities.Patient{},
		&entities.DailyProcess{},
		&entities.MedicationProcess{},
		&entities.QRCode{},
		&entities.ScanRecord{},
		&entities.Staff{},
		&entities.Session{},
	)
	if err != nil {
		return err
	}
	if err := db.Exec(openProcessIndex).Error; err != nil {
		return fmt.Errorf("create open process index: %w", err)
	}
	return nil
}
