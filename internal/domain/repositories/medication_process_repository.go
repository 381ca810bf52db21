package repositories

import (
	"context"
	"fmt"
	"time"

	"medication-tracking-service/internal/database"
	"medication-tracking-service/internal/domain/entities"
	"medication-tracking-service/internal/domain/workflow"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MedicationProcessRepository struct {
	db *gorm.DB
}

func NewMedicationProcessRepository(db *gorm.DB) MedicationProcessRepositoryContract {
	return &MedicationProcessRepository{db: db}
}

func (r *MedicationProcessRepository) Create(ctx context.Context, process *entities.MedicationProcess) error {
	if err := r.db.WithContext(ctx).Create(process).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("create medication process: %w", ErrConflict)
		}
		return fmt.Errorf("create medication process: %w", err)
	}
	return nil
}

func (r *MedicationProcessRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.MedicationProcess, error) {
	var p entities.MedicationProcess
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("get medication process %s: %w", id, translate(err))
	}
	return &p, nil
}

func (r *MedicationProcessRepository) FindEligible(ctx context.Context, f EligibleFilter) ([]*entities.MedicationProcess, error) {
	if len(f.Statuses) == 0 {
		return nil, nil
	}
	statuses := make([]string, len(f.Statuses))
	for i, s := range f.Statuses {
		statuses[i] = string(s)
	}

	var out []*entities.MedicationProcess
	err := r.db.WithContext(ctx).
		Select("medication_processes.*").
		Joins("JOIN patients ON patients.id = medication_processes.patient_id").
		Where("medication_processes.daily_process_id = ?", f.DailyProcessID).
		Where("medication_processes.step = ?", string(f.Step)).
		Where("medication_processes.status IN ?", statuses).
		Where("patients.line_id = ?", f.LineID).
		Order("medication_processes.created_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("find eligible medication processes: %w", err)
	}
	return out, nil
}

func (r *MedicationProcessRepository) List(ctx context.Context, f ProcessListFilter) ([]*entities.MedicationProcess, error) {
	q := r.db.WithContext(ctx).Select("medication_processes.*")
	if f.LineID != uuid.Nil {
		q = q.Joins("JOIN patients ON patients.id = medication_processes.patient_id").
			Where("patients.line_id = ?", f.LineID)
	}
	if f.DailyProcessID != uuid.Nil {
		q = q.Where("medication_processes.daily_process_id = ?", f.DailyProcessID)
	}
	if f.Step != "" {
		q = q.Where("medication_processes.step = ?", string(f.Step))
	}
	if f.Status != "" {
		q = q.Where("medication_processes.status = ?", string(f.Status))
	}
	if f.PatientID != uuid.Nil {
		q = q.Where("medication_processes.patient_id = ?", f.PatientID)
	}

	var out []*entities.MedicationProcess
	if err := q.Order("medication_processes.created_at ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list medication processes: %w", err)
	}
	return out, nil
}

func (r *MedicationProcessRepository) FindActive(ctx context.Context, patientID uuid.UUID, step workflow.Step, dailyProcessID uuid.UUID) (*entities.MedicationProcess, error) {
	var p entities.MedicationProcess
	err := r.db.WithContext(ctx).
		Where("patient_id = ? AND step = ? AND daily_process_id = ?", patientID, string(step), dailyProcessID).
		Where("status <> ?", string(workflow.StatusCompleted)).
		First(&p).Error
	if err != nil {
		return nil, fmt.Errorf("find active process of patient %s: %w", patientID, translate(err))
	}
	return &p, nil
}

func (r *MedicationProcessRepository) CompareAndSetStatus(
	ctx context.Context,
	id uuid.UUID,
	expected, next workflow.Status,
	receipt *entities.ScanRecord,
) (bool, error) {
	swapped := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&entities.MedicationProcess{}).
			Where("id = ? AND status = ?", id, string(expected)).
			Updates(map[string]interface{}{
				"status":     string(next),
				"updated_at": time.Now().UTC(),
			})
		if res.Error != nil {
			return fmt.Errorf("update status of process %s: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return nil
		}

		if receipt != nil {
			receipt.MedicationProcessID = id
			receipt.FromStatus = expected
			receipt.ToStatus = next
			if err := tx.Create(receipt).Error; err != nil {
				return fmt.Errorf("append scan record for process %s: %w", id, err)
			}
		}
		swapped = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return swapped, nil
}

func (r *MedicationProcessRepository) ListScanRecords(ctx context.Context, processID uuid.UUID) ([]*entities.ScanRecord, error) {
	var out []*entities.ScanRecord
	err := r.db.WithContext(ctx).
		Where("medication_process_id = ?", processID).
		Order("created_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list scan records of process %s: %w", processID, err)
	}
	return out, nil
}
