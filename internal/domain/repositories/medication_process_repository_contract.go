package repositories

import (
	"context"

	"medication-tracking-service/internal/domain/entities"
	"medication-tracking-service/internal/domain/workflow"

	"github.com/google/uuid"
)

// EligibleFilter selects the records a checkpoint scan may act on.
type EligibleFilter struct {
	DailyProcessID uuid.UUID
	Step           workflow.Step
	Statuses       []workflow.Status
	LineID         uuid.UUID
}

// ProcessListFilter narrows MedicationProcess listings. Zero values mean "any".
type ProcessListFilter struct {
	DailyProcessID uuid.UUID
	Step           workflow.Step
	Status         workflow.Status
	LineID         uuid.UUID
	PatientID      uuid.UUID
}

type MedicationProcessRepositoryContract interface {
	// Create inserts a new process. Its Status is the initial status; it is
	// never written again outside CompareAndSetStatus.
	Create(ctx context.Context, process *entities.MedicationProcess) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.MedicationProcess, error)
	FindEligible(ctx context.Context, filter EligibleFilter) ([]*entities.MedicationProcess, error)
	List(ctx context.Context, filter ProcessListFilter) ([]*entities.MedicationProcess, error)
	// FindActive returns the non-terminal process of patient for step in the
	// given batch, or ErrNotFound.
	FindActive(ctx context.Context, patientID uuid.UUID, step workflow.Step, dailyProcessID uuid.UUID) (*entities.MedicationProcess, error)

	// CompareAndSetStatus moves process id from expected to next and appends
	// receipt in the same transaction. It returns false, nil when the record
	// is no longer in expected (a concurrent scan won).
	CompareAndSetStatus(ctx context.Context, id uuid.UUID, expected, next workflow.Status, receipt *entities.ScanRecord) (bool, error)
	ListScanRecords(ctx context.Context, processID uuid.UUID) ([]*entities.ScanRecord, error)
}
