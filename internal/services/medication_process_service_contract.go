package services

import (
	"context"
	"time"

	"medication-tracking-service/internal/domain/dtos"
	"medication-tracking-service/internal/domain/entities"

	"github.com/google/uuid"
)

// MedicationProcessServiceContract covers the nurse-side lifecycle of a
// process outside checkpoint scans.
type MedicationProcessServiceContract interface {
	// Start opens an IN_PROGRESS process in today's batch. It fails with
	// ErrActiveProcessExists when the patient already has a non-terminal
	// process for the same step today.
	Start(ctx context.Context, req dtos.StartProcessRequest, createdBy string, now time.Time) (*entities.MedicationProcess, error)
	Get(ctx context.Context, id uuid.UUID) (*entities.MedicationProcess, error)
	ListToday(ctx context.Context, query dtos.ProcessQuery, now time.Time) ([]*entities.MedicationProcess, error)
	// History returns the scan receipts of a process, oldest first.
	History(ctx context.Context, id uuid.UUID) ([]*entities.ScanRecord, error)
}
