package dtos

import (
	"time"

	"github.com/google/uuid"
)

// ProcessTransitionedEvent is published once per committed status change.
type ProcessTransitionedEvent struct {
	EventID        uuid.UUID `json:"event_id"`
	ProcessID      uuid.UUID `json:"process_id"`
	PatientID      uuid.UUID `json:"patient_id"`
	DailyProcessID uuid.UUID `json:"daily_process_id"`
	LineID         uuid.UUID `json:"line_id"`
	ScanRecordID   uuid.UUID `json:"scan_record_id"`
	QRCodeID       uuid.UUID `json:"qr_code_id"`
	Step           string    `json:"step"`
	Checkpoint     string    `json:"checkpoint"`
	FromStatus     string    `json:"from_status"`
	ToStatus       string    `json:"to_status"`
	ScannedBy      string    `json:"scanned_by"`
	OccurredAt     time.Time `json:"occurred_at"`
}
