package dtos

import (
	"github.com/google/uuid"
)

// Identity is the authenticated staff member behind a request.
type Identity struct {
	StaffID  uuid.UUID `json:"staff_id"`
	Username string    `json:"username"`
	Role     string    `json:"role"`
}

// DispatchRequest is one QR checkpoint scan. Caller is filled from the
// session, never from the body.
type DispatchRequest struct {
	ScanToken         string    `json:"scan_token"`
	DestinationLineID string    `json:"destination_line_id"`
	TransactionType   string    `json:"transaction_type"`
	Temperature       *float64  `json:"temperature"`
	Step              string    `json:"step"`
	Caller            *Identity `json:"-"`
}

// DispatchResult reports the outcome of a scan that did not fail as a whole.
// Records that lost a concurrent race are listed in SkippedProcessIDs.
type DispatchResult struct {
	Success                bool        `json:"success"`
	TransitionedCount      int         `json:"transitioned_count"`
	SkippedCount           int         `json:"skipped_count"`
	TransitionedProcessIDs []uuid.UUID `json:"transitioned_process_ids"`
	SkippedProcessIDs      []uuid.UUID `json:"skipped_process_ids,omitempty"`
	Checkpoint             string      `json:"checkpoint"`
	NewStatus              string      `json:"new_status"`
	DailyProcessID         uuid.UUID   `json:"daily_process_id"`
	LineName               string      `json:"line_name"`
	NextStepHint           string      `json:"next_step_hint"`
}
