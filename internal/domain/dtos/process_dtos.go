package dtos

import "github.com/google/uuid"

// StartProcessRequest is the nurse action that opens a process for a patient
// in today's batch.
type StartProcessRequest struct {
	PatientID uuid.UUID `json:"patient_id"`
	Step      string    `json:"step"`
	Notes     string    `json:"notes,omitempty"`
}

// ProcessQuery narrows today's process listing. Empty fields mean "any".
type ProcessQuery struct {
	Step      string `query:"step"`
	Status    string `query:"status"`
	LineID    string `query:"line_id"`
	PatientID string `query:"patient_id"`
}
