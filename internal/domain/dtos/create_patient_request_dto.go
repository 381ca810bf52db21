package dtos

import "github.com/google/uuid"

// CreatePatientRequest defines the payload for admitting a patient to a line.
type CreatePatientRequest struct {
	Name   string    `json:"name"`
	Bed    string    `json:"bed"`
	LineID uuid.UUID `json:"line_id"`
}
