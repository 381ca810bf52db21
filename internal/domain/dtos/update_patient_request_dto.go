package dtos

import "github.com/google/uuid"

// UpdatePatientRequest moves a patient to another bed or line. Empty fields
// are left unchanged.
type UpdatePatientRequest struct {
	Name   string    `json:"name,omitempty"`
	Bed    string    `json:"bed,omitempty"`
	LineID uuid.UUID `json:"line_id,omitempty"`
}
