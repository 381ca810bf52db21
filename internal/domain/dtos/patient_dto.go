package dtos

import (
	"time"

	"github.com/google/uuid"
)

type PatientDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Bed       string    `json:"bed"`
	LineID    uuid.UUID `json:"line_id"`
	LineName  string    `json:"line_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateLineRequest defines the payload for registering a delivery line.
type CreateLineRequest struct {
	Name string `json:"name"`
}
