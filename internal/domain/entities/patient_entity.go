package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Patient is an inpatient occupying a bed on a Line.
type Patient struct {
	ID        uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey"`
	Name      string    `json:"name" db:"name" gorm:"size:200;not null"`
	Bed       string    `json:"bed" db:"bed" gorm:"size:20"`
	LineID    uuid.UUID `json:"line_id" db:"line_id" gorm:"type:uuid;not null;index"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func (p *Patient) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
