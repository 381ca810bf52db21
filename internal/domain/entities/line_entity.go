package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Line groups the beds and services one delivery round covers. A checkpoint
// scan only ever touches patients of the line it is addressed to.
type Line struct {
	ID        uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey"`
	Name      string    `json:"name" db:"name" gorm:"size:100;not null;uniqueIndex"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

func (l *Line) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
