package entities

import (
	"time"

	"medication-tracking-service/internal/domain/workflow"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QRCode is a printed token bound to one checkpoint type. Only IsActive may
// change after issue.
type QRCode struct {
	ID        uuid.UUID               `json:"id" db:"id" gorm:"type:uuid;primaryKey"`
	Type      workflow.CheckpointType `json:"type" db:"type" gorm:"type:varchar(48);not null"`
	Label     string                  `json:"label" db:"label" gorm:"size:200"`
	IsActive  bool                    `json:"is_active" db:"is_active" gorm:"not null"`
	CreatedAt time.Time               `json:"created_at" db:"created_at"`
	UpdatedAt time.Time               `json:"updated_at" db:"updated_at"`
}

func (q *QRCode) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}
