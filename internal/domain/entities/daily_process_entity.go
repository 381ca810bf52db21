package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DayLayout is the format of DailyProcess.Day.
const DayLayout = "2006-01-02"

// DailyProcess is the operating-day batch every MedicationProcess belongs to.
type DailyProcess struct {
	ID        uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey"`
	Day       string    `json:"day" db:"day" gorm:"size:10;not null;uniqueIndex"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

func (d *DailyProcess) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
