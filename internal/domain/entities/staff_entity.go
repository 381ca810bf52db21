package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Staff roles.
const (
	RoleNurse      = "nurse"
	RolePharmacist = "pharmacist"
	RoleAdmin      = "admin"
)

// Staff is a hospital user allowed to scan checkpoints.
type Staff struct {
	ID           uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey"`
	Username     string    `json:"username" db:"username" gorm:"size:100;not null;uniqueIndex"`
	DisplayName  string    `json:"display_name" db:"display_name" gorm:"size:200"`
	PasswordHash string    `json:"-" db:"password_hash" gorm:"not null"`
	Role         string    `json:"role" db:"role" gorm:"size:20;not null"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

func (s *Staff) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Session binds an opaque bearer token to a staff member until ExpiresAt.
type Session struct {
	Token     uuid.UUID `json:"token" db:"token" gorm:"type:uuid;primaryKey"`
	StaffID   uuid.UUID `json:"staff_id" db:"staff_id" gorm:"type:uuid;not null;index"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at" gorm:"not null"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
