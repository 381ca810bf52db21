package repositories

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is returned by every repository when the requested row does not exist.
var ErrNotFound = errors.New("record not found")

// ErrConflict is returned when a write collides with a uniqueness rule.
var ErrConflict = errors.New("record conflicts with an existing one")

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
