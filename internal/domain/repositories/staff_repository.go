package repositories

import (
	"context"
	"fmt"

	"medication-tracking-service/internal/domain/entities"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StaffRepository struct {
	db *gorm.DB
}

func NewStaffRepository(db *gorm.DB) StaffRepositoryContract {
	return &StaffRepository{db: db}
}

func (r *StaffRepository) Create(ctx context.Context, staff *entities.Staff) error {
	if err := r.db.WithContext(ctx).Create(staff).Error; err != nil {
		return fmt.Errorf("create staff %q: %w", staff.Username, err)
	}
	return nil
}

func (r *StaffRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Staff, error) {
	var s entities.Staff
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("get staff %s: %w", id, translate(err))
	}
	return &s, nil
}

func (r *StaffRepository) FindByUsername(ctx context.Context, username string) (*entities.Staff, error) {
	var s entities.Staff
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&s).Error; err != nil {
		return nil, fmt.Errorf("find staff %q: %w", username, translate(err))
	}
	return &s, nil
}

func (r *StaffRepository) CreateSession(ctx context.Context, session *entities.Session) error {
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (r *StaffRepository) GetSession(ctx context.Context, token uuid.UUID) (*entities.Session, error) {
	var s entities.Session
	if err := r.db.WithContext(ctx).First(&s, "token = ?", token).Error; err != nil {
		return nil, fmt.Errorf("get session: %w", translate(err))
	}
	return &s, nil
}

func (r *StaffRepository) DeleteSession(ctx context.Context, token uuid.UUID) error {
	if err := r.db.WithContext(ctx).Delete(&entities.Session{}, "token = ?", token).Error; err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
