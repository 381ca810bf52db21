package repositories

import (
	"context"
	"fmt"

	"medication-tracking-service/internal/domain/entities"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LineRepository struct {
	db *gorm.DB
}

func NewLineRepository(db *gorm.DB) LineRepositoryContract {
	return &LineRepository{db: db}
}

func (r *LineRepository) Create(ctx context.Context, line *entities.Line) error {
	if err := r.db.WithContext(ctx).Create(line).Error; err != nil {
		return fmt.Errorf("create line %q: %w", line.Name, err)
	}
	return nil
}

func (r *LineRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Line, error) {
	var l entities.Line
	if err := r.db.WithContext(ctx).First(&l, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("get line %s: %w", id, translate(err))
	}
	return &l, nil
}

func (r *LineRepository) ListAll(ctx context.Context) ([]*entities.Line, error) {
	var out []*entities.Line
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list lines: %w", err)
	}
	return out, nil
}
