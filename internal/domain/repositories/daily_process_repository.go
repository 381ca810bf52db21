package repositories

import (
	"context"
	"errors"
	"fmt"

	"medication-tracking-service/internal/domain/entities"

	"gorm.io/gorm"
)

type DailyProcessRepository struct {
	db *gorm.DB
}

func NewDailyProcessRepository(db *gorm.DB) DailyProcessRepositoryContract {
	return &DailyProcessRepository{db: db}
}

func (r *DailyProcessRepository) FindByDay(ctx context.Context, day string) (*entities.DailyProcess, error) {
	var d entities.DailyProcess
	if err := r.db.WithContext(ctx).Where("day = ?", day).First(&d).Error; err != nil {
		return nil, fmt.Errorf("find daily process %s: %w", day, translate(err))
	}
	return &d, nil
}

func (r *DailyProcessRepository) GetOrCreate(ctx context.Context, day string) (*entities.DailyProcess, bool, error) {
	existing, err := r.FindByDay(ctx, day)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	d := &entities.DailyProcess{Day: day}
	if createErr := r.db.WithContext(ctx).Create(d).Error; createErr != nil {
		// Lost the race against a concurrent opener: the unique index on day
		// rejected us, so the winner's row is the batch.
		existing, err := r.FindByDay(ctx, day)
		if err != nil {
			return nil, false, fmt.Errorf("create daily process %s: %w", day, createErr)
		}
		return existing, false, nil
	}
	return d, true, nil
}
