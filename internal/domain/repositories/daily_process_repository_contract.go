package repositories

import (
	"context"

	"medication-tracking-service/internal/domain/entities"
)

type DailyProcessRepositoryContract interface {
	// FindByDay returns ErrNotFound when no batch was opened for day (YYYY-MM-DD).
	FindByDay(ctx context.Context, day string) (*entities.DailyProcess, error)
	// GetOrCreate returns the batch for day, creating it at most once.
	GetOrCreate(ctx context.Context, day string) (*entities.DailyProcess, bool, error)
}
