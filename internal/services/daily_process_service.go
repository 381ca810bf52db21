package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"medication-tracking-service/internal/domain/entities"
	"medication-tracking-service/internal/domain/repositories"

	"github.com/rs/zerolog"
)

type DailyProcessServiceImpl struct {
	repo     repositories.DailyProcessRepositoryContract
	location *time.Location
	logger   zerolog.Logger
}

func NewDailyProcessService(repo repositories.DailyProcessRepositoryContract, location *time.Location, logger zerolog.Logger) DailyProcessServiceContract {
	if location == nil {
		location = time.UTC
	}
	return &DailyProcessServiceImpl{
		repo:     repo,
		location: location,
		logger:   logger.With().Str("component", "daily_process").Logger(),
	}
}

func (s *DailyProcessServiceImpl) Day(now time.Time) string {
	return now.In(s.location).Format(entities.DayLayout)
}

func (s *DailyProcessServiceImpl) Current(ctx context.Context, now time.Time) (*entities.DailyProcess, error) {
	day := s.Day(now)
	batch, err := s.repo.FindByDay(ctx, day)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("%w (%s)", ErrNoActiveBatch, day)
	}
	if err != nil {
		return nil, fmt.Errorf("resolving daily process %s: %w", day, err)
	}
	return batch, nil
}

func (s *DailyProcessServiceImpl) OpenToday(ctx context.Context, now time.Time) (*entities.DailyProcess, bool, error) {
	day := s.Day(now)
	batch, created, err := s.repo.GetOrCreate(ctx, day)
	if err != nil {
		return nil, false, fmt.Errorf("opening daily process %s: %w", day, err)
	}
	if created {
		s.logger.Info().Str("day", day).Str("daily_process_id", batch.ID.String()).Msg("daily_process_opened")
	}
	return batch, created, nil
}
