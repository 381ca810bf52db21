package services

import (
	"context"
	"time"

	"medication-tracking-service/internal/domain/entities"
)

// DailyProcessServiceContract resolves the operating-day batch. The day is
// computed from the instant passed in, in the hospital time zone, on every
// call.
type DailyProcessServiceContract interface {
	// Current returns today's batch or ErrNoActiveBatch.
	Current(ctx context.Context, now time.Time) (*entities.DailyProcess, error)
	// OpenToday returns today's batch, creating it if needed. The bool is
	// true when this call created it.
	OpenToday(ctx context.Context, now time.Time) (*entities.DailyProcess, bool, error)
	// Day formats now as the batch key (YYYY-MM-DD).
	Day(now time.Time) string
}
