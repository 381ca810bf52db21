package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"medication-tracking-service/internal/adapters"
	"medication-tracking-service/internal/domain/dtos"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
)

const (
	defaultFeedSize = 50
	// seenWindow bounds how many event ids are remembered for dedupe,
	// independently of how many events a feed keeps.
	seenWindow = 4096
)

// NotificationServiceImpl implements NotificationServiceContract.
type NotificationServiceImpl struct {
	queueAdapter adapters.QueueAdapter
	logger       zerolog.Logger
	feedSize     int

	mu    sync.RWMutex
	feeds map[uuid.UUID][]dtos.ProcessTransitionedEvent
	seen  *lru.Cache[uuid.UUID, struct{}]
}

func NewNotificationService(queueAdapter adapters.QueueAdapter, feedSize int, logger zerolog.Logger) NotificationServiceContract {
	if feedSize <= 0 {
		feedSize = defaultFeedSize
	}
	// lru.New only fails on a non-positive size.
	seen, _ := lru.New[uuid.UUID, struct{}](seenWindow)
	return &NotificationServiceImpl{
		queueAdapter: queueAdapter,
		logger:       logger.With().Str("component", "notifications").Logger(),
		feedSize:     feedSize,
		feeds:        make(map[uuid.UUID][]dtos.ProcessTransitionedEvent),
		seen:         seen,
	}
}

func (s *NotificationServiceImpl) Start(ctx context.Context) error {
	if err := s.queueAdapter.StartConsuming(ctx, TransitionEventsQueue, s.handleTransition); err != nil {
		return fmt.Errorf("starting consumer for %s: %w", TransitionEventsQueue, err)
	}
	s.logger.Info().Str("queue", TransitionEventsQueue).Msg("notifications_started")
	return nil
}

func (s *NotificationServiceImpl) Stop(ctx context.Context) error {
	return s.queueAdapter.StopConsuming(ctx, TransitionEventsQueue)
}

// handleTransition records one event. Redelivered events are dropped by EventID.
func (s *NotificationServiceImpl) handleTransition(ctx context.Context, data []byte) error {
	var evt dtos.ProcessTransitionedEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		return fmt.Errorf("decoding transition event: %w", err)
	}

	s.mu.Lock()
	if s.seen.Contains(evt.EventID) {
		s.mu.Unlock()
		return nil
	}
	s.seen.Add(evt.EventID, struct{}{})
	feed := append(s.feeds[evt.LineID], evt)
	if len(feed) > s.feedSize {
		feed = append([]dtos.ProcessTransitionedEvent(nil), feed[len(feed)-s.feedSize:]...)
	}
	s.feeds[evt.LineID] = feed
	s.mu.Unlock()

	s.logger.Info().
		Str("process_id", evt.ProcessID.String()).
		Str("line_id", evt.LineID.String()).
		Str("from", evt.FromStatus).
		Str("to", evt.ToStatus).
		Str("checkpoint", evt.Checkpoint).
		Msg("process_transition_notified")
	return nil
}

func (s *NotificationServiceImpl) Recent(lineID uuid.UUID, limit int) []dtos.ProcessTransitionedEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	feed := s.feeds[lineID]
	if limit <= 0 || limit > len(feed) {
		limit = len(feed)
	}
	out := make([]dtos.ProcessTransitionedEvent, 0, limit)
	for i := len(feed) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, feed[i])
	}
	return out
}
