package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"medication-tracking-service/internal/adapters"

	"github.com/rs/zerolog"
)

// OutboxRelayServiceImpl polls the outbox and hands entries to a pool of
// publishing workers. An entry is acked only after the queue accepted it, so
// delivery is at least once.
type OutboxRelayServiceImpl struct {
	outbox     RelayOutbox
	queue      adapters.QueueAdapter
	logger     zerolog.Logger
	jobChan    chan adapters.OutboxEntry
	stopChan   chan struct{}
	done       chan struct{}
	numWorkers int
	wg         sync.WaitGroup
	stopOnce   sync.Once
	started    atomic.Bool

	interval       time.Duration
	batchSize      int
	publishTimeout time.Duration

	mu       sync.Mutex
	inflight map[uint64]struct{}
}

func NewOutboxRelayService(outbox RelayOutbox, queue adapters.QueueAdapter, numWorkers int, interval time.Duration, logger zerolog.Logger) OutboxRelayServiceContract {
	if numWorkers <= 0 {
		numWorkers = 2
	}
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	return &OutboxRelayServiceImpl{
		outbox:         outbox,
		queue:          queue,
		logger:         logger.With().Str("component", "outbox_relay").Logger(),
		jobChan:        make(chan adapters.OutboxEntry, numWorkers*4),
		stopChan:       make(chan struct{}),
		done:           make(chan struct{}),
		numWorkers:     numWorkers,
		interval:       interval,
		batchSize:      100,
		publishTimeout: 5 * time.Second,
		inflight:       make(map[uint64]struct{}),
	}
}

func (s *OutboxRelayServiceImpl) worker(id int) {
	defer s.wg.Done()
	for entry := range s.jobChan {
		s.deliver(entry)
		s.mu.Lock()
		delete(s.inflight, entry.Seq)
		s.mu.Unlock()
	}
	s.logger.Debug().Int("worker", id).Msg("relay_worker_finished")
}

func (s *OutboxRelayServiceImpl) deliver(entry adapters.OutboxEntry) bool {
	ctx, cancel := context.WithTimeout(context.Background(), s.publishTimeout)
	defer cancel()

	if err := s.queue.Publish(ctx, entry.Queue, entry.Payload); err != nil {
		s.logger.Warn().Err(err).Uint64("seq", entry.Seq).Int("attempts", entry.Attempts+1).Msg("relay_publish_failed")
		if rerr := s.outbox.Retry(entry.Seq); rerr != nil {
			s.logger.Error().Err(rerr).Uint64("seq", entry.Seq).Msg("relay_retry_mark_failed")
		}
		return false
	}
	if err := s.outbox.Ack(entry.Seq); err != nil {
		s.logger.Error().Err(err).Uint64("seq", entry.Seq).Msg("relay_ack_failed")
		return false
	}
	return true
}

// poll queues every pending entry that is not already being delivered.
func (s *OutboxRelayServiceImpl) poll() {
	entries, err := s.outbox.Pending(s.batchSize)
	if err != nil {
		s.logger.Error().Err(err).Msg("relay_poll_failed")
		return
	}
	for _, e := range entries {
		s.mu.Lock()
		_, busy := s.inflight[e.Seq]
		if !busy {
			s.inflight[e.Seq] = struct{}{}
		}
		s.mu.Unlock()
		if busy {
			continue
		}
		select {
		case s.jobChan <- e:
		case <-s.stopChan:
			return
		}
	}
}

func (s *OutboxRelayServiceImpl) Start(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return fmt.Errorf("outbox relay already started")
	}
	s.wg.Add(s.numWorkers)
	for i := 1; i <= s.numWorkers; i++ {
		go s.worker(i)
	}
	s.logger.Info().Int("workers", s.numWorkers).Dur("interval", s.interval).Msg("relay_started")

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.poll()
			case <-ctx.Done():
				s.shutdown()
				return
			case <-s.stopChan:
				s.shutdown()
				return
			}
		}
	}()
	return nil
}

func (s *OutboxRelayServiceImpl) shutdown() {
	close(s.jobChan)
	s.wg.Wait()
	s.logger.Info().Msg("relay_stopped")
}

// Stop signals the poller and waits for in-flight deliveries or ctx.
func (s *OutboxRelayServiceImpl) Stop(ctx context.Context) error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	if !s.started.Load() {
		return nil
	}
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// DrainOnce must not run alongside a started relay.
func (s *OutboxRelayServiceImpl) DrainOnce(ctx context.Context) (int, error) {
	entries, err := s.outbox.Pending(0)
	if err != nil {
		return 0, fmt.Errorf("reading outbox: %w", err)
	}
	delivered := 0
	for _, e := range entries {
		if ctx.Err() != nil {
			return delivered, ctx.Err()
		}
		if s.deliver(e) {
			delivered++
		}
	}
	return delivered, nil
}
