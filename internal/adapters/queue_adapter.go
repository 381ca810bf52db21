package adapters

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// JobHandler processes one message taken from a queue.
type JobHandler func(ctx context.Context, data []byte) error

// QueueAdapter is the contract for publishing to and consuming from named queues.
type QueueAdapter interface {
	// Publish sends jobData to queueName.
	Publish(ctx context.Context, queueName string, jobData []byte) error
	// StartConsuming runs handler for every message of queueName in the
	// background until StopConsuming or Close is called.
	StartConsuming(ctx context.Context, queueName string, handler JobHandler) error
	// StopConsuming stops the consumer of queueName.
	StopConsuming(ctx context.Context, queueName string) error
	// Close stops every consumer and waits for in-flight handlers.
	Close() error
}

// ErrPublishTimeout is returned when an in-memory queue stays full.
var ErrPublishTimeout = errors.New("timeout publishing to queue")

// InMemoryQueueAdapter is a QueueAdapter backed by buffered channels. It is
// used when no broker is configured and in tests.
type InMemoryQueueAdapter struct {
	queues      map[string]chan []byte
	stopChan    map[string]chan struct{}
	mu          sync.Mutex
	logger      zerolog.Logger
	wg          sync.WaitGroup
	consumerCtx context.Context
	cancelFunc  context.CancelFunc

	bufferSize     int
	publishTimeout time.Duration
}

// NewInMemoryQueueAdapter creates an InMemoryQueueAdapter whose queues hold
// up to bufferSize messages.
func NewInMemoryQueueAdapter(bufferSize int, logger zerolog.Logger) *InMemoryQueueAdapter {
	if bufferSize <= 0 {
		bufferSize = 100
	}
	consumerCtx, cancelFunc := context.WithCancel(context.Background())
	return &InMemoryQueueAdapter{
		queues:         make(map[string]chan []byte),
		stopChan:       make(map[string]chan struct{}),
		logger:         logger.With().Str("component", "memory_queue").Logger(),
		consumerCtx:    consumerCtx,
		cancelFunc:     cancelFunc,
		bufferSize:     bufferSize,
		publishTimeout: 2 * time.Second,
	}
}

func (q *InMemoryQueueAdapter) getOrCreateQueue(queueName string) chan []byte {
	q.mu.Lock()
	defer q.mu.Unlock()
	ch, ok := q.queues[queueName]
	if !ok {
		ch = make(chan []byte, q.bufferSize)
		q.queues[queueName] = ch
		q.logger.Debug().Str("queue", queueName).Msg("queue_created")
	}
	return ch
}

func (q *InMemoryQueueAdapter) Publish(ctx context.Context, queueName string, jobData []byte) error {
	queue := q.getOrCreateQueue(queueName)

	timer := time.NewTimer(q.publishTimeout)
	defer timer.Stop()

	select {
	case queue <- jobData:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		q.logger.Warn().Str("queue", queueName).Int("depth", len(queue)).Msg("publish_timeout")
		return fmt.Errorf("%w: %s", ErrPublishTimeout, queueName)
	}
}

func (q *InMemoryQueueAdapter) StartConsuming(ctx context.Context, queueName string, handler JobHandler) error {
	queue := q.getOrCreateQueue(queueName)

	q.mu.Lock()
	if _, running := q.stopChan[queueName]; running {
		q.mu.Unlock()
		return fmt.Errorf("queue %s already has a consumer", queueName)
	}
	stop := make(chan struct{})
	q.stopChan[queueName] = stop
	q.mu.Unlock()

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		q.logger.Info().Str("queue", queueName).Msg("consumer_started")
		for {
			select {
			case data := <-queue:
				if err := handler(q.consumerCtx, data); err != nil {
					q.logger.Error().Err(err).Str("queue", queueName).Msg("handler_failed")
				}
			case <-stop:
				q.logger.Info().Str("queue", queueName).Msg("consumer_stopped")
				return
			case <-ctx.Done():
				q.logger.Info().Str("queue", queueName).Msg("consumer_context_done")
				return
			case <-q.consumerCtx.Done():
				return
			}
		}
	}()
	return nil
}

// StopConsuming signals the consumer of queueName to exit. Pending messages
// stay buffered for a later consumer.
func (q *InMemoryQueueAdapter) StopConsuming(ctx context.Context, queueName string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if stop, ok := q.stopChan[queueName]; ok {
		close(stop)
		delete(q.stopChan, queueName)
	}
	return nil
}

func (q *InMemoryQueueAdapter) Close() error {
	q.cancelFunc()
	q.wg.Wait()
	return nil
}

// Depth returns the number of messages waiting in queueName.
func (q *InMemoryQueueAdapter) Depth(queueName string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.queues[queueName])
}
