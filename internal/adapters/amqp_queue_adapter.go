package adapters

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// AMQPQueueAdapter publishes to durable RabbitMQ queues with publisher
// confirms and consumes them with manual acks.
type AMQPQueueAdapter struct {
	conn *amqp.Connection
	ch   *amqp.Channel

	acks <-chan amqp.Confirmation
	mu   sync.Mutex // serializes Publish while waiting for confirms

	declared map[string]bool

	consumersMu sync.Mutex
	consumers   map[string]*amqpConsumer
	wg          sync.WaitGroup

	prefetch int
	logger   zerolog.Logger
}

type amqpConsumer struct {
	ch     *amqp.Channel
	tag    string
	cancel context.CancelFunc
}

// DialAMQP connects to url ("amqp://" or "amqps://") and opens a confirming
// publish channel.
func DialAMQP(url string, prefetch int, logger zerolog.Logger) (*AMQPQueueAdapter, error) {
	var (
		conn *amqp.Connection
		err  error
	)
	if strings.HasPrefix(url, "amqps://") {
		conn, err = amqp.DialTLS(url, &tls.Config{MinVersion: tls.VersionTLS12})
	} else {
		conn, err = amqp.Dial(url)
	}
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("amqp confirm mode: %w", err)
	}
	if prefetch <= 0 {
		prefetch = 10
	}

	return &AMQPQueueAdapter{
		conn:      conn,
		ch:        ch,
		acks:      ch.NotifyPublish(make(chan amqp.Confirmation, 1)),
		declared:  make(map[string]bool),
		consumers: make(map[string]*amqpConsumer),
		prefetch:  prefetch,
		logger:    logger.With().Str("component", "amqp_queue").Logger(),
	}, nil
}

// Ping reports whether the broker connection is still open.
func (a *AMQPQueueAdapter) Ping() error {
	if a.conn == nil || a.conn.IsClosed() {
		return errors.New("rabbitmq connection is closed")
	}
	return nil
}

func declareQueue(ch *amqp.Channel, name string) error {
	_, err := ch.QueueDeclare(name, true, false, false, false, nil)
	return err
}

// Publish sends jobData as a persistent JSON message and waits for the
// broker's ack.
func (a *AMQPQueueAdapter) Publish(ctx context.Context, queueName string, jobData []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.declared[queueName] {
		if err := declareQueue(a.ch, queueName); err != nil {
			return fmt.Errorf("declare %s: %w", queueName, err)
		}
		a.declared[queueName] = true
	}

	err := a.ch.PublishWithContext(ctx, "", queueName, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Timestamp:    time.Now(),
		Body:         jobData,
	})
	if err != nil {
		return fmt.Errorf("publish to %s: %w", queueName, err)
	}

	select {
	case conf, ok := <-a.acks:
		if !ok {
			return errors.New("confirm channel closed")
		}
		if !conf.Ack {
			return fmt.Errorf("publish NACK from broker for %s", queueName)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// StartConsuming opens a dedicated channel for queueName. A message is acked
// when handler succeeds and dead-lettered (nack without requeue) otherwise.
func (a *AMQPQueueAdapter) StartConsuming(ctx context.Context, queueName string, handler JobHandler) error {
	a.consumersMu.Lock()
	defer a.consumersMu.Unlock()
	if _, ok := a.consumers[queueName]; ok {
		return fmt.Errorf("queue %s already has a consumer", queueName)
	}

	ch, err := a.conn.Channel()
	if err != nil {
		return fmt.Errorf("amqp consumer channel: %w", err)
	}
	if err := declareQueue(ch, queueName); err != nil {
		_ = ch.Close()
		return fmt.Errorf("declare %s: %w", queueName, err)
	}
	if err := ch.Qos(a.prefetch, 0, false); err != nil {
		_ = ch.Close()
		return fmt.Errorf("qos %s: %w", queueName, err)
	}

	tag := "medtrack-" + queueName
	deliveries, err := ch.Consume(queueName, tag, false, false, false, false, nil)
	if err != nil {
		_ = ch.Close()
		return fmt.Errorf("consume %s: %w", queueName, err)
	}

	cctx, cancel := context.WithCancel(ctx)
	a.consumers[queueName] = &amqpConsumer{ch: ch, tag: tag, cancel: cancel}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.logger.Info().Str("queue", queueName).Msg("consumer_started")
		for {
			select {
			case d, ok := <-deliveries:
				if !ok {
					a.logger.Info().Str("queue", queueName).Msg("consumer_stopped")
					return
				}
				if err := handler(cctx, d.Body); err != nil {
					a.logger.Error().Err(err).Str("queue", queueName).Msg("handler_failed")
					_ = d.Nack(false, false)
					continue
				}
				_ = d.Ack(false)
			case <-cctx.Done():
				return
			}
		}
	}()
	return nil
}

func (a *AMQPQueueAdapter) StopConsuming(ctx context.Context, queueName string) error {
	a.consumersMu.Lock()
	c, ok := a.consumers[queueName]
	delete(a.consumers, queueName)
	a.consumersMu.Unlock()
	if !ok {
		return nil
	}
	c.cancel()
	if err := c.ch.Cancel(c.tag, false); err != nil {
		a.logger.Warn().Err(err).Str("queue", queueName).Msg("consumer_cancel_failed")
	}
	return c.ch.Close()
}

func (a *AMQPQueueAdapter) Close() error {
	a.consumersMu.Lock()
	names := make([]string, 0, len(a.consumers))
	for name := range a.consumers {
		names = append(names, name)
	}
	a.consumersMu.Unlock()

	for _, name := range names {
		_ = a.StopConsuming(context.Background(), name)
	}
	a.wg.Wait()

	if a.ch != nil {
		_ = a.ch.Close()
	}
	if a.conn != nil {
		return a.conn.Close()
	}
	return nil
}
