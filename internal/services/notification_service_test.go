package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"medication-tracking-service/internal/domain/dtos"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func transitionPayload(t *testing.T, evt dtos.ProcessTransitionedEvent) []byte {
	t.Helper()
	data, err := json.Marshal(evt)
	require.NoError(t, err)
	return data
}

func TestNotificationService_FeedPerLine(t *testing.T) {
	queue := NewMockQueueAdapter()
	svc := NewNotificationService(queue, 2, zerolog.Nop())
	require.NoError(t, svc.Start(context.Background()))
	handler := queue.Handlers[TransitionEventsQueue]
	require.NotNil(t, handler)

	lineA, lineB := uuid.New(), uuid.New()
	events := []dtos.ProcessTransitionedEvent{
		{EventID: uuid.New(), LineID: lineA, ToStatus: "DISPATCHED_FROM_PHARMACY", OccurredAt: testNow},
		{EventID: uuid.New(), LineID: lineA, ToStatus: "DELIVERED", OccurredAt: testNow.Add(time.Minute)},
		{EventID: uuid.New(), LineID: lineA, ToStatus: "COMPLETED", OccurredAt: testNow.Add(2 * time.Minute)},
		{EventID: uuid.New(), LineID: lineB, ToStatus: "ERROR", OccurredAt: testNow},
	}
	for _, e := range events {
		require.NoError(t, handler(context.Background(), transitionPayload(t, e)))
	}

	feed := svc.Recent(lineA, 0)
	require.Len(t, feed, 2, "feed is trimmed to its size")
	assert.Equal(t, "COMPLETED", feed[0].ToStatus)
	assert.Equal(t, "DELIVERED", feed[1].ToStatus)

	assert.Len(t, svc.Recent(lineA, 1), 1)
	assert.Len(t, svc.Recent(lineB, 10), 1)
	assert.Empty(t, svc.Recent(uuid.New(), 10))

	require.NoError(t, svc.Stop(context.Background()))
	assert.NotContains(t, queue.Handlers, TransitionEventsQueue)
}

func TestNotificationService_DropsRedeliveries(t *testing.T) {
	queue := NewMockQueueAdapter()
	svc := NewNotificationService(queue, 10, zerolog.Nop())
	require.NoError(t, svc.Start(context.Background()))
	handler := queue.Handlers[TransitionEventsQueue]

	evt := dtos.ProcessTransitionedEvent{EventID: uuid.New(), LineID: uuid.New(), ToStatus: "DELIVERED"}
	payload := transitionPayload(t, evt)
	require.NoError(t, handler(context.Background(), payload))
	require.NoError(t, handler(context.Background(), payload))

	assert.Len(t, svc.Recent(evt.LineID, 0), 1)
}

func TestNotificationService_LateRedeliveryAfterFeedEviction(t *testing.T) {
	queue := NewMockQueueAdapter()
	svc := NewNotificationService(queue, 1, zerolog.Nop())
	require.NoError(t, svc.Start(context.Background()))
	handler := queue.Handlers[TransitionEventsQueue]

	line := uuid.New()
	older := dtos.ProcessTransitionedEvent{EventID: uuid.New(), LineID: line, ToStatus: "DISPATCHED_FROM_PHARMACY"}
	newer := dtos.ProcessTransitionedEvent{EventID: uuid.New(), LineID: line, ToStatus: "DELIVERED"}
	require.NoError(t, handler(context.Background(), transitionPayload(t, older)))
	require.NoError(t, handler(context.Background(), transitionPayload(t, newer)))

	// older has left the feed but is still remembered as delivered.
	require.NoError(t, handler(context.Background(), transitionPayload(t, older)))

	feed := svc.Recent(line, 0)
	require.Len(t, feed, 1)
	assert.Equal(t, newer.EventID, feed[0].EventID)
}

func TestNotificationService_RejectsMalformedPayload(t *testing.T) {
	queue := NewMockQueueAdapter()
	svc := NewNotificationService(queue, 10, zerolog.Nop())
	require.NoError(t, svc.Start(context.Background()))

	err := queue.Handlers[TransitionEventsQueue](context.Background(), []byte("{not json"))
	assert.Error(t, err)
	assert.Error(t, svc.Start(context.Background()), "second consumer on the same queue")
}
