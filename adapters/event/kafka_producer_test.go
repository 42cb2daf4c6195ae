package event

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/social-api/internal/application/service"
	"github.com/khoahotran/social-api/internal/config"
	"github.com/khoahotran/social-api/pkg/logger"
)

type recordingWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestNewKafkaProducerClient_RequiresBrokers(t *testing.T) {
	_, err := NewKafkaProducerClient(config.Config{}, logger.NewNopLogger())
	assert.Error(t, err)
}

func TestPublishPostEvent(t *testing.T) {
	posts := &recordingWriter{}
	client := &KafkaProducerClient{PostEventsWriter: posts, FollowEventsWriter: &recordingWriter{}, logger: logger.NewNopLogger()}

	scheduled := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	payload := service.PostEventPayload{
		EventType:     service.PostEventTypeScheduled,
		PostID:        uuid.New(),
		AuthorID:      uuid.New(),
		ScheduledTime: &scheduled,
		OccurredAt:    time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC),
	}
	require.NoError(t, client.PublishPostEvent(context.Background(), payload))

	require.Len(t, posts.msgs, 1)
	assert.Equal(t, payload.PostID.String(), string(posts.msgs[0].Key))

	var body map[string]any
	require.NoError(t, json.Unmarshal(posts.msgs[0].Value, &body))
	assert.Equal(t, "post.scheduled", body["event_type"])
	assert.Equal(t, false, body["is_published"])
	assert.Equal(t, "2026-06-01T08:00:00Z", body["scheduled_time"])
}

func TestPublishFollowEvent_PropagatesWriterError(t *testing.T) {
	follows := &recordingWriter{err: errors.New("leader not available")}
	client := &KafkaProducerClient{PostEventsWriter: &recordingWriter{}, FollowEventsWriter: follows, logger: logger.NewNopLogger()}

	err := client.PublishFollowEvent(context.Background(), service.FollowEventPayload{
		EventType:  service.FollowEventTypeFollowed,
		FollowerID: uuid.New(),
	})
	assert.Error(t, err)
}

func TestClose(t *testing.T) {
	posts, follows := &recordingWriter{}, &recordingWriter{}
	client := &KafkaProducerClient{PostEventsWriter: posts, FollowEventsWriter: follows, logger: logger.NewNopLogger()}
	client.Close()
	assert.True(t, posts.closed)
	assert.True(t, follows.closed)
}
