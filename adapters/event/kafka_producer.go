package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/khoahotran/social-api/internal/application/service"
	"github.com/khoahotran/social-api/internal/config"
	"github.com/khoahotran/social-api/pkg/logger"
)

const (
	TopicPostEvents   = "post.events"
	TopicFollowEvents = "follow.events"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaProducerClient struct {
	PostEventsWriter   messageWriter
	FollowEventsWriter messageWriter
	logger             logger.Logger
}

var _ service.EventPublisher = (*KafkaProducerClient)(nil)

func NewKafkaProducerClient(cfg config.Config, log logger.Logger) (*KafkaProducerClient, error) {
	brokers := cfg.Kafka.Brokers
	if len(brokers) == 0 {
		return nil, fmt.Errorf("config Kafka brokers not found")
	}

	postWriter := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  TopicPostEvents,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}

	followWriter := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  TopicFollowEvents,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}

	log.Info("Initialize Kafka Producers successfully.", zap.Strings("brokers", brokers))

	return &KafkaProducerClient{
		PostEventsWriter:   postWriter,
		FollowEventsWriter: followWriter,
		logger:             log,
	}, nil
}

// PublishPostEvent keys messages by post id so every event of one post lands
// on the same partition.
func (c *KafkaProducerClient) PublishPostEvent(ctx context.Context, payload service.PostEventPayload) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal post event failed: %w", err)
	}
	return c.PostEventsWriter.WriteMessages(ctx, kafka.Message{
		Key:   []byte(payload.PostID.String()),
		Value: value,
	})
}

func (c *KafkaProducerClient) PublishFollowEvent(ctx context.Context, payload service.FollowEventPayload) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal follow event failed: %w", err)
	}
	return c.FollowEventsWriter.WriteMessages(ctx, kafka.Message{
		Key:   []byte(payload.FollowerID.String()),
		Value: value,
	})
}

func (c *KafkaProducerClient) Close() {
	if c.PostEventsWriter != nil {
		if err := c.PostEventsWriter.Close(); err != nil {
			c.logger.Warn("Close post events writer failed", zap.Error(err))
		}
	}
	if c.FollowEventsWriter != nil {
		if err := c.FollowEventsWriter.Close(); err != nil {
			c.logger.Warn("Close follow events writer failed", zap.Error(err))
		}
	}
	c.logger.Info("Closed Kafka Producers")
}

// NopPublisher is used when no brokers are configured.
type NopPublisher struct {
	logger logger.Logger
}

func NewNopPublisher(log logger.Logger) *NopPublisher {
	return &NopPublisher{logger: log}
}

func (p *NopPublisher) PublishPostEvent(_ context.Context, payload service.PostEventPayload) error {
	p.logger.Debug("Dropping post event, no Kafka brokers configured",
		zap.String("event_type", string(payload.EventType)), zap.String("post_id", payload.PostID.String()))
	return nil
}

func (p *NopPublisher) PublishFollowEvent(_ context.Context, payload service.FollowEventPayload) error {
	p.logger.Debug("Dropping follow event, no Kafka brokers configured",
		zap.String("event_type", string(payload.EventType)))
	return nil
}
