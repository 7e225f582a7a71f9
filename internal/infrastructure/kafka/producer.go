package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/zipwire/moderation-service/config"
	"github.com/zipwire/moderation-service/internal/domain/moderation/deps"
	"github.com/zipwire/moderation-service/internal/domain/moderation/dto"
)

// moderation decisions fan out to per-action topics, e.g. moderation.rejected
const topicModerationPrefix = "moderation."

type Producer struct {
	writer *kafka.Writer
	logger zerolog.Logger
}

func NewProducer(cfg *config.KafkaConfig, logger zerolog.Logger) (deps.EventProducer, error) {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}

	logger.Info().
		Strs("brokers", cfg.Brokers).
		Msg("Kafka producer initialized")

	return &Producer{
		writer: writer,
		logger: logger,
	}, nil
}

// SendModerationEvent publishes one moderation decision for the feed renderer
func (p *Producer) SendModerationEvent(ctx context.Context, zipCode, articleID, action, reason string) error {
	msg := dto.ModerationEvent{
		ZipCode:   zipCode,
		ArticleID: articleID,
		Action:    action,
		Reason:    reason,
		Timestamp: time.Now().Unix(),
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	key := fmt.Sprintf("article-%s", articleID)

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topicModerationPrefix + action,
		Key:   []byte(key),
		Value: data,
	})
	if err != nil {
		p.logger.Error().Err(err).
			Str("zip_code", zipCode).
			Str("article_id", articleID).
			Str("action", action).
			Msg("Failed to send moderation event")
		return fmt.Errorf("failed to send message: %w", err)
	}

	p.logger.Debug().
		Str("zip_code", zipCode).
		Str("article_id", articleID).
		Str("action", action).
		Msg("Moderation event sent")

	return nil
}

func (p *Producer) Close() error {
	if err := p.writer.Close(); err != nil {
		p.logger.Error().Err(err).Msg("Failed to close Kafka producer")
		return err
	}

	p.logger.Info().Msg("Kafka producer closed")
	return nil
}
