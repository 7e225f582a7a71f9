package kafka

import (
	"context"

	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/zipwire/moderation-service/config"
	kafkaHandlers "github.com/zipwire/moderation-service/internal/domain/moderation/delivery/kafka"
	"github.com/zipwire/moderation-service/internal/domain/moderation/deps"
)

var Module = fx.Module("kafka",
	fx.Provide(NewProducerFx),
	fx.Invoke(registerIngestedConsumerLifecycle),
	fx.Invoke(registerEditedConsumerLifecycle),
	fx.Invoke(registerDeletedConsumerLifecycle),
)

func NewProducerFx(
	lc fx.Lifecycle,
	cfg *config.KafkaConfig,
	logger zerolog.Logger,
) (deps.EventProducer, error) {
	producer, err := NewProducer(cfg, logger)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return producer.Close()
		},
	})

	return producer, nil
}

func registerIngestedConsumerLifecycle(
	lc fx.Lifecycle,
	cfg *config.KafkaConfig,
	handlers *kafkaHandlers.Handlers,
	logger zerolog.Logger,
) {
	consumer := NewConsumer(cfg, cfg.TopicIngested, handlers.HandleArticleIngested,
		logger.With().Str("component", "kafka-ingested-consumer").Logger())

	registerLifecycle(lc, consumer)
}

func registerEditedConsumerLifecycle(
	lc fx.Lifecycle,
	cfg *config.KafkaConfig,
	handlers *kafkaHandlers.Handlers,
	logger zerolog.Logger,
) {
	consumer := NewConsumer(cfg, cfg.TopicEdited, handlers.HandleArticleEdited,
		logger.With().Str("component", "kafka-edited-consumer").Logger())

	registerLifecycle(lc, consumer)
}

func registerDeletedConsumerLifecycle(
	lc fx.Lifecycle,
	cfg *config.KafkaConfig,
	handlers *kafkaHandlers.Handlers,
	logger zerolog.Logger,
) {
	consumer := NewConsumer(cfg, cfg.TopicDeleted, handlers.HandleArticleDeleted,
		logger.With().Str("component", "kafka-deleted-consumer").Logger())

	registerLifecycle(lc, consumer)
}

func registerLifecycle(lc fx.Lifecycle, consumer *Consumer) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			consumer.Start()
			return nil
		},
		OnStop: func(_ context.Context) error {
			return consumer.Stop()
		},
	})
}
