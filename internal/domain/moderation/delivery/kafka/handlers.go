package kafka

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	appconfig "github.com/zipwire/moderation-service/config"
	"github.com/zipwire/moderation-service/internal/domain/moderation/dto"
	"github.com/zipwire/moderation-service/internal/domain/moderation/session"
	"github.com/zipwire/moderation-service/internal/domain/moderation/usecase/business"
)

// Handlers handles Kafka messages for the moderation domain
type Handlers struct {
	uc        *business.Controller
	daemonZip string
	logger    zerolog.Logger
}

// NewHandlers creates new Kafka handlers
func NewHandlers(uc *business.Controller, cfg *appconfig.ModerationConfig, logger zerolog.Logger) *Handlers {
	return &Handlers{
		uc:        uc,
		daemonZip: cfg.DaemonZip,
		logger:    logger,
	}
}

// sessionFor builds a local-cache session for a collector event. Collector
// traffic only ever touches the local cache, never the moderation API. Events
// without a tenant fall back to the configured daemon zip code.
func (h *Handlers) sessionFor(zipCode string) (*session.Session, error) {
	if zipCode == "" && h.daemonZip != "" {
		zipCode = h.daemonZip
	}
	return session.New(zipCode, session.SourceLocalOnly)
}

// HandleArticleIngested handles a newly collected article from the collector
func (h *Handlers) HandleArticleIngested(ctx context.Context, message []byte) error {
	var event dto.ArticleIngestedEvent
	if err := json.Unmarshal(message, &event); err != nil {
		h.logger.Error().Err(err).
			Str("raw_message", string(message)).
			Msg("Failed to unmarshal article ingested event")
		return err
	}

	sess, err := h.sessionFor(event.ZipCode)
	if err != nil {
		h.logger.Error().Err(err).
			Str("zip_code", event.ZipCode).
			Str("article_id", event.ArticleID).
			Msg("Article ingested event carries no valid tenant")
		return err
	}

	h.logger.Info().
		Str("zip_code", event.ZipCode).
		Str("article_id", event.ArticleID).
		Str("source", event.Source).
		Msg("Processing article ingested event")

	if err := h.uc.IngestArticle(ctx, sess, &event); err != nil {
		h.logger.Error().Err(err).
			Str("zip_code", event.ZipCode).
			Str("article_id", event.ArticleID).
			Msg("Failed to process article ingested event")
		return err
	}

	return nil
}

// HandleArticleEdited handles an upstream article edit from the collector
func (h *Handlers) HandleArticleEdited(ctx context.Context, message []byte) error {
	var event dto.ArticleEditedEvent
	if err := json.Unmarshal(message, &event); err != nil {
		h.logger.Error().Err(err).
			Str("raw_message", string(message)).
			Msg("Failed to unmarshal article edited event")
		return err
	}

	sess, err := h.sessionFor(event.ZipCode)
	if err != nil {
		h.logger.Error().Err(err).
			Str("zip_code", event.ZipCode).
			Str("article_id", event.ArticleID).
			Msg("Article edited event carries no valid tenant")
		return err
	}

	h.logger.Info().
		Str("zip_code", event.ZipCode).
		Str("article_id", event.ArticleID).
		Msg("Processing article edited event")

	if err := h.uc.ProcessArticleEdited(ctx, sess, &event); err != nil {
		h.logger.Error().Err(err).
			Str("zip_code", event.ZipCode).
			Str("article_id", event.ArticleID).
			Msg("Failed to process article edited event")
		return err
	}

	return nil
}

// HandleArticleDeleted handles withdrawn articles from the collector
func (h *Handlers) HandleArticleDeleted(ctx context.Context, message []byte) error {
	var event dto.ArticleDeletedEvent
	if err := json.Unmarshal(message, &event); err != nil {
		h.logger.Error().Err(err).
			Str("raw_message", string(message)).
			Msg("Failed to unmarshal article deleted event")
		return err
	}

	sess, err := h.sessionFor(event.ZipCode)
	if err != nil {
		h.logger.Error().Err(err).
			Str("zip_code", event.ZipCode).
			Msg("Article deleted event carries no valid tenant")
		return err
	}

	h.logger.Info().
		Str("zip_code", event.ZipCode).
		Int("articles_count", len(event.ArticleIDs)).
		Msg("Processing article deleted event")

	if err := h.uc.ProcessArticleDeleted(ctx, sess, &event); err != nil {
		h.logger.Error().Err(err).
			Str("zip_code", event.ZipCode).
			Msg("Failed to process article deleted event")
		return err
	}

	return nil
}
