package deps

import (
	"context"

	"github.com/zipwire/moderation-service/internal/domain/moderation/dto"
	"github.com/zipwire/moderation-service/internal/domain/moderation/entities"
	"github.com/zipwire/moderation-service/internal/domain/moderation/scoring"
	"github.com/zipwire/moderation-service/internal/domain/moderation/session"
)

// StateStore is the moderation flag backend. Two interchangeable
// implementations exist: the remote store (authoritative when the session has
// canonical server state) and the local cache. The two are never merged or
// synced automatically.
type StateStore interface {
	// GetFlags returns the current flags for an article; an article that was
	// never toggled yields zero-valued flags, not an error.
	GetFlags(ctx context.Context, sess *session.Session, articleID string) (*entities.ModerationFlags, error)

	// SetFlag sets one toggle for an article. The store's view is updated only
	// after the write succeeds.
	SetFlag(ctx context.Context, sess *session.Session, articleID string, flag entities.Flag, value bool) error

	// SetAutoFiltered applies or clears the auto-filtered classification.
	SetAutoFiltered(ctx context.Context, sess *session.Session, articleID string, filtered bool, reason string) error

	// ListTrashed returns the tenant's trashed articles
	ListTrashed(ctx context.Context, sess *session.Session) ([]entities.Article, error)

	// ListDisabled returns the tenant's disabled articles
	ListDisabled(ctx context.Context, sess *session.Session) ([]entities.Article, error)

	// ListGoodFit returns the tenant's good-fit articles
	ListGoodFit(ctx context.Context, sess *session.Session) ([]entities.Article, error)

	// ListTopStories returns the tenant's top stories
	ListTopStories(ctx context.Context, sess *session.Session) ([]entities.Article, error)

	// ListAutoFiltered returns the tenant's auto-filtered articles with reasons
	ListAutoFiltered(ctx context.Context, sess *session.Session) ([]entities.AutoFilteredArticle, error)
}

// ArticleRepository is the tenant-scoped local article cache.
type ArticleRepository interface {
	// Upsert creates or updates an article by its opaque id
	Upsert(ctx context.Context, sess *session.Session, article *entities.Article) error

	// GetByArticleID retrieves an article by its opaque id
	GetByArticleID(ctx context.Context, sess *session.Session, articleID string) (*entities.Article, error)

	// ListByTenant returns all cached articles for the tenant
	ListByTenant(ctx context.Context, sess *session.Session) ([]entities.Article, error)

	// UpdateRelevanceScore persists a recomputed relevance score
	UpdateRelevanceScore(ctx context.Context, sess *session.Session, articleID string, score float64) error

	// Update persists edited article fields
	Update(ctx context.Context, sess *session.Session, article *entities.Article) error

	// SoftDeleteBatch soft deletes withdrawn articles and returns how many matched
	SoftDeleteBatch(ctx context.Context, sess *session.Session, articleIDs []string) (int, error)
}

// ConfigRepository stores per-tenant relevance configuration. Get creates the
// config with defaults on first access.
type ConfigRepository interface {
	Get(ctx context.Context, sess *session.Session) (scoring.Config, error)
	Save(ctx context.Context, sess *session.Session, cfg scoring.Config) error
}

// SettingsRepository stores per-tenant feed settings. Get creates the settings
// with defaults on first access.
type SettingsRepository interface {
	Get(ctx context.Context, sess *session.Session) (*entities.Settings, error)
	Save(ctx context.Context, sess *session.Session, settings *entities.Settings) error
}

// KeywordStatsRepository maintains the per-tenant keyword learning table.
type KeywordStatsRepository interface {
	// IncrementGood bumps the good counter for each token, once per occurrence
	IncrementGood(ctx context.Context, sess *session.Session, tokens []string) error

	// TopGood returns the most frequent good-fit tokens
	TopGood(ctx context.Context, sess *session.Session, limit int) ([]entities.KeywordStat, error)
}

// RemoteDirectory covers the moderation API surface beyond flag writes:
// source CRUD and article edits.
type RemoteDirectory interface {
	GetSources(ctx context.Context, sess *session.Session) ([]dto.SourcePayload, error)
	GetSource(ctx context.Context, key string) (*dto.SourcePayload, error)
	GetArticle(ctx context.Context, articleID string) (*dto.ArticlePayload, error)
	UpdateSourceSetting(ctx context.Context, req dto.SourceSettingRequest) error
	SaveSource(ctx context.Context, req dto.SaveSourceRequest) error
	EditArticle(ctx context.Context, req dto.EditArticleRequest) error
}

// EventProducer publishes moderation decisions for the downstream feed renderer.
type EventProducer interface {
	// SendModerationEvent sends one decision event; failures are advisory
	SendModerationEvent(ctx context.Context, zipCode, articleID, action, reason string) error

	// Close closes the producer
	Close() error
}

// Confirmer is the boundary prompt required before destructive operations.
// Trash must not proceed without an affirmative answer.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}
