package business

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog"

	"github.com/zipwire/moderation-service/internal/domain/moderation/deps"
	"github.com/zipwire/moderation-service/internal/domain/moderation/dto"
	"github.com/zipwire/moderation-service/internal/domain/moderation/entities"
	domainerrors "github.com/zipwire/moderation-service/internal/domain/moderation/errors"
	"github.com/zipwire/moderation-service/internal/domain/moderation/scoring"
	"github.com/zipwire/moderation-service/internal/domain/moderation/session"
	"github.com/zipwire/moderation-service/pkg/mapfn"
)

const (
	actionRejected = "rejected"
	actionRestored = "restored"
	actionTopStory = "topstory"

	defaultSuggestionLimit = 10
)

// AlwaysConfirm satisfies the confirmation boundary for event-driven callers
// whose decisions arrive pre-confirmed.
type AlwaysConfirm struct{}

// Confirm always answers yes
func (AlwaysConfirm) Confirm(ctx context.Context, prompt string) bool {
	return true
}

// Controller implements the moderation business logic. Every operation takes
// the session explicitly; the remote and local stores are never merged.
type Controller struct {
	remote    deps.StateStore
	local     deps.StateStore
	articles  deps.ArticleRepository
	configs   deps.ConfigRepository
	settings  deps.SettingsRepository
	keywords  deps.KeywordStatsRepository
	directory deps.RemoteDirectory
	producer  deps.EventProducer
	confirmer deps.Confirmer
	logger    zerolog.Logger
}

// NewController creates the moderation controller
func NewController(
	remote deps.StateStore,
	local deps.StateStore,
	articles deps.ArticleRepository,
	configs deps.ConfigRepository,
	settings deps.SettingsRepository,
	keywords deps.KeywordStatsRepository,
	directory deps.RemoteDirectory,
	producer deps.EventProducer,
	confirmer deps.Confirmer,
	logger zerolog.Logger,
) *Controller {
	return &Controller{
		remote:    remote,
		local:     local,
		articles:  articles,
		configs:   configs,
		settings:  settings,
		keywords:  keywords,
		directory: directory,
		producer:  producer,
		confirmer: confirmer,
		logger:    logger,
	}
}

// storeFor picks the flag backend for the session's canonical state source
func (c *Controller) storeFor(sess *session.Session) deps.StateStore {
	if sess.Remote() {
		return c.remote
	}
	return c.local
}

// SetDisabled enables or disables an article. Redundant calls are no-ops.
func (c *Controller) SetDisabled(ctx context.Context, sess *session.Session, articleID string, disabled bool) error {
	store := c.storeFor(sess)

	flags, err := store.GetFlags(ctx, sess, articleID)
	if err != nil {
		return err
	}
	if flags.Disabled == disabled {
		c.logger.Debug().
			Str("zip_code", sess.ZipCode).
			Str("article_id", articleID).
			Bool("disabled", disabled).
			Msg("Article already in requested state, skipping")
		return nil
	}

	if err := store.SetFlag(ctx, sess, articleID, entities.FlagDisabled, disabled); err != nil {
		return err
	}

	c.logger.Info().
		Str("zip_code", sess.ZipCode).
		Str("article_id", articleID).
		Bool("disabled", disabled).
		Msg("Article toggled")

	return nil
}

// Trash moves an article to the trash. Trashing requires an affirmative
// confirmation; a declined prompt leaves the article untouched. Trashing an
// already-trashed article is a no-op.
func (c *Controller) Trash(ctx context.Context, sess *session.Session, articleID string) error {
	store := c.storeFor(sess)

	flags, err := store.GetFlags(ctx, sess, articleID)
	if err != nil {
		return err
	}
	if flags.Trashed {
		c.logger.Debug().
			Str("zip_code", sess.ZipCode).
			Str("article_id", articleID).
			Msg("Article already trashed, skipping")
		return nil
	}

	if !c.confirmer.Confirm(ctx, fmt.Sprintf("Move article %s to trash?", articleID)) {
		c.logger.Info().
			Str("zip_code", sess.ZipCode).
			Str("article_id", articleID).
			Msg("Trash declined at confirmation prompt")
		return nil
	}

	if err := store.SetFlag(ctx, sess, articleID, entities.FlagTrashed, true); err != nil {
		return err
	}

	c.logger.Info().
		Str("zip_code", sess.ZipCode).
		Str("article_id", articleID).
		Msg("Article trashed")

	c.notify(ctx, sess, articleID, actionRejected, "")
	return nil
}

// Restore moves an article out of the trash. Restoring a non-trashed article
// is a no-op.
func (c *Controller) Restore(ctx context.Context, sess *session.Session, articleID string) error {
	store := c.storeFor(sess)

	flags, err := store.GetFlags(ctx, sess, articleID)
	if err != nil {
		return err
	}
	if !flags.Trashed {
		c.logger.Debug().
			Str("zip_code", sess.ZipCode).
			Str("article_id", articleID).
			Msg("Article not trashed, skipping restore")
		return nil
	}

	if err := store.SetFlag(ctx, sess, articleID, entities.FlagTrashed, false); err != nil {
		return err
	}

	c.logger.Info().
		Str("zip_code", sess.ZipCode).
		Str("article_id", articleID).
		Msg("Article restored from trash")

	c.notify(ctx, sess, articleID, actionRestored, "")
	return nil
}

// MarkGoodFit marks an article as a good fit and feeds its tokens to the
// keyword learning table. Learning failures never fail the toggle.
func (c *Controller) MarkGoodFit(ctx context.Context, sess *session.Session, articleID string) error {
	store := c.storeFor(sess)

	flags, err := store.GetFlags(ctx, sess, articleID)
	if err != nil {
		return err
	}
	if flags.GoodFit {
		c.logger.Debug().
			Str("zip_code", sess.ZipCode).
			Str("article_id", articleID).
			Msg("Article already marked good fit, skipping")
		return nil
	}

	if err := store.SetFlag(ctx, sess, articleID, entities.FlagGoodFit, true); err != nil {
		return err
	}

	c.logger.Info().
		Str("zip_code", sess.ZipCode).
		Str("article_id", articleID).
		Msg("Article marked good fit")

	c.learnKeywords(ctx, sess, articleID)
	return nil
}

// UnmarkGoodFit clears the good-fit mark. Redundant calls are no-ops.
func (c *Controller) UnmarkGoodFit(ctx context.Context, sess *session.Session, articleID string) error {
	store := c.storeFor(sess)

	flags, err := store.GetFlags(ctx, sess, articleID)
	if err != nil {
		return err
	}
	if !flags.GoodFit {
		return nil
	}

	return store.SetFlag(ctx, sess, articleID, entities.FlagGoodFit, false)
}

// MarkTopStory marks an article as a top story. Redundant calls are no-ops.
func (c *Controller) MarkTopStory(ctx context.Context, sess *session.Session, articleID string) error {
	return c.setTopStory(ctx, sess, articleID, true)
}

// UnmarkTopStory clears the top-story mark. Redundant calls are no-ops.
func (c *Controller) UnmarkTopStory(ctx context.Context, sess *session.Session, articleID string) error {
	return c.setTopStory(ctx, sess, articleID, false)
}

func (c *Controller) setTopStory(ctx context.Context, sess *session.Session, articleID string, value bool) error {
	store := c.storeFor(sess)

	flags, err := store.GetFlags(ctx, sess, articleID)
	if err != nil {
		return err
	}
	if flags.TopStory == value {
		return nil
	}

	if err := store.SetFlag(ctx, sess, articleID, entities.FlagTopStory, value); err != nil {
		return err
	}

	c.logger.Info().
		Str("zip_code", sess.ZipCode).
		Str("article_id", articleID).
		Bool("top_story", value).
		Msg("Top story mark changed")

	c.notify(ctx, sess, articleID, actionTopStory, "")
	return nil
}

// RestoreAutoFiltered re-admits an auto-filtered article to the primary list.
// Restoring an article that is not auto-filtered is a no-op.
func (c *Controller) RestoreAutoFiltered(ctx context.Context, sess *session.Session, articleID string) error {
	store := c.storeFor(sess)

	flags, err := store.GetFlags(ctx, sess, articleID)
	if err != nil {
		return err
	}
	if !flags.AutoFiltered {
		c.logger.Debug().
			Str("zip_code", sess.ZipCode).
			Str("article_id", articleID).
			Msg("Article not auto-filtered, skipping restore")
		return nil
	}

	if err := store.SetAutoFiltered(ctx, sess, articleID, false, ""); err != nil {
		return err
	}

	c.logger.Info().
		Str("zip_code", sess.ZipCode).
		Str("article_id", articleID).
		Msg("Auto-filtered article restored")

	c.notify(ctx, sess, articleID, actionRestored, "auto-filter")
	return nil
}

// ListPrimary filters the reconciled article set down to the primary listing:
// trashed and auto-filtered articles are excluded.
func (c *Controller) ListPrimary(ctx context.Context, sess *session.Session, articles []entities.Article) ([]entities.Article, error) {
	store := c.storeFor(sess)

	trashed, err := store.ListTrashed(ctx, sess)
	if err != nil {
		return nil, err
	}
	autoFiltered, err := store.ListAutoFiltered(ctx, sess)
	if err != nil {
		return nil, err
	}

	hidden := mapfn.ToSet(trashed, func(a entities.Article) string { return a.ArticleID })
	for _, f := range autoFiltered {
		hidden[f.Article.ArticleID] = struct{}{}
	}

	return mapfn.FilterSlice(articles, func(a entities.Article) bool {
		_, ok := hidden[a.ArticleID]
		return !ok
	}), nil
}

// ListTrashed returns the tenant's trashed articles
func (c *Controller) ListTrashed(ctx context.Context, sess *session.Session) ([]entities.Article, error) {
	return c.storeFor(sess).ListTrashed(ctx, sess)
}

// ListAutoFiltered returns the tenant's auto-filtered articles with reasons
func (c *Controller) ListAutoFiltered(ctx context.Context, sess *session.Session) ([]entities.AutoFilteredArticle, error) {
	return c.storeFor(sess).ListAutoFiltered(ctx, sess)
}

// ListTopStories returns the tenant's top stories
func (c *Controller) ListTopStories(ctx context.Context, sess *session.Session) ([]entities.Article, error) {
	return c.storeFor(sess).ListTopStories(ctx, sess)
}

// RecalculateScores rescans the tenant's cached articles with the current
// config and persists each score independently. A failed write is logged and
// does not cancel the remaining writes. Returns how many articles were updated.
func (c *Controller) RecalculateScores(ctx context.Context, sess *session.Session) (int, error) {
	cfg, err := c.configs.Get(ctx, sess)
	if err != nil {
		return 0, err
	}

	articles, err := c.articles.ListByTenant(ctx, sess)
	if err != nil {
		return 0, err
	}

	updated := 0
	failed := 0
	for _, article := range articles {
		score := scoring.Score(scoring.Input{
			Title:   article.Title,
			Content: article.Content,
			Summary: article.Summary,
			Source:  article.Source,
		}, cfg)

		if err := c.articles.UpdateRelevanceScore(ctx, sess, article.ArticleID, score); err != nil {
			failed++
			c.logger.Error().Err(err).
				Str("zip_code", sess.ZipCode).
				Str("article_id", article.ArticleID).
				Msg("Failed to persist recalculated score")
			continue
		}
		updated++
	}

	c.logger.Info().
		Str("zip_code", sess.ZipCode).
		Int("updated_count", updated).
		Int("failed_count", failed).
		Msg("Score recalculation completed")

	return updated, nil
}

// UpdateThreshold sets the tenant's relevance threshold
func (c *Controller) UpdateThreshold(ctx context.Context, sess *session.Session, threshold float64) error {
	if threshold < 0 {
		return domainerrors.ErrInvalidThreshold
	}

	settings, err := c.settings.Get(ctx, sess)
	if err != nil {
		return err
	}

	settings.RelevanceThreshold = threshold
	if err := c.settings.Save(ctx, sess, settings); err != nil {
		return err
	}

	c.logger.Info().
		Str("zip_code", sess.ZipCode).
		Float64("threshold", threshold).
		Msg("Relevance threshold updated")

	return nil
}

// UpdateSettings persists the tenant's feed settings
func (c *Controller) UpdateSettings(ctx context.Context, sess *session.Session, settings *entities.Settings) error {
	if settings.RelevanceThreshold < 0 {
		return domainerrors.ErrInvalidThreshold
	}
	if settings.RegenerateInterval <= 0 {
		return domainerrors.ErrInvalidInterval
	}

	return c.settings.Save(ctx, sess, settings)
}

// GetSettings returns the tenant's feed settings
func (c *Controller) GetSettings(ctx context.Context, sess *session.Session) (*entities.Settings, error) {
	return c.settings.Get(ctx, sess)
}

// GetConfig returns the tenant's scoring configuration
func (c *Controller) GetConfig(ctx context.Context, sess *session.Session) (scoring.Config, error) {
	return c.configs.Get(ctx, sess)
}

// AddKeyword adds a keyword to a config category. Keywords are normalized to
// lowercase; adding an existing keyword is a no-op.
func (c *Controller) AddKeyword(ctx context.Context, sess *session.Session, category entities.KeywordCategory, keyword string) error {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" {
		return domainerrors.ErrEmptyKeyword
	}

	cfg, err := c.configs.Get(ctx, sess)
	if err != nil {
		return err
	}

	list, err := categoryList(&cfg, category)
	if err != nil {
		return err
	}

	for _, existing := range *list {
		if existing == keyword {
			c.logger.Debug().
				Str("zip_code", sess.ZipCode).
				Str("keyword", keyword).
				Str("category", string(category)).
				Msg("Keyword already present, skipping")
			return nil
		}
	}

	*list = append(*list, keyword)
	if err := c.configs.Save(ctx, sess, cfg); err != nil {
		return err
	}

	c.logger.Info().
		Str("zip_code", sess.ZipCode).
		Str("keyword", keyword).
		Str("category", string(category)).
		Msg("Keyword added")

	return nil
}

// RemoveKeyword removes a keyword from a config category. Removing an absent
// keyword is a no-op.
func (c *Controller) RemoveKeyword(ctx context.Context, sess *session.Session, category entities.KeywordCategory, keyword string) error {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" {
		return domainerrors.ErrEmptyKeyword
	}

	cfg, err := c.configs.Get(ctx, sess)
	if err != nil {
		return err
	}

	list, err := categoryList(&cfg, category)
	if err != nil {
		return err
	}

	filtered := mapfn.FilterSlice(*list, func(existing string) bool {
		return existing != keyword
	})
	if len(filtered) == len(*list) {
		return nil
	}

	*list = filtered
	return c.configs.Save(ctx, sess, cfg)
}

// SetTopicWeight sets or updates one topic keyword weight
func (c *Controller) SetTopicWeight(ctx context.Context, sess *session.Session, keyword string, weight float64) error {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" {
		return domainerrors.ErrEmptyKeyword
	}

	cfg, err := c.configs.Get(ctx, sess)
	if err != nil {
		return err
	}

	if cfg.TopicKeywords == nil {
		cfg.TopicKeywords = map[string]float64{}
	}
	cfg.TopicKeywords[keyword] = weight

	return c.configs.Save(ctx, sess, cfg)
}

// SetSourceWeight sets or updates one source credibility weight
func (c *Controller) SetSourceWeight(ctx context.Context, sess *session.Session, source string, weight float64) error {
	source = strings.ToLower(strings.TrimSpace(source))
	if source == "" {
		return domainerrors.ErrEmptyKeyword
	}

	cfg, err := c.configs.Get(ctx, sess)
	if err != nil {
		return err
	}

	if cfg.SourceCredibility == nil {
		cfg.SourceCredibility = map[string]float64{}
	}
	cfg.SourceCredibility[source] = weight

	return c.configs.Save(ctx, sess, cfg)
}

// EditArticle updates article fields through the session's canonical store
func (c *Controller) EditArticle(ctx context.Context, sess *session.Session, req dto.EditArticleRequest) error {
	if req.RelevanceScore != nil && *req.RelevanceScore < 0 {
		return domainerrors.ErrInvalidScore
	}
	if req.LocalScore != nil && *req.LocalScore < 0 {
		return domainerrors.ErrInvalidScore
	}

	if sess.Remote() {
		return c.directory.EditArticle(ctx, req)
	}

	article, err := c.articles.GetByArticleID(ctx, sess, req.ID)
	if err != nil {
		return err
	}

	article.Title = req.Title
	article.Summary = req.Summary
	article.Category = req.Category
	article.URL = req.URL
	if req.RelevanceScore != nil {
		article.RelevanceScore = req.RelevanceScore
	}
	if req.LocalScore != nil {
		article.LocalScore = req.LocalScore
	}

	return c.articles.Update(ctx, sess, article)
}

// GetSources lists the tenant's configured news sources
func (c *Controller) GetSources(ctx context.Context, sess *session.Session) ([]dto.SourcePayload, error) {
	return c.directory.GetSources(ctx, sess)
}

// UpdateSourceSetting updates one setting on a source
func (c *Controller) UpdateSourceSetting(ctx context.Context, req dto.SourceSettingRequest) error {
	if req.Source == "" || req.Setting == "" {
		return domainerrors.ErrEmptyKeyword
	}
	return c.directory.UpdateSourceSetting(ctx, req)
}

// SaveSource creates or edits a source. An edit must reference a source the
// directory already knows.
func (c *Controller) SaveSource(ctx context.Context, req dto.SaveSourceRequest) error {
	if req.Name == "" {
		return domainerrors.ErrEmptyKeyword
	}
	if req.Key != "" {
		if _, err := c.directory.GetSource(ctx, req.Key); err != nil {
			return err
		}
	}
	return c.directory.SaveSource(ctx, req)
}

// IngestArticle caches a newly collected article, scores it if it arrived
// unscored, and withholds it from the primary list when AI filtering is on
// and the score is below the tenant's threshold.
func (c *Controller) IngestArticle(ctx context.Context, sess *session.Session, event *dto.ArticleIngestedEvent) error {
	if event.ArticleID == "" {
		return domainerrors.ErrArticleNotFound
	}

	article := &entities.Article{
		ZipCode:        sess.ZipCode,
		ArticleID:      event.ArticleID,
		Title:          event.Title,
		URL:            event.URL,
		Source:         event.Source,
		SourceDisplay:  event.SourceDisplay,
		Published:      event.Published,
		Category:       event.Category,
		Content:        event.Content,
		Summary:        event.Summary,
		RelevanceScore: event.RelevanceScore,
	}

	score := float64(0)
	if article.RelevanceScore != nil {
		// Relevance scores never go below zero, whatever the event says.
		score = math.Max(*article.RelevanceScore, 0)
		article.RelevanceScore = &score
	} else {
		cfg, err := c.configs.Get(ctx, sess)
		if err != nil {
			return err
		}
		score = scoring.Score(scoring.Input{
			Title:   article.Title,
			Content: article.Content,
			Summary: article.Summary,
			Source:  article.Source,
		}, cfg)
		article.RelevanceScore = &score
	}

	if err := c.articles.Upsert(ctx, sess, article); err != nil {
		c.logger.Error().Err(err).
			Str("zip_code", sess.ZipCode).
			Str("article_id", article.ArticleID).
			Msg("Failed to cache ingested article")
		return err
	}

	settings, err := c.settings.Get(ctx, sess)
	if err != nil {
		return err
	}

	if settings.AIFilteringEnabled && score < settings.RelevanceThreshold {
		reason := fmt.Sprintf("score %.1f below threshold %.1f", score, settings.RelevanceThreshold)
		if err := c.local.SetAutoFiltered(ctx, sess, article.ArticleID, true, reason); err != nil {
			c.logger.Error().Err(err).
				Str("zip_code", sess.ZipCode).
				Str("article_id", article.ArticleID).
				Msg("Failed to auto-filter ingested article")
			return err
		}

		c.logger.Info().
			Str("zip_code", sess.ZipCode).
			Str("article_id", article.ArticleID).
			Str("reason", reason).
			Msg("Article auto-filtered on ingest")
	}

	c.logger.Info().
		Str("zip_code", sess.ZipCode).
		Str("article_id", article.ArticleID).
		Float64("score", score).
		Msg("Article ingested")

	return nil
}

// ProcessArticleEdited applies an upstream edit to the cached article and
// rescores it with the current config.
func (c *Controller) ProcessArticleEdited(ctx context.Context, sess *session.Session, event *dto.ArticleEditedEvent) error {
	article, err := c.articles.GetByArticleID(ctx, sess, event.ArticleID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrArticleNotFound) {
			c.logger.Debug().
				Str("zip_code", sess.ZipCode).
				Str("article_id", event.ArticleID).
				Msg("Edited article not cached, skipping")
			return nil
		}
		return err
	}

	article.Title = event.Title
	if event.Content != "" {
		article.Content = event.Content
	}
	if event.Summary != "" {
		article.Summary = event.Summary
	}
	if event.Category != "" {
		article.Category = event.Category
	}
	if event.URL != "" {
		article.URL = event.URL
	}

	cfg, err := c.configs.Get(ctx, sess)
	if err != nil {
		return err
	}
	score := scoring.Score(scoring.Input{
		Title:   article.Title,
		Content: article.Content,
		Summary: article.Summary,
		Source:  article.Source,
	}, cfg)
	article.RelevanceScore = &score

	if err := c.articles.Update(ctx, sess, article); err != nil {
		return err
	}

	c.logger.Info().
		Str("zip_code", sess.ZipCode).
		Str("article_id", event.ArticleID).
		Float64("score", score).
		Msg("Cached article updated from upstream edit")

	return nil
}

// ProcessArticleDeleted soft deletes withdrawn articles from the cache
func (c *Controller) ProcessArticleDeleted(ctx context.Context, sess *session.Session, event *dto.ArticleDeletedEvent) error {
	if len(event.ArticleIDs) == 0 {
		c.logger.Debug().
			Str("zip_code", sess.ZipCode).
			Msg("No article ids to delete")
		return nil
	}

	deleted, err := c.articles.SoftDeleteBatch(ctx, sess, event.ArticleIDs)
	if err != nil {
		return err
	}

	c.logger.Info().
		Str("zip_code", sess.ZipCode).
		Int("deleted_count", deleted).
		Msg("Withdrawn articles soft deleted")

	return nil
}

// notify publishes a moderation decision; delivery failures are advisory
func (c *Controller) notify(ctx context.Context, sess *session.Session, articleID, action, reason string) {
	if c.producer == nil {
		return
	}
	if err := c.producer.SendModerationEvent(ctx, sess.ZipCode, articleID, action, reason); err != nil {
		c.logger.Warn().Err(err).
			Str("zip_code", sess.ZipCode).
			Str("article_id", articleID).
			Str("action", action).
			Msg("Failed to publish moderation event")
	}
}

// learnKeywords feeds the article's tokens to the keyword frequency table.
// Fire-and-forget relative to the toggle's success.
func (c *Controller) learnKeywords(ctx context.Context, sess *session.Session, articleID string) {
	var title, summary string

	article, err := c.articles.GetByArticleID(ctx, sess, articleID)
	if err == nil {
		title, summary = article.Title, article.Summary
	} else if sess.Remote() {
		payload, remoteErr := c.directory.GetArticle(ctx, articleID)
		if remoteErr != nil {
			c.logger.Warn().Err(remoteErr).
				Str("zip_code", sess.ZipCode).
				Str("article_id", articleID).
				Msg("Could not load article for keyword learning")
			return
		}
		title, summary = payload.Title, payload.Summary
	} else {
		c.logger.Warn().Err(err).
			Str("zip_code", sess.ZipCode).
			Str("article_id", articleID).
			Msg("Could not load article for keyword learning")
		return
	}

	tokens := scoring.Tokens(title, summary)
	if len(tokens) == 0 {
		return
	}

	if err := c.keywords.IncrementGood(ctx, sess, tokens); err != nil {
		c.logger.Warn().Err(err).
			Str("zip_code", sess.ZipCode).
			Str("article_id", articleID).
			Int("tokens_count", len(tokens)).
			Msg("Failed to record keyword learning counters")
	}
}

// SuggestKeywords returns the most frequent good-fit tokens not yet present
// in any keyword category, as candidates for the tenant's relevance config.
func (c *Controller) SuggestKeywords(ctx context.Context, sess *session.Session, limit int) ([]string, error) {
	if limit <= 0 {
		limit = defaultSuggestionLimit
	}

	cfg, err := c.configs.Get(ctx, sess)
	if err != nil {
		return nil, err
	}

	known := make(map[string]struct{})
	for _, list := range [][]string{cfg.HighRelevance, cfg.MediumRelevance, cfg.LocalPlaces} {
		for _, keyword := range list {
			known[keyword] = struct{}{}
		}
	}

	stats, err := c.keywords.TopGood(ctx, sess, limit+len(known))
	if err != nil {
		return nil, err
	}

	suggestions := make([]string, 0, limit)
	for _, stat := range stats {
		if _, ok := known[stat.Token]; ok {
			continue
		}
		suggestions = append(suggestions, stat.Token)
		if len(suggestions) == limit {
			break
		}
	}

	return suggestions, nil
}

func categoryList(cfg *scoring.Config, category entities.KeywordCategory) (*[]string, error) {
	switch category {
	case entities.CategoryHighRelevance:
		return &cfg.HighRelevance, nil
	case entities.CategoryMediumRelevance:
		return &cfg.MediumRelevance, nil
	case entities.CategoryLocalPlaces:
		return &cfg.LocalPlaces, nil
	case entities.CategoryClickbait:
		return &cfg.ClickbaitPatterns, nil
	}
	return nil, domainerrors.ErrUnknownCategory
}
