package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/gorm"

	appconfig "github.com/zipwire/moderation-service/config"
	"github.com/zipwire/moderation-service/internal/domain/moderation/deps"
	"github.com/zipwire/moderation-service/internal/domain/moderation/entities"
	domainerrors "github.com/zipwire/moderation-service/internal/domain/moderation/errors"
	"github.com/zipwire/moderation-service/internal/domain/moderation/scoring"
	"github.com/zipwire/moderation-service/internal/domain/moderation/session"
)

type flagStore struct {
	db *gorm.DB
}

// NewFlagStore creates the local moderation flag store
func NewFlagStore(db *gorm.DB) deps.StateStore {
	return &flagStore{
		db: db,
	}
}

func validFlag(flag entities.Flag) bool {
	switch flag {
	case entities.FlagDisabled, entities.FlagTrashed, entities.FlagGoodFit, entities.FlagTopStory:
		return true
	}
	return false
}

// GetFlags retrieves the flags for an article; a never-toggled article yields
// a zero-valued row rather than an error
func (s *flagStore) GetFlags(ctx context.Context, sess *session.Session, articleID string) (*entities.ModerationFlags, error) {
	var flags entities.ModerationFlags
	result := s.db.WithContext(ctx).
		Where("zip_code = ? AND article_id = ?", sess.ZipCode, articleID).
		First(&flags)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return &entities.ModerationFlags{ZipCode: sess.ZipCode, ArticleID: articleID}, nil
		}
		return nil, domainerrors.ErrDatabaseOperation
	}

	return &flags, nil
}

// SetFlag sets one moderation toggle, creating the flag row lazily
func (s *flagStore) SetFlag(ctx context.Context, sess *session.Session, articleID string, flag entities.Flag, value bool) error {
	if !validFlag(flag) {
		return domainerrors.ErrUnknownFlag
	}

	var flags entities.ModerationFlags
	result := s.db.WithContext(ctx).
		Where(&entities.ModerationFlags{ZipCode: sess.ZipCode, ArticleID: articleID}).
		FirstOrCreate(&flags)
	if result.Error != nil {
		return domainerrors.ErrDatabaseOperation
	}

	flags.Set(flag, value)
	if err := s.db.WithContext(ctx).Save(&flags).Error; err != nil {
		return domainerrors.ErrDatabaseOperation
	}

	return nil
}

// SetAutoFiltered applies or clears the auto-filtered classification
func (s *flagStore) SetAutoFiltered(ctx context.Context, sess *session.Session, articleID string, filtered bool, reason string) error {
	var flags entities.ModerationFlags
	result := s.db.WithContext(ctx).
		Where(&entities.ModerationFlags{ZipCode: sess.ZipCode, ArticleID: articleID}).
		FirstOrCreate(&flags)
	if result.Error != nil {
		return domainerrors.ErrDatabaseOperation
	}

	flags.AutoFiltered = filtered
	if filtered {
		flags.FilterReason = reason
	} else {
		flags.FilterReason = ""
	}

	if err := s.db.WithContext(ctx).Save(&flags).Error; err != nil {
		return domainerrors.ErrDatabaseOperation
	}

	return nil
}

// ListTrashed returns the tenant's trashed articles
func (s *flagStore) ListTrashed(ctx context.Context, sess *session.Session) ([]entities.Article, error) {
	return s.listByFlag(ctx, sess, "trashed")
}

// ListDisabled returns the tenant's disabled articles
func (s *flagStore) ListDisabled(ctx context.Context, sess *session.Session) ([]entities.Article, error) {
	return s.listByFlag(ctx, sess, "disabled")
}

// ListGoodFit returns the tenant's good-fit articles
func (s *flagStore) ListGoodFit(ctx context.Context, sess *session.Session) ([]entities.Article, error) {
	return s.listByFlag(ctx, sess, "good_fit")
}

// ListTopStories returns the tenant's top stories
func (s *flagStore) ListTopStories(ctx context.Context, sess *session.Session) ([]entities.Article, error) {
	return s.listByFlag(ctx, sess, "top_story")
}

func (s *flagStore) listByFlag(ctx context.Context, sess *session.Session, column string) ([]entities.Article, error) {
	var articles []entities.Article
	result := s.db.WithContext(ctx).
		Model(&entities.Article{}).
		Joins("JOIN moderation_flags ON moderation_flags.zip_code = articles.zip_code AND moderation_flags.article_id = articles.article_id").
		Where("articles.zip_code = ? AND moderation_flags."+column+" = ?", sess.ZipCode, true).
		Order("articles.published DESC").
		Find(&articles)

	if result.Error != nil {
		return nil, domainerrors.ErrDatabaseOperation
	}

	return articles, nil
}

// ListAutoFiltered returns the tenant's auto-filtered articles with reasons
func (s *flagStore) ListAutoFiltered(ctx context.Context, sess *session.Session) ([]entities.AutoFilteredArticle, error) {
	var flagRows []entities.ModerationFlags
	result := s.db.WithContext(ctx).
		Where("zip_code = ? AND auto_filtered = ?", sess.ZipCode, true).
		Find(&flagRows)
	if result.Error != nil {
		return nil, domainerrors.ErrDatabaseOperation
	}

	if len(flagRows) == 0 {
		return []entities.AutoFilteredArticle{}, nil
	}

	ids := make([]string, 0, len(flagRows))
	reasons := make(map[string]string, len(flagRows))
	for _, row := range flagRows {
		ids = append(ids, row.ArticleID)
		reasons[row.ArticleID] = row.FilterReason
	}

	var articles []entities.Article
	result = s.db.WithContext(ctx).
		Where("zip_code = ? AND article_id IN ?", sess.ZipCode, ids).
		Find(&articles)
	if result.Error != nil {
		return nil, domainerrors.ErrDatabaseOperation
	}

	filtered := make([]entities.AutoFilteredArticle, 0, len(articles))
	for _, article := range articles {
		filtered = append(filtered, entities.AutoFilteredArticle{
			Article: article,
			Reason:  reasons[article.ArticleID],
		})
	}

	return filtered, nil
}

type articleRepository struct {
	db *gorm.DB
}

// NewArticleRepository creates the local article cache repository
func NewArticleRepository(db *gorm.DB) deps.ArticleRepository {
	return &articleRepository{
		db: db,
	}
}

// Upsert creates or updates an article by its opaque id
func (r *articleRepository) Upsert(ctx context.Context, sess *session.Session, article *entities.Article) error {
	article.ZipCode = sess.ZipCode

	var existing entities.Article
	result := r.db.WithContext(ctx).
		Where("zip_code = ? AND article_id = ?", sess.ZipCode, article.ArticleID).
		First(&existing)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			if err := r.db.WithContext(ctx).Create(article).Error; err != nil {
				return domainerrors.ErrDatabaseOperation
			}
			return nil
		}
		return domainerrors.ErrDatabaseOperation
	}

	article.ID = existing.ID
	article.CreatedAt = existing.CreatedAt
	if err := r.db.WithContext(ctx).Save(article).Error; err != nil {
		return domainerrors.ErrDatabaseOperation
	}

	return nil
}

// GetByArticleID retrieves an article by its opaque id
func (r *articleRepository) GetByArticleID(ctx context.Context, sess *session.Session, articleID string) (*entities.Article, error) {
	var article entities.Article
	result := r.db.WithContext(ctx).
		Where("zip_code = ? AND article_id = ?", sess.ZipCode, articleID).
		First(&article)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrArticleNotFound
		}
		return nil, domainerrors.ErrDatabaseOperation
	}

	return &article, nil
}

// ListByTenant returns all cached articles for the tenant
func (r *articleRepository) ListByTenant(ctx context.Context, sess *session.Session) ([]entities.Article, error) {
	var articles []entities.Article
	result := r.db.WithContext(ctx).
		Where("zip_code = ?", sess.ZipCode).
		Order("published DESC").
		Find(&articles)

	if result.Error != nil {
		return nil, domainerrors.ErrDatabaseOperation
	}

	return articles, nil
}

// UpdateRelevanceScore persists a recomputed relevance score
func (r *articleRepository) UpdateRelevanceScore(ctx context.Context, sess *session.Session, articleID string, score float64) error {
	result := r.db.WithContext(ctx).
		Model(&entities.Article{}).
		Where("zip_code = ? AND article_id = ?", sess.ZipCode, articleID).
		Update("relevance_score", score)

	if result.Error != nil {
		return domainerrors.ErrDatabaseOperation
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrArticleNotFound
	}

	return nil
}

// Update persists edited article fields
func (r *articleRepository) Update(ctx context.Context, sess *session.Session, article *entities.Article) error {
	existing, err := r.GetByArticleID(ctx, sess, article.ArticleID)
	if err != nil {
		return err
	}

	article.ID = existing.ID
	article.ZipCode = existing.ZipCode
	article.CreatedAt = existing.CreatedAt
	if err := r.db.WithContext(ctx).Save(article).Error; err != nil {
		return domainerrors.ErrDatabaseOperation
	}

	return nil
}

// SoftDeleteBatch soft deletes withdrawn articles and returns how many matched
func (r *articleRepository) SoftDeleteBatch(ctx context.Context, sess *session.Session, articleIDs []string) (int, error) {
	if len(articleIDs) == 0 {
		return 0, nil
	}

	result := r.db.WithContext(ctx).
		Where("zip_code = ? AND article_id IN ?", sess.ZipCode, articleIDs).
		Delete(&entities.Article{})

	if result.Error != nil {
		return 0, domainerrors.ErrDatabaseOperation
	}

	return int(result.RowsAffected), nil
}

type configRepository struct {
	db          *gorm.DB
	anchorTerms []string
}

// NewConfigRepository creates the relevance config repository. Tenants with no
// stored config start from the service-wide anchor terms.
func NewConfigRepository(db *gorm.DB, cfg *appconfig.ModerationConfig) deps.ConfigRepository {
	return &configRepository{
		db:          db,
		anchorTerms: cfg.AnchorTerms,
	}
}

// Get retrieves the tenant's scoring config, creating it with defaults on
// first access
func (r *configRepository) Get(ctx context.Context, sess *session.Session) (scoring.Config, error) {
	var row entities.RelevanceConfig
	result := r.db.WithContext(ctx).
		Where("zip_code = ?", sess.ZipCode).
		First(&row)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			cfg := r.defaultConfig()
			if err := r.Save(ctx, sess, cfg); err != nil {
				return scoring.Config{}, err
			}
			return cfg, nil
		}
		return scoring.Config{}, domainerrors.ErrDatabaseOperation
	}

	return decodeConfig(&row)
}

// Save persists the tenant's scoring config
func (r *configRepository) Save(ctx context.Context, sess *session.Session, cfg scoring.Config) error {
	row, err := encodeConfig(sess.ZipCode, cfg)
	if err != nil {
		return err
	}

	var existing entities.RelevanceConfig
	result := r.db.WithContext(ctx).
		Where("zip_code = ?", sess.ZipCode).
		First(&existing)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
				return domainerrors.ErrDatabaseOperation
			}
			return nil
		}
		return domainerrors.ErrDatabaseOperation
	}

	row.ID = existing.ID
	row.CreatedAt = existing.CreatedAt
	if err := r.db.WithContext(ctx).Save(row).Error; err != nil {
		return domainerrors.ErrDatabaseOperation
	}

	return nil
}

func (r *configRepository) defaultConfig() scoring.Config {
	anchors := r.anchorTerms
	if len(anchors) == 0 {
		anchors = scoring.DefaultAnchorTerms()
	}
	return scoring.Config{
		HighRelevance:     []string{},
		MediumRelevance:   []string{},
		LocalPlaces:       []string{},
		TopicKeywords:     map[string]float64{},
		SourceCredibility: map[string]float64{},
		ClickbaitPatterns: []string{},
		AnchorTerms:       anchors,
	}
}

func encodeConfig(zipCode string, cfg scoring.Config) (*entities.RelevanceConfig, error) {
	row := &entities.RelevanceConfig{ZipCode: zipCode}

	columns := []struct {
		value any
		dest  *string
	}{
		{cfg.HighRelevance, &row.HighRelevance},
		{cfg.MediumRelevance, &row.MediumRelevance},
		{cfg.LocalPlaces, &row.LocalPlaces},
		{cfg.TopicKeywords, &row.TopicKeywords},
		{cfg.SourceCredibility, &row.SourceCredibility},
		{cfg.ClickbaitPatterns, &row.ClickbaitPatterns},
		{cfg.AnchorTerms, &row.AnchorTerms},
	}
	for _, col := range columns {
		data, err := json.Marshal(col.value)
		if err != nil {
			return nil, domainerrors.ErrDatabaseOperation
		}
		*col.dest = string(data)
	}

	return row, nil
}

func decodeConfig(row *entities.RelevanceConfig) (scoring.Config, error) {
	cfg := scoring.Config{
		TopicKeywords:     map[string]float64{},
		SourceCredibility: map[string]float64{},
	}

	columns := []struct {
		data string
		dest any
	}{
		{row.HighRelevance, &cfg.HighRelevance},
		{row.MediumRelevance, &cfg.MediumRelevance},
		{row.LocalPlaces, &cfg.LocalPlaces},
		{row.TopicKeywords, &cfg.TopicKeywords},
		{row.SourceCredibility, &cfg.SourceCredibility},
		{row.ClickbaitPatterns, &cfg.ClickbaitPatterns},
		{row.AnchorTerms, &cfg.AnchorTerms},
	}
	for _, col := range columns {
		if col.data == "" {
			continue
		}
		if err := json.Unmarshal([]byte(col.data), col.dest); err != nil {
			return scoring.Config{}, domainerrors.ErrDatabaseOperation
		}
	}

	return cfg, nil
}

type settingsRepository struct {
	db               *gorm.DB
	defaultThreshold float64
}

// NewSettingsRepository creates the feed settings repository. First-access
// defaults take the relevance threshold from the service config.
func NewSettingsRepository(db *gorm.DB, cfg *appconfig.ModerationConfig) deps.SettingsRepository {
	return &settingsRepository{
		db:               db,
		defaultThreshold: cfg.DefaultThreshold,
	}
}

// Get retrieves the tenant's settings, creating them with defaults on first access
func (r *settingsRepository) Get(ctx context.Context, sess *session.Session) (*entities.Settings, error) {
	var settings entities.Settings
	result := r.db.WithContext(ctx).
		Where("zip_code = ?", sess.ZipCode).
		First(&settings)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			settings = entities.Settings{
				ZipCode:            sess.ZipCode,
				RelevanceThreshold: r.defaultThreshold,
				ShowImages:         true,
				AIFilteringEnabled: true,
				AutoRegenerate:     false,
				RegenerateInterval: 30,
			}
			if err := r.db.WithContext(ctx).Create(&settings).Error; err != nil {
				return nil, domainerrors.ErrDatabaseOperation
			}
			return &settings, nil
		}
		return nil, domainerrors.ErrDatabaseOperation
	}

	return &settings, nil
}

// Save persists the tenant's settings
func (r *settingsRepository) Save(ctx context.Context, sess *session.Session, settings *entities.Settings) error {
	existing, err := r.Get(ctx, sess)
	if err != nil {
		return err
	}

	settings.ID = existing.ID
	settings.ZipCode = existing.ZipCode
	settings.CreatedAt = existing.CreatedAt
	if err := r.db.WithContext(ctx).Save(settings).Error; err != nil {
		return domainerrors.ErrDatabaseOperation
	}

	return nil
}

type keywordStatsRepository struct {
	db *gorm.DB
}

// NewKeywordStatsRepository creates the keyword learning repository
func NewKeywordStatsRepository(db *gorm.DB) deps.KeywordStatsRepository {
	return &keywordStatsRepository{
		db: db,
	}
}

// IncrementGood bumps the good counter for each token, once per occurrence
func (r *keywordStatsRepository) IncrementGood(ctx context.Context, sess *session.Session, tokens []string) error {
	for _, token := range tokens {
		var stat entities.KeywordStat
		result := r.db.WithContext(ctx).
			Where("zip_code = ? AND token = ?", sess.ZipCode, token).
			First(&stat)

		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				stat = entities.KeywordStat{ZipCode: sess.ZipCode, Token: token, GoodCount: 1}
				if err := r.db.WithContext(ctx).Create(&stat).Error; err != nil {
					return domainerrors.ErrDatabaseOperation
				}
				continue
			}
			return domainerrors.ErrDatabaseOperation
		}

		update := r.db.WithContext(ctx).
			Model(&stat).
			Update("good_count", stat.GoodCount+1)
		if update.Error != nil {
			return domainerrors.ErrDatabaseOperation
		}
	}

	return nil
}

// TopGood returns the most frequent good-fit tokens
func (r *keywordStatsRepository) TopGood(ctx context.Context, sess *session.Session, limit int) ([]entities.KeywordStat, error) {
	var stats []entities.KeywordStat
	result := r.db.WithContext(ctx).
		Where("zip_code = ?", sess.ZipCode).
		Order("good_count DESC").
		Limit(limit).
		Find(&stats)

	if result.Error != nil {
		return nil, domainerrors.ErrDatabaseOperation
	}

	return stats, nil
}
