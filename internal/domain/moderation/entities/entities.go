package entities

import (
	"time"

	"gorm.io/gorm"
)

// Flag identifies one of the independent per-article moderation toggles.
type Flag string

const (
	FlagDisabled Flag = "disabled"
	FlagTrashed  Flag = "trashed"
	FlagGoodFit  Flag = "good_fit"
	FlagTopStory Flag = "top_story"
)

// KeywordCategory identifies one of the list-valued relevance config categories.
type KeywordCategory string

const (
	CategoryHighRelevance   KeywordCategory = "high_relevance"
	CategoryMediumRelevance KeywordCategory = "medium_relevance"
	CategoryLocalPlaces     KeywordCategory = "local_places"
	CategoryClickbait       KeywordCategory = "clickbait_patterns"
)

// Article represents a collected news article scoped to one zip code tenant
type Article struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	ZipCode        string         `gorm:"not null;index:idx_articles_zip_article,unique" json:"zipCode"`
	ArticleID      string         `gorm:"not null;index:idx_articles_zip_article,unique" json:"articleId"`
	Title          string         `gorm:"not null" json:"title"`
	URL            string         `json:"url"`
	Source         string         `gorm:"index" json:"source"`
	SourceDisplay  string         `json:"sourceDisplay"`
	Published      *time.Time     `json:"published,omitempty"`
	Category       string         `json:"category,omitempty"`
	Content        string         `gorm:"type:text" json:"content"`
	Summary        string         `gorm:"type:text" json:"summary"`
	RelevanceScore *float64       `json:"relevanceScore,omitempty"`
	LocalScore     *float64       `json:"localScore,omitempty"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"deletedAt,omitempty"`
}

// TableName returns the table name for Article
func (Article) TableName() string {
	return "articles"
}

// Text returns the article body used for scoring, falling back to the summary
func (a *Article) Text() string {
	if a.Content != "" {
		return a.Content
	}
	return a.Summary
}

// ModerationFlags holds the per-tenant, per-article moderation state.
// A row is created lazily on the first toggle for an article.
type ModerationFlags struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ZipCode      string    `gorm:"not null;index:idx_flags_zip_article,unique" json:"zipCode"`
	ArticleID    string    `gorm:"not null;index:idx_flags_zip_article,unique" json:"articleId"`
	Disabled     bool      `gorm:"default:false" json:"disabled"`
	Trashed      bool      `gorm:"default:false" json:"trashed"`
	GoodFit      bool      `gorm:"default:false" json:"goodFit"`
	TopStory     bool      `gorm:"default:false" json:"topStory"`
	AutoFiltered bool      `gorm:"default:false" json:"autoFiltered"`
	FilterReason string    `json:"filterReason,omitempty"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName returns the table name for ModerationFlags
func (ModerationFlags) TableName() string {
	return "moderation_flags"
}

// Get returns the value of a single toggle
func (f *ModerationFlags) Get(flag Flag) bool {
	switch flag {
	case FlagDisabled:
		return f.Disabled
	case FlagTrashed:
		return f.Trashed
	case FlagGoodFit:
		return f.GoodFit
	case FlagTopStory:
		return f.TopStory
	}
	return false
}

// Set updates the value of a single toggle
func (f *ModerationFlags) Set(flag Flag, value bool) {
	switch flag {
	case FlagDisabled:
		f.Disabled = value
	case FlagTrashed:
		f.Trashed = value
	case FlagGoodFit:
		f.GoodFit = value
	case FlagTopStory:
		f.TopStory = value
	}
}

// AutoFilteredArticle pairs a withheld article with the reason it was filtered
type AutoFilteredArticle struct {
	Article Article `json:"article"`
	Reason  string  `json:"reason"`
}

// RelevanceConfig stores the per-tenant scoring configuration. The keyword
// collections are JSON-encoded text columns, decoded at the repository boundary.
type RelevanceConfig struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	ZipCode           string    `gorm:"not null;uniqueIndex" json:"zipCode"`
	HighRelevance     string    `gorm:"type:text" json:"highRelevance"`
	MediumRelevance   string    `gorm:"type:text" json:"mediumRelevance"`
	LocalPlaces       string    `gorm:"type:text" json:"localPlaces"`
	TopicKeywords     string    `gorm:"type:text" json:"topicKeywords"`
	SourceCredibility string    `gorm:"type:text" json:"sourceCredibility"`
	ClickbaitPatterns string    `gorm:"type:text" json:"clickbaitPatterns"`
	AnchorTerms       string    `gorm:"type:text" json:"anchorTerms"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName returns the table name for RelevanceConfig
func (RelevanceConfig) TableName() string {
	return "relevance_configs"
}

// Settings holds per-tenant feed settings
type Settings struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	ZipCode            string    `gorm:"not null;uniqueIndex" json:"zipCode"`
	RelevanceThreshold float64   `gorm:"default:10" json:"relevanceThreshold"`
	ShowImages         bool      `gorm:"default:true" json:"showImages"`
	AIFilteringEnabled bool      `gorm:"default:true" json:"aiFilteringEnabled"`
	AutoRegenerate     bool      `gorm:"default:false" json:"autoRegenerate"`
	RegenerateInterval int       `gorm:"default:30" json:"regenerateInterval"` // minutes
	CreatedAt          time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName returns the table name for Settings
func (Settings) TableName() string {
	return "settings"
}

// KeywordStat counts how often a token appeared in articles marked good fit
type KeywordStat struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ZipCode   string    `gorm:"not null;index:idx_keyword_zip_token,unique" json:"zipCode"`
	Token     string    `gorm:"not null;index:idx_keyword_zip_token,unique" json:"token"`
	GoodCount int       `gorm:"default:0" json:"goodCount"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName returns the table name for KeywordStat
func (KeywordStat) TableName() string {
	return "keyword_stats"
}
