package dto

import "time"

// API envelope

// APIResponse is the envelope every moderation API response carries.
type APIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Envelope exposes the embedded envelope for success checks on wrapped responses.
func (r APIResponse) Envelope() APIResponse {
	return r
}

// ArticlePayload is the wire shape of an article on the moderation API.
type ArticlePayload struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	URL            string     `json:"url"`
	Source         string     `json:"source"`
	SourceDisplay  string     `json:"source_display"`
	Published      *time.Time `json:"published,omitempty"`
	Category       string     `json:"category,omitempty"`
	Content        string     `json:"content,omitempty"`
	Summary        string     `json:"summary,omitempty"`
	RelevanceScore *float64   `json:"relevance_score,omitempty"`
	LocalScore     *float64   `json:"local_score,omitempty"`
	Enabled        *bool      `json:"enabled,omitempty"`
	Rejected       bool       `json:"rejected"`
	IsTopStory     bool       `json:"is_top_story"`
	AutoFiltered   bool       `json:"auto_filtered"`
	Reason         string     `json:"reason,omitempty"`
}

// ArticlesResponse wraps list endpoints such as get-rejected-articles and
// get-auto-filtered.
type ArticlesResponse struct {
	APIResponse
	Articles []ArticlePayload `json:"articles"`
}

// ArticleResponse wraps the single-entity get-article endpoint.
type ArticleResponse struct {
	APIResponse
	Article ArticlePayload `json:"article"`
}

// SourcePayload is the wire shape of a news source on the moderation API.
type SourcePayload struct {
	Key            string  `json:"key"`
	Name           string  `json:"name"`
	URL            string  `json:"url"`
	Category       string  `json:"category"`
	RelevanceScore float64 `json:"relevance_score"`
	Enabled        bool    `json:"enabled"`
	RequireAnchor  bool    `json:"require_anchor"`
}

// SourcesResponse wraps the get-sources endpoint.
type SourcesResponse struct {
	APIResponse
	Sources []SourcePayload `json:"sources"`
}

// SourceResponse wraps the single-entity get-source endpoint.
type SourceResponse struct {
	APIResponse
	Source SourcePayload `json:"source"`
}

// POST bodies

// RejectArticleRequest moves an article in or out of the trash.
type RejectArticleRequest struct {
	ArticleID string `json:"article_id"`
	Rejected  bool   `json:"rejected"`
}

// ToggleArticleRequest enables or disables an article.
type ToggleArticleRequest struct {
	ArticleID string `json:"article_id"`
	Enabled   bool   `json:"enabled"`
	ZipCode   string `json:"zip_code"`
}

// TopStoryRequest marks or unmarks an article as a top story.
type TopStoryRequest struct {
	ID         string `json:"id"`
	IsTopStory bool   `json:"is_top_story"`
}

// RestoreAutoFilteredRequest re-admits an auto-filtered article to the primary list.
type RestoreAutoFilteredRequest struct {
	ArticleID string `json:"article_id"`
	ZipCode   string `json:"zip_code"`
}

// SourceSettingRequest is the generic per-source setting update.
type SourceSettingRequest struct {
	Source  string      `json:"source"`
	Setting string      `json:"setting"`
	Value   interface{} `json:"value"`
}

// SaveSourceRequest creates or edits a source; absence of Key means create.
type SaveSourceRequest struct {
	Key            string  `json:"key,omitempty"`
	Name           string  `json:"name"`
	URL            string  `json:"url"`
	Category       string  `json:"category"`
	RelevanceScore float64 `json:"relevance_score"`
	Enabled        bool    `json:"enabled"`
	RequireAnchor  bool    `json:"require_anchor"`
}

// EditArticleRequest updates article fields through the moderation API.
type EditArticleRequest struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Summary        string   `json:"summary"`
	Category       string   `json:"category"`
	URL            string   `json:"url"`
	RelevanceScore *float64 `json:"relevance_score,omitempty"`
	LocalScore     *float64 `json:"local_score,omitempty"`
}

// Ingestion events from the collector

// ArticleIngestedEvent is emitted by the collector when a new article arrives
// for a tenant.
type ArticleIngestedEvent struct {
	ZipCode        string     `json:"zip_code"`
	ArticleID      string     `json:"article_id"`
	Title          string     `json:"title"`
	URL            string     `json:"url"`
	Source         string     `json:"source"`
	SourceDisplay  string     `json:"source_display"`
	Published      *time.Time `json:"published,omitempty"`
	Category       string     `json:"category,omitempty"`
	Content        string     `json:"content,omitempty"`
	Summary        string     `json:"summary,omitempty"`
	RelevanceScore *float64   `json:"relevance_score,omitempty"`
}

// ArticleEditedEvent is emitted by the collector when an article changes upstream.
type ArticleEditedEvent struct {
	ZipCode   string `json:"zip_code"`
	ArticleID string `json:"article_id"`
	Title     string `json:"title"`
	Content   string `json:"content,omitempty"`
	Summary   string `json:"summary,omitempty"`
	Category  string `json:"category,omitempty"`
	URL       string `json:"url,omitempty"`
}

// ArticleDeletedEvent is emitted by the collector when articles are withdrawn.
type ArticleDeletedEvent struct {
	ZipCode    string   `json:"zip_code"`
	ArticleIDs []string `json:"article_ids"`
}

// Moderation events to the feed renderer

// ModerationEvent notifies downstream consumers of a moderation decision.
type ModerationEvent struct {
	ZipCode   string `json:"zip_code"`
	ArticleID string `json:"article_id"`
	Action    string `json:"action"`
	Reason    string `json:"reason,omitempty"`
	Timestamp int64  `json:"timestamp"`
}
