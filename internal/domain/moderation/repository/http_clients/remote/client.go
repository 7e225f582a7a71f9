package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/rs/zerolog"

	"github.com/zipwire/moderation-service/config"
	"github.com/zipwire/moderation-service/internal/domain/moderation/deps"
	"github.com/zipwire/moderation-service/internal/domain/moderation/dto"
	"github.com/zipwire/moderation-service/internal/domain/moderation/entities"
	domainerrors "github.com/zipwire/moderation-service/internal/domain/moderation/errors"
	"github.com/zipwire/moderation-service/internal/domain/moderation/session"
	pkgerrors "github.com/zipwire/moderation-service/pkg/errors"
	"github.com/zipwire/moderation-service/pkg/mapfn"
)

var (
	_ deps.StateStore      = (*Client)(nil)
	_ deps.RemoteDirectory = (*Client)(nil)
)

// tenantMirror is the session-scoped view of flags the API has no list
// endpoint for. It is seeded from the reconciled article set and updated only
// after a remote write succeeds.
type tenantMirror struct {
	articles map[string]entities.Article
	flags    map[string]*entities.ModerationFlags
}

// Client talks to the moderation API. It implements the remote flag store and
// the source/article directory surface.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger

	// local receives write-through copies of flags the API cannot hold
	local deps.StateStore

	mu      sync.RWMutex
	mirrors map[string]*tenantMirror
}

// NewClient creates a moderation API client. The local store receives
// write-through copies of good-fit marks, which have no remote endpoint.
func NewClient(cfg *config.RemoteStoreConfig, local deps.StateStore, logger zerolog.Logger) *Client {
	client := &Client{
		baseURL: cfg.URL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger:  logger,
		local:   local,
		mirrors: make(map[string]*tenantMirror),
	}

	logger.Info().
		Str("base_url", cfg.URL).
		Msg("Moderation API client initialized")

	return client
}

// Seed installs the reconciled article set as the mirror for a tenant. Flag
// state accumulated from earlier successful writes is kept.
func (c *Client) Seed(zipCode string, articles []entities.Article) {
	c.mu.Lock()
	defer c.mu.Unlock()

	mirror := c.mirrors[zipCode]
	if mirror == nil {
		mirror = &tenantMirror{
			articles: make(map[string]entities.Article),
			flags:    make(map[string]*entities.ModerationFlags),
		}
		c.mirrors[zipCode] = mirror
	}

	mirror.articles = make(map[string]entities.Article, len(articles))
	for _, article := range articles {
		mirror.articles[article.ArticleID] = article
	}
}

func (c *Client) mirror(zipCode string) *tenantMirror {
	mirror := c.mirrors[zipCode]
	if mirror == nil {
		mirror = &tenantMirror{
			articles: make(map[string]entities.Article),
			flags:    make(map[string]*entities.ModerationFlags),
		}
		c.mirrors[zipCode] = mirror
	}
	return mirror
}

func (c *Client) mirrorFlags(zipCode, articleID string) *entities.ModerationFlags {
	mirror := c.mirror(zipCode)
	flags := mirror.flags[articleID]
	if flags == nil {
		flags = &entities.ModerationFlags{ZipCode: zipCode, ArticleID: articleID}
		mirror.flags[articleID] = flags
	}
	return flags
}

// GetFlags returns the flags for an article, fetching from the API when the
// mirror has no record of it.
func (c *Client) GetFlags(ctx context.Context, sess *session.Session, articleID string) (*entities.ModerationFlags, error) {
	c.mu.RLock()
	if mirror, ok := c.mirrors[sess.ZipCode]; ok {
		if flags, ok := mirror.flags[articleID]; ok {
			copied := *flags
			c.mu.RUnlock()
			return &copied, nil
		}
	}
	c.mu.RUnlock()

	payload, err := c.GetArticle(ctx, articleID)
	if err != nil {
		if pkgerrors.IsNotFoundError(err) {
			return &entities.ModerationFlags{ZipCode: sess.ZipCode, ArticleID: articleID}, nil
		}
		return nil, err
	}

	flags := &entities.ModerationFlags{
		ZipCode:      sess.ZipCode,
		ArticleID:    articleID,
		Trashed:      payload.Rejected,
		TopStory:     payload.IsTopStory,
		AutoFiltered: payload.AutoFiltered,
		FilterReason: payload.Reason,
	}
	if payload.Enabled != nil {
		flags.Disabled = !*payload.Enabled
	}

	c.mu.Lock()
	c.mirror(sess.ZipCode).flags[articleID] = flags
	c.mu.Unlock()

	copied := *flags
	return &copied, nil
}

// SetFlag routes one toggle to its API endpoint. The mirror is updated only
// after the write succeeds. Good-fit has no remote endpoint and is held in the
// mirror plus the local cache.
func (c *Client) SetFlag(ctx context.Context, sess *session.Session, articleID string, flag entities.Flag, value bool) error {
	var err error
	switch flag {
	case entities.FlagTrashed:
		err = c.post(ctx, "reject-article", dto.RejectArticleRequest{
			ArticleID: articleID,
			Rejected:  value,
		})
	case entities.FlagDisabled:
		err = c.post(ctx, "toggle-article", dto.ToggleArticleRequest{
			ArticleID: articleID,
			Enabled:   !value,
			ZipCode:   sess.ZipCode,
		})
	case entities.FlagTopStory:
		err = c.post(ctx, "top-story", dto.TopStoryRequest{
			ID:         articleID,
			IsTopStory: value,
		})
	case entities.FlagGoodFit:
		if err := c.local.SetFlag(ctx, sess, articleID, flag, value); err != nil {
			return err
		}
	default:
		return domainerrors.ErrUnknownFlag
	}

	if err != nil {
		c.logger.Error().Err(err).
			Str("zip_code", sess.ZipCode).
			Str("article_id", articleID).
			Str("flag", string(flag)).
			Msg("Remote flag write failed")
		return err
	}

	c.mu.Lock()
	c.mirrorFlags(sess.ZipCode, articleID).Set(flag, value)
	c.mu.Unlock()

	return nil
}

// SetAutoFiltered clears the auto-filtered classification. Applying it is a
// server-side decision and is rejected here.
func (c *Client) SetAutoFiltered(ctx context.Context, sess *session.Session, articleID string, filtered bool, reason string) error {
	if filtered {
		return domainerrors.ErrServerOwnedClassification
	}

	err := c.post(ctx, "restore-auto-filtered", dto.RestoreAutoFilteredRequest{
		ArticleID: articleID,
		ZipCode:   sess.ZipCode,
	})
	if err != nil {
		return err
	}

	c.mu.Lock()
	flags := c.mirrorFlags(sess.ZipCode, articleID)
	flags.AutoFiltered = false
	flags.FilterReason = ""
	c.mu.Unlock()

	return nil
}

// ListTrashed returns the tenant's trashed articles from the API
func (c *Client) ListTrashed(ctx context.Context, sess *session.Session) ([]entities.Article, error) {
	var result dto.ArticlesResponse
	query := url.Values{"zip_code": {sess.ZipCode}}
	if err := c.get(ctx, "get-rejected-articles", query, &result); err != nil {
		return nil, err
	}

	zipCode := sess.ZipCode
	return mapfn.ConvertSlice(result.Articles, func(p dto.ArticlePayload) entities.Article {
		return payloadToArticle(p, zipCode)
	}), nil
}

// ListAutoFiltered returns the tenant's auto-filtered articles with reasons
func (c *Client) ListAutoFiltered(ctx context.Context, sess *session.Session) ([]entities.AutoFilteredArticle, error) {
	var result dto.ArticlesResponse
	query := url.Values{"zip_code": {sess.ZipCode}}
	if err := c.get(ctx, "get-auto-filtered", query, &result); err != nil {
		return nil, err
	}

	zipCode := sess.ZipCode
	return mapfn.ConvertSlice(result.Articles, func(p dto.ArticlePayload) entities.AutoFilteredArticle {
		return entities.AutoFilteredArticle{
			Article: payloadToArticle(p, zipCode),
			Reason:  p.Reason,
		}
	}), nil
}

// ListDisabled returns the tenant's disabled articles from the mirror
func (c *Client) ListDisabled(ctx context.Context, sess *session.Session) ([]entities.Article, error) {
	return c.listMirrored(sess, entities.FlagDisabled), nil
}

// ListGoodFit returns the tenant's good-fit articles from the mirror
func (c *Client) ListGoodFit(ctx context.Context, sess *session.Session) ([]entities.Article, error) {
	return c.listMirrored(sess, entities.FlagGoodFit), nil
}

// ListTopStories returns the tenant's top stories from the mirror
func (c *Client) ListTopStories(ctx context.Context, sess *session.Session) ([]entities.Article, error) {
	return c.listMirrored(sess, entities.FlagTopStory), nil
}

func (c *Client) listMirrored(sess *session.Session, flag entities.Flag) []entities.Article {
	c.mu.RLock()
	defer c.mu.RUnlock()

	mirror := c.mirrors[sess.ZipCode]
	if mirror == nil {
		return []entities.Article{}
	}

	articles := make([]entities.Article, 0)
	for articleID, flags := range mirror.flags {
		if !flags.Get(flag) {
			continue
		}
		if article, ok := mirror.articles[articleID]; ok {
			articles = append(articles, article)
		} else {
			articles = append(articles, entities.Article{
				ZipCode:   sess.ZipCode,
				ArticleID: articleID,
			})
		}
	}

	return articles
}

// GetSources lists the tenant's configured news sources
func (c *Client) GetSources(ctx context.Context, sess *session.Session) ([]dto.SourcePayload, error) {
	var result dto.SourcesResponse
	query := url.Values{"zip_code": {sess.ZipCode}}
	if err := c.get(ctx, "get-sources", query, &result); err != nil {
		return nil, err
	}
	return result.Sources, nil
}

// GetSource fetches a single source by key
func (c *Client) GetSource(ctx context.Context, key string) (*dto.SourcePayload, error) {
	var result dto.SourceResponse
	query := url.Values{"key": {key}}
	if err := c.get(ctx, "get-source", query, &result); err != nil {
		if pkgerrors.IsNotFoundError(err) {
			return nil, domainerrors.ErrSourceNotFound
		}
		return nil, err
	}
	return &result.Source, nil
}

// GetArticle fetches a single article by id
func (c *Client) GetArticle(ctx context.Context, articleID string) (*dto.ArticlePayload, error) {
	var result dto.ArticleResponse
	query := url.Values{"id": {articleID}}
	if err := c.get(ctx, "get-article", query, &result); err != nil {
		if pkgerrors.IsNotFoundError(err) {
			return nil, domainerrors.ErrArticleNotFound
		}
		return nil, err
	}
	return &result.Article, nil
}

// UpdateSourceSetting updates one setting on a source
func (c *Client) UpdateSourceSetting(ctx context.Context, req dto.SourceSettingRequest) error {
	return c.post(ctx, "source", req)
}

// SaveSource creates or edits a source; absence of the key means create
func (c *Client) SaveSource(ctx context.Context, req dto.SaveSourceRequest) error {
	endpoint := "edit-source"
	if req.Key == "" {
		endpoint = "add-source"
	}
	return c.post(ctx, endpoint, req)
}

// EditArticle updates article fields through the API
func (c *Client) EditArticle(ctx context.Context, req dto.EditArticleRequest) error {
	return c.post(ctx, "edit-article", req)
}

func (c *Client) get(ctx context.Context, endpoint string, query url.Values, out interface {
	Envelope() dto.APIResponse
}) error {
	requestURL := fmt.Sprintf("%s/%s", c.baseURL, endpoint)
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.NewRemoteError(fmt.Sprintf("request to %s failed: %v", endpoint, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return pkgerrors.FromHTTPStatus(resp.StatusCode, fmt.Sprintf("%s returned status %d", endpoint, resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return pkgerrors.NewRemoteError(fmt.Sprintf("failed to decode %s response: %v", endpoint, err))
	}

	if envelope := out.Envelope(); !envelope.Success {
		message := envelope.Error
		if message == "" {
			message = envelope.Message
		}
		return pkgerrors.NewRemoteError(fmt.Sprintf("%s reported failure: %s", endpoint, message))
	}

	return nil
}

func (c *Client) post(ctx context.Context, endpoint string, body any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	requestURL := fmt.Sprintf("%s/%s", c.baseURL, endpoint)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, requestURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.NewRemoteError(fmt.Sprintf("request to %s failed: %v", endpoint, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return pkgerrors.FromHTTPStatus(resp.StatusCode, fmt.Sprintf("%s returned status %d", endpoint, resp.StatusCode))
	}

	var result dto.APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return pkgerrors.NewRemoteError(fmt.Sprintf("failed to decode %s response: %v", endpoint, err))
	}

	if !result.Success {
		message := result.Error
		if message == "" {
			message = result.Message
		}
		return pkgerrors.NewRemoteError(fmt.Sprintf("%s reported failure: %s", endpoint, message))
	}

	return nil
}

func payloadToArticle(p dto.ArticlePayload, zipCode string) entities.Article {
	return entities.Article{
		ZipCode:        zipCode,
		ArticleID:      p.ID,
		Title:          p.Title,
		URL:            p.URL,
		Source:         p.Source,
		SourceDisplay:  p.SourceDisplay,
		Published:      p.Published,
		Category:       p.Category,
		Content:        p.Content,
		Summary:        p.Summary,
		RelevanceScore: p.RelevanceScore,
		LocalScore:     p.LocalScore,
	}
}
