package reconcile

import (
	"context"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/zipwire/moderation-service/internal/domain/moderation/deps"
	"github.com/zipwire/moderation-service/internal/domain/moderation/entities"
	domainerrors "github.com/zipwire/moderation-service/internal/domain/moderation/errors"
	"github.com/zipwire/moderation-service/internal/domain/moderation/session"
)

// FlagMirror is seeded with the canonical article set so the remote store can
// serve list reads for flags that have no remote list endpoint.
type FlagMirror interface {
	Seed(zipCode string, articles []entities.Article)
}

// Input is everything a page load can offer the reconciler.
type Input struct {
	// Path is the request path; the first 5-digit segment is the tenant.
	Path string

	// Query holds the request query parameters (zip_code).
	Query url.Values

	// RenderedHTML is the already-rendered feed markup, when the page carries
	// one. May also carry the tenant as a data-zip-code attribute.
	RenderedHTML string

	// Structured is the caller-supplied article set, when the collaborator
	// that rendered the page can pass structured records directly. Preferred
	// over extraction.
	Structured []entities.Article
}

// Result is the reconciled session and canonical article set.
type Result struct {
	Session  *session.Session
	Articles []entities.Article
}

// Reconciler decides, once per session, which state source is canonical and
// reconstructs the article set from it.
type Reconciler struct {
	articles deps.ArticleRepository
	mirror   FlagMirror
	logger   zerolog.Logger

	current map[string][]entities.Article
}

// New creates a reconciler backed by the local article cache.
func New(articles deps.ArticleRepository, mirror FlagMirror, logger zerolog.Logger) *Reconciler {
	return &Reconciler{
		articles: articles,
		mirror:   mirror,
		logger:   logger,
		current:  make(map[string][]entities.Article),
	}
}

// Reconcile resolves the tenant and canonical article set for a session.
// Preference order: structured records, text extraction from rendered markup,
// local cache. A session with no resolvable tenant and no canonical entries is
// a fatal configuration error.
func (r *Reconciler) Reconcile(ctx context.Context, in Input) (*Result, error) {
	zipCode, resolved := r.resolveTenant(in)

	if len(in.Structured) > 0 {
		if !resolved {
			zipCode, resolved = tenantFromArticles(in.Structured)
		}
		if !resolved {
			return nil, domainerrors.ErrTenantNotResolved
		}

		sess, err := session.New(zipCode, session.SourceStructured)
		if err != nil {
			return nil, err
		}

		r.logger.Info().
			Str("zip_code", zipCode).
			Int("articles_count", len(in.Structured)).
			Msg("Reconciled from structured canonical state")

		return r.finish(sess, in.Structured), nil
	}

	if in.RenderedHTML != "" {
		extracted := r.Extract(in.RenderedHTML, zipCode)
		if len(extracted) > 0 {
			if !resolved {
				return nil, domainerrors.ErrTenantNotResolved
			}

			sess, err := session.New(zipCode, session.SourceTextExtracted)
			if err != nil {
				return nil, err
			}

			r.logger.Warn().
				Str("zip_code", zipCode).
				Int("articles_count", len(extracted)).
				Msg("Reconciled from rendered display text; extracted data is best-effort")

			return r.finish(sess, extracted), nil
		}

		r.logger.Debug().Msg("Rendered markup yielded no entries, treating as no data")
	}

	if !resolved {
		return nil, domainerrors.ErrTenantNotResolved
	}

	sess, err := session.New(zipCode, session.SourceLocalOnly)
	if err != nil {
		return nil, err
	}

	cached, err := r.articles.ListByTenant(ctx, sess)
	if err != nil {
		r.logger.Error().Err(err).
			Str("zip_code", zipCode).
			Msg("Failed to load articles from local cache")
		return nil, err
	}

	r.logger.Info().
		Str("zip_code", zipCode).
		Int("articles_count", len(cached)).
		Msg("Reconciled from local cache")

	return r.finish(sess, cached), nil
}

// finish applies the empty-overwrite guard, seeds the flag mirror for remote
// sessions, and records the reconciled set. The retained set is keyed by
// tenant so an empty reconcile for one zip code never surfaces another's
// articles.
func (r *Reconciler) finish(sess *session.Session, articles []entities.Article) *Result {
	if kept := r.current[sess.ZipCode]; len(articles) == 0 && len(kept) > 0 {
		r.logger.Warn().
			Str("zip_code", sess.ZipCode).
			Int("kept_count", len(kept)).
			Msg("Refusing to replace reconciled articles with an empty set")
		articles = kept
	} else {
		r.current[sess.ZipCode] = articles
	}

	if sess.Remote() && r.mirror != nil {
		r.mirror.Seed(sess.ZipCode, articles)
	}

	return &Result{Session: sess, Articles: articles}
}

// resolveTenant tries, in order: a 5-digit path segment, the zip_code query
// parameter, and a data-zip-code attribute in the rendered markup.
func (r *Reconciler) resolveTenant(in Input) (string, bool) {
	for _, segment := range strings.Split(in.Path, "/") {
		if session.ValidZip(segment) {
			return segment, true
		}
	}

	if z := in.Query.Get("zip_code"); session.ValidZip(z) {
		return z, true
	}

	if in.RenderedHTML != "" {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(in.RenderedHTML))
		if err == nil {
			z := doc.Find("[data-zip-code]").First().AttrOr("data-zip-code", "")
			if session.ValidZip(z) {
				return z, true
			}
		}
	}

	return "", false
}

func tenantFromArticles(articles []entities.Article) (string, bool) {
	for _, a := range articles {
		if session.ValidZip(a.ZipCode) {
			return a.ZipCode, true
		}
	}
	return "", false
}

var (
	relevancePattern = regexp.MustCompile(`Relevance:\s*(\d+)`)
	localPattern     = regexp.MustCompile(`Local:\s*(\d+)%`)
)

// dateLayouts the meta line is tried against, most specific first.
var dateLayouts = []string{
	time.RFC3339,
	"Jan 2, 2006 3:04 PM",
	"Jan 2, 2006",
	"January 2, 2006",
	"2006-01-02",
}

// Extract parses already-rendered article entries back into approximate
// Article records. The parse is tolerant and inherently lossy; punctuation in
// titles or sources can corrupt the meta split, so extracted records must
// never be treated as authoritative for writes.
func (r *Reconciler) Extract(renderedHTML, zipCode string) []entities.Article {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(renderedHTML))
	if err != nil {
		r.logger.Warn().Err(err).Msg("Failed to parse rendered markup")
		return nil
	}

	var articles []entities.Article
	doc.Find(".article-card").Each(func(_ int, card *goquery.Selection) {
		article := extractCard(card)
		if article.Title == "" {
			return
		}
		article.ZipCode = zipCode
		articles = append(articles, article)
	})

	return articles
}

func extractCard(card *goquery.Selection) entities.Article {
	var article entities.Article

	heading := card.Find(".article-title, h3, h2").First()
	article.Title = strings.TrimSpace(heading.Text())
	article.URL = card.Find("a").First().AttrOr("href", "")

	article.ArticleID = card.AttrOr("data-article-id", "")
	if article.ArticleID == "" {
		article.ArticleID = article.URL
	}
	if article.ArticleID == "" {
		article.ArticleID = article.Title
	}

	meta := strings.TrimSpace(card.Find(".article-meta").First().Text())
	article.Source, article.SourceDisplay, article.Published, article.Category = parseMeta(meta)

	text := card.Text()
	if m := relevancePattern.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			article.RelevanceScore = &v
		}
	}
	if m := localPattern.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			article.LocalScore = &v
		}
	}

	article.Summary = strings.TrimSpace(card.Find(".article-summary").First().Text())

	return article
}

// parseMeta splits the rendered "<source> - <date> • <category>" line. The
// split breaks when a source name itself contains " - ", which is accepted as
// a limitation of the fallback path.
func parseMeta(meta string) (source, display string, published *time.Time, category string) {
	if meta == "" {
		return "", "", nil, ""
	}

	rest := meta
	if before, after, found := strings.Cut(meta, " - "); found {
		display = strings.TrimSpace(before)
		source = sourceKey(display)
		rest = after
	}

	datePart := rest
	if before, after, found := strings.Cut(rest, "•"); found {
		datePart = before
		category = strings.TrimSpace(after)
	}

	datePart = strings.TrimSpace(datePart)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, datePart); err == nil {
			published = &t
			break
		}
	}

	return source, display, published, category
}

// sourceKey lowers a display label into the raw source key form the scorer
// and credibility map use.
func sourceKey(display string) string {
	key := strings.ToLower(strings.TrimSpace(display))
	return strings.ReplaceAll(key, " ", "_")
}
