package reconcile

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/rs/zerolog"

	"github.com/zipwire/moderation-service/internal/domain/moderation/deps"
	"github.com/zipwire/moderation-service/internal/domain/moderation/entities"
	"github.com/zipwire/moderation-service/internal/domain/moderation/session"
	pkgerrors "github.com/zipwire/moderation-service/pkg/errors"
)

// mockArticleRepository is a mock implementation of deps.ArticleRepository
type mockArticleRepository struct {
	listByTenantFunc func(ctx context.Context, sess *session.Session) ([]entities.Article, error)
}

func (m *mockArticleRepository) Upsert(ctx context.Context, sess *session.Session, article *entities.Article) error {
	return nil
}

func (m *mockArticleRepository) GetByArticleID(ctx context.Context, sess *session.Session, articleID string) (*entities.Article, error) {
	return nil, nil
}

func (m *mockArticleRepository) ListByTenant(ctx context.Context, sess *session.Session) ([]entities.Article, error) {
	if m.listByTenantFunc != nil {
		return m.listByTenantFunc(ctx, sess)
	}
	return nil, nil
}

func (m *mockArticleRepository) UpdateRelevanceScore(ctx context.Context, sess *session.Session, articleID string, score float64) error {
	return nil
}

func (m *mockArticleRepository) Update(ctx context.Context, sess *session.Session, article *entities.Article) error {
	return nil
}

func (m *mockArticleRepository) SoftDeleteBatch(ctx context.Context, sess *session.Session, articleIDs []string) (int, error) {
	return 0, nil
}

var _ deps.ArticleRepository = (*mockArticleRepository)(nil)

// mockMirror records seeded article sets
type mockMirror struct {
	seededZip      string
	seededArticles []entities.Article
}

func (m *mockMirror) Seed(zipCode string, articles []entities.Article) {
	m.seededZip = zipCode
	m.seededArticles = articles
}

const renderedFeed = `
<div id="news-feed" data-zip-code="02720">
  <div class="article-card" data-article-id="a-100">
    <h3 class="article-title"><a href="https://example.com/fire">Fire crews respond on Plymouth Ave</a></h3>
    <div class="article-meta">Herald News - Mar 3, 2026 • Public Safety</div>
    <div class="article-scores">Relevance: 18 | Local: 72%</div>
    <p class="article-summary">Two alarm fire, no injuries reported.</p>
  </div>
  <div class="article-card">
    <h3 class="article-title"><a href="https://example.com/budget">School budget hearing set</a></h3>
    <div class="article-meta">Gazette - 2026-03-02</div>
  </div>
</div>`

func TestReconcile_PrefersStructured(t *testing.T) {
	r := New(&mockArticleRepository{}, nil, zerolog.Nop())

	structured := []entities.Article{
		{ZipCode: "02720", ArticleID: "s-1", Title: "Council vote tonight"},
	}

	result, err := r.Reconcile(context.Background(), Input{
		Query:        url.Values{"zip_code": {"02720"}},
		RenderedHTML: renderedFeed,
		Structured:   structured,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if result.Session.Source != session.SourceStructured {
		t.Errorf("Expected structured source, got %s", result.Session.Source)
	}
	if len(result.Articles) != 1 || result.Articles[0].ArticleID != "s-1" {
		t.Errorf("Expected the structured set, got %+v", result.Articles)
	}
}

func TestReconcile_TenantResolutionOrder(t *testing.T) {
	r := New(&mockArticleRepository{}, nil, zerolog.Nop())

	t.Run("PathSegmentWins", func(t *testing.T) {
		result, err := r.Reconcile(context.Background(), Input{
			Path:       "/feed/02721/news",
			Query:      url.Values{"zip_code": {"02720"}},
			Structured: []entities.Article{{ArticleID: "s-1", Title: "t"}},
		})
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if result.Session.ZipCode != "02721" {
			t.Errorf("Expected path tenant 02721, got %s", result.Session.ZipCode)
		}
	})

	t.Run("QueryParamSecond", func(t *testing.T) {
		result, err := r.Reconcile(context.Background(), Input{
			Path:       "/feed/news",
			Query:      url.Values{"zip_code": {"02720"}},
			Structured: []entities.Article{{ArticleID: "s-1", Title: "t"}},
		})
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if result.Session.ZipCode != "02720" {
			t.Errorf("Expected query tenant 02720, got %s", result.Session.ZipCode)
		}
	})

	t.Run("ContainerAttributeLast", func(t *testing.T) {
		result, err := r.Reconcile(context.Background(), Input{
			RenderedHTML: renderedFeed,
		})
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if result.Session.ZipCode != "02720" {
			t.Errorf("Expected container tenant 02720, got %s", result.Session.ZipCode)
		}
		if result.Session.Source != session.SourceTextExtracted {
			t.Errorf("Expected text-extracted source, got %s", result.Session.Source)
		}
	})

	t.Run("RejectsNonFiveDigit", func(t *testing.T) {
		_, err := r.Reconcile(context.Background(), Input{
			Path:  "/feed/0272/news",
			Query: url.Values{"zip_code": {"2720a"}},
		})
		if !pkgerrors.IsConfigurationError(err) {
			t.Errorf("Expected configuration error, got %v", err)
		}
	})
}

func TestReconcile_MissingTenantIsFatal(t *testing.T) {
	r := New(&mockArticleRepository{}, nil, zerolog.Nop())

	_, err := r.Reconcile(context.Background(), Input{Path: "/feed"})
	if !pkgerrors.IsConfigurationError(err) {
		t.Errorf("Expected configuration error, got %v", err)
	}
}

func TestReconcile_LocalOnlyFallsBackToCache(t *testing.T) {
	cached := []entities.Article{{ZipCode: "02720", ArticleID: "c-1", Title: "Cached"}}
	repo := &mockArticleRepository{
		listByTenantFunc: func(ctx context.Context, sess *session.Session) ([]entities.Article, error) {
			if sess.ZipCode != "02720" {
				t.Errorf("Expected tenant 02720, got %s", sess.ZipCode)
			}
			return cached, nil
		},
	}
	mirror := &mockMirror{}
	r := New(repo, mirror, zerolog.Nop())

	result, err := r.Reconcile(context.Background(), Input{
		Query: url.Values{"zip_code": {"02720"}},
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if result.Session.Source != session.SourceLocalOnly {
		t.Errorf("Expected local-only source, got %s", result.Session.Source)
	}
	if len(result.Articles) != 1 || result.Articles[0].ArticleID != "c-1" {
		t.Errorf("Expected cached articles, got %+v", result.Articles)
	}
	if mirror.seededZip != "" {
		t.Error("Local-only sessions must not seed the remote mirror")
	}
}

func TestReconcile_CacheErrorSurfaces(t *testing.T) {
	repo := &mockArticleRepository{
		listByTenantFunc: func(ctx context.Context, sess *session.Session) ([]entities.Article, error) {
			return nil, errors.New("cache unavailable")
		},
	}
	r := New(repo, nil, zerolog.Nop())

	_, err := r.Reconcile(context.Background(), Input{
		Query: url.Values{"zip_code": {"02720"}},
	})
	if err == nil {
		t.Fatal("Expected cache error to surface")
	}
}

func TestExtract_RecoversArticleFields(t *testing.T) {
	r := New(&mockArticleRepository{}, nil, zerolog.Nop())

	articles := r.Extract(renderedFeed, "02720")
	if len(articles) != 2 {
		t.Fatalf("Expected 2 extracted articles, got %d", len(articles))
	}

	first := articles[0]
	if first.ArticleID != "a-100" {
		t.Errorf("Expected data-article-id a-100, got %q", first.ArticleID)
	}
	if first.Title != "Fire crews respond on Plymouth Ave" {
		t.Errorf("Unexpected title %q", first.Title)
	}
	if first.URL != "https://example.com/fire" {
		t.Errorf("Unexpected url %q", first.URL)
	}
	if first.SourceDisplay != "Herald News" || first.Source != "herald_news" {
		t.Errorf("Unexpected source %q / %q", first.Source, first.SourceDisplay)
	}
	if first.Published == nil || first.Published.Year() != 2026 || first.Published.Day() != 3 {
		t.Errorf("Unexpected published %v", first.Published)
	}
	if first.Category != "Public Safety" {
		t.Errorf("Unexpected category %q", first.Category)
	}
	if first.RelevanceScore == nil || *first.RelevanceScore != 18 {
		t.Errorf("Unexpected relevance score %v", first.RelevanceScore)
	}
	if first.LocalScore == nil || *first.LocalScore != 72 {
		t.Errorf("Unexpected local score %v", first.LocalScore)
	}
	if first.ZipCode != "02720" {
		t.Errorf("Unexpected zip %q", first.ZipCode)
	}

	second := articles[1]
	if second.ArticleID != "https://example.com/budget" {
		t.Errorf("Expected href fallback id, got %q", second.ArticleID)
	}
	if second.Category != "" {
		t.Errorf("Expected no category, got %q", second.Category)
	}
	if second.Published == nil || second.Published.Month() != 3 {
		t.Errorf("Unexpected published %v", second.Published)
	}
}

func TestReconcile_EmptyExtractionPreservesState(t *testing.T) {
	repo := &mockArticleRepository{}
	r := New(repo, nil, zerolog.Nop())

	// First load reconciles a populated structured set.
	populated, err := r.Reconcile(context.Background(), Input{
		Query:      url.Values{"zip_code": {"02720"}},
		Structured: []entities.Article{{ZipCode: "02720", ArticleID: "s-1", Title: "Kept"}},
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(populated.Articles) != 1 {
		t.Fatalf("Expected 1 article, got %d", len(populated.Articles))
	}

	// A later load with markup that has no entries must not clobber it.
	result, err := r.Reconcile(context.Background(), Input{
		Query:        url.Values{"zip_code": {"02720"}},
		RenderedHTML: `<div id="news-feed"><p>No articles right now.</p></div>`,
	})
	if err != nil {
		t.Fatalf("Expected empty extraction to be treated as no data, got %v", err)
	}
	if len(result.Articles) != 1 || result.Articles[0].ArticleID != "s-1" {
		t.Errorf("Expected prior articles preserved, got %+v", result.Articles)
	}
}

func TestReconcile_EmptyOverwriteGuardIsPerTenant(t *testing.T) {
	repo := &mockArticleRepository{}
	r := New(repo, nil, zerolog.Nop())

	// Tenant 02720 reconciles a populated structured set.
	_, err := r.Reconcile(context.Background(), Input{
		Query:      url.Values{"zip_code": {"02720"}},
		Structured: []entities.Article{{ZipCode: "02720", ArticleID: "a-1", Title: "t"}},
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// A later session for tenant 02743 with an empty cache must not see
	// 02720's retained set.
	result, err := r.Reconcile(context.Background(), Input{
		Query: url.Values{"zip_code": {"02743"}},
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(result.Articles) != 0 {
		t.Errorf("Expected no articles for tenant 02743, got %+v", result.Articles)
	}

	// The guard still holds for the tenant that owns the retained set.
	kept, err := r.Reconcile(context.Background(), Input{
		Query:        url.Values{"zip_code": {"02720"}},
		RenderedHTML: `<div id="news-feed"><p>No articles right now.</p></div>`,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(kept.Articles) != 1 || kept.Articles[0].ArticleID != "a-1" {
		t.Errorf("Expected 02720's articles preserved, got %+v", kept.Articles)
	}
}

func TestReconcile_SeedsMirrorForRemoteSessions(t *testing.T) {
	mirror := &mockMirror{}
	r := New(&mockArticleRepository{}, mirror, zerolog.Nop())

	_, err := r.Reconcile(context.Background(), Input{
		Query:      url.Values{"zip_code": {"02720"}},
		Structured: []entities.Article{{ZipCode: "02720", ArticleID: "s-1", Title: "t"}},
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if mirror.seededZip != "02720" || len(mirror.seededArticles) != 1 {
		t.Errorf("Expected mirror seeded with canonical set, got zip %q count %d",
			mirror.seededZip, len(mirror.seededArticles))
	}
}
