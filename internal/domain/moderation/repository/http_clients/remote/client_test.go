package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/zipwire/moderation-service/config"
	"github.com/zipwire/moderation-service/internal/domain/moderation/dto"
	"github.com/zipwire/moderation-service/internal/domain/moderation/entities"
	"github.com/zipwire/moderation-service/internal/domain/moderation/session"
	pkgerrors "github.com/zipwire/moderation-service/pkg/errors"
)

// mockLocalStore records good-fit write-throughs
type mockLocalStore struct {
	setFlagCalls []struct {
		articleID string
		flag      entities.Flag
		value     bool
	}
}

func (m *mockLocalStore) GetFlags(ctx context.Context, sess *session.Session, articleID string) (*entities.ModerationFlags, error) {
	return &entities.ModerationFlags{ZipCode: sess.ZipCode, ArticleID: articleID}, nil
}

func (m *mockLocalStore) SetFlag(ctx context.Context, sess *session.Session, articleID string, flag entities.Flag, value bool) error {
	m.setFlagCalls = append(m.setFlagCalls, struct {
		articleID string
		flag      entities.Flag
		value     bool
	}{articleID, flag, value})
	return nil
}

func (m *mockLocalStore) SetAutoFiltered(ctx context.Context, sess *session.Session, articleID string, filtered bool, reason string) error {
	return nil
}

func (m *mockLocalStore) ListTrashed(ctx context.Context, sess *session.Session) ([]entities.Article, error) {
	return nil, nil
}

func (m *mockLocalStore) ListDisabled(ctx context.Context, sess *session.Session) ([]entities.Article, error) {
	return nil, nil
}

func (m *mockLocalStore) ListGoodFit(ctx context.Context, sess *session.Session) ([]entities.Article, error) {
	return nil, nil
}

func (m *mockLocalStore) ListTopStories(ctx context.Context, sess *session.Session) ([]entities.Article, error) {
	return nil, nil
}

func (m *mockLocalStore) ListAutoFiltered(ctx context.Context, sess *session.Session) ([]entities.AutoFilteredArticle, error) {
	return nil, nil
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *mockLocalStore, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	local := &mockLocalStore{}
	client := NewClient(&config.RemoteStoreConfig{
		URL:     server.URL,
		Timeout: 5 * time.Second,
	}, local, zerolog.Nop())

	return client, local, server
}

func remoteSession(t *testing.T) *session.Session {
	t.Helper()
	sess, err := session.New("02720", session.SourceStructured)
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	return sess
}

func TestSetFlag_Trashed(t *testing.T) {
	var gotPath string
	var gotBody map[string]any

	client, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))

	sess := remoteSession(t)
	if err := client.SetFlag(context.Background(), sess, "a-1", entities.FlagTrashed, true); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if gotPath != "/reject-article" {
		t.Errorf("Expected /reject-article, got %s", gotPath)
	}
	if gotBody["article_id"] != "a-1" || gotBody["rejected"] != true {
		t.Errorf("Unexpected body %v", gotBody)
	}

	flags, err := client.GetFlags(context.Background(), sess, "a-1")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !flags.Trashed {
		t.Error("Expected mirror to record trashed after successful write")
	}
}

func TestSetFlag_DisabledInvertsEnabled(t *testing.T) {
	var gotBody map[string]any

	client, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))

	sess := remoteSession(t)
	if err := client.SetFlag(context.Background(), sess, "a-1", entities.FlagDisabled, true); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if gotBody["enabled"] != false {
		t.Errorf("Disabling must send enabled=false, got %v", gotBody["enabled"])
	}
	if gotBody["zip_code"] != "02720" {
		t.Errorf("Expected tenant in body, got %v", gotBody["zip_code"])
	}
}

func TestSetFlag_FailureDoesNotUpdateMirror(t *testing.T) {
	t.Run("Non2xx", func(t *testing.T) {
		client, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))

		sess := remoteSession(t)
		err := client.SetFlag(context.Background(), sess, "a-1", entities.FlagTrashed, true)
		if err == nil {
			t.Fatal("Expected error on 500")
		}
		if !pkgerrors.IsRemoteError(err) {
			t.Errorf("Expected remote error, got %v", err)
		}

		client.mu.RLock()
		mirror := client.mirrors[sess.ZipCode]
		client.mu.RUnlock()
		if mirror != nil && mirror.flags["a-1"] != nil && mirror.flags["a-1"].Trashed {
			t.Error("Mirror must not record a failed write")
		}
	})

	t.Run("SuccessFalse", func(t *testing.T) {
		client, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "article locked"})
		}))

		sess := remoteSession(t)
		err := client.SetFlag(context.Background(), sess, "a-1", entities.FlagTrashed, true)
		if !pkgerrors.IsRemoteError(err) {
			t.Errorf("Expected remote error on success:false, got %v", err)
		}
	})

	t.Run("NotFoundMapped", func(t *testing.T) {
		client, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))

		sess := remoteSession(t)
		err := client.SetFlag(context.Background(), sess, "a-1", entities.FlagTrashed, true)
		if !pkgerrors.IsNotFoundError(err) {
			t.Errorf("Expected not-found error on 404, got %v", err)
		}
	})
}

func TestSetFlag_GoodFitWritesThroughLocally(t *testing.T) {
	client, local, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("Good-fit must not reach the API, got %s %s", r.Method, r.URL.Path)
	}))

	sess := remoteSession(t)
	if err := client.SetFlag(context.Background(), sess, "a-1", entities.FlagGoodFit, true); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(local.setFlagCalls) != 1 || local.setFlagCalls[0].flag != entities.FlagGoodFit {
		t.Errorf("Expected local write-through, got %v", local.setFlagCalls)
	}

	articles, err := client.ListGoodFit(context.Background(), sess)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(articles) != 1 || articles[0].ArticleID != "a-1" {
		t.Errorf("Expected good-fit article in mirror, got %v", articles)
	}
}

func TestSetAutoFiltered_ApplyIsServerOwned(t *testing.T) {
	client, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("No request expected")
	}))

	sess := remoteSession(t)
	err := client.SetAutoFiltered(context.Background(), sess, "a-1", true, "below threshold")
	if !pkgerrors.IsValidationError(err) {
		t.Errorf("Expected validation error, got %v", err)
	}
}

func TestSetAutoFiltered_Restore(t *testing.T) {
	var gotPath string
	var gotBody map[string]any

	client, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))

	sess := remoteSession(t)
	if err := client.SetAutoFiltered(context.Background(), sess, "a-1", false, ""); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if gotPath != "/restore-auto-filtered" {
		t.Errorf("Expected /restore-auto-filtered, got %s", gotPath)
	}
	if gotBody["article_id"] != "a-1" || gotBody["zip_code"] != "02720" {
		t.Errorf("Unexpected body %v", gotBody)
	}
}

func TestListTrashed(t *testing.T) {
	client, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/get-rejected-articles" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("zip_code") != "02720" {
			t.Errorf("Expected tenant query param, got %s", r.URL.RawQuery)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"articles": []map[string]any{
				{"id": "a-1", "title": "Trashed story", "source": "herald_news", "rejected": true},
			},
		})
	}))

	sess := remoteSession(t)
	articles, err := client.ListTrashed(context.Background(), sess)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(articles) != 1 {
		t.Fatalf("Expected 1 article, got %d", len(articles))
	}
	if articles[0].ArticleID != "a-1" || articles[0].ZipCode != "02720" {
		t.Errorf("Unexpected article %+v", articles[0])
	}
}

func TestListAutoFiltered_CarriesReasons(t *testing.T) {
	client, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"articles": []map[string]any{
				{"id": "a-1", "title": "Filtered story", "auto_filtered": true, "reason": "score 4.0 below threshold 10.0"},
			},
		})
	}))

	sess := remoteSession(t)
	filtered, err := client.ListAutoFiltered(context.Background(), sess)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(filtered) != 1 || filtered[0].Reason != "score 4.0 below threshold 10.0" {
		t.Errorf("Expected reason carried through, got %+v", filtered)
	}
}

func TestGetFlags_FetchesArticleOnMirrorMiss(t *testing.T) {
	enabled := false
	client, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/get-article" || r.URL.Query().Get("id") != "a-9" {
			t.Errorf("Unexpected request %s %s", r.URL.Path, r.URL.RawQuery)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"article": map[string]any{
				"id": "a-9", "title": "t", "rejected": true, "is_top_story": true, "enabled": enabled,
			},
		})
	}))

	sess := remoteSession(t)
	flags, err := client.GetFlags(context.Background(), sess, "a-9")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !flags.Trashed || !flags.TopStory || !flags.Disabled {
		t.Errorf("Unexpected flags %+v", flags)
	}
}

func TestSeed_PopulatesMirrorArticles(t *testing.T) {
	client, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))

	sess := remoteSession(t)
	client.Seed("02720", []entities.Article{
		{ZipCode: "02720", ArticleID: "a-1", Title: "Seeded"},
	})

	if err := client.SetFlag(context.Background(), sess, "a-1", entities.FlagTopStory, true); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	stories, err := client.ListTopStories(context.Background(), sess)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(stories) != 1 || stories[0].Title != "Seeded" {
		t.Errorf("Expected seeded article snapshot, got %v", stories)
	}
}

func TestSaveSource_EndpointByKeyPresence(t *testing.T) {
	var gotPath string
	client, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))

	if err := client.SaveSource(context.Background(), dtoSaveSource("")); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if gotPath != "/add-source" {
		t.Errorf("Expected /add-source for missing key, got %s", gotPath)
	}

	if err := client.SaveSource(context.Background(), dtoSaveSource("herald_news")); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if gotPath != "/edit-source" {
		t.Errorf("Expected /edit-source for present key, got %s", gotPath)
	}
}

func dtoSaveSource(key string) dto.SaveSourceRequest {
	return dto.SaveSourceRequest{
		Key:      key,
		Name:     "Herald News",
		URL:      "https://example.com/feed",
		Category: "local",
		Enabled:  true,
	}
}
