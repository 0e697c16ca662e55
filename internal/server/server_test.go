package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"curator/internal/config"
	"curator/internal/core"
	"curator/internal/store"
)

func newTestServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()
	st, err := store.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return New(st, nil, config.Server{}), st
}

func doJSON(t *testing.T, srv *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("health returned %d", rec.Code)
	}

	var resp HealthResponse
	decodeBody(t, rec, &resp)
	if resp.Status != "ok" || resp.Checks["database"] != "ok" {
		t.Errorf("health response = %+v", resp)
	}
}

func TestCreateArticle(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/articles", CreateArticleRequest{
		URL:         "https://example.com/story",
		Title:       "A Story",
		Content:     "Body text",
		FeedProfile: "tech",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create article returned %d: %s", rec.Code, rec.Body.String())
	}

	var resp CreateArticleResponse
	decodeBody(t, rec, &resp)
	if resp.Status != "ok" || resp.ID <= 0 {
		t.Errorf("response = %+v", resp)
	}

	// Same URL again is a duplicate conflict, not a new row.
	rec = doJSON(t, srv, http.MethodPost, "/api/articles", CreateArticleRequest{URL: "https://example.com/story"})
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate create returned %d, want 409", rec.Code)
	}
}

func TestCreateArticle_Validation(t *testing.T) {
	srv, _ := newTestServer(t)

	for name, url := range map[string]string{
		"empty url":   "",
		"invalid url": "not-a-url",
		"bad scheme":  "ftp://example.com/x",
	} {
		t.Run(name, func(t *testing.T) {
			rec := doJSON(t, srv, http.MethodPost, "/api/articles", CreateArticleRequest{URL: url})
			if rec.Code != http.StatusBadRequest {
				t.Errorf("returned %d, want 400", rec.Code)
			}
		})
	}
}

func TestGetArticle(t *testing.T) {
	srv, st := newTestServer(t)

	id, _, err := st.AddArticle(context.Background(), "https://example.com/get", "Get Me", "", "tech")
	if err != nil {
		t.Fatalf("AddArticle failed: %v", err)
	}

	rec := doJSON(t, srv, http.MethodGet, fmt.Sprintf("/api/articles/%d", id), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get article returned %d", rec.Code)
	}
	var article core.Article
	decodeBody(t, rec, &article)
	if article.ID != id || article.Title != "Get Me" {
		t.Errorf("article = %+v", article)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/articles/99999", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing article returned %d, want 404", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/articles/abc", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid id returned %d, want 400", rec.Code)
	}
}

func TestListArticles_FilterParams(t *testing.T) {
	srv, st := newTestServer(t)
	ctx := context.Background()

	for i, title := range []string{"Go Generics", "Carnival Season", "SQLite Internals"} {
		if _, _, err := st.AddArticle(ctx, fmt.Sprintf("https://example.com/%d", i), title, "", "tech"); err != nil {
			t.Fatalf("AddArticle failed: %v", err)
		}
	}

	var listing struct {
		Articles []core.Article `json:"articles"`
		Total    int            `json:"total"`
	}

	rec := doJSON(t, srv, http.MethodGet, "/api/articles?search=sqlite", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list returned %d", rec.Code)
	}
	decodeBody(t, rec, &listing)
	if len(listing.Articles) != 1 || listing.Articles[0].Title != "SQLite Internals" {
		t.Errorf("search listing = %+v", listing.Articles)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/articles?page=999", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("out-of-range page returned %d", rec.Code)
	}
	decodeBody(t, rec, &listing)
	if len(listing.Articles) != 0 || listing.Total != 3 {
		t.Errorf("page 999: articles=%d total=%d", len(listing.Articles), listing.Total)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/articles?start_date=bogus", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad date returned %d, want 400", rec.Code)
	}
}

func TestBriefs(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/briefs", CreateBriefRequest{
		BriefMarkdown:          "# Daily Brief",
		ContributingArticleIDs: []int64{1, 2, 3},
		FeedProfile:            "tech",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create brief returned %d: %s", rec.Code, rec.Body.String())
	}
	var created CreateBriefResponse
	decodeBody(t, rec, &created)

	rec = doJSON(t, srv, http.MethodGet, fmt.Sprintf("/api/briefs/%d", created.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get brief returned %d", rec.Code)
	}
	var brief core.Brief
	decodeBody(t, rec, &brief)
	if brief.BriefMarkdown != "# Daily Brief" || len(brief.ContributingArticleIDs) != 3 {
		t.Errorf("brief = %+v", brief)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/briefs?feed_profile=tech", nil)
	var listing BriefListResponse
	decodeBody(t, rec, &listing)
	if listing.Total != 1 {
		t.Errorf("brief listing total = %d", listing.Total)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/briefs/424242", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing brief returned %d, want 404", rec.Code)
	}
}

func TestCollections(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/collections", CreateCollectionRequest{Name: "Collection B"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create collection returned %d", rec.Code)
	}
	rec = doJSON(t, srv, http.MethodPost, "/api/collections", CreateCollectionRequest{Name: "Collection A"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create collection returned %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/collections", CreateCollectionRequest{Name: "  "})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty name returned %d, want 400", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/collections", nil)
	var listing CollectionListResponse
	decodeBody(t, rec, &listing)
	if listing.Total != 2 {
		t.Fatalf("collection total = %d", listing.Total)
	}
	if listing.Collections[0].Name != "Collection A" || listing.Collections[1].Name != "Collection B" {
		t.Errorf("collections not sorted by name: %+v", listing.Collections)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/collections/999", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing collection returned %d, want 404", rec.Code)
	}
}

func TestMembershipFlow(t *testing.T) {
	srv, st := newTestServer(t)
	ctx := context.Background()

	articleID, _, err := st.AddArticle(ctx, "https://example.com/u1", "Article A", "", "")
	if err != nil {
		t.Fatalf("AddArticle failed: %v", err)
	}
	coll1, err := st.CreateCollection(ctx, "C1")
	if err != nil {
		t.Fatalf("CreateCollection failed: %v", err)
	}
	coll2, err := st.CreateCollection(ctx, "C2")
	if err != nil {
		t.Fatalf("CreateCollection failed: %v", err)
	}

	status := func(t *testing.T) map[int64]bool {
		t.Helper()
		rec := doJSON(t, srv, http.MethodGet, fmt.Sprintf("/api/articles/%d/collections", articleID), nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status query returned %d", rec.Code)
		}
		var resp CollectionStatusResponse
		decodeBody(t, rec, &resp)
		if len(resp.Collections) != 2 {
			t.Fatalf("expected one entry per collection, got %d", len(resp.Collections))
		}
		result := map[int64]bool{}
		for _, st := range resp.Collections {
			result[st.ID] = st.Contains
		}
		return result
	}

	if got := status(t); got[coll1] || got[coll2] {
		t.Errorf("new article should be in no collections: %v", got)
	}

	rec := doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/collections/%d/articles", coll1), MembershipRequest{ArticleID: articleID})
	if rec.Code != http.StatusOK {
		t.Fatalf("add to collection returned %d", rec.Code)
	}
	if got := status(t); !got[coll1] || got[coll2] {
		t.Errorf("after add: %v", got)
	}

	var articles CollectionArticlesResponse
	rec = doJSON(t, srv, http.MethodGet, fmt.Sprintf("/api/collections/%d/articles", coll1), nil)
	decodeBody(t, rec, &articles)
	if articles.Count != 1 || len(articles.Articles) != 1 {
		t.Errorf("collection articles = %+v", articles)
	}

	rec = doJSON(t, srv, http.MethodDelete, fmt.Sprintf("/api/collections/%d/articles/%d", coll1, articleID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("remove from collection returned %d", rec.Code)
	}
	if got := status(t); got[coll1] || got[coll2] {
		t.Errorf("after remove: %v", got)
	}

	// Removing again is a no-op, not an error.
	rec = doJSON(t, srv, http.MethodDelete, fmt.Sprintf("/api/collections/%d/articles/%d", coll1, articleID), nil)
	if rec.Code != http.StatusOK {
		t.Errorf("repeat remove returned %d", rec.Code)
	}
}

func TestMembership_UnknownIDs(t *testing.T) {
	srv, st := newTestServer(t)

	collID, err := st.CreateCollection(context.Background(), "Orphans")
	if err != nil {
		t.Fatalf("CreateCollection failed: %v", err)
	}

	rec := doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/collections/%d/articles", collID), MembershipRequest{ArticleID: 999})
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown article returned %d, want 404", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/collections/999/articles", MembershipRequest{ArticleID: 1})
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown collection returned %d, want 404", rec.Code)
	}
}

func TestListProfiles(t *testing.T) {
	srv, st := newTestServer(t)
	ctx := context.Background()

	for i, profile := range []string{"tech", "brasil"} {
		if _, _, err := st.AddArticle(ctx, fmt.Sprintf("https://example.com/p%d", i), "Article", "", profile); err != nil {
			t.Fatalf("AddArticle failed: %v", err)
		}
	}

	rec := doJSON(t, srv, http.MethodGet, "/api/profiles", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("profiles returned %d", rec.Code)
	}
	var resp struct {
		Profiles []string `json:"profiles"`
	}
	decodeBody(t, rec, &resp)
	if len(resp.Profiles) != 3 || resp.Profiles[0] != "default" {
		t.Errorf("profiles = %v", resp.Profiles)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/profiles?source=bogus", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad source returned %d, want 400", rec.Code)
	}
}
