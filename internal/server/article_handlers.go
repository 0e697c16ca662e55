package server

import (
	"errors"
	"net/http"
	"time"

	"curator/internal/core"
	"curator/internal/fetch"
	"curator/internal/query"
	"curator/internal/store"
)

// CreateArticleRequest is the body of POST /api/articles.
type CreateArticleRequest struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	FeedProfile string `json:"feed_profile"`
}

// CreateArticleResponse is returned when an article is stored.
type CreateArticleResponse struct {
	Status string `json:"status"`
	ID     int64  `json:"id"`
}

// CollectionStatusResponse is the body of GET /api/articles/{id}/collections.
type CollectionStatusResponse struct {
	Status      string                  `json:"status"`
	Collections []core.CollectionStatus `json:"collections"`
}

// handleListArticles handles GET /api/articles with the optional filter
// parameters search, start_date, end_date, feed_profile and page.
func (s *Server) handleListArticles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := query.Filter{
		Search:      q.Get("search"),
		FeedProfile: q.Get("feed_profile"),
	}

	if raw := q.Get("page"); raw != "" {
		page, err := parsePage(raw)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid page number")
			return
		}
		filter.Page = page
	}

	if raw := q.Get("start_date"); raw != "" {
		start, err := time.Parse("2006-01-02", raw)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid start_date, expected YYYY-MM-DD")
			return
		}
		filter.StartDate = &start
	}
	if raw := q.Get("end_date"); raw != "" {
		end, err := time.Parse("2006-01-02", raw)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid end_date, expected YYYY-MM-DD")
			return
		}
		// The bound is a date; include everything up to the end of that day.
		end = end.Add(24*time.Hour - time.Nanosecond)
		filter.EndDate = &end
	}

	page, err := s.engine.FilterArticles(r.Context(), filter)
	if err != nil {
		s.log.Error("Failed to list articles", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to list articles")
		return
	}

	s.respondJSON(w, http.StatusOK, page)
}

// handleCreateArticle handles POST /api/articles. When title and content are
// absent and a fetcher is configured, the page is fetched and its extracted
// fields are stored instead.
func (s *Server) handleCreateArticle(w http.ResponseWriter, r *http.Request) {
	var req CreateArticleRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := fetch.ValidateURL(req.URL); err != nil {
		if errors.Is(err, core.ErrEmptyURL) {
			s.respondError(w, http.StatusBadRequest, "article url is required")
			return
		}
		s.respondError(w, http.StatusBadRequest, "invalid article url")
		return
	}

	if req.Title == "" && req.Content == "" && s.fetcher != nil {
		result, err := s.fetcher.Fetch(r.Context(), req.URL)
		if err != nil {
			s.log.Warn("Fetch failed, storing URL without content", "url", req.URL, "error", err)
		} else {
			req.Title = result.Title
			req.Content = result.Content
		}
	}

	id, created, err := s.store.AddArticle(r.Context(), req.URL, req.Title, req.Content, req.FeedProfile)
	if err != nil {
		s.log.Error("Failed to add article", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to add article")
		return
	}
	if !created {
		s.respondError(w, http.StatusConflict, "article with this url already exists")
		return
	}

	s.respondJSON(w, http.StatusCreated, CreateArticleResponse{Status: "ok", ID: id})
}

// handleGetArticle handles GET /api/articles/{id}
func (s *Server) handleGetArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}

	article, err := s.store.GetArticleByID(r.Context(), id)
	if err != nil {
		s.log.Error("Failed to get article", "id", id, "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to get article")
		return
	}
	if article == nil {
		s.respondError(w, http.StatusNotFound, "article not found")
		return
	}

	s.respondJSON(w, http.StatusOK, article)
}

// handleArticleCollections handles GET /api/articles/{id}/collections and
// returns every collection with a flag for whether it contains the article.
func (s *Server) handleArticleCollections(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}

	article, err := s.store.GetArticleByID(r.Context(), id)
	if err != nil {
		s.log.Error("Failed to get article", "id", id, "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to get article")
		return
	}
	if article == nil {
		s.respondError(w, http.StatusNotFound, "article not found")
		return
	}

	statuses, err := s.store.GetCollectionStatusForArticle(r.Context(), id)
	if err != nil {
		s.log.Error("Failed to get collection status", "article_id", id, "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to get collection status")
		return
	}

	s.respondJSON(w, http.StatusOK, CollectionStatusResponse{Status: "ok", Collections: statuses})
}

// handleListProfiles handles GET /api/profiles?source=articles|briefs
func (s *Server) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	source := store.ProfileSourceArticles
	switch r.URL.Query().Get("source") {
	case "", "articles":
	case "briefs":
		source = store.ProfileSourceBriefs
	default:
		s.respondError(w, http.StatusBadRequest, "source must be articles or briefs")
		return
	}

	list, err := s.profiles.List(r.Context(), source)
	if err != nil {
		s.log.Error("Failed to list profiles", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to list profiles")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"profiles": list,
	})
}
