package server

import (
	"errors"
	"net/http"

	"curator/internal/core"
)

// CreateCollectionRequest is the body of POST /api/collections.
type CreateCollectionRequest struct {
	Name string `json:"name"`
}

// CreateCollectionResponse is returned when a collection is created.
type CreateCollectionResponse struct {
	Status string `json:"status"`
	ID     int64  `json:"id"`
}

// CollectionListResponse is the body of GET /api/collections.
type CollectionListResponse struct {
	Status      string            `json:"status"`
	Collections []core.Collection `json:"collections"`
	Total       int               `json:"total"`
}

// CollectionArticlesResponse is the body of GET /api/collections/{id}/articles.
type CollectionArticlesResponse struct {
	Status   string         `json:"status"`
	Articles []core.Article `json:"articles"`
	Count    int            `json:"count"`
}

// MembershipRequest is the body of POST /api/collections/{id}/articles.
type MembershipRequest struct {
	ArticleID int64 `json:"article_id"`
}

// handleListCollections handles GET /api/collections
func (s *Server) handleListCollections(w http.ResponseWriter, r *http.Request) {
	collections, err := s.store.GetCollections(r.Context())
	if err != nil {
		s.log.Error("Failed to list collections", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to list collections")
		return
	}

	s.respondJSON(w, http.StatusOK, CollectionListResponse{
		Status:      "ok",
		Collections: collections,
		Total:       len(collections),
	})
}

// handleCreateCollection handles POST /api/collections
func (s *Server) handleCreateCollection(w http.ResponseWriter, r *http.Request) {
	var req CreateCollectionRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := s.store.CreateCollection(r.Context(), req.Name)
	if err != nil {
		if errors.Is(err, core.ErrEmptyName) {
			s.respondError(w, http.StatusBadRequest, "collection name is required")
			return
		}
		s.log.Error("Failed to create collection", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to create collection")
		return
	}

	s.respondJSON(w, http.StatusCreated, CreateCollectionResponse{Status: "ok", ID: id})
}

// handleGetCollection handles GET /api/collections/{id}
func (s *Server) handleGetCollection(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}

	coll, err := s.store.GetCollectionByID(r.Context(), id)
	if err != nil {
		s.log.Error("Failed to get collection", "id", id, "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to get collection")
		return
	}
	if coll == nil {
		s.respondError(w, http.StatusNotFound, "collection not found")
		return
	}

	s.respondJSON(w, http.StatusOK, coll)
}

// handleCollectionArticles handles GET /api/collections/{id}/articles
func (s *Server) handleCollectionArticles(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}

	coll, err := s.store.GetCollectionByID(r.Context(), id)
	if err != nil {
		s.log.Error("Failed to get collection", "id", id, "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to get collection")
		return
	}
	if coll == nil {
		s.respondError(w, http.StatusNotFound, "collection not found")
		return
	}

	articles, err := s.store.GetArticlesForCollection(r.Context(), id)
	if err != nil {
		s.log.Error("Failed to list collection articles", "id", id, "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to list collection articles")
		return
	}

	count, err := s.store.GetArticleCountForCollection(r.Context(), id)
	if err != nil {
		s.log.Error("Failed to count collection articles", "id", id, "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to count collection articles")
		return
	}

	s.respondJSON(w, http.StatusOK, CollectionArticlesResponse{
		Status:   "ok",
		Articles: articles,
		Count:    count,
	})
}

// handleAddToCollection handles POST /api/collections/{id}/articles. Adding
// an article that is already a member is a no-op and still succeeds.
func (s *Server) handleAddToCollection(w http.ResponseWriter, r *http.Request) {
	collID, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}

	var req MembershipRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !s.requireCollectionAndArticle(w, r, collID, req.ArticleID) {
		return
	}

	if err := s.store.AddArticleToCollection(r.Context(), collID, req.ArticleID); err != nil {
		s.log.Error("Failed to add article to collection", "collection_id", collID, "article_id", req.ArticleID, "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to add article to collection")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleRemoveFromCollection handles DELETE /api/collections/{id}/articles/{articleID}.
// Removing an article that is not a member is a no-op and still succeeds.
func (s *Server) handleRemoveFromCollection(w http.ResponseWriter, r *http.Request) {
	collID, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	articleID, ok := s.pathID(w, r, "articleID")
	if !ok {
		return
	}

	if !s.requireCollectionAndArticle(w, r, collID, articleID) {
		return
	}

	if err := s.store.RemoveArticleFromCollection(r.Context(), collID, articleID); err != nil {
		s.log.Error("Failed to remove article from collection", "collection_id", collID, "article_id", articleID, "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to remove article from collection")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// requireCollectionAndArticle writes a 404 and returns false when either id
// does not exist. Membership mutations reject unknown ids rather than
// writing dangling pairs.
func (s *Server) requireCollectionAndArticle(w http.ResponseWriter, r *http.Request, collID, articleID int64) bool {
	coll, err := s.store.GetCollectionByID(r.Context(), collID)
	if err != nil {
		s.log.Error("Failed to get collection", "id", collID, "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to get collection")
		return false
	}
	if coll == nil {
		s.respondError(w, http.StatusNotFound, "collection not found")
		return false
	}

	article, err := s.store.GetArticleByID(r.Context(), articleID)
	if err != nil {
		s.log.Error("Failed to get article", "id", articleID, "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to get article")
		return false
	}
	if article == nil {
		s.respondError(w, http.StatusNotFound, "article not found")
		return false
	}

	return true
}
