package server

import (
	"net/http"

	"curator/internal/core"
)

// CreateBriefRequest is the body of POST /api/briefs.
type CreateBriefRequest struct {
	BriefMarkdown          string  `json:"brief_markdown"`
	ContributingArticleIDs []int64 `json:"contributing_article_ids"`
	FeedProfile            string  `json:"feed_profile"`
}

// CreateBriefResponse is returned when a brief is stored.
type CreateBriefResponse struct {
	Status string `json:"status"`
	ID     int64  `json:"id"`
}

// BriefListResponse is the body of GET /api/briefs.
type BriefListResponse struct {
	Status string       `json:"status"`
	Briefs []core.Brief `json:"briefs"`
	Total  int          `json:"total"`
}

// handleListBriefs handles GET /api/briefs with an optional feed_profile
// filter, newest first.
func (s *Server) handleListBriefs(w http.ResponseWriter, r *http.Request) {
	briefs, err := s.store.GetBriefs(r.Context(), r.URL.Query().Get("feed_profile"))
	if err != nil {
		s.log.Error("Failed to list briefs", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to list briefs")
		return
	}

	s.respondJSON(w, http.StatusOK, BriefListResponse{
		Status: "ok",
		Briefs: briefs,
		Total:  len(briefs),
	})
}

// handleCreateBrief handles POST /api/briefs
func (s *Server) handleCreateBrief(w http.ResponseWriter, r *http.Request) {
	var req CreateBriefRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := s.store.SaveBrief(r.Context(), req.BriefMarkdown, req.ContributingArticleIDs, req.FeedProfile)
	if err != nil {
		s.log.Error("Failed to save brief", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to save brief")
		return
	}

	s.respondJSON(w, http.StatusCreated, CreateBriefResponse{Status: "ok", ID: id})
}

// handleGetBrief handles GET /api/briefs/{id}
func (s *Server) handleGetBrief(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}

	brief, err := s.store.GetBriefByID(r.Context(), id)
	if err != nil {
		s.log.Error("Failed to get brief", "id", id, "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to get brief")
		return
	}
	if brief == nil {
		s.respondError(w, http.StatusNotFound, "brief not found")
		return
	}

	s.respondJSON(w, http.StatusOK, brief)
}
