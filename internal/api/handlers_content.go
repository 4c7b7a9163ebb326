package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"trendpress/internal/domain"
)

func (s *Server) handleScrapeTrends(w http.ResponseWriter, r *http.Request) {
	inserted, err := s.content.ScrapeTrends(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]int{"inserted": inserted})
}

func (s *Server) handleListTrends(w http.ResponseWriter, r *http.Request) {
	page := parseIntDefault(r.URL.Query().Get("page"), 1)
	size := parseIntDefault(r.URL.Query().Get("size"), 20)

	trends, err := s.content.ListTrends(r.Context(), page, size)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	respondJSON(w, http.StatusOK, trends)
}

type generateDraftRequest struct {
	TrendID int64 `json:"trend_id"`
}

func (s *Server) handleGenerateDraft(w http.ResponseWriter, r *http.Request) {
	var req generateDraftRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	draft, err := s.content.GenerateDraft(r.Context(), req.TrendID)
	if err != nil {
		if errors.Is(err, domain.ErrTrendNotFound) {
			respondError(w, http.StatusNotFound, err)
			return
		}
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	respondJSON(w, http.StatusCreated, draft)
}

func (s *Server) handleListDrafts(w http.ResponseWriter, r *http.Request) {
	drafts, err := s.content.ListDrafts(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"drafts": drafts})
}

type updateDraftRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (s *Server) handleUpdateDraft(w http.ResponseWriter, r *http.Request) {
	id, err := draftID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	var req updateDraftRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	draft, err := s.content.UpdateDraft(r.Context(), id, req.Title, req.Body)
	if err != nil {
		if errors.Is(err, domain.ErrDraftNotFound) {
			respondError(w, http.StatusNotFound, err)
			return
		}
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	respondJSON(w, http.StatusOK, draft)
}

type publishDraftRequest struct {
	SessionID string `json:"session_id"`
}

func (s *Server) handlePublishDraft(w http.ResponseWriter, r *http.Request) {
	id, err := draftID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	var req publishDraftRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.SessionID) == "" {
		respondError(w, http.StatusBadRequest, errors.New("session_id is required"))
		return
	}

	outcome, err := s.content.PublishDraft(r.Context(), id, domain.SessionID(req.SessionID))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDraftNotFound), errors.Is(err, domain.ErrSessionNotFound):
			respondError(w, http.StatusNotFound, err)
		default:
			respondError(w, http.StatusInternalServerError, err)
		}
		return
	}

	respondJSON(w, http.StatusOK, outcome)
}

func (s *Server) handlePublishLog(w http.ResponseWriter, r *http.Request) {
	records, err := s.content.PublishLog(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"records": records})
}

func draftID(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "draftID"))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid draft id")
	}
	return id, nil
}

func parseIntDefault(raw string, def int) int {
	if raw == "" {
		return def
	}
	if v, err := strconv.Atoi(raw); err == nil && v > 0 {
		return v
	}
	return def
}
