package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"trendpress/internal/application"
	"trendpress/internal/domain"
)

type beginLoginRequest struct {
	Platform string `json:"platform"`
}

type loginJobResponse struct {
	JobID    string          `json:"job_id"`
	Platform string          `json:"platform"`
	State    string          `json:"state"`
	Session  *domain.Session `json:"session,omitempty"`
	Error    string          `json:"error,omitempty"`
}

func (s *Server) handleBeginLogin(w http.ResponseWriter, r *http.Request) {
	var req beginLoginRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	job, err := s.sessions.BeginInteractiveLogin(r.Context(), domain.Platform(req.Platform))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrPlatformUnknown):
			respondError(w, http.StatusBadRequest, err)
		case errors.Is(err, domain.ErrLoginInProgress):
			respondError(w, http.StatusConflict, err)
		default:
			respondError(w, http.StatusInternalServerError, err)
		}
		return
	}

	respondJSON(w, http.StatusAccepted, snapshotResponse(job.Snapshot()))
}

func (s *Server) handleLoginJob(w http.ResponseWriter, r *http.Request) {
	jobID := strings.TrimSpace(chi.URLParam(r, "jobID"))
	job, ok := s.sessions.Job(jobID)
	if !ok {
		respondError(w, http.StatusNotFound, errors.New("login job not found"))
		return
	}

	respondJSON(w, http.StatusOK, snapshotResponse(job.Snapshot()))
}

func snapshotResponse(snapshot application.LoginJobSnapshot) loginJobResponse {
	resp := loginJobResponse{
		JobID:    snapshot.ID,
		Platform: string(snapshot.Platform),
		State:    string(snapshot.State),
		Session:  snapshot.Session,
	}
	if snapshot.Err != nil {
		resp.Error = snapshot.Err.Error()
	}
	return resp
}

func (s *Server) handlePlatforms(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"platforms": s.sessions.Platforms()})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	platform := domain.Platform(strings.TrimSpace(r.URL.Query().Get("platform")))

	sessions, err := s.sessions.List(r.Context(), platform)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

func (s *Server) handleValidateSession(w http.ResponseWriter, r *http.Request) {
	id := domain.SessionID(strings.TrimSpace(chi.URLParam(r, "sessionID")))

	status, err := s.sessions.Validate(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			respondError(w, http.StatusNotFound, err)
			return
		}
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"session_id": string(id),
		"status":     string(status),
	})
}

func (s *Server) handleRevokeSession(w http.ResponseWriter, r *http.Request) {
	id := domain.SessionID(strings.TrimSpace(chi.URLParam(r, "sessionID")))

	removed, err := s.sessions.Revoke(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	if !removed {
		respondError(w, http.StatusNotFound, domain.ErrSessionNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
