// Package api exposes the trendpress services over a small REST surface.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"trendpress/internal/application"
	"trendpress/internal/domain"
)

// SessionAPI is the slice of the session service the handlers need.
type SessionAPI interface {
	BeginInteractiveLogin(ctx context.Context, p domain.Platform) (*application.LoginJob, error)
	Job(id string) (*application.LoginJob, bool)
	Validate(ctx context.Context, id domain.SessionID) (domain.SessionStatus, error)
	Revoke(ctx context.Context, id domain.SessionID) (bool, error)
	List(ctx context.Context, p domain.Platform) ([]domain.Session, error)
	Platforms() []domain.Platform
}

// ContentAPI is the slice of the content service the handlers need.
type ContentAPI interface {
	ScrapeTrends(ctx context.Context) (int, error)
	ListTrends(ctx context.Context, page, size int) (application.TrendPage, error)
	GenerateDraft(ctx context.Context, trendID int64) (domain.Draft, error)
	ListDrafts(ctx context.Context) ([]domain.Draft, error)
	UpdateDraft(ctx context.Context, id int64, title, body string) (domain.Draft, error)
	PublishDraft(ctx context.Context, draftID int64, sessionID domain.SessionID) (domain.PublishOutcome, error)
	PublishLog(ctx context.Context) ([]domain.PublishRecord, error)
}

type ServerConfig struct {
	Address string
}

type Server struct {
	sessions   SessionAPI
	content    ContentAPI
	logger     *slog.Logger
	httpServer *http.Server
}

func NewServer(cfg ServerConfig, sessions SessionAPI, content ContentAPI, logger *slog.Logger) *Server {
	if cfg.Address == "" {
		cfg.Address = ":8080"
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		sessions: sessions,
		content:  content,
		logger:   logger,
	}

	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) routes() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(s.logMiddleware)

	router.Get("/healthz", s.handleHealthz)

	router.Route("/api", func(r chi.Router) {
		r.Get("/platforms", s.handlePlatforms)
		r.Route("/sessions", func(r chi.Router) {
			r.Post("/login", s.handleBeginLogin)
			r.Get("/login/{jobID}", s.handleLoginJob)
			r.Get("/", s.handleListSessions)
			r.Post("/{sessionID}/validate", s.handleValidateSession)
			r.Delete("/{sessionID}", s.handleRevokeSession)
		})
		r.Route("/trends", func(r chi.Router) {
			r.Post("/scrape", s.handleScrapeTrends)
			r.Get("/", s.handleListTrends)
		})
		r.Route("/drafts", func(r chi.Router) {
			r.Post("/", s.handleGenerateDraft)
			r.Get("/", s.handleListDrafts)
			r.Put("/{draftID}", s.handleUpdateDraft)
			r.Post("/{draftID}/publish", s.handlePublishDraft)
		})
		r.Get("/publish-log", s.handlePublishLog)
	})

	return router
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	s.logger.Info("api server listening", "addr", s.httpServer.Addr)

	select {
	case err := <-errCh:
		return fmt.Errorf("serve api: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown api: %w", err)
	}
	return nil
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(wrapped, r)
		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.Status(),
			"duration", time.Since(start),
		)
	})
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(payload)
}

func respondError(w http.ResponseWriter, status int, err error) {
	respondJSON(w, status, map[string]any{
		"error":  err.Error(),
		"status": status,
	})
}

func decodeBody(r *http.Request, dst any) error {
	defer func() { _ = r.Body.Close() }()
	if err := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20)).Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}
