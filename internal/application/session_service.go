package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"trendpress/internal/domain"
	"trendpress/internal/platform"
	"trendpress/internal/ports"
)

const defaultLoginTimeout = 2 * time.Minute

type SessionServiceConfig struct {
	// LoginTimeout bounds the wait for the user to complete the
	// interactive login. Zero means the default of two minutes.
	LoginTimeout time.Duration
	// HeadlessValidation runs advisory validation checks in a headless
	// surface. Interactive login is always headed.
	HeadlessValidation bool
}

// SessionService produces and maintains platform sessions.
type SessionService struct {
	sessions ports.SessionRepository
	creds    ports.CredentialStore
	surfaces ports.SurfaceFactory
	adapters *platform.Registry
	clock    ports.Clock
	logger   *slog.Logger
	cfg      SessionServiceConfig

	mu           sync.Mutex
	activeLogins map[domain.Platform]*LoginJob
	jobs         map[string]*LoginJob
}

func NewSessionService(
	sessions ports.SessionRepository,
	creds ports.CredentialStore,
	surfaces ports.SurfaceFactory,
	adapters *platform.Registry,
	clock ports.Clock,
	logger *slog.Logger,
	cfg SessionServiceConfig,
) *SessionService {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.LoginTimeout <= 0 {
		cfg.LoginTimeout = defaultLoginTimeout
	}

	return &SessionService{
		sessions:     sessions,
		creds:        creds,
		surfaces:     surfaces,
		adapters:     adapters,
		clock:        clock,
		logger:       logger.With("component", "session"),
		cfg:          cfg,
		activeLogins: make(map[domain.Platform]*LoginJob),
		jobs:         make(map[string]*LoginJob),
	}
}

// BeginInteractiveLogin starts an interactive login for the platform and
// returns immediately with a job handle. At most one interactive login may
// be in progress per platform; a second request is rejected with
// domain.ErrLoginInProgress.
func (s *SessionService) BeginInteractiveLogin(ctx context.Context, p domain.Platform) (*LoginJob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	adapter, ok := s.adapters.Lookup(p)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrPlatformUnknown, p)
	}

	s.mu.Lock()
	if _, busy := s.activeLogins[p]; busy {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %q", domain.ErrLoginInProgress, p)
	}
	job := newLoginJob(uuid.NewString(), p)
	s.activeLogins[p] = job
	s.jobs[job.ID] = job
	s.mu.Unlock()

	go s.runInteractiveLogin(job, adapter)

	return job, nil
}

// Job returns a previously started login job by id.
func (s *SessionService) Job(id string) (*LoginJob, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	return job, ok
}

func (s *SessionService) runInteractiveLogin(job *LoginJob, adapter platform.Adapter) {
	defer func() {
		s.mu.Lock()
		delete(s.activeLogins, job.Platform)
		s.mu.Unlock()
	}()

	// The login outlives the request that started it; it is bounded by the
	// surface wait timeout instead of a caller context.
	ctx := context.Background()

	surface, err := s.surfaces.Open(ctx, ports.SurfaceOptions{Headless: false, CleanState: true})
	if err != nil {
		job.fail(&LoginError{Kind: LoginSurfaceError, Detail: fmt.Sprintf("open surface: %v", err)})
		return
	}
	defer func() { _ = surface.Close() }()

	if err := surface.Navigate(ctx, adapter.AuthURL); err != nil {
		job.fail(&LoginError{Kind: LoginSurfaceError, Detail: fmt.Sprintf("navigate to auth page: %v", err)})
		return
	}

	s.logger.Info("waiting for interactive login",
		"platform", job.Platform, "job", job.ID, "timeout", s.cfg.LoginTimeout)

	if err := surface.WaitForLocation(ctx, adapter.AuthenticatedPattern, s.cfg.LoginTimeout); err != nil {
		if errors.Is(err, ports.ErrWaitTimeout) {
			job.fail(&LoginError{Kind: LoginTimedOut, Detail: "login not completed within " + s.cfg.LoginTimeout.String()})
		} else {
			job.fail(&LoginError{Kind: LoginSurfaceError, Detail: fmt.Sprintf("wait for authenticated location: %v", err)})
		}
		return
	}

	blob, err := surface.CaptureCredentials(ctx)
	if err != nil {
		job.fail(&LoginError{Kind: LoginSurfaceError, Detail: fmt.Sprintf("capture credentials: %v", err)})
		return
	}

	now := s.clock.Now()
	session := domain.Session{
		ID:              domain.SessionID(uuid.NewString()),
		Platform:        job.Platform,
		AccountName:     fmt.Sprintf("%s-%d", job.Platform, now.Unix()),
		CredentialRef:   fmt.Sprintf("%s/%s.json", job.Platform, uuid.NewString()),
		Status:          domain.SessionStatusActive,
		CreatedAt:       now,
		LastValidatedAt: now,
	}

	// Blob first, record second: a session record must never exist without
	// its credential material.
	if err := s.creds.Put(ctx, session.CredentialRef, blob); err != nil {
		job.fail(&LoginError{Kind: LoginSurfaceError, Detail: fmt.Sprintf("store credentials: %v", err)})
		return
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		if delErr := s.creds.Delete(ctx, session.CredentialRef); delErr != nil {
			s.logger.Warn("rollback credential blob failed",
				"ref", session.CredentialRef, "error", delErr)
		}
		job.fail(&LoginError{Kind: LoginSurfaceError, Detail: fmt.Sprintf("save session: %v", err)})
		return
	}

	s.logger.Info("session created", "platform", job.Platform, "session", session.ID)
	job.succeed(session)
}

// Validate runs an advisory liveness check against the stored credentials.
// The publish flow performs its own authoritative check; this one exists so
// operators can spot dead sessions before queueing content on them.
func (s *SessionService) Validate(ctx context.Context, id domain.SessionID) (domain.SessionStatus, error) {
	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return "", fmt.Errorf("get session by id: %w", err)
	}

	adapter, ok := s.adapters.Lookup(session.Platform)
	if !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrPlatformUnknown, session.Platform)
	}

	blob, err := s.creds.Get(ctx, session.CredentialRef)
	if err != nil {
		return "", fmt.Errorf("load credential blob: %w", err)
	}

	surface, err := s.surfaces.Open(ctx, ports.SurfaceOptions{Headless: s.cfg.HeadlessValidation, CleanState: true})
	if err != nil {
		return "", fmt.Errorf("open surface: %w", err)
	}
	defer func() { _ = surface.Close() }()

	if err := surface.InjectCredentials(ctx, blob); err != nil {
		return "", fmt.Errorf("inject credentials: %w", err)
	}
	if err := surface.Navigate(ctx, adapter.PublishURL); err != nil {
		return "", fmt.Errorf("navigate to publish page: %w", err)
	}

	location, err := surface.Location(ctx)
	if err != nil {
		return "", fmt.Errorf("read location: %w", err)
	}

	if platform.MatchLocation(adapter.UnauthenticatedPattern, location) {
		session.Status = domain.SessionStatusExpired
		if err := s.sessions.Save(ctx, session); err != nil {
			return "", fmt.Errorf("mark session expired: %w", err)
		}
		return domain.SessionStatusExpired, nil
	}

	session.Status = domain.SessionStatusActive
	session.LastValidatedAt = s.clock.Now()
	if err := s.sessions.Save(ctx, session); err != nil {
		return "", fmt.Errorf("update session validation time: %w", err)
	}
	return domain.SessionStatusActive, nil
}

// Revoke deletes the credential material and the session record. It is
// idempotent: revoking a missing session returns false, not an error.
func (s *SessionService) Revoke(ctx context.Context, id domain.SessionID) (bool, error) {
	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("get session by id: %w", err)
	}

	if err := s.creds.Delete(ctx, session.CredentialRef); err != nil {
		return false, fmt.Errorf("delete credential blob: %w", err)
	}

	deleted, err := s.sessions.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete session record: %w", err)
	}
	return deleted, nil
}

// List returns sessions ordered by recency. An empty platform returns all.
func (s *SessionService) List(ctx context.Context, p domain.Platform) ([]domain.Session, error) {
	sessions, err := s.sessions.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	filtered := sessions[:0]
	for _, session := range sessions {
		if p == "" || session.Platform == p {
			filtered = append(filtered, session)
		}
	}
	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})
	return filtered, nil
}

// Platforms lists the platforms with a registered adapter.
func (s *SessionService) Platforms() []domain.Platform {
	return s.adapters.Platforms()
}
