package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"trendpress/internal/domain"
	"trendpress/internal/platform"
	"trendpress/internal/ports"
)

// Publisher drives one publish attempt to a classified terminal outcome.
type Publisher interface {
	Publish(ctx context.Context, req domain.PublishRequest) (domain.PublishOutcome, error)
}

type PublishServiceConfig struct {
	// Headless hides the publish browser. Headed runs let an operator
	// clear captchas during the confirmation wait.
	Headless bool
}

// PublishService executes the publish state machine:
//
//	SessionChecked -> MediaStaged -> TitleSet -> BodySet -> Submitted -> Confirmed
//
// Only the session check is fatal. Every later step is best-effort: the
// terminal confirmation signal is the sole success criterion, so a missing
// control is logged and skipped rather than aborting the attempt.
type PublishService struct {
	sessions ports.SessionRepository
	creds    ports.CredentialStore
	surfaces ports.SurfaceFactory
	adapters *platform.Registry
	clock    ports.Clock
	logger   *slog.Logger
	cfg      PublishServiceConfig

	lockMu sync.Mutex
	locks  map[domain.SessionID]*sync.Mutex
}

var _ Publisher = (*PublishService)(nil)

func NewPublishService(
	sessions ports.SessionRepository,
	creds ports.CredentialStore,
	surfaces ports.SurfaceFactory,
	adapters *platform.Registry,
	clock ports.Clock,
	logger *slog.Logger,
	cfg PublishServiceConfig,
) *PublishService {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PublishService{
		sessions: sessions,
		creds:    creds,
		surfaces: surfaces,
		adapters: adapters,
		clock:    clock,
		logger:   logger.With("component", "publish"),
		cfg:      cfg,
		locks:    make(map[domain.SessionID]*sync.Mutex),
	}
}

// Publish runs one attempt against the session, serialized per session id:
// two attempts on the same session (same cookie jar) never overlap.
func (s *PublishService) Publish(ctx context.Context, req domain.PublishRequest) (domain.PublishOutcome, error) {
	mu := s.lockForSession(req.SessionID)
	mu.Lock()
	defer mu.Unlock()

	return s.attempt(ctx, req)
}

func (s *PublishService) lockForSession(id domain.SessionID) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()

	if mu, ok := s.locks[id]; ok {
		return mu
	}
	mu := &sync.Mutex{}
	s.locks[id] = mu
	return mu
}

func (s *PublishService) attempt(ctx context.Context, req domain.PublishRequest) (domain.PublishOutcome, error) {
	session, err := s.sessions.GetByID(ctx, req.SessionID)
	if err != nil {
		return domain.PublishOutcome{}, fmt.Errorf("get session by id: %w", err)
	}

	adapter, ok := s.adapters.Lookup(session.Platform)
	if !ok {
		return domain.PublishOutcome{}, fmt.Errorf("%w: %q", domain.ErrPlatformUnknown, session.Platform)
	}

	blob, err := s.creds.Get(ctx, session.CredentialRef)
	if err != nil {
		return domain.PublishOutcome{}, fmt.Errorf("load credential blob: %w", err)
	}

	surface, err := s.surfaces.Open(ctx, ports.SurfaceOptions{Headless: s.cfg.Headless})
	if err != nil {
		return domain.PublishOutcome{}, fmt.Errorf("open surface: %w", err)
	}
	defer func() { _ = surface.Close() }()

	// SessionChecked. The one fatal step: publishing with a dead session
	// would make every later step meaningless.
	if err := surface.InjectCredentials(ctx, blob); err != nil {
		return domain.PublishOutcome{}, fmt.Errorf("inject credentials: %w", err)
	}
	if err := surface.Navigate(ctx, adapter.PublishURL); err != nil {
		return domain.PublishOutcome{}, fmt.Errorf("navigate to publish page: %w", err)
	}
	location, err := surface.Location(ctx)
	if err != nil {
		return domain.PublishOutcome{}, fmt.Errorf("read location: %w", err)
	}
	if platform.MatchLocation(adapter.UnauthenticatedPattern, location) {
		session.Status = domain.SessionStatusExpired
		if saveErr := s.sessions.Save(ctx, session); saveErr != nil {
			s.logger.Warn("mark session expired failed", "session", session.ID, "error", saveErr)
		}
		return domain.PublishOutcome{
			Status:      domain.OutcomeFailed,
			ErrorDetail: domain.ErrSessionExpired.Error(),
		}, nil
	}

	log := s.logger.With("session", session.ID, "platform", session.Platform)
	var skipped []string
	warn := func(step string, err error) {
		skipped = append(skipped, step)
		log.Warn("publish step skipped", "step", step, "error", err)
	}

	// MediaStaged.
	if len(req.Content.Media) > 0 {
		if control, err := surface.Locate(ctx, adapter.UploadLocators...); err != nil {
			warn("stage media", err)
		} else if err := control.SetFiles(ctx, mediaPaths(req.Content.Media)); err != nil {
			warn("stage media", err)
		} else {
			settle(ctx, adapter.MediaSettle)
		}
	}

	// TitleSet.
	if control, err := surface.Locate(ctx, adapter.TitleLocators...); err != nil {
		warn("set title", err)
	} else if err := control.Fill(ctx, req.Content.Title); err != nil {
		warn("set title", err)
	}

	// BodySet. Tags ride along as a trailing hashtag block.
	body := req.Content.Body
	if len(req.Content.Tags) > 0 {
		body += "\n\n" + strings.Join(req.Content.Tags, " ")
	}
	if control, err := surface.Locate(ctx, adapter.BodyLocators...); err != nil {
		warn("set body", err)
	} else if err := control.Fill(ctx, body); err != nil {
		warn("set body", err)
	}

	// Submitted. Even a failed click may have triggered a server-side
	// submission through earlier UI state, so the confirmation wait still
	// runs.
	if control, err := surface.Locate(ctx, adapter.SubmitLocators...); err != nil {
		warn("submit", err)
	} else if err := control.Click(ctx); err != nil {
		warn("submit", err)
	}

	// Confirmed.
	if err := surface.WaitForText(ctx, adapter.SuccessText, adapter.ConfirmTimeout); err != nil {
		if !errors.Is(err, ports.ErrWaitTimeout) {
			log.Warn("confirmation wait failed", "error", err)
		}
		diagnostic, diagErr := surface.CaptureDiagnostic(ctx)
		if diagErr != nil {
			log.Warn("diagnostic capture failed", "error", diagErr)
		}
		return domain.PublishOutcome{
			Status:      domain.OutcomeIndeterminate,
			Diagnostic:  diagnostic,
			ErrorDetail: confirmationDetail(skipped),
		}, nil
	}

	log.Info("publish confirmed", "skipped_steps", len(skipped))
	return domain.PublishOutcome{Status: domain.OutcomeSuccess}, nil
}

func confirmationDetail(skipped []string) string {
	detail := "confirmation signal not observed before timeout"
	if len(skipped) > 0 {
		detail += "; skipped steps: " + strings.Join(skipped, ", ")
	}
	return detail
}

func mediaPaths(refs []domain.MediaRef) []string {
	paths := make([]string, 0, len(refs))
	for _, ref := range refs {
		paths = append(paths, string(ref))
	}
	return paths
}

func settle(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
