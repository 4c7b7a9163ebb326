package application

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"trendpress/internal/domain"
	"trendpress/internal/platform"
	"trendpress/internal/ports"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testRegistry is the production xiaohongshu adapter with the settle and
// confirmation waits shrunk so tests stay fast.
func testRegistry() *platform.Registry {
	adapter := platform.Xiaohongshu()
	adapter.MediaSettle = 0
	adapter.ConfirmTimeout = 50 * time.Millisecond
	return platform.NewRegistry(adapter)
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[domain.SessionID]domain.Session
	saveErr  error
}

func newFakeSessionRepo(sessions ...domain.Session) *fakeSessionRepo {
	repo := &fakeSessionRepo{sessions: make(map[domain.SessionID]domain.Session)}
	for _, session := range sessions {
		repo.sessions[session.ID] = session
	}
	return repo
}

func (r *fakeSessionRepo) GetByID(_ context.Context, id domain.SessionID) (domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	return session, nil
}

func (r *fakeSessionRepo) List(_ context.Context) ([]domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sessions := make([]domain.Session, 0, len(r.sessions))
	for _, session := range r.sessions {
		sessions = append(sessions, session)
	}
	return sessions, nil
}

func (r *fakeSessionRepo) Save(_ context.Context, session domain.Session) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID] = session
	return nil
}

func (r *fakeSessionRepo) Delete(_ context.Context, id domain.SessionID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return false, nil
	}
	delete(r.sessions, id)
	return true, nil
}

func (r *fakeSessionRepo) get(id domain.SessionID) (domain.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	return session, ok
}

func (r *fakeSessionRepo) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

type fakeCredStore struct {
	mu     sync.Mutex
	blobs  map[string][]byte
	putErr error
	delErr error
}

func newFakeCredStore() *fakeCredStore {
	return &fakeCredStore{blobs: make(map[string][]byte)}
}

func (s *fakeCredStore) Get(_ context.Context, ref string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	blob, ok := s.blobs[ref]
	if !ok {
		return nil, domain.ErrCredentialNotFound
	}
	return blob, nil
}

func (s *fakeCredStore) Put(_ context.Context, ref string, blob []byte) error {
	if s.putErr != nil {
		return s.putErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[ref] = blob
	return nil
}

func (s *fakeCredStore) Delete(_ context.Context, ref string) error {
	if s.delErr != nil {
		return s.delErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, ref)
	return nil
}

func (s *fakeCredStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.blobs)
}

type fakeControl struct {
	mu     sync.Mutex
	fills  []string
	files  [][]string
	clicks int

	fillErr  error
	filesErr error
	clickErr error
}

func (c *fakeControl) Fill(_ context.Context, text string) error {
	if c.fillErr != nil {
		return c.fillErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fills = append(c.fills, text)
	return nil
}

func (c *fakeControl) SetFiles(_ context.Context, paths []string) error {
	if c.filesErr != nil {
		return c.filesErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.files = append(c.files, paths)
	return nil
}

func (c *fakeControl) Click(_ context.Context) error {
	if c.clickErr != nil {
		return c.clickErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clicks++
	return nil
}

// fakeSurface scripts a browser surface: the test sets the location, the
// wait outcomes and the controls the page exposes, then inspects what the
// service did with them.
type fakeSurface struct {
	mu          sync.Mutex
	location    string
	navigations []string
	injected    [][]byte

	captureBlob []byte
	captureErr  error

	waitLocationErr  error
	waitLocationGate chan struct{}
	waitTextErr      error
	waitTextHook     func()

	controls map[string]*fakeControl

	diagnostic string
	diagErr    error

	closed bool
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{
		captureBlob: []byte(`[]`),
		controls:    make(map[string]*fakeControl),
		diagnostic:  "artifacts/diag.png",
	}
}

func (s *fakeSurface) Navigate(_ context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.navigations = append(s.navigations, url)
	return nil
}

func (s *fakeSurface) Location(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.location, nil
}

func (s *fakeSurface) InjectCredentials(_ context.Context, blob []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.injected = append(s.injected, blob)
	return nil
}

func (s *fakeSurface) CaptureCredentials(_ context.Context) ([]byte, error) {
	if s.captureErr != nil {
		return nil, s.captureErr
	}
	return s.captureBlob, nil
}

func (s *fakeSurface) WaitForLocation(_ context.Context, _ string, _ time.Duration) error {
	if s.waitLocationGate != nil {
		<-s.waitLocationGate
	}
	return s.waitLocationErr
}

func (s *fakeSurface) WaitForText(_ context.Context, _ string, _ time.Duration) error {
	if s.waitTextHook != nil {
		s.waitTextHook()
	}
	return s.waitTextErr
}

func (s *fakeSurface) Locate(_ context.Context, selectors ...string) (ports.Control, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, selector := range selectors {
		if control, ok := s.controls[selector]; ok {
			return control, nil
		}
	}
	return nil, ports.ErrControlNotFound
}

func (s *fakeSurface) CaptureDiagnostic(_ context.Context) (string, error) {
	if s.diagErr != nil {
		return "", s.diagErr
	}
	return s.diagnostic, nil
}

func (s *fakeSurface) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeSurface) injectedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.injected)
}

type fakeSurfaceFactory struct {
	mu      sync.Mutex
	openErr error
	opened  []ports.SurfaceOptions
	// next returns the surface for each Open call. When nil, the shared
	// surface is handed out every time.
	next    func() *fakeSurface
	surface *fakeSurface
}

func newFakeSurfaceFactory(surface *fakeSurface) *fakeSurfaceFactory {
	return &fakeSurfaceFactory{surface: surface}
}

func (f *fakeSurfaceFactory) Open(_ context.Context, opts ports.SurfaceOptions) (ports.Surface, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	f.mu.Lock()
	f.opened = append(f.opened, opts)
	f.mu.Unlock()
	if f.next != nil {
		return f.next(), nil
	}
	return f.surface, nil
}

func (f *fakeSurfaceFactory) openedOptions() []ports.SurfaceOptions {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ports.SurfaceOptions(nil), f.opened...)
}

type fakeTrendRepo struct {
	mu     sync.Mutex
	nextID int64
	trends map[int64]domain.Trend
	byURL  map[string]bool
}

func newFakeTrendRepo(trends ...domain.Trend) *fakeTrendRepo {
	repo := &fakeTrendRepo{trends: make(map[int64]domain.Trend), byURL: make(map[string]bool)}
	for _, trend := range trends {
		repo.trends[trend.ID] = trend
		repo.byURL[trend.URL] = true
		if trend.ID > repo.nextID {
			repo.nextID = trend.ID
		}
	}
	return repo
}

func (r *fakeTrendRepo) Insert(_ context.Context, trend domain.Trend) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.byURL[trend.URL] {
		return false, nil
	}
	r.nextID++
	trend.ID = r.nextID
	r.trends[trend.ID] = trend
	r.byURL[trend.URL] = true
	return true, nil
}

func (r *fakeTrendRepo) GetByID(_ context.Context, id int64) (domain.Trend, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	trend, ok := r.trends[id]
	if !ok {
		return domain.Trend{}, domain.ErrTrendNotFound
	}
	return trend, nil
}

func (r *fakeTrendRepo) List(_ context.Context, offset, limit int) ([]domain.Trend, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	trends := make([]domain.Trend, 0, len(r.trends))
	for _, trend := range r.trends {
		trends = append(trends, trend)
	}
	if offset >= len(trends) {
		return nil, nil
	}
	end := offset + limit
	if end > len(trends) {
		end = len(trends)
	}
	return trends[offset:end], nil
}

func (r *fakeTrendRepo) Count(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.trends), nil
}

func (r *fakeTrendRepo) MarkUsed(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	trend, ok := r.trends[id]
	if !ok {
		return domain.ErrTrendNotFound
	}
	trend.Used = true
	r.trends[id] = trend
	return nil
}

type fakeDraftRepo struct {
	mu     sync.Mutex
	nextID int64
	drafts map[int64]domain.Draft
}

func newFakeDraftRepo(drafts ...domain.Draft) *fakeDraftRepo {
	repo := &fakeDraftRepo{drafts: make(map[int64]domain.Draft)}
	for _, draft := range drafts {
		repo.drafts[draft.ID] = draft
		if draft.ID > repo.nextID {
			repo.nextID = draft.ID
		}
	}
	return repo
}

func (r *fakeDraftRepo) Insert(_ context.Context, draft domain.Draft) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	draft.ID = r.nextID
	r.drafts[draft.ID] = draft
	return draft.ID, nil
}

func (r *fakeDraftRepo) GetByID(_ context.Context, id int64) (domain.Draft, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	draft, ok := r.drafts[id]
	if !ok {
		return domain.Draft{}, domain.ErrDraftNotFound
	}
	return draft, nil
}

func (r *fakeDraftRepo) List(_ context.Context) ([]domain.Draft, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	drafts := make([]domain.Draft, 0, len(r.drafts))
	for _, draft := range r.drafts {
		drafts = append(drafts, draft)
	}
	return drafts, nil
}

func (r *fakeDraftRepo) Update(_ context.Context, draft domain.Draft) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.drafts[draft.ID]; !ok {
		return domain.ErrDraftNotFound
	}
	r.drafts[draft.ID] = draft
	return nil
}

type fakePublishLog struct {
	mu      sync.Mutex
	records []domain.PublishRecord
	appErr  error
}

func (l *fakePublishLog) Append(_ context.Context, record domain.PublishRecord) error {
	if l.appErr != nil {
		return l.appErr
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, record)
	return nil
}

func (l *fakePublishLog) List(_ context.Context) ([]domain.PublishRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]domain.PublishRecord(nil), l.records...), nil
}

type fakeSource struct {
	name   string
	trends []domain.Trend
	err    error
}

func (s *fakeSource) Name() string {
	return s.name
}

func (s *fakeSource) Fetch(_ context.Context) ([]domain.Trend, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.trends, nil
}

type fakeGenerator struct {
	post ports.GeneratedPost
	err  error
}

func (g *fakeGenerator) Generate(_ context.Context, _ domain.Trend) (ports.GeneratedPost, error) {
	if g.err != nil {
		return ports.GeneratedPost{}, g.err
	}
	return g.post, nil
}

type fakePublisher struct {
	mu       sync.Mutex
	outcome  domain.PublishOutcome
	err      error
	requests []domain.PublishRequest
}

func (p *fakePublisher) Publish(_ context.Context, req domain.PublishRequest) (domain.PublishOutcome, error) {
	p.mu.Lock()
	p.requests = append(p.requests, req)
	p.mu.Unlock()
	if p.err != nil {
		return domain.PublishOutcome{}, p.err
	}
	return p.outcome, nil
}
