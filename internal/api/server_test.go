package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trendpress/internal/application"
	"trendpress/internal/domain"
)

type fakeSessionAPI struct {
	beginFn    func(ctx context.Context, p domain.Platform) (*application.LoginJob, error)
	jobFn      func(id string) (*application.LoginJob, bool)
	validateFn func(ctx context.Context, id domain.SessionID) (domain.SessionStatus, error)
	revokeFn   func(ctx context.Context, id domain.SessionID) (bool, error)
	listFn     func(ctx context.Context, p domain.Platform) ([]domain.Session, error)
}

func (f *fakeSessionAPI) BeginInteractiveLogin(ctx context.Context, p domain.Platform) (*application.LoginJob, error) {
	return f.beginFn(ctx, p)
}

func (f *fakeSessionAPI) Job(id string) (*application.LoginJob, bool) {
	return f.jobFn(id)
}

func (f *fakeSessionAPI) Validate(ctx context.Context, id domain.SessionID) (domain.SessionStatus, error) {
	return f.validateFn(ctx, id)
}

func (f *fakeSessionAPI) Revoke(ctx context.Context, id domain.SessionID) (bool, error) {
	return f.revokeFn(ctx, id)
}

func (f *fakeSessionAPI) List(ctx context.Context, p domain.Platform) ([]domain.Session, error) {
	return f.listFn(ctx, p)
}

func (f *fakeSessionAPI) Platforms() []domain.Platform {
	return []domain.Platform{domain.PlatformXiaohongshu}
}

type fakeContentAPI struct {
	scrapeFn     func(ctx context.Context) (int, error)
	listTrendsFn func(ctx context.Context, page, size int) (application.TrendPage, error)
	generateFn   func(ctx context.Context, trendID int64) (domain.Draft, error)
	listDraftsFn func(ctx context.Context) ([]domain.Draft, error)
	updateFn     func(ctx context.Context, id int64, title, body string) (domain.Draft, error)
	publishFn    func(ctx context.Context, draftID int64, sessionID domain.SessionID) (domain.PublishOutcome, error)
	logFn        func(ctx context.Context) ([]domain.PublishRecord, error)
}

func (f *fakeContentAPI) ScrapeTrends(ctx context.Context) (int, error) {
	return f.scrapeFn(ctx)
}

func (f *fakeContentAPI) ListTrends(ctx context.Context, page, size int) (application.TrendPage, error) {
	return f.listTrendsFn(ctx, page, size)
}

func (f *fakeContentAPI) GenerateDraft(ctx context.Context, trendID int64) (domain.Draft, error) {
	return f.generateFn(ctx, trendID)
}

func (f *fakeContentAPI) ListDrafts(ctx context.Context) ([]domain.Draft, error) {
	return f.listDraftsFn(ctx)
}

func (f *fakeContentAPI) UpdateDraft(ctx context.Context, id int64, title, body string) (domain.Draft, error) {
	return f.updateFn(ctx, id, title, body)
}

func (f *fakeContentAPI) PublishDraft(ctx context.Context, draftID int64, sessionID domain.SessionID) (domain.PublishOutcome, error) {
	return f.publishFn(ctx, draftID, sessionID)
}

func (f *fakeContentAPI) PublishLog(ctx context.Context) ([]domain.PublishRecord, error) {
	return f.logFn(ctx)
}

func newTestServer(t *testing.T, sessions SessionAPI, content ContentAPI) *httptest.Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	server := NewServer(ServerConfig{}, sessions, content, logger)
	httpServer := httptest.NewServer(server.routes())
	t.Cleanup(httpServer.Close)
	return httpServer
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeResponse(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}

func TestHealthz(t *testing.T) {
	server := newTestServer(t, &fakeSessionAPI{}, &fakeContentAPI{})

	resp, err := http.Get(server.URL + "/healthz")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestBeginLoginAccepted(t *testing.T) {
	sessions := &fakeSessionAPI{
		beginFn: func(_ context.Context, p domain.Platform) (*application.LoginJob, error) {
			assert.Equal(t, domain.PlatformXiaohongshu, p)
			return &application.LoginJob{ID: "job-1", Platform: p}, nil
		},
	}
	server := newTestServer(t, sessions, &fakeContentAPI{})

	resp := doJSON(t, http.MethodPost, server.URL+"/api/sessions/login", map[string]string{"platform": "xiaohongshu"})
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	var body loginJobResponse
	decodeResponse(t, resp, &body)
	assert.Equal(t, "job-1", body.JobID)
	assert.Equal(t, "xiaohongshu", body.Platform)
}

func TestBeginLoginRejectsUnknownPlatform(t *testing.T) {
	sessions := &fakeSessionAPI{
		beginFn: func(_ context.Context, p domain.Platform) (*application.LoginJob, error) {
			return nil, domain.ErrPlatformUnknown
		},
	}
	server := newTestServer(t, sessions, &fakeContentAPI{})

	resp := doJSON(t, http.MethodPost, server.URL+"/api/sessions/login", map[string]string{"platform": "myspace"})
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBeginLoginConflictWhenInProgress(t *testing.T) {
	sessions := &fakeSessionAPI{
		beginFn: func(_ context.Context, _ domain.Platform) (*application.LoginJob, error) {
			return nil, domain.ErrLoginInProgress
		},
	}
	server := newTestServer(t, sessions, &fakeContentAPI{})

	resp := doJSON(t, http.MethodPost, server.URL+"/api/sessions/login", map[string]string{"platform": "xiaohongshu"})
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestLoginJobNotFound(t *testing.T) {
	sessions := &fakeSessionAPI{
		jobFn: func(_ string) (*application.LoginJob, bool) { return nil, false },
	}
	server := newTestServer(t, sessions, &fakeContentAPI{})

	resp, err := http.Get(server.URL + "/api/sessions/login/missing")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListSessionsPassesPlatformFilter(t *testing.T) {
	sessions := &fakeSessionAPI{
		listFn: func(_ context.Context, p domain.Platform) ([]domain.Session, error) {
			assert.Equal(t, domain.PlatformXiaohongshu, p)
			return []domain.Session{{ID: "sess-1", Platform: p}}, nil
		},
	}
	server := newTestServer(t, sessions, &fakeContentAPI{})

	resp, err := http.Get(server.URL + "/api/sessions/?platform=xiaohongshu")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Sessions []domain.Session `json:"sessions"`
	}
	decodeResponse(t, resp, &body)
	require.Len(t, body.Sessions, 1)
	assert.Equal(t, domain.SessionID("sess-1"), body.Sessions[0].ID)
}

func TestValidateSessionNotFound(t *testing.T) {
	sessions := &fakeSessionAPI{
		validateFn: func(_ context.Context, _ domain.SessionID) (domain.SessionStatus, error) {
			return "", domain.ErrSessionNotFound
		},
	}
	server := newTestServer(t, sessions, &fakeContentAPI{})

	resp := doJSON(t, http.MethodPost, server.URL+"/api/sessions/missing/validate", nil)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRevokeSession(t *testing.T) {
	sessions := &fakeSessionAPI{
		revokeFn: func(_ context.Context, id domain.SessionID) (bool, error) {
			return id == "sess-1", nil
		},
	}
	server := newTestServer(t, sessions, &fakeContentAPI{})

	resp := doJSON(t, http.MethodDelete, server.URL+"/api/sessions/sess-1", nil)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, http.MethodDelete, server.URL+"/api/sessions/missing", nil)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestScrapeTrends(t *testing.T) {
	content := &fakeContentAPI{
		scrapeFn: func(_ context.Context) (int, error) { return 7, nil },
	}
	server := newTestServer(t, &fakeSessionAPI{}, content)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/trends/scrape", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]int
	decodeResponse(t, resp, &body)
	assert.Equal(t, 7, body["inserted"])
}

func TestListTrendsPagination(t *testing.T) {
	content := &fakeContentAPI{
		listTrendsFn: func(_ context.Context, page, size int) (application.TrendPage, error) {
			assert.Equal(t, 3, page)
			assert.Equal(t, 5, size)
			return application.TrendPage{Page: page, Size: size}, nil
		},
	}
	server := newTestServer(t, &fakeSessionAPI{}, content)

	resp, err := http.Get(server.URL + "/api/trends/?page=3&size=5")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGenerateDraft(t *testing.T) {
	content := &fakeContentAPI{
		generateFn: func(_ context.Context, trendID int64) (domain.Draft, error) {
			assert.Equal(t, int64(9), trendID)
			return domain.Draft{ID: 1, TrendID: trendID, Title: "标题"}, nil
		},
	}
	server := newTestServer(t, &fakeSessionAPI{}, content)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/drafts/", map[string]int64{"trend_id": 9})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var draft domain.Draft
	decodeResponse(t, resp, &draft)
	assert.Equal(t, int64(1), draft.ID)
}

func TestGenerateDraftMissingTrend(t *testing.T) {
	content := &fakeContentAPI{
		generateFn: func(_ context.Context, _ int64) (domain.Draft, error) {
			return domain.Draft{}, domain.ErrTrendNotFound
		},
	}
	server := newTestServer(t, &fakeSessionAPI{}, content)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/drafts/", map[string]int64{"trend_id": 404})
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPublishDraftRequiresSession(t *testing.T) {
	server := newTestServer(t, &fakeSessionAPI{}, &fakeContentAPI{})

	resp := doJSON(t, http.MethodPost, server.URL+"/api/drafts/5/publish", map[string]string{})
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPublishDraftReturnsOutcome(t *testing.T) {
	content := &fakeContentAPI{
		publishFn: func(_ context.Context, draftID int64, sessionID domain.SessionID) (domain.PublishOutcome, error) {
			assert.Equal(t, int64(5), draftID)
			assert.Equal(t, domain.SessionID("sess-1"), sessionID)
			return domain.PublishOutcome{Status: domain.OutcomeIndeterminate, Diagnostic: "artifacts/diag.png"}, nil
		},
	}
	server := newTestServer(t, &fakeSessionAPI{}, content)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/drafts/5/publish", map[string]string{"session_id": "sess-1"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var outcome domain.PublishOutcome
	decodeResponse(t, resp, &outcome)
	assert.Equal(t, domain.OutcomeIndeterminate, outcome.Status)
}

func TestPublishDraftInvalidID(t *testing.T) {
	server := newTestServer(t, &fakeSessionAPI{}, &fakeContentAPI{})

	resp := doJSON(t, http.MethodPost, server.URL+"/api/drafts/abc/publish", map[string]string{"session_id": "sess-1"})
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPublishLog(t *testing.T) {
	content := &fakeContentAPI{
		logFn: func(_ context.Context) ([]domain.PublishRecord, error) {
			return []domain.PublishRecord{{ID: 1, SessionID: "sess-1", Status: domain.OutcomeSuccess}}, nil
		},
	}
	server := newTestServer(t, &fakeSessionAPI{}, content)

	resp, err := http.Get(server.URL + "/api/publish-log")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Records []domain.PublishRecord `json:"records"`
	}
	decodeResponse(t, resp, &body)
	require.Len(t, body.Records, 1)
	assert.Equal(t, domain.OutcomeSuccess, body.Records[0].Status)
}

func TestPlatforms(t *testing.T) {
	server := newTestServer(t, &fakeSessionAPI{}, &fakeContentAPI{})

	resp, err := http.Get(server.URL + "/api/platforms")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Platforms []domain.Platform `json:"platforms"`
	}
	decodeResponse(t, resp, &body)
	assert.Equal(t, []domain.Platform{domain.PlatformXiaohongshu}, body.Platforms)
}
