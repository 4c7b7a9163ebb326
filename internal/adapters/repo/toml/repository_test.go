package toml

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trendpress/internal/domain"
)

func newTestRepository(t *testing.T) (*Repository, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "sessions.toml")
	cfg := viper.New()
	cfg.Set("sessions.path", path)

	repo, err := NewRepository(cfg)
	require.NoError(t, err)
	return repo, path
}

func testSession(id string) domain.Session {
	return domain.Session{
		ID:              domain.SessionID(id),
		Platform:        domain.PlatformXiaohongshu,
		AccountName:     "xiaohongshu-1700000000",
		CredentialRef:   "xiaohongshu/" + id + ".json",
		Status:          domain.SessionStatusActive,
		CreatedAt:       time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC),
		LastValidatedAt: time.Date(2026, 2, 10, 12, 5, 0, 0, time.UTC),
	}
}

func TestRepositorySaveAndGetRoundtrip(t *testing.T) {
	repo, _ := newTestRepository(t)
	session := testSession("sess-1")

	require.NoError(t, repo.Save(context.Background(), session))

	loaded, err := repo.GetByID(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, session, loaded)
}

func TestRepositorySaveUpdatesExistingEntry(t *testing.T) {
	repo, _ := newTestRepository(t)
	session := testSession("sess-1")
	require.NoError(t, repo.Save(context.Background(), session))

	session.Status = domain.SessionStatusExpired
	require.NoError(t, repo.Save(context.Background(), session))

	sessions, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, domain.SessionStatusExpired, sessions[0].Status)
}

func TestRepositoryGetMissingSession(t *testing.T) {
	repo, _ := newTestRepository(t)

	_, err := repo.GetByID(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestRepositoryListEmptyFile(t *testing.T) {
	repo, _ := newTestRepository(t)

	sessions, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestRepositoryDelete(t *testing.T) {
	repo, _ := newTestRepository(t)
	require.NoError(t, repo.Save(context.Background(), testSession("sess-1")))
	require.NoError(t, repo.Save(context.Background(), testSession("sess-2")))

	deleted, err := repo.Delete(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.True(t, deleted)

	sessions, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, domain.SessionID("sess-2"), sessions[0].ID)

	deleted, err = repo.Delete(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestRepositoryWriteSetsRestrictiveMode(t *testing.T) {
	repo, path := newTestRepository(t)
	require.NoError(t, repo.Save(context.Background(), testSession("sess-1")))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestRepositoryRejectsNewerSchemaVersion(t *testing.T) {
	repo, path := newTestRepository(t)
	require.NoError(t, os.WriteFile(path, []byte("version = 99\n"), 0o600))

	_, err := repo.List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported sessions schema version")
}

func TestRepositoryCancelledContext(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, repo.Save(ctx, testSession("sess-1")), context.Canceled)
	_, err := repo.GetByID(ctx, "sess-1")
	require.ErrorIs(t, err, context.Canceled)
}
