package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeCLI(t *testing.T, home string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", home)

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writeSessionsFixture(home string) error {
	configDir := filepath.Join(home, ".trendpress")
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return err
	}

	sessions := `version = 1

[[sessions]]
id = "sess-1"
platform = "xiaohongshu"
account_name = "xiaohongshu-1700000000"
credential_ref = "xiaohongshu/sess-1.json"
status = "active"
created_at = "2026-02-10T12:00:00Z"
last_validated_at = "2026-02-10T12:05:00Z"
`
	return os.WriteFile(filepath.Join(configDir, "sessions.toml"), []byte(sessions), 0o600)
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "dev")
}

func TestSessionListShowsStoredSessions(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, writeSessionsFixture(home))

	stdout, _, err := executeCLI(t, home, "session", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "sessions: 1")
	assert.Contains(t, stdout, "xiaohongshu-1700000000")
	assert.Contains(t, stdout, "id: sess-1")
}

func TestSessionListEmpty(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "session", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "sessions: 0")
}

func TestSessionListPlatformFilter(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, writeSessionsFixture(home))

	stdout, _, err := executeCLI(t, home, "session", "list", "--platform", "weibo")
	require.NoError(t, err)
	assert.Contains(t, stdout, "sessions: 0")
}

func TestSessionRevokeMissingSession(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "session", "revoke", "missing")
	require.NoError(t, err)
	assert.Contains(t, stdout, "not found")
}

func TestPublishRequiresFlags(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "publish")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--draft is required")

	_, _, err = executeCLI(t, t.TempDir(), "publish", "--draft", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--session is required")
}

func TestDraftGenerateRequiresTrendFlag(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "draft", "generate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--trend is required")
}

func TestTrendListEmpty(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "trend", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No trends stored")
}

func TestDraftListEmpty(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "draft", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No drafts stored")
}
