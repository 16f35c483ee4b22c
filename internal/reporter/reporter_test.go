package reporter

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/actionsum/recentapps/internal/config"
	"github.com/actionsum/recentapps/internal/database"
	"github.com/actionsum/recentapps/internal/models"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Daemon.PIDFile = filepath.Join(t.TempDir(), "recorder.pid")
	cfg.Database.Path = filepath.Join(t.TempDir(), "focus.db")
	return cfg
}

func TestStatusWithoutDatabase(t *testing.T) {
	r := New(testConfig(t), nil, "")

	s, err := r.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "none", s.Strategy)
	assert.False(t, s.RecorderRunning)
	assert.Nil(t, s.LatestEvent)

	assert.Contains(t, r.FormatStatusText(s), "Recorder: not running")
}

func TestStatusWithEvents(t *testing.T) {
	cfg := testConfig(t)
	db, err := database.Connect(cfg.Database.Path)
	require.NoError(t, err)
	require.NoError(t, db.Initialize())
	defer db.Close()

	repo := database.NewRepository(db)
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, &models.FocusEvent{
		Timestamp: now.Add(-5 * time.Minute), AppName: "kitty", WindowTitle: "~", DisplayServer: "x11",
	}))
	require.NoError(t, repo.CreateErrorLog(ctx, &models.ErrorLog{
		Timestamp: now.Add(-2 * time.Hour), Source: "focus", ErrorMsg: "no active window found",
	}))

	r := New(cfg, repo, "event-log")
	r.now = func() time.Time { return now }

	s, err := r.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), s.EventCount)
	require.NotNil(t, s.LatestEvent)
	assert.Equal(t, "kitty", s.LatestEvent.App)
	assert.Equal(t, "5m ago", s.LatestEvent.Age)
	require.NotNil(t, s.LatestError)
	assert.Equal(t, "2h ago", s.LatestError.Age)

	text := r.FormatStatusText(s)
	assert.Contains(t, text, "Strategy: event-log")
	assert.Contains(t, text, "App: kitty")

	out, err := r.FormatStatusJSON(s)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "event-log", decoded["strategy"])
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
