package jobs

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nitn/phd-admission/internal/pkg/filestorage"
	"github.com/nitn/phd-admission/internal/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTempSweeper_RemovesOnlyStaleFiles(t *testing.T) {
	temp, err := filestorage.NewTempDir(t.TempDir())
	require.NoError(t, err)

	stale, err := temp.Stage(strings.NewReader("old"), "old.pdf", 1024)
	require.NoError(t, err)
	fresh, err := temp.Stage(strings.NewReader("new"), "new.pdf", 1024)
	require.NoError(t, err)

	now := time.Now()
	require.NoError(t, os.Chtimes(stale, now.Add(-2*time.Hour), now.Add(-2*time.Hour)))

	sweeper := NewTempSweeper(temp, time.Hour)
	sweeper.now = func() time.Time { return now }

	removed, err := sweeper.Run()
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.NoFileExists(t, stale)
	assert.FileExists(t, fresh)
}

func TestTempSweeper_LogsOncePerSweep(t *testing.T) {
	var buf bytes.Buffer
	logger.Configure(logger.Config{Level: logger.InfoLevel, Output: &buf})
	t.Cleanup(func() { logger.Configure(logger.Config{Level: logger.InfoLevel, Pretty: true}) })

	temp, err := filestorage.NewTempDir(t.TempDir())
	require.NoError(t, err)
	stale, err := temp.Stage(strings.NewReader("old"), "old.pdf", 1024)
	require.NoError(t, err)
	now := time.Now()
	require.NoError(t, os.Chtimes(stale, now.Add(-2*time.Hour), now.Add(-2*time.Hour)))

	sweeper := NewTempSweeper(temp, time.Hour)
	removed, err := sweeper.Run()
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"), buf.String())
	assert.Contains(t, buf.String(), "Swept stale temp uploads")
}

func TestScheduler_RejectsBadSpec(t *testing.T) {
	s := NewScheduler()
	assert.Error(t, s.Add("broken", "every ten minutes", func() {}))
	assert.NoError(t, s.Add("ok", "@every 10m", func() {}))
}

func TestScheduler_RunsJobs(t *testing.T) {
	s := NewScheduler()
	ran := make(chan struct{}, 1)
	require.NoError(t, s.Add("tick", "@every 1s", func() {
		select {
		case ran <- struct{}{}:
		default:
		}
	}))

	s.Start()
	defer s.Stop()

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not run")
	}
}

func TestTempSweeper_EmptyDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "staging")
	temp, err := filestorage.NewTempDir(dir)
	require.NoError(t, err)

	removed, err := NewTempSweeper(temp, time.Hour).Run()
	require.NoError(t, err)
	assert.Zero(t, removed)
}
