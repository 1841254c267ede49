package cleanup

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanupRemovesOldTempFiles(t *testing.T) {
	dir := t.TempDir()

	oldFile := filepath.Join(dir, "media_stale.tmp")
	require.NoError(t, os.WriteFile(oldFile, []byte("stale"), 0o644))
	stale := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(oldFile, stale, stale))

	freshFile := filepath.Join(dir, "media_fresh.tmp")
	require.NoError(t, os.WriteFile(freshFile, []byte("fresh"), 0o644))

	svc := NewService(dir, time.Hour, time.Hour, nil, 0)
	svc.Start(context.Background())
	defer svc.Stop()

	_, err := os.Stat(oldFile)
	assert.True(t, os.IsNotExist(err), "stale temp file should be pruned on startup")

	_, err = os.Stat(freshFile)
	assert.NoError(t, err, "fresh temp file must survive")
}

func TestCleanupStopIsSafe(t *testing.T) {
	svc := NewService(t.TempDir(), time.Hour, time.Hour, nil, 0)

	// Stop before Start is a no-op
	svc.Stop()

	svc.Start(context.Background())
	svc.Stop()
}
