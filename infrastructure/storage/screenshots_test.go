package storage

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScreenshotPath(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shots")
	store, err := NewScreenshotStore(dir)
	require.NoError(t, err)
	store.(*screenshotStore).now = func() time.Time { return time.Date(2026, 10, 19, 8, 30, 0, 0, time.UTC) }

	path, err := store.Path("Login Failure!")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "login-failure-20261019-083000.png"), path)

	path, err = store.Path("???")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(path), "screenshot-"))
}
