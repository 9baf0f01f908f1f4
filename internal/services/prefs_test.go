package services_test

import (
	"path/filepath"
	"testing"

	"github.com/okibram/chat-web-ui/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPrefs(t *testing.T) services.Prefs {
	t.Helper()
	prefs, err := services.NewPrefs(filepath.Join(t.TempDir(), "prefs.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, prefs.Close())
	})
	return prefs
}

func TestSidebarCollapsed(t *testing.T) {
	prefs := newTestPrefs(t)

	// Defaults to expanded.
	assert.False(t, prefs.SidebarCollapsed())

	require.NoError(t, prefs.SetSidebarCollapsed(true))
	assert.True(t, prefs.SidebarCollapsed())

	require.NoError(t, prefs.SetSidebarCollapsed(false))
	assert.False(t, prefs.SidebarCollapsed())
}

func TestLastSessionID(t *testing.T) {
	prefs := newTestPrefs(t)

	assert.Empty(t, prefs.LastSessionID())

	require.NoError(t, prefs.SetLastSessionID("s1"))
	assert.Equal(t, "s1", prefs.LastSessionID())
}

func TestPrefsSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.db")

	prefs, err := services.NewPrefs(path)
	require.NoError(t, err)
	require.NoError(t, prefs.SetSidebarCollapsed(true))
	require.NoError(t, prefs.SetLastSessionID("s42"))
	require.NoError(t, prefs.Close())

	prefs, err = services.NewPrefs(path)
	require.NoError(t, err)
	defer prefs.Close()

	assert.True(t, prefs.SidebarCollapsed())
	assert.Equal(t, "s42", prefs.LastSessionID())
}
