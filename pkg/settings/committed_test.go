package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proxydesk/proxydesk-terminal/pkg/events"
	"github.com/proxydesk/proxydesk-terminal/pkg/files"
	"github.com/proxydesk/proxydesk-terminal/pkg/models"
)

func TestCommittedStorePersists(t *testing.T) {
	root := t.TempDir()
	bus := events.NewBus()

	store, err := OpenCommittedStore(root, bus, nil)
	require.NoError(t, err)
	assert.Equal(t, *models.DefaultSettings(), store.Settings())

	var published []models.Settings
	bus.OnSettings(func(s models.Settings) { published = append(published, s) })

	require.NoError(t, store.SetSetting(models.FieldGfwListURL, "https://example.com/list.txt"))
	require.Len(t, published, 1)
	assert.Equal(t, "https://example.com/list.txt", published[0].GfwListURL)

	reopened, err := OpenCommittedStore(root, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/list.txt", reopened.Settings().GfwListURL)
}

func TestCommittedStoreRejectsBadValue(t *testing.T) {
	store := NewMemoryCommittedStore(*models.DefaultSettings(), nil, nil)

	assert.Error(t, store.SetSetting(models.FieldLocalPort, "x"))
	assert.ErrorIs(t, store.SetSetting(models.FieldPac, true), ErrUnknownField)
	assert.Equal(t, 1080, store.Settings().LocalPort)
}

func TestCommittedStoreReplaceNormalizes(t *testing.T) {
	root := t.TempDir()
	store, err := OpenCommittedStore(root, nil, nil)
	require.NoError(t, err)

	replacement := *models.DefaultSettings()
	replacement.LoadBalance = models.LoadBalance{}
	require.NoError(t, store.Replace(replacement))

	loaded, err := files.ReadSettings(root)
	require.NoError(t, err)
	assert.Equal(t, models.StrategyPolling, loaded.LoadBalance.Strategy)
	assert.Equal(t, 3, loaded.LoadBalance.Count)
}

func TestCommittedStoreWriteFailureKeepsState(t *testing.T) {
	root := t.TempDir()
	store, err := OpenCommittedStore(root, nil, nil)
	require.NoError(t, err)

	// A directory where the settings file should be makes the write fail
	require.NoError(t, os.MkdirAll(filepath.Join(root, files.SettingsFile), 0755))

	assert.Error(t, store.SetSetting(models.FieldVerbose, true))
	assert.False(t, store.Settings().Verbose)
}
