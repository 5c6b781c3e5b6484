package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGetAbsentKey(t *testing.T) {
	s := openMemory(t)

	value, ok, err := s.Get(KeyDarkMode)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, value)
}

func TestSetThenGet(t *testing.T) {
	s := openMemory(t)

	require.NoError(t, s.Set(KeyAutoTheme, True))
	value, ok, err := s.Get(KeyAutoTheme)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "true", value)

	require.NoError(t, s.Set(KeyAutoTheme, False))
	value, _, err = s.Get(KeyAutoTheme)
	require.NoError(t, err)
	assert.Equal(t, "false", value)
}

func TestDelete(t *testing.T) {
	s := openMemory(t)

	require.NoError(t, s.Set(KeyDarkMode, True))
	require.NoError(t, s.Delete(KeyDarkMode))
	_, ok, err := s.Get(KeyDarkMode)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, s.Delete("never-set"))
}

func TestPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(Options{Path: dir})
	require.NoError(t, err)
	require.NoError(t, s.Set(KeyDarkMode, True))
	require.NoError(t, s.Close())

	reopened, err := Open(Options{Path: dir})
	require.NoError(t, err)
	defer reopened.Close()

	value, ok, err := reopened.Get(KeyDarkMode)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, True, value)
}

func TestClosedStore(t *testing.T) {
	s, err := Open(Options{InMemory: true})
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, _, err = s.Get(KeyDarkMode)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, s.Set(KeyDarkMode, True), ErrClosed)
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open(Options{})
	assert.Error(t, err)
}

func TestFormatBool(t *testing.T) {
	assert.Equal(t, "true", FormatBool(true))
	assert.Equal(t, "false", FormatBool(false))
}
