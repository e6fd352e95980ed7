package gazetteer

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileLock_ExcludesSecondHolder(t *testing.T) {
	store := filepath.Join(t.TempDir(), "data", "gazetteer.db")
	first := NewFileLock(store)
	second := NewFileLock(store)

	require.NoError(t, first.Lock())
	defer first.Unlock()
	assert.True(t, first.IsLocked())
	assert.Equal(t, store+".lock", first.Path())

	acquired, err := second.TryLock()
	require.NoError(t, err)
	assert.False(t, acquired)

	require.NoError(t, first.Unlock())

	acquired, err = second.TryLock()
	require.NoError(t, err)
	assert.True(t, acquired)
	require.NoError(t, second.Unlock())
}

func TestFileLock_UnlockWithoutLock(t *testing.T) {
	l := NewFileLock(filepath.Join(t.TempDir(), "gazetteer.db"))

	assert.NoError(t, l.Unlock())
	assert.False(t, l.IsLocked())
}
