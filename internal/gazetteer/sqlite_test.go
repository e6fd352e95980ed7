package gazetteer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gperrors "github.com/tomlemeuch/grandpy/internal/errors"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore_ReplaceAndLookup(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	n, err := s.Replace(ctx, Cities, []string{"Paris", "Lyon", "Paris"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	set, err := s.Lookup(ctx, Cities)
	require.NoError(t, err)
	assert.Equal(t, 2, set.Len())
	assert.True(t, set.Contains("lyon"))
}

func TestSQLiteStore_ReplaceDropsPreviousList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Replace(ctx, Cities, []string{"Paris"})
	require.NoError(t, err)
	_, err = s.Replace(ctx, Cities, []string{"Lyon"})
	require.NoError(t, err)

	set, err := s.Lookup(ctx, Cities)
	require.NoError(t, err)
	assert.False(t, set.Contains("Paris"))
	assert.True(t, set.Contains("Lyon"))
}

func TestSQLiteStore_UnloadedCategoryIsUnavailable(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Lookup(context.Background(), Countries)

	assert.Equal(t, gperrors.ErrCodeGazetteerUnavailable, gperrors.GetCode(err))
}

func TestSQLiteStore_EmptyListIsLoaded(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Replace(ctx, Countries, nil)
	require.NoError(t, err)

	set, err := s.Lookup(ctx, Countries)
	require.NoError(t, err)
	assert.Equal(t, 0, set.Len())
}

func TestSQLiteStore_Counts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Replace(ctx, Cities, []string{"Paris", "Lyon"})
	require.NoError(t, err)
	_, err = s.Replace(ctx, StopWords, []string{"le"})
	require.NoError(t, err)

	counts, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[Category]int{Cities: 2, StopWords: 1}, counts)
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "gazetteer.db")
	ctx := context.Background()

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	_, err = s.Replace(ctx, Cities, []string{"Saint-Étienne"})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	set, err := reopened.Lookup(ctx, Cities)
	require.NoError(t, err)
	assert.True(t, set.Contains("Saint-Etienne"))
}

func TestSQLiteStore_ClosedStore(t *testing.T) {
	s, err := NewSQLiteStore("")
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err = s.Lookup(context.Background(), Cities)
	assert.Equal(t, gperrors.ErrCodeGazetteerUnavailable, gperrors.GetCode(err))

	_, err = s.Replace(context.Background(), Cities, []string{"Paris"})
	assert.Equal(t, gperrors.ErrCodeStoreFailed, gperrors.GetCode(err))
}

func TestSQLiteStore_RejectsUnknownCategory(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Replace(context.Background(), Category("streets"), []string{"rue"})

	assert.Equal(t, gperrors.ErrCodeUnknownCategory, gperrors.GetCode(err))
}

func TestImport_LoadsWordFileIntoStore(t *testing.T) {
	// Given a word file with comments and blank lines
	dir := t.TempDir()
	path := filepath.Join(dir, "countries.txt")
	require.NoError(t, os.WriteFile(path, []byte("# countries\nFrance\n\n  Japon  \nCorée du Sud\n"), 0644))
	s := newTestStore(t)

	// When importing it
	n, err := Import(context.Background(), s, Countries, path)

	// Then every entry is stored and matchable
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	set, err := s.Lookup(context.Background(), Countries)
	require.NoError(t, err)
	assert.True(t, set.Contains("coree du sud"))
	assert.True(t, set.Contains("Japon"))
}

func TestImport_MissingFile(t *testing.T) {
	s := newTestStore(t)

	_, err := Import(context.Background(), s, Cities, filepath.Join(t.TempDir(), "nope.txt"))

	assert.Equal(t, gperrors.ErrCodeFileNotFound, gperrors.GetCode(err))
}

func TestReadWords(t *testing.T) {
	words, err := ReadWords(strings.NewReader("\n# header\n le \nla\r\n\n"))

	require.NoError(t, err)
	assert.Equal(t, []string{"le", "la"}, words)
}

func TestReadWordFile_LongLines(t *testing.T) {
	tests := []struct {
		name     string
		lineSize int
		wantCode string
	}{
		{name: "line over the default scanner buffer", lineSize: 100 * 1024},
		{name: "line over the limit", lineSize: maxLineBytes + 1, wantCode: gperrors.ErrCodeFileRead},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Given: a word file whose second line is very long
			path := filepath.Join(t.TempDir(), "cities.txt")
			content := "Lyon\n" + strings.Repeat("a", tt.lineSize) + "\n"
			require.NoError(t, os.WriteFile(path, []byte(content), 0644))

			// When: reading it
			words, err := ReadWordFile(path)

			// Then: long lines are read, oversized ones are a read error
			if tt.wantCode == "" {
				require.NoError(t, err)
				assert.Len(t, words, 2)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, gperrors.GetCode(err))
		})
	}
}

func TestLoadFiles_OverridesBaseCategories(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cities.txt")
	require.NoError(t, os.WriteFile(path, []byte("Gotham\n"), 0644))

	words, err := LoadFiles(map[Category]string{Cities: path}, DefaultWords())

	require.NoError(t, err)
	assert.Equal(t, []string{"Gotham"}, words[Cities])
	assert.NotEmpty(t, words[Countries])
}
