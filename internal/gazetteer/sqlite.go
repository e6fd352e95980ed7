package gazetteer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	gperrors "github.com/tomlemeuch/grandpy/internal/errors"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)
)

// SQLiteStore is a Gazetteer backed by a SQLite database of word lists.
// Word lists are written by Replace (usually through Import) and read by
// Lookup; a category that was never written is unavailable.
type SQLiteStore struct {
	mu     sync.RWMutex
	db     *sql.DB
	path   string
	closed bool
}

// Verify interface implementation at compile time
var _ Gazetteer = (*SQLiteStore)(nil)

// NewSQLiteStore opens or creates the store at path.
// If path is empty, an in-memory store is created for testing.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	var dsn string
	if path == "" {
		dsn = ":memory:"
	} else {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, gperrors.New(gperrors.ErrCodeFilePermission,
				fmt.Sprintf("failed to create directory %s", dir), err)
		}
		dsn = path + "?_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, gperrors.New(gperrors.ErrCodeStoreFailed, "failed to open gazetteer store", err)
	}

	// A single connection keeps ":memory:" stores on one database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, gperrors.New(gperrors.ErrCodeStoreFailed, "failed to set pragma", err)
		}
	}

	s := &SQLiteStore{db: db, path: path}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS categories (
			category  TEXT PRIMARY KEY,
			loaded_at TEXT NOT NULL,
			count     INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS words (
			category TEXT NOT NULL,
			word     TEXT NOT NULL,
			PRIMARY KEY (category, word)
		);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return gperrors.New(gperrors.ErrCodeStoreCorrupt, "failed to create gazetteer schema", err).
			WithDetail("path", s.path).
			WithSuggestion("Remove the store file and run 'grandpy load' again")
	}
	return nil
}

// Replace stores words as the complete list for category, dropping the
// previous one. Duplicate words are stored once. It returns the number of
// distinct words stored.
func (s *SQLiteStore) Replace(ctx context.Context, category Category, words []string) (int, error) {
	if !category.Valid() {
		return 0, gperrors.New(gperrors.ErrCodeUnknownCategory,
			fmt.Sprintf("unknown gazetteer category %q", category), nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, gperrors.New(gperrors.ErrCodeStoreFailed, "gazetteer store is closed", nil)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, gperrors.New(gperrors.ErrCodeStoreFailed, "failed to begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM words WHERE category = ?", string(category)); err != nil {
		return 0, gperrors.New(gperrors.ErrCodeStoreFailed, "failed to clear words", err)
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT OR IGNORE INTO words (category, word) VALUES (?, ?)")
	if err != nil {
		return 0, gperrors.New(gperrors.ErrCodeStoreFailed, "failed to prepare insert", err)
	}
	defer stmt.Close()

	count := 0
	for _, w := range words {
		res, err := stmt.ExecContext(ctx, string(category), w)
		if err != nil {
			return 0, gperrors.New(gperrors.ErrCodeStoreFailed,
				fmt.Sprintf("failed to insert word %q", w), err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			count++
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO categories (category, loaded_at, count) VALUES (?, ?, ?)
		 ON CONFLICT(category) DO UPDATE SET loaded_at = excluded.loaded_at, count = excluded.count`,
		string(category), time.Now().UTC().Format(time.RFC3339), count)
	if err != nil {
		return 0, gperrors.New(gperrors.ErrCodeStoreFailed, "failed to record category", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, gperrors.New(gperrors.ErrCodeStoreFailed, "failed to commit words", err)
	}

	slog.Debug("gazetteer_category_replaced",
		slog.String("category", category.String()),
		slog.Int("count", count))

	return count, nil
}

// Lookup reads the word list of category into a Set.
func (s *SQLiteStore) Lookup(ctx context.Context, category Category) (Set, error) {
	if !category.Valid() {
		return Set{}, gperrors.New(gperrors.ErrCodeUnknownCategory,
			fmt.Sprintf("unknown gazetteer category %q", category), nil)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return Set{}, gperrors.GazetteerUnavailable(category.String(), errors.New("store is closed"))
	}

	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT count FROM categories WHERE category = ?", string(category)).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return Set{}, gperrors.GazetteerUnavailable(category.String(), nil)
	}
	if err != nil {
		return Set{}, gperrors.GazetteerUnavailable(category.String(), err)
	}

	rows, err := s.db.QueryContext(ctx, "SELECT word FROM words WHERE category = ?", string(category))
	if err != nil {
		return Set{}, gperrors.GazetteerUnavailable(category.String(), err)
	}
	defer rows.Close()

	words := make([]string, 0, count)
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return Set{}, gperrors.GazetteerUnavailable(category.String(), err)
		}
		words = append(words, w)
	}
	if err := rows.Err(); err != nil {
		return Set{}, gperrors.GazetteerUnavailable(category.String(), err)
	}

	return NewSet(words...), nil
}

// Counts returns the number of stored words per loaded category.
func (s *SQLiteStore) Counts(ctx context.Context) (map[Category]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, gperrors.New(gperrors.ErrCodeStoreFailed, "gazetteer store is closed", nil)
	}

	rows, err := s.db.QueryContext(ctx, "SELECT category, count FROM categories")
	if err != nil {
		return nil, gperrors.New(gperrors.ErrCodeStoreFailed, "failed to read categories", err)
	}
	defer rows.Close()

	counts := make(map[Category]int)
	for rows.Next() {
		var c string
		var n int
		if err := rows.Scan(&c, &n); err != nil {
			return nil, gperrors.New(gperrors.ErrCodeStoreFailed, "failed to read categories", err)
		}
		counts[Category(c)] = n
	}
	return counts, rows.Err()
}

// Path returns the database path, empty for an in-memory store.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close closes the database. It is safe to call more than once.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
