package gazetteer

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	gperrors "github.com/tomlemeuch/grandpy/internal/errors"
)

// Loader stores a complete word list for a category.
type Loader interface {
	Replace(ctx context.Context, category Category, words []string) (int, error)
}

// maxLineBytes bounds a single word-file line.
const maxLineBytes = 1024 * 1024

// ReadWords reads one word or phrase per line. Surrounding whitespace is
// trimmed; blank lines and lines starting with '#' are skipped.
func ReadWords(r io.Reader) ([]string, error) {
	words := []string{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return words, nil
}

// ReadWordFile reads a word file from disk.
func ReadWordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		code := gperrors.ErrCodeFileNotFound
		if os.IsPermission(err) {
			code = gperrors.ErrCodeFilePermission
		}
		return nil, gperrors.New(code, fmt.Sprintf("cannot open word file %s", path), err).
			WithDetail("path", path)
	}
	defer f.Close()

	words, err := ReadWords(f)
	if err != nil {
		return nil, gperrors.New(gperrors.ErrCodeFileRead,
			fmt.Sprintf("cannot read word file %s", path), err).WithDetail("path", path)
	}
	return words, nil
}

// Import loads the word file at path into dst as the list for category.
func Import(ctx context.Context, dst Loader, category Category, path string) (int, error) {
	words, err := ReadWordFile(path)
	if err != nil {
		return 0, err
	}

	n, err := dst.Replace(ctx, category, words)
	if err != nil {
		return 0, err
	}

	slog.Info("gazetteer_imported",
		slog.String("category", category.String()),
		slog.String("path", path),
		slog.Int("count", n))

	return n, nil
}

// LoadFiles reads word files into memory, keyed by category. Categories
// without a file keep the lists of base, which may be nil.
func LoadFiles(files map[Category]string, base map[Category][]string) (map[Category][]string, error) {
	words := make(map[Category][]string, len(Categories()))
	for c, list := range base {
		words[c] = list
	}
	for c, path := range files {
		if !c.Valid() {
			return nil, gperrors.New(gperrors.ErrCodeUnknownCategory,
				fmt.Sprintf("unknown gazetteer category %q", c), nil)
		}
		list, err := ReadWordFile(path)
		if err != nil {
			return nil, err
		}
		words[c] = list
	}
	return words, nil
}

func readFSWords(fsys fs.FS, name string) ([]string, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadWords(f)
}
