package gazetteer

import (
	"context"
	"fmt"
	"log/slog"

	gperrors "github.com/tomlemeuch/grandpy/internal/errors"
)

// Gazetteer resolves a category to its word set.
//
// Implementations must be safe for concurrent use: every extraction pass of a
// query may call Lookup at the same time.
type Gazetteer interface {
	Lookup(ctx context.Context, category Category) (Set, error)
}

// Memory is an in-memory, read-only gazetteer snapshot.
type Memory struct {
	sets map[Category]Set
	errs map[Category]error
}

// Verify interface implementation at compile time
var _ Gazetteer = (*Memory)(nil)

// NewMemory builds a snapshot from raw word lists. Categories absent from
// words are reported unavailable by Lookup.
func NewMemory(words map[Category][]string) *Memory {
	m := &Memory{
		sets: make(map[Category]Set, len(words)),
		errs: make(map[Category]error),
	}
	for c, entries := range words {
		m.sets[c] = NewSet(entries...)
	}
	return m
}

// Lookup returns the set for category.
func (m *Memory) Lookup(ctx context.Context, category Category) (Set, error) {
	if err := ctx.Err(); err != nil {
		return Set{}, err
	}
	if !category.Valid() {
		return Set{}, gperrors.New(gperrors.ErrCodeUnknownCategory,
			fmt.Sprintf("unknown gazetteer category %q", category), nil)
	}
	if err, ok := m.errs[category]; ok {
		return Set{}, err
	}
	set, ok := m.sets[category]
	if !ok {
		return Set{}, gperrors.GazetteerUnavailable(category.String(), nil)
	}
	return set, nil
}

// Sizes returns the entry count of every loaded category.
func (m *Memory) Sizes() map[Category]int {
	sizes := make(map[Category]int, len(m.sets))
	for c, s := range m.sets {
		sizes[c] = s.Len()
	}
	return sizes
}

// Preload reads every category from src once and returns the snapshot.
// A category that fails to load stays unavailable in the snapshot and is
// logged; the other categories are still served.
func Preload(ctx context.Context, src Gazetteer) *Memory {
	m := &Memory{
		sets: make(map[Category]Set, len(Categories())),
		errs: make(map[Category]error),
	}
	for _, c := range Categories() {
		set, err := src.Lookup(ctx, c)
		if err != nil {
			slog.Warn("gazetteer_preload_failed",
				slog.String("category", c.String()),
				slog.String("error", err.Error()))
			if gperrors.GetCode(err) != gperrors.ErrCodeGazetteerUnavailable {
				err = gperrors.GazetteerUnavailable(c.String(), err)
			}
			m.errs[c] = err
			continue
		}
		m.sets[c] = set
	}
	slog.Debug("gazetteer_preloaded",
		slog.Int("categories", len(m.sets)),
		slog.Int("unavailable", len(m.errs)))
	return m
}
