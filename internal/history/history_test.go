package history_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perchbrowser/perch/internal/history"
)

func newTestStore(t *testing.T) *history.Store {
	t.Helper()

	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return store
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	_, err := history.Open("")
	require.Error(t, err)
}

func TestOpenCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "history.db")

	store, err := history.Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Close())
}

func TestAddOrUpdateVisit(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.AddOrUpdateVisit(ctx, "https://example.com"))

	entry, err := store.GetByURL(ctx, "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", entry.URL)
	assert.Equal(t, int64(1), entry.VisitCount)
	assert.Empty(t, entry.Title)

	// Visiting again bumps the counter instead of inserting a duplicate.
	require.NoError(t, store.AddOrUpdateVisit(ctx, "https://example.com"))
	require.NoError(t, store.AddOrUpdateVisit(ctx, "https://example.com"))

	entry, err = store.GetByURL(ctx, "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(3), entry.VisitCount)

	all, err := store.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestAddOrUpdateVisitRejectsEmptyURL(t *testing.T) {
	store := newTestStore(t)
	require.Error(t, store.AddOrUpdateVisit(context.Background(), ""))
}

func TestSetTitle(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.AddOrUpdateVisit(ctx, "https://golang.org"))
	require.NoError(t, store.SetTitle(ctx, "https://golang.org", "The Go Programming Language"))

	entry, err := store.GetByURL(ctx, "https://golang.org")
	require.NoError(t, err)
	assert.Equal(t, "The Go Programming Language", entry.Title)

	// Unknown URLs are a silent no-op.
	require.NoError(t, store.SetTitle(ctx, "https://unknown.example", "Nothing"))
}

func TestGetByURLNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetByURL(context.Background(), "https://missing.example")
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func TestAll(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	urls := []string{
		"https://example.com",
		"https://github.com",
		"https://news.ycombinator.com",
	}
	for _, u := range urls {
		require.NoError(t, store.AddOrUpdateVisit(ctx, u))
	}

	entries, err := store.All(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// All inserts happen within the same timestamp granularity, so assert
	// membership rather than order.
	seen := make(map[string]bool)
	for _, e := range entries {
		seen[e.URL] = true
	}
	for _, u := range urls {
		assert.True(t, seen[u], "expected %s in history", u)
	}
}

func TestAllEmpty(t *testing.T) {
	store := newTestStore(t)

	entries, err := store.All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRecentLimit(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	urls := []string{
		"https://one.example",
		"https://two.example",
		"https://three.example",
		"https://four.example",
	}
	for _, u := range urls {
		require.NoError(t, store.AddOrUpdateVisit(ctx, u))
	}

	entries, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.AddOrUpdateVisit(ctx, "https://github.com/spf13/cobra"))
	require.NoError(t, store.AddOrUpdateVisit(ctx, "https://gitlab.com/project"))
	require.NoError(t, store.AddOrUpdateVisit(ctx, "https://docs.example.com/guide"))
	require.NoError(t, store.SetTitle(ctx, "https://docs.example.com/guide", "Comprehensive Documentation Guide"))

	results, err := store.Search(ctx, "github", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "https://github.com/spf13/cobra", results[0].URL)

	// Title matches count too.
	results, err = store.Search(ctx, "Documentation", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "https://docs.example.com/guide", results[0].URL)

	results, err = store.Search(ctx, "nonexistent", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestTrim(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	for _, u := range []string{
		"https://one.example",
		"https://two.example",
		"https://three.example",
		"https://four.example",
		"https://five.example",
	} {
		require.NoError(t, store.AddOrUpdateVisit(ctx, u))
	}

	require.NoError(t, store.Trim(ctx, 3))

	entries, err := store.All(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	// Trimming below the current count again keeps shrinking.
	require.NoError(t, store.Trim(ctx, 1))
	entries, err = store.All(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	// Non-positive max is a no-op, not a purge.
	require.NoError(t, store.Trim(ctx, 0))
	entries, err = store.All(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestPurge(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.AddOrUpdateVisit(ctx, "https://example.com"))
	require.NoError(t, store.Purge(ctx))

	entries, err := store.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLastVisitedIsRecent(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.AddOrUpdateVisit(ctx, "https://example.com"))

	entry, err := store.GetByURL(ctx, "https://example.com")
	require.NoError(t, err)
	assert.Less(t, time.Since(entry.LastVisited), time.Minute)
}
