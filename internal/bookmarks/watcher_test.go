package bookmarks

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherNilCallback(t *testing.T) {
	store := newTestStore(t)

	_, err := NewWatcher(store, nil)
	assert.Error(t, err)
}

func TestWatcherSeesAppend(t *testing.T) {
	store := newTestStore(t)

	updates := make(chan []string, 8)
	watcher, err := NewWatcher(store, func(urls []string) {
		updates <- urls
	})
	require.NoError(t, err)
	defer func() { _ = watcher.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = watcher.Run(ctx) }()

	require.NoError(t, store.Add("https://example.com"))

	select {
	case urls := <-updates:
		assert.Contains(t, urls, "https://example.com")
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for bookmark change notification")
	}
}

func TestWatcherIgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(filepath.Join(dir, "bookmarks.txt"))
	require.NoError(t, err)

	updates := make(chan []string, 8)
	watcher, err := NewWatcher(store, func(urls []string) {
		updates <- urls
	})
	require.NoError(t, err)
	defer func() { _ = watcher.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = watcher.Run(ctx) }()

	other, err := NewStore(filepath.Join(dir, "other.txt"))
	require.NoError(t, err)
	require.NoError(t, other.Add("https://unrelated.com"))

	select {
	case urls := <-updates:
		t.Fatalf("unexpected notification for unrelated file: %v", urls)
	case <-time.After(500 * time.Millisecond):
	}
}

func TestWatcherStopsOnCancel(t *testing.T) {
	store := newTestStore(t)

	watcher, err := NewWatcher(store, func([]string) {})
	require.NoError(t, err)
	defer func() { _ = watcher.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- watcher.Run(ctx) }()

	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(3 * time.Second):
		t.Fatal("watcher did not stop on context cancel")
	}
}
