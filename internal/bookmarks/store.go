// Package bookmarks persists bookmarked URLs in a flat text file, one URL
// per line, so the list stays greppable and trivially editable by hand.
package bookmarks

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	dirPerm  = 0755
	filePerm = 0644
)

// Store reads and writes the bookmark file. All methods are safe for
// concurrent use within a single process; the file itself is the source of
// truth so external edits are picked up on the next List.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore creates a Store for the bookmark file at path.
func NewStore(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("bookmarks: file path cannot be empty")
	}
	return &Store{path: path}, nil
}

// Path returns the bookmark file location.
func (s *Store) Path() string {
	return s.path
}

// Add appends url as a new line, creating the file if needed. Duplicates
// are allowed; each Add is one line.
func (s *Store) Add(url string) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return fmt.Errorf("bookmarks: url cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), dirPerm); err != nil {
		return fmt.Errorf("bookmarks: failed to create directory: %w", err)
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, filePerm)
	if err != nil {
		return fmt.Errorf("bookmarks: failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.WriteString(url + "\n"); err != nil {
		return fmt.Errorf("bookmarks: failed to append: %w", err)
	}

	return nil
}

// List returns all bookmarked URLs in file order. A missing file is an
// empty list, not an error. Blank lines are skipped.
func (s *Store) List() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.readAll()
}

// Contains reports whether url is bookmarked.
func (s *Store) Contains(url string) (bool, error) {
	urls, err := s.List()
	if err != nil {
		return false, err
	}

	url = strings.TrimSpace(url)
	for _, u := range urls {
		if u == url {
			return true, nil
		}
	}
	return false, nil
}

// Remove deletes every line matching url, rewriting the file. Removing a
// URL that is not bookmarked leaves the list unchanged. A missing file is
// created empty, matching Add's create-if-absent contract.
func (s *Store) Remove(url string) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return fmt.Errorf("bookmarks: url cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	urls, err := s.readAll()
	if err != nil {
		return err
	}

	kept := make([]string, 0, len(urls))
	for _, u := range urls {
		if u != url {
			kept = append(kept, u)
		}
	}

	if len(kept) == len(urls) {
		if _, err := os.Stat(s.path); errors.Is(err, os.ErrNotExist) {
			return s.writeAll(kept)
		}
		return nil
	}

	return s.writeAll(kept)
}

func (s *Store) readAll() ([]string, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("bookmarks: failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	urls := make([]string, 0)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("bookmarks: failed to read file: %w", err)
	}

	return urls, nil
}

// writeAll replaces the file contents via a temp file and rename, so a
// crash mid-write never truncates the bookmark list.
func (s *Store) writeAll(urls []string) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("bookmarks: failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".bookmarks-*")
	if err != nil {
		return fmt.Errorf("bookmarks: failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	w := bufio.NewWriter(tmp)
	for _, u := range urls {
		if _, err := w.WriteString(u + "\n"); err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
			return fmt.Errorf("bookmarks: failed to write temp file: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("bookmarks: failed to flush temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("bookmarks: failed to close temp file: %w", err)
	}

	if err := os.Chmod(tmpName, filePerm); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("bookmarks: failed to set permissions: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("bookmarks: failed to replace file: %w", err)
	}

	return nil
}
