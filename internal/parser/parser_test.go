package parser

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perchbrowser/perch/internal/config"
	"github.com/perchbrowser/perch/internal/history"
)

// fakeHistory is an in-memory HistoryProvider for tests.
type fakeHistory struct {
	entries []*history.Entry
	err     error
}

func (f *fakeHistory) All(_ context.Context) ([]*history.Entry, error) {
	return f.entries, f.err
}

func testConfig() *config.Config {
	return config.DefaultConfig()
}

func TestParseEmptyInput(t *testing.T) {
	p := New(testConfig(), &fakeHistory{})

	for _, input := range []string{"", "   ", "\t\n"} {
		result, err := p.Parse(context.Background(), input)
		assert.Nil(t, result, "input %q", input)
		assert.ErrorIs(t, err, ErrEmptyInput, "input %q", input)
	}
}

func TestParseDirectURL(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"scheme passed through", "https://example.com/path?x=1", "https://example.com/path?x=1"},
		{"http scheme", "http://example.com", "http://example.com"},
		{"bare host gets https", "openai.com", "https://openai.com"},
		{"host with path", "reddit.com/r/golang", "https://reddit.com/r/golang"},
		{"host with port", "example.com:8080", "https://example.com:8080"},
		{"localhost", "localhost:3000", "https://localhost:3000"},
		{"ip address", "192.168.1.1", "https://192.168.1.1"},
		{"file scheme", "file:///tmp/page.html", "file:///tmp/page.html"},
		{"surrounding whitespace", "  golang.org  ", "https://golang.org"},
	}

	p := New(testConfig(), &fakeHistory{})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := p.Parse(context.Background(), tt.input)
			require.NoError(t, err)
			assert.Equal(t, TypeDirectURL, result.Type)
			assert.Equal(t, tt.want, result.URL)
			assert.Equal(t, 1.0, result.Confidence)
		})
	}
}

func TestParseSearchShortcut(t *testing.T) {
	tests := []struct {
		name  string
		input string
		key   string
		want  string
	}{
		{"google shortcut", "g: golang tutorial", "g", "https://www.google.com/search?q=golang+tutorial"},
		{"github shortcut", "gh: cobra cli", "gh", "https://github.com/search?q=cobra+cli"},
		{"no space after colon", "ddg:weather", "ddg", "https://duckduckgo.com/?q=weather"},
		{"uppercase key", "G: test", "g", "https://www.google.com/search?q=test"},
		{"query needs escaping", "g: c++ & go", "g", "https://www.google.com/search?q=c%2B%2B+%26+go"},
	}

	p := New(testConfig(), &fakeHistory{})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := p.Parse(context.Background(), tt.input)
			require.NoError(t, err)
			assert.Equal(t, TypeSearchShortcut, result.Type)
			assert.Equal(t, tt.want, result.URL)
			require.NotNil(t, result.Shortcut)
			assert.Equal(t, tt.key, result.Shortcut.Key)
		})
	}
}

func TestParseUnknownShortcutFallsThrough(t *testing.T) {
	p := New(testConfig(), &fakeHistory{})

	result, err := p.Parse(context.Background(), "nosuchkey: something")
	require.NoError(t, err)
	assert.Equal(t, TypeFallbackSearch, result.Type)
	assert.Contains(t, result.URL, "duckduckgo.com")
}

func TestParseHistoryMatch(t *testing.T) {
	hist := &fakeHistory{entries: []*history.Entry{
		{
			ID:          1,
			URL:         "https://github.com/spf13/cobra",
			Title:       "spf13/cobra: A Commander for modern Go CLI interactions",
			VisitCount:  25,
			LastVisited: time.Now().Add(-2 * time.Hour),
		},
		{
			ID:          2,
			URL:         "https://news.ycombinator.com",
			Title:       "Hacker News",
			VisitCount:  100,
			LastVisited: time.Now().Add(-1 * time.Hour),
		},
	}}

	p := New(testConfig(), hist)

	result, err := p.Parse(context.Background(), "spf13")
	require.NoError(t, err)
	assert.Equal(t, TypeHistoryMatch, result.Type)
	assert.Equal(t, "https://github.com/spf13/cobra", result.URL)
	assert.NotEmpty(t, result.Matches)
	assert.Greater(t, result.Confidence, 0.0)
}

func TestParseFallbackSearch(t *testing.T) {
	p := New(testConfig(), &fakeHistory{})

	result, err := p.Parse(context.Background(), "python tutorials")
	require.NoError(t, err)
	assert.Equal(t, TypeFallbackSearch, result.Type)
	assert.Equal(t, "https://duckduckgo.com/?q=python+tutorials", result.URL)
	assert.Equal(t, "python tutorials", result.Query)
}

func TestParseHistoryErrorDegradesToSearch(t *testing.T) {
	hist := &fakeHistory{err: errors.New("db locked")}
	p := New(testConfig(), hist)

	result, err := p.Parse(context.Background(), "some query")
	require.NoError(t, err)
	assert.Equal(t, TypeFallbackSearch, result.Type)
}

func TestParseNilHistoryProvider(t *testing.T) {
	p := New(testConfig(), nil)

	result, err := p.Parse(context.Background(), "anything at all")
	require.NoError(t, err)
	assert.Equal(t, TypeFallbackSearch, result.Type)
}

func TestExpandSearchTemplate(t *testing.T) {
	tests := []struct {
		name     string
		template string
		query    string
		want     string
	}{
		{"spaces become plus", "https://duckduckgo.com/?q={query}", "python tutorials", "https://duckduckgo.com/?q=python+tutorials"},
		{"special characters escaped", "https://example.com/s?q={query}", "a&b=c", "https://example.com/s?q=a%26b%3Dc"},
		{"no placeholder", "https://example.com/", "x", "https://example.com/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandSearchTemplate(tt.template, tt.query))
		})
	}
}

func TestInputTypeString(t *testing.T) {
	assert.Equal(t, "direct_url", TypeDirectURL.String())
	assert.Equal(t, "search_shortcut", TypeSearchShortcut.String())
	assert.Equal(t, "history_match", TypeHistoryMatch.String())
	assert.Equal(t, "fallback_search", TypeFallbackSearch.String())
	assert.Equal(t, "unknown", InputType(99).String())
}
