package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perchbrowser/perch/internal/history"
)

func entry(url, title string, visits int64, age time.Duration) *history.Entry {
	return &history.Entry{
		URL:         url,
		Title:       title,
		VisitCount:  visits,
		LastVisited: time.Now().Add(-age),
	}
}

func TestSearchHistoryRanking(t *testing.T) {
	entries := []*history.Entry{
		entry("https://github.com/golang/go", "The Go Programming Language", 50, time.Hour),
		entry("https://golang.org", "Go", 200, 2*time.Hour),
		entry("https://news.ycombinator.com", "Hacker News", 500, time.Hour),
	}

	fm := NewFuzzyMatcher(DefaultFuzzyConfig())
	matches := fm.SearchHistory("golang", entries)

	require.NotEmpty(t, matches)
	assert.Contains(t, matches[0].Entry.URL, "golang")
	// Best first.
	for i := 1; i < len(matches); i++ {
		assert.GreaterOrEqual(t, matches[i-1].Score, matches[i].Score)
	}
}

func TestSearchHistoryMatchesTitle(t *testing.T) {
	entries := []*history.Entry{
		entry("https://news.ycombinator.com", "Hacker News", 10, time.Hour),
	}

	fm := NewFuzzyMatcher(DefaultFuzzyConfig())
	matches := fm.SearchHistory("hacker news", entries)

	require.Len(t, matches, 1)
	assert.Greater(t, matches[0].TitleScore, 0.9)
}

func TestSearchHistoryRespectsMaxResults(t *testing.T) {
	entries := make([]*history.Entry, 0, 30)
	for i := 0; i < 30; i++ {
		entries = append(entries, entry("https://example.com/page", "Example", 5, time.Hour))
	}

	cfg := DefaultFuzzyConfig()
	cfg.MaxResults = 5
	fm := NewFuzzyMatcher(cfg)

	matches := fm.SearchHistory("example.com", entries)
	assert.Len(t, matches, 5)
}

func TestSearchHistoryEmpty(t *testing.T) {
	fm := NewFuzzyMatcher(DefaultFuzzyConfig())

	assert.Nil(t, fm.SearchHistory("query", nil))
	assert.Nil(t, fm.SearchHistory("", []*history.Entry{entry("https://a.com", "", 1, time.Hour)}))
}

func TestJaroWinklerSimilarity(t *testing.T) {
	fm := NewFuzzyMatcher(DefaultFuzzyConfig())

	assert.Equal(t, 1.0, fm.similarity("github", "github"))
	assert.Equal(t, 0.0, fm.similarity("", "github"))
	assert.Greater(t, fm.similarity("github", "github.com"), 0.8)
	assert.Less(t, fm.similarity("github", "ycombinator"), 0.6)

	// Shared prefix scores above a transposed variant.
	assert.Greater(t, fm.similarity("martha", "marhta"), fm.similarity("martha", "amrtha"))
}

func TestSubstringScore(t *testing.T) {
	fm := NewFuzzyMatcher(DefaultFuzzyConfig())

	assert.Equal(t, 0.0, fm.substringScore("zzz", "https://example.com"))
	// Prefix position scores above a late match of the same length.
	early := fm.substringScore("example", "example.com/some/path")
	late := fm.substringScore("example", "some/path/for/example")
	assert.Greater(t, early, late)
}

func TestRecencyScore(t *testing.T) {
	fm := NewFuzzyMatcher(DefaultFuzzyConfig())

	now := fm.recencyScore(time.Now())
	old := fm.recencyScore(time.Now().Add(-90 * 24 * time.Hour))

	assert.InDelta(t, 1.0, now, 0.01)
	assert.Less(t, old, 0.1)
	assert.Equal(t, 0.0, fm.recencyScore(time.Time{}))
}

func TestVisitScore(t *testing.T) {
	fm := NewFuzzyMatcher(DefaultFuzzyConfig())

	assert.Equal(t, 0.0, fm.visitScore(0))
	assert.Less(t, fm.visitScore(1), fm.visitScore(10))
	assert.Less(t, fm.visitScore(10), fm.visitScore(100))
	assert.LessOrEqual(t, fm.visitScore(1000000), 1.0)
}
