// Package parser resolves raw omnibox input into a navigation target: a
// direct URL, a search-shortcut expansion, a fuzzy history match, or a
// fallback web search.
package parser

import (
	"context"
	"errors"

	"github.com/perchbrowser/perch/internal/config"
	"github.com/perchbrowser/perch/internal/history"
)

// ErrEmptyInput is returned when the input is empty after trimming.
// Callers must treat it as "do not navigate", not as a failure.
var ErrEmptyInput = errors.New("parser: empty input")

// InputType represents the type of user input detected.
type InputType int

const (
	// TypeDirectURL is a direct URL input (e.g. "reddit.com", "https://example.com")
	TypeDirectURL InputType = iota
	// TypeSearchShortcut is a search shortcut (e.g. "g: golang tutorial")
	TypeSearchShortcut
	// TypeHistoryMatch is a fuzzy match against visit history
	TypeHistoryMatch
	// TypeFallbackSearch is a web search with the default engine
	TypeFallbackSearch
)

// String returns a string representation of InputType.
func (t InputType) String() string {
	switch t {
	case TypeDirectURL:
		return "direct_url"
	case TypeSearchShortcut:
		return "search_shortcut"
	case TypeHistoryMatch:
		return "history_match"
	case TypeFallbackSearch:
		return "fallback_search"
	default:
		return "unknown"
	}
}

// Result is the outcome of resolving omnibox input.
type Result struct {
	// Type indicates the detected input type
	Type InputType
	// URL is the final URL to navigate to
	URL string
	// Query is the original user input
	Query string
	// Confidence is the confidence score of the resolution (0.0-1.0)
	Confidence float64
	// Matches contains fuzzy history matches when applicable
	Matches []Match
	// Shortcut describes the expanded shortcut when Type is TypeSearchShortcut
	Shortcut *ExpandedShortcut
}

// ExpandedShortcut describes a detected search shortcut.
type ExpandedShortcut struct {
	Key         string
	Query       string
	URL         string
	Description string
}

// Match is a fuzzy search match from history.
type Match struct {
	Entry        *history.Entry
	Score        float64
	URLScore     float64
	TitleScore   float64
	RecencyScore float64
	VisitScore   float64
}

// HistoryProvider is the history access the parser needs. *history.Store
// satisfies it; tests use an in-memory fake.
type HistoryProvider interface {
	All(ctx context.Context) ([]*history.Entry, error)
}

// Parser resolves omnibox input against configuration and history.
type Parser struct {
	config  *config.Config
	fuzzy   *FuzzyConfig
	history HistoryProvider
}

// Option is a functional option for configuring the Parser.
type Option func(*Parser)

// New creates a Parser. The fuzzy knobs default from cfg.Fuzzy.
func New(cfg *config.Config, historyProvider HistoryProvider, opts ...Option) *Parser {
	p := &Parser{
		config:  cfg,
		history: historyProvider,
		fuzzy:   fuzzyConfigFrom(cfg),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// WithFuzzyConfig sets custom fuzzy matching configuration.
func WithFuzzyConfig(fc *FuzzyConfig) Option {
	return func(p *Parser) {
		p.fuzzy = fc
	}
}

// FuzzyConfig holds the fuzzy matching weights and limits.
type FuzzyConfig struct {
	// MinSimilarity is the minimum combined score to accept a match (0.0-1.0)
	MinSimilarity float64
	// MaxResults bounds the number of matches returned
	MaxResults int
	// Field weights; they should sum to roughly 1.0
	URLWeight     float64
	TitleWeight   float64
	RecencyWeight float64
	VisitWeight   float64
	// RecencyDecayDays is the half-life-ish horizon for the recency score
	RecencyDecayDays int
}

// DefaultFuzzyConfig returns default fuzzy matching configuration.
func DefaultFuzzyConfig() *FuzzyConfig {
	return &FuzzyConfig{
		MinSimilarity:    0.3,
		MaxResults:       10,
		URLWeight:        0.4,
		TitleWeight:      0.3,
		RecencyWeight:    0.2,
		VisitWeight:      0.1,
		RecencyDecayDays: 30,
	}
}

// fuzzyConfigFrom builds fuzzy knobs from application config, falling back
// to defaults for unset values.
func fuzzyConfigFrom(cfg *config.Config) *FuzzyConfig {
	fc := DefaultFuzzyConfig()
	if cfg == nil {
		return fc
	}
	if cfg.Fuzzy.MinSimilarity > 0 && cfg.Fuzzy.MinSimilarity <= 1.0 {
		fc.MinSimilarity = cfg.Fuzzy.MinSimilarity
	}
	if cfg.Fuzzy.MaxResults > 0 {
		fc.MaxResults = cfg.Fuzzy.MaxResults
	}
	return fc
}

// IsValid returns true if the FuzzyConfig has usable values.
func (fc *FuzzyConfig) IsValid() bool {
	return fc.MinSimilarity >= 0.0 && fc.MinSimilarity <= 1.0 &&
		fc.MaxResults > 0 &&
		fc.URLWeight >= 0.0 && fc.TitleWeight >= 0.0 &&
		fc.RecencyWeight >= 0.0 && fc.VisitWeight >= 0.0 &&
		fc.RecencyDecayDays > 0
}
