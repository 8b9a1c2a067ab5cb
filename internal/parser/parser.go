package parser

import (
	"context"
	"net/url"
	"strings"

	"github.com/perchbrowser/perch/internal/config"
	"github.com/perchbrowser/perch/internal/logging"
)

// Parse resolves raw omnibox input into a navigation target. Resolution
// order: direct URL, search shortcut, fuzzy history match, fallback search.
// Empty input (after trimming) returns ErrEmptyInput and no Result.
func (p *Parser) Parse(ctx context.Context, input string) (*Result, error) {
	log := logging.FromContext(ctx)
	validator := NewURLValidator()

	input = validator.SanitizeInput(input)
	if input == "" {
		return nil, ErrEmptyInput
	}

	if validator.IsDirectURL(input) {
		result := &Result{
			Type:       TypeDirectURL,
			URL:        validator.NormalizeURL(input),
			Query:      input,
			Confidence: 1.0,
		}
		log.Debug().Str("input", input).Str("url", result.URL).Msg("resolved direct URL")
		return result, nil
	}

	if ok, key, query := validator.IsSearchShortcut(input); ok {
		if shortcut, found := p.lookupShortcut(key); found {
			result := &Result{
				Type:       TypeSearchShortcut,
				URL:        ExpandSearchTemplate(shortcut.URL, query),
				Query:      query,
				Confidence: 1.0,
				Shortcut: &ExpandedShortcut{
					Key:         key,
					Query:       query,
					URL:         shortcut.URL,
					Description: shortcut.Description,
				},
			}
			log.Debug().Str("shortcut", key).Str("query", query).Msg("expanded search shortcut")
			return result, nil
		}
		// Unknown keys fall through; "foo: bar" is probably just text.
	}

	if matches := p.searchHistory(ctx, input); len(matches) > 0 {
		result := &Result{
			Type:       TypeHistoryMatch,
			URL:        matches[0].Entry.URL,
			Query:      input,
			Confidence: matches[0].Score,
			Matches:    matches,
		}
		log.Debug().
			Str("input", input).
			Str("url", result.URL).
			Float64("score", result.Confidence).
			Int("matches", len(matches)).
			Msg("matched history")
		return result, nil
	}

	return p.fallbackSearch(ctx, input), nil
}

// lookupShortcut finds a configured search shortcut by key.
func (p *Parser) lookupShortcut(key string) (config.SearchShortcut, bool) {
	if p.config == nil {
		return config.SearchShortcut{}, false
	}
	shortcut, ok := p.config.SearchShortcuts[key]
	return shortcut, ok
}

// searchHistory runs the fuzzy matcher over all history entries. History
// errors degrade to no matches rather than failing the parse.
func (p *Parser) searchHistory(ctx context.Context, input string) []Match {
	if p.history == nil {
		return nil
	}

	entries, err := p.history.All(ctx)
	if err != nil {
		logging.FromContext(ctx).Warn().Err(err).Msg("history lookup failed, skipping fuzzy match")
		return nil
	}

	matcher := NewFuzzyMatcher(p.fuzzy)
	return matcher.SearchHistory(input, entries)
}

// fallbackSearch builds a web search with the configured default engine.
func (p *Parser) fallbackSearch(ctx context.Context, input string) *Result {
	template := defaultSearchTemplate(p.config)

	result := &Result{
		Type:       TypeFallbackSearch,
		URL:        ExpandSearchTemplate(template, input),
		Query:      input,
		Confidence: 0.5,
	}
	logging.FromContext(ctx).Debug().Str("input", input).Str("url", result.URL).Msg("falling back to web search")
	return result
}

// defaultSearchTemplate resolves the default engine's URL template.
func defaultSearchTemplate(cfg *config.Config) string {
	if cfg != nil {
		if shortcut, ok := cfg.SearchShortcuts[cfg.DefaultSearch]; ok {
			return shortcut.URL
		}
	}
	defaults := config.DefaultConfig()
	return defaults.SearchShortcuts[defaults.DefaultSearch].URL
}

// ExpandSearchTemplate substitutes the URL-encoded query into a search URL
// template. Spaces encode as '+'.
func ExpandSearchTemplate(template, query string) string {
	return strings.ReplaceAll(template, "{query}", url.QueryEscape(query))
}
