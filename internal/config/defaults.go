// Package config provides default configuration values for perch.
package config

// Default configuration constants
const (
	defaultMaxHistoryEntries = 10000
	defaultMinSimilarity     = 0.3
	defaultMaxFuzzyResults   = 10
	defaultWindowWidth       = 1280
	defaultWindowHeight      = 800
)

// defaultHomepage is also the fallback search engine host.
const defaultHomepage = "https://duckduckgo.com/"

// DefaultConfig returns the default configuration values for perch.
func DefaultConfig() *Config {
	return &Config{
		Homepage:        defaultHomepage,
		DefaultSearch:   "ddg",
		SearchShortcuts: GetDefaultSearchShortcuts(),
		History: HistoryConfig{
			MaxEntries: defaultMaxHistoryEntries,
		},
		Fuzzy: FuzzyConfig{
			MinSimilarity: defaultMinSimilarity,
			MaxResults:    defaultMaxFuzzyResults,
		},
		Downloads: DownloadsConfig{
			AskWhereToSave: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console", // console or json
		},
		Window: WindowConfig{
			Width:  defaultWindowWidth,
			Height: defaultWindowHeight,
		},
	}
}

// GetDefaultSearchShortcuts returns the default search shortcuts. URL
// templates carry a {query} placeholder that is replaced with the
// URL-encoded query.
func GetDefaultSearchShortcuts() map[string]SearchShortcut {
	return map[string]SearchShortcut{
		"ddg": {
			URL:         "https://duckduckgo.com/?q={query}",
			Description: "DuckDuckGo search",
		},
		"g": {
			URL:         "https://www.google.com/search?q={query}",
			Description: "Google search",
		},
		"gh": {
			URL:         "https://github.com/search?q={query}",
			Description: "GitHub search",
		},
		"yt": {
			URL:         "https://www.youtube.com/results?search_query={query}",
			Description: "YouTube search",
		},
		"w": {
			URL:         "https://en.wikipedia.org/wiki/Special:Search?search={query}",
			Description: "Wikipedia search",
		},
		"so": {
			URL:         "https://stackoverflow.com/search?q={query}",
			Description: "Stack Overflow search",
		},
	}
}
