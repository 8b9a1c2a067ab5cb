// Package config provides configuration management for perch with Viper integration.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// File permission constants
const (
	dirPerm  = 0755 // Standard directory permissions (rwxr-xr-x)
	filePerm = 0644 // Standard file permissions (rw-r--r--)
)

// Config represents the complete configuration for perch.
type Config struct {
	Homepage        string                    `mapstructure:"homepage" json:"homepage"`
	DefaultSearch   string                    `mapstructure:"default_search" json:"default_search"`
	SearchShortcuts map[string]SearchShortcut `mapstructure:"search_shortcuts" json:"search_shortcuts"`
	History         HistoryConfig             `mapstructure:"history" json:"history"`
	Fuzzy           FuzzyConfig               `mapstructure:"fuzzy" json:"fuzzy"`
	Bookmarks       BookmarksConfig           `mapstructure:"bookmarks" json:"bookmarks"`
	Downloads       DownloadsConfig           `mapstructure:"downloads" json:"downloads"`
	Logging         LoggingConfig             `mapstructure:"logging" json:"logging"`
	Window          WindowConfig              `mapstructure:"window" json:"window"`
}

// SearchShortcut represents a search shortcut configuration. The URL is a
// template containing a {query} placeholder.
type SearchShortcut struct {
	URL         string `mapstructure:"url" json:"url"`
	Description string `mapstructure:"description" json:"description"`
}

// HistoryConfig holds history-related configuration.
type HistoryConfig struct {
	Path       string `mapstructure:"path" json:"path"`
	MaxEntries int    `mapstructure:"max_entries" json:"max_entries"`
}

// FuzzyConfig holds the fuzzy history matching knobs used by the parser.
type FuzzyConfig struct {
	MinSimilarity float64 `mapstructure:"min_similarity" json:"min_similarity"`
	MaxResults    int     `mapstructure:"max_results" json:"max_results"`
}

// BookmarksConfig holds bookmark store configuration.
type BookmarksConfig struct {
	// Path overrides the default bookmark file location when set.
	Path string `mapstructure:"path" json:"path"`
}

// DownloadsConfig holds download handling configuration.
type DownloadsConfig struct {
	// Directory overrides the XDG download directory when set.
	Directory string `mapstructure:"directory" json:"directory"`
	// AskWhereToSave opens a save dialog instead of writing directly.
	AskWhereToSave bool `mapstructure:"ask_where_to_save" json:"ask_where_to_save"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level" json:"level"`
	Format string `mapstructure:"format" json:"format"`
}

// WindowConfig holds initial window geometry.
type WindowConfig struct {
	Width  int `mapstructure:"width" json:"width"`
	Height int `mapstructure:"height" json:"height"`
}

// Manager handles configuration loading, watching, and reloading.
type Manager struct {
	config    *Config
	viper     *viper.Viper
	mu        sync.RWMutex
	callbacks []func(*Config)
	watching  bool
}

// NewManager creates a new configuration manager.
func NewManager() (*Manager, error) {
	v := viper.New()

	// Viper resolves config.json, config.yaml, config.toml, etc.
	v.SetConfigName("config")

	configDir, err := GetConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}
	v.AddConfigPath(configDir)
	v.AddConfigPath(".") // Current directory for development

	v.SetEnvPrefix("PERCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindings := map[string]string{
		"homepage":             "HOMEPAGE",
		"default_search":       "DEFAULT_SEARCH",
		"history.path":         "HISTORY_PATH",
		"history.max_entries":  "HISTORY_MAX_ENTRIES",
		"fuzzy.min_similarity": "FUZZY_MIN_SIMILARITY",
		"fuzzy.max_results":    "FUZZY_MAX_RESULTS",
		"bookmarks.path":       "BOOKMARKS_PATH",
		"downloads.directory":  "DOWNLOADS_DIRECTORY",
		"logging.level":        "LOG_LEVEL",
		"logging.format":       "LOG_FORMAT",
	}

	for key, env := range bindings {
		if err := v.BindEnv(key, "PERCH_"+env); err != nil {
			return nil, fmt.Errorf("failed to bind environment variable %s: %w", env, err)
		}
	}

	return &Manager{
		viper:     v,
		callbacks: make([]func(*Config), 0),
	}, nil
}

// Load loads the configuration from file and environment variables.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := EnsureDirectories(); err != nil {
		return fmt.Errorf("failed to ensure directories: %w", err)
	}

	m.setDefaults()

	if err := m.viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			// Config file not found, create default one
			if err := m.createDefaultConfig(); err != nil {
				return fmt.Errorf("failed to create default config: %w", err)
			}
		} else {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	config, err := m.unmarshal()
	if err != nil {
		return err
	}

	m.config = config
	return nil
}

// unmarshal decodes the current viper state and fills in derived paths.
func (m *Manager) unmarshal() (*Config, error) {
	config := &Config{}
	if err := m.viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if config.History.Path == "" {
		dbPath, err := GetDatabaseFile()
		if err != nil {
			return nil, fmt.Errorf("failed to get database path: %w", err)
		}
		config.History.Path = dbPath
	}

	if config.Bookmarks.Path == "" {
		bmPath, err := GetBookmarksFile()
		if err != nil {
			return nil, fmt.Errorf("failed to get bookmarks path: %w", err)
		}
		config.Bookmarks.Path = bmPath
	}

	if config.Downloads.Directory == "" {
		dir, err := GetDownloadDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get download directory: %w", err)
		}
		config.Downloads.Directory = dir
	}

	// A default_search key that is not a configured shortcut would make
	// every fallback search fail; repair it silently.
	if _, ok := config.SearchShortcuts[config.DefaultSearch]; !ok {
		config.DefaultSearch = DefaultConfig().DefaultSearch
	}

	return config, nil
}

// Get returns the current configuration (thread-safe).
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// Return a copy to prevent external modification
	configCopy := *m.config
	return &configCopy
}

// Watch starts watching the config file for changes and reloads automatically.
func (m *Manager) Watch() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.watching {
		return nil
	}

	m.viper.WatchConfig()
	m.viper.OnConfigChange(func(_ fsnotify.Event) {
		if err := m.reload(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to reload config: %v\n", err)
			return
		}

		m.mu.RLock()
		config := m.config
		callbacks := make([]func(*Config), len(m.callbacks))
		copy(callbacks, m.callbacks)
		m.mu.RUnlock()

		for _, callback := range callbacks {
			callback(config)
		}
	})

	m.watching = true
	return nil
}

// OnConfigChange registers a callback function to be called when config changes.
func (m *Manager) OnConfigChange(callback func(*Config)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.callbacks = append(m.callbacks, callback)
}

// reload reloads the configuration after a file change event.
func (m *Manager) reload() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.viper.ReadInConfig(); err != nil {
		return err
	}

	config, err := m.unmarshal()
	if err != nil {
		return err
	}

	m.config = config
	return nil
}

// setDefaults sets default configuration values in Viper.
func (m *Manager) setDefaults() {
	defaults := DefaultConfig()

	m.viper.SetDefault("homepage", defaults.Homepage)
	m.viper.SetDefault("default_search", defaults.DefaultSearch)
	m.viper.SetDefault("search_shortcuts", defaults.SearchShortcuts)

	m.viper.SetDefault("history.max_entries", defaults.History.MaxEntries)

	m.viper.SetDefault("fuzzy.min_similarity", defaults.Fuzzy.MinSimilarity)
	m.viper.SetDefault("fuzzy.max_results", defaults.Fuzzy.MaxResults)

	m.viper.SetDefault("downloads.ask_where_to_save", defaults.Downloads.AskWhereToSave)

	m.viper.SetDefault("logging.level", defaults.Logging.Level)
	m.viper.SetDefault("logging.format", defaults.Logging.Format)

	m.viper.SetDefault("window.width", defaults.Window.Width)
	m.viper.SetDefault("window.height", defaults.Window.Height)
}

// createDefaultConfig creates a default configuration file.
func (m *Manager) createDefaultConfig() error {
	configFile, err := GetConfigFile()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configFile), dirPerm); err != nil {
		return err
	}

	defaultConfig := DefaultConfig()

	configData, err := json.MarshalIndent(defaultConfig, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal default config: %w", err)
	}

	if err := os.WriteFile(configFile, configData, filePerm); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetConfigFile returns the path to the configuration file being used.
func (m *Manager) GetConfigFile() string {
	return m.viper.ConfigFileUsed()
}

// Global configuration manager instance
var globalManager *Manager
var globalManagerOnce sync.Once

// Init initializes the global configuration manager.
func Init() error {
	var err error
	globalManagerOnce.Do(func() {
		globalManager, err = NewManager()
		if err != nil {
			return
		}
		err = globalManager.Load()
	})
	return err
}

// Get returns the global configuration.
func Get() *Config {
	if globalManager == nil {
		// Return defaults if not initialized
		return DefaultConfig()
	}
	return globalManager.Get()
}

// Watch starts watching the global configuration for changes.
func Watch() error {
	if globalManager == nil {
		return fmt.Errorf("configuration not initialized")
	}
	return globalManager.Watch()
}

// OnConfigChange registers a callback for global configuration changes.
func OnConfigChange(callback func(*Config)) {
	if globalManager == nil {
		return
	}
	globalManager.OnConfigChange(callback)
}
