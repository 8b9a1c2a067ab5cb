// Package webkit wraps gotk4-webkitgtk with a small surface the browser
// shell consumes: WebView navigation, load and download events, and the
// persistent network session. The engine owns rendering, networking, TLS
// and caching; nothing here duplicates that.
package webkit

// Config holds per-view engine settings.
type Config struct {
	EnableJavaScript bool
	EnableWebGL      bool
	DefaultFontSize  int
	MinimumFontSize  int
	UserAgent        string
	ZoomLevel        float64
}

// GetDefaultConfig returns the default WebView configuration.
func GetDefaultConfig() *Config {
	return &Config{
		EnableJavaScript: true,
		EnableWebGL:      true,
		DefaultFontSize:  16,
		MinimumFontSize:  0,
		ZoomLevel:        1.0,
	}
}
