package webkit

import (
	"fmt"
	"sync"
	"sync/atomic"

	webkit "github.com/diamondburned/gotk4-webkitgtk/pkg/webkit/v6"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
)

var (
	viewIDCounter uint64
	viewRegistry  = make(map[uint64]*WebView)
	viewMu        sync.RWMutex
)

// WebView wraps a WebKitGTK WebView. All events the shell mirrors
// (title/URI changes, load lifecycle) arrive through registered handlers;
// the shell never polls.
type WebView struct {
	view *webkit.WebView
	id   uint64

	config    *Config
	destroyed bool
	mu        sync.RWMutex

	onTitleChanged func(string)
	onURIChanged   func(string)
	onLoadStarted  func()
	onLoadProgress func(float64)
	onLoadFinished func()
	onLoadFailed   func(uri string, err error)
}

// NewWebView creates a new WebView with the given configuration.
func NewWebView(cfg *Config) (*WebView, error) {
	if cfg == nil {
		cfg = GetDefaultConfig()
	}

	wkView := webkit.NewWebView()
	if wkView == nil {
		return nil, ErrWebViewNotInitialized
	}

	id := atomic.AddUint64(&viewIDCounter, 1)

	wv := &WebView{
		view:   wkView,
		id:     id,
		config: cfg,
	}

	if err := wv.applyConfig(); err != nil {
		return nil, err
	}
	wv.setupEventHandlers()

	viewMu.Lock()
	viewRegistry[id] = wv
	viewMu.Unlock()

	return wv, nil
}

// applyConfig applies the configuration to the WebView settings.
func (w *WebView) applyConfig() error {
	settings := w.view.Settings()
	if settings == nil {
		return fmt.Errorf("webkit: failed to get settings")
	}

	settings.SetEnableJavascript(w.config.EnableJavaScript)
	settings.SetEnableWebgl(w.config.EnableWebGL)
	settings.SetDefaultFontSize(uint32(w.config.DefaultFontSize))
	settings.SetMinimumFontSize(uint32(w.config.MinimumFontSize))

	if w.config.UserAgent != "" {
		settings.SetUserAgent(w.config.UserAgent)
	}

	settings.SetHardwareAccelerationPolicy(webkit.HardwareAccelerationPolicyAlways)

	if w.config.ZoomLevel > 0 {
		w.view.SetZoomLevel(w.config.ZoomLevel)
	}

	return nil
}

// setupEventHandlers connects GTK signals to the registered handlers.
func (w *WebView) setupEventHandlers() {
	w.view.Connect("notify::title", func() {
		if w.onTitleChanged != nil {
			w.onTitleChanged(w.view.Title())
		}
	})

	w.view.Connect("notify::uri", func() {
		if w.onURIChanged != nil {
			w.onURIChanged(w.view.URI())
		}
	})

	w.view.Connect("notify::estimated-load-progress", func() {
		if w.onLoadProgress != nil {
			w.onLoadProgress(w.view.EstimatedLoadProgress())
		}
	})

	w.view.ConnectLoadChanged(func(event webkit.LoadEvent) {
		switch event {
		case webkit.LoadStarted:
			if w.onLoadStarted != nil {
				w.onLoadStarted()
			}
		case webkit.LoadFinished:
			if w.onLoadFinished != nil {
				w.onLoadFinished()
			}
		}
	})

	w.view.ConnectLoadFailed(func(_ webkit.LoadEvent, failingURI string, err error) bool {
		if IsCancelledLoadError(err) {
			return true
		}
		if w.onLoadFailed != nil {
			w.onLoadFailed(failingURI, err)
		}
		// Let WebKit render its own error page as well.
		return false
	})
}

// LoadURL loads the given URL in the WebView.
func (w *WebView) LoadURL(url string) error {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.destroyed {
		return ErrWebViewDestroyed
	}
	if url == "" {
		return ErrInvalidURL
	}

	w.view.LoadURI(url)
	return nil
}

// CurrentURL returns the current URI, or "" before the first load.
func (w *WebView) CurrentURL() string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.destroyed {
		return ""
	}
	return w.view.URI()
}

// Title returns the current page title.
func (w *WebView) Title() string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.destroyed {
		return ""
	}
	return w.view.Title()
}

// GoBack navigates back in the engine-owned history.
func (w *WebView) GoBack() error {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.destroyed {
		return ErrWebViewDestroyed
	}
	w.view.GoBack()
	return nil
}

// GoForward navigates forward in the engine-owned history.
func (w *WebView) GoForward() error {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.destroyed {
		return ErrWebViewDestroyed
	}
	w.view.GoForward()
	return nil
}

// CanGoBack reports whether back navigation is possible.
func (w *WebView) CanGoBack() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.destroyed {
		return false
	}
	return w.view.CanGoBack()
}

// CanGoForward reports whether forward navigation is possible.
func (w *WebView) CanGoForward() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.destroyed {
		return false
	}
	return w.view.CanGoForward()
}

// Reload reloads the current page.
func (w *WebView) Reload() error {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.destroyed {
		return ErrWebViewDestroyed
	}
	w.view.Reload()
	return nil
}

// ReloadBypassCache reloads the current page, bypassing the engine cache.
func (w *WebView) ReloadBypassCache() error {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.destroyed {
		return ErrWebViewDestroyed
	}
	w.view.ReloadBypassCache()
	return nil
}

// Stop cancels the current load.
func (w *WebView) Stop() error {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.destroyed {
		return ErrWebViewDestroyed
	}
	w.view.StopLoading()
	return nil
}

// AsWidget returns the WebView as a gtk.Widgetter for embedding.
func (w *WebView) AsWidget() gtk.Widgetter {
	if w == nil || w.view == nil {
		return nil
	}
	return w.view
}

// ID returns the unique identifier for this WebView.
func (w *WebView) ID() uint64 {
	return w.id
}

// Destroy releases the WebView. The GTK widget is cleaned up when it leaves
// its container.
func (w *WebView) Destroy() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.destroyed {
		return nil
	}
	w.destroyed = true

	viewMu.Lock()
	delete(viewRegistry, w.id)
	viewMu.Unlock()

	return nil
}

// IsDestroyed returns true if the WebView has been destroyed.
func (w *WebView) IsDestroyed() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.destroyed
}

// RegisterTitleChangedHandler registers a handler for title changes.
func (w *WebView) RegisterTitleChangedHandler(handler func(string)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onTitleChanged = handler
}

// RegisterURIChangedHandler registers a handler for URI changes.
func (w *WebView) RegisterURIChangedHandler(handler func(string)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onURIChanged = handler
}

// RegisterLoadStartedHandler registers a handler for load start.
func (w *WebView) RegisterLoadStartedHandler(handler func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onLoadStarted = handler
}

// RegisterLoadProgressHandler registers a handler for load progress
// updates in [0, 1].
func (w *WebView) RegisterLoadProgressHandler(handler func(float64)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onLoadProgress = handler
}

// RegisterLoadFinishedHandler registers a handler for load completion.
func (w *WebView) RegisterLoadFinishedHandler(handler func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onLoadFinished = handler
}

// RegisterLoadFailedHandler registers a handler for load failures.
// Cancellations are filtered out before this fires.
func (w *WebView) RegisterLoadFailedHandler(handler func(uri string, err error)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onLoadFailed = handler
}
