package webkit

import (
	"fmt"
	"path/filepath"

	webkit "github.com/diamondburned/gotk4-webkitgtk/pkg/webkit/v6"
)

// globalNetworkSession keeps the persistent session alive for the process
// lifetime. If it were collected, WebKit would fall back to ephemeral
// storage.
var globalNetworkSession *webkit.NetworkSession

// InitPersistentSession creates the persistent NetworkSession backing all
// WebViews. Per WebKitGTK 6.0, the first session created becomes the
// default for the network process, so call this before any NewWebView.
// Idempotent.
func InitPersistentSession(dataDir, cacheDir string) error {
	if globalNetworkSession != nil {
		return nil
	}

	session := webkit.NewNetworkSession(dataDir, cacheDir)
	if session == nil {
		return fmt.Errorf("webkit: failed to create persistent network session")
	}
	globalNetworkSession = session

	if session.IsEphemeral() {
		return fmt.Errorf("webkit: session is ephemeral despite data directories")
	}

	cookieManager := session.CookieManager()
	if cookieManager == nil {
		return fmt.Errorf("webkit: failed to get cookie manager")
	}
	cookieManager.SetPersistentStorage(filepath.Join(dataDir, "cookies.db"), webkit.CookiePersistentStorageSqlite)
	cookieManager.SetAcceptPolicy(webkit.CookiePolicyAcceptNoThirdParty)

	session.SetPersistentCredentialStorageEnabled(true)

	return nil
}

// OnDownloadStarted registers a handler for downloads begun anywhere in the
// session (every WebView shares it). Must be called after
// InitPersistentSession.
func OnDownloadStarted(handler func(*Download)) error {
	if globalNetworkSession == nil {
		return fmt.Errorf("webkit: persistent session not initialized")
	}

	globalNetworkSession.ConnectDownloadStarted(func(dl *webkit.Download) {
		handler(wrapDownload(dl))
	})
	return nil
}
