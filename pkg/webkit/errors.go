package webkit

import (
	"errors"

	webkit "github.com/diamondburned/gotk4-webkitgtk/pkg/webkit/v6"
	"github.com/diamondburned/gotk4/pkg/core/gerror"
)

var (
	ErrWebViewNotInitialized = errors.New("webkit: WebView not initialized")
	ErrWebViewDestroyed      = errors.New("webkit: WebView destroyed")
	ErrInvalidURL            = errors.New("webkit: invalid URL")
)

// IsCancelledLoadError returns true if the error is only a load
// cancellation, which happens on every user-initiated stop or cross-page
// navigation and should not be surfaced as a failure.
func IsCancelledLoadError(err error) bool {
	if err == nil {
		return false
	}

	if err.Error() == "Load request cancelled" {
		return true
	}

	var gErr *gerror.GError
	if errors.As(err, &gErr) {
		// WEBKIT_NETWORK_ERROR_CANCELLED
		if gErr.ErrorCode() == int(webkit.NetworkErrorCancelled) {
			return true
		}
	}

	return false
}
