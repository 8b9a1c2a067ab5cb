package webkit

import (
	"runtime"

	"github.com/diamondburned/gotk4/pkg/glib/v2"
)

var isInitialized bool

// InitMainThread locks the current goroutine to the OS thread for GTK
// operations. Must be called before any GTK call, from main.
func InitMainThread() {
	if !isInitialized {
		runtime.LockOSThread()
		isInitialized = true
	}
}

// RunOnMainThread schedules fn on the GTK main loop via glib.IdleAdd.
// Safe to call from any goroutine; this is the only way background work
// (watchers, signal handlers) may touch GUI state.
func RunOnMainThread(fn func()) {
	glib.IdleAdd(func() bool {
		fn()
		return false
	})
}
