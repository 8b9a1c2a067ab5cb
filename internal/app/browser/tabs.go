// Package browser is the GUI shell: window, toolbar, status bar, tab
// lifecycle, and the wiring between engine events and chrome state.
package browser

import "errors"

// ErrLastTab is returned when closing the only remaining tab. The window
// keeps its one tab; closing the window is a separate action.
var ErrLastTab = errors.New("browser: cannot close the last tab")

// ErrUnknownTab is returned for handles that are not (or no longer) in the
// list.
var ErrUnknownTab = errors.New("browser: unknown tab handle")

// Handle identifies a tab. Handles are opaque and never reused within a
// window's lifetime.
type Handle uint64

// NavigableView is the navigation surface a tab needs from its view.
// *webkit.WebView satisfies it; tests use fakes.
type NavigableView interface {
	LoadURL(url string) error
	GoBack() error
	GoForward() error
	Stop() error
	Reload() error
	ReloadBypassCache() error
	CurrentURL() string
	Title() string
	CanGoBack() bool
	CanGoForward() bool
}

// Tab pairs a handle with its view.
type Tab struct {
	Handle Handle
	View   NavigableView
}

// TabList is the ordered tab collection and active-tab bookkeeping. It is
// pure state: no toolkit types, no I/O. The TabManager mirrors its
// decisions into the GTK notebook. Not safe for concurrent use; all access
// happens on the GTK main loop.
type TabList struct {
	tabs        []*Tab
	activeIndex int
	nextHandle  Handle
}

// NewTabList creates an empty TabList.
func NewTabList() *TabList {
	return &TabList{activeIndex: -1, nextHandle: 1}
}

// Open appends a tab for view and makes it active.
func (l *TabList) Open(view NavigableView) Handle {
	tab := &Tab{Handle: l.nextHandle, View: view}
	l.nextHandle++

	l.tabs = append(l.tabs, tab)
	l.activeIndex = len(l.tabs) - 1
	return tab.Handle
}

// Close removes the tab for handle. Closing the active tab activates its
// previous neighbour, or the next one when it was first. Closing the only
// tab returns ErrLastTab and changes nothing.
func (l *TabList) Close(handle Handle) (*Tab, error) {
	idx := l.indexOf(handle)
	if idx < 0 {
		return nil, ErrUnknownTab
	}
	if len(l.tabs) == 1 {
		return nil, ErrLastTab
	}

	closed := l.tabs[idx]
	l.tabs = append(l.tabs[:idx], l.tabs[idx+1:]...)

	switch {
	case idx < l.activeIndex:
		l.activeIndex--
	case idx == l.activeIndex:
		if idx > 0 {
			l.activeIndex = idx - 1
		} else {
			l.activeIndex = 0
		}
	}

	return closed, nil
}

// Activate makes the tab for handle the active one.
func (l *TabList) Activate(handle Handle) error {
	idx := l.indexOf(handle)
	if idx < 0 {
		return ErrUnknownTab
	}
	l.activeIndex = idx
	return nil
}

// ActivateIndex makes the tab at position idx active. Used when the
// notebook reports a user-initiated page switch.
func (l *TabList) ActivateIndex(idx int) error {
	if idx < 0 || idx >= len(l.tabs) {
		return ErrUnknownTab
	}
	l.activeIndex = idx
	return nil
}

// Active returns the active tab, or nil when the list is empty.
func (l *TabList) Active() *Tab {
	if l.activeIndex < 0 || l.activeIndex >= len(l.tabs) {
		return nil
	}
	return l.tabs[l.activeIndex]
}

// ActiveIndex returns the position of the active tab, or -1 when empty.
func (l *TabList) ActiveIndex() int {
	if l.activeIndex >= len(l.tabs) {
		return -1
	}
	return l.activeIndex
}

// Get returns the tab for handle, or nil.
func (l *TabList) Get(handle Handle) *Tab {
	if idx := l.indexOf(handle); idx >= 0 {
		return l.tabs[idx]
	}
	return nil
}

// IndexOf returns the position of handle, or -1.
func (l *TabList) IndexOf(handle Handle) int {
	return l.indexOf(handle)
}

// Len returns the number of tabs.
func (l *TabList) Len() int {
	return len(l.tabs)
}

// Handles returns the tab handles in display order.
func (l *TabList) Handles() []Handle {
	handles := make([]Handle, len(l.tabs))
	for i, t := range l.tabs {
		handles[i] = t.Handle
	}
	return handles
}

func (l *TabList) indexOf(handle Handle) int {
	for i, t := range l.tabs {
		if t.Handle == handle {
			return i
		}
	}
	return -1
}
