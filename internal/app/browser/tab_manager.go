package browser

import (
	"context"
	"strconv"

	"github.com/diamondburned/gotk4/pkg/gtk/v4"
	"github.com/diamondburned/gotk4/pkg/pango"

	"github.com/perchbrowser/perch/internal/logging"
	"github.com/perchbrowser/perch/pkg/webkit"
)

const tabTitleMaxRunes = 24

// TabManager owns the notebook and keeps it in sync with the TabList.
// Everything here runs on the GTK main loop.
type TabManager struct {
	ctx      context.Context
	list     *TabList
	notebook *gtk.Notebook
	viewCfg  *webkit.Config

	// onEvent receives every engine event, tagged with its tab handle.
	onEvent func(Event)

	// onActiveChanged fires after the active tab changes for any reason
	// (open, close, user switch). The shell refreshes chrome state from it.
	onActiveChanged func(*Tab)

	labels    map[Handle]*gtk.Label
	closeBtns map[Handle]*gtk.Button

	// switching suppresses switch-page feedback while we reorder pages
	// ourselves.
	switching bool
}

// NewTabManager creates a TabManager driving notebook.
func NewTabManager(ctx context.Context, notebook *gtk.Notebook, viewCfg *webkit.Config, onEvent func(Event), onActiveChanged func(*Tab)) *TabManager {
	tm := &TabManager{
		ctx:             ctx,
		list:            NewTabList(),
		notebook:        notebook,
		viewCfg:         viewCfg,
		onEvent:         onEvent,
		onActiveChanged: onActiveChanged,
		labels:          make(map[Handle]*gtk.Label),
		closeBtns:       make(map[Handle]*gtk.Button),
	}

	notebook.ConnectSwitchPage(func(_ *gtk.Widget, pageNum uint) {
		if tm.switching {
			return
		}
		if err := tm.list.ActivateIndex(int(pageNum)); err != nil {
			return
		}
		tm.notifyActiveChanged()
	})

	return tm
}

// OpenTab creates a new WebView tab, navigates it to url when non-empty,
// and makes it active.
func (tm *TabManager) OpenTab(url string) (Handle, error) {
	view, err := webkit.NewWebView(tm.viewCfg)
	if err != nil {
		return 0, err
	}

	handle := tm.list.Open(view)
	log := logging.FromContext(tm.tabCtx(handle))
	tm.wireViewEvents(handle, view)

	widget := gtk.BaseWidget(view.AsWidget())
	widget.SetHExpand(true)
	widget.SetVExpand(true)

	label, closeBtn, tabBox := tm.newTabLabel(handle)
	tm.labels[handle] = label
	tm.closeBtns[handle] = closeBtn

	tm.switching = true
	pageNum := tm.notebook.AppendPage(widget, tabBox)
	tm.notebook.SetCurrentPage(pageNum)
	tm.switching = false

	tm.updateCloseAffordance()
	tm.notifyActiveChanged()

	if url != "" {
		if err := view.LoadURL(url); err != nil {
			log.Warn().Err(err).Str("url", url).Msg("initial load failed")
		}
	}

	log.Debug().Str("url", url).Msg("tab opened")
	return handle, nil
}

// tabCtx attaches the tab identity to the manager's logging context.
func (tm *TabManager) tabCtx(handle Handle) context.Context {
	return logging.WithTabID(tm.ctx, strconv.FormatUint(uint64(handle), 10))
}

// CloseTab removes the tab for handle. The last remaining tab cannot be
// closed; callers surface ErrLastTab as a status message.
func (tm *TabManager) CloseTab(handle Handle) error {
	idx := tm.list.IndexOf(handle)

	closed, err := tm.list.Close(handle)
	if err != nil {
		return err
	}

	tm.switching = true
	tm.notebook.RemovePage(idx)
	tm.notebook.SetCurrentPage(tm.list.ActiveIndex())
	tm.switching = false

	delete(tm.labels, handle)
	delete(tm.closeBtns, handle)

	if wv, ok := closed.View.(*webkit.WebView); ok {
		_ = wv.Destroy()
	}

	tm.updateCloseAffordance()
	tm.notifyActiveChanged()

	logging.FromContext(tm.tabCtx(handle)).Debug().Msg("tab closed")
	return nil
}

// ActivateTab switches the displayed tab to handle.
func (tm *TabManager) ActivateTab(handle Handle) error {
	if err := tm.list.Activate(handle); err != nil {
		return err
	}

	tm.switching = true
	tm.notebook.SetCurrentPage(tm.list.ActiveIndex())
	tm.switching = false

	tm.notifyActiveChanged()
	return nil
}

// Active returns the active tab, or nil before the first OpenTab.
func (tm *TabManager) Active() *Tab {
	return tm.list.Active()
}

// Len returns the number of open tabs.
func (tm *TabManager) Len() int {
	return tm.list.Len()
}

// wireViewEvents forwards the view's engine events, tagged with the tab
// handle.
func (tm *TabManager) wireViewEvents(handle Handle, view *webkit.WebView) {
	view.RegisterTitleChangedHandler(func(title string) {
		tm.setTabLabel(handle, title)
		tm.emit(Event{Kind: EventTitleChanged, Tab: handle, Title: title})
	})
	view.RegisterURIChangedHandler(func(uri string) {
		tm.emit(Event{Kind: EventURIChanged, Tab: handle, URI: uri})
	})
	view.RegisterLoadStartedHandler(func() {
		tm.emit(Event{Kind: EventLoadStarted, Tab: handle})
	})
	view.RegisterLoadProgressHandler(func(progress float64) {
		tm.emit(Event{Kind: EventLoadProgress, Tab: handle, Progress: progress})
	})
	view.RegisterLoadFinishedHandler(func() {
		tm.emit(Event{Kind: EventLoadFinished, Tab: handle})
	})
	view.RegisterLoadFailedHandler(func(uri string, err error) {
		tm.emit(Event{Kind: EventLoadFailed, Tab: handle, URI: uri, Err: err})
	})
}

func (tm *TabManager) emit(ev Event) {
	if tm.onEvent != nil {
		tm.onEvent(ev)
	}
}

func (tm *TabManager) notifyActiveChanged() {
	if tm.onActiveChanged != nil {
		tm.onActiveChanged(tm.list.Active())
	}
}

// newTabLabel builds the notebook tab widget: truncated title plus a close
// button.
func (tm *TabManager) newTabLabel(handle Handle) (*gtk.Label, *gtk.Button, *gtk.Box) {
	label := gtk.NewLabel("New Tab")
	label.SetEllipsize(pango.EllipsizeEnd)
	label.SetWidthChars(tabTitleMaxRunes)

	closeBtn := gtk.NewButtonFromIconName("window-close-symbolic")
	closeBtn.SetHasFrame(false)
	closeBtn.ConnectClicked(func() {
		// The button is insensitive on the last tab, so ErrLastTab cannot
		// happen here; anything else is still worth a log line.
		if err := tm.CloseTab(handle); err != nil {
			logging.FromContext(tm.tabCtx(handle)).Warn().Err(err).Msg("close tab")
		}
	})

	box := gtk.NewBox(gtk.OrientationHorizontal, 4)
	box.Append(label)
	box.Append(closeBtn)

	return label, closeBtn, box
}

// setTabLabel updates the tab's visible title.
func (tm *TabManager) setTabLabel(handle Handle, title string) {
	label, ok := tm.labels[handle]
	if !ok {
		return
	}
	if title == "" {
		title = "New Tab"
	}
	label.SetText(title)
}

// updateCloseAffordance disables every close button while only one tab
// remains.
func (tm *TabManager) updateCloseAffordance() {
	sensitive := tm.list.Len() > 1
	for _, btn := range tm.closeBtns {
		btn.SetSensitive(sensitive)
	}
}
