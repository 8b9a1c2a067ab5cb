package browser

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gio/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
	"github.com/diamondburned/gotk4/pkg/pango"
	"golang.org/x/sync/errgroup"

	"github.com/perchbrowser/perch/internal/bookmarks"
	"github.com/perchbrowser/perch/internal/config"
	"github.com/perchbrowser/perch/internal/desktop"
	"github.com/perchbrowser/perch/internal/history"
	"github.com/perchbrowser/perch/internal/logging"
	"github.com/perchbrowser/perch/internal/parser"
	"github.com/perchbrowser/perch/pkg/webkit"
)

const applicationID = "com.github.perchbrowser.perch"

// App is the GUI browser shell. One App is one window with its tab strip;
// the CLI spawns one App process per `perch browse`.
type App struct {
	ctx     context.Context
	version string

	cfg       *config.Config
	historyDB *history.Store
	bookmarks *bookmarks.Store
	watcher   *bookmarks.Watcher
	parser    *parser.Parser
	desktop   *desktop.Adapter

	gtkApp *gtk.Application
	window *gtk.ApplicationWindow
	tabs   *TabManager

	addressEntry *gtk.Entry
	backBtn      *gtk.Button
	forwardBtn   *gtk.Button
	reloadBtn    *gtk.Button
	stopBtn      *gtk.Button

	statusLabel  *gtk.Label
	progressBar  *gtk.ProgressBar
	openFileBtn  *gtk.Button
	lastDownload string

	bookmarkList *gtk.ListBox
	bookmarkURLs []string
	bookmarkPop  *gtk.Popover

	initialURL string
}

// Run starts the GUI with an optional initial URL and blocks until the
// window closes. Must be called from the main goroutine.
func Run(ctx context.Context, version, initialURL string) error {
	webkit.InitMainThread()

	app := &App{ctx: ctx, version: version, initialURL: initialURL}
	if err := app.initialize(); err != nil {
		return err
	}
	defer app.cleanup()

	return app.run()
}

// initialize loads configuration and opens the data stores. History and
// bookmarks are independent, so they open in parallel.
func (app *App) initialize() error {
	if err := config.Init(); err != nil {
		return fmt.Errorf("init config: %w", err)
	}
	app.cfg = config.Get()

	logger := logging.NewFromSettings(app.cfg.Logging.Level, app.cfg.Logging.Format)
	app.ctx = logging.WithContext(app.ctx, logger)
	app.ctx = logging.WithComponent(app.ctx, "browser")

	g, _ := errgroup.WithContext(app.ctx)
	g.Go(func() error {
		db, err := history.Open(app.cfg.History.Path)
		if err != nil {
			return fmt.Errorf("open history: %w", err)
		}
		app.historyDB = db
		return nil
	})
	g.Go(func() error {
		store, err := bookmarks.NewStore(app.cfg.Bookmarks.Path)
		if err != nil {
			return fmt.Errorf("open bookmarks: %w", err)
		}
		app.bookmarks = store
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	app.parser = parser.New(app.cfg, app.historyDB)
	app.desktop = desktop.New()

	if err := config.Watch(); err != nil {
		logging.FromContext(app.ctx).Warn().Err(err).Msg("config watch unavailable")
	}
	config.OnConfigChange(func(cfg *config.Config) {
		webkit.RunOnMainThread(func() { app.cfg = cfg })
	})

	return nil
}

func (app *App) cleanup() {
	if app.watcher != nil {
		_ = app.watcher.Close()
	}
	if app.historyDB != nil {
		_ = app.historyDB.Close()
	}
}

// run builds the GTK application and enters the main loop.
func (app *App) run() error {
	log := logging.FromContext(app.ctx)

	dataDir, err := config.GetDataDir()
	if err != nil {
		return err
	}
	if err := webkit.InitPersistentSession(
		filepath.Join(dataDir, "webkit"),
		filepath.Join(dataDir, "webkit", "cache"),
	); err != nil {
		return fmt.Errorf("init network session: %w", err)
	}

	downloads := NewDownloadCoordinator(
		app.ctx,
		app.cfg.Downloads.Directory,
		app.cfg.Downloads.AskWhereToSave,
		app.promptSaveDestination,
		app.handleEvent,
	)
	if err := downloads.Attach(); err != nil {
		return err
	}

	app.gtkApp = gtk.NewApplication(applicationID, gio.ApplicationNonUnique)
	app.gtkApp.ConnectActivate(func() {
		app.buildUI()
		app.openInitialTab()
		app.startBookmarkWatcher()
	})

	// SIGINT/SIGTERM close the window cleanly instead of killing the
	// WebKit child processes mid-write.
	sigCtx, stop := signal.NotifyContext(app.ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		<-sigCtx.Done()
		webkit.RunOnMainThread(func() {
			if app.window != nil {
				app.window.Close()
			}
		})
	}()

	log.Info().Str("version", app.version).Msg("starting browser")
	if code := app.gtkApp.Run(nil); code != 0 {
		return fmt.Errorf("gtk application exited with code %d", code)
	}
	return nil
}

// buildUI assembles window chrome: toolbar, notebook, status bar.
func (app *App) buildUI() {
	app.window = gtk.NewApplicationWindow(app.gtkApp)
	app.window.SetTitle("Perch")
	app.window.SetDefaultSize(app.cfg.Window.Width, app.cfg.Window.Height)

	notebook := gtk.NewNotebook()
	notebook.SetScrollable(true)
	app.tabs = NewTabManager(app.ctx, notebook, webkit.GetDefaultConfig(), app.handleEvent, app.refreshChrome)

	root := gtk.NewBox(gtk.OrientationVertical, 0)
	root.Append(app.buildToolbar())
	nbWidget := gtk.BaseWidget(notebook)
	nbWidget.SetVExpand(true)
	root.Append(notebook)
	root.Append(app.buildStatusBar())

	app.window.SetChild(root)
	app.installKeyBindings()
	app.window.SetVisible(true)
}

// installKeyBindings wires the standard browser accelerators on the window.
func (app *App) installKeyBindings() {
	keys := gtk.NewEventControllerKey()
	keys.ConnectKeyPressed(func(keyval, _ uint, state gdk.ModifierType) bool {
		if state&gdk.ControlMask == 0 {
			return false
		}
		shift := state&gdk.ShiftMask != 0

		switch keyval {
		case gdk.KEY_l, gdk.KEY_L:
			app.addressEntry.GrabFocus()

		case gdk.KEY_t, gdk.KEY_T:
			if _, err := app.tabs.OpenTab(app.cfg.Homepage); err != nil {
				app.setStatus(fmt.Sprintf("Could not open tab: %v", err))
			}

		case gdk.KEY_w, gdk.KEY_W:
			app.closeActiveTab()

		case gdk.KEY_r, gdk.KEY_R:
			app.withActiveView(func(v NavigableView) {
				if shift {
					_ = v.ReloadBypassCache()
				} else {
					_ = v.Reload()
				}
			})

		default:
			return false
		}
		return true
	})
	app.window.AddController(keys)
}

func (app *App) closeActiveTab() {
	tab := app.tabs.Active()
	if tab == nil {
		return
	}
	if err := app.tabs.CloseTab(tab.Handle); err != nil {
		if errors.Is(err, ErrLastTab) {
			app.setStatus("Close the window to exit")
			return
		}
		app.setStatus(fmt.Sprintf("Could not close tab: %v", err))
	}
}

// promptSaveDestination runs a save dialog for a download and reports the
// chosen path through choose, or "" on cancel. Runs on the GTK main loop.
func (app *App) promptSaveDestination(suggested, dir string, choose func(dest string)) {
	dialog := gtk.NewFileDialog()
	dialog.SetTitle("Save download")
	dialog.SetInitialName(suggested)
	dialog.SetInitialFolder(gio.NewFileForPath(dir))

	dialog.Save(app.ctx, &app.window.Window, func(res gio.AsyncResulter) {
		file, err := dialog.SaveFinish(res)
		if err != nil || file == nil {
			choose("")
			return
		}
		choose(file.Path())
	})
}

func (app *App) buildToolbar() *gtk.Box {
	bar := gtk.NewBox(gtk.OrientationHorizontal, 4)
	bar.SetMarginTop(4)
	bar.SetMarginBottom(4)
	bar.SetMarginStart(4)
	bar.SetMarginEnd(4)

	app.backBtn = gtk.NewButtonFromIconName("go-previous-symbolic")
	app.backBtn.SetTooltipText("Back")
	app.backBtn.ConnectClicked(func() { app.withActiveView(func(v NavigableView) { _ = v.GoBack() }) })

	app.forwardBtn = gtk.NewButtonFromIconName("go-next-symbolic")
	app.forwardBtn.SetTooltipText("Forward")
	app.forwardBtn.ConnectClicked(func() { app.withActiveView(func(v NavigableView) { _ = v.GoForward() }) })

	app.reloadBtn = gtk.NewButtonFromIconName("view-refresh-symbolic")
	app.reloadBtn.SetTooltipText("Reload")
	app.reloadBtn.ConnectClicked(func() { app.withActiveView(func(v NavigableView) { _ = v.Reload() }) })

	app.stopBtn = gtk.NewButtonFromIconName("process-stop-symbolic")
	app.stopBtn.SetTooltipText("Stop")
	app.stopBtn.SetSensitive(false)
	app.stopBtn.ConnectClicked(func() { app.withActiveView(func(v NavigableView) { _ = v.Stop() }) })

	homeBtn := gtk.NewButtonFromIconName("go-home-symbolic")
	homeBtn.SetTooltipText("Home")
	homeBtn.ConnectClicked(func() { app.withActiveView(func(v NavigableView) { _ = v.LoadURL(app.cfg.Homepage) }) })

	newTabBtn := gtk.NewButtonFromIconName("tab-new-symbolic")
	newTabBtn.SetTooltipText("New tab")
	newTabBtn.ConnectClicked(func() {
		if _, err := app.tabs.OpenTab(app.cfg.Homepage); err != nil {
			app.setStatus(fmt.Sprintf("Could not open tab: %v", err))
		}
	})

	app.addressEntry = gtk.NewEntry()
	app.addressEntry.SetHExpand(true)
	app.addressEntry.SetPlaceholderText("Search or enter address")
	app.addressEntry.ConnectActivate(app.navigateFromAddressBar)

	bookmarkAddBtn := gtk.NewButtonFromIconName("star-new-symbolic")
	bookmarkAddBtn.SetTooltipText("Bookmark this page")
	bookmarkAddBtn.ConnectClicked(app.bookmarkActivePage)

	bar.Append(app.backBtn)
	bar.Append(app.forwardBtn)
	bar.Append(app.reloadBtn)
	bar.Append(app.stopBtn)
	bar.Append(homeBtn)
	bar.Append(newTabBtn)
	bar.Append(app.addressEntry)
	bar.Append(bookmarkAddBtn)
	bar.Append(app.buildBookmarkMenu())

	return bar
}

func (app *App) buildBookmarkMenu() *gtk.MenuButton {
	app.bookmarkList = gtk.NewListBox()
	app.bookmarkList.SetSelectionMode(gtk.SelectionNone)
	app.bookmarkList.ConnectRowActivated(func(row *gtk.ListBoxRow) {
		idx := row.Index()
		if idx < 0 || idx >= len(app.bookmarkURLs) {
			return
		}
		app.bookmarkPop.Popdown()
		app.withActiveView(func(v NavigableView) { _ = v.LoadURL(app.bookmarkURLs[idx]) })
	})

	scrolled := gtk.NewScrolledWindow()
	scrolled.SetMinContentWidth(360)
	scrolled.SetMaxContentHeight(420)
	scrolled.SetPropagateNaturalHeight(true)
	scrolled.SetChild(app.bookmarkList)

	app.bookmarkPop = gtk.NewPopover()
	app.bookmarkPop.SetChild(scrolled)

	btn := gtk.NewMenuButton()
	btn.SetIconName("user-bookmarks-symbolic")
	btn.SetTooltipText("Bookmarks")
	btn.SetPopover(app.bookmarkPop)

	app.reloadBookmarkMenu()
	return btn
}

func (app *App) buildStatusBar() *gtk.Box {
	bar := gtk.NewBox(gtk.OrientationHorizontal, 8)
	bar.SetMarginTop(2)
	bar.SetMarginBottom(2)
	bar.SetMarginStart(6)
	bar.SetMarginEnd(6)

	app.statusLabel = gtk.NewLabel("")
	app.statusLabel.SetXAlign(0)
	app.statusLabel.SetHExpand(true)
	app.statusLabel.SetEllipsize(pango.EllipsizeMiddle)

	app.openFileBtn = gtk.NewButton()
	app.openFileBtn.SetLabel("Open")
	app.openFileBtn.SetVisible(false)
	app.openFileBtn.ConnectClicked(func() {
		if app.lastDownload == "" {
			return
		}
		if err := app.desktop.OpenPath(app.ctx, app.lastDownload); err != nil {
			app.setStatus(fmt.Sprintf("Could not open file: %v", err))
		}
	})

	app.progressBar = gtk.NewProgressBar()
	app.progressBar.SetVisible(false)

	bar.Append(app.statusLabel)
	bar.Append(app.openFileBtn)
	bar.Append(app.progressBar)

	return bar
}

func (app *App) openInitialTab() {
	url := app.initialURL
	if url == "" {
		url = app.cfg.Homepage
	}
	if _, err := app.tabs.OpenTab(url); err != nil {
		logging.FromContext(app.ctx).Error().Err(err).Msg("failed to open initial tab")
		app.gtkApp.Quit()
	}
}

// startBookmarkWatcher refreshes the bookmark menu when the backing file
// changes, including edits made by other processes.
func (app *App) startBookmarkWatcher() {
	watcher, err := bookmarks.NewWatcher(app.bookmarks, func(urls []string) {
		webkit.RunOnMainThread(func() { app.setBookmarkMenu(urls) })
	})
	if err != nil {
		logging.FromContext(app.ctx).Warn().Err(err).Msg("bookmark watcher unavailable")
		return
	}
	app.watcher = watcher
	go func() { _ = watcher.Run(app.ctx) }()
}

// navigateFromAddressBar resolves the address entry and loads the result
// in the active tab. Empty input does nothing.
func (app *App) navigateFromAddressBar() {
	input := app.addressEntry.Text()

	result, err := app.parser.Parse(app.ctx, input)
	if err != nil {
		if errors.Is(err, parser.ErrEmptyInput) {
			return
		}
		app.setStatus(fmt.Sprintf("Could not resolve input: %v", err))
		return
	}

	app.withActiveView(func(v NavigableView) {
		if err := v.LoadURL(result.URL); err != nil {
			app.setStatus(fmt.Sprintf("Could not load %s: %v", result.URL, err))
			return
		}
	})

	app.recordVisit(result.URL)
}

// recordVisit writes the navigation into history. Failures are logged,
// never surfaced as navigation errors.
func (app *App) recordVisit(url string) {
	if err := app.historyDB.AddOrUpdateVisit(app.ctx, url); err != nil {
		logging.FromContext(app.ctx).Warn().Err(err).Str("url", url).Msg("failed to record visit")
		return
	}
	if max := app.cfg.History.MaxEntries; max > 0 {
		if err := app.historyDB.Trim(app.ctx, max); err != nil {
			logging.FromContext(app.ctx).Warn().Err(err).Msg("failed to trim history")
		}
	}
}

// bookmarkActivePage pushes the active tab's URL into the bookmark store.
func (app *App) bookmarkActivePage() {
	tab := app.tabs.Active()
	if tab == nil {
		return
	}
	url := tab.View.CurrentURL()
	if url == "" || url == "about:blank" {
		app.setStatus("Nothing to bookmark")
		return
	}

	// The store allows duplicates; the toolbar button refuses them so a
	// double click does not double the entry.
	if found, err := app.bookmarks.Contains(url); err == nil && found {
		app.setStatus("Already bookmarked")
		return
	}

	if err := app.bookmarks.Add(url); err != nil {
		app.setStatus(fmt.Sprintf("Could not save bookmark: %v", err))
		return
	}
	app.setStatus("Bookmarked " + url)
	app.reloadBookmarkMenu()
}

func (app *App) reloadBookmarkMenu() {
	urls, err := app.bookmarks.List()
	if err != nil {
		logging.FromContext(app.ctx).Warn().Err(err).Msg("failed to list bookmarks")
		return
	}
	app.setBookmarkMenu(urls)
}

func (app *App) setBookmarkMenu(urls []string) {
	for {
		row := app.bookmarkList.RowAtIndex(0)
		if row == nil {
			break
		}
		app.bookmarkList.Remove(row)
	}

	app.bookmarkURLs = urls
	if len(urls) == 0 {
		placeholder := gtk.NewLabel("No bookmarks yet")
		placeholder.SetMarginTop(8)
		placeholder.SetMarginBottom(8)
		app.bookmarkList.Append(placeholder)
		return
	}

	for _, url := range urls {
		label := gtk.NewLabel(url)
		label.SetXAlign(0)
		label.SetMarginStart(8)
		label.SetMarginEnd(8)
		label.SetMarginTop(4)
		label.SetMarginBottom(4)
		label.SetEllipsize(pango.EllipsizeMiddle)
		app.bookmarkList.Append(label)
	}
}

// handleEvent mirrors engine events into chrome state. It runs on the GTK
// main loop; events only matter visually when they concern the active tab.
func (app *App) handleEvent(ev Event) {
	active := app.tabs.Active()
	isActive := active != nil && ev.Tab == active.Handle

	switch ev.Kind {
	case EventTitleChanged:
		if isActive {
			app.setWindowTitle(ev.Title)
			if uri := activeURL(active); ev.Title != "" && uri != "" {
				go app.recordTitle(uri, ev.Title)
			}
		}

	case EventURIChanged:
		if isActive {
			app.addressEntry.SetText(ev.URI)
			app.refreshNavButtons(active)
		}

	case EventLoadStarted:
		if isActive {
			app.stopBtn.SetSensitive(true)
			app.progressBar.SetVisible(true)
			app.progressBar.SetFraction(0)
			app.setStatus("Loading…")
		}

	case EventLoadProgress:
		if isActive {
			app.progressBar.SetFraction(ev.Progress)
			if ev.Progress >= 1.0 {
				app.progressBar.SetVisible(false)
			}
		}

	case EventLoadFinished:
		if isActive {
			app.stopBtn.SetSensitive(false)
			app.progressBar.SetVisible(false)
			app.setStatus("")
			app.refreshNavButtons(active)
		}

	case EventLoadFailed:
		if isActive {
			app.stopBtn.SetSensitive(false)
			app.progressBar.SetVisible(false)
			app.setStatus(fmt.Sprintf("Failed to load %s: %v", ev.URI, ev.Err))
		}

	case EventDownloadRequested:
		app.setStatus("Downloading " + ev.Filename)

	case EventDownloadProgress:
		app.setStatus(fmt.Sprintf("Downloading %s (%d%%)", ev.Filename, int(ev.Progress*100)))

	case EventDownloadFinished:
		app.lastDownload = ev.Destination
		app.openFileBtn.SetVisible(true)
		app.setStatus("Downloaded " + ev.Filename)

	case EventDownloadFailed:
		app.setStatus(fmt.Sprintf("Download failed: %v", ev.Err))
	}
}

// refreshChrome synchronizes the address bar, title, and nav buttons with
// the newly active tab.
func (app *App) refreshChrome(tab *Tab) {
	if tab == nil {
		return
	}
	app.addressEntry.SetText(tab.View.CurrentURL())
	app.setWindowTitle(tab.View.Title())
	app.refreshNavButtons(tab)
}

func (app *App) refreshNavButtons(tab *Tab) {
	if tab == nil {
		return
	}
	app.backBtn.SetSensitive(tab.View.CanGoBack())
	app.forwardBtn.SetSensitive(tab.View.CanGoForward())
}

func (app *App) setWindowTitle(title string) {
	if title == "" {
		app.window.SetTitle("Perch")
		return
	}
	app.window.SetTitle(title + " - Perch")
}

func (app *App) setStatus(msg string) {
	app.statusLabel.SetText(msg)
}

// recordTitle stores a page title against its history entry. Runs off the
// main loop since it is pure DB I/O.
func (app *App) recordTitle(url, title string) {
	if err := app.historyDB.SetTitle(app.ctx, url, title); err != nil {
		logging.FromContext(app.ctx).Warn().Err(err).Str("url", url).Msg("failed to record title")
	}
}

func (app *App) withActiveView(fn func(NavigableView)) {
	if tab := app.tabs.Active(); tab != nil {
		fn(tab.View)
	}
}

func activeURL(tab *Tab) string {
	if tab == nil {
		return ""
	}
	return tab.View.CurrentURL()
}
