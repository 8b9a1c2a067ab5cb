package browser

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDownload drives the coordinator the way the engine would, without a
// running WebKit process.
type fakeDownload struct {
	uri         string
	mimeType    string
	destination string

	decideSync  func(suggested string) string
	decideAsync func(suggested string, decide func(dest string))
	onProgress  func(float64)
	onFinished  func(string)
	onFailed    func(error)
}

func (d *fakeDownload) URI() string         { return d.uri }
func (d *fakeDownload) MIMEType() string    { return d.mimeType }
func (d *fakeDownload) Destination() string { return d.destination }

func (d *fakeDownload) OnDecideDestination(handler func(string) string) {
	d.decideSync = handler
}

func (d *fakeDownload) OnDecideDestinationAsync(handler func(string, func(string))) {
	d.decideAsync = handler
}

func (d *fakeDownload) OnProgress(handler func(float64)) { d.onProgress = handler }
func (d *fakeDownload) OnFinished(handler func(string))  { d.onFinished = handler }
func (d *fakeDownload) OnFailed(handler func(error))     { d.onFailed = handler }

var _ engineDownload = (*fakeDownload)(nil)

func collectEvents(events *[]Event) func(Event) {
	return func(ev Event) { *events = append(*events, ev) }
}

func TestDownloadAutoSavesIntoDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "downloads")
	var events []Event

	c := NewDownloadCoordinator(context.Background(), dir, false, nil, collectEvents(&events))
	dl := &fakeDownload{uri: "https://example.com/files/report.pdf"}
	c.handle(dl)

	require.NotNil(t, dl.decideSync)
	require.Nil(t, dl.decideAsync)

	dest := dl.decideSync("report.pdf")
	assert.Equal(t, filepath.Join(dir, "report.pdf"), dest)

	// The download directory is created on demand.
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	require.Len(t, events, 1)
	assert.Equal(t, EventDownloadRequested, events[0].Kind)
	assert.Equal(t, "report.pdf", events[0].Filename)
}

func TestDownloadAutoSaveAvoidsCollisions(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "report.pdf"), []byte("x"), 0644))

	var events []Event
	c := NewDownloadCoordinator(context.Background(), dir, false, nil, collectEvents(&events))
	dl := &fakeDownload{uri: "https://example.com/report.pdf"}
	c.handle(dl)

	dest := dl.decideSync("report.pdf")
	assert.Equal(t, filepath.Join(dir, "report_(1).pdf"), dest)
}

func TestDownloadSanitizesHostileSuggestion(t *testing.T) {
	dir := t.TempDir()

	var events []Event
	c := NewDownloadCoordinator(context.Background(), dir, false, nil, collectEvents(&events))
	dl := &fakeDownload{uri: "https://evil.example/payload"}
	c.handle(dl)

	dest := dl.decideSync("../../etc/passwd")
	assert.Equal(t, filepath.Join(dir, "passwd"), dest)
}

func TestDownloadAppendsMimeExtension(t *testing.T) {
	dir := t.TempDir()

	var events []Event
	c := NewDownloadCoordinator(context.Background(), dir, false, nil, collectEvents(&events))
	dl := &fakeDownload{
		uri:      "https://example.com/export",
		mimeType: "text/html; charset=utf-8",
	}
	c.handle(dl)

	// No suggestion and an extensionless URI path: the response content
	// type supplies the extension.
	dest := dl.decideSync("")
	assert.Equal(t, filepath.Join(dir, "export.html"), dest)
}

func TestDownloadPromptsWhenConfigured(t *testing.T) {
	dir := t.TempDir()
	chosen := filepath.Join(dir, "elsewhere", "mine.pdf")

	var events []Event
	var promptedName, promptedDir string
	prompt := func(suggested, dir string, choose func(string)) {
		promptedName = suggested
		promptedDir = dir
		choose(chosen)
	}

	c := NewDownloadCoordinator(context.Background(), dir, true, prompt, collectEvents(&events))
	dl := &fakeDownload{uri: "https://example.com/report", mimeType: "application/octet-stream"}
	c.handle(dl)

	require.Nil(t, dl.decideSync)
	require.NotNil(t, dl.decideAsync)

	var decided string
	dl.decideAsync("report", func(dest string) { decided = dest })

	assert.Equal(t, "report.bin", promptedName)
	assert.Equal(t, dir, promptedDir)
	assert.Equal(t, chosen, decided)

	require.Len(t, events, 1)
	assert.Equal(t, EventDownloadRequested, events[0].Kind)
	assert.Equal(t, "mine.pdf", events[0].Filename)
	assert.Equal(t, chosen, events[0].Destination)
}

func TestDownloadPromptCancelled(t *testing.T) {
	var events []Event
	prompt := func(_, _ string, choose func(string)) { choose("") }

	c := NewDownloadCoordinator(context.Background(), t.TempDir(), true, prompt, collectEvents(&events))
	dl := &fakeDownload{uri: "https://example.com/report.pdf"}
	c.handle(dl)

	cancelled := false
	dl.decideAsync("report.pdf", func(dest string) {
		if dest == "" {
			cancelled = true
		}
	})

	assert.True(t, cancelled)
	assert.Empty(t, events)
}

func TestDownloadLifecycleEvents(t *testing.T) {
	var events []Event
	c := NewDownloadCoordinator(context.Background(), t.TempDir(), false, nil, collectEvents(&events))

	dl := &fakeDownload{
		uri:         "https://example.com/big.iso",
		destination: "/downloads/big.iso",
	}
	c.handle(dl)

	dl.onProgress(0.5)
	dl.onFinished("/downloads/big.iso")

	require.Len(t, events, 2)
	assert.Equal(t, EventDownloadProgress, events[0].Kind)
	assert.InDelta(t, 0.5, events[0].Progress, 0.001)
	assert.Equal(t, "big.iso", events[0].Filename)

	assert.Equal(t, EventDownloadFinished, events[1].Kind)
	assert.Equal(t, "big.iso", events[1].Filename)
	assert.Equal(t, "/downloads/big.iso", events[1].Destination)
}

func TestDownloadFailureEvent(t *testing.T) {
	var events []Event
	c := NewDownloadCoordinator(context.Background(), t.TempDir(), false, nil, collectEvents(&events))

	dl := &fakeDownload{
		uri:         "https://example.com/gone.zip",
		destination: "/downloads/gone.zip",
	}
	c.handle(dl)

	dl.onFailed(os.ErrPermission)

	require.Len(t, events, 1)
	assert.Equal(t, EventDownloadFailed, events[0].Kind)
	assert.Equal(t, "gone.zip", events[0].Filename)
	assert.ErrorIs(t, events[0].Err, os.ErrPermission)
}

func TestSuggestNameFallsBackToURI(t *testing.T) {
	c := NewDownloadCoordinator(context.Background(), t.TempDir(), false, nil, func(Event) {})

	dl := &fakeDownload{uri: "https://example.com/dir/archive.tar.gz"}
	assert.Equal(t, "archive.tar.gz", c.suggestName(dl, ""))

	// Suggestion wins over the URI.
	assert.Equal(t, "named.bin", c.suggestName(dl, "named.bin"))

	// Pathological URIs degrade to the default name.
	dl2 := &fakeDownload{uri: "https://example.com/"}
	assert.True(t, strings.HasPrefix(c.suggestName(dl2, ""), "download"))
}
