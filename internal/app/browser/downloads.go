package browser

import (
	"context"
	"os"
	"path/filepath"

	"github.com/perchbrowser/perch/internal/download"
	"github.com/perchbrowser/perch/internal/logging"
	"github.com/perchbrowser/perch/pkg/webkit"
)

const downloadDirPerm = 0755

// engineDownload is the slice of *webkit.Download the coordinator drives.
type engineDownload interface {
	URI() string
	MIMEType() string
	Destination() string
	OnDecideDestination(handler func(suggested string) string)
	OnDecideDestinationAsync(handler func(suggested string, decide func(dest string)))
	OnProgress(handler func(fraction float64))
	OnFinished(handler func(dest string))
	OnFailed(handler func(err error))
}

// PromptSave asks the user for a save destination. choose receives the
// chosen absolute path, or "" on cancel. Implemented by the shell with a
// GTK save dialog.
type PromptSave func(suggested, dir string, choose func(dest string))

// DownloadCoordinator answers the engine's download signals: it chooses
// destinations (asking the user when configured) and mirrors progress as
// events. The engine performs the transfer itself.
type DownloadCoordinator struct {
	ctx    context.Context
	dir    string
	ask    bool
	prompt PromptSave
	emit   func(Event)
}

// NewDownloadCoordinator creates a coordinator writing into dir. When ask
// is true, prompt decides each destination instead of auto-saving.
func NewDownloadCoordinator(ctx context.Context, dir string, ask bool, prompt PromptSave, emit func(Event)) *DownloadCoordinator {
	return &DownloadCoordinator{ctx: ctx, dir: dir, ask: ask, prompt: prompt, emit: emit}
}

// Attach hooks the coordinator into the persistent network session. Call
// after webkit.InitPersistentSession.
func (c *DownloadCoordinator) Attach() error {
	return webkit.OnDownloadStarted(func(dl *webkit.Download) { c.handle(dl) })
}

func (c *DownloadCoordinator) handle(dl engineDownload) {
	log := logging.FromContext(logging.WithURL(c.ctx, dl.URI()))

	if c.ask && c.prompt != nil {
		dl.OnDecideDestinationAsync(func(suggested string, decide func(string)) {
			c.prompt(c.suggestName(dl, suggested), c.dir, func(dest string) {
				if dest == "" {
					log.Debug().Msg("download cancelled at save dialog")
					decide("")
					return
				}
				name := download.FilenameFromDestination(dest)
				log.Info().Str("filename", name).Str("destination", dest).Msg("download started")
				c.emit(Event{Kind: EventDownloadRequested, Filename: name, Destination: dest})
				decide(dest)
			})
		})
	} else {
		dl.OnDecideDestination(func(suggested string) string {
			if err := os.MkdirAll(c.dir, downloadDirPerm); err != nil {
				log.Error().Err(err).Str("dir", c.dir).Msg("cannot create download directory")
				c.emit(Event{Kind: EventDownloadFailed, Err: err})
				return ""
			}

			name := download.MakeUniqueFilename(c.dir, c.suggestName(dl, suggested), func(path string) bool {
				_, err := os.Stat(path)
				return err == nil
			})
			dest := filepath.Join(c.dir, name)

			log.Info().Str("filename", name).Str("destination", dest).Msg("download started")
			c.emit(Event{Kind: EventDownloadRequested, Filename: name, Destination: dest})
			return dest
		})
	}

	dl.OnProgress(func(fraction float64) {
		c.emit(Event{
			Kind:        EventDownloadProgress,
			Progress:    fraction,
			Filename:    download.FilenameFromDestination(dl.Destination()),
			Destination: dl.Destination(),
		})
	})

	dl.OnFinished(func(dest string) {
		name := download.FilenameFromDestination(dest)
		log.Info().Str("filename", name).Msg("download finished")
		c.emit(Event{Kind: EventDownloadFinished, Filename: name, Destination: dest})
	})

	dl.OnFailed(func(err error) {
		name := download.FilenameFromDestination(dl.Destination())
		log.Warn().Err(err).Str("filename", name).Msg("download failed")
		c.emit(Event{Kind: EventDownloadFailed, Filename: name, Destination: dl.Destination(), Err: err})
	})
}

// suggestName merges the server suggestion, the URI, and the response MIME
// type into a safe filename.
func (c *DownloadCoordinator) suggestName(dl engineDownload, suggested string) string {
	name := suggested
	if name == "" {
		name = download.FilenameFromURI(dl.URI())
	}
	return download.SanitizeFilenameWithExtension(name, dl.MIMEType())
}
