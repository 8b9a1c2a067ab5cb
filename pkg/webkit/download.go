package webkit

import (
	"strings"

	webkit "github.com/diamondburned/gotk4-webkitgtk/pkg/webkit/v6"
)

// Download wraps a WebKit download. The decide-destination callback must
// set a destination synchronously or cancel; everything after that is
// progress mirroring.
type Download struct {
	dl *webkit.Download

	failed bool
}

func wrapDownload(dl *webkit.Download) *Download {
	return &Download{dl: dl}
}

// URI returns the URI being downloaded.
func (d *Download) URI() string {
	if req := d.dl.Request(); req != nil {
		return req.URI()
	}
	return ""
}

// MIMEType returns the response content type, or "" before the response
// arrives. Available by the time decide-destination fires.
func (d *Download) MIMEType() string {
	if resp := d.dl.Response(); resp != nil {
		return resp.MIMEType()
	}
	return ""
}

// Destination returns the chosen destination path. WebKit reports it as a
// file:// URI on some versions; the prefix is stripped.
func (d *Download) Destination() string {
	return strings.TrimPrefix(d.dl.Destination(), "file://")
}

// SetDestination sets the absolute path the download is written to.
func (d *Download) SetDestination(path string) {
	d.dl.SetDestination(path)
}

// Cancel aborts the download.
func (d *Download) Cancel() {
	d.dl.Cancel()
}

// OnDecideDestination registers the destination chooser. The handler
// receives the server-suggested filename and returns the absolute
// destination path, or "" to cancel the download.
func (d *Download) OnDecideDestination(handler func(suggestedFilename string) string) {
	d.dl.ConnectDecideDestination(func(suggestedFilename string) bool {
		dest := handler(suggestedFilename)
		if dest == "" {
			d.dl.Cancel()
			return false
		}
		d.dl.SetDestination(dest)
		// Handled synchronously.
		return false
	})
}

// OnDecideDestinationAsync registers a destination chooser that may answer
// later, e.g. from a save dialog. The handler receives the server-suggested
// filename and a decide function that must eventually be called with the
// absolute destination path, or "" to cancel. WebKit holds the download
// until the destination is set.
func (d *Download) OnDecideDestinationAsync(handler func(suggestedFilename string, decide func(dest string))) {
	d.dl.ConnectDecideDestination(func(suggestedFilename string) bool {
		handler(suggestedFilename, func(dest string) {
			if dest == "" {
				d.dl.Cancel()
				return
			}
			d.dl.SetDestination(dest)
		})
		// Destination will be set asynchronously.
		return true
	})
}

// OnProgress registers a handler for fraction-complete updates in [0, 1].
func (d *Download) OnProgress(handler func(float64)) {
	d.dl.Connect("notify::estimated-progress", func() {
		handler(d.dl.EstimatedProgress())
	})
}

// OnFinished registers a handler fired on successful completion. A failed
// download fires only the failure handler.
func (d *Download) OnFinished(handler func(destination string)) {
	d.dl.ConnectFinished(func() {
		if d.failed {
			return
		}
		handler(d.Destination())
	})
}

// OnFailed registers a handler for download failure.
func (d *Download) OnFailed(handler func(err error)) {
	d.dl.ConnectFailed(func(err error) {
		d.failed = true
		handler(err)
	})
}
