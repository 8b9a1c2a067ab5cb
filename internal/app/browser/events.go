package browser

// EventKind enumerates the engine-originated events the shell mirrors.
// The set is closed; the shell performs no independent load-state
// tracking.
type EventKind int

const (
	EventTitleChanged EventKind = iota
	EventURIChanged
	EventLoadStarted
	EventLoadProgress
	EventLoadFinished
	EventLoadFailed
	EventDownloadRequested
	EventDownloadProgress
	EventDownloadFinished
	EventDownloadFailed
)

// String returns the event kind name, mostly for log fields.
func (k EventKind) String() string {
	switch k {
	case EventTitleChanged:
		return "title_changed"
	case EventURIChanged:
		return "uri_changed"
	case EventLoadStarted:
		return "load_started"
	case EventLoadProgress:
		return "load_progress"
	case EventLoadFinished:
		return "load_finished"
	case EventLoadFailed:
		return "load_failed"
	case EventDownloadRequested:
		return "download_requested"
	case EventDownloadProgress:
		return "download_progress"
	case EventDownloadFinished:
		return "download_finished"
	case EventDownloadFailed:
		return "download_failed"
	default:
		return "unknown"
	}
}

// Event is one engine notification. Only the fields relevant to Kind are
// set: Title for title changes, URI for URI changes and load failures,
// Progress for load and download progress, Filename/Destination for
// downloads, Err for failures.
type Event struct {
	Kind        EventKind
	Tab         Handle
	Title       string
	URI         string
	Progress    float64
	Filename    string
	Destination string
	Err         error
}
