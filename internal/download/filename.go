// Package download decides where finished downloads land: destination
// directory resolution, filename sanitization and collision handling.
package download

import (
	"fmt"
	"mime"
	"net/url"
	"path/filepath"
	"strings"
	"time"
)

// DefaultFilename is used when no usable filename can be determined.
const DefaultFilename = "download"

// SanitizeFilename reduces a suggested filename to a safe base name so a
// hostile server cannot steer the destination outside the download
// directory.
func SanitizeFilename(name string) string {
	// filepath.Base only splits on the native separator, so normalize
	// Windows-style separators first.
	name = strings.ReplaceAll(name, "\\", "/")

	clean := filepath.Base(name)
	if clean == "." || clean == ".." || clean == "" {
		return DefaultFilename
	}

	return clean
}

// SanitizeFilenameWithExtension sanitizes name and, when it carries no
// extension, appends one inferred from the MIME type.
func SanitizeFilenameWithExtension(name, mimeType string) string {
	clean := SanitizeFilename(name)
	if filepath.Ext(clean) == "" {
		if ext := ExtensionFromMimeType(mimeType); ext != "" {
			return clean + ext
		}
	}

	return clean
}

// preferredExtensions pins MIME types whose stdlib extension list depends
// on the system MIME database. Without it, mime.ExtensionsByType for
// "text/html" can yield ".ehtml" on some hosts.
var preferredExtensions = map[string]string{
	"text/html":                ".html",
	"text/plain":               ".txt",
	"text/xml":                 ".xml",
	"application/xhtml+xml":    ".xhtml",
	"image/jpeg":               ".jpg",
	"image/svg+xml":            ".svg",
	"audio/mpeg":               ".mp3",
	"video/mp4":                ".mp4",
	"application/octet-stream": ".bin",
}

// ExtensionFromMimeType returns a file extension for the given MIME type,
// or "" when the type is unknown. Parameters ("; charset=...") are handled.
func ExtensionFromMimeType(mimeType string) string {
	if mimeType == "" {
		return ""
	}

	mediaType, _, err := mime.ParseMediaType(mimeType)
	if err != nil || mediaType == "" {
		return ""
	}

	if ext, ok := preferredExtensions[mediaType]; ok {
		return ext
	}

	exts, err := mime.ExtensionsByType(mediaType)
	if err != nil || len(exts) == 0 {
		return ""
	}

	return exts[0]
}

// FilenameFromURI extracts a filename from a URI's path component,
// tolerating plain paths. Edge cases yield DefaultFilename.
func FilenameFromURI(uri string) string {
	if uri == "" {
		return DefaultFilename
	}

	parsed, err := url.Parse(uri)
	if err != nil {
		return filenameFromPath(uri)
	}

	return filenameFromPath(parsed.Path)
}

// FilenameFromDestination extracts the filename from a file:// URI or a
// plain path, as reported by the engine's chosen destination.
func FilenameFromDestination(dest string) string {
	path := strings.TrimPrefix(dest, "file://")
	base := filepath.Base(path)

	if base == "." || base == "" {
		return DefaultFilename
	}
	return base
}

func filenameFromPath(path string) string {
	base := filepath.Base(path)
	if base == "." || base == "" || base == "/" {
		return DefaultFilename
	}
	return base
}

// MakeUniqueFilename appends _(N) to filename until exists reports the
// candidate free. The exists function receives the full candidate path.
func MakeUniqueFilename(dir, filename string, exists func(path string) bool) string {
	destPath := filepath.Join(dir, filename)
	if !exists(destPath) {
		return filename
	}

	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)

	for i := 1; i < 1000; i++ {
		candidate := fmt.Sprintf("%s_(%d)%s", base, i, ext)
		if !exists(filepath.Join(dir, candidate)) {
			return candidate
		}
	}

	// A thousand collisions means something is generating them; give up on
	// pretty names.
	return fmt.Sprintf("%s_%d%s", base, time.Now().UnixNano(), ext)
}
