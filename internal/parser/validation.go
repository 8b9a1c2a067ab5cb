package parser

import (
	"net"
	"net/url"
	"regexp"
	"strings"
)

var (
	// urlSchemeRegex matches URL schemes
	urlSchemeRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)

	// shortcutRegex matches search shortcuts (e.g. "g:", "gh:")
	shortcutRegex = regexp.MustCompile(`^([a-zA-Z0-9]+):\s*(.*)$`)

	// validSchemes are the schemes passed through verbatim.
	validSchemes = map[string]bool{
		"http": true, "https": true, "ftp": true, "ftps": true,
		"file": true, "mailto": true, "tel": true, "sms": true,
	}
)

// URLValidator provides URL classification utilities.
type URLValidator struct{}

// NewURLValidator creates a new URLValidator.
func NewURLValidator() *URLValidator {
	return &URLValidator{}
}

// SanitizeInput trims whitespace and strips control characters.
func (v *URLValidator) SanitizeInput(input string) string {
	input = strings.TrimSpace(input)

	result := make([]rune, 0, len(input))
	for _, r := range input {
		if r >= 32 && r < 127 || r > 127 { // printable ASCII and non-ASCII
			result = append(result, r)
		}
	}

	return string(result)
}

// IsDirectURL reports whether the input should be treated as a direct URL:
// it has a recognized scheme, is an IP literal, is localhost, or looks like
// a host (contains a dot, no spaces).
func (v *URLValidator) IsDirectURL(input string) bool {
	if input == "" {
		return false
	}

	input = strings.TrimSpace(input)

	if urlSchemeRegex.MatchString(input) {
		return v.isWellFormedURL(input)
	}

	return v.isIPAddress(hostPart(input)) ||
		v.isLocalhost(input) ||
		v.looksLikeHost(input)
}

// IsSearchShortcut reports whether the input matches a "key: query"
// shortcut pattern, returning the key and query when it does. Inputs with
// a URL scheme never match (https://example.com contains a colon too).
func (v *URLValidator) IsSearchShortcut(input string) (bool, string, string) {
	input = strings.TrimSpace(input)

	if urlSchemeRegex.MatchString(input) {
		return false, "", ""
	}

	matches := shortcutRegex.FindStringSubmatch(input)
	if len(matches) != 3 {
		return false, "", ""
	}

	key := strings.ToLower(matches[1])
	query := strings.TrimSpace(matches[2])

	return true, key, query
}

// NormalizeURL returns a loadable URL for direct-URL input: inputs with a
// scheme are returned unchanged, bare hosts get https:// prepended.
func (v *URLValidator) NormalizeURL(input string) string {
	input = strings.TrimSpace(input)

	if input == "" {
		return input
	}

	if urlSchemeRegex.MatchString(input) {
		return input
	}

	return "https://" + input
}

// hostPart strips path, query and fragment from a bare input.
func hostPart(input string) string {
	for _, sep := range []string{"/", "?", "#"} {
		if idx := strings.Index(input, sep); idx != -1 {
			input = input[:idx]
		}
	}
	return input
}

// isLocalhost reports whether the input is localhost, optionally with a
// port or path.
func (v *URLValidator) isLocalhost(input string) bool {
	host := strings.ToLower(hostPart(input))
	if idx := strings.LastIndex(host, ":"); idx != -1 && isNumeric(host[idx+1:]) {
		host = host[:idx]
	}
	return host == "localhost" || host == "127.0.0.1" || host == "::1" ||
		strings.HasSuffix(host, ".local")
}

// looksLikeHost reports whether the input plausibly names a host: at least
// one dot, no spaces, dot-separated labels of sane length bounded by
// alphanumerics.
func (v *URLValidator) looksLikeHost(input string) bool {
	host := hostPart(input)

	// Strip a trailing :port before structural checks.
	if idx := strings.LastIndex(host, ":"); idx != -1 && isNumeric(host[idx+1:]) {
		host = host[:idx]
	}

	if !strings.Contains(host, ".") {
		return false
	}
	if strings.Contains(host, " ") {
		return false
	}
	if len(host) > 253 {
		return false
	}

	parts := strings.Split(host, ".")
	if len(parts) < 2 {
		return false
	}

	for _, part := range parts {
		if len(part) == 0 || len(part) > 63 {
			return false
		}
		if !isAlphaNumeric(part[0]) || !isAlphaNumeric(part[len(part)-1]) {
			return false
		}
	}

	return true
}

// isIPAddress reports whether the input parses as an IP address.
func (v *URLValidator) isIPAddress(input string) bool {
	input = strings.TrimSuffix(strings.TrimPrefix(input, "["), "]")
	if idx := strings.LastIndex(input, ":"); idx != -1 && !strings.Contains(input, "::") && isNumeric(input[idx+1:]) {
		input = input[:idx]
	}
	return net.ParseIP(input) != nil
}

// isWellFormedURL checks that a URL with a scheme parses and the scheme is
// recognized. mailto/tel/sms URLs carry their target in the opaque part.
func (v *URLValidator) isWellFormedURL(rawURL string) bool {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	if parsedURL.Scheme == "" {
		return false
	}
	if parsedURL.Host == "" && parsedURL.Path == "" && parsedURL.Opaque == "" {
		return false
	}

	return validSchemes[strings.ToLower(parsedURL.Scheme)]
}

// isNumeric checks if a string contains only digits.
func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// isAlphaNumeric checks if a character is alphanumeric.
func isAlphaNumeric(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
