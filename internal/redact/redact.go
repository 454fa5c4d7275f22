// Package redact strips sensitive details from strings before they are logged
// or returned in error responses. Captured page URLs often carry session
// tokens in their query strings, and storage errors can expose database and
// blob file locations.
package redact

import (
	"net/url"
	"regexp"
)

// Redaction placeholders
const (
	RedactionPlaceholder    = "[REDACTED]"
	RedactedPathPlaceholder = "[REDACTED_PATH]"
	RedactedKeyPlaceholder  = "[REDACTED_KEY]"
	RedactedJWTPlaceholder  = "[REDACTED_JWT]"
	RedactedSQLPlaceholder  = "[REDACTED_SQL]"
)

// rule replaces every match of pattern using the expansion template, or
// passes the match through fn when fn is set.
type rule struct {
	pattern  *regexp.Regexp
	template string
	fn       func(string) string
}

// Rules run in order; URLs go before paths so that a URL path is not
// mistaken for a file path.
var rules = []rule{
	{
		pattern:  regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`),
		template: RedactedJWTPlaceholder,
	},
	{
		pattern:  regexp.MustCompile(`(?i)\b(api[_-]?key|token|secret|password|auth)(['"\s:=]+)[A-Za-z0-9_\-.~+/!]{8,}`),
		template: RedactedKeyPlaceholder,
	},
	{
		pattern: regexp.MustCompile(`\b[a-zA-Z][a-zA-Z0-9+.-]*://[^\s"'<>]+`),
		fn:      URL,
	},
	{
		pattern:  regexp.MustCompile(`(?i)\b(SELECT|INSERT|UPDATE|DELETE|CREATE|DROP)\b[^;"]*\b(FROM|INTO|SET|TABLE|INDEX)\b[^;"]*`),
		template: RedactedSQLPlaceholder,
	},
	{
		pattern:  regexp.MustCompile(`(^|[\s"'(=])(?:/[\w.-]+){2,}`),
		template: "${1}" + RedactedPathPlaceholder,
	},
	{
		pattern:  regexp.MustCompile(`[A-Za-z]:\\[^\\\s]+(?:\\[^\\\s]+)+`),
		template: RedactedPathPlaceholder,
	},
}

// String redacts sensitive information from the input string.
// URLs are kept but lose their credentials, query and fragment.
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, r := range rules {
		if r.fn != nil {
			result = r.pattern.ReplaceAllStringFunc(result, r.fn)
			continue
		}
		result = r.pattern.ReplaceAllString(result, r.template)
	}
	return result
}

// Error redacts sensitive information from an error's Error() output.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}

// URL returns raw without user info, query or fragment. Unparseable input
// is replaced entirely.
func URL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return RedactionPlaceholder
	}
	u.User = nil
	if u.RawQuery != "" {
		u.RawQuery = ""
		u.ForceQuery = true
	}
	u.Fragment = ""
	u.RawFragment = ""
	return u.String()
}
