// Package urlutil normalizes page URLs so that equivalent captures share one
// page key.
package urlutil

import (
	"net"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/net/idna"
)

var percentEncoding = regexp.MustCompile(`%[0-9a-fA-F]{2}`)

// defaultPorts lists the ports that are implied by a scheme and dropped from
// normalized URLs.
var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
	"ws":    "80",
	"wss":   "443",
	"ftp":   "21",
}

// Normalize returns the canonical form of raw:
//
//   - scheme and host are lowercased, internationalized hosts are converted
//     to their ASCII form and a port equal to the scheme default is dropped
//   - the path is at least "/"
//   - query arguments are sorted, "+" and spaces become %20 and percent
//     escapes are uppercased
//   - the fragment is dropped unless keepFragment is set
//
// Normalize returns "" if raw is not an absolute URL with a host.
func Normalize(raw string, keepFragment bool) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" || u.Host == "" || u.Opaque != "" {
		return ""
	}

	host := strings.ToLower(u.Hostname())
	if net.ParseIP(host) == nil {
		if host, err = idna.Lookup.ToASCII(host); err != nil || host == "" {
			return ""
		}
	}
	scheme := strings.ToLower(u.Scheme)
	if port := u.Port(); port != "" && port != defaultPorts[scheme] {
		host = net.JoinHostPort(host, port)
	} else if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}

	var b strings.Builder
	b.WriteString(scheme)
	b.WriteString("://")
	if u.User != nil {
		b.WriteString(u.User.String())
		b.WriteByte('@')
	}
	b.WriteString(host)

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	b.WriteString(path)

	if query := normalizeQuery(u.RawQuery); query != "" {
		b.WriteByte('?')
		b.WriteString(query)
	}

	if keepFragment && u.Fragment != "" {
		b.WriteByte('#')
		b.WriteString(u.EscapedFragment())
	}

	return b.String()
}

func normalizeQuery(raw string) string {
	if raw == "" {
		return ""
	}
	args := strings.Split(raw, "&")
	sort.Strings(args)
	query := strings.Join(args, "&")

	query = strings.NewReplacer("+", "%20", " ", "%20").Replace(query)
	return percentEncoding.ReplaceAllStringFunc(query, strings.ToUpper)
}
