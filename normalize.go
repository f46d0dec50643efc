package gositemapbuilder

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/idna"
)

// AbsoluteURLValidator accepts URLs that parse with both a scheme and a host.
type AbsoluteURLValidator struct{}

var _ URLValidator = AbsoluteURLValidator{}

// IsValid reports whether raw has a scheme and a host.
func (AbsoluteURLValidator) IsValid(raw string) bool {
	if strings.TrimSpace(raw) == "" {
		return false
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return parsed.Scheme != "" && parsed.Host != ""
}

// normalizeKey derives the duplicate-detection key for a location.
//
// Scheme and host are lowercased, trailing slashes are dropped from the path and
// an empty path becomes "/". Query and fragment are kept verbatim, so parameter
// order still distinguishes two URLs.
func normalizeKey(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return normalizeFallback(raw)
	}

	var b strings.Builder
	b.Grow(len(raw))
	b.WriteString(strings.ToLower(parsed.Scheme))
	b.WriteString("://")
	b.WriteString(normalizeHost(parsed.Hostname()))
	if port := parsed.Port(); port != "" {
		b.WriteByte(':')
		b.WriteString(port)
	}

	path := parsed.EscapedPath()
	if path != "/" {
		path = strings.TrimRight(path, "/")
	}
	if path == "" {
		path = "/"
	}
	b.WriteString(path)

	if parsed.RawQuery != "" {
		b.WriteByte('?')
		b.WriteString(parsed.RawQuery)
	}
	if parsed.Fragment != "" {
		b.WriteByte('#')
		b.WriteString(parsed.EscapedFragment())
	}
	return b.String()
}

func normalizeHost(host string) string {
	if !isASCII(host) {
		if ascii, err := idna.ToASCII(host); err == nil {
			host = ascii
		}
	}
	host = strings.ToLower(host)
	if strings.Contains(host, ":") {
		return "[" + host + "]"
	}
	return host
}

func normalizeFallback(raw string) string {
	lowered := strings.ToLower(raw)
	lowered = strings.TrimPrefix(lowered, "/")
	return strings.TrimSuffix(lowered, "/")
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
