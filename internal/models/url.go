package models

import "strings"

// NormalizeURL returns the canonical form of a site URL: an https:// scheme
// is assumed when none is given, and a trailing slash is dropped so that
// "https://a.example" and "https://a.example/" resolve to the same identity.
func NormalizeURL(raw string) string {
	u := strings.TrimSpace(raw)
	if u == "" {
		return u
	}
	if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		u = "https://" + u
	}
	return strings.TrimRight(u, "/")
}
