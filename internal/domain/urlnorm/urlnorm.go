// Package urlnorm normalizes article URLs into a canonical identity used by
// the Dedup Engine's exact-match stage.
package urlnorm

import (
	"net/url"
	"sort"
	"strings"
)

// trackingPrefixes and trackingExact match query parameters that identify a referral channel
// rather than the resource itself; they are stripped before hashing.
var trackingPrefixes = []string{"utm_"}

var trackingExact = map[string]struct{}{
	"fbclid": {},
	"gclid":  {},
	"ref":    {},
	"source": {},
}

func isTrackingParam(key string) bool {
	lower := strings.ToLower(key)
	if _, ok := trackingExact[lower]; ok {
		return true
	}
	for _, prefix := range trackingPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// Normalize canonicalizes a URL for identity comparison: lowercase host,
// strip a leading "www.", strip a trailing slash on the path, drop the
// fragment, and drop tracking query parameters while preserving the order of
// the remaining ones. Normalize is idempotent: Normalize(Normalize(u)) == Normalize(u).
func Normalize(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return raw
	}

	u.Host = strings.ToLower(u.Host)
	u.Host = strings.TrimPrefix(u.Host, "www.")
	u.Fragment = ""

	if len(u.Path) > 1 {
		u.Path = strings.TrimSuffix(u.Path, "/")
	}

	if u.RawQuery != "" {
		var kept []string
		for _, pair := range strings.Split(u.RawQuery, "&") {
			if pair == "" {
				continue
			}
			key := pair
			if idx := strings.IndexByte(pair, '='); idx >= 0 {
				key = pair[:idx]
			}
			if decoded, err := url.QueryUnescape(key); err == nil {
				key = decoded
			}
			if !isTrackingParam(key) {
				kept = append(kept, pair)
			}
		}
		u.RawQuery = strings.Join(kept, "&")
	}

	return u.String()
}

// sortedJoin is a small helper used by cache-key construction elsewhere; kept
// here because it operates on the same "stable join of names" concept as
// query-parameter ordering above.
func sortedJoin(names []string, sep string) string {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	return strings.Join(sorted, sep)
}

// SortedJoin exposes sortedJoin for cache-key construction.
func SortedJoin(names []string, sep string) string {
	return sortedJoin(names, sep)
}
