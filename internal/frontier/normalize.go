// Package frontier provides the crawl frontier: URL canonicalization and
// resolution helpers, the work queues shared by the crawl workers, the seen
// set that keeps a URL from being enqueued twice in one run, and the regex
// whitelist that scopes the crawl.
package frontier

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var errMissingSchemeOrHost = errors.New("missing scheme or host")

// Canonicalize strips the fragment, query, and params components from a URL
// and removes a single trailing slash. Canonical forms are what the queues,
// the seen set, and the resources table store.
func Canonicalize(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("canonicalize %q: %w", rawURL, err)
	}

	parsed.Fragment = ""
	parsed.RawFragment = ""
	parsed.RawQuery = ""
	parsed.ForceQuery = false

	return strings.TrimSuffix(parsed.String(), "/"), nil
}

// BaseSite returns the scheme://host origin of a URL, port included when
// present.
func BaseSite(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("base site of %q: %w", rawURL, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("base site of %q: %w", rawURL, errMissingSchemeOrHost)
	}

	return parsed.Scheme + "://" + parsed.Host, nil
}

// Valid reports whether both a scheme and a host parse out of the URL.
func Valid(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	return parsed.Scheme != "" && parsed.Host != ""
}

// Resolve turns a discovered href into an absolute URL. Empty input passes
// through untouched. A root-relative href is joined to the base site, an
// absolute href is returned unchanged, and anything else is joined to the
// directory portion of the page URL it was found on.
func Resolve(href, pageURL, baseSite string) string {
	if href == "" {
		return href
	}
	if strings.HasPrefix(href, "/") {
		return baseSite + href
	}
	if Valid(href) {
		return href
	}

	idx := strings.LastIndex(pageURL, "/")
	if idx < 0 {
		return href
	}

	return pageURL[:idx] + "/" + href
}

// Dedup canonicalizes every URL and collapses duplicates, keeping first-seen
// order. Entries that cannot be parsed are dropped.
func Dedup(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))

	for _, raw := range urls {
		canonical, err := Canonicalize(raw)
		if err != nil {
			continue
		}
		if _, dup := seen[canonical]; dup {
			continue
		}
		seen[canonical] = struct{}{}
		out = append(out, canonical)
	}

	return out
}
