package frontier

import (
	"fmt"
	"regexp"
)

// Whitelist scopes the crawl: a URL passes when any pattern matches anywhere
// inside it. Substring search, not an anchored match.
type Whitelist struct {
	patterns []*regexp.Regexp
}

// CompileWhitelist compiles the given expressions. An invalid expression
// fails the whole whitelist so a bad crawl request is rejected up front.
func CompileWhitelist(exprs []string) (*Whitelist, error) {
	patterns := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("compile whitelist pattern %q: %w", expr, err)
		}
		patterns = append(patterns, re)
	}
	return &Whitelist{patterns: patterns}, nil
}

// Allow reports whether any pattern matches somewhere in the URL.
func (w *Whitelist) Allow(u string) bool {
	for _, re := range w.patterns {
		if re.MatchString(u) {
			return true
		}
	}
	return false
}

// Filter keeps the URLs that pass Allow, preserving order.
func (w *Whitelist) Filter(urls []string) []string {
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if w.Allow(u) {
			out = append(out, u)
		}
	}
	return out
}
