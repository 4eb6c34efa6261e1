package frontier_test

import (
	"reflect"
	"testing"

	"github.com/openengine/openengine/internal/frontier"
)

func TestWhitelist_Allow(t *testing.T) {
	tests := []struct {
		name     string
		patterns []string
		url      string
		want     bool
	}{
		{
			name:     "substring match anywhere in url",
			patterns: []string{"example"},
			url:      "https://sub.example.com/page",
			want:     true,
		},
		{
			name:     "no pattern matches",
			patterns: []string{"example"},
			url:      "https://other.com/page",
			want:     false,
		},
		{
			name:     "any pattern suffices",
			patterns: []string{"nomatch", "other"},
			url:      "https://other.com/page",
			want:     true,
		},
		{
			name:     "scheme prefix patterns pass everything crawlable",
			patterns: []string{"https://", "http://"},
			url:      "http://plain.org/a",
			want:     true,
		},
		{
			name:     "anchored pattern",
			patterns: []string{"^https://only\\.com"},
			url:      "https://only.com/deep/path",
			want:     true,
		},
		{
			name:     "anchored pattern rejects other host",
			patterns: []string{"^https://only\\.com"},
			url:      "https://evil.com/https://only.com",
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := frontier.CompileWhitelist(tt.patterns)
			if err != nil {
				t.Fatalf("CompileWhitelist(%v) error: %v", tt.patterns, err)
			}
			if got := w.Allow(tt.url); got != tt.want {
				t.Errorf("Allow(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestCompileWhitelist_InvalidPattern(t *testing.T) {
	if _, err := frontier.CompileWhitelist([]string{"valid", "("}); err == nil {
		t.Error("CompileWhitelist with unbalanced paren: expected error, got nil")
	}
}

func TestWhitelist_Filter(t *testing.T) {
	w, err := frontier.CompileWhitelist([]string{"site\\.com"})
	if err != nil {
		t.Fatalf("CompileWhitelist error: %v", err)
	}

	in := []string{
		"https://site.com/a",
		"https://other.com/b",
		"https://site.com/c",
		"https://site.org/d",
	}
	want := []string{
		"https://site.com/a",
		"https://site.com/c",
	}

	if got := w.Filter(in); !reflect.DeepEqual(got, want) {
		t.Errorf("Filter(%v) = %v, want %v", in, got, want)
	}
}

func TestWhitelist_FilterKeepsOrder(t *testing.T) {
	w, err := frontier.CompileWhitelist([]string{"https://"})
	if err != nil {
		t.Fatalf("CompileWhitelist error: %v", err)
	}

	in := []string{"https://z/3", "https://a/1", "https://m/2"}

	if got := w.Filter(in); !reflect.DeepEqual(got, in) {
		t.Errorf("Filter(%v) = %v, want input order preserved", in, got)
	}
}

// Widening the whitelist never removes URLs that already passed.
func TestWhitelist_WideningIsMonotonic(t *testing.T) {
	narrow, err := frontier.CompileWhitelist([]string{"site\\.com"})
	if err != nil {
		t.Fatalf("CompileWhitelist error: %v", err)
	}
	wide, err := frontier.CompileWhitelist([]string{"site\\.com", "site\\.org"})
	if err != nil {
		t.Fatalf("CompileWhitelist error: %v", err)
	}

	urls := []string{
		"https://site.com/a",
		"https://site.org/b",
		"https://other.net/c",
	}
	for _, u := range urls {
		if narrow.Allow(u) && !wide.Allow(u) {
			t.Errorf("widened whitelist rejected %q that the narrow one allowed", u)
		}
	}
}
