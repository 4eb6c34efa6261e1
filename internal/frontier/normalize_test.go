package frontier_test

import (
	"reflect"
	"testing"

	"github.com/openengine/openengine/internal/frontier"
)

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"plain url unchanged", "https://h/p", "https://h/p", false},
		{"trailing slash stripped", "https://h/p/", "https://h/p", false},
		{"fragment dropped", "https://h/p#x", "https://h/p", false},
		{"query dropped", "https://h/p?q=1", "https://h/p", false},
		{"fragment and query dropped", "https://h/p?q=1#x", "https://h/p", false},
		{"host only", "https://h/", "https://h", false},
		{"relative path", "page2.html#top", "page2.html", false},
		{"relative with trailing slash", "a/example/", "a/example", false},
		{"empty string", "", "", false},
		{"control character", "https://h/\x7f", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := frontier.Canonicalize(tt.input)

			if tt.wantErr {
				if err == nil {
					t.Errorf("Canonicalize(%q) expected error, got nil", tt.input)
				}
				return
			}

			if err != nil {
				t.Errorf("Canonicalize(%q) unexpected error: %v", tt.input, err)
				return
			}

			if got != tt.want {
				t.Errorf("Canonicalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCanonicalize_Idempotent(t *testing.T) {
	inputs := []string{
		"https://h/p",
		"https://h/p/",
		"https://h/p#x",
		"https://h/p?q=1",
		"a/#example/example",
	}

	for _, input := range inputs {
		once, err := frontier.Canonicalize(input)
		if err != nil {
			t.Fatalf("Canonicalize(%q) unexpected error: %v", input, err)
		}
		twice, err := frontier.Canonicalize(once)
		if err != nil {
			t.Fatalf("Canonicalize(%q) unexpected error: %v", once, err)
		}
		if once != twice {
			t.Errorf("Canonicalize not idempotent for %q: %q != %q", input, once, twice)
		}
	}
}

func TestCanonicalize_EquivalentFormsCollapse(t *testing.T) {
	forms := []string{
		"https://h/p",
		"https://h/p/",
		"https://h/p#x",
		"https://h/p?q=1",
	}

	for _, form := range forms {
		got, err := frontier.Canonicalize(form)
		if err != nil {
			t.Fatalf("Canonicalize(%q) unexpected error: %v", form, err)
		}
		if got != "https://h/p" {
			t.Errorf("Canonicalize(%q) = %q, want %q", form, got, "https://h/p")
		}
	}
}

func TestBaseSite(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"simple", "https://example.com/path", "https://example.com", false},
		{"with port", "http://127.0.0.1:8080/page1.html", "http://127.0.0.1:8080", false},
		{"host only", "https://example.com", "https://example.com", false},
		{"no scheme", "example.com/path", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := frontier.BaseSite(tt.input)

			if tt.wantErr {
				if err == nil {
					t.Errorf("BaseSite(%q) expected error, got nil", tt.input)
				}
				return
			}

			if err != nil {
				t.Errorf("BaseSite(%q) unexpected error: %v", tt.input, err)
				return
			}

			if got != tt.want {
				t.Errorf("BaseSite(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	const (
		page = "https://site.com/docs/page.html"
		base = "https://site.com"
	)

	tests := []struct {
		name string
		href string
		want string
	}{
		{"empty passes through", "", ""},
		{"root relative", "/about", "https://site.com/about"},
		{"absolute unchanged", "https://other.com/x", "https://other.com/x"},
		{"path relative", "next.html", "https://site.com/docs/next.html"},
		{"nested path relative", "sub/next.html", "https://site.com/docs/sub/next.html"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := frontier.Resolve(tt.href, page, base)
			if got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.href, got, tt.want)
			}
		})
	}
}

func TestResolve_PreservesAbsolute(t *testing.T) {
	absolutes := []string{
		"https://a.com",
		"http://b.org/path/deep.html",
		"https://c.net:8443/x",
	}

	for _, u := range absolutes {
		if got := frontier.Resolve(u, "https://any.com/page", "https://any.com"); got != u {
			t.Errorf("Resolve(%q) = %q, want unchanged", u, got)
		}
	}
}

func TestDedup(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{
			"fragment variants collapse",
			[]string{"a", "a/example", "a/example/", "a/#example", "a/#example/", "a/#example/example"},
			[]string{"a", "a/example"},
		},
		{
			"first seen order kept",
			[]string{"https://h/b", "https://h/a", "https://h/b/"},
			[]string{"https://h/b", "https://h/a"},
		},
		{
			"empty input",
			nil,
			[]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := frontier.Dedup(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Dedup(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"https://example.com", true},
		{"http://127.0.0.1:9090/x", true},
		{"example.com/path", false},
		{"/rooted/path", false},
		{"page.html", false},
		{"", false},
		{"mailto:user@example.com", false},
	}

	for _, tt := range tests {
		if got := frontier.Valid(tt.input); got != tt.want {
			t.Errorf("Valid(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
