package crawler

import "github.com/PuerkitoBio/goquery"

// PageKind discriminates parsed work items. Webpages are the only kind the
// pipeline produces today.
type PageKind string

// KindWebpage marks a parsed HTML page.
const KindWebpage PageKind = "webpage"

// ParsedPage is the in-flight record moving from the Fetcher to the
// Processor: the parsed DOM plus the canonical URL it came from.
type ParsedPage struct {
	Kind PageKind
	Doc  *goquery.Document
	URL  string
}
