package crawler

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// maxSegmentWords is the word-window size pages are split into before
// embedding. The last window holds the remainder.
const maxSegmentWords = 450

// skipTags are subtrees that carry no user-visible text.
var skipTags = map[string]struct{}{
	"script":   {},
	"style":    {},
	"meta":     {},
	"header":   {},
	"footer":   {},
	"nav":      {},
	"noscript": {},
}

// VisibleText extracts the user-visible text of a parsed page: skip-tag
// subtrees are dropped, text nodes are joined with single spaces, and runs
// of whitespace collapse to one space.
func VisibleText(doc *goquery.Document) string {
	var parts []string
	for _, node := range doc.Nodes {
		collectText(node, &parts)
	}

	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

// collectText walks the node tree depth-first, accumulating text nodes and
// pruning skip-tag subtrees.
func collectText(n *html.Node, parts *[]string) {
	if n.Type == html.ElementNode {
		if _, skip := skipTags[n.Data]; skip {
			return
		}
	}
	if n.Type == html.TextNode {
		*parts = append(*parts, n.Data)
		return
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		collectText(child, parts)
	}
}

// Segment splits text into consecutive windows of at most maxWords words,
// each window re-joined with single spaces. Empty text yields no segments.
func Segment(text string, maxWords int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	segments := make([]string, 0, (len(words)+maxWords-1)/maxWords)
	for start := 0; start < len(words); start += maxWords {
		end := min(start+maxWords, len(words))
		segments = append(segments, strings.Join(words[start:end], " "))
	}

	return segments
}
