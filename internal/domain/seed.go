package domain

import "github.com/lib/pq"

// SeedSite is an operator-curated crawl root: an origin URL plus optional
// path suffixes. Each suffix is appended to URL when seeding the frontier.
type SeedSite struct {
	ID    int64          `db:"id"    json:"id"`
	URL   string         `db:"url"   json:"url"`
	Seeds pq.StringArray `db:"seeds" json:"seeds"`
}
