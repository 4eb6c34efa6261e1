// Package domain provides domain models used across the application.
package domain

import (
	"time"

	"github.com/lib/pq"
)

// Resource is a page the crawler has successfully processed. The url is
// canonical and unique; repeated visits bump LastVisited and AllVisits and
// refresh ExternalLinks.
type Resource struct {
	ID            int64          `db:"id"            json:"id"`
	URL           string         `db:"url"           json:"url"`
	FirstVisited  time.Time      `db:"firstvisited"  json:"firstVisited"`
	LastVisited   time.Time      `db:"lastvisited"   json:"lastVisited"`
	AllVisits     int            `db:"allvisits"     json:"allVisits"`
	ExternalLinks pq.StringArray `db:"externallinks" json:"externalLinks"`
}
