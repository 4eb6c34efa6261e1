package domain

import "time"

// PotentialURL is a URL the crawler observed but never fetched, typically an
// external link found during page registration. Re-observation increments
// TimesSeen.
type PotentialURL struct {
	ID        int64     `db:"id"        json:"id"`
	URL       string    `db:"url"       json:"url"`
	FirstSeen time.Time `db:"firstseen" json:"firstSeen"`
	TimesSeen int       `db:"timesseen" json:"timesSeen"`
}
