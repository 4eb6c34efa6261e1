package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/openengine/openengine/internal/domain"
)

// ResourceRepository handles database operations on the resources table.
type ResourceRepository struct {
	db *sqlx.DB
}

// NewResourceRepository creates a new resource repository.
func NewResourceRepository(db *sqlx.DB) *ResourceRepository {
	return &ResourceRepository{db: db}
}

// List returns every crawled resource ordered by id.
func (r *ResourceRepository) List(ctx context.Context) ([]domain.Resource, error) {
	var resources []domain.Resource
	query := `SELECT id, url, firstVisited, lastVisited, allVisits, externalLinks
		FROM resources ORDER BY id`

	if err := r.db.SelectContext(ctx, &resources, query); err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}

	return resources, nil
}

// Visit is the url and last-visit time of a crawled resource, the two
// columns the crawl bootstrap needs to decide revisits.
type Visit struct {
	URL         string    `db:"url"`
	LastVisited time.Time `db:"lastvisited"`
}

// Visits returns the url and lastVisited of every resource.
func (r *ResourceRepository) Visits(ctx context.Context) ([]Visit, error) {
	var visits []Visit
	query := `SELECT url, lastVisited FROM resources`

	if err := r.db.SelectContext(ctx, &visits, query); err != nil {
		return nil, fmt.Errorf("failed to list resource visits: %w", err)
	}

	return visits, nil
}

// Upsert registers a visit to a page. The first visit inserts the row; any
// later visit bumps lastVisited and allVisits and refreshes externalLinks.
func (r *ResourceRepository) Upsert(ctx context.Context, url string, visited time.Time, externalLinks []string) error {
	if externalLinks == nil {
		externalLinks = []string{}
	}
	query := `
		INSERT INTO resources (url, firstVisited, lastVisited, allVisits, externalLinks)
		VALUES ($1, $2, $2, 1, $3)
		ON CONFLICT (url) DO UPDATE SET
			lastVisited = EXCLUDED.lastVisited,
			allVisits = resources.allVisits + 1,
			externalLinks = EXCLUDED.externalLinks
	`

	if _, err := r.db.ExecContext(ctx, query, url, visited, pq.Array(externalLinks)); err != nil {
		return fmt.Errorf("failed to upsert resource: %w", err)
	}

	return nil
}
