package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/openengine/openengine/internal/domain"
)

// PotentialRepository handles database operations on the potential_urls table.
type PotentialRepository struct {
	db *sqlx.DB
}

// NewPotentialRepository creates a new potential-url repository.
func NewPotentialRepository(db *sqlx.DB) *PotentialRepository {
	return &PotentialRepository{db: db}
}

// List returns every potential url ordered by id.
func (r *PotentialRepository) List(ctx context.Context) ([]domain.PotentialURL, error) {
	var urls []domain.PotentialURL
	query := `SELECT id, url, firstSeen, timesSeen FROM potential_urls ORDER BY id`

	if err := r.db.SelectContext(ctx, &urls, query); err != nil {
		return nil, fmt.Errorf("failed to list potential urls: %w", err)
	}

	return urls, nil
}

// Record notes an observation of a URL that was not crawled. The first
// observation inserts the row; re-observation bumps timesSeen.
func (r *PotentialRepository) Record(ctx context.Context, url string, seen time.Time) error {
	query := `
		INSERT INTO potential_urls (url, firstSeen, timesSeen)
		VALUES ($1, $2, 1)
		ON CONFLICT (url) DO UPDATE SET
			timesSeen = potential_urls.timesSeen + 1
	`

	if _, err := r.db.ExecContext(ctx, query, url, seen); err != nil {
		return fmt.Errorf("failed to record potential url: %w", err)
	}

	return nil
}
