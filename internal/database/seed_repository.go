package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/openengine/openengine/internal/domain"
)

// ErrNotFound is returned when a lookup matches no rows.
// Callers should check with errors.Is().
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert violates a uniqueness constraint.
var ErrDuplicate = errors.New("already exists")

// uniqueViolation is the PostgreSQL error code for unique_violation.
const uniqueViolation = "23505"

// SeedRepository handles database operations on the seed_urls table.
type SeedRepository struct {
	db *sqlx.DB
}

// NewSeedRepository creates a new seed repository.
func NewSeedRepository(db *sqlx.DB) *SeedRepository {
	return &SeedRepository{db: db}
}

// List returns every seed site ordered by id.
func (r *SeedRepository) List(ctx context.Context) ([]domain.SeedSite, error) {
	var sites []domain.SeedSite
	query := `SELECT id, url, seeds FROM seed_urls ORDER BY id`

	if err := r.db.SelectContext(ctx, &sites, query); err != nil {
		return nil, fmt.Errorf("failed to list seed urls: %w", err)
	}

	return sites, nil
}

// GetByURL returns the seed site with the given url.
func (r *SeedRepository) GetByURL(ctx context.Context, url string) (*domain.SeedSite, error) {
	var site domain.SeedSite
	query := `SELECT id, url, seeds FROM seed_urls WHERE url = $1`

	err := r.db.GetContext(ctx, &site, query, url)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("seed url %q: %w", url, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get seed url: %w", err)
	}

	return &site, nil
}

// Add inserts a new seed site. A duplicate url returns ErrDuplicate.
func (r *SeedRepository) Add(ctx context.Context, url string, seeds []string) error {
	if seeds == nil {
		seeds = []string{}
	}
	query := `INSERT INTO seed_urls (url, seeds) VALUES ($1, $2)`

	if _, err := r.db.ExecContext(ctx, query, url, pq.Array(seeds)); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return fmt.Errorf("seed url %q: %w", url, ErrDuplicate)
		}
		return fmt.Errorf("failed to add seed url: %w", err)
	}

	return nil
}

// Delete removes the seed site with the given url.
func (r *SeedRepository) Delete(ctx context.Context, url string) error {
	query := `DELETE FROM seed_urls WHERE url = $1`

	result, err := r.db.ExecContext(ctx, query, url)
	if err != nil {
		return fmt.Errorf("failed to delete seed url: %w", err)
	}

	return requireRowAffected(result, url)
}

// UpdateURL renames a seed site from oldURL to newURL.
func (r *SeedRepository) UpdateURL(ctx context.Context, oldURL, newURL string) error {
	query := `UPDATE seed_urls SET url = $1 WHERE url = $2`

	result, err := r.db.ExecContext(ctx, query, newURL, oldURL)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return fmt.Errorf("seed url %q: %w", newURL, ErrDuplicate)
		}
		return fmt.Errorf("failed to update seed url: %w", err)
	}

	return requireRowAffected(result, oldURL)
}

// AddSeed appends a path suffix to a seed site's seeds array.
func (r *SeedRepository) AddSeed(ctx context.Context, url, seed string) error {
	query := `UPDATE seed_urls SET seeds = array_append(seeds, $1) WHERE url = $2`

	result, err := r.db.ExecContext(ctx, query, seed, url)
	if err != nil {
		return fmt.Errorf("failed to add seed: %w", err)
	}

	return requireRowAffected(result, url)
}

// RemoveSeed removes every occurrence of a path suffix from a seed site's
// seeds array.
func (r *SeedRepository) RemoveSeed(ctx context.Context, url, seed string) error {
	query := `UPDATE seed_urls SET seeds = array_remove(seeds, $1) WHERE url = $2`

	result, err := r.db.ExecContext(ctx, query, seed, url)
	if err != nil {
		return fmt.Errorf("failed to remove seed: %w", err)
	}

	return requireRowAffected(result, url)
}

// ReplaceSeed swaps oldSeed for newSeed in a seed site's seeds array.
func (r *SeedRepository) ReplaceSeed(ctx context.Context, url, oldSeed, newSeed string) error {
	query := `UPDATE seed_urls SET seeds = array_replace(seeds, $1, $2) WHERE url = $3`

	result, err := r.db.ExecContext(ctx, query, oldSeed, newSeed, url)
	if err != nil {
		return fmt.Errorf("failed to replace seed: %w", err)
	}

	return requireRowAffected(result, url)
}

// requireRowAffected converts a zero-row update into ErrNotFound.
func requireRowAffected(result sql.Result, url string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("seed url %q: %w", url, ErrNotFound)
	}
	return nil
}
