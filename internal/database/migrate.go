package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// migrations creates the four application tables. Every statement is
// idempotent so Migrate can run on each startup.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS resources (
		id SERIAL PRIMARY KEY,
		url VARCHAR(2048) NOT NULL UNIQUE,
		firstVisited TIMESTAMP NOT NULL,
		lastVisited TIMESTAMP NOT NULL,
		allVisits INT DEFAULT 1,
		externalLinks TEXT[]
	)`,
	`CREATE TABLE IF NOT EXISTS admins (
		id SERIAL PRIMARY KEY,
		username VARCHAR(2048) NOT NULL UNIQUE,
		password VARCHAR(2048) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS seed_urls (
		id SERIAL PRIMARY KEY,
		url VARCHAR(2048) NOT NULL UNIQUE,
		seeds VARCHAR(512)[] NOT NULL DEFAULT '{}'
	)`,
	`CREATE TABLE IF NOT EXISTS potential_urls (
		id SERIAL PRIMARY KEY,
		url VARCHAR(2048) NOT NULL UNIQUE,
		firstSeen TIMESTAMP NOT NULL,
		timesSeen INT DEFAULT 1
	)`,
}

// Migrate creates any missing tables.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}
	return nil
}
