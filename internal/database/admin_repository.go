package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/openengine/openengine/internal/domain"
)

// AdminRepository handles database operations on the admins table.
type AdminRepository struct {
	db *sqlx.DB
}

// NewAdminRepository creates a new admin repository.
func NewAdminRepository(db *sqlx.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

// Count returns the number of admin users. The bootstrap path of the
// set-admin route is only open while this is zero.
func (r *AdminRepository) Count(ctx context.Context) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM admins`

	if err := r.db.GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("failed to count admins: %w", err)
	}

	return count, nil
}

// GetByUsername returns the admin with the given username.
func (r *AdminRepository) GetByUsername(ctx context.Context, username string) (*domain.Admin, error) {
	var admin domain.Admin
	query := `SELECT id, username, password FROM admins WHERE username = $1`

	err := r.db.GetContext(ctx, &admin, query, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("admin %q: %w", username, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}

	return &admin, nil
}

// Upsert sets an admin credential, replacing the password hash when the
// username already exists.
func (r *AdminRepository) Upsert(ctx context.Context, username, passwordHash string) error {
	query := `
		INSERT INTO admins (username, password)
		VALUES ($1, $2)
		ON CONFLICT (username) DO UPDATE SET password = EXCLUDED.password
	`

	if _, err := r.db.ExecContext(ctx, query, username, passwordHash); err != nil {
		return fmt.Errorf("failed to upsert admin: %w", err)
	}

	return nil
}
