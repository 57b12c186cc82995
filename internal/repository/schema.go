package repository

import (
	"context"
	"fmt"

	"github.com/Dan9191/ziptalk-calculator/internal/models"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func (r *Repository) CreateSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id SERIAL PRIMARY KEY,
    username TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS subscription_scores (
    id SERIAL PRIMARY KEY,
    user_id INTEGER REFERENCES users(id) ON DELETE SET NULL,
    age INTEGER NOT NULL,
    no_home_period INTEGER NOT NULL,
    dependents INTEGER NOT NULL,
    subscription_period INTEGER NOT NULL,
    income INTEGER NOT NULL,
    total_score INTEGER NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_subscription_scores_created_at ON subscription_scores(created_at);

CREATE TABLE IF NOT EXISTS apartments (
    id SERIAL PRIMARY KEY,
    name TEXT NOT NULL,
    location TEXT NOT NULL,
    competition_rate DOUBLE PRECISION NOT NULL,
    min_score INTEGER NOT NULL,
    avg_score INTEGER NOT NULL,
    coordinates JSONB NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_apartments_name_location ON apartments(name, location);

CREATE TABLE IF NOT EXISTS competition_data (
    id SERIAL PRIMARY KEY,
    user_id INTEGER REFERENCES users(id) ON DELETE SET NULL,
    file_name TEXT NOT NULL,
    data JSONB NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
);
`

// SeedSampleApartments inserts models.SampleApartments when no apartment exists.
// It reports whether rows were inserted.
func (r *Repository) SeedSampleApartments(ctx context.Context) (bool, error) {
	count, err := r.CountApartments(ctx)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	for i := range models.SampleApartments {
		apt := models.SampleApartments[i]
		if err := r.CreateApartment(ctx, &apt); err != nil {
			return false, err
		}
	}
	return true, nil
}
