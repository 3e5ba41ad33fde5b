package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var schemaStatements = []string{
	`
	CREATE TABLE IF NOT EXISTS vehicles (
		id BIGSERIAL PRIMARY KEY,
		registration_number TEXT NOT NULL UNIQUE,
		color TEXT NOT NULL DEFAULT '',
		make TEXT NOT NULL DEFAULT '',
		capacity DOUBLE PRECISION NOT NULL CHECK (capacity >= 0),
		availability BOOLEAN NOT NULL DEFAULT TRUE
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS addresses (
		id BIGSERIAL PRIMARY KEY,
		address_type TEXT NOT NULL DEFAULT 'HOME',
		line1 TEXT NOT NULL DEFAULT '',
		line2 TEXT NOT NULL DEFAULT '',
		city TEXT NOT NULL DEFAULT '',
		county TEXT NOT NULL DEFAULT '',
		zip_postcode TEXT NOT NULL
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS batches (
		id BIGSERIAL PRIMARY KEY,
		batch_name TEXT NOT NULL UNIQUE
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS customers (
		id BIGSERIAL PRIMARY KEY,
		address_id BIGINT NOT NULL UNIQUE REFERENCES addresses(id) ON DELETE CASCADE,
		customer_demand DOUBLE PRECISION NOT NULL CHECK (customer_demand >= 0),
		batch_id BIGINT NOT NULL REFERENCES batches(id) ON DELETE CASCADE
	);
	`,
	`
	CREATE INDEX IF NOT EXISTS idx_customers_batch_id ON customers(batch_id);
	`,
	`
	CREATE TABLE IF NOT EXISTS solutions (
		id BIGSERIAL PRIMARY KEY,
		routes TEXT NOT NULL,
		total_distance BIGINT NOT NULL,
		total_load DOUBLE PRECISION NOT NULL,
		solver_status INTEGER,
		batch_id BIGINT NOT NULL UNIQUE REFERENCES batches(id) ON DELETE CASCADE,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS distance_cache (
		origin TEXT NOT NULL,
		destination TEXT NOT NULL,
		distance_meters INTEGER NOT NULL,
		PRIMARY KEY (origin, destination)
	);
	`,
	`
	CREATE INDEX IF NOT EXISTS idx_distance_cache_destination_origin
	ON distance_cache(destination, origin);
	`,
}

// Initialize the Postgres database schema. Safe to run repeatedly.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range schemaStatements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
